// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import "github.com/nft-aggregator/indexer/pkg/chain"

// normalizeIfPresent normalizes a possibly-empty address field — empty
// stays empty (NFT-V1 collections carry no collection object address,
// spec.md §3 "collection_addr optional").
func normalizeIfPresent(addr string) string {
	if addr == "" {
		return ""
	}
	return chain.NormalizeAddress(addr)
}
