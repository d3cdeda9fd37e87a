// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package hashutil derives the synthetic order-object addresses that
// Tradeport v1 requires because that contract family mints no on-chain
// object address for an order (spec.md §4.3.2). lukechampine.com/blake3 is
// pulled from the retrieval pack (AKJUS-bsc-erigon's go.mod carries it as an
// indirect dependency) since the teacher repo hashes with keccak/sha3 for
// chain-native purposes only and has no BLAKE3 use to adapt.
package hashutil

import (
	"fmt"

	"lukechampine.com/blake3"
)

// BLAKE3Hex hashes the given preimage and returns its lowercase hex digest,
// the form every synthetic id in this package is expressed in.
func BLAKE3Hex(preimage string) string {
	sum := blake3.Sum256([]byte(preimage))
	return fmt.Sprintf("%x", sum[:])
}

// AskOrderIDV1 derives the synthetic ask_obj_addr for a Tradeport v1 NFT-v1
// listing: BLAKE3("{creator}_{collection}_{name}_{property_version}_{owner}").
// Per spec.md Q3, the owner argument must already be standardized (32-byte,
// lowercase, 0x-prefixed) before this function is called — it does not
// standardize internally, it composes the preimage from whatever it is
// given. Callers are responsible for standardizing first (see
// pkg/chain.NormalizeAddress).
func AskOrderIDV1(creator, collection, name, propertyVersion, owner string) string {
	preimage := fmt.Sprintf("%s_%s_%s_%s_%s", creator, collection, name, propertyVersion, owner)
	return BLAKE3Hex(preimage)
}

// BidOrderIDV1 derives the synthetic bid_obj_addr for a Tradeport v1
// single-NFT bid: BLAKE3("tradeport_v1_bid_order_{nonce}").
func BidOrderIDV1(nonce string) string {
	return BLAKE3Hex(fmt.Sprintf("tradeport_v1_bid_order_%s", nonce))
}

// CollectionBidOrderIDV1 derives the synthetic obj_addr for a Tradeport v1
// collection bid: BLAKE3("tradeport_v1_collection_bid_order__{nonce}"). The
// double underscore is part of the preimage, preserved exactly as observed
// in the original contract's event emission, since it is round-trip tested
// as a fixed contract (spec.md §4.3.2).
func CollectionBidOrderIDV1(nonce string) string {
	return BLAKE3Hex(fmt.Sprintf("tradeport_v1_collection_bid_order__%s", nonce))
}
