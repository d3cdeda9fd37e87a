// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package chain holds the raw, wire-shaped transaction/event/write-set-change
// types the extractor stage consumes, plus the address and NFT-identity
// normalization rules shared across all three decoder dialects (spec.md
// §4.3.2). None of the teacher's address helpers are reusable here — klaytn
// addresses are fixed 20-byte EVM addresses with no padding rule — so this
// is written fresh, grounded on spec.md's own normalization rule text and
// _examples/original_source/indexer/src/utils/aptos_utils.rs.
package chain

import "strings"

// addressHexWidth is the number of hex digits in a canonical 32-byte
// address, excluding the "0x" prefix.
const addressHexWidth = 64

// NormalizeAddress left-pads addr to a canonical 32-byte hex address:
// lowercase, "0x"-prefixed, zero-padded on the left. Input may or may not
// carry the "0x" prefix; output always does.
func NormalizeAddress(addr string) string {
	hexPart := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	if len(hexPart) < addressHexWidth {
		hexPart = strings.Repeat("0", addressHexWidth-len(hexPart)) + hexPart
	}
	return "0x" + hexPart
}

// ModuleAddrAndName splits a Move event type string of the form
// "<addr>::<module>::<name>" into its three components, normalizing the
// address component. Returns ok=false if the type string does not have
// exactly three "::"-separated segments.
func ModuleAddrAndName(eventType string) (addr, module, name string, ok bool) {
	parts := strings.Split(eventType, "::")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return NormalizeAddress(parts[0]), parts[1], parts[2], true
}
