// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import "github.com/nft-aggregator/indexer/pkg/events"

// aptCoin is the coin type every dialect hardcodes as payment_token on
// construction (spec.md §4.3.2); no dialect event ever carries a
// payment_token field on the wire.
const aptCoin = "0x1::aptos_coin::AptosCoin"

// paymentToken is the economics payload's settlement asset. No dialect
// payload actually carries a "payment_token" field — every constructor in
// the original system hardcodes it to aptCoin alongside PaymentTokenCoin —
// so this only reads a wire value on the (currently hypothetical) day a
// dialect starts emitting fungible-asset payments.
func paymentToken(data map[string]interface{}) string {
	if v := optionalField(data, "payment_token"); v != "" {
		return v
	}
	return aptCoin
}

// paymentTokenType reads the optional "payment_token_type" field shared by
// every dialect's economics payload (spec.md §3 "payment_token_type ∈
// {Coin=1, FA=2}"). Absent defaults to Coin, the long-standing rail.
func paymentTokenType(data map[string]interface{}) events.PaymentTokenType {
	switch optionalField(data, "payment_token_type") {
	case "fa", "fungible_asset":
		return events.PaymentTokenFA
	default:
		return events.PaymentTokenCoin
	}
}

// orderType reads the optional "order_type" field (NftAsk only, spec.md §3
// "order_type ∈ {FixedPrice=1, Auction=2}"). Absent defaults to FixedPrice.
func orderType(data map[string]interface{}) events.OrderType {
	switch optionalField(data, "order_type") {
	case "auction":
		return events.OrderTypeAuction
	default:
		return events.OrderTypeFixedPrice
	}
}

// eventTimestamp resolves the on-chain "timestamp" field when present,
// falling back to wall-clock at decode time (spec.md §4.3.2, Q4 — a deliberate
// per-dialect modeling choice, not a bug, preserved as-is).
func eventTimestamp(data map[string]interface{}, clock Clock) (int64, error) {
	if _, ok := data["timestamp"]; !ok {
		return clock(), nil
	}
	return numField(data, "timestamp")
}
