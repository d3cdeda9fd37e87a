// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package decode implements the dialect decoders for the marketplace
// indexer (spec.md §4.3.1) and the write-set-change decoder for the
// contract-upgrade indexer (spec.md §4.3.3). The strategy-pattern shape —
// one constructor per dialect, tried in fixed order, contributing to the
// same events.Event sum — follows spec.md §9's explicit preference over
// virtual dispatch. There is no teacher analog: klaytn decodes one fixed EVM
// log ABI, never a family of mutually-ambiguous external schemas.
package decode

import (
	"fmt"
	"time"

	"github.com/nft-aggregator/indexer/internal/metrics"
	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
)

// Clock is injected so Aptos-labs dialect decode (which has no on-chain
// timestamp, spec.md Q4) is deterministic in tests.
type Clock func() int64

// DefaultClock returns the current wall-clock time in whole seconds.
func DefaultClock() int64 { return time.Now().Unix() }

// dialect recognizes and decodes events for one contract family. decode
// returns ok=false (no error) when the module/type pair does not belong to
// this dialect, so dispatch can fall through to the next one (spec.md
// §4.3.1).
type dialect interface {
	name() string
	decode(module, name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error)
}

var marketplaceDialects = []dialect{
	aptosLabsDialect{},
	tradeportV1Dialect{},
	tradeportV2Dialect{},
}

// DispatchMarketplaceEvent tries each dialect in fixed order and returns the
// first match (spec.md §4.3.1). ok=false with a nil error means the event
// fell through every dialect — a decode-skip, not a decode-fatal (spec.md
// §7; boundary behavior B1: an unrecognized phase spelling must fall
// through silently rather than erroring).
//
// marketplaceAddr is the contract address the caller already matched
// against its tracked-contract set (pkg/extractor.Marketplace). No dialect
// event carries its own marketplace_addr on the wire — every constructor in
// the original system takes it as an external parameter — so it is threaded
// in here rather than parsed out of raw.Data.
func DispatchMarketplaceEvent(raw chain.RawEvent, marketplaceAddr string, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	_, module, name, ok := chain.ModuleAddrAndName(raw.Type)
	if !ok {
		return nil, false, nil
	}
	for _, d := range marketplaceDialects {
		ev, matched, err := d.decode(module, name, marketplaceAddr, raw.Data, coord, clock)
		if err != nil {
			metrics.DecodeFatalCounter.Inc(1)
			return nil, false, fmt.Errorf("decode %s dialect event %s: %w", d.name(), raw.Type, err)
		}
		if matched {
			metrics.DialectCounter(d.name()).Inc(1)
			return ev, true, nil
		}
	}
	return nil, false, nil
}
