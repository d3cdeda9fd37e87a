// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package metrics declares the process-wide gauges and counters for the
// indexer pipeline, following the registered-gauge idiom of the teacher's
// work/worker.go ("timeLimitReachedCounter = metrics.NewRegisteredCounter(...)")
// and the per-request-type gauges referenced throughout
// datasync/chaindatafetcher/chaindata_fetcher.go (totalInsertionTimeGauge,
// handledBlockNumberGauge, checkpointGauge, and per-type retry gauges).
package metrics

import "github.com/rcrowley/go-metrics"

var (
	// BatchSizeGauge tracks the number of transactions in the most recently
	// extracted batch.
	BatchSizeGauge = metrics.NewRegisteredGauge("indexer/batch/size", nil)

	// EventCountGauge tracks the number of domain events decoded from the
	// most recently extracted batch.
	EventCountGauge = metrics.NewRegisteredGauge("indexer/batch/events", nil)

	// ApplyDurationGauge tracks the wall-clock time, in milliseconds, spent
	// applying one batch's upserts in the storer stage.
	ApplyDurationGauge = metrics.NewRegisteredGauge("indexer/storer/apply_ms", nil)

	// WatermarkGauge mirrors the currently durable last_success_version.
	WatermarkGauge = metrics.NewRegisteredGauge("indexer/watermark", nil)

	// DecodeSkipCounter counts events dropped as decode-skip (§7): untracked
	// contract or unsuccessful/infoless transactions.
	DecodeSkipCounter = metrics.NewRegisteredCounter("indexer/decode/skip", nil)

	// DecodeFatalCounter counts decode-fatal errors (§7) per process
	// lifetime, surfaced just before the stage aborts.
	DecodeFatalCounter = metrics.NewRegisteredCounter("indexer/decode/fatal", nil)

	// ChunkRetryCounter counts transient store-layer retry attempts across
	// all chunk applies, incremented by pkg/store.Store.RunInChunkTx each
	// time it re-runs a chunk transaction after a transient failure (§6
	// QUERY_DEFAULT_RETRIES/QUERY_DEFAULT_RETRY_DELAY_MS).
	ChunkRetryCounter = metrics.NewRegisteredCounter("indexer/store/chunk_retry", nil)
)

// DialectCounter returns (creating if necessary) a named counter scoped to
// one decoder dialect and incremented on each event that dialect decodes
// successfully, so a contract upgrade that regresses one dialect's decode
// rate is visible independently of the other two (SPEC_FULL.md §12,
// "per-dialect decode counters"). Decode failures are counted by the single
// DecodeFatalCounter, not per dialect.
func DialectCounter(dialect string) metrics.Counter {
	return metrics.GetOrRegisterCounter("indexer/decode/dialect/"+dialect, nil)
}
