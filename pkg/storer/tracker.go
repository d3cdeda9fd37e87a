// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package storer

import (
	"context"
	"fmt"

	"github.com/nft-aggregator/indexer/internal/metrics"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
)

// WatermarkStore is the progress tracker's view of the store (spec.md
// §4.5). The SQL update only ever advances the stored version
// (store.UpsertProcessorStatus's WHERE clause skips a version that is not
// greater), and the pipeline never delivers batches out of version order,
// so in practice every call is an advance.
type WatermarkStore interface {
	UpsertProcessorStatus(ctx context.Context, processor string, version int64) error
}

// Tracker implements pipeline.Sink[Applied]: the Progress Tracker stage
// (spec.md §4.5). Shared unchanged by both indexer flavors — only the
// Storer differs between them (spec.md §2).
type Tracker struct {
	Store     WatermarkStore
	Processor string
}

func NewTracker(s WatermarkStore, processor string) *Tracker {
	return &Tracker{Store: s, Processor: processor}
}

// Process implements pipeline.Sink[Applied].
func (t *Tracker) Process(ctx context.Context, in pipeline.Envelope[Applied]) error {
	if err := t.Store.UpsertProcessorStatus(ctx, t.Processor, in.Meta.EndVersion); err != nil {
		return fmt.Errorf("tracker: advance watermark for %s: %w", t.Processor, err)
	}
	metrics.WatermarkGauge.Update(in.Meta.EndVersion)
	logger.Info("watermark advanced", "batchId", in.Meta.BatchID, "processor", t.Processor, "version", in.Meta.EndVersion)
	return nil
}
