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
	"time"

	"github.com/nft-aggregator/indexer/internal/metrics"
	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
	"github.com/nft-aggregator/indexer/pkg/store"
)

// Upgrade is the Storer stage for the contract-upgrade indexer flavor
// (spec.md §4.3.3, §4.4 "two (upgrade)" partition): PackageUpgradeEvent and
// ModuleUpgradeEvent, applied independently. Both entities are append-only
// (keyed by their own upgrade_number, spec.md §3), so there is no
// placed-phase dedup or batch join to perform — that is unique to the
// marketplace flavor's order-lifecycle entities.
type Upgrade struct {
	Store     ChunkStore
	ChunkSize int
}

func NewUpgrade(s ChunkStore, chunkSize int) *Upgrade {
	return &Upgrade{Store: s, ChunkSize: chunkSize}
}

// Process implements pipeline.Stage[[]events.Event, Applied].
func (u *Upgrade) Process(ctx context.Context, in pipeline.Envelope[[]events.Event]) (pipeline.Envelope[Applied], bool, error) {
	var packages []events.PackageUpgradeEvent
	var modules []events.ModuleUpgradeEvent

	for _, ev := range in.Data {
		switch e := ev.(type) {
		case events.PackageUpgradeEvent:
			packages = append(packages, e)
		case events.ModuleUpgradeEvent:
			modules = append(modules, e)
		default:
			logger.Warn("ignoring event of unexpected type for upgrade storer", "type", fmt.Sprintf("%T", ev))
		}
	}

	started := time.Now()

	if err := applyChunks(ctx, u.Store, packages, u.ChunkSize, 0, func(ctx context.Context, q store.Applier, chunk []events.PackageUpgradeEvent) error {
		for _, e := range chunk {
			if err := q.UpsertPackageUpgrade(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return pipeline.Envelope[Applied]{}, false, fmt.Errorf("storer: %w", err)
	}

	if err := applyChunks(ctx, u.Store, modules, u.ChunkSize, 0, func(ctx context.Context, q store.Applier, chunk []events.ModuleUpgradeEvent) error {
		for _, e := range chunk {
			if err := q.UpsertModuleUpgrade(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return pipeline.Envelope[Applied]{}, false, fmt.Errorf("storer: %w", err)
	}

	count := len(in.Data)
	metrics.ApplyDurationGauge.Update(time.Since(started).Milliseconds())
	logger.Info("applied upgrade batch", "batchId", in.Meta.BatchID, "startVersion", in.Meta.StartVersion, "endVersion", in.Meta.EndVersion, "events", count)

	return pipeline.Envelope[Applied]{Data: Applied{EventCount: count}, Meta: in.Meta}, true, nil
}
