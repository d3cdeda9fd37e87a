// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package extractor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nft-aggregator/indexer/internal/metrics"
	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/decode"
	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
)

// Upgrade is the write-set-change-driven Extractor (spec.md §4.3.3). Unlike
// the marketplace flavor, unsuccessful transactions still carry write-set
// changes worth scanning (spec.md §4.3: the success filter is "marketplace
// flavor only").
type Upgrade struct {
	ContractAddresses map[string]struct{}
	MaxWorkers         int
}

func NewUpgrade(contractAddresses []string) *Upgrade {
	set := make(map[string]struct{}, len(contractAddresses))
	for _, addr := range contractAddresses {
		set[chain.NormalizeAddress(addr)] = struct{}{}
	}
	return &Upgrade{ContractAddresses: set, MaxWorkers: defaultMaxWorkers}
}

// Process implements pipeline.Stage[chain.Batch, []events.Event].
func (u *Upgrade) Process(ctx context.Context, in pipeline.Envelope[chain.Batch]) (pipeline.Envelope[[]events.Event], bool, error) {
	batch := in.Data
	perTx := make([][]events.Event, len(batch.Transactions))

	sem := semaphore.NewWeighted(int64(maxWorkers(u.MaxWorkers)))
	g, gctx := errgroup.WithContext(ctx)

	for i, tx := range batch.Transactions {
		i, tx := i, tx
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if !tx.HasInfo {
				return nil
			}
			evs, err := decode.DecodeUpgradeTransaction(tx.Version, tx.WriteSetChanges, u.ContractAddresses)
			if err != nil {
				return fmt.Errorf("extractor: decode upgrade transaction %d: %w", tx.Version, err)
			}
			perTx[i] = evs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return pipeline.Envelope[[]events.Event]{}, false, err
	}

	var out []events.Event
	for _, evs := range perTx {
		out = append(out, evs...)
	}

	metrics.BatchSizeGauge.Update(int64(len(batch.Transactions)))
	metrics.EventCountGauge.Update(int64(len(out)))
	logger.Info("extracted upgrade batch", "batchId", in.Meta.BatchID, "startVersion", batch.StartVersion, "endVersion", batch.EndVersion, "events", len(out))

	// Always forward (spec.md B2): the watermark must advance on the
	// batch's end_version even when it carries no upgrade events.
	return pipeline.Envelope[[]events.Event]{Data: out, Meta: in.Meta}, true, nil
}
