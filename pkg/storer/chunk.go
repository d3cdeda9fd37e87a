// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package storer implements the Storer stage (spec.md §4.4): partitioning
// decoded events by entity kind, deduplicating and batch-joining within one
// extracted batch, then applying the result across one-transaction-per-chunk
// database writes. It generalizes the teacher's
// datasync/chaindatafetcher request-handling loop — which dispatches one
// fetched unit to one of several per-request-type repositories
// (chaindata_fetcher.go's reqTypes map) — into the marketplace flavor's
// nine-way partition and the contract-upgrade flavor's two-way partition
// (spec.md §9 Q2).
package storer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nft-aggregator/indexer/pkg/store"
)

// defaultMaxWorkers bounds concurrent chunk applies when maxWorkers is unset,
// matching the extractor stage's default worker-pool width.
const defaultMaxWorkers = 16

// ChunkStore is the subset of *store.Store the storer stage needs: opening
// one transaction per chunk and handing back a store.Applier scoped to it
// (spec.md §4.4.2).
type ChunkStore interface {
	RunInChunkTx(ctx context.Context, fn func(ctx context.Context, q store.Applier) error) error
}

// applyChunks splits items into groups of at most chunkSize (chunkSize<=0
// means one unbounded chunk) and applies each chunk inside its own
// transaction, running up to maxWorkers chunks concurrently. The first
// chunk to fail aborts the others via the shared context and its error is
// returned (spec.md §4.4.2: "a chunk failure fails the whole batch; the
// watermark is not advanced").
func applyChunks[T any](ctx context.Context, s ChunkStore, items []T, chunkSize, maxWorkers int, apply func(ctx context.Context, q store.Applier, chunk []T) error) error {
	if len(items) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = len(items)
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	var chunks [][]T
	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}

	sem := semaphore.NewWeighted(int64(maxWorkers))
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		chunk := chunk
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			err := s.RunInChunkTx(gctx, func(ctx context.Context, q store.Applier) error {
				return apply(ctx, q, chunk)
			})
			if err != nil {
				return fmt.Errorf("storer: apply chunk of %d: %w", len(chunk), err)
			}
			return nil
		})
	}
	return g.Wait()
}
