// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nft-aggregator/indexer/pkg/chain"
)

// Source yields transaction batches onto out until the remote stream is
// exhausted, the context is cancelled, or a fatal error occurs (spec.md
// §4.2). It owns out and must close it before returning, mirroring the
// Stage contract. Both indexer flavors share one Source implementation —
// only the extractor and storer differ (spec.md §2).
type Source func(ctx context.Context, out chan<- Envelope[chain.Batch]) error

// Sink is a terminal stage with no downstream channel (the progress
// tracker, spec.md §4.5).
type Sink[I any] interface {
	Process(ctx context.Context, in Envelope[I]) error
}

func runSink[I any](ctx context.Context, in <-chan Envelope[I], sink Sink[I]) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case envelope, more := <-in:
			if !more {
				return nil
			}
			if err := sink.Process(ctx, envelope); err != nil {
				return err
			}
		}
	}
}

// Chain wires the full 4-stage pipeline: source, extractor, storer, and
// progress tracker, connected by BatchCapacity-bounded channels (spec.md
// §2, §5). It is a free function parameterized over the extracted-event
// type E and the per-batch apply result A so both indexer flavors can reuse
// it: the marketplace flavor's nine-way partition and the contract-upgrade
// flavor's two-way partition differ only in the Stage implementations
// passed in, not in the wiring (spec.md §2's "shared skeleton").
func Chain[E, A any](
	ctx context.Context,
	source Source,
	extractor Stage[chain.Batch, E],
	storer Stage[E, A],
	tracker Sink[A],
) error {
	g, ctx := errgroup.WithContext(ctx)

	sourceCh := make(chan Envelope[chain.Batch], BatchCapacity)
	extractedCh := make(chan Envelope[E], BatchCapacity)
	appliedCh := make(chan Envelope[A], BatchCapacity)

	g.Go(func() error { return source(ctx, sourceCh) })
	g.Go(func() error { return run(ctx, sourceCh, extractedCh, extractor) })
	g.Go(func() error { return run(ctx, extractedCh, appliedCh, storer) })
	g.Go(func() error { return runSink(ctx, appliedCh, tracker) })

	return g.Wait()
}
