// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package pipeline implements the staged, back-pressured extract→normalize→
// apply loop (spec.md §4.1). It generalizes the teacher's
// datasync/chaindatafetcher.ChainDataFetcher, which wires one fixed
// source→handler loop over two channels (chainCh, reqCh) gated by a stopCh
// close (chaindata_fetcher.go Start/Stop/handleRequest). This package
// extracts that shape into a composable, typed chain of stages connected by
// bounded channels, since spec.md §2 requires two indexer flavors (nine-way
// marketplace vs. two-way contract-upgrade) sharing one skeleton — something
// the teacher's single-purpose fetcher does not need to express.
package pipeline

import "context"

// BatchCapacity is the bounded channel capacity between adjacent stages
// (spec.md §4.1, §5: "channel capacity 10 batches bounds memory").
const BatchCapacity = 10

// Meta carries the version range of one in-flight batch end to end so the
// progress tracker can advance the watermark without recomputing it
// (spec.md §4.5). BatchID is a short-lived correlation id, minted once by
// the Source stage and carried unchanged through every downstream stage, so
// a single batch's log lines across the extractor/storer boundary can be
// grepped together even though the stages run as independent goroutines.
type Meta struct {
	StartVersion int64
	EndVersion   int64
	BatchID      string
}

// Envelope wraps one stage's payload with its batch metadata.
type Envelope[T any] struct {
	Data T
	Meta Meta
}

// Stage consumes one batch and produces at most one batch (spec.md §4.1).
// Returning ok=false drops the batch without forwarding it downstream; ok=true
// forwards the result, including an empty one (spec.md B2: a batch with zero
// events still needs to reach the progress tracker so its end_version can
// advance the watermark).
// A non-nil error is always decode-fatal or store-transient (spec.md §7)
// and aborts the stage's task, which Chain propagates by cancelling
// every other stage via context.
type Stage[I, O any] interface {
	Process(ctx context.Context, in Envelope[I]) (out Envelope[O], ok bool, err error)
}

// StageFunc adapts a plain function to the Stage interface.
type StageFunc[I, O any] func(ctx context.Context, in Envelope[I]) (Envelope[O], bool, error)

func (f StageFunc[I, O]) Process(ctx context.Context, in Envelope[I]) (Envelope[O], bool, error) {
	return f(ctx, in)
}

// run pumps in -> stage -> out until in is closed, ctx is cancelled, or the
// stage returns an error. It always closes out on return (teacher's
// "closure of the input channel drains the stage cleanly", chaindata_fetcher
// Stop(): close(stopCh); wg.Wait()).
func run[I, O any](ctx context.Context, in <-chan Envelope[I], out chan<- Envelope[O], stage Stage[I, O]) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case envelope, more := <-in:
			if !more {
				return nil
			}
			result, ok, err := stage.Process(ctx, envelope)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			select {
			case out <- result:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
