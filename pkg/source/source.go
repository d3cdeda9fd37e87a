// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package source implements the Source stage (spec.md §4.2): resolving the
// effective starting version, guarding the chain id, and streaming batches
// of transactions in strict version order onto the pipeline.
package source

import (
	"context"
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/nft-aggregator/indexer/internal/logging"
	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
	"github.com/nft-aggregator/indexer/pkg/txstream"
)

var logger = logging.New("source")

// Watermarks is the subset of the store the Source stage needs: reading the
// durable watermark to resume from, and establishing/verifying the chain-id
// guard (spec.md §3 ProcessorStatus, LedgerInfo; I5, I6).
type Watermarks interface {
	LastSuccessVersion(ctx context.Context, processor string) (version int64, found bool, err error)
	EnsureChainID(ctx context.Context, chainID uint64) error
}

// New builds a pipeline.Source that resolves the effective starting version
// as max(configuredStart, storedLastSuccess+1) — defaulting to
// configuredStart when no watermark row exists (spec.md §4.2.1) — verifies
// the chain id (spec.md §4.2.2), then streams batches until the context is
// cancelled or the stream ends.
func New(client txstream.StreamClient, watermarks Watermarks, processor string, configuredStart int64) pipeline.Source {
	return func(ctx context.Context, out chan<- pipeline.Envelope[chain.Batch]) error {
		defer close(out)

		start, err := resolveStartVersion(ctx, watermarks, processor, configuredStart)
		if err != nil {
			return err
		}

		chainID, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("source: query chain id: %w", err)
		}
		if err := watermarks.EnsureChainID(ctx, chainID); err != nil {
			return fmt.Errorf("source: chain id guard: %w", err)
		}

		logger.Info("starting fetch", "processor", processor, "startVersion", start, "chainId", chainID)

		batches, errs := client.Subscribe(ctx, start)
		for {
			select {
			case <-ctx.Done():
				return nil
			case batch, more := <-batches:
				if !more {
					return <-errs
				}
				batchID := uuid.NewV4().String()
				logger.Debug("minted batch id", "batchId", batchID, "startVersion", batch.StartVersion, "endVersion", batch.EndVersion)
				envelope := pipeline.Envelope[chain.Batch]{
					Data: batch,
					Meta: pipeline.Meta{StartVersion: batch.StartVersion, EndVersion: batch.EndVersion, BatchID: batchID},
				}
				select {
				case out <- envelope:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func resolveStartVersion(ctx context.Context, watermarks Watermarks, processor string, configuredStart int64) (int64, error) {
	last, found, err := watermarks.LastSuccessVersion(ctx, processor)
	if err != nil {
		return 0, fmt.Errorf("source: read last success version: %w", err)
	}
	if !found {
		return configuredStart, nil
	}
	if resumeFrom := last + 1; resumeFrom > configuredStart {
		return resumeFrom, nil
	}
	return configuredStart, nil
}
