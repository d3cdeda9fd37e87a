// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package store is the Postgres-backed persistence layer (spec.md §4.4,
// §6 db_config). It owns the pooled connection, the per-chunk transactional
// apply, and the conditional-upsert SQL that is the sole ordering authority
// once events reach the database (spec.md §5). Grounded on
// _examples/other_examples/ee1235c1_Outblock-flowindex.../ingest.go's
// pgx/v5 upsert-with-ON-CONFLICT shape, since the teacher repo has no SQL
// store of its own (klaytn persists to a KV/state trie, not a relational
// schema).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nft-aggregator/indexer/internal/logging"
	"github.com/nft-aggregator/indexer/internal/metrics"
	"github.com/nft-aggregator/indexer/pkg/events"
)

var logger = logging.New("store")

// QueryDefaultRetries and QueryDefaultRetryDelay are the infrastructure-layer
// retry parameters spec.md §6 names for transient DB failures (connection
// drop, serialization failure, deadlock). Retrying is safe here only because
// every upsert in this package is idempotent under I1-I4: re-running a whole
// chunk transaction from scratch after a transient abort can never produce a
// different stored result than running it once.
const (
	QueryDefaultRetries    = 5
	QueryDefaultRetryDelay = 500 * time.Millisecond
)

// Store wraps the pooled Postgres connection (spec.md §5: "A database
// connection pool (default size 50) is the only shared mutable resource").
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to connString and configures the pool size (spec.md §6
// db_config.db_pool_size, default 50).
func Open(ctx context.Context, connString string, poolSize int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("store: parse connection string: %w", err)
	}
	if poolSize > 0 {
		cfg.MaxConns = poolSize
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

// execer is the subset of pgx.Tx / *pgxpool.Pool the upsert helpers need —
// satisfied by both, so the same query methods run inside a chunk
// transaction or (for the watermark/chain-id guard, which have no batch
// chunking) directly against the pool.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Applier is the full set of conditional-upsert methods *Queries exposes.
// It exists so pkg/storer can depend on an interface rather than the
// concrete pgx-backed type, letting its tests substitute an in-memory fake
// that reproduces the same monotonic-predicate semantics in Go.
type Applier interface {
	UpsertAskPlaced(ctx context.Context, e events.AskPlaced) error
	UpsertAskFilled(ctx context.Context, e events.AskFilled) error
	UpsertAskCancelled(ctx context.Context, e events.AskCancelled) error
	UpsertBidPlaced(ctx context.Context, e events.BidPlaced) error
	UpsertBidFilled(ctx context.Context, e events.BidFilled) error
	UpsertBidCancelled(ctx context.Context, e events.BidCancelled) error
	UpsertCollectionBidPlaced(ctx context.Context, e events.CollectionBidPlaced) error
	UpsertCollectionBidFilled(ctx context.Context, bidObjAddr string, txVersion, eventIndex, timestamp int64) error
	InsertFilledCollectionBid(ctx context.Context, e events.CollectionBidFilled) error
	UpsertCollectionBidCancelled(ctx context.Context, e events.CollectionBidCancelled) error
	UpsertPackageUpgrade(ctx context.Context, e events.PackageUpgradeEvent) error
	UpsertModuleUpgrade(ctx context.Context, e events.ModuleUpgradeEvent) error
	InsertActivity(ctx context.Context, ev events.Event, entityKind, entityKey string) error
}

// RunInChunkTx opens one transaction, hands the caller an Applier scoped to
// it, and commits on success (spec.md §4.4.2: "each chunk is its own
// database transaction"). A transient failure (connection drop,
// serialization failure, deadlock) retries the whole begin/apply/commit
// sequence up to QueryDefaultRetries times, sleeping QueryDefaultRetryDelay
// between attempts, per spec.md §6's QUERY_DEFAULT_RETRIES/
// QUERY_DEFAULT_RETRY_DELAY_MS. Retrying the entire chunk rather than just
// the failed statement is safe precisely because every upsert is
// idempotent (I1-I4).
func (s *Store) RunInChunkTx(ctx context.Context, fn func(ctx context.Context, q Applier) error) error {
	var lastErr error
	for attempt := 0; attempt <= QueryDefaultRetries; attempt++ {
		if attempt > 0 {
			metrics.ChunkRetryCounter.Inc(1)
			logger.Warn("retrying chunk transaction", "attempt", attempt, "err", lastErr)
			select {
			case <-time.After(QueryDefaultRetryDelay):
			case <-ctx.Done():
				return lastErr
			}
		}

		err := s.runChunkTxOnce(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("store: chunk tx failed after %d retries: %w", QueryDefaultRetries, lastErr)
}

func (s *Store) runChunkTxOnce(ctx context.Context, fn func(ctx context.Context, q Applier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin chunk tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &Queries{exec: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit chunk tx: %w", err)
	}
	return nil
}

// Queries on the pool directly, for the watermark/chain-id guard which run
// outside of batch chunking.
func (s *Store) Queries() *Queries { return &Queries{exec: s.pool} }
