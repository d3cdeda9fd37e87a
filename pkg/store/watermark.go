// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// LastSuccessVersion implements source.Watermarks (spec.md §4.2.1). It
// always reads against the pool directly — the watermark predates batch
// chunking and has no chunk transaction to join.
func (q *Queries) LastSuccessVersion(ctx context.Context, processor string) (int64, bool, error) {
	var version int64
	err := q.exec.QueryRow(ctx, `
SELECT last_success_version FROM processor_status WHERE processor = $1
`, processor).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: read last success version for %s: %w", processor, err)
	}
	return version, true, nil
}

// UpsertProcessorStatus records the watermark after a batch applies
// successfully (spec.md §4.5). It is monotonic: a stale re-delivery of an
// already-applied batch never regresses last_success_version.
func (q *Queries) UpsertProcessorStatus(ctx context.Context, processor string, version int64) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO processor_status (processor, last_success_version)
VALUES ($1,$2)
ON CONFLICT (processor) DO UPDATE SET last_success_version = EXCLUDED.last_success_version
WHERE processor_status.last_success_version < EXCLUDED.last_success_version
`,
		processor, version,
	)
	if err != nil {
		return fmt.Errorf("store: upsert processor status %s: %w", processor, err)
	}
	return nil
}

// EnsureChainID implements the chain-id guard (spec.md §4.2.2, I6): the
// first run for this database claims a chain id, every later run must
// match it exactly or the process refuses to proceed — protecting against
// a misconfigured stream endpoint silently mixing data from two chains.
func (q *Queries) EnsureChainID(ctx context.Context, chainID uint64) error {
	var stored int64
	err := q.exec.QueryRow(ctx, `SELECT chain_id FROM ledger_info LIMIT 1`).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err := q.exec.Exec(ctx, `INSERT INTO ledger_info (chain_id) VALUES ($1)`, int64(chainID))
		if err != nil {
			return fmt.Errorf("store: record chain id %d: %w", chainID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read chain id: %w", err)
	}
	if stored != int64(chainID) {
		return fmt.Errorf("store: chain id mismatch: database has %d, stream reports %d", stored, chainID)
	}
	return nil
}
