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
	"fmt"

	"github.com/nft-aggregator/indexer/pkg/events"
)

// Queries executes the conditional-upsert SQL against either a chunk
// transaction or the pool directly (spec.md §4.4.1).
//
// Every order table carries, alongside its per-phase (timestamp,
// tx_version, event_index) triplets, a (latest_tx_version, latest_event_index)
// pair that records the coordinate of whichever phase most recently decided
// order_status. order_status is only overwritten when the incoming event's
// coordinate is newer than that pair — not merely newer than its own phase's
// stored coordinate. Without this, a late-arriving placed event that is
// still newer than the row's (zero-valued) placed coordinate could stomp an
// already-terminal Filled/Cancelled status (spec.md I2, S5). This is the one
// elaboration spec.md's illustrative SQL leaves to the implementer; see
// DESIGN.md.
type Queries struct {
	exec execer
}

func (q *Queries) UpsertAskPlaced(ctx context.Context, e events.AskPlaced) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO nft_asks (
	ask_obj_addr, nft_id, nft_name, collection_addr, collection_creator_addr, collection_name, nft_standard,
	marketplace_addr, price, royalties, commission, payment_token, payment_token_type,
	seller_addr, order_type,
	order_placed_timestamp, order_placed_tx_version, order_placed_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,'open',$17,$18)
ON CONFLICT (ask_obj_addr) DO UPDATE SET
	nft_id = EXCLUDED.nft_id, nft_name = EXCLUDED.nft_name,
	collection_addr = EXCLUDED.collection_addr, collection_creator_addr = EXCLUDED.collection_creator_addr,
	collection_name = EXCLUDED.collection_name, nft_standard = EXCLUDED.nft_standard,
	marketplace_addr = EXCLUDED.marketplace_addr, price = EXCLUDED.price, royalties = EXCLUDED.royalties,
	commission = EXCLUDED.commission, payment_token = EXCLUDED.payment_token, payment_token_type = EXCLUDED.payment_token_type,
	seller_addr = EXCLUDED.seller_addr, order_type = EXCLUDED.order_type,
	order_placed_timestamp = EXCLUDED.order_placed_timestamp,
	order_placed_tx_version = EXCLUDED.order_placed_tx_version,
	order_placed_event_index = EXCLUDED.order_placed_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (nft_asks.latest_tx_version, nft_asks.latest_event_index)
		THEN EXCLUDED.order_status ELSE nft_asks.order_status END,
	latest_tx_version = GREATEST(nft_asks.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > nft_asks.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = nft_asks.latest_tx_version THEN GREATEST(nft_asks.latest_event_index, EXCLUDED.latest_event_index)
		ELSE nft_asks.latest_event_index END
WHERE nft_asks.order_placed_tx_version < EXCLUDED.order_placed_tx_version
   OR (nft_asks.order_placed_tx_version = EXCLUDED.order_placed_tx_version AND nft_asks.order_placed_event_index < EXCLUDED.order_placed_event_index)
`,
		e.AskObjAddr, e.NFT.NftID, e.NFT.NftName, e.NFT.CollectionAddr, e.NFT.CollectionCreatorAddr, e.NFT.CollectionName, int(e.NFT.NftStandard),
		e.MarketplaceAddr, e.Price, e.Royalties, e.Commission, e.PaymentToken, int(e.PaymentTokenType),
		e.SellerAddr, int(e.OrderType),
		e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert ask placed %s: %w", e.AskObjAddr, err)
	}
	return nil
}

func (q *Queries) UpsertAskFilled(ctx context.Context, e events.AskFilled) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO nft_asks (
	ask_obj_addr, price, buyer_addr, seller_addr,
	order_filled_timestamp, order_filled_tx_version, order_filled_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,$5,$6,$7,'filled',$6,$7)
ON CONFLICT (ask_obj_addr) DO UPDATE SET
	price = EXCLUDED.price, buyer_addr = EXCLUDED.buyer_addr, seller_addr = EXCLUDED.seller_addr,
	order_filled_timestamp = EXCLUDED.order_filled_timestamp,
	order_filled_tx_version = EXCLUDED.order_filled_tx_version,
	order_filled_event_index = EXCLUDED.order_filled_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (nft_asks.latest_tx_version, nft_asks.latest_event_index)
		THEN EXCLUDED.order_status ELSE nft_asks.order_status END,
	latest_tx_version = GREATEST(nft_asks.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > nft_asks.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = nft_asks.latest_tx_version THEN GREATEST(nft_asks.latest_event_index, EXCLUDED.latest_event_index)
		ELSE nft_asks.latest_event_index END
WHERE nft_asks.order_filled_tx_version < EXCLUDED.order_filled_tx_version
   OR (nft_asks.order_filled_tx_version = EXCLUDED.order_filled_tx_version AND nft_asks.order_filled_event_index < EXCLUDED.order_filled_event_index)
`,
		e.AskObjAddr, e.Price, e.BuyerAddr, e.SellerAddr, e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert ask filled %s: %w", e.AskObjAddr, err)
	}
	return nil
}

func (q *Queries) UpsertAskCancelled(ctx context.Context, e events.AskCancelled) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO nft_asks (
	ask_obj_addr,
	order_cancelled_timestamp, order_cancelled_tx_version, order_cancelled_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,'cancelled',$3,$4)
ON CONFLICT (ask_obj_addr) DO UPDATE SET
	order_cancelled_timestamp = EXCLUDED.order_cancelled_timestamp,
	order_cancelled_tx_version = EXCLUDED.order_cancelled_tx_version,
	order_cancelled_event_index = EXCLUDED.order_cancelled_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (nft_asks.latest_tx_version, nft_asks.latest_event_index)
		THEN EXCLUDED.order_status ELSE nft_asks.order_status END,
	latest_tx_version = GREATEST(nft_asks.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > nft_asks.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = nft_asks.latest_tx_version THEN GREATEST(nft_asks.latest_event_index, EXCLUDED.latest_event_index)
		ELSE nft_asks.latest_event_index END
WHERE nft_asks.order_cancelled_tx_version < EXCLUDED.order_cancelled_tx_version
   OR (nft_asks.order_cancelled_tx_version = EXCLUDED.order_cancelled_tx_version AND nft_asks.order_cancelled_event_index < EXCLUDED.order_cancelled_event_index)
`,
		e.AskObjAddr, e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert ask cancelled %s: %w", e.AskObjAddr, err)
	}
	return nil
}

func (q *Queries) UpsertBidPlaced(ctx context.Context, e events.BidPlaced) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO nft_bids (
	bid_obj_addr, nft_id, nft_name, collection_addr, collection_creator_addr, collection_name, nft_standard,
	marketplace_addr, price, royalties, commission, payment_token, payment_token_type, buyer_addr,
	order_placed_timestamp, order_placed_tx_version, order_placed_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,'open',$16,$17)
ON CONFLICT (bid_obj_addr) DO UPDATE SET
	nft_id = EXCLUDED.nft_id, nft_name = EXCLUDED.nft_name,
	collection_addr = EXCLUDED.collection_addr, collection_creator_addr = EXCLUDED.collection_creator_addr,
	collection_name = EXCLUDED.collection_name, nft_standard = EXCLUDED.nft_standard,
	marketplace_addr = EXCLUDED.marketplace_addr, price = EXCLUDED.price, royalties = EXCLUDED.royalties,
	commission = EXCLUDED.commission, payment_token = EXCLUDED.payment_token, payment_token_type = EXCLUDED.payment_token_type,
	buyer_addr = EXCLUDED.buyer_addr,
	order_placed_timestamp = EXCLUDED.order_placed_timestamp,
	order_placed_tx_version = EXCLUDED.order_placed_tx_version,
	order_placed_event_index = EXCLUDED.order_placed_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (nft_bids.latest_tx_version, nft_bids.latest_event_index)
		THEN EXCLUDED.order_status ELSE nft_bids.order_status END,
	latest_tx_version = GREATEST(nft_bids.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > nft_bids.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = nft_bids.latest_tx_version THEN GREATEST(nft_bids.latest_event_index, EXCLUDED.latest_event_index)
		ELSE nft_bids.latest_event_index END
WHERE nft_bids.order_placed_tx_version < EXCLUDED.order_placed_tx_version
   OR (nft_bids.order_placed_tx_version = EXCLUDED.order_placed_tx_version AND nft_bids.order_placed_event_index < EXCLUDED.order_placed_event_index)
`,
		e.BidObjAddr, e.NFT.NftID, e.NFT.NftName, e.NFT.CollectionAddr, e.NFT.CollectionCreatorAddr, e.NFT.CollectionName, int(e.NFT.NftStandard),
		e.MarketplaceAddr, e.Price, e.Royalties, e.Commission, e.PaymentToken, int(e.PaymentTokenType), e.BuyerAddr,
		e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert bid placed %s: %w", e.BidObjAddr, err)
	}
	return nil
}

func (q *Queries) UpsertBidFilled(ctx context.Context, e events.BidFilled) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO nft_bids (
	bid_obj_addr, price, seller_addr,
	order_filled_timestamp, order_filled_tx_version, order_filled_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,$5,$6,'filled',$5,$6)
ON CONFLICT (bid_obj_addr) DO UPDATE SET
	price = EXCLUDED.price, seller_addr = EXCLUDED.seller_addr,
	order_filled_timestamp = EXCLUDED.order_filled_timestamp,
	order_filled_tx_version = EXCLUDED.order_filled_tx_version,
	order_filled_event_index = EXCLUDED.order_filled_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (nft_bids.latest_tx_version, nft_bids.latest_event_index)
		THEN EXCLUDED.order_status ELSE nft_bids.order_status END,
	latest_tx_version = GREATEST(nft_bids.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > nft_bids.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = nft_bids.latest_tx_version THEN GREATEST(nft_bids.latest_event_index, EXCLUDED.latest_event_index)
		ELSE nft_bids.latest_event_index END
WHERE nft_bids.order_filled_tx_version < EXCLUDED.order_filled_tx_version
   OR (nft_bids.order_filled_tx_version = EXCLUDED.order_filled_tx_version AND nft_bids.order_filled_event_index < EXCLUDED.order_filled_event_index)
`,
		e.BidObjAddr, e.Price, e.SellerAddr, e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert bid filled %s: %w", e.BidObjAddr, err)
	}
	return nil
}

func (q *Queries) UpsertBidCancelled(ctx context.Context, e events.BidCancelled) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO nft_bids (
	bid_obj_addr,
	order_cancelled_timestamp, order_cancelled_tx_version, order_cancelled_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,'cancelled',$3,$4)
ON CONFLICT (bid_obj_addr) DO UPDATE SET
	order_cancelled_timestamp = EXCLUDED.order_cancelled_timestamp,
	order_cancelled_tx_version = EXCLUDED.order_cancelled_tx_version,
	order_cancelled_event_index = EXCLUDED.order_cancelled_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (nft_bids.latest_tx_version, nft_bids.latest_event_index)
		THEN EXCLUDED.order_status ELSE nft_bids.order_status END,
	latest_tx_version = GREATEST(nft_bids.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > nft_bids.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = nft_bids.latest_tx_version THEN GREATEST(nft_bids.latest_event_index, EXCLUDED.latest_event_index)
		ELSE nft_bids.latest_event_index END
WHERE nft_bids.order_cancelled_tx_version < EXCLUDED.order_cancelled_tx_version
   OR (nft_bids.order_cancelled_tx_version = EXCLUDED.order_cancelled_tx_version AND nft_bids.order_cancelled_event_index < EXCLUDED.order_cancelled_event_index)
`,
		e.BidObjAddr, e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert bid cancelled %s: %w", e.BidObjAddr, err)
	}
	return nil
}

// UpsertCollectionBidPlaced writes the Open-phase row. Unlike NftAsk/NftBid,
// CollectionBid's terminal-status gate only ever fires from a cancel with
// remaining_amount=0 (spec.md §4.4.3) — fills advance latest_order_filled_*
// but never flip order_status — so placed/cancelled share the same
// latest_tx_version/latest_event_index tiebreak nft_asks uses, and
// UpsertCollectionBidFilled below deliberately does not touch order_status.
func (q *Queries) UpsertCollectionBidPlaced(ctx context.Context, e events.CollectionBidPlaced) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO collection_bids (
	bid_obj_addr, collection_addr, collection_creator_addr, collection_name, nft_standard,
	marketplace_addr, price, royalties, commission, payment_token, payment_token_type, buyer_addr,
	total_nft_amount, order_expiration_timestamp,
	order_placed_timestamp, order_placed_tx_version, order_placed_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,'open',$16,$17)
ON CONFLICT (bid_obj_addr) DO UPDATE SET
	collection_addr = EXCLUDED.collection_addr, collection_creator_addr = EXCLUDED.collection_creator_addr,
	collection_name = EXCLUDED.collection_name, nft_standard = EXCLUDED.nft_standard,
	marketplace_addr = EXCLUDED.marketplace_addr, price = EXCLUDED.price, royalties = EXCLUDED.royalties,
	commission = EXCLUDED.commission, payment_token = EXCLUDED.payment_token, payment_token_type = EXCLUDED.payment_token_type,
	buyer_addr = EXCLUDED.buyer_addr, total_nft_amount = EXCLUDED.total_nft_amount,
	order_expiration_timestamp = EXCLUDED.order_expiration_timestamp,
	order_placed_timestamp = EXCLUDED.order_placed_timestamp,
	order_placed_tx_version = EXCLUDED.order_placed_tx_version,
	order_placed_event_index = EXCLUDED.order_placed_event_index,
	order_status = CASE WHEN (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index)
		> (collection_bids.latest_tx_version, collection_bids.latest_event_index)
		THEN EXCLUDED.order_status ELSE collection_bids.order_status END,
	latest_tx_version = GREATEST(collection_bids.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > collection_bids.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = collection_bids.latest_tx_version THEN GREATEST(collection_bids.latest_event_index, EXCLUDED.latest_event_index)
		ELSE collection_bids.latest_event_index END
WHERE collection_bids.order_placed_tx_version < EXCLUDED.order_placed_tx_version
   OR (collection_bids.order_placed_tx_version = EXCLUDED.order_placed_tx_version AND collection_bids.order_placed_event_index < EXCLUDED.order_placed_event_index)
`,
		e.BidObjAddr, e.CollectionAddr, e.CollectionCreatorAddr, e.CollectionName, int(e.NftStandard),
		e.MarketplaceAddr, e.Price, e.Royalties, e.Commission, e.PaymentToken, int(e.PaymentTokenType), e.BuyerAddr,
		e.TotalNftAmount, e.OrderExpirationTimestamp,
		e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert collection bid placed %s: %w", e.BidObjAddr, err)
	}
	return nil
}

// UpsertCollectionBidFilled advances latest_order_filled_* on the parent
// collection_bids row; it is gated only by that coordinate (fills never
// affect order_status, spec.md §4.4.3).
func (q *Queries) UpsertCollectionBidFilled(ctx context.Context, bidObjAddr string, txVersion, eventIndex, timestamp int64) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO collection_bids (bid_obj_addr, latest_order_filled_timestamp, latest_order_filled_tx_version, latest_order_filled_event_index)
VALUES ($1,$2,$3,$4)
ON CONFLICT (bid_obj_addr) DO UPDATE SET
	latest_order_filled_timestamp = EXCLUDED.latest_order_filled_timestamp,
	latest_order_filled_tx_version = EXCLUDED.latest_order_filled_tx_version,
	latest_order_filled_event_index = EXCLUDED.latest_order_filled_event_index
WHERE collection_bids.latest_order_filled_tx_version < EXCLUDED.latest_order_filled_tx_version
   OR (collection_bids.latest_order_filled_tx_version = EXCLUDED.latest_order_filled_tx_version
       AND collection_bids.latest_order_filled_event_index < EXCLUDED.latest_order_filled_event_index)
`,
		bidObjAddr, timestamp, txVersion, eventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: upsert collection bid filled parent %s: %w", bidObjAddr, err)
	}
	return nil
}

// InsertFilledCollectionBid appends one concrete fill row, keyed by
// (bid_obj_addr, nft_id, nft_name) and gated by I4's monotonic predicate.
func (q *Queries) InsertFilledCollectionBid(ctx context.Context, e events.CollectionBidFilled) error {
	_, err := q.exec.Exec(ctx, `
INSERT INTO filled_collection_bids (bid_obj_addr, nft_id, nft_name, seller_addr, price, filled_timestamp, filled_tx_version, filled_event_index)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (bid_obj_addr, nft_id, nft_name) DO UPDATE SET
	seller_addr = EXCLUDED.seller_addr, price = EXCLUDED.price,
	filled_timestamp = EXCLUDED.filled_timestamp,
	filled_tx_version = EXCLUDED.filled_tx_version, filled_event_index = EXCLUDED.filled_event_index
WHERE filled_collection_bids.filled_tx_version < EXCLUDED.filled_tx_version
   OR (filled_collection_bids.filled_tx_version = EXCLUDED.filled_tx_version AND filled_collection_bids.filled_event_index < EXCLUDED.filled_event_index)
`,
		e.BidObjAddr, e.NftID, e.NftName, e.SellerAddr, e.Price, e.Timestamp, e.TxVersion, e.EventIndex,
	)
	if err != nil {
		return fmt.Errorf("store: insert filled collection bid %s/%s/%s: %w", e.BidObjAddr, e.NftID, e.NftName, err)
	}
	return nil
}

func (q *Queries) UpsertCollectionBidCancelled(ctx context.Context, e events.CollectionBidCancelled) error {
	status := "open"
	if e.RemainingAmount == 0 {
		status = "cancelled"
	}
	_, err := q.exec.Exec(ctx, `
INSERT INTO collection_bids (
	bid_obj_addr, order_cancelled_timestamp, order_cancelled_tx_version, order_cancelled_event_index,
	order_status, latest_tx_version, latest_event_index
) VALUES ($1,$2,$3,$4,$5,$3,$4)
ON CONFLICT (bid_obj_addr) DO UPDATE SET
	order_cancelled_timestamp = EXCLUDED.order_cancelled_timestamp,
	order_cancelled_tx_version = EXCLUDED.order_cancelled_tx_version,
	order_cancelled_event_index = EXCLUDED.order_cancelled_event_index,
	order_status = CASE WHEN EXCLUDED.order_status = 'cancelled'
		AND (EXCLUDED.latest_tx_version, EXCLUDED.latest_event_index) > (collection_bids.latest_tx_version, collection_bids.latest_event_index)
		THEN 'cancelled' ELSE collection_bids.order_status END,
	latest_tx_version = GREATEST(collection_bids.latest_tx_version, EXCLUDED.latest_tx_version),
	latest_event_index = CASE WHEN EXCLUDED.latest_tx_version > collection_bids.latest_tx_version THEN EXCLUDED.latest_event_index
		WHEN EXCLUDED.latest_tx_version = collection_bids.latest_tx_version THEN GREATEST(collection_bids.latest_event_index, EXCLUDED.latest_event_index)
		ELSE collection_bids.latest_event_index END
WHERE collection_bids.order_cancelled_tx_version < EXCLUDED.order_cancelled_tx_version
   OR (collection_bids.order_cancelled_tx_version = EXCLUDED.order_cancelled_tx_version AND collection_bids.order_cancelled_event_index < EXCLUDED.order_cancelled_event_index)
`,
		e.BidObjAddr, e.Timestamp, e.TxVersion, e.EventIndex, status,
	)
	if err != nil {
		return fmt.Errorf("store: upsert collection bid cancelled %s: %w", e.BidObjAddr, err)
	}
	return nil
}

// InsertActivity appends the immutable audit row (spec.md §4.4.1: conflict
// key is the natural identity, action DO NOTHING — I3).
func (q *Queries) InsertActivity(ctx context.Context, ev events.Event, entityKind, entityKey string) error {
	coord := ev.Coord()
	_, err := q.exec.Exec(ctx, `
INSERT INTO activities (tx_version, event_index, entity_kind, entity_key)
VALUES ($1,$2,$3,$4)
ON CONFLICT (tx_version, event_index) DO NOTHING
`,
		coord.TxVersion, coord.EventIndex, entityKind, entityKey,
	)
	if err != nil {
		return fmt.Errorf("store: insert activity (%d,%d): %w", coord.TxVersion, coord.EventIndex, err)
	}
	return nil
}
