package storer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
)

func envelope(evs []events.Event, start, end int64) pipeline.Envelope[[]events.Event] {
	return pipeline.Envelope[[]events.Event]{Data: evs, Meta: pipeline.Meta{StartVersion: start, EndVersion: end}}
}

// TestPlaceThenFillAcrossBatches covers spec.md S1.
func TestPlaceThenFillAcrossBatches(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)
	ctx := context.Background()

	_, ok, err := m.Process(ctx, envelope([]events.Event{
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 100, EventIndex: 0}, AskObjAddr: "0xA", Price: 1000},
	}, 100, 100))
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = m.Process(ctx, envelope([]events.Event{
		events.AskFilled{Coordinate: events.Coordinate{TxVersion: 101, EventIndex: 2}, AskObjAddr: "0xA", Price: 1000, BuyerAddr: "0xB", SellerAddr: "0xS"},
	}, 101, 101))
	require.NoError(t, err)
	require.True(t, ok)

	row := fs.asks["0xA"]
	require.NotNil(t, row)
	require.Equal(t, "filled", row.OrderStatus)
	require.Equal(t, int64(100), row.Placed.TxVersion)
	require.Equal(t, int64(0), row.Placed.EventIndex)
	require.Equal(t, int64(101), row.Filled.TxVersion)
	require.Equal(t, int64(2), row.Filled.EventIndex)
	require.Equal(t, int64(0), row.Cancelled.TxVersion)
}

// TestOutOfOrderWithinBatch covers spec.md S2: events for the same ask
// delivered out of (tx_version, event_index) order within one batch still
// converge on the correct final state because every upsert's predicate is
// coordinate-gated, not arrival-order-gated.
func TestOutOfOrderWithinBatch(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)

	_, _, err := m.Process(context.Background(), envelope([]events.Event{
		events.AskFilled{Coordinate: events.Coordinate{TxVersion: 5, EventIndex: 3}, AskObjAddr: "0xA"},
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 5, EventIndex: 0}, AskObjAddr: "0xA"},
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 5, EventIndex: 1}, AskObjAddr: "0xA"},
	}, 5, 5))
	require.NoError(t, err)

	row := fs.asks["0xA"]
	require.NotNil(t, row)
	require.Equal(t, int64(5), row.Placed.TxVersion)
	require.Equal(t, int64(1), row.Placed.EventIndex)
	require.Equal(t, int64(3), row.Filled.EventIndex)
	require.Equal(t, "filled", row.OrderStatus)
}

// TestReplayIdempotence covers spec.md S3/P4: applying the same two batches
// twice leaves the store state unchanged and writes exactly one Activity
// row per (tx_version, event_index).
func TestReplayIdempotence(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)
	ctx := context.Background()

	batchA := envelope([]events.Event{
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 100, EventIndex: 0}, AskObjAddr: "0xA", Price: 1000},
	}, 100, 100)
	batchB := envelope([]events.Event{
		events.AskFilled{Coordinate: events.Coordinate{TxVersion: 101, EventIndex: 2}, AskObjAddr: "0xA", Price: 1000, BuyerAddr: "0xB", SellerAddr: "0xS"},
	}, 101, 101)

	for _, b := range []pipeline.Envelope[[]events.Event]{batchA, batchB, batchA, batchB} {
		_, _, err := m.Process(ctx, b)
		require.NoError(t, err)
	}

	require.Len(t, fs.activities, 2)
	row := fs.asks["0xA"]
	require.Equal(t, "filled", row.OrderStatus)
	require.Equal(t, int64(100), row.Placed.TxVersion)
	require.Equal(t, int64(101), row.Filled.TxVersion)
}

// TestCollectionBidPartialFills covers spec.md S4.
func TestCollectionBidPartialFills(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)
	ctx := context.Background()

	_, _, err := m.Process(ctx, envelope([]events.Event{
		events.CollectionBidPlaced{Coordinate: events.Coordinate{TxVersion: 10, EventIndex: 0}, BidObjAddr: "0xCB", TotalNftAmount: 3, Price: 100},
	}, 10, 10))
	require.NoError(t, err)

	_, _, err = m.Process(ctx, envelope([]events.Event{
		events.CollectionBidFilled{Coordinate: events.Coordinate{TxVersion: 11, EventIndex: 0}, BidObjAddr: "0xCB", NftID: "N1", SellerAddr: "0xS1"},
	}, 11, 11))
	require.NoError(t, err)

	_, _, err = m.Process(ctx, envelope([]events.Event{
		events.CollectionBidFilled{Coordinate: events.Coordinate{TxVersion: 12, EventIndex: 0}, BidObjAddr: "0xCB", NftID: "N2", SellerAddr: "0xS2"},
	}, 12, 12))
	require.NoError(t, err)

	row := fs.collectionBids["0xCB"]
	require.NotNil(t, row)
	require.Equal(t, int64(12), row.LatestFilled.TxVersion)
	require.Equal(t, "open", row.OrderStatus)
	require.Len(t, fs.filledCollection, 2)
}

// TestCancelThenLatePlaceRejected covers spec.md S5: a cancel that arrives
// (and is applied) before an earlier-coordinate placed event still wins the
// order_status race, since status is gated on the latest coordinate across
// all phases, not on the placed phase alone.
func TestCancelThenLatePlaceRejected(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)
	ctx := context.Background()

	_, _, err := m.Process(ctx, envelope([]events.Event{
		events.AskCancelled{Coordinate: events.Coordinate{TxVersion: 20, EventIndex: 0}, AskObjAddr: "0xA"},
	}, 20, 20))
	require.NoError(t, err)

	_, _, err = m.Process(ctx, envelope([]events.Event{
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 10, EventIndex: 0}, AskObjAddr: "0xA"},
	}, 10, 10))
	require.NoError(t, err)

	row := fs.asks["0xA"]
	require.Equal(t, int64(20), row.Cancelled.TxVersion)
	require.Equal(t, int64(10), row.Placed.TxVersion)
	require.Equal(t, "cancelled", row.OrderStatus)
}

// TestBatchContainingTwoPlacedEventsKeepsLargerIndex covers spec.md B3.
func TestBatchContainingTwoPlacedEventsKeepsLargerIndex(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)

	_, _, err := m.Process(context.Background(), envelope([]events.Event{
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 7, EventIndex: 0}, AskObjAddr: "0xA", Price: 1},
		events.AskPlaced{Coordinate: events.Coordinate{TxVersion: 7, EventIndex: 4}, AskObjAddr: "0xA", Price: 2},
	}, 7, 7))
	require.NoError(t, err)

	row := fs.asks["0xA"]
	require.Equal(t, int64(4), row.Placed.EventIndex)
	require.Equal(t, int64(2), row.Price)
}

// TestEmptyBatchStillAppliesCleanly confirms the Storer stage tolerates a
// batch with zero events (spec.md B2's forwarding from the extractor still
// needs to flow cleanly through the storer to the tracker).
func TestEmptyBatchStillAppliesCleanly(t *testing.T) {
	fs := newFakeStore()
	m := NewMarketplace(fs, 0)

	out, ok, err := m.Process(context.Background(), envelope(nil, 50, 55))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, out.Data.EventCount)
	require.Equal(t, int64(55), out.Meta.EndVersion)
}
