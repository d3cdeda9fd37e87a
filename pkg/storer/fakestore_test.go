package storer

import (
	"context"
	"sync"

	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/store"
)

// fakeStore is an in-memory stand-in for *store.Store that reproduces the
// monotonic conditional-upsert semantics of pkg/store's SQL (spec.md §4.4.1,
// I1-I4) in plain Go, so the Storer stage's partition/dedup/join logic
// (which is what this package actually tests) can be exercised without a
// database. RunInChunkTx applies each chunk directly against the same
// maps — sufficient here since the fake has no real transactional
// rollback to model partial failure.
type fakeStore struct {
	mu sync.Mutex

	asks             map[string]*askRow
	bids             map[string]*bidRow
	collectionBids   map[string]*collectionBidRow
	filledCollection map[string]*filledRow
	activities       map[events.Coordinate]bool
	packages         map[string]bool
	modules          map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		asks:             make(map[string]*askRow),
		bids:             make(map[string]*bidRow),
		collectionBids:   make(map[string]*collectionBidRow),
		filledCollection: make(map[string]*filledRow),
		activities:       make(map[events.Coordinate]bool),
		packages:         make(map[string]bool),
		modules:          make(map[string]bool),
	}
}

func (f *fakeStore) RunInChunkTx(ctx context.Context, fn func(ctx context.Context, q store.Applier) error) error {
	return fn(ctx, f)
}

type phase struct {
	Timestamp, TxVersion, EventIndex int64
}

func (p phase) coord() events.Coordinate { return events.Coordinate{TxVersion: p.TxVersion, EventIndex: p.EventIndex} }

type askRow struct {
	events.NFTIdentity
	AskObjAddr                         string
	MarketplaceAddr                    string
	Price, Royalties, Commission       int64
	PaymentToken                       string
	PaymentTokenType                   events.PaymentTokenType
	SellerAddr, BuyerAddr              string
	OrderType                          events.OrderType
	OrderStatus                        string
	Placed, Filled, Cancelled          phase
	LatestTxVersion, LatestEventIndex  int64
}

func (r *askRow) latest() events.Coordinate {
	return events.Coordinate{TxVersion: r.LatestTxVersion, EventIndex: r.LatestEventIndex}
}

func (r *askRow) bumpLatest(c events.Coordinate, status string) {
	if r.latest().Less(c) {
		r.OrderStatus = status
	}
	if c.TxVersion > r.LatestTxVersion || (c.TxVersion == r.LatestTxVersion && c.EventIndex > r.LatestEventIndex) {
		r.LatestTxVersion, r.LatestEventIndex = c.TxVersion, c.EventIndex
	}
}

func (f *fakeStore) UpsertAskPlaced(ctx context.Context, e events.AskPlaced) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.asks[e.AskObjAddr]
	if !ok {
		row = &askRow{AskObjAddr: e.AskObjAddr, OrderStatus: "open"}
		f.asks[e.AskObjAddr] = row
	} else if !row.Placed.coord().Less(e.Coordinate) {
		return nil
	}
	row.NFTIdentity = e.NFT
	row.MarketplaceAddr = e.MarketplaceAddr
	row.Price, row.Royalties, row.Commission = e.Price, e.Royalties, e.Commission
	row.PaymentToken, row.PaymentTokenType = e.PaymentToken, e.PaymentTokenType
	row.SellerAddr, row.OrderType = e.SellerAddr, e.OrderType
	row.Placed = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	row.bumpLatest(e.Coordinate, "open")
	return nil
}

func (f *fakeStore) UpsertAskFilled(ctx context.Context, e events.AskFilled) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.asks[e.AskObjAddr]
	if !ok {
		row = &askRow{AskObjAddr: e.AskObjAddr}
		f.asks[e.AskObjAddr] = row
	} else if !row.Filled.coord().Less(e.Coordinate) {
		return nil
	}
	row.Price, row.BuyerAddr, row.SellerAddr = e.Price, e.BuyerAddr, e.SellerAddr
	row.Filled = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	row.bumpLatest(e.Coordinate, "filled")
	return nil
}

func (f *fakeStore) UpsertAskCancelled(ctx context.Context, e events.AskCancelled) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.asks[e.AskObjAddr]
	if !ok {
		row = &askRow{AskObjAddr: e.AskObjAddr}
		f.asks[e.AskObjAddr] = row
	} else if !row.Cancelled.coord().Less(e.Coordinate) {
		return nil
	}
	row.Cancelled = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	row.bumpLatest(e.Coordinate, "cancelled")
	return nil
}

type bidRow struct {
	events.NFTIdentity
	BidObjAddr                        string
	Price                             int64
	BuyerAddr, SellerAddr             string
	OrderStatus                       string
	Placed, Filled, Cancelled         phase
	LatestTxVersion, LatestEventIndex int64
}

func (r *bidRow) latest() events.Coordinate {
	return events.Coordinate{TxVersion: r.LatestTxVersion, EventIndex: r.LatestEventIndex}
}

func (r *bidRow) bumpLatest(c events.Coordinate, status string) {
	if r.latest().Less(c) {
		r.OrderStatus = status
	}
	if c.TxVersion > r.LatestTxVersion || (c.TxVersion == r.LatestTxVersion && c.EventIndex > r.LatestEventIndex) {
		r.LatestTxVersion, r.LatestEventIndex = c.TxVersion, c.EventIndex
	}
}

func (f *fakeStore) UpsertBidPlaced(ctx context.Context, e events.BidPlaced) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.bids[e.BidObjAddr]
	if !ok {
		row = &bidRow{BidObjAddr: e.BidObjAddr, OrderStatus: "open"}
		f.bids[e.BidObjAddr] = row
	} else if !row.Placed.coord().Less(e.Coordinate) {
		return nil
	}
	row.NFTIdentity = e.NFT
	row.BuyerAddr = e.BuyerAddr
	row.Placed = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	row.bumpLatest(e.Coordinate, "open")
	return nil
}

func (f *fakeStore) UpsertBidFilled(ctx context.Context, e events.BidFilled) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.bids[e.BidObjAddr]
	if !ok {
		row = &bidRow{BidObjAddr: e.BidObjAddr}
		f.bids[e.BidObjAddr] = row
	} else if !row.Filled.coord().Less(e.Coordinate) {
		return nil
	}
	row.Price, row.SellerAddr = e.Price, e.SellerAddr
	row.Filled = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	row.bumpLatest(e.Coordinate, "filled")
	return nil
}

func (f *fakeStore) UpsertBidCancelled(ctx context.Context, e events.BidCancelled) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.bids[e.BidObjAddr]
	if !ok {
		row = &bidRow{BidObjAddr: e.BidObjAddr}
		f.bids[e.BidObjAddr] = row
	} else if !row.Cancelled.coord().Less(e.Coordinate) {
		return nil
	}
	row.Cancelled = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	row.bumpLatest(e.Coordinate, "cancelled")
	return nil
}

type collectionBidRow struct {
	BidObjAddr                        string
	CollectionAddr                    string
	TotalNftAmount                    int64
	OrderStatus                       string
	Placed, Cancelled, LatestFilled   phase
	LatestTxVersion, LatestEventIndex int64
}

func (r *collectionBidRow) latest() events.Coordinate {
	return events.Coordinate{TxVersion: r.LatestTxVersion, EventIndex: r.LatestEventIndex}
}

func (f *fakeStore) UpsertCollectionBidPlaced(ctx context.Context, e events.CollectionBidPlaced) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.collectionBids[e.BidObjAddr]
	if !ok {
		row = &collectionBidRow{BidObjAddr: e.BidObjAddr, OrderStatus: "open"}
		f.collectionBids[e.BidObjAddr] = row
	} else if !row.Placed.coord().Less(e.Coordinate) {
		return nil
	}
	row.CollectionAddr = e.CollectionAddr
	row.TotalNftAmount = e.TotalNftAmount
	row.Placed = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	if row.latest().Less(e.Coordinate) {
		row.OrderStatus = "open"
	}
	if e.TxVersion > row.LatestTxVersion || (e.TxVersion == row.LatestTxVersion && e.EventIndex > row.LatestEventIndex) {
		row.LatestTxVersion, row.LatestEventIndex = e.TxVersion, e.EventIndex
	}
	return nil
}

func (f *fakeStore) UpsertCollectionBidFilled(ctx context.Context, bidObjAddr string, txVersion, eventIndex, timestamp int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.collectionBids[bidObjAddr]
	if !ok {
		row = &collectionBidRow{BidObjAddr: bidObjAddr}
		f.collectionBids[bidObjAddr] = row
	}
	coord := events.Coordinate{TxVersion: txVersion, EventIndex: eventIndex}
	if ok && !row.LatestFilled.coord().Less(coord) {
		return nil
	}
	row.LatestFilled = phase{timestamp, txVersion, eventIndex}
	return nil
}

func (f *fakeStore) InsertFilledCollectionBid(ctx context.Context, e events.CollectionBidFilled) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := e.BidObjAddr + "/" + e.NftID + "/" + e.NftName
	row, ok := f.filledCollection[key]
	if !ok {
		row = &filledRow{}
		f.filledCollection[key] = row
	} else if !row.Filled.coord().Less(e.Coordinate) {
		return nil
	}
	row.SellerAddr, row.Price = e.SellerAddr, e.Price
	row.Filled = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	return nil
}

type filledRow struct {
	SellerAddr string
	Price      int64
	Filled     phase
}

func (f *fakeStore) UpsertCollectionBidCancelled(ctx context.Context, e events.CollectionBidCancelled) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.collectionBids[e.BidObjAddr]
	if !ok {
		row = &collectionBidRow{BidObjAddr: e.BidObjAddr}
		f.collectionBids[e.BidObjAddr] = row
	} else if !row.Cancelled.coord().Less(e.Coordinate) {
		return nil
	}
	row.Cancelled = phase{e.Timestamp, e.TxVersion, e.EventIndex}
	if e.RemainingAmount == 0 && row.latest().Less(e.Coordinate) {
		row.OrderStatus = "cancelled"
	}
	if e.TxVersion > row.LatestTxVersion || (e.TxVersion == row.LatestTxVersion && e.EventIndex > row.LatestEventIndex) {
		row.LatestTxVersion, row.LatestEventIndex = e.TxVersion, e.EventIndex
	}
	return nil
}

func (f *fakeStore) InsertActivity(ctx context.Context, ev events.Event, entityKind, entityKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities[ev.Coord()] = true
	return nil
}

func (f *fakeStore) UpsertPackageUpgrade(ctx context.Context, e events.PackageUpgradeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.packages[e.PackageAddr+"/"+e.PackageName+"#"+itoa(e.UpgradeNumber)] = true
	return nil
}

func (f *fakeStore) UpsertModuleUpgrade(ctx context.Context, e events.ModuleUpgradeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules[e.ModuleAddr+"::"+e.ModuleName+"#"+itoa(e.UpgradeNumber)] = true
	return nil
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
