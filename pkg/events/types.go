// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package events defines the unified domain-event sum (spec.md §9
// "Polymorphism") that every decoder dialect — Aptos-labs, Tradeport v1,
// Tradeport v2, and the contract-upgrade write-set scanner — produces into a
// common shape for the storer stage. This has no teacher analog (klaytn's
// own event sum is EVM log topics, not a Move event taxonomy), so the shape
// is derived directly from spec.md §3's data model and §9's strategy-pattern
// framing: one constructor per dialect, tried in fixed order, contributing
// to the same sum rather than virtual dispatch.
package events

// Coordinate is the (tx_version, event_index) causal coordinate that is the
// sole ordering authority once events reach the store (spec.md §5).
type Coordinate struct {
	TxVersion  int64
	EventIndex int64
}

// Less implements the total order spec.md §3 requires: tx_version first,
// event_index breaking ties within the same transaction.
func (c Coordinate) Less(o Coordinate) bool {
	if c.TxVersion != o.TxVersion {
		return c.TxVersion < o.TxVersion
	}
	return c.EventIndex < o.EventIndex
}

// NFTStandard distinguishes the two coexisting NFT standards (spec.md
// GLOSSARY).
type NFTStandard int

const (
	NFTStandardV1 NFTStandard = 1
	NFTStandardV2 NFTStandard = 2
)

// PaymentTokenType distinguishes the two fungible-asset payment rails.
type PaymentTokenType int

const (
	PaymentTokenCoin PaymentTokenType = 1
	PaymentTokenFA   PaymentTokenType = 2
)

// OrderType distinguishes fixed-price listings from auctions (NftAsk only).
type OrderType int

const (
	OrderTypeFixedPrice OrderType = 1
	OrderTypeAuction    OrderType = 2
)

// NFTIdentity is the NFT coordinate carried by every order entity (spec.md
// §3 "Essential attributes"). CollectionAddr is empty for NFT-V1 items,
// which identify by the (creator, collection, name, property_version)
// quadruple instead of an object address.
type NFTIdentity struct {
	NftID                  string
	NftName                string
	CollectionAddr         string
	CollectionCreatorAddr  string
	CollectionName         string
	NftStandard            NFTStandard
}

// Event is implemented by every domain event variant. Coord returns the
// causal coordinate the storer uses for conflict resolution and dedup.
type Event interface {
	Coord() Coordinate
}

// AskPlaced is emitted when an NftAsk (fixed-price listing or auction) is
// created, or re-created by Tradeport v1's UpdateListingEvent (spec.md
// §4.3.1 — modeled as a re-placed event on the same ask identity).
type AskPlaced struct {
	Coordinate
	AskObjAddr       string
	NFT              NFTIdentity
	MarketplaceAddr  string
	Price            int64
	Royalties        int64
	Commission       int64
	PaymentToken     string
	PaymentTokenType PaymentTokenType
	SellerAddr       string
	OrderType        OrderType
	Timestamp        int64
}

func (e AskPlaced) Coord() Coordinate { return e.Coordinate }

// AskFilled is emitted when a listing is bought.
type AskFilled struct {
	Coordinate
	AskObjAddr string
	Price      int64
	BuyerAddr  string
	SellerAddr string
	Timestamp  int64
}

func (e AskFilled) Coord() Coordinate { return e.Coordinate }

// AskCancelled is emitted when a listing is withdrawn.
type AskCancelled struct {
	Coordinate
	AskObjAddr string
	Timestamp  int64
}

func (e AskCancelled) Coord() Coordinate { return e.Coordinate }

// BidPlaced is emitted when a single-NFT bid is created.
type BidPlaced struct {
	Coordinate
	BidObjAddr       string
	NFT              NFTIdentity
	MarketplaceAddr  string
	Price            int64
	Royalties        int64
	Commission       int64
	PaymentToken     string
	PaymentTokenType PaymentTokenType
	BuyerAddr        string
	Timestamp        int64
}

func (e BidPlaced) Coord() Coordinate { return e.Coordinate }

// BidFilled is emitted when a single-NFT bid is accepted.
type BidFilled struct {
	Coordinate
	BidObjAddr string
	Price      int64
	SellerAddr string
	Timestamp  int64
}

func (e BidFilled) Coord() Coordinate { return e.Coordinate }

// BidCancelled is emitted when a single-NFT bid is withdrawn.
type BidCancelled struct {
	Coordinate
	BidObjAddr string
	Timestamp  int64
}

func (e BidCancelled) Coord() Coordinate { return e.Coordinate }

// CollectionBidPlaced is emitted when a collection-wide bid is created.
type CollectionBidPlaced struct {
	Coordinate
	BidObjAddr               string
	CollectionAddr           string
	CollectionCreatorAddr    string
	CollectionName           string
	NftStandard              NFTStandard
	MarketplaceAddr          string
	Price                    int64
	Royalties                int64
	Commission               int64
	PaymentToken             string
	PaymentTokenType         PaymentTokenType
	BuyerAddr                string
	TotalNftAmount           int64
	OrderExpirationTimestamp int64
	Timestamp                int64
}

func (e CollectionBidPlaced) Coord() Coordinate { return e.Coordinate }

// CollectionBidFilled is emitted once per concrete NFT fill against a
// collection bid; a single CollectionBidPlaced may produce many of these
// (spec.md §3 FilledCollectionBid, §4.4 "CollectionBidFilled only" join).
type CollectionBidFilled struct {
	Coordinate
	BidObjAddr string
	NftID      string
	NftName    string
	SellerAddr string
	Price      int64
	Timestamp  int64
}

func (e CollectionBidFilled) Coord() Coordinate { return e.Coordinate }

// CollectionBidCancelled is emitted when a collection bid is withdrawn.
// RemainingAmount of zero marks the bid Cancelled in storage (spec.md
// §4.4.3).
type CollectionBidCancelled struct {
	Coordinate
	BidObjAddr      string
	RemainingAmount int64
	Timestamp       int64
}

func (e CollectionBidCancelled) Coord() Coordinate { return e.Coordinate }

// ModuleUpgradeEvent is emitted per module whose bytecode changed within a
// package republish (spec.md §4.3.3).
type ModuleUpgradeEvent struct {
	Coordinate
	ModuleAddr    string
	ModuleName    string
	PackageName   string
	UpgradeNumber int64
}

func (e ModuleUpgradeEvent) Coord() Coordinate { return e.Coordinate }

// PackageUpgradeEvent is emitted per published/republished package.
type PackageUpgradeEvent struct {
	Coordinate
	PackageAddr   string
	PackageName   string
	UpgradeNumber int64
	Modules       []string
}

func (e PackageUpgradeEvent) Coord() Coordinate { return e.Coordinate }
