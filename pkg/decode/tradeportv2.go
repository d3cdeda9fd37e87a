// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import (
	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
)

// tradeportV2Dialect decodes the third contract family (spec.md §4.3.1):
// modules "biddings_v2"/"listings_v2", analogous event names to Tradeport
// v1 but — unlike v1 — the v2 contracts mint a real order object per ask,
// bid and collection bid, so identities come straight off the event payload
// rather than through the synthetic BLAKE3 hash v1 needs.
type tradeportV2Dialect struct{}

func (tradeportV2Dialect) name() string { return "tradeport_v2" }

func (d tradeportV2Dialect) decode(module, name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	switch module {
	case "listings_v2":
		return d.decodeListings(name, marketplaceAddr, data, coord, clock)
	case "biddings_v2":
		return d.decodeBiddings(name, marketplaceAddr, data, coord, clock)
	default:
		return nil, false, nil
	}
}

func (tradeportV2Dialect) decodeListings(name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	switch name {
	case "InsertListingEvent", "UpdateListingEvent":
		return decodeV2ListingPlaced(marketplaceAddr, data, coord, clock)
	case "BuyEvent":
		return decodeV2ListingFilled(data, coord, clock)
	case "DeleteListingEvent":
		return decodeV2ListingCancelled(data, coord, clock)
	default:
		return nil, false, nil
	}
}

func (tradeportV2Dialect) decodeBiddings(name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	switch name {
	case "InsertTokenBidEvent":
		return decodeV2TokenBidPlaced(marketplaceAddr, data, coord, clock)
	case "AcceptTokenBidEvent":
		return decodeV2TokenBidFilled(data, coord, clock)
	case "DeleteTokenBidEvent":
		return decodeV2TokenBidCancelled(data, coord, clock)
	case "InsertCollectionBidEvent":
		return decodeV2CollectionBidPlaced(marketplaceAddr, data, coord, clock)
	case "AcceptCollectionBidEvent":
		return decodeV2CollectionBidFilled(data, coord, clock)
	case "DeleteCollectionBidEvent":
		return decodeV2CollectionBidCancelled(data, coord, clock)
	default:
		return nil, false, nil
	}
}

func decodeV2ListingPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "listing_addr")
	if err != nil {
		return nil, true, err
	}
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	royalties, err := optionalNumField(data, "royalties")
	if err != nil {
		return nil, true, err
	}
	commission, err := optionalNumField(data, "commission")
	if err != nil {
		return nil, true, err
	}
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.AskPlaced{
		Coordinate:       coord,
		AskObjAddr:       chain.NormalizeAddress(objAddr),
		NFT:              nft,
		MarketplaceAddr:  marketplaceAddr,
		Price:            price,
		Royalties:        royalties,
		Commission:       commission,
		PaymentToken:     paymentToken(data),
		PaymentTokenType: paymentTokenType(data),
		SellerAddr:       chain.NormalizeAddress(seller),
		OrderType:        orderType(data),
		Timestamp:        ts,
	}, true, nil
}

func decodeV2ListingFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "listing_addr")
	if err != nil {
		return nil, true, err
	}
	buyer, err := field(data, "buyer_addr")
	if err != nil {
		return nil, true, err
	}
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.AskFilled{
		Coordinate: coord,
		AskObjAddr: chain.NormalizeAddress(objAddr),
		Price:      price,
		BuyerAddr:  chain.NormalizeAddress(buyer),
		SellerAddr: chain.NormalizeAddress(seller),
		Timestamp:  ts,
	}, true, nil
}

func decodeV2ListingCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "listing_addr")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.AskCancelled{Coordinate: coord, AskObjAddr: chain.NormalizeAddress(objAddr), Timestamp: ts}, true, nil
}

func decodeV2TokenBidPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "token_bid_addr")
	if err != nil {
		return nil, true, err
	}
	buyer, err := field(data, "buyer_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	royalties, err := optionalNumField(data, "royalties")
	if err != nil {
		return nil, true, err
	}
	commission, err := optionalNumField(data, "commission")
	if err != nil {
		return nil, true, err
	}
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.BidPlaced{
		Coordinate:       coord,
		BidObjAddr:       chain.NormalizeAddress(objAddr),
		NFT:              nft,
		MarketplaceAddr:  marketplaceAddr,
		Price:            price,
		Royalties:        royalties,
		Commission:       commission,
		PaymentToken:     paymentToken(data),
		PaymentTokenType: paymentTokenType(data),
		BuyerAddr:        chain.NormalizeAddress(buyer),
		Timestamp:        ts,
	}, true, nil
}

func decodeV2TokenBidFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "token_bid_addr")
	if err != nil {
		return nil, true, err
	}
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.BidFilled{
		Coordinate: coord,
		BidObjAddr: chain.NormalizeAddress(objAddr),
		Price:      price,
		SellerAddr: chain.NormalizeAddress(seller),
		Timestamp:  ts,
	}, true, nil
}

func decodeV2TokenBidCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "token_bid_addr")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.BidCancelled{Coordinate: coord, BidObjAddr: chain.NormalizeAddress(objAddr), Timestamp: ts}, true, nil
}

func decodeV2CollectionBidPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "collection_bid_addr")
	if err != nil {
		return nil, true, err
	}
	cm, err := nested(data, "collection_metadata")
	if err != nil {
		return nil, true, err
	}
	collectionAddr := optionalField(cm, "collection_addr")
	creator, err := field(cm, "creator_address")
	if err != nil {
		return nil, true, err
	}
	collectionName, err := field(cm, "collection_name")
	if err != nil {
		return nil, true, err
	}
	buyer, err := field(data, "buyer_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	royalties, err := optionalNumField(data, "royalties")
	if err != nil {
		return nil, true, err
	}
	commission, err := optionalNumField(data, "commission")
	if err != nil {
		return nil, true, err
	}
	amount, err := numField(data, "total_nft_amount")
	if err != nil {
		return nil, true, err
	}
	expiration, err := numField(data, "order_expiration_timestamp")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	standard := events.NFTStandardV1
	if collectionAddr != "" {
		standard = events.NFTStandardV2
	}
	return events.CollectionBidPlaced{
		Coordinate:               coord,
		BidObjAddr:               chain.NormalizeAddress(objAddr),
		CollectionAddr:           normalizeIfPresent(collectionAddr),
		CollectionCreatorAddr:    chain.NormalizeAddress(creator),
		CollectionName:           collectionName,
		NftStandard:              standard,
		MarketplaceAddr:          marketplaceAddr,
		Price:                    price,
		Royalties:                royalties,
		Commission:               commission,
		PaymentToken:             paymentToken(data),
		PaymentTokenType:         paymentTokenType(data),
		BuyerAddr:                chain.NormalizeAddress(buyer),
		TotalNftAmount:           amount,
		OrderExpirationTimestamp: expiration,
		Timestamp:                ts,
	}, true, nil
}

func decodeV2CollectionBidFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "collection_bid_addr")
	if err != nil {
		return nil, true, err
	}
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.CollectionBidFilled{
		Coordinate: coord,
		BidObjAddr: chain.NormalizeAddress(objAddr),
		NftID:      nft.NftID,
		NftName:    nft.NftName,
		SellerAddr: chain.NormalizeAddress(seller),
		Price:      price,
		Timestamp:  ts,
	}, true, nil
}

func decodeV2CollectionBidCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "collection_bid_addr")
	if err != nil {
		return nil, true, err
	}
	remaining, err := numField(data, "remaining_amount")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.CollectionBidCancelled{
		Coordinate:      coord,
		BidObjAddr:      chain.NormalizeAddress(objAddr),
		RemainingAmount: remaining,
		Timestamp:       ts,
	}, true, nil
}
