// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import (
	"github.com/nft-aggregator/indexer/internal/hashutil"
	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
)

// tradeportV1Dialect decodes the second contract family (spec.md §4.3.1):
// modules "biddings"/"listings". Tradeport v1 predates the order-object
// model, so ask/bid/collection-bid identities are synthetic hashes rather
// than on-chain object addresses (spec.md §4.3.2). UpdateListingEvent is
// modeled as a re-placed event against the same synthetic ask identity,
// matching what the dedup pass in the storer expects to collapse.
type tradeportV1Dialect struct{}

func (tradeportV1Dialect) name() string { return "tradeport_v1" }

func (d tradeportV1Dialect) decode(module, name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	switch module {
	case "listings":
		return d.decodeListings(name, marketplaceAddr, data, coord, clock)
	case "biddings":
		return d.decodeBiddings(name, marketplaceAddr, data, coord, clock)
	default:
		return nil, false, nil
	}
}

func (tradeportV1Dialect) decodeListings(name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	switch name {
	case "InsertListingEvent", "UpdateListingEvent":
		return decodeV1ListingPlaced(marketplaceAddr, data, coord, clock)
	case "BuyEvent":
		return decodeV1ListingFilled(data, coord, clock)
	case "DeleteListingEvent":
		return decodeV1ListingCancelled(data, coord, clock)
	default:
		return nil, false, nil
	}
}

func (tradeportV1Dialect) decodeBiddings(name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	switch name {
	case "InsertTokenBidEvent":
		return decodeV1TokenBidPlaced(marketplaceAddr, data, coord, clock)
	case "AcceptTokenBidEvent":
		return decodeV1TokenBidFilled(data, coord, clock)
	case "DeleteTokenBidEvent":
		return decodeV1TokenBidCancelled(data, coord, clock)
	case "InsertCollectionBidEvent":
		return decodeV1CollectionBidPlaced(marketplaceAddr, data, coord, clock)
	case "AcceptCollectionBidEvent":
		return decodeV1CollectionBidFilled(data, coord, clock)
	case "DeleteCollectionBidEvent":
		return decodeV1CollectionBidCancelled(data, coord, clock)
	default:
		return nil, false, nil
	}
}

// v1AskOrderID derives the synthetic ask_obj_addr from the NFT identity and
// the standardized owner (spec.md §4.3.2; Q3: always standardize before
// hashing).
func v1AskOrderID(nft events.NFTIdentity, owner string) string {
	return hashutil.AskOrderIDV1(nft.CollectionCreatorAddr, nft.CollectionName, nft.NftName, nft.NftID, chain.NormalizeAddress(owner))
}

func decodeV1ListingPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
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
		AskObjAddr:       v1AskOrderID(nft, seller),
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

func decodeV1ListingFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	seller, err := field(data, "seller_addr")
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
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.AskFilled{
		Coordinate: coord,
		AskObjAddr: v1AskOrderID(nft, seller),
		Price:      price,
		BuyerAddr:  chain.NormalizeAddress(buyer),
		SellerAddr: chain.NormalizeAddress(seller),
		Timestamp:  ts,
	}, true, nil
}

func decodeV1ListingCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	seller, err := field(data, "seller_addr")
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
	return events.AskCancelled{Coordinate: coord, AskObjAddr: v1AskOrderID(nft, seller), Timestamp: ts}, true, nil
}

func decodeV1TokenBidPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	nonce, err := field(data, "nonce")
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
		BidObjAddr:       hashutil.BidOrderIDV1(nonce),
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

func decodeV1TokenBidFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	nonce, err := field(data, "nonce")
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
		BidObjAddr: hashutil.BidOrderIDV1(nonce),
		Price:      price,
		SellerAddr: chain.NormalizeAddress(seller),
		Timestamp:  ts,
	}, true, nil
}

func decodeV1TokenBidCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	nonce, err := field(data, "nonce")
	if err != nil {
		return nil, true, err
	}
	ts, err := eventTimestamp(data, clock)
	if err != nil {
		return nil, true, err
	}
	return events.BidCancelled{Coordinate: coord, BidObjAddr: hashutil.BidOrderIDV1(nonce), Timestamp: ts}, true, nil
}

func decodeV1CollectionBidPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	nonce, err := field(data, "nonce")
	if err != nil {
		return nil, true, err
	}
	cm, err := nested(data, "collection_metadata")
	if err != nil {
		return nil, true, err
	}
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
	return events.CollectionBidPlaced{
		Coordinate:               coord,
		BidObjAddr:               hashutil.CollectionBidOrderIDV1(nonce),
		CollectionCreatorAddr:    chain.NormalizeAddress(creator),
		CollectionName:           collectionName,
		NftStandard:              events.NFTStandardV1,
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

func decodeV1CollectionBidFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	nonce, err := field(data, "nonce")
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
		BidObjAddr: hashutil.CollectionBidOrderIDV1(nonce),
		NftID:      nft.NftID,
		NftName:    nft.NftName,
		SellerAddr: chain.NormalizeAddress(seller),
		Price:      price,
		Timestamp:  ts,
	}, true, nil
}

func decodeV1CollectionBidCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	nonce, err := field(data, "nonce")
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
		BidObjAddr:      hashutil.CollectionBidOrderIDV1(nonce),
		RemainingAmount: remaining,
		Timestamp:       ts,
	}, true, nil
}
