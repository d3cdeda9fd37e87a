// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import "github.com/nft-aggregator/indexer/pkg/events"

// aptosLabsDialect decodes the first of the three contract families tried
// per batch (spec.md §4.3.1): module "events", with Listing/TokenOffer/
// CollectionOffer events each carrying a Placed/Filled/Cancelled-or-Canceled
// phase suffix. Aptos-labs on-chain events carry no timestamp field at all
// (spec.md Q4) — lifecycle timestamps are always wall-clock at decode time,
// a deliberate divergence from the two Tradeport dialects, preserved as-is
// rather than "fixed".
type aptosLabsDialect struct{}

func (aptosLabsDialect) name() string { return "aptos_labs" }

const aptosLabsModule = "events"

func (d aptosLabsDialect) decode(module, name, marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	if module != aptosLabsModule {
		return nil, false, nil
	}

	switch {
	case name == "ListingPlaced":
		return d.decodeListingPlaced(marketplaceAddr, data, coord, clock)
	case name == "ListingFilled":
		return d.decodeListingFilled(data, coord, clock)
	case isCancelPhase(name, "ListingCancelled", "ListingCanceled"):
		return d.decodeListingCancelled(data, coord, clock)
	case name == "TokenOfferPlaced":
		return d.decodeTokenOfferPlaced(marketplaceAddr, data, coord, clock)
	case name == "TokenOfferFilled":
		return d.decodeTokenOfferFilled(data, coord, clock)
	case isCancelPhase(name, "TokenOfferCancelled", "TokenOfferCanceled"):
		return d.decodeTokenOfferCancelled(data, coord, clock)
	case name == "CollectionOfferPlaced":
		return d.decodeCollectionOfferPlaced(marketplaceAddr, data, coord, clock)
	case name == "CollectionOfferFilled":
		return d.decodeCollectionOfferFilled(data, coord, clock)
	case isCancelPhase(name, "CollectionOfferCancelled", "CollectionOfferCanceled"):
		return d.decodeCollectionOfferCancelled(data, coord, clock)
	default:
		return nil, false, nil
	}
}

// isCancelPhase accepts both Cancelled and Canceled spellings (spec.md
// §4.3.1, B1); any other spelling is left unmatched so the event falls
// through to decode-skip rather than erroring.
func isCancelPhase(name, cancelled, canceled string) bool {
	return name == cancelled || name == canceled
}

func (aptosLabsDialect) decodeListingPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "listing_addr")
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
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	return events.AskPlaced{
		Coordinate:       coord,
		AskObjAddr:       objAddr,
		NFT:              nft,
		MarketplaceAddr:  marketplaceAddr,
		Price:            price,
		Royalties:        royalties,
		Commission:       commission,
		PaymentToken:     paymentToken(data),
		PaymentTokenType: paymentTokenType(data),
		SellerAddr:       seller,
		OrderType:        orderType(data),
		Timestamp:        clock(),
	}, true, nil
}

func (aptosLabsDialect) decodeListingFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "listing_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
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
	return events.AskFilled{
		Coordinate: coord,
		AskObjAddr: objAddr,
		Price:      price,
		BuyerAddr:  buyer,
		SellerAddr: seller,
		Timestamp:  clock(),
	}, true, nil
}

func (aptosLabsDialect) decodeListingCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "listing_addr")
	if err != nil {
		return nil, true, err
	}
	return events.AskCancelled{Coordinate: coord, AskObjAddr: objAddr, Timestamp: clock()}, true, nil
}

func (aptosLabsDialect) decodeTokenOfferPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "token_offer_addr")
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
	buyer, err := field(data, "buyer_addr")
	if err != nil {
		return nil, true, err
	}
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	return events.BidPlaced{
		Coordinate:       coord,
		BidObjAddr:       objAddr,
		NFT:              nft,
		MarketplaceAddr:  marketplaceAddr,
		Price:            price,
		Royalties:        royalties,
		Commission:       commission,
		PaymentToken:     paymentToken(data),
		PaymentTokenType: paymentTokenType(data),
		BuyerAddr:        buyer,
		Timestamp:        clock(),
	}, true, nil
}

func (aptosLabsDialect) decodeTokenOfferFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "token_offer_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	return events.BidFilled{Coordinate: coord, BidObjAddr: objAddr, Price: price, SellerAddr: seller, Timestamp: clock()}, true, nil
}

func (aptosLabsDialect) decodeTokenOfferCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "token_offer_addr")
	if err != nil {
		return nil, true, err
	}
	return events.BidCancelled{Coordinate: coord, BidObjAddr: objAddr, Timestamp: clock()}, true, nil
}

func (aptosLabsDialect) decodeCollectionOfferPlaced(marketplaceAddr string, data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "collection_offer_addr")
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
	buyer, err := field(data, "buyer_addr")
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
	standard := events.NFTStandardV1
	if collectionAddr != "" {
		standard = events.NFTStandardV2
	}
	return events.CollectionBidPlaced{
		Coordinate:               coord,
		BidObjAddr:               objAddr,
		CollectionAddr:           normalizeIfPresent(collectionAddr),
		CollectionCreatorAddr:    normalizeIfPresent(creator),
		CollectionName:           collectionName,
		NftStandard:              standard,
		MarketplaceAddr:          marketplaceAddr,
		Price:                    price,
		Royalties:                royalties,
		Commission:               commission,
		PaymentToken:             paymentToken(data),
		PaymentTokenType:         paymentTokenType(data),
		BuyerAddr:                buyer,
		TotalNftAmount:           amount,
		OrderExpirationTimestamp: expiration,
		Timestamp:                clock(),
	}, true, nil
}

func (aptosLabsDialect) decodeCollectionOfferFilled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "collection_offer_addr")
	if err != nil {
		return nil, true, err
	}
	price, err := numField(data, "price")
	if err != nil {
		return nil, true, err
	}
	seller, err := field(data, "seller_addr")
	if err != nil {
		return nil, true, err
	}
	nft, err := parseNFTIdentity(data)
	if err != nil {
		return nil, true, err
	}
	return events.CollectionBidFilled{
		Coordinate: coord,
		BidObjAddr: objAddr,
		NftID:      nft.NftID,
		NftName:    nft.NftName,
		SellerAddr: seller,
		Price:      price,
		Timestamp:  clock(),
	}, true, nil
}

func (aptosLabsDialect) decodeCollectionOfferCancelled(data map[string]interface{}, coord events.Coordinate, clock Clock) (events.Event, bool, error) {
	objAddr, err := field(data, "collection_offer_addr")
	if err != nil {
		return nil, true, err
	}
	remaining, err := numField(data, "remaining_amount")
	if err != nil {
		return nil, true, err
	}
	return events.CollectionBidCancelled{Coordinate: coord, BidObjAddr: objAddr, RemainingAmount: remaining, Timestamp: clock()}, true, nil
}
