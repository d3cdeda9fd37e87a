// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import (
	"fmt"

	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
)

// parseNFTIdentity extracts the NFT coordinate shared by every order event
// across all three dialects (spec.md §3 "Essential attributes", §4.3.2 "NFT
// identity"). Every dialect event payload nests a "token_metadata" object of
// the shape:
//
//	token_metadata: {
//	  creator_address: string,
//	  collection_name: string,
//	  token_name: string,
//	  property_version: string | number,
//	  token: { vec: []string }   // empty => V1, one element => V2 object address
//	}
//
// detectNFTStandard implements L2: classification is purely structural,
// based on whether the token-object vector is empty.
func parseNFTIdentity(data map[string]interface{}) (events.NFTIdentity, error) {
	tm, err := nested(data, "token_metadata")
	if err != nil {
		return events.NFTIdentity{}, err
	}
	creator, err := field(tm, "creator_address")
	if err != nil {
		return events.NFTIdentity{}, err
	}
	collectionName, err := field(tm, "collection_name")
	if err != nil {
		return events.NFTIdentity{}, err
	}
	tokenName, err := field(tm, "token_name")
	if err != nil {
		return events.NFTIdentity{}, err
	}

	tokenWrapper, err := nested(tm, "token")
	if err != nil {
		return events.NFTIdentity{}, err
	}
	vec, err := tokenVector(tokenWrapper)
	if err != nil {
		return events.NFTIdentity{}, err
	}

	standard := detectNFTStandard(vec)
	ident := events.NFTIdentity{
		NftName:               tokenName,
		CollectionCreatorAddr: chain.NormalizeAddress(creator),
		CollectionName:        collectionName,
		NftStandard:           standard,
	}

	if standard == events.NFTStandardV2 {
		ident.NftID = chain.NormalizeAddress(vec[0])
		ident.CollectionAddr = chain.NormalizeAddress(vec[0])
		return ident, nil
	}

	propertyVersion, err := propertyVersionString(tm)
	if err != nil {
		return events.NFTIdentity{}, err
	}
	ident.NftID = propertyVersion
	return ident, nil
}

// detectNFTStandard is L2: an empty token-object vector classifies as V1,
// a non-empty one as V2.
func detectNFTStandard(tokenObjectVec []string) events.NFTStandard {
	if len(tokenObjectVec) == 0 {
		return events.NFTStandardV1
	}
	return events.NFTStandardV2
}

func tokenVector(tokenWrapper map[string]interface{}) ([]string, error) {
	raw, ok := tokenWrapper["vec"]
	if !ok {
		return nil, fmt.Errorf("token wrapper missing \"vec\"")
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("token wrapper \"vec\": expected array, got %T", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("token wrapper \"vec\" element: expected string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func propertyVersionString(tm map[string]interface{}) (string, error) {
	n, err := numField(tm, "property_version")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n), nil
}
