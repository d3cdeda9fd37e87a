package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
)

func tokenMetadataV1(creator, collectionName, tokenName, propertyVersion string) map[string]interface{} {
	return map[string]interface{}{
		"creator_address":  creator,
		"collection_name":  collectionName,
		"token_name":       tokenName,
		"property_version": propertyVersion,
		"token":            map[string]interface{}{"vec": []interface{}{}},
	}
}

func TestMarketplaceProcessDecodesTrackedEventsOnly(t *testing.T) {
	tracked := chain.NormalizeAddress("0x4")
	m := NewMarketplace([]string{tracked}, func() int64 { return 1 })

	batch := chain.Batch{
		StartVersion: 1,
		EndVersion:   1,
		Transactions: []chain.Transaction{
			{
				Version: 1,
				Kind:    chain.KindUser,
				Success: true,
				HasInfo: true,
				Events: []chain.RawEvent{
					{
						Type: "0x4::events::ListingPlaced",
						Data: map[string]interface{}{
							"listing_addr":     "0xA",
							"marketplace_addr": "0xM",
							"price":            "100",
							"royalties":        "0",
							"commission":       "0",
							"seller_addr":      "0xS",
							"token_metadata":   tokenMetadataV1("0x2", "C", "N", "0"),
						},
					},
					{
						Type: "0x9::unrelated::SomeEvent",
						Data: map[string]interface{}{},
					},
				},
			},
		},
	}

	out, ok, err := m.Process(context.Background(), pipeline.Envelope[chain.Batch]{Data: batch, Meta: pipeline.Meta{StartVersion: 1, EndVersion: 1}})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out.Data, 1)
	require.IsType(t, events.AskPlaced{}, out.Data[0])
}

// TestMarketplaceProcessAdvancesEmptyBatch confirms B2: a batch whose only
// transaction is unsuccessful still forwards (empty) so the watermark can
// advance on its end_version, rather than being dropped by the stage.
func TestMarketplaceProcessAdvancesEmptyBatch(t *testing.T) {
	tracked := chain.NormalizeAddress("0x4")
	m := NewMarketplace([]string{tracked}, func() int64 { return 1 })

	batch := chain.Batch{
		StartVersion: 1,
		EndVersion:   1,
		Transactions: []chain.Transaction{
			{
				Version: 1,
				Kind:    chain.KindUser,
				Success: false,
				HasInfo: true,
				Events: []chain.RawEvent{
					{Type: "0x4::events::ListingPlaced", Data: map[string]interface{}{}},
				},
			},
		},
	}

	out, ok, err := m.Process(context.Background(), pipeline.Envelope[chain.Batch]{Data: batch})
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, out.Data)
}

func TestMarketplaceProcessDecodeFatalAbortsStage(t *testing.T) {
	tracked := chain.NormalizeAddress("0x4")
	m := NewMarketplace([]string{tracked}, func() int64 { return 1 })

	batch := chain.Batch{
		Transactions: []chain.Transaction{
			{
				Version: 1,
				Kind:    chain.KindUser,
				Success: true,
				HasInfo: true,
				Events: []chain.RawEvent{
					{Type: "0x4::events::ListingPlaced", Data: map[string]interface{}{}},
				},
			},
		},
	}

	_, _, err := m.Process(context.Background(), pipeline.Envelope[chain.Batch]{Data: batch})
	require.Error(t, err)
}
