package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
)

func TestUpgradeProcessScansUnsuccessfulTransactions(t *testing.T) {
	tracked := chain.NormalizeAddress("0x7")
	u := NewUpgrade([]string{tracked})

	batch := chain.Batch{
		StartVersion: 1,
		EndVersion:   1,
		Transactions: []chain.Transaction{
			{
				Version: 1,
				Kind:    chain.KindUser,
				Success: false,
				HasInfo: true,
				WriteSetChanges: []chain.RawWriteSetChange{
					{
						Type:         chain.WriteSetChangeWriteResource,
						Address:      tracked,
						ResourceType: "0x1::code::PackageRegistry",
						Data: map[string]interface{}{
							"packages": []interface{}{
								map[string]interface{}{
									"name":           "marketplace",
									"upgrade_number": "1",
									"modules":        []interface{}{},
								},
							},
						},
					},
				},
			},
		},
	}

	out, ok, err := u.Process(context.Background(), pipeline.Envelope[chain.Batch]{Data: batch, Meta: pipeline.Meta{StartVersion: 1, EndVersion: 1}})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out.Data, 1)
	require.IsType(t, events.PackageUpgradeEvent{}, out.Data[0])
}

// TestUpgradeProcessEmptyBatchStillForwards confirms B2: an empty batch
// forwards (rather than being dropped) so the watermark still advances.
func TestUpgradeProcessEmptyBatchStillForwards(t *testing.T) {
	u := NewUpgrade([]string{chain.NormalizeAddress("0x7")})
	out, ok, err := u.Process(context.Background(), pipeline.Envelope[chain.Batch]{Data: chain.Batch{}})
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, out.Data)
}
