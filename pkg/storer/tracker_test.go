package storer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nft-aggregator/indexer/pkg/pipeline"
)

type fakeWatermarkStore struct {
	calls     int
	processor string
	version   int64
}

func (f *fakeWatermarkStore) UpsertProcessorStatus(ctx context.Context, processor string, version int64) error {
	f.calls++
	f.processor = processor
	f.version = version
	return nil
}

// TestTrackerAdvancesOnEndVersion covers spec.md §4.5 and P3: the tracker
// advances the watermark to the applied batch's end_version.
func TestTrackerAdvancesOnEndVersion(t *testing.T) {
	ws := &fakeWatermarkStore{}
	tr := NewTracker(ws, "tradeport_indexer")

	err := tr.Process(context.Background(), pipeline.Envelope[Applied]{
		Data: Applied{EventCount: 3},
		Meta: pipeline.Meta{StartVersion: 100, EndVersion: 142},
	})
	require.NoError(t, err)
	require.Equal(t, 1, ws.calls)
	require.Equal(t, "tradeport_indexer", ws.processor)
	require.Equal(t, int64(142), ws.version)
}
