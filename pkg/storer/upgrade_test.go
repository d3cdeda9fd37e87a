package storer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nft-aggregator/indexer/pkg/events"
)

func TestUpgradeStorerAppliesPackagesAndModules(t *testing.T) {
	fs := newFakeStore()
	u := NewUpgrade(fs, 0)

	out, ok, err := u.Process(context.Background(), envelope([]events.Event{
		events.PackageUpgradeEvent{Coordinate: events.Coordinate{TxVersion: 1, EventIndex: 0}, PackageAddr: "0x1", PackageName: "marketplace", UpgradeNumber: 2},
		events.ModuleUpgradeEvent{Coordinate: events.Coordinate{TxVersion: 1, EventIndex: 0}, ModuleAddr: "0x1", ModuleName: "events", PackageName: "marketplace", UpgradeNumber: 2},
	}, 1, 1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, out.Data.EventCount)

	require.True(t, fs.packages["0x1/marketplace#2"])
	require.True(t, fs.modules["0x1::events#2"])
}

// TestUpgradeStorerRepublishIsAppendOnly confirms a new upgrade_number for
// the same package inserts a second row rather than overwriting the first
// (spec.md §3 PackageUpgrade key includes upgrade_number).
func TestUpgradeStorerRepublishIsAppendOnly(t *testing.T) {
	fs := newFakeStore()
	u := NewUpgrade(fs, 0)
	ctx := context.Background()

	_, _, err := u.Process(ctx, envelope([]events.Event{
		events.PackageUpgradeEvent{Coordinate: events.Coordinate{TxVersion: 1, EventIndex: 0}, PackageAddr: "0x1", PackageName: "marketplace", UpgradeNumber: 1},
	}, 1, 1))
	require.NoError(t, err)

	_, _, err = u.Process(ctx, envelope([]events.Event{
		events.PackageUpgradeEvent{Coordinate: events.Coordinate{TxVersion: 2, EventIndex: 0}, PackageAddr: "0x1", PackageName: "marketplace", UpgradeNumber: 2},
	}, 2, 2))
	require.NoError(t, err)

	require.True(t, fs.packages["0x1/marketplace#1"])
	require.True(t, fs.packages["0x1/marketplace#2"])
	require.Len(t, fs.packages, 2)
}
