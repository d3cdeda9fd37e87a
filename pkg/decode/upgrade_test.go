package decode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
)

func TestDecodeUpgradeTransactionJoinsModuleAndPackage(t *testing.T) {
	addr := chain.NormalizeAddress("0x7")
	targets := map[string]struct{}{addr: {}}

	registryWrite := chain.RawWriteSetChange{
		Type:         chain.WriteSetChangeWriteResource,
		Address:      addr,
		ResourceType: packageRegistryResourceType,
		Data: map[string]interface{}{
			"packages": []interface{}{
				map[string]interface{}{
					"name":           "marketplace",
					"upgrade_number": "3",
					"modules": []interface{}{
						map[string]interface{}{"name": "listings"},
						map[string]interface{}{"name": "biddings"},
					},
				},
			},
		},
	}
	moduleWrite := chain.RawWriteSetChange{
		Type:       chain.WriteSetChangeWriteModule,
		Address:    addr,
		ModuleName: "listings",
	}

	out, err := DecodeUpgradeTransaction(42, []chain.RawWriteSetChange{registryWrite, moduleWrite}, targets)
	require.NoError(t, err)

	var packages []events.PackageUpgradeEvent
	var modules []events.ModuleUpgradeEvent
	for _, ev := range out {
		switch e := ev.(type) {
		case events.PackageUpgradeEvent:
			packages = append(packages, e)
		case events.ModuleUpgradeEvent:
			modules = append(modules, e)
		}
	}

	require.Len(t, packages, 1)
	require.Equal(t, "marketplace", packages[0].PackageName)
	require.Equal(t, int64(3), packages[0].UpgradeNumber)
	require.ElementsMatch(t, []string{"listings", "biddings"}, packages[0].Modules)

	// "biddings" has no buffered WriteModule in this transaction (unchanged
	// bytecode on a same-address republish) and must be skipped silently.
	require.Len(t, modules, 1)
	require.Equal(t, "listings", modules[0].ModuleName)
	require.Equal(t, "marketplace", modules[0].PackageName)
	require.Equal(t, int64(3), modules[0].UpgradeNumber)
}

func TestDecodeUpgradeTransactionIgnoresUntrackedAddress(t *testing.T) {
	targets := map[string]struct{}{chain.NormalizeAddress("0x7"): {}}
	untracked := chain.RawWriteSetChange{
		Type:         chain.WriteSetChangeWriteResource,
		Address:      chain.NormalizeAddress("0x9"),
		ResourceType: packageRegistryResourceType,
		Data:         map[string]interface{}{"packages": []interface{}{}},
	}
	out, err := DecodeUpgradeTransaction(1, []chain.RawWriteSetChange{untracked}, targets)
	require.NoError(t, err)
	require.Empty(t, out)
}
