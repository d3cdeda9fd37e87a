package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTradeportIndexerConfig(t *testing.T) {
	path := writeConfig(t, `
ProcessorConfig = "TradeportIndexer"

[TransactionStreamConfig]
IndexerGRPCDataServiceAddress = "grpc.example.com:443"
AuthToken = "secret"

[DBConfig]
PostgresConnectionString = "postgres://localhost/indexer"

[CustomConfig.MarketplaceIndexer]
MarketplaceAddress = "0x4"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, TradeportIndexer, cfg.ProcessorConfig)
	require.Equal(t, "0x4", cfg.CustomConfig.MarketplaceIndexer.MarketplaceAddress)
	require.Equal(t, int32(DefaultDBPoolSize), cfg.DBConfig.DBPoolSize)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
ProcessorConfig = "TradeportIndexer"
NotARealField = true

[TransactionStreamConfig]
IndexerGRPCDataServiceAddress = "grpc.example.com:443"

[DBConfig]
PostgresConnectionString = "postgres://localhost/indexer"

[CustomConfig.MarketplaceIndexer]
MarketplaceAddress = "0x4"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingCustomConfig(t *testing.T) {
	path := writeConfig(t, `
ProcessorConfig = "TradeportIndexer"

[TransactionStreamConfig]
IndexerGRPCDataServiceAddress = "grpc.example.com:443"

[DBConfig]
PostgresConnectionString = "postgres://localhost/indexer"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestProcessName(t *testing.T) {
	require.Equal(t, "tradeport", ProcessName("tradeport_indexer"))
	require.Equal(t, "contractupgr", ProcessName("contractupgrade_indexer"))
	require.Equal(t, "noseparator", ProcessName("noseparator"))
}
