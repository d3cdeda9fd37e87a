// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package config parses the indexer's TOML configuration file (spec.md §6).
// It follows cmd/ranger/config.go's tomlSettings idiom verbatim: a
// naoina/toml decoder configured with MissingField so any key not present
// on the destination struct is a hard decode error, rather than silently
// ignored — spec.md §6's "strict — unknown fields fail fast".
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// ProcessorKind selects one of the two indexer flavors (spec.md §2, §6).
type ProcessorKind string

const (
	ContractUpgradeIndexer ProcessorKind = "ContractUpgradeIndexer"
	TradeportIndexer       ProcessorKind = "TradeportIndexer"
)

// TransactionStreamConfig configures the external gRPC transaction-stream
// client (spec.md §6).
type TransactionStreamConfig struct {
	StartingVersion           int64  `toml:",omitempty"`
	RequestEndingVersion      int64  `toml:",omitempty"`
	IndexerGRPCDataServiceAddress string
	AuthToken                 string
	RequestNameHeader         string `toml:",omitempty"`
}

// DBConfig configures the Postgres connection pool (spec.md §6).
type DBConfig struct {
	PostgresConnectionString string
	DBPoolSize                int32 `toml:",omitempty"`
}

// CustomConfig is the tagged union distinguishing the two indexer flavors'
// own settings (spec.md §6 custom_config).
type CustomConfig struct {
	ContractUpgradeIndexer *ContractUpgradeIndexerConfig `toml:",omitempty"`
	MarketplaceIndexer     *MarketplaceIndexerConfig     `toml:",omitempty"`
}

type ContractUpgradeIndexerConfig struct {
	ContractAddresses []string
}

type MarketplaceIndexerConfig struct {
	MarketplaceAddress string
	ChunkSize           int `toml:",omitempty"`
}

// Config is the top-level decode target for the indexer's TOML file.
type Config struct {
	ProcessorConfig        ProcessorKind
	TransactionStreamConfig TransactionStreamConfig
	DBConfig                DBConfig
	CustomConfig            CustomConfig
}

// DefaultDBPoolSize matches spec.md §6's db_pool_size default.
const DefaultDBPoolSize = 50

// Load reads and strictly decodes the TOML file at path (spec.md §6).
// Unknown top-level or nested fields abort the load with an error naming
// the offending field, matching cmd/ranger/config.go's loadConfig.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		var lineErr *toml.LineError
		if errors.As(err, &lineErr) {
			return nil, fmt.Errorf("config: %s, %w", path, err)
		}
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.DBConfig.DBPoolSize == 0 {
		cfg.DBConfig.DBPoolSize = DefaultDBPoolSize
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.ProcessorConfig {
	case ContractUpgradeIndexer:
		if c.CustomConfig.ContractUpgradeIndexer == nil || len(c.CustomConfig.ContractUpgradeIndexer.ContractAddresses) == 0 {
			return errors.New("config: contract_upgrade_indexer requires custom_config.contract_upgrade_indexer.contract_addresses")
		}
	case TradeportIndexer:
		if c.CustomConfig.MarketplaceIndexer == nil || c.CustomConfig.MarketplaceIndexer.MarketplaceAddress == "" {
			return errors.New("config: tradeport_indexer requires custom_config.marketplace_indexer.marketplace_address")
		}
	default:
		return fmt.Errorf("config: unrecognized processor_config %q", c.ProcessorConfig)
	}
	if c.TransactionStreamConfig.IndexerGRPCDataServiceAddress == "" {
		return errors.New("config: transaction_stream_config.indexer_grpc_data_service_address is required")
	}
	if c.DBConfig.PostgresConnectionString == "" {
		return errors.New("config: db_config.postgres_connection_string is required")
	}
	return nil
}

// ProcessorName returns the canonical, snake_case name for the configured
// flavor — the full processor name ProcessName further truncates into the
// ProcessorStatus row key.
func (c *Config) ProcessorName() string {
	switch c.ProcessorConfig {
	case ContractUpgradeIndexer:
		return "contract_upgrade_indexer"
	default:
		return "tradeport_indexer"
	}
}

// ProcessName derives the ProcessorStatus row key: the first '_'-delimited
// segment of the processor name, truncated to 12 characters (spec.md §6).
func ProcessName(processor string) string {
	name := processor
	for i := 0; i < len(processor); i++ {
		if processor[i] == '_' {
			name = processor[:i]
			break
		}
	}
	if len(name) > 12 {
		name = name[:12]
	}
	return name
}
