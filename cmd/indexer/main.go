// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Command indexer is the single-binary CLI entrypoint (spec.md §6): one
// config-file flag, no subcommands, following cmd/kcn/main.go's
// urfave/cli.v1 app-with-Action shape.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v1"

	"github.com/nft-aggregator/indexer/internal/config"
	"github.com/nft-aggregator/indexer/internal/logging"
	"github.com/nft-aggregator/indexer/pkg/events"
	"github.com/nft-aggregator/indexer/pkg/extractor"
	"github.com/nft-aggregator/indexer/pkg/pipeline"
	"github.com/nft-aggregator/indexer/pkg/source"
	"github.com/nft-aggregator/indexer/pkg/store"
	"github.com/nft-aggregator/indexer/pkg/storer"
	"github.com/nft-aggregator/indexer/pkg/txstream"
)

var logger = logging.New("cmd")

var configFileFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to the TOML configuration file",
}

func main() {
	app := cli.NewApp()
	app.Name = "indexer"
	app.Usage = "NFT marketplace event indexer"
	app.Flags = []cli.Flag{configFileFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logger.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	path := c.String(configFileFlag.Name)
	if path == "" {
		return cli.NewExitError("missing required --config flag", 1)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.Open(ctx, cfg.DBConfig.PostgresConnectionString, cfg.DBConfig.DBPoolSize)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer db.Close()

	client, err := txstream.Dial(ctx, cfg.TransactionStreamConfig.IndexerGRPCDataServiceAddress, cfg.TransactionStreamConfig.AuthToken)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer client.Close()

	processorName := config.ProcessName(cfg.ProcessorName())
	sourceStage := source.New(client, db.Queries(), processorName, cfg.TransactionStreamConfig.StartingVersion)
	tracker := storer.NewTracker(db.Queries(), processorName)

	switch cfg.ProcessorConfig {
	case config.ContractUpgradeIndexer:
		extractorStage := extractor.NewUpgrade(cfg.CustomConfig.ContractUpgradeIndexer.ContractAddresses)
		storerStage := storer.NewUpgrade(db, 0)
		err = pipeline.Chain[[]events.Event, storer.Applied](ctx, sourceStage, extractorStage, storerStage, tracker)
	case config.TradeportIndexer:
		extractorStage := extractor.NewMarketplace([]string{cfg.CustomConfig.MarketplaceIndexer.MarketplaceAddress}, nil)
		storerStage := storer.NewMarketplace(db, cfg.CustomConfig.MarketplaceIndexer.ChunkSize)
		err = pipeline.Chain[[]events.Event, storer.Applied](ctx, sourceStage, extractorStage, storerStage, tracker)
	default:
		return cli.NewExitError(fmt.Sprintf("unrecognized processor_config %q", cfg.ProcessorConfig), 1)
	}

	if err != nil && ctx.Err() == nil {
		return cli.NewExitError(err.Error(), 1)
	}
	logger.Info("shut down cleanly")
	return nil
}
