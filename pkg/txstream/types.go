// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package txstream

// Wire-shaped request/response messages for the transaction-stream gRPC
// service (spec.md §6's "external collaborator", given only as a contract:
// subscribe(starting_version) -> stream<batch>, get_chain_id() -> u64). No
// .proto/generated stub ships with this repo — the real data-service schema
// belongs to the remote node, not to this indexer — so these are the
// smallest message shapes this client needs, carried over the json codec
// registered in codec.go.

type subscribeRequest struct {
	StartingVersion int64 `json:"starting_version"`
}

type chainIDResponse struct {
	ChainID uint64 `json:"chain_id"`
}

type wireEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type wireWriteSetChange struct {
	Type         string                 `json:"type"`
	Address      string                 `json:"address"`
	ResourceType string                 `json:"resource_type,omitempty"`
	ModuleName   string                 `json:"module_name,omitempty"`
	Data         map[string]interface{} `json:"data"`
}

type wireTransaction struct {
	Version           int64                `json:"version"`
	Kind              string               `json:"kind"`
	Success           bool                 `json:"success"`
	HasInfo           bool                 `json:"has_info"`
	TimestampUnixSecs int64                `json:"timestamp_unix_secs"`
	Events            []wireEvent          `json:"events"`
	WriteSetChanges   []wireWriteSetChange `json:"write_set_changes"`
}

type transactionBatchMessage struct {
	StartVersion int64             `json:"start_version"`
	EndVersion   int64             `json:"end_version"`
	Transactions []wireTransaction `json:"transactions"`
}
