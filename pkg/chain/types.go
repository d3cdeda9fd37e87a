// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package chain

// Kind distinguishes the transaction kinds that may carry events (spec.md
// §4.3): BlockMetadata and Genesis transactions carry protocol events, User
// transactions carry application events; all other kinds carry none.
type Kind int

const (
	KindUnknown Kind = iota
	KindBlockMetadata
	KindGenesis
	KindUser
)

// RawEvent is one on-chain event as delivered by the transaction stream,
// before dialect decoding. Type is the Move "<addr>::<module>::<name>"
// string; Data is the event's JSON-encoded payload.
type RawEvent struct {
	Type string
	Data map[string]interface{}
}

// WriteSetChangeType distinguishes the write-set-change kinds the
// contract-upgrade indexer inspects (spec.md §4.3.3, GLOSSARY).
type WriteSetChangeType int

const (
	WriteSetChangeUnknown WriteSetChangeType = iota
	WriteSetChangeWriteResource
	WriteSetChangeWriteModule
)

// RawWriteSetChange is one write-set mutation recorded against a
// transaction.
type RawWriteSetChange struct {
	Type         WriteSetChangeType
	Address      string
	ResourceType string // populated for WriteResource; e.g. "0x1::code::PackageRegistry"
	ModuleName   string // populated for WriteModule
	Data         map[string]interface{}
}

// Transaction is one committed transaction as delivered by the transaction
// stream, carrying enough of the on-chain payload for both indexer flavors.
type Transaction struct {
	Version           int64
	Kind              Kind
	Success           bool
	HasInfo           bool
	Events            []RawEvent
	WriteSetChanges   []RawWriteSetChange
	TimestampUnixSecs int64 // on-chain block timestamp, seconds since epoch
}

// Batch is the unit every pipeline stage exchanges: an ordered slice of
// transactions plus the version range metadata the progress tracker needs.
type Batch struct {
	StartVersion int64
	EndVersion   int64
	Transactions []Transaction
}
