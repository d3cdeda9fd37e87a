// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package decode

import (
	"fmt"

	"github.com/nft-aggregator/indexer/pkg/chain"
	"github.com/nft-aggregator/indexer/pkg/events"
)

const packageRegistryResourceType = "0x1::code::PackageRegistry"

// DecodeUpgradeTransaction implements the contract-upgrade dialect (spec.md
// §4.3.3): a two-pass scan of one transaction's write-set changes rather
// than an event decode. The first pass parses PackageRegistry writes into
// PackageUpgradeEvents and buffers every WriteModule seen for a tracked
// address; the second pass joins each package's module manifest against the
// buffered writes, emitting a ModuleUpgradeEvent only for modules whose
// bytecode actually changed in this transaction — a same-address republish
// that leaves a module's bytecode untouched contributes no ModuleUpgrade
// (silently skipped, matching §4.3.3's "missing write-module" case).
func DecodeUpgradeTransaction(txVersion int64, changes []chain.RawWriteSetChange, targetAddrs map[string]struct{}) ([]events.Event, error) {
	var packages []events.PackageUpgradeEvent
	bufferedModules := make(map[string]struct{})

	eventIndex := int64(0)
	for _, ch := range changes {
		addr := chain.NormalizeAddress(ch.Address)
		if _, tracked := targetAddrs[addr]; !tracked {
			continue
		}
		switch ch.Type {
		case chain.WriteSetChangeWriteResource:
			if ch.ResourceType != packageRegistryResourceType {
				continue
			}
			pkgs, err := parsePackageRegistry(addr, ch.Data, txVersion, &eventIndex)
			if err != nil {
				return nil, fmt.Errorf("decode package registry at %s: %w", addr, err)
			}
			packages = append(packages, pkgs...)
		case chain.WriteSetChangeWriteModule:
			name := optionalField(ch.Data, "module_name")
			if name == "" {
				name = ch.ModuleName
			}
			bufferedModules[moduleKey(addr, name)] = struct{}{}
		}
	}

	out := make([]events.Event, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, pkg)
		for _, moduleName := range pkg.Modules {
			if _, seen := bufferedModules[moduleKey(pkg.PackageAddr, moduleName)]; !seen {
				continue
			}
			eventIndex++
			out = append(out, events.ModuleUpgradeEvent{
				Coordinate:    events.Coordinate{TxVersion: txVersion, EventIndex: eventIndex},
				ModuleAddr:    pkg.PackageAddr,
				ModuleName:    moduleName,
				PackageName:   pkg.PackageName,
				UpgradeNumber: pkg.UpgradeNumber,
			})
		}
	}
	return out, nil
}

func moduleKey(addr, name string) string { return addr + "::" + name }

func parsePackageRegistry(addr string, data map[string]interface{}, txVersion int64, eventIndex *int64) ([]events.PackageUpgradeEvent, error) {
	raw, ok := data["packages"]
	if !ok {
		return nil, fmt.Errorf("missing field \"packages\"")
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field \"packages\": expected array, got %T", raw)
	}

	out := make([]events.PackageUpgradeEvent, 0, len(items))
	for _, item := range items {
		pkgData, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("package entry: expected object, got %T", item)
		}
		name, err := field(pkgData, "name")
		if err != nil {
			return nil, err
		}
		upgradeNumber, err := numField(pkgData, "upgrade_number")
		if err != nil {
			return nil, err
		}
		modules, err := parseModuleNames(pkgData)
		if err != nil {
			return nil, err
		}

		*eventIndex++
		out = append(out, events.PackageUpgradeEvent{
			Coordinate:    events.Coordinate{TxVersion: txVersion, EventIndex: *eventIndex},
			PackageAddr:   addr,
			PackageName:   name,
			UpgradeNumber: upgradeNumber,
			Modules:       modules,
		})
	}
	return out, nil
}

func parseModuleNames(pkgData map[string]interface{}) ([]string, error) {
	raw, ok := pkgData["modules"]
	if !ok {
		return nil, fmt.Errorf("missing field \"modules\"")
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field \"modules\": expected array, got %T", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("module entry: expected object, got %T", item)
		}
		name, err := field(m, "name")
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
