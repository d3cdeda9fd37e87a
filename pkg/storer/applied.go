// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

package storer

// Applied is the Storer stage's output payload: the pipeline carries no
// data forward beyond this point, since spec.md §4.5's progress tracker
// only needs the envelope's version-range metadata to advance the
// watermark.
type Applied struct {
	EventCount int
}
