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
	"math"
	"strconv"
)

// parseI64 parses an on-chain numeric field that may arrive as a decimal
// string or an unsigned JSON number (spec.md §4.3.2: "Numeric on-chain
// values arrive as decimal strings or unsigned 64-bit integers; parse to
// signed 64-bit; overflow is a decode error").
func parseI64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		u, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse numeric field %q: %w", t, err)
		}
		return toSigned(u)
	case float64:
		if t < 0 || math.Trunc(t) != t {
			return 0, fmt.Errorf("parse numeric field %v: not a non-negative integer", t)
		}
		return toSigned(uint64(t))
	default:
		return 0, fmt.Errorf("parse numeric field: unsupported type %T", v)
	}
}

func toSigned(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("parse numeric field %d: overflows int64", u)
	}
	return int64(u), nil
}

// field fetches a required string field from a decoded JSON event payload,
// returning a decode-fatal error if missing or the wrong type (spec.md §7:
// "JSON shape does not match the declared dialect event schema").
func field(data map[string]interface{}, key string) (string, error) {
	v, ok := data[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

// optionalField fetches a string field that may legitimately be absent,
// returning the empty string if so.
func optionalField(data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// numField fetches a required numeric field and parses it per parseI64.
func numField(data map[string]interface{}, key string) (int64, error) {
	v, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, err := parseI64(v)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}

// optionalNumField fetches a numeric field that may legitimately be absent
// (e.g. royalties/commission on a Placed payload, which the original system
// hardcodes to zero rather than emitting on the wire), defaulting to 0 when
// missing. A present-but-malformed value is still a decode-fatal error —
// absence is the only thing this tolerates.
func optionalNumField(data map[string]interface{}, key string) (int64, error) {
	v, ok := data[key]
	if !ok {
		return 0, nil
	}
	n, err := parseI64(v)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}

// nested fetches a required nested object field.
func nested(data map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q: expected object, got %T", key, v)
	}
	return m, nil
}
