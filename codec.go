package main

import (
	"encoding/json"
	"fmt"
)

// Maps are persisted as {"dataType":"Map","value":[[key, value], ...]} so a
// mapping survives a round trip without being confused with a plain record.
// Entries are written in the order given, which keeps the output stable.

const mapDataType = "Map"

type entry[V any] struct {
	Key   string
	Value V
}

type taggedMap struct {
	DataType string               `json:"dataType"`
	Value    [][2]json.RawMessage `json:"value"`
}

func encodeEntries[V any](entries []entry[V]) ([]byte, error) {
	tm := taggedMap{DataType: mapDataType, Value: make([][2]json.RawMessage, 0, len(entries))}
	for _, e := range entries {
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", e.Key, err)
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", e.Key, err)
		}
		tm.Value = append(tm.Value, [2]json.RawMessage{k, v})
	}
	return json.Marshal(tm)
}

func decodeEntries[V any](data []byte) ([]entry[V], error) {
	var tm taggedMap
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("decode tagged map: %w", err)
	}
	if tm.DataType != mapDataType {
		return nil, fmt.Errorf("decode tagged map: unexpected dataType %q", tm.DataType)
	}
	out := make([]entry[V], 0, len(tm.Value))
	seen := make(map[string]int, len(tm.Value))
	for _, pair := range tm.Value {
		var e entry[V]
		if err := json.Unmarshal(pair[0], &e.Key); err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
		if err := json.Unmarshal(pair[1], &e.Value); err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", e.Key, err)
		}
		// later duplicates win, like Map construction from entries
		if i, ok := seen[e.Key]; ok {
			out[i] = e
			continue
		}
		seen[e.Key] = len(out)
		out = append(out, e)
	}
	return out, nil
}

func entriesToMap[V any](entries []entry[V]) map[string]V {
	m := make(map[string]V, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}
