package domain

import (
	"fmt"
	"strconv"
	"time"

	"pcfg.dev/cli/internal/core/profile"
	"pcfg.dev/cli/internal/core/property"
)

// Record collects every property set resolved during one run, in the
// order they were resolved.
type Record struct {
	RunID     string        `json:"run_id" yaml:"run_id" cbor:"run_id"`
	Entries   []RecordEntry `json:"entries" yaml:"entries" cbor:"entries"`
	UpdatedAt time.Time     `json:"updated_at" yaml:"updated_at" cbor:"updated_at"`
}

// RecordEntry is one resolved property set as stored on a run record.
type RecordEntry struct {
	ResolutionID string     `json:"resolution_id" yaml:"resolution_id" cbor:"resolution_id"`
	Profiles     string     `json:"profiles" yaml:"profiles" cbor:"profiles"`
	Sources      []string   `json:"sources,omitempty" yaml:"sources,omitempty" cbor:"sources,omitempty"`
	Digest       string     `json:"digest" yaml:"digest" cbor:"digest"`
	ResolvedAt   time.Time  `json:"resolved_at" yaml:"resolved_at" cbor:"resolved_at"`
	Properties   []KeyValue `json:"properties" yaml:"properties" cbor:"properties"`
}

// KeyValue is a stored property. Kind and Type let the value be read
// back as the same property.Value.
type KeyValue struct {
	Key   string `json:"key" yaml:"key" cbor:"key"`
	Value string `json:"value" yaml:"value" cbor:"value"`
	Kind  string `json:"kind" yaml:"kind" cbor:"kind"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
}

// RecordSummary describes a stored record without its properties.
type RecordSummary struct {
	RunID     string
	Entries   int
	Profiles  []string
	UpdatedAt time.Time
}

// NewRecordEntry snapshots a resolution for storage.
func NewRecordEntry(res *Resolution) RecordEntry {
	entry := RecordEntry{
		ResolutionID: res.ID,
		Profiles:     res.ProfilesString(),
		Sources:      res.Sources,
		Digest:       res.Digest,
		ResolvedAt:   res.ResolvedAt,
		Properties:   make([]KeyValue, 0, res.Properties.Len()),
	}
	res.Properties.Range(func(key string, value property.Value) bool {
		kv := KeyValue{Key: key, Value: value.String(), Kind: value.Kind().String()}
		if raw, ok := value.(property.Raw); ok {
			kv.Type = raw.Type
		}
		entry.Properties = append(entry.Properties, kv)
		return true
	})
	return entry
}

// FlatMap restores the stored properties.
func (e RecordEntry) FlatMap() (property.FlatMap, error) {
	b := property.NewFlatMapBuilder(len(e.Properties))
	for _, kv := range e.Properties {
		v, err := kv.value()
		if err != nil {
			return property.FlatMap{}, fmt.Errorf("record entry %s: key %q: %w", e.ResolutionID, kv.Key, err)
		}
		b.Set(kv.Key, v)
	}
	return b.Freeze(), nil
}

// Resolution rebuilds the stored resolution, keeping its ID and timestamp.
func (e RecordEntry) Resolution() (*Resolution, error) {
	flat, err := e.FlatMap()
	if err != nil {
		return nil, err
	}
	tree, err := property.Build(flat)
	if err != nil {
		return nil, fmt.Errorf("record entry %s: %w", e.ResolutionID, err)
	}
	return &Resolution{
		ID:         e.ResolutionID,
		Profiles:   profile.Parse(e.Profiles),
		Sources:    e.Sources,
		Properties: flat,
		Tree:       tree,
		Digest:     e.Digest,
		ResolvedAt: e.ResolvedAt,
	}, nil
}

// Summary returns the record's overview.
func (r *Record) Summary() RecordSummary {
	s := RecordSummary{RunID: r.RunID, Entries: len(r.Entries), UpdatedAt: r.UpdatedAt}
	for _, e := range r.Entries {
		s.Profiles = append(s.Profiles, e.Profiles)
	}
	return s
}

func (kv KeyValue) value() (property.Value, error) {
	switch kv.Kind {
	case property.KindString.String():
		return property.String(kv.Value), nil
	case property.KindNumber.String():
		return property.ParseNumber(kv.Value)
	case property.KindBool.String():
		b, err := strconv.ParseBool(kv.Value)
		if err != nil {
			return nil, err
		}
		return property.Bool(b), nil
	case property.KindNull.String():
		return property.Null{}, nil
	case property.KindRaw.String():
		return property.Raw{Type: kv.Type, Text: kv.Value}, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", kv.Kind)
	}
}
