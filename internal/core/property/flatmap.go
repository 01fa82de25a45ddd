package property

import "strings"

// Entry is one key/value pair of a FlatMap.
type Entry struct {
	Key   string
	Value Value
}

// FlatMap is an insertion-ordered mapping from flat key to scalar value.
// The zero value is an empty map. A FlatMap never changes once built;
// use FlatMapBuilder to make one.
type FlatMap struct {
	keys   []string
	values map[string]Value
}

// NewFlatMap builds a FlatMap from entries. A repeated key keeps its first
// position and its last value.
func NewFlatMap(entries ...Entry) FlatMap {
	b := NewFlatMapBuilder(len(entries))
	for _, e := range entries {
		b.Set(e.Key, e.Value)
	}
	return b.Freeze()
}

// Len returns the number of keys.
func (m FlatMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m FlatMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the pairs in insertion order.
func (m FlatMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Entry{Key: k, Value: m.values[k]})
	}
	return out
}

// Get returns the value stored under the exact key.
func (m FlatMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m FlatMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Required returns the value for key or a *MissingRequiredPropertyError.
func (m FlatMap) Required(key string) (Value, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, &MissingRequiredPropertyError{Key: key}
	}
	return v, nil
}

// Range calls fn for each pair in insertion order until fn returns false.
func (m FlatMap) Range(fn func(key string, value Value) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// WithPrefix returns the entries whose key is prefix itself or continues
// it with '.' or '['. An empty prefix returns the whole map.
func (m FlatMap) WithPrefix(prefix string) FlatMap {
	if prefix == "" {
		return m
	}
	b := NewFlatMapBuilder(0)
	for _, k := range m.keys {
		if hasKeyPrefix(k, prefix) {
			b.Set(k, m.values[k])
		}
	}
	return b.Freeze()
}

// Equal reports whether both maps hold the same pairs in the same order.
func (m FlatMap) Equal(other FlatMap) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || m.values[k] != other.values[k] {
			return false
		}
	}
	return true
}

func hasKeyPrefix(key, prefix string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	if len(key) == len(prefix) {
		return true
	}
	next := key[len(prefix)]
	return next == '.' || next == '['
}

// FlatMapBuilder accumulates entries for a FlatMap. It is not safe for
// concurrent use.
type FlatMapBuilder struct {
	keys   []string
	values map[string]Value
}

// NewFlatMapBuilder returns an empty builder sized for capacity entries.
func NewFlatMapBuilder(capacity int) *FlatMapBuilder {
	return &FlatMapBuilder{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

// Set stores value under key. An existing key keeps its position.
func (b *FlatMapBuilder) Set(key string, value Value) *FlatMapBuilder {
	if value == nil {
		value = Null{}
	}
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	return b
}

// Delete removes key if present.
func (b *FlatMapBuilder) Delete(key string) *FlatMapBuilder {
	if _, exists := b.values[key]; !exists {
		return b
	}
	delete(b.values, key)
	for i, k := range b.keys {
		if k == key {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
	return b
}

// Len returns the number of keys added so far.
func (b *FlatMapBuilder) Len() int {
	return len(b.keys)
}

// Freeze returns the built map. The builder must not be used afterwards.
func (b *FlatMapBuilder) Freeze() FlatMap {
	m := FlatMap{keys: b.keys, values: b.values}
	b.keys, b.values = nil, nil
	return m
}
