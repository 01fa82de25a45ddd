package source

import (
	"sort"
	"strconv"
	"strings"

	"pcfg.dev/cli/internal/core/property"
)

// flattener turns a nested document into flat property keys, keeping the
// order in which leaves are visited.
type flattener struct {
	b *property.FlatMapBuilder
}

func newFlattener() *flattener {
	return &flattener{b: property.NewFlatMapBuilder(0)}
}

func (f *flattener) set(key string, v property.Value) {
	f.b.Set(key, v)
}

func (f *flattener) freeze() property.FlatMap {
	return f.b.Freeze()
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func indexKey(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

// keyOrder sorts the member names of the map found at path. Path holds the
// map names leading to it, without array indices.
type keyOrder func(path []string, names []string)

// value flattens a decoded Go value. Maps and slices recurse, anything
// else becomes a leaf.
func (f *flattener) value(prefix string, path []string, x any, order keyOrder) {
	switch v := x.(type) {
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		order(path, names)
		for _, name := range names {
			f.value(joinKey(prefix, name), append(path[:len(path):len(path)], name), v[name], order)
		}
	case []map[string]any:
		for i, item := range v {
			f.value(indexKey(prefix, i), path, item, order)
		}
	case []any:
		for i, item := range v {
			f.value(indexKey(prefix, i), path, item, order)
		}
	default:
		f.set(prefix, property.ValueOf(x))
	}
}

// positionOrder orders map members by their first position in a list of
// dotted keys, falling back to name order for keys it has not seen.
func positionOrder(keys [][]string) keyOrder {
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		joined := strings.Join(k, "\x00")
		if _, ok := pos[joined]; !ok {
			pos[joined] = i
		}
	}
	return func(path []string, names []string) {
		at := func(name string) (int, bool) {
			p, ok := pos[strings.Join(append(path[:len(path):len(path)], name), "\x00")]
			return p, ok
		}
		sort.SliceStable(names, func(i, j int) bool {
			pi, iok := at(names[i])
			pj, jok := at(names[j])
			switch {
			case iok && jok:
				return pi < pj
			case iok != jok:
				return iok
			default:
				return names[i] < names[j]
			}
		})
	}
}
