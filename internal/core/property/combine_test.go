package property

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func source(name string, pairs ...string) Source {
	return Source{Name: name, Properties: flat(pairs...)}
}

func TestCombine_ScalarPrecedence(t *testing.T) {
	combined := Combine(
		source("defaults", "foo", "default", "only.low", "low"),
		source("profile", "foo", "override", "only.high", "high"),
	)

	assert.Equal(t, String("override"), mustGet(t, combined, "foo"))
	assert.Equal(t, String("low"), mustGet(t, combined, "only.low"))
	assert.Equal(t, String("high"), mustGet(t, combined, "only.high"))
	assert.Equal(t, []string{"foo", "only.low", "only.high"}, combined.Keys())
}

func TestCombine_ArrayAtomicity(t *testing.T) {
	combined := Combine(
		source("defaults", "arr[0]", "x0", "arr[1]", "x1"),
		source("profile", "arr[0]", "y0"),
	)

	assert.Equal(t, String("y0"), mustGet(t, combined, "arr[0]"))
	assert.False(t, combined.Has("arr[1]"), "shorter higher-precedence array must replace the longer one")
	assert.Equal(t, 1, combined.Len())
}

func TestCombine_ArrayGroupsAreIndependent(t *testing.T) {
	combined := Combine(
		source("defaults",
			"servers[0].host", "a",
			"servers[1].host", "b",
			"ports[0]", "80",
			"ports[1]", "443",
		),
		source("profile",
			"servers[0].host", "c",
			"servers[0].port", "8080",
		),
	)

	assert.Equal(t, []string{"servers[0].host", "servers[0].port", "ports[0]", "ports[1]"}, combined.Keys())
	assert.Equal(t, String("c"), mustGet(t, combined, "servers[0].host"))
	assert.Equal(t, String("443"), mustGet(t, combined, "ports[1]"))
}

func TestCombine_NestedArrayBaseIsTextBeforeFirstBracket(t *testing.T) {
	combined := Combine(
		source("defaults", "a.b[0].c[0]", "1", "a.b[0].c[1]", "2", "a.b[1].c[0]", "3"),
		source("profile", "a.b[0].c[0]", "9"),
	)

	assert.Equal(t, []string{"a.b[0].c[0]"}, combined.Keys())
}

func TestCombine_ScalarsBeforeArrays(t *testing.T) {
	combined := Combine(source("only", "list[0]", "x", "name", "n", "list[1]", "y"))
	assert.Equal(t, []string{"name", "list[0]", "list[1]"}, combined.Keys())
}

func TestCombine_ReservedKeyFiltering(t *testing.T) {
	combined := Combine(
		source("application.yaml", "spring.profiles", "dev", "foo", "bar"),
		source("application-dev.yaml", "pcfg.profiles[0]", "dev", "pcfg.profiles[1]", "test", "baz", "qux"),
	)

	assert.False(t, combined.Has("spring.profiles"))
	assert.False(t, combined.Has("pcfg.profiles[0]"))
	assert.False(t, combined.Has("pcfg.profiles[1]"))
	assert.Equal(t, []string{"foo", "baz"}, combined.Keys())
}

func TestCombiner_CustomReservedKeys(t *testing.T) {
	c := NewCombiner(WithReservedKeys("internal.marker"))
	combined := c.Combine([]Source{source("s", "internal.marker", "x", "spring.profiles", "dev")})

	assert.False(t, combined.Has("internal.marker"))
	assert.True(t, combined.Has("spring.profiles"), "default block-list is replaced, not extended")

	none := NewCombiner(WithReservedKeys())
	assert.True(t, none.Combine([]Source{source("s", "spring.profiles", "dev")}).Has("spring.profiles"))
}

func TestCombine_EmptyInput(t *testing.T) {
	assert.Equal(t, 0, Combine().Len())
	assert.Equal(t, 0, Combine(Source{Name: "empty"}).Len())
}

func TestCombine_MalformedKeysPassThrough(t *testing.T) {
	combined := Combine(source("bad", "a[x]", "1", "b..c", "2"))
	assert.True(t, combined.Has("a[x]"))
	assert.True(t, combined.Has("b..c"))

	_, err := Build(combined)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestCombine_TiedPrecedenceFollowsInputOrder(t *testing.T) {
	combined := Combine(
		source("first", "arr[0]", "a", "arr[1]", "b"),
		source("second", "arr[0]", "c"),
	)
	assert.Equal(t, []string{"arr[0]"}, combined.Keys())
	assert.Equal(t, String("c"), mustGet(t, combined, "arr[0]"))
}

func mustGet(t *testing.T, m FlatMap, key string) Value {
	t.Helper()
	v, ok := m.Get(key)
	if !ok {
		t.Fatalf("key %q missing from %v", key, m.Keys())
	}
	return v
}

func TestCombine_Property_HighestSourceWinsForScalars(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 5).Draw(t, "sources")
		sources := make([]Source, count)
		want := map[string]Value{}
		for i := range sources {
			b := NewFlatMapBuilder(0)
			for _, k := range rapid.SliceOfDistinct(rapid.SampledFrom([]string{"a", "b", "c.d", "e.f.g"}), rapid.ID[string]).Draw(t, "keys") {
				v := String(fmt.Sprintf("%s@%d", k, i))
				b.Set(k, v)
				want[k] = v
			}
			sources[i] = Source{Name: fmt.Sprintf("s%d", i), Properties: b.Freeze()}
		}

		combined := Combine(sources...)
		if combined.Len() != len(want) {
			t.Fatalf("got %d keys, want %d", combined.Len(), len(want))
		}
		for k, v := range want {
			if got, _ := combined.Get(k); got != v {
				t.Fatalf("key %s: got %v, want %v", k, got, v)
			}
		}
	})
}

func TestCombine_Property_ArrayGroupComesFromOneSource(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 4).Draw(t, "sources")
		sources := make([]Source, count)
		winner := -1
		for i := range sources {
			n := rapid.IntRange(0, 4).Draw(t, "length")
			b := NewFlatMapBuilder(n)
			for j := 0; j < n; j++ {
				b.Set(fmt.Sprintf("list[%d]", j), String(fmt.Sprintf("s%d", i)))
			}
			if n > 0 {
				winner = i
			}
			sources[i] = Source{Name: fmt.Sprintf("s%d", i), Properties: b.Freeze()}
		}

		combined := Combine(sources...)
		if winner < 0 {
			if combined.Len() != 0 {
				t.Fatalf("expected empty result, got %v", combined.Keys())
			}
			return
		}
		if combined.Len() != sources[winner].Properties.Len() {
			t.Fatalf("got %d elements, want %d from source %d", combined.Len(), sources[winner].Properties.Len(), winner)
		}
		combined.Range(func(key string, value Value) bool {
			if value != String(fmt.Sprintf("s%d", winner)) {
				t.Fatalf("%s came from %v, want s%d", key, value, winner)
			}
			return true
		})
	})
}
