package property

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func flat(pairs ...string) FlatMap {
	b := NewFlatMapBuilder(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], String(pairs[i+1]))
	}
	return b.Freeze()
}

func mustBuild(t *testing.T, m FlatMap) *Tree {
	t.Helper()
	tree, err := Build(m)
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree
}

func scalarAt(t *testing.T, tree *Tree, path ...any) Value {
	t.Helper()
	n, err := tree.Get(path...)
	require.NoError(t, err)
	s, ok := n.(Scalar)
	require.True(t, ok, "expected scalar at %v, got %s", path, n.NodeKind())
	return s.Value
}

func TestBuild_NestedReconstruction(t *testing.T) {
	tree := mustBuild(t, flat("a.b.c", "v1", "a.b.d", "v2"))

	assert.Equal(t, String("v1"), scalarAt(t, tree, "a", "b", "c"))
	assert.Equal(t, String("v2"), scalarAt(t, tree, "a", "b", "d"))

	n, err := tree.Get("a", "b")
	require.NoError(t, err)
	obj, ok := n.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"c", "d"}, obj.Keys(), "both leaves should share one object")
}

func TestBuild_ArrayGapFilling(t *testing.T) {
	tree := mustBuild(t, flat("list[0]", "x", "list[2]", "z"))

	n, err := tree.Get("list")
	require.NoError(t, err)
	arr, ok := n.(*Array)
	require.True(t, ok)
	require.Equal(t, 3, arr.Len())

	assert.Equal(t, String("x"), scalarAt(t, tree, "list", 0))
	assert.Equal(t, String("z"), scalarAt(t, tree, "list", 2))

	gap, ok := arr.At(1)
	require.True(t, ok)
	assert.Equal(t, NodeAbsent, gap.NodeKind())
}

func TestBuild_GapFilledLaterIsOverwritten(t *testing.T) {
	tree := mustBuild(t, flat("list[2]", "z", "list[0]", "x", "list[1]", "y"))

	assert.Equal(t, String("x"), scalarAt(t, tree, "list", 0))
	assert.Equal(t, String("y"), scalarAt(t, tree, "list", 1))
	assert.Equal(t, String("z"), scalarAt(t, tree, "list", 2))
}

func TestBuild_ArrayElementsAsObjectsAndArrays(t *testing.T) {
	tree := mustBuild(t, flat(
		"servers[0].host", "alpha",
		"servers[0].port", "80",
		"servers[1].host", "beta",
		"matrix[0][1]", "m01",
		"matrix[1][0]", "m10",
	))

	assert.Equal(t, String("alpha"), scalarAt(t, tree, "servers", 0, "host"))
	assert.Equal(t, String("80"), scalarAt(t, tree, "servers", 0, "port"))
	assert.Equal(t, String("beta"), scalarAt(t, tree, "servers", 1, "host"))
	assert.Equal(t, String("m01"), scalarAt(t, tree, "matrix", 0, 1))
	assert.Equal(t, String("m10"), scalarAt(t, tree, "matrix", 1, 0))

	first, err := tree.Get("matrix", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, NodeAbsent, first.NodeKind())
}

func TestBuild_CompoundKeyFallback(t *testing.T) {
	tree := mustBuild(t, flat(
		"logging.level", "INFO",
		"logging.level.org.example", "DEBUG",
	))

	assert.Equal(t, String("INFO"), scalarAt(t, tree, "logging", "level"))
	assert.Equal(t, String("DEBUG"), scalarAt(t, tree, "logging", "level.org.example"))

	n, ok := tree.Lookup("logging.level.org.example")
	require.True(t, ok, "compound leaf should be reachable by its flat key")
	assert.Equal(t, Scalar{Value: String("DEBUG")}, n)

	n, ok = tree.Lookup("logging.level")
	require.True(t, ok)
	assert.Equal(t, Scalar{Value: String("INFO")}, n)
}

func TestBuild_CompoundKeyFallback_Rules(t *testing.T) {
	tests := []struct {
		name     string
		input    FlatMap
		path     []any
		expected Value
	}{
		{
			name:     "deeper key after leaf",
			input:    flat("a.b", "1", "a.b.c.d", "2"),
			path:     []any{"a", "b.c.d"},
			expected: String("2"),
		},
		{
			name:     "second compound key reuses literal form",
			input:    flat("a.b", "1", "a.b.c", "2", "a.b.c.d", "3"),
			path:     []any{"a", "b.c.d"},
			expected: String("3"),
		},
		{
			name:     "indexed key under a leaf",
			input:    flat("a.b", "1", "a.b[0]", "2"),
			path:     []any{"a", "b[0]"},
			expected: String("2"),
		},
		{
			name:     "map key under an array",
			input:    flat("a[0]", "1", "a.b", "2"),
			path:     []any{"a.b"},
			expected: String("2"),
		},
		{
			name:     "indexed key under an object",
			input:    flat("a.x", "1", "a[0]", "2"),
			path:     []any{"a[0]"},
			expected: String("2"),
		},
		{
			name:     "top level leaf",
			input:    flat("server", "on", "server.port", "80"),
			path:     []any{"server.port"},
			expected: String("80"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustBuild(t, tt.input)
			assert.Equal(t, tt.expected, scalarAt(t, tree, tt.path...))

			// every flat key stays retrievable
			tt.input.Range(func(key string, value Value) bool {
				n, ok := tree.Lookup(key)
				if assert.True(t, ok, "lookup %s", key) {
					assert.Equal(t, Scalar{Value: value}, n, "lookup %s", key)
				}
				return true
			})
		})
	}
}

func TestBuild_LeafReplacesEarlierValue(t *testing.T) {
	tree := mustBuild(t, flat("a.b.c", "deep", "a.b", "flat"))
	assert.Equal(t, String("flat"), scalarAt(t, tree, "a", "b"))
}

func TestBuild_ArraySlotShapeChange(t *testing.T) {
	tree := mustBuild(t, flat("a[0]", "leaf", "a[0].b", "obj"))
	assert.Equal(t, String("obj"), scalarAt(t, tree, "a", 0, "b"))

	slot, ok := tree.Lookup("a[0]")
	require.True(t, ok)
	assert.Equal(t, NodeObject, slot.NodeKind(), "the later key replaces the scalar slot")
	assert.Equal(t, map[string]any{"a": []any{map[string]any{"b": "obj"}}}, tree.ToNative())
}

func TestBuild_ArraySlotReshapedToNestedArray(t *testing.T) {
	tree := mustBuild(t, flat("m[1]", "leaf", "m[1][0]", "inner", "m[1][2]", "last"))
	assert.Equal(t, String("inner"), scalarAt(t, tree, "m", 1, 0))
	assert.Equal(t, String("last"), scalarAt(t, tree, "m", 1, 2))

	slot, ok := tree.Lookup("m[0]")
	require.True(t, ok)
	assert.Equal(t, NodeAbsent, slot.NodeKind())
}

func TestBuild_ArraySlotKeepsMatchingContainer(t *testing.T) {
	tree := mustBuild(t, flat("a[0].x", "1", "a[0].y", "2"))
	assert.Equal(t, String("1"), scalarAt(t, tree, "a", 0, "x"))
	assert.Equal(t, String("2"), scalarAt(t, tree, "a", 0, "y"))
}

func TestBuild_InvalidKeyRejection(t *testing.T) {
	for _, bad := range []string{"a[x]", "a[]", "a[0"} {
		t.Run(bad, func(t *testing.T) {
			tree, err := Build(flat("good.key", "v", bad, "oops", "other", "w"))
			require.Error(t, err)
			assert.Nil(t, tree, "no partial tree on failure")
			assert.True(t, errors.Is(err, ErrInvalidKey))
			assert.Contains(t, err.Error(), bad)
		})
	}
}

func TestTreeBuilder_SetValueLeavesTreeUntouchedOnError(t *testing.T) {
	b := NewTreeBuilder()
	require.NoError(t, b.SetValue("a.b", String("1")))
	require.Error(t, b.SetValue("a.c[0].d[", String("2")))

	tree := b.Freeze()
	assert.Equal(t, []string{"b"}, mustObject(t, tree, "a").Keys())

	assert.ErrorIs(t, b.SetValue("x", String("y")), ErrBuilderFrozen)
}

func TestBuild_EmptyMap(t *testing.T) {
	tree := mustBuild(t, FlatMap{})
	assert.Equal(t, 0, tree.Root().Len())
	assert.Empty(t, tree.ToNative())
}

func TestBuild_NilValueBecomesNull(t *testing.T) {
	b := NewTreeBuilder()
	require.NoError(t, b.SetValue("a", nil))
	tree := b.Freeze()
	assert.Equal(t, Null{}, scalarAt(t, tree, "a"))
}

func TestTree_ToNative(t *testing.T) {
	m := NewFlatMap(
		Entry{Key: "name", Value: String("svc")},
		Entry{Key: "port", Value: Int(8080)},
		Entry{Key: "ratio", Value: Float(0.5)},
		Entry{Key: "on", Value: Bool(true)},
		Entry{Key: "tags[1]", Value: String("b")},
	)
	tree := mustBuild(t, m)

	assert.Equal(t, map[string]any{
		"name":  "svc",
		"port":  int64(8080),
		"ratio": 0.5,
		"on":    true,
		"tags":  []any{nil, "b"},
	}, tree.ToNative())
}

func TestTree_GetErrors(t *testing.T) {
	tree := mustBuild(t, flat("a.b", "1", "l[0]", "x"))

	_, err := tree.Get("a", 0)
	assert.Error(t, err)
	_, err = tree.Get("l", "x")
	assert.Error(t, err)
	_, err = tree.Get("l", 5)
	assert.Error(t, err)
	_, err = tree.Get("missing")
	assert.Error(t, err)
	_, err = tree.Get(1.5)
	assert.Error(t, err)
}

func mustObject(t *testing.T, tree *Tree, path ...any) *Object {
	t.Helper()
	n, err := tree.Get(path...)
	require.NoError(t, err)
	obj, ok := n.(*Object)
	require.True(t, ok)
	return obj
}

// genKey draws keys from a small alphabet so prefixes and indices collide often.
func genKey() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		segments := rapid.IntRange(1, 3).Draw(t, "segments")
		key := ""
		for i := 0; i < segments; i++ {
			if i > 0 {
				key += "."
			}
			key += rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, "name")
			indices := rapid.IntRange(0, 2).Draw(t, "indices")
			for j := 0; j < indices; j++ {
				key += fmt.Sprintf("[%d]", rapid.IntRange(0, 3).Draw(t, "index"))
			}
		}
		return key
	})
}

func genFlatMap() *rapid.Generator[FlatMap] {
	return rapid.Custom(func(t *rapid.T) FlatMap {
		n := rapid.IntRange(0, 12).Draw(t, "entries")
		b := NewFlatMapBuilder(n)
		for i := 0; i < n; i++ {
			b.Set(genKey().Draw(t, "key"), Int(int64(i)))
		}
		return b.Freeze()
	})
}

func TestBuild_Property_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := genFlatMap().Draw(t, "flat")

		first, err := Build(m)
		if err != nil {
			t.Fatalf("build failed on generated valid keys: %v", err)
		}
		second, err := Build(m)
		if err != nil {
			t.Fatalf("second build failed: %v", err)
		}
		if !first.Equal(second) {
			t.Fatalf("builds differ for %v", m.Keys())
		}
	})
}

func TestBuild_Property_LastKeyAlwaysReachable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := genFlatMap().Draw(t, "flat")
		if m.Len() == 0 {
			return
		}
		tree, err := Build(m)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}

		keys := m.Keys()
		last := keys[len(keys)-1]
		want, _ := m.Get(last)
		n, ok := tree.Lookup(last)
		if !ok {
			t.Fatalf("last written key %q not reachable", last)
		}
		if s, isScalar := n.(Scalar); !isScalar || s.Value != want {
			t.Fatalf("key %q: got %#v, want %v", last, n, want)
		}
	})
}
