package property

import "fmt"

// NodeKind identifies the concrete type behind a Node.
type NodeKind int

const (
	NodeObject NodeKind = iota
	NodeArray
	NodeScalar
	NodeAbsent
)

// String returns the string representation of NodeKind
func (k NodeKind) String() string {
	switch k {
	case NodeObject:
		return "object"
	case NodeArray:
		return "array"
	case NodeScalar:
		return "scalar"
	case NodeAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Node is an element of the nested tree: *Object, *Array, Scalar or Absent.
type Node interface {
	NodeKind() NodeKind
	treeNode()
}

// Object is an insertion-ordered mapping from plain key to child node.
type Object struct {
	keys     []string
	children map[string]Node
}

// Array is a contiguous list of child nodes. Slots never written by any
// key hold Absent.
type Array struct {
	items []Node
}

// Scalar is a leaf.
type Scalar struct {
	Value Value
}

// Absent fills array slots below the highest written index.
type Absent struct{}

func (*Object) treeNode() {}
func (*Array) treeNode()  {}
func (Scalar) treeNode()  {}
func (Absent) treeNode()  {}

func (*Object) NodeKind() NodeKind { return NodeObject }
func (*Array) NodeKind() NodeKind  { return NodeArray }
func (Scalar) NodeKind() NodeKind  { return NodeScalar }
func (Absent) NodeKind() NodeKind  { return NodeAbsent }

func newObject() *Object {
	return &Object{children: make(map[string]Node)}
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the child stored under key.
func (o *Object) Get(key string) (Node, bool) {
	n, ok := o.children[key]
	return n, ok
}

// Range calls fn for each child in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, child Node) bool) {
	for _, k := range o.keys {
		if !fn(k, o.children[k]) {
			return
		}
	}
}

func (o *Object) set(key string, n Node) {
	if _, ok := o.children[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.children[key] = n
}

// Len returns the number of slots, absent ones included.
func (a *Array) Len() int { return len(a.items) }

// At returns slot i. Absent slots are returned as Absent with ok true.
func (a *Array) At(i int) (Node, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// grow extends the array with Absent slots so that index i exists.
func (a *Array) grow(i int) {
	for len(a.items) <= i {
		a.items = append(a.items, Absent{})
	}
}

// Tree is the nested form of a FlatMap. It is immutable.
type Tree struct {
	root *Object
}

// Root returns the top-level object.
func (t *Tree) Root() *Object {
	return t.root
}

// Get navigates the tree by map keys (string) and array indices (int).
func (t *Tree) Get(path ...any) (Node, error) {
	var cur Node = t.root
	for i, step := range path {
		switch s := step.(type) {
		case string:
			obj, ok := cur.(*Object)
			if !ok {
				return nil, fmt.Errorf("step %d (%q): %s is not an object", i, s, cur.NodeKind())
			}
			next, ok := obj.Get(s)
			if !ok {
				return nil, fmt.Errorf("step %d: no key %q", i, s)
			}
			cur = next
		case int:
			arr, ok := cur.(*Array)
			if !ok {
				return nil, fmt.Errorf("step %d ([%d]): %s is not an array", i, s, cur.NodeKind())
			}
			next, ok := arr.At(s)
			if !ok {
				return nil, fmt.Errorf("step %d: index %d out of range (len %d)", i, s, arr.Len())
			}
			cur = next
		default:
			return nil, fmt.Errorf("step %d: unsupported path element %T", i, step)
		}
	}
	return cur, nil
}

// Lookup finds the node for a flat key. Keys stored through the compound
// key rule are found under their literal remainder.
func (t *Tree) Lookup(key string) (Node, bool) {
	path, err := ParseKey(key)
	if err != nil {
		return nil, false
	}
	return lookupSegments(t.root, path, 0)
}

func lookupSegments(obj *Object, path Path, i int) (Node, bool) {
	if n, ok := descend(obj, path, i); ok {
		return n, true
	}
	return obj.Get(path.Remainder(i))
}

func descend(obj *Object, path Path, i int) (Node, bool) {
	seg := path.Segments[i]
	cur, ok := obj.Get(seg.Name)
	if !ok {
		return nil, false
	}
	for _, idx := range seg.Indices {
		arr, isArr := cur.(*Array)
		if !isArr {
			return nil, false
		}
		if cur, ok = arr.At(idx); !ok {
			return nil, false
		}
	}
	if i == len(path.Segments)-1 {
		return cur, true
	}
	next, isObj := cur.(*Object)
	if !isObj {
		return nil, false
	}
	return lookupSegments(next, path, i+1)
}

// ToNative converts the tree to map[string]any / []any / scalar form.
// Absent slots become nil.
func (t *Tree) ToNative() map[string]any {
	return toNative(t.root).(map[string]any)
}

func toNative(n Node) any {
	switch v := n.(type) {
	case *Object:
		m := make(map[string]any, v.Len())
		v.Range(func(k string, child Node) bool {
			m[k] = toNative(child)
			return true
		})
		return m
	case *Array:
		out := make([]any, v.Len())
		for i, child := range v.items {
			out[i] = toNative(child)
		}
		return out
	case Scalar:
		return Native(v.Value)
	default:
		return nil
	}
}

// Equal reports whether two trees have the same keys, values and array
// lengths.
func (t *Tree) Equal(other *Tree) bool {
	return EqualNodes(t.root, other.root)
}

// EqualNodes compares two nodes structurally. Object key order is ignored.
func EqualNodes(a, b Node) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			yc, ok := y.children[k]
			if !ok || !EqualNodes(x.children[k], yc) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !EqualNodes(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x.Value == y.Value
	case Absent:
		_, ok := b.(Absent)
		return ok
	default:
		return a == nil && b == nil
	}
}
