package property

import "errors"

// ErrBuilderFrozen is returned by SetValue after Freeze.
var ErrBuilderFrozen = errors.New("tree builder already frozen")

// TreeBuilder owns a tree under construction. SetValue is applied once per
// flat entry, in the flat map's order; later entries may replace leaves
// written by earlier ones.
type TreeBuilder struct {
	root *Object
}

// NewTreeBuilder returns a builder holding an empty root object.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{root: newObject()}
}

// Build turns a flat map into a nested tree. It stops at the first
// malformed key and returns its *InvalidKeyError; no tree is returned in
// that case.
func Build(flat FlatMap) (*Tree, error) {
	b := NewTreeBuilder()
	for _, key := range flat.keys {
		if err := b.SetValue(key, flat.values[key]); err != nil {
			return nil, err
		}
	}
	return b.Freeze(), nil
}

// SetValue inserts value at the position described by key, creating
// objects and arrays along the way. The key is parsed in full before the
// tree is touched, so a malformed key leaves the builder unchanged.
func (b *TreeBuilder) SetValue(key string, value Value) error {
	if b.root == nil {
		return ErrBuilderFrozen
	}
	path, err := ParseKey(key)
	if err != nil {
		return err
	}
	if value == nil {
		value = Null{}
	}
	insert(b.root, path, 0, value)
	return nil
}

// Freeze hands over the tree. The builder cannot be used afterwards.
func (b *TreeBuilder) Freeze() *Tree {
	t := &Tree{root: b.root}
	if t.root == nil {
		t.root = newObject()
	}
	b.root = nil
	return t
}

func insert(obj *Object, path Path, i int, value Value) {
	seg := path.Segments[i]
	last := i == len(path.Segments)-1

	if len(seg.Indices) == 0 {
		if last {
			obj.set(seg.Name, Scalar{Value: value})
			return
		}
		switch child := obj.children[seg.Name].(type) {
		case *Object:
			insert(child, path, i+1, value)
		case nil:
			next := newObject()
			obj.set(seg.Name, next)
			insert(next, path, i+1, value)
		default:
			compoundKey(obj, path, i, value)
		}
		return
	}

	var arr *Array
	switch child := obj.children[seg.Name].(type) {
	case *Array:
		arr = child
	case nil:
		arr = &Array{}
		obj.set(seg.Name, arr)
	default:
		compoundKey(obj, path, i, value)
		return
	}

	for j, idx := range seg.Indices {
		arr.grow(idx)
		lastIndex := j == len(seg.Indices)-1
		switch {
		case lastIndex && last:
			arr.items[idx] = Scalar{Value: value}
		case !lastIndex:
			arr = reshapeSlot(arr, idx, func() Node { return &Array{} }).(*Array)
		default:
			insert(reshapeSlot(arr, idx, func() Node { return newObject() }).(*Object), path, i+1, value)
		}
	}
}

// reshapeSlot returns the container at arr[idx] when it already has the
// shape fresh would create. Otherwise the slot, whether a scalar, Absent
// or the other container kind, is replaced by fresh(): array elements
// have no literal key to fall back to, so the later key wins the slot.
// "a[0]=x" followed by "a[0].b=y" leaves a[0] as {b: y}.
func reshapeSlot(arr *Array, idx int, fresh func() Node) Node {
	want := fresh()
	if cur := arr.items[idx]; cur != nil && cur.NodeKind() == want.NodeKind() {
		return cur
	}
	arr.items[idx] = want
	return want
}

// compoundKey handles a key whose segment i names a slot already holding
// a different shape, typically a leaf: "logging.level" set before
// "logging.level.org.example". The rest of the key from segment i is
// stored as one literal key in obj, so both values stay reachable.
func compoundKey(obj *Object, path Path, i int, value Value) {
	obj.set(path.Remainder(i), Scalar{Value: value})
}
