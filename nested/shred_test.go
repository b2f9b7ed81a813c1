package nested_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/array"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/nested"
)

func intLeaf(vals []int64, validity []bool) *array.Leaf {
	return &array.Leaf{Type: format.Int64, Validity: validity, Int64s: vals}
}

// checkInvariants verifies the level-stream invariants for one
// leaf path: rep/def/present all carry the same length, and the count
// of rep==0 entries recovers the original top-level row count.
func checkInvariants(t *testing.T, p nested.LeafPath, wantRows int) {
	t.Helper()

	require.Equal(t, len(p.Rep), len(p.Def))
	require.Equal(t, len(p.Rep), len(p.Present))

	zeros := 0
	for _, r := range p.Rep {
		if r == 0 {
			zeros++
		}
	}

	require.Equal(t, wantRows, zeros)
}

func TestShredUnshredListOfInt(t *testing.T) {
	// rows: [1,2,3], [], null, [9]
	child := intLeaf([]int64{1, 2, 3, 9}, nil)
	list := &array.List{
		Validity: []bool{true, true, false, true},
		Offsets:  []int64{0, 3, 3, 3, 4},
		Child:    child,
	}

	paths, err := nested.Shred(list)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	checkInvariants(t, paths[0], 4)

	shape := &nested.ListShape{Nullable: true, Child: &nested.LeafShape{}}

	rebuilt, err := nested.Unshred(shape, paths)
	require.NoError(t, err)

	got, ok := rebuilt.(*array.List)
	require.True(t, ok)
	require.Equal(t, list.Offsets, got.Offsets)
	require.Equal(t, list.Validity, got.Validity)
	require.Equal(t, child.Int64s, got.Child.(*array.Leaf).Int64s)
}

func TestShredUnshredStructOfPrimitives(t *testing.T) {
	a := intLeaf([]int64{10, 20, 30}, nil)
	b := intLeaf([]int64{1, 0, 1}, []bool{true, false, true})

	st := &array.Struct{
		Fields: []array.Node{a, b},
		Names:  []string{"a", "b"},
	}

	paths, err := nested.Shred(st)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	checkInvariants(t, paths[0], 3)
	checkInvariants(t, paths[1], 3)

	shape := &nested.StructShape{
		Names:  []string{"a", "b"},
		Fields: []nested.Shape{&nested.LeafShape{}, &nested.LeafShape{}},
	}

	rebuilt, err := nested.Unshred(shape, paths)
	require.NoError(t, err)

	got, ok := rebuilt.(*array.Struct)
	require.True(t, ok)
	require.Equal(t, a.Int64s, got.Fields[0].(*array.Leaf).Int64s)
	require.Equal(t, b.Validity, got.Fields[1].(*array.Leaf).Validity)
}

func TestShredUnshredListOfStruct(t *testing.T) {
	// rows: [{1,10},{2,20}], [], [{3,30}]
	x := intLeaf([]int64{1, 2, 3}, nil)
	y := intLeaf([]int64{10, 20, 30}, nil)

	st := &array.Struct{Fields: []array.Node{x, y}, Names: []string{"x", "y"}}
	list := &array.List{Offsets: []int64{0, 2, 2, 3}, Child: st}

	paths, err := nested.Shred(list)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	checkInvariants(t, paths[0], 3)
	checkInvariants(t, paths[1], 3)

	shape := &nested.ListShape{
		Child: &nested.StructShape{
			Names:  []string{"x", "y"},
			Fields: []nested.Shape{&nested.LeafShape{}, &nested.LeafShape{}},
		},
	}

	rebuilt, err := nested.Unshred(shape, paths)
	require.NoError(t, err)

	got, ok := rebuilt.(*array.List)
	require.True(t, ok)
	require.Equal(t, list.Offsets, got.Offsets)

	gotSt := got.Child.(*array.Struct)
	require.Equal(t, x.Int64s, gotSt.Fields[0].(*array.Leaf).Int64s)
	require.Equal(t, y.Int64s, gotSt.Fields[1].(*array.Leaf).Int64s)
}

func TestShredUnshredListOfList(t *testing.T) {
	// rows: [[1,2],[3]], [[]], [[4,5,6]]
	leaf := intLeaf([]int64{1, 2, 3, 4, 5, 6}, nil)
	inner := &array.List{Offsets: []int64{0, 2, 3, 3, 6}, Child: leaf}
	outer := &array.List{Offsets: []int64{0, 2, 3, 4}, Child: inner}

	paths, err := nested.Shred(outer)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	checkInvariants(t, paths[0], 3)

	shape := &nested.ListShape{Child: &nested.ListShape{Child: &nested.LeafShape{}}}

	rebuilt, err := nested.Unshred(shape, paths)
	require.NoError(t, err)

	got := rebuilt.(*array.List)
	require.Equal(t, outer.Offsets, got.Offsets)

	gotInner := got.Child.(*array.List)
	require.Equal(t, inner.Offsets, gotInner.Offsets)
	require.Equal(t, leaf.Int64s, gotInner.Child.(*array.Leaf).Int64s)
}

func TestShredUnshredMap(t *testing.T) {
	keys := intLeaf([]int64{1, 2, 3}, nil)
	vals := intLeaf([]int64{100, 200, 300}, nil)

	m := &array.Map{Offsets: []int64{0, 1, 1, 3}, Keys: keys, Values: vals}

	paths, err := nested.Shred(m)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	shape := &nested.MapShape{Key: &nested.LeafShape{}, Value: &nested.LeafShape{}}

	rebuilt, err := nested.Unshred(shape, paths)
	require.NoError(t, err)

	got := rebuilt.(*array.Map)
	require.Equal(t, m.Offsets, got.Offsets)
	require.Equal(t, keys.Int64s, got.Keys.(*array.Leaf).Int64s)
	require.Equal(t, vals.Int64s, got.Values.(*array.Leaf).Int64s)
}

func TestShredUnshredFixedSizeList(t *testing.T) {
	leaf := intLeaf([]int64{1, 2, 3, 4, 5, 6}, nil)
	fl := &array.FixedSizeList{Width: 2, Child: leaf}

	paths, err := nested.Shred(fl)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	checkInvariants(t, paths[0], 3)

	shape := &nested.FixedSizeListShape{Width: 2, Child: &nested.LeafShape{}}

	rebuilt, err := nested.Unshred(shape, paths)
	require.NoError(t, err)

	got := rebuilt.(*array.FixedSizeList)
	require.Equal(t, 2, got.Width)
	require.Equal(t, leaf.Int64s, got.Child.(*array.Leaf).Int64s)
}
