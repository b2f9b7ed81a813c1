package nested

import "github.com/havenbyte/colcodec/array"

// Shape describes the topology Unshred should rebuild: the same tree of
// List/FixedSizeList/Struct/Map/Leaf positions Shred flattened, but
// without any data attached. LeafPath.Leaf already carries every leaf's
// physical values, so only the ancestor containers (Offsets, Validity)
// need reconstructing.
type Shape interface{ isShape() }

// LeafShape marks one leaf position. Its identity (pointer) is what ties
// a position in shape to one entry of the []LeafPath slice passed to
// Unshred, matched by traversal order exactly as Shred produced it.
type LeafShape struct{}

func (*LeafShape) isShape() {}

// StructShape mirrors array.Struct. Reconstruction treats struct
// presence as always-true: this codec does not carry a separate
// struct-level definition slot distinct from its fields', so a null
// struct round-trips as a struct whose fields are independently null.
type StructShape struct {
	Names  []string
	Fields []Shape
}

func (*StructShape) isShape() {}

// ListShape mirrors array.List. Nullable must match whether the
// original List carried a non-nil Validity slice; it controls whether
// Unshred distinguishes a null list from a present-but-empty one.
type ListShape struct {
	Child    Shape
	Nullable bool
}

func (*ListShape) isShape() {}

// FixedSizeListShape mirrors array.FixedSizeList.
type FixedSizeListShape struct {
	Width int
	Child Shape
}

func (*FixedSizeListShape) isShape() {}

// MapShape mirrors array.Map: a list of (key, value) pairs.
type MapShape struct {
	Key, Value Shape
	Nullable   bool
}

func (*MapShape) isShape() {}

// Unshred rebuilds the array.Node shape describes from the leaf paths
// Shred produced for it. paths must be in Shred's own discovery order;
// the value Shred returns for a given shape already satisfies this.
func Unshred(shape Shape, paths []LeafPath) (array.Node, error) {
	u := &unshredder{
		shape:    shape,
		paths:    paths,
		leafIdx:  make(map[*LeafShape]int),
		listAccs: make(map[Shape]*listAccum),
		reps:     make(map[Shape]*LeafShape),
		mapSynth: make(map[*MapShape]*ListShape),
	}
	u.assign(shape)
	u.cursors = make([]int, len(paths))

	if len(paths) == 0 {
		return u.finish(shape)
	}

	rows := countZeroRep(paths[0])
	for row := 0; row < rows; row++ {
		if err := u.reconstructOne(shape, 0, 0); err != nil {
			return nil, err
		}
	}

	return u.finish(shape)
}

func countZeroRep(p LeafPath) int {
	n := 0
	for _, r := range p.Rep {
		if r == 0 {
			n++
		}
	}

	return n
}

type listAccum struct {
	offsets  []int64
	validity []bool
}

type unshredder struct {
	shape    Shape
	paths    []LeafPath
	leafIdx  map[*LeafShape]int
	cursors  []int
	nextLeaf int
	listAccs map[Shape]*listAccum
	reps     map[Shape]*LeafShape
	mapSynth map[*MapShape]*ListShape
}

// assign walks shape once, in the exact order Shred's own traversal
// visits leaves, binding each LeafShape to its corresponding entry in
// paths.
func (u *unshredder) assign(shape Shape) {
	switch v := shape.(type) {
	case *LeafShape:
		u.leafIdx[v] = u.nextLeaf
		u.nextLeaf++

	case *StructShape:
		for _, f := range v.Fields {
			u.assign(f)
		}

	case *ListShape:
		u.assign(v.Child)

	case *FixedSizeListShape:
		u.assign(v.Child)

	case *MapShape:
		u.assign(v.Key)
		u.assign(v.Value)
	}
}

func (u *unshredder) mapAsList(v *MapShape) *ListShape {
	if l, ok := u.mapSynth[v]; ok {
		return l
	}

	l := &ListShape{
		Nullable: v.Nullable,
		Child:    &StructShape{Names: []string{"key", "value"}, Fields: []Shape{v.Key, v.Value}},
	}
	u.mapSynth[v] = l

	return l
}

// representative returns some leaf reachable beneath shape, used by a
// List/Map level to peek ahead into its own child stream and decide
// where one row ends and the next begins.
func (u *unshredder) representative(shape Shape) *LeafShape {
	if r, ok := u.reps[shape]; ok {
		return r
	}

	r := firstLeaf(shape)
	u.reps[shape] = r

	return r
}

func firstLeaf(shape Shape) *LeafShape {
	switch v := shape.(type) {
	case *LeafShape:
		return v
	case *StructShape:
		for _, f := range v.Fields {
			if l := firstLeaf(f); l != nil {
				return l
			}
		}

		return nil
	case *ListShape:
		return firstLeaf(v.Child)
	case *FixedSizeListShape:
		return firstLeaf(v.Child)
	case *MapShape:
		if l := firstLeaf(v.Key); l != nil {
			return l
		}

		return firstLeaf(v.Value)
	default:
		return nil
	}
}

func (u *unshredder) peek(leaf *LeafShape) (rep, def byte, present, ok bool) {
	idx := u.leafIdx[leaf]
	pos := u.cursors[idx]
	p := u.paths[idx]

	if pos >= len(p.Rep) {
		return 0, 0, false, false
	}

	return p.Rep[pos], p.Def[pos], p.Present[pos], true
}

// reconstructOne consumes exactly one occurrence of shape: one scalar
// for a Leaf, one record for a Struct, one fixed-width row for a
// FixedSizeList, and one (possibly multi-element) row for a List/Map.
func (u *unshredder) reconstructOne(shape Shape, depth int, def byte) error {
	switch v := shape.(type) {
	case *LeafShape:
		u.cursors[u.leafIdx[v]]++
		return nil

	case *StructShape:
		for _, f := range v.Fields {
			if err := u.reconstructOne(f, depth, def); err != nil {
				return err
			}
		}

		return nil

	case *FixedSizeListShape:
		for k := 0; k < v.Width; k++ {
			if err := u.reconstructOne(v.Child, depth+1, def); err != nil {
				return err
			}
		}

		return nil

	case *ListShape:
		return u.reconstructOneList(v, v.Child, v.Nullable, depth, def)

	case *MapShape:
		l := u.mapAsList(v)
		return u.reconstructOneList(v, l.Child, v.Nullable, depth, def)

	default:
		return nil
	}
}

// reconstructOneList builds exactly one row of a List/Map-shaped node,
// keyed by accKey for its accumulator (the ListShape/MapShape pointer
// itself, so a Map's rows land in the same accumulator Unshred's Map
// branch reads back from later).
func (u *unshredder) reconstructOneList(accKey Shape, child Shape, nullable bool, depth int, def byte) error {
	acc := u.listAcc(accKey)
	newDepth := byte(depth + 1)

	rep := u.representative(child)

	_, d0, present0, ok := u.peek(rep)
	if !ok || !present0 {
		u.consumeAbsent(child)

		last := acc.offsets[len(acc.offsets)-1]
		acc.offsets = append(acc.offsets, last)

		if nullable {
			acc.validity = append(acc.validity, d0 != def)
		}

		return nil
	}

	d := def
	if nullable {
		d++
	}

	count := 0

	for {
		if err := u.reconstructOne(child, depth+1, d); err != nil {
			return err
		}

		count++

		r, _, p, ok := u.peek(rep)
		if !ok || !p || r < newDepth {
			break
		}
	}

	last := acc.offsets[len(acc.offsets)-1]
	acc.offsets = append(acc.offsets, last+int64(count))

	if nullable {
		acc.validity = append(acc.validity, true)
	}

	return nil
}

func (u *unshredder) listAcc(shape Shape) *listAccum {
	if a, ok := u.listAccs[shape]; ok {
		return a
	}

	a := &listAccum{offsets: []int64{0}}
	u.listAccs[shape] = a

	return a
}

// consumeAbsent advances every leaf reachable beneath shape by exactly
// one structurally-null entry, mirroring Shred's emitAbsent.
func (u *unshredder) consumeAbsent(shape Shape) {
	switch v := shape.(type) {
	case *LeafShape:
		u.cursors[u.leafIdx[v]]++

	case *StructShape:
		for _, f := range v.Fields {
			u.consumeAbsent(f)
		}

	case *ListShape:
		u.consumeAbsent(v.Child)

	case *FixedSizeListShape:
		u.consumeAbsent(v.Child)

	case *MapShape:
		l := u.mapAsList(v)
		u.consumeAbsent(l.Child)
	}
}

func (u *unshredder) finish(shape Shape) (array.Node, error) {
	switch v := shape.(type) {
	case *LeafShape:
		return u.paths[u.leafIdx[v]].Leaf, nil

	case *StructShape:
		fields := make([]array.Node, len(v.Fields))

		for i, f := range v.Fields {
			n, err := u.finish(f)
			if err != nil {
				return nil, err
			}

			fields[i] = n
		}

		return &array.Struct{Fields: fields, Names: append([]string(nil), v.Names...)}, nil

	case *FixedSizeListShape:
		child, err := u.finish(v.Child)
		if err != nil {
			return nil, err
		}

		return &array.FixedSizeList{Width: v.Width, Child: child}, nil

	case *ListShape:
		child, err := u.finish(v.Child)
		if err != nil {
			return nil, err
		}

		acc := u.listAcc(v)

		var validity []bool
		if v.Nullable {
			validity = acc.validity
		}

		return &array.List{Validity: validity, Offsets: acc.offsets, Child: child}, nil

	case *MapShape:
		keyNode, err := u.finish(v.Key)
		if err != nil {
			return nil, err
		}

		valNode, err := u.finish(v.Value)
		if err != nil {
			return nil, err
		}

		acc := u.listAcc(v)

		var validity []bool
		if v.Nullable {
			validity = acc.validity
		}

		return &array.Map{Validity: validity, Offsets: acc.offsets, Keys: keyNode, Values: valNode}, nil

	default:
		return nil, nil
	}
}
