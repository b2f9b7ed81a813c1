// Package nested implements NestedShredder: flattening a
// composite array.Node into (leaf, repetition-stream, definition-stream)
// triples via a depth-first, left-to-right traversal, and the inverse
// reconstruction from those streams.
//
// The traversal (recurse per row, track a nesting depth that only grows
// and a rep value that only a deeper continuation may overwrite) follows
// the standard Dremel shredding algorithm; each leaf path keeps an
// explicit accumulator struct for its levels and values.
package nested

import (
	"github.com/havenbyte/colcodec/array"
	"github.com/havenbyte/colcodec/errs"
)

// LeafPath is one leaf-path NestedShredder emits for one leaf of a
// composite column. Rep/Def/Present all share the same length: one entry
// per row position reachable along this path, whether or not that
// position holds an actual value. Present[i] is true when entry i
// consumes the next value from Leaf (in order); when false, the entry
// is a structurally-null slot contributed by an absent ancestor list and
// consumes nothing. MaxRep/MaxDef are the ceiling values a reader needs
// to tell "fully defined" apart from every kind of absence.
type LeafPath struct {
	Leaf           *array.Leaf
	Rep, Def       []byte
	Present        []bool
	MaxRep, MaxDef byte
}

// Shred flattens a composite array.Node into its leaf paths, one row at
// a time, depth first, left to right.
func Shred(n array.Node) ([]LeafPath, error) {
	s := &shredder{acc: make(map[*array.Leaf]*accum)}

	rows := n.Len()
	for row := 0; row < rows; row++ {
		if err := s.emit(n, row, 0, 0, 0); err != nil {
			return nil, err
		}
	}

	paths := make([]LeafPath, len(s.order))
	for i, leaf := range s.order {
		a := s.acc[leaf]
		paths[i] = LeafPath{
			Leaf:    leaf,
			Rep:     a.rep,
			Def:     a.def,
			Present: a.present,
			MaxRep:  a.maxRep,
			MaxDef:  a.maxDef,
		}
	}

	return paths, nil
}

type accum struct {
	rep, def []byte
	present  []bool
	maxRep   byte
	maxDef   byte
}

type shredder struct {
	acc   map[*array.Leaf]*accum
	order []*array.Leaf
}

func (s *shredder) get(leaf *array.Leaf) *accum {
	if a, ok := s.acc[leaf]; ok {
		return a
	}

	a := &accum{}
	s.acc[leaf] = a
	s.order = append(s.order, leaf)

	return a
}

func (a *accum) push(rep, def byte, present bool) {
	a.rep = append(a.rep, rep)
	a.def = append(a.def, def)
	a.present = append(a.present, present)

	if rep > a.maxRep {
		a.maxRep = rep
	}

	if def > a.maxDef {
		a.maxDef = def
	}
}

// emit processes the single element at index idx of node n: for a Leaf
// that is one scalar, for a List/Map/FixedSizeList it is one row (a
// sub-range of the child), for a Struct it is one record (every field
// sharing idx). depth is the number of List/FixedSizeList/Map ancestors
// strictly above n, used only to compute the rep value a continuation
// at this level should stamp on its descendants. rep is the inherited
// rep value to use unless a deeper continuation overwrites it, and def
// is the running count of present optional/repeated ancestors.
func (s *shredder) emit(n array.Node, idx int, depth int, rep, def byte) error {
	switch v := n.(type) {
	case *array.Leaf:
		present := v.IsValid(idx)

		d := def
		if present {
			d++
		}

		s.get(v).push(rep, d, true)

		return nil

	case *array.Struct:
		if err := v.Validate(); err != nil {
			return err
		}

		d := def
		if v.Validity != nil && v.IsValid(idx) {
			d++
		}

		for _, f := range v.Fields {
			if err := s.emit(f, idx, depth, rep, d); err != nil {
				return err
			}
		}

		return nil

	case *array.List:
		return s.emitList(v, idx, depth, rep, def)

	case *array.Map:
		return s.emitList(v.AsList(), idx, depth, rep, def)

	case *array.FixedSizeList:
		present := v.IsValid(idx)

		d := def
		if v.Validity != nil && present {
			d++
		}

		newDepth := byte(depth + 1)
		base := idx * v.Width

		for k := 0; k < v.Width; k++ {
			r := rep
			if k > 0 {
				r = newDepth
			}

			if err := s.emit(v.Child, base+k, depth+1, r, d); err != nil {
				return err
			}
		}

		return nil

	default:
		return errs.NewNotYetImplemented("shredding node type %T", n)
	}
}

func (s *shredder) emitList(v *array.List, idx, depth int, rep, def byte) error {
	if err := v.Validate(); err != nil {
		return err
	}

	present := v.IsValid(idx)

	d := def
	if v.Validity != nil && present {
		d++
	}

	if !present {
		return s.emitAbsent(v.Child, rep, d)
	}

	start, end := v.Offsets[idx], v.Offsets[idx+1]
	if start == end {
		// Present but empty: one definition level higher than "absent"
		// so a reader can tell "null list" from "empty list" apart.
		return s.emitAbsent(v.Child, rep, d+1)
	}

	newDepth := byte(depth + 1)

	for i := start; i < end; i++ {
		r := rep
		if i > start {
			r = newDepth
		}

		if err := s.emit(v.Child, int(i), depth+1, r, d); err != nil {
			return err
		}
	}

	return nil
}

// emitAbsent records one structurally-null slot, at the given (rep, def),
// for every leaf reachable beneath n. An absent repeated ancestor
// collapses its entire subtree to a single missing entry per leaf,
// regardless of how deeply nested that subtree is.
func (s *shredder) emitAbsent(n array.Node, rep, def byte) error {
	switch v := n.(type) {
	case *array.Leaf:
		s.get(v).push(rep, def, false)
		return nil

	case *array.Struct:
		for _, f := range v.Fields {
			if err := s.emitAbsent(f, rep, def); err != nil {
				return err
			}
		}

		return nil

	case *array.List:
		return s.emitAbsent(v.Child, rep, def)

	case *array.FixedSizeList:
		return s.emitAbsent(v.Child, rep, def)

	case *array.Map:
		return s.emitAbsent(v.AsList().Child, rep, def)

	default:
		return errs.NewNotYetImplemented("shredding node type %T", n)
	}
}
