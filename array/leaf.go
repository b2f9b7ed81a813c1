// Package array defines the in-memory array shapes the codec operates on:
// leaf columns (one physical type plus an optional validity mask) and the
// four composite shapes (list, map, struct, fixed-size list) that
// nested.Shred flattens into leaves.
//
// Leaf keeps raw values in a handful of dedicated typed slices rather than
// one generic boxed value slice.
package array

import "github.com/havenbyte/colcodec/format"

// Leaf is an ordered sequence of values of one physical type plus an
// optional validity mask (nil means no nulls: every position is valid).
//
// Exactly one of the typed slices is populated, selected by Type. Integer
// physical types of width <= 64 share Int64s (signed values sign-extended,
// unsigned zero-extended); Int128/Int256/Uint128/Uint256 store their
// little-endian bytes in Wide, one slice per value. Bytes32/Bytes64
// leaves store each value's bytes in Bytes.
type Leaf struct {
	Type     format.PhysicalType
	Validity []bool // nil => all valid

	Bools   []bool
	Int64s  []int64
	Floats  []float64
	Float32 []float32
	Bytes   [][]byte
	Wide    [][]byte // Int128/Int256/Uint128/Uint256, little-endian
}

// Len returns the leaf's logical value count, independent of which typed
// slice backs it.
func (l *Leaf) Len() int {
	switch {
	case l.Type == format.Bool:
		return len(l.Bools)
	case l.Type.IsFloat() && l.Type == format.Float32:
		return len(l.Float32)
	case l.Type.IsFloat():
		return len(l.Floats)
	case l.Type.IsBytes():
		return len(l.Bytes)
	case l.Type.IsWideInteger():
		return len(l.Wide)
	case l.Type.IsInteger():
		return len(l.Int64s)
	default:
		return 0
	}
}

// IsValid reports whether position i is valid (non-null).
func (l *Leaf) IsValid(i int) bool {
	return l.Validity == nil || l.Validity[i]
}

// Slice returns a new Leaf covering the half-open range [start, end) of
// the original, sharing no backing storage with it (values and validity
// are copied so pages can be mutated/rebased independently).
func (l *Leaf) Slice(start, end int) *Leaf {
	out := &Leaf{Type: l.Type}

	if l.Validity != nil {
		out.Validity = append([]bool(nil), l.Validity[start:end]...)
	}

	switch {
	case l.Type == format.Bool:
		out.Bools = append([]bool(nil), l.Bools[start:end]...)
	case l.Type == format.Float32:
		out.Float32 = append([]float32(nil), l.Float32[start:end]...)
	case l.Type.IsFloat():
		out.Floats = append([]float64(nil), l.Floats[start:end]...)
	case l.Type.IsBytes():
		out.Bytes = append([][]byte(nil), l.Bytes[start:end]...)
	case l.Type.IsWideInteger():
		out.Wide = append([][]byte(nil), l.Wide[start:end]...)
	case l.Type.IsInteger():
		out.Int64s = append([]int64(nil), l.Int64s[start:end]...)
	}

	return out
}
