package array

import "github.com/havenbyte/colcodec/errs"

// Node is implemented by every array shape NestedShredder knows how to
// flatten: a Leaf (the recursion's base case) or one of the four
// composite shapes. Len is the number of addressable slots at this
// node's own nesting level: value count for a Leaf, row count for every
// composite shape.
type Node interface {
	Len() int
}

// List is list-of(child), one of the four composite shapes.
// Offsets has length Len()+1 and must be non-decreasing; row i's
// elements are Child[Offsets[i]:Offsets[i+1]].
type List struct {
	Validity []bool // nil => no nulls; length Len()
	Offsets  []int64
	Child    Node
}

func (l *List) Len() int           { return len(l.Offsets) - 1 }
func (l *List) IsValid(i int) bool { return l.Validity == nil || l.Validity[i] }

// Validate checks the non-decreasing-offsets and child-length invariants
// every List must hold.
func (l *List) Validate() error {
	if len(l.Offsets) == 0 {
		return errs.NewOutOfSpec("list: offsets must have at least one entry")
	}

	for i := 1; i < len(l.Offsets); i++ {
		if l.Offsets[i] < l.Offsets[i-1] {
			return errs.ErrInvalidOffsets
		}
	}

	if l.Child != nil && int(l.Offsets[len(l.Offsets)-1]) > l.Child.Len() {
		return errs.ErrInvalidOffsets
	}

	return nil
}

// FixedSizeList is a fixed-size-list-of(child): every row has exactly
// Width elements, so no offsets stream is needed.
type FixedSizeList struct {
	Validity []bool
	Width    int
	Child    Node
}

func (f *FixedSizeList) Len() int {
	if f.Validity != nil {
		return len(f.Validity)
	}

	if f.Child == nil || f.Width <= 0 {
		return 0
	}

	return f.Child.Len() / f.Width
}

func (f *FixedSizeList) IsValid(i int) bool { return f.Validity == nil || f.Validity[i] }

// Struct is struct-of(f1...fn): every field has equal length, with one
// shared validity mask at the struct level.
type Struct struct {
	Validity []bool
	Fields   []Node
	Names    []string
}

func (s *Struct) Len() int {
	if len(s.Fields) == 0 {
		return 0
	}

	return s.Fields[0].Len()
}

func (s *Struct) IsValid(i int) bool { return s.Validity == nil || s.Validity[i] }

// Validate checks that every field has equal length.
func (s *Struct) Validate() error {
	n := s.Len()
	for _, f := range s.Fields {
		if f.Len() != n {
			return errs.NewOutOfSpec("struct: field length mismatch")
		}
	}

	return nil
}

// Map is map-of(K,V): a list of structs with exactly two fields
// (key, value).
type Map struct {
	Validity []bool
	Offsets  []int64
	Keys     Node
	Values   Node
}

func (m *Map) Len() int           { return len(m.Offsets) - 1 }
func (m *Map) IsValid(i int) bool { return m.Validity == nil || m.Validity[i] }

// AsList exposes Map's underlying (offsets, struct-of(key,value)) shape,
// since NestedShredder treats a map identically to list-of-struct.
func (m *Map) AsList() *List {
	return &List{
		Validity: m.Validity,
		Offsets:  m.Offsets,
		Child: &Struct{
			Fields: []Node{m.Keys, m.Values},
			Names:  []string{"key", "value"},
		},
	}
}
