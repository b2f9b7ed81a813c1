// Package schema defines the field tree a colcodec container writes once,
// before any column payload. A Field names a
// leaf's physical/logical type directly, or a composite shape (list, map,
// struct, fixed-size list) over nested Fields, mirroring array.Node's shape
// one level up at the naming/typing layer rather than the in-memory layer.
//
// The encode/decode pair is a bit-exact, self-delimiting encoding of
// (field name, physical type, nullable, nested type recursively): a
// recursive, self-describing tree, since a schema field list has no fixed
// shape a flat header could pin down.
package schema

import (
	"encoding/binary"

	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
)

// Kind is the closed set of field shapes a schema node can take: a leaf
// physical type, or one of the four composite shapes.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindList
	KindMap
	KindStruct
	KindFixedSizeList
)

// Field is one node of the schema tree. For KindLeaf, Type/Logical are
// meaningful and Children/Fields are empty. For KindList/KindFixedSizeList,
// Children holds exactly one entry (the element field); FixedWidth is only
// meaningful for KindFixedSizeList. For KindMap, Children holds exactly two
// entries (key, value). For KindStruct, Children holds one entry per
// struct field, in declaration order, and Names parallels it.
type Field struct {
	Name     string
	Kind     Kind
	Type     format.PhysicalType // meaningful iff Kind == KindLeaf
	Logical  format.LogicalType  // meaningful iff Kind == KindLeaf
	Nullable bool

	FixedWidth int // meaningful iff Kind == KindFixedSizeList

	Children []Field
	Names    []string // struct field names, parallel to Children; unused otherwise
}

// Schema is an ordered list of top-level fields, one per record-batch column.
type Schema []Field

// Encode serializes the schema block: a u32 le
// field count followed by each field's recursive encoding.
func Encode(s Schema) []byte {
	dst := binary.LittleEndian.AppendUint32(nil, uint32(len(s)))
	for _, f := range s {
		dst = encodeField(dst, f)
	}

	return dst
}

// Decode is Encode's inverse.
func Decode(in []byte) (Schema, int, error) {
	if len(in) < 4 {
		return nil, 0, errs.ErrTruncatedPage
	}

	n := int(binary.LittleEndian.Uint32(in))
	pos := 4

	s := make(Schema, n)
	for i := 0; i < n; i++ {
		f, consumed, err := decodeField(in[pos:])
		if err != nil {
			return nil, 0, err
		}

		s[i] = f
		pos += consumed
	}

	return s, pos, nil
}

func encodeField(dst []byte, f Field) []byte {
	dst = appendString(dst, f.Name)
	dst = append(dst, byte(f.Kind))
	dst = append(dst, boolByte(f.Nullable))

	switch f.Kind {
	case KindLeaf:
		dst = append(dst, byte(f.Type), byte(f.Logical))

	case KindFixedSizeList:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(f.FixedWidth))
		dst = encodeField(dst, f.Children[0])

	case KindList:
		dst = encodeField(dst, f.Children[0])

	case KindMap:
		dst = encodeField(dst, f.Children[0])
		dst = encodeField(dst, f.Children[1])

	case KindStruct:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.Children)))
		for i, c := range f.Children {
			dst = appendString(dst, f.Names[i])
			dst = encodeField(dst, c)
		}
	}

	return dst
}

func decodeField(in []byte) (Field, int, error) {
	name, pos, err := readString(in)
	if err != nil {
		return Field{}, 0, err
	}

	if len(in) < pos+2 {
		return Field{}, 0, errs.ErrTruncatedPage
	}

	kind := Kind(in[pos])
	nullable := in[pos+1] != 0
	pos += 2

	f := Field{Name: name, Kind: kind, Nullable: nullable}

	switch kind {
	case KindLeaf:
		if len(in) < pos+2 {
			return Field{}, 0, errs.ErrTruncatedPage
		}

		f.Type = format.PhysicalType(in[pos])
		f.Logical = format.LogicalType(in[pos+1])
		pos += 2

	case KindFixedSizeList:
		if len(in) < pos+4 {
			return Field{}, 0, errs.ErrTruncatedPage
		}

		f.FixedWidth = int(binary.LittleEndian.Uint32(in[pos:]))
		pos += 4

		child, n, err := decodeField(in[pos:])
		if err != nil {
			return Field{}, 0, err
		}

		f.Children = []Field{child}
		pos += n

	case KindList:
		child, n, err := decodeField(in[pos:])
		if err != nil {
			return Field{}, 0, err
		}

		f.Children = []Field{child}
		pos += n

	case KindMap:
		key, n, err := decodeField(in[pos:])
		if err != nil {
			return Field{}, 0, err
		}

		pos += n

		val, n2, err := decodeField(in[pos:])
		if err != nil {
			return Field{}, 0, err
		}

		f.Children = []Field{key, val}
		pos += n2

	case KindStruct:
		if len(in) < pos+4 {
			return Field{}, 0, errs.ErrTruncatedPage
		}

		count := int(binary.LittleEndian.Uint32(in[pos:]))
		pos += 4

		f.Children = make([]Field, count)
		f.Names = make([]string, count)

		for i := 0; i < count; i++ {
			nm, n, err := readString(in[pos:])
			if err != nil {
				return Field{}, 0, err
			}

			pos += n

			c, n2, err := decodeField(in[pos:])
			if err != nil {
				return Field{}, 0, err
			}

			f.Children[i] = c
			f.Names[i] = nm
			pos += n2
		}

	default:
		return Field{}, 0, errs.NewOutOfSpec("unknown schema field kind %d", kind)
	}

	return f, pos, nil
}

func appendString(dst []byte, s string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

func readString(in []byte) (string, int, error) {
	if len(in) < 4 {
		return "", 0, errs.ErrTruncatedPage
	}

	n := int(binary.LittleEndian.Uint32(in))
	if len(in) < 4+n {
		return "", 0, errs.ErrTruncatedPage
	}

	return string(in[4 : 4+n]), 4 + n, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
