// Package format defines the closed wire-level enumerations shared by
// every layer of the codec: physical types, logical wrappers, and codec
// tags. Thin enum-with-String wrappers, no behavior.
package format

import "fmt"

// PhysicalType is the closed set of physical layouts a leaf column can have.
type PhysicalType uint8

const (
	Null PhysicalType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Int128
	Int256
	Uint8
	Uint16
	Uint32
	Uint64
	Uint128
	Uint256
	Float32
	Float64
	Bytes32 // byte-slice with 32-bit offsets
	Bytes64 // byte-slice with 64-bit offsets
)

func (t PhysicalType) String() string {
	switch t {
	case Null:
		return "Null"
	case Bool:
		return "Bool"
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Int128:
		return "Int128"
	case Int256:
		return "Int256"
	case Uint8:
		return "Uint8"
	case Uint16:
		return "Uint16"
	case Uint32:
		return "Uint32"
	case Uint64:
		return "Uint64"
	case Uint128:
		return "Uint128"
	case Uint256:
		return "Uint256"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case Bytes32:
		return "Bytes32"
	case Bytes64:
		return "Bytes64"
	default:
		return fmt.Sprintf("PhysicalType(%d)", uint8(t))
	}
}

// IsInteger reports whether the physical type is one of the signed or
// unsigned integer widths.
func (t PhysicalType) IsInteger() bool {
	return t >= Int8 && t <= Uint256
}

// IsWideInteger reports whether the physical type is a 128- or 256-bit
// integer, for which Delta and DeltaBitPack selection is refused
//.
func (t PhysicalType) IsWideInteger() bool {
	return t == Int128 || t == Int256 || t == Uint128 || t == Uint256
}

// IsFloat reports whether the physical type is float32 or float64.
func (t PhysicalType) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsBytes reports whether the physical type is a byte-slice variant.
func (t PhysicalType) IsBytes() bool {
	return t == Bytes32 || t == Bytes64
}

// LogicalType names a logical wrapper over a PhysicalType that does not
// change wire format: utf-8 variants and decimals map onto a physical
// type unchanged.
type LogicalType uint8

const (
	LogicalNone LogicalType = iota
	LogicalUTF8
	LogicalDecimal
)

func (t LogicalType) String() string {
	switch t {
	case LogicalNone:
		return "None"
	case LogicalUTF8:
		return "UTF8"
	case LogicalDecimal:
		return "Decimal"
	default:
		return fmt.Sprintf("LogicalType(%d)", uint8(t))
	}
}

// CodecTag is the one-byte closed enumeration of every codec the wire
// format can name, raw-mode (0-3) and typed (>=10).
type CodecTag uint8

const (
	None         CodecTag = 0
	LZ4          CodecTag = 1
	Zstd         CodecTag = 2
	Snappy       CodecTag = 3
	RLE          CodecTag = 10
	Dict         CodecTag = 11
	OneValue     CodecTag = 12
	Freq         CodecTag = 13
	BitPack      CodecTag = 14
	Delta        CodecTag = 15
	DeltaBitPack CodecTag = 16
	Patas        CodecTag = 17
)

func (c CodecTag) String() string {
	switch c {
	case None:
		return "None"
	case LZ4:
		return "LZ4"
	case Zstd:
		return "Zstd"
	case Snappy:
		return "Snappy"
	case RLE:
		return "RLE"
	case Dict:
		return "Dict"
	case OneValue:
		return "OneValue"
	case Freq:
		return "Freq"
	case BitPack:
		return "BitPack"
	case Delta:
		return "Delta"
	case DeltaBitPack:
		return "DeltaBitPack"
	case Patas:
		return "Patas"
	default:
		return fmt.Sprintf("CodecTag(%d)", uint8(c))
	}
}

// IsRawMode reports whether the tag is a general byte-level codec that
// treats the value buffer as opaque (tags 0-3).
func (c CodecTag) IsRawMode() bool {
	return c <= Snappy
}

// IsTyped reports whether the tag is a typed codec that owns the
// array's semantic shape (tags >= 10).
func (c CodecTag) IsTyped() bool {
	return c >= RLE
}

// IsValidGeneralTag reports whether c is one of the four general codec
// tags (None, LZ4, Zstd, Snappy); it exists so callers that only deal
// with general compression can validate a tag without importing the
// typed-codec dispatch tables.
func IsValidGeneralTag(c CodecTag) bool {
	switch c {
	case None, LZ4, Zstd, Snappy:
		return true
	default:
		return false
	}
}
