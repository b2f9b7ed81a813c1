// Package page implements PageWriter/PageReader: the
// framing around every leaf page's codec payload. A page begins with a
// validity stream (for a non-nested leaf) or a nested-levels block
// followed by the leaf's own validity stream (for a leaf produced by
// shredding), followed by the value payload leaf.Encode* produces.
package page

import (
	"encoding/binary"

	"github.com/havenbyte/colcodec/errs"
)

// Levels carries the repetition/definition level streams NestedShredder
// attaches to a leaf produced from a composite column, plus
// the structural-presence mask (nested.LeafPath.Present) a reader needs to
// tell "this row reached the leaf's position at all" apart from "this row
// was collapsed into a single placeholder by an absent repeated ancestor"
// (nested.Unshred reads this to know when to stop consuming a list's
// children). The levels block carries (value_count, rep_bytes, def_bytes,
// rep, def) plus a third, optional bit-packed presence stream using the
// same nil-means-all-true convention WriteValidity already uses; without
// it, nested round-trips through the wire (as opposed to in-memory
// Shred/Unshred) cannot be reconstructed (see DESIGN.md).
type Levels struct {
	ValueCount int
	Rep        []byte
	Def        []byte
	Present    []bool // nil => every entry present
}

// WriteValidity appends a validity-stream prefix (a leaf's own validity,
// and, through WriteLevels, the levels block's presence stream): a u32
// le length (0 means
// "all valid, stream omitted") followed by a bit-packed validity bitmap.
func WriteValidity(dst []byte, validity []bool) []byte {
	if validity == nil {
		return binary.LittleEndian.AppendUint32(dst, 0)
	}

	allValid := true
	for _, v := range validity {
		if !v {
			allValid = false
			break
		}
	}

	if allValid {
		return binary.LittleEndian.AppendUint32(dst, 0)
	}

	bitmap := packValidity(validity)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(bitmap)))
	dst = append(dst, bitmap...)

	return dst
}

// ReadValidity is WriteValidity's inverse. It returns the validity mask
// (nil meaning all-valid) and the bytes consumed.
func ReadValidity(in []byte, valueCount int) (validity []bool, consumed int, err error) {
	if len(in) < 4 {
		return nil, 0, errs.ErrTruncatedPage
	}

	n := int(binary.LittleEndian.Uint32(in))
	if n == 0 {
		return nil, 4, nil
	}

	if len(in) < 4+n {
		return nil, 0, errs.ErrTruncatedPage
	}

	return unpackValidity(in[4:4+n], valueCount), 4 + n, nil
}

// WriteLevels appends the nested-levels block
// (value_count: u32 le, rep_bytes: u32 le, def_bytes: u32 le, rep, def),
// extended with a trailing (present_bytes: u32 le, present bitmap) using
// WriteValidity's nil-means-all-true convention (see Levels' doc comment).
func WriteLevels(dst []byte, lv Levels) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(lv.ValueCount))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(lv.Rep)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(lv.Def)))
	dst = append(dst, lv.Rep...)
	dst = append(dst, lv.Def...)
	dst = WriteValidity(dst, lv.Present)

	return dst
}

// ReadLevels is WriteLevels's inverse.
func ReadLevels(in []byte) (lv Levels, consumed int, err error) {
	if len(in) < 12 {
		return Levels{}, 0, errs.ErrTruncatedPage
	}

	valueCount := int(binary.LittleEndian.Uint32(in))
	repLen := int(binary.LittleEndian.Uint32(in[4:]))
	defLen := int(binary.LittleEndian.Uint32(in[8:]))

	pos := 12 + repLen + defLen
	if len(in) < pos {
		return Levels{}, 0, errs.ErrTruncatedPage
	}

	rep := append([]byte(nil), in[12:12+repLen]...)
	def := append([]byte(nil), in[12+repLen:pos]...)

	present, n, err := ReadValidity(in[pos:], repLen)
	if err != nil {
		return Levels{}, 0, err
	}

	pos += n

	lv = Levels{
		ValueCount: valueCount,
		Rep:        rep,
		Def:        def,
		Present:    present,
	}

	return lv, pos, nil
}

func packValidity(validity []bool) []byte {
	out := make([]byte, (len(validity)+7)/8)
	for i, v := range validity {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}

	return out
}

func unpackValidity(buf []byte, count int) []bool {
	out := make([]bool, count)
	for i := range out {
		out[i] = buf[i/8]&(1<<uint(i%8)) != 0
	}

	return out
}

// PageCount computes the number of pages a column of valueCount values
// splits into at maxPageSize values per page: ceil(n/p).
func PageCount(valueCount, maxPageSize int) int {
	if valueCount == 0 {
		return 0
	}

	return (valueCount + maxPageSize - 1) / maxPageSize
}
