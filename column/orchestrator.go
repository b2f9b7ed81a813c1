package column

import (
	"github.com/havenbyte/colcodec/array"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/page"
)

// WriteLeafColumn implements the per-leaf slice of ColumnOrchestrator
// for exactly one leaf path: it slices l (and,
// for a nested leaf, the parallel rep/def/present level streams) into
// pages of at most w.MaxPageSize, drives EncodePage per page, and
// returns the concatenated page bytes plus the resulting Meta.
//
// For a non-nested leaf, present/rep/def are nil and nullable selects
// whether a validity stream is written. For a leaf produced by
// NestedShredder, present/rep/def are the full-column level streams
// (nested.LeafPath's Present/Rep/Def) and pages are sliced along the rep/
// def axis (row granularity) rather than l's value axis directly, since a
// page boundary may fall inside a run of structurally-absent rows that
// contribute no leaf value at all.
func WriteLeafColumn(dst []byte, l *array.Leaf, present []bool, rep, def []byte, nullable bool, w *WriteOptions, columnIndex int) ([]byte, Meta, error) {
	meta := Meta{FileOffset: int64(len(dst))}

	if present == nil {
		n := l.Len()
		pages := page.PageCount(n, w.MaxPageSize)

		for i := 0; i < pages; i++ {
			start := i * w.MaxPageSize
			end := min(start+w.MaxPageSize, n)

			slice := l.Slice(start, end)

			before := len(dst)

			var err error
			dst, err = EncodePage(dst, slice, nil, nullable, w, columnIndex)
			if err != nil {
				return nil, Meta{}, err
			}

			meta.Pages = append(meta.Pages, PageMeta{
				ByteLength: int64(len(dst) - before),
				ValueCount: int64(end - start),
			})
		}

		return dst, meta, nil
	}

	rows := len(present)
	pages := page.PageCount(rows, w.MaxPageSize)
	leafPos := 0

	for i := 0; i < pages; i++ {
		start := i * w.MaxPageSize
		end := min(start+w.MaxPageSize, rows)

		leafCount := countTrue(present[start:end])
		slice := l.Slice(leafPos, leafPos+leafCount)
		leafPos += leafCount

		lv := page.Levels{
			ValueCount: leafCount,
			Rep:        rep[start:end],
			Def:        def[start:end],
			Present:    presentSlice(present[start:end]),
		}

		before := len(dst)

		var err error
		dst, err = EncodePage(dst, slice, &lv, false, w, columnIndex)
		if err != nil {
			return nil, Meta{}, err
		}

		meta.Pages = append(meta.Pages, PageMeta{
			ByteLength: int64(len(dst) - before),
			ValueCount: int64(leafCount),
		})
	}

	return dst, meta, nil
}

// ReadLeafColumn is WriteLeafColumn's inverse: it walks meta's pages in
// order over data (the column's byte range from container.Reader), decodes
// each with DecodePage, and concatenates the per-page results into one
// leaf (plus, for a nested leaf, the full-column rep/def/present streams
// nested.Unshred expects from a nested.LeafPath).
func ReadLeafColumn(data []byte, meta Meta, physType format.PhysicalType, nullable, nested bool) (l *array.Leaf, rep, def []byte, present []bool, err error) {
	acc := &array.Leaf{Type: physType}
	hasValidity := false

	pos := 0

	for _, pm := range meta.Pages {
		if pos+int(pm.ByteLength) > len(data) {
			return nil, nil, nil, nil, errs.ErrTruncatedPage
		}

		slice := data[pos : pos+int(pm.ByteLength)]
		pos += int(pm.ByteLength)

		pl, lv, _, err := DecodePage(slice, physType, int(pm.ValueCount), nullable, nested)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		if pl.Validity != nil {
			hasValidity = true
		}

		appendLeaf(acc, pl)

		if nested {
			rep = append(rep, lv.Rep...)
			def = append(def, lv.Def...)
			present = append(present, expandPresent(lv.Present, len(lv.Rep))...)
		}
	}

	if !hasValidity {
		acc.Validity = nil
	}

	return acc, rep, def, present, nil
}

// expandPresent turns page.Levels' nil-means-all-true Present encoding
// into an explicit slice of length n, so pages with and without a mixed
// present mask concatenate uniformly across a column's full rep/def/present
// streams.
func expandPresent(present []bool, n int) []bool {
	if present != nil {
		return present
	}

	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}

	return out
}

// appendLeaf concatenates src's values (and, if present on any page,
// validity) onto dst in place, by physical type.
func appendLeaf(dst, src *array.Leaf) {
	switch {
	case dst.Type == format.Bool:
		dst.Bools = append(dst.Bools, src.Bools...)
	case dst.Type == format.Float32:
		dst.Float32 = append(dst.Float32, src.Float32...)
	case dst.Type.IsFloat():
		dst.Floats = append(dst.Floats, src.Floats...)
	case dst.Type.IsBytes():
		dst.Bytes = append(dst.Bytes, src.Bytes...)
	case dst.Type.IsWideInteger():
		dst.Wide = append(dst.Wide, src.Wide...)
	case dst.Type.IsInteger():
		dst.Int64s = append(dst.Int64s, src.Int64s...)
	}

	if src.Validity != nil {
		dst.Validity = append(dst.Validity, src.Validity...)
	} else {
		for i := 0; i < src.Len(); i++ {
			dst.Validity = append(dst.Validity, true)
		}
	}
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}

	return n
}

// presentSlice copies bs for wire storage unless every entry is true, in
// which case it returns nil so page.WriteLevels uses the compact
// all-present encoding (mirrors page.WriteValidity's all-valid shortcut).
func presentSlice(bs []bool) []bool {
	if countTrue(bs) == len(bs) {
		return nil
	}

	return append([]bool(nil), bs...)
}
