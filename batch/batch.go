// Package batch implements the end-to-end record-batch write/read path:
// record batch, per-column orchestration, shredding for nested fields,
// per-leaf page slicing, codec selection, byte sink, and the inverse. It
// is the top-level entry point: a thin set of functions wrapping the
// schema/array/nested/column/container layers so the common case needs no
// package-hopping.
package batch

import (
	"github.com/havenbyte/colcodec/array"
	"github.com/havenbyte/colcodec/column"
	"github.com/havenbyte/colcodec/container"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/internal/pool"
	"github.com/havenbyte/colcodec/nested"
	"github.com/havenbyte/colcodec/schema"
)

// Write encodes one record batch (fields describing each column's shape,
// columns holding the data) into a complete container byte stream.
//
// Every top-level field expands to one or more physical columns in the
// container's trailer: a KindLeaf field is one physical column; a
// composite field expands to one physical column per leaf path
// nested.Shred discovers, in depth-first traversal order, matching
// schema.Field's own recursive shape.
func Write(fields schema.Schema, columns []array.Node, opts *column.WriteOptions) ([]byte, error) {
	if len(fields) != len(columns) {
		return nil, errs.NewOutOfSpec("batch: %d fields but %d columns", len(fields), len(columns))
	}

	w := container.NewWriter()
	if err := w.WriteSchema(fields); err != nil {
		return nil, err
	}

	physicalIndex := 0

	// One pooled scratch buffer serves every column's page encoding in
	// turn: cleared between columns, returned to the pool at the end.
	scratch := pool.GetPageBuffer()
	defer pool.PutPageBuffer(scratch)

	for i, f := range fields {
		n, err := writeField(w, f, columns[i], opts, &physicalIndex, scratch)
		if err != nil {
			return nil, err
		}

		physicalIndex = n
	}

	return w.Finalize()
}

func writeField(w *container.Writer, f schema.Field, col array.Node, opts *column.WriteOptions, nextIndex *int, scratch *pool.ByteBuffer) (int, error) {
	idx := *nextIndex

	if f.Kind == schema.KindLeaf {
		l, ok := col.(*array.Leaf)
		if !ok {
			return idx, errs.NewOutOfSpec("batch: field %q is a leaf but column is %T", f.Name, col)
		}

		dst, meta, err := column.WriteLeafColumn(scratch.Bytes()[:0], l, nil, nil, nil, f.Nullable, opts, idx)
		if err != nil {
			return idx, err
		}

		scratch.B = dst

		if err := w.WriteColumnStream(idx, meta, dst); err != nil {
			return idx, err
		}

		return idx + 1, nil
	}

	paths, err := nested.Shred(col)
	if err != nil {
		return idx, err
	}

	for _, p := range paths {
		dst, meta, err := column.WriteLeafColumn(scratch.Bytes()[:0], p.Leaf, p.Present, p.Rep, p.Def, false, opts, idx)
		if err != nil {
			return idx, err
		}

		scratch.B = dst

		if err := w.WriteColumnStream(idx, meta, dst); err != nil {
			return idx, err
		}

		idx++
	}

	return idx, nil
}

// Read decodes a container byte stream back into its schema and columns,
// the inverse of Write.
func Read(data []byte) (schema.Schema, []array.Node, error) {
	r, err := container.NewReader(data)
	if err != nil {
		return nil, nil, err
	}

	fields, err := r.ReadSchema()
	if err != nil {
		return nil, nil, err
	}

	metas, err := r.ReadColumnMetas()
	if err != nil {
		return nil, nil, err
	}

	columns := make([]array.Node, len(fields))
	physicalIndex := 0

	for i, f := range fields {
		n, col, err := readField(r, f, metas, physicalIndex)
		if err != nil {
			return nil, nil, err
		}

		columns[i] = col
		physicalIndex = n
	}

	return fields, columns, nil
}

func readField(r *container.Reader, f schema.Field, metas []column.Meta, nextIndex int) (int, array.Node, error) {
	if f.Kind == schema.KindLeaf {
		if nextIndex >= len(metas) {
			return nextIndex, nil, errs.NewOutOfSpec("batch: missing column for field %q", f.Name)
		}

		data, err := r.ColumnPayload(metas[nextIndex])
		if err != nil {
			return nextIndex, nil, err
		}

		l, _, _, _, err := column.ReadLeafColumn(data, metas[nextIndex], f.Type, f.Nullable, false)
		if err != nil {
			return nextIndex, nil, err
		}

		return nextIndex + 1, l, nil
	}

	shape, leaves := toShape(f)

	paths := make([]nested.LeafPath, len(leaves))
	idx := nextIndex

	for i, lf := range leaves {
		if idx >= len(metas) {
			return idx, nil, errs.NewOutOfSpec("batch: missing column for field %q leaf %d", f.Name, i)
		}

		data, err := r.ColumnPayload(metas[idx])
		if err != nil {
			return idx, nil, err
		}

		l, rep, def, present, err := column.ReadLeafColumn(data, metas[idx], lf.Type, false, true)
		if err != nil {
			return idx, nil, err
		}

		paths[i] = nested.LeafPath{Leaf: l, Rep: rep, Def: def, Present: present}
		idx++
	}

	node, err := nested.Unshred(shape, paths)
	if err != nil {
		return idx, nil, err
	}

	return idx, node, nil
}

// toShape converts a composite schema.Field into the nested.Shape
// Unshred expects, walking in the exact depth-first order nested.Shred's
// own traversal visits leaves so leaves lines up 1:1 with the
// nested.LeafPath slice readField assembles.
func toShape(f schema.Field) (shape nested.Shape, leaves []schema.Field) {
	switch f.Kind {
	case schema.KindLeaf:
		ls := &nested.LeafShape{}
		return ls, []schema.Field{f}

	case schema.KindList:
		child, childLeaves := toShape(f.Children[0])
		return &nested.ListShape{Child: child, Nullable: f.Nullable}, childLeaves

	case schema.KindFixedSizeList:
		child, childLeaves := toShape(f.Children[0])
		return &nested.FixedSizeListShape{Width: f.FixedWidth, Child: child}, childLeaves

	case schema.KindMap:
		keyShape, keyLeaves := toShape(f.Children[0])
		valShape, valLeaves := toShape(f.Children[1])

		return &nested.MapShape{Key: keyShape, Value: valShape, Nullable: f.Nullable},
			append(append([]schema.Field(nil), keyLeaves...), valLeaves...)

	case schema.KindStruct:
		fields := make([]nested.Shape, len(f.Children))
		names := append([]string(nil), f.Names...)

		for i, c := range f.Children {
			childShape, childLeaves := toShape(c)
			fields[i] = childShape
			leaves = append(leaves, childLeaves...)
		}

		return &nested.StructShape{Names: names, Fields: fields}, leaves

	default:
		return nil, nil
	}
}

// LeafField builds a KindLeaf schema.Field, the common case for a
// top-level primitive column.
func LeafField(name string, t format.PhysicalType, nullable bool) schema.Field {
	return schema.Field{Name: name, Kind: schema.KindLeaf, Type: t, Nullable: nullable}
}
