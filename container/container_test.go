package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/column"
	"github.com/havenbyte/colcodec/container"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/schema"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	s := schema.Schema{
		{Name: "a", Kind: schema.KindLeaf, Type: format.Int32},
		{Name: "b", Kind: schema.KindLeaf, Type: format.Bytes32, Logical: format.LogicalUTF8, Nullable: true},
	}

	w := container.NewWriter()
	require.NoError(t, w.WriteSchema(s))

	meta0 := column.Meta{Pages: []column.PageMeta{{ByteLength: 4, ValueCount: 2}}}
	require.NoError(t, w.WriteColumnStream(0, meta0, []byte{1, 2, 3, 4}))

	meta1 := column.Meta{Pages: []column.PageMeta{{ByteLength: 3, ValueCount: 1}}}
	require.NoError(t, w.WriteColumnStream(1, meta1, []byte{5, 6, 7}))

	out, err := w.Finalize()
	require.NoError(t, err)

	r, err := container.NewReader(out)
	require.NoError(t, err)

	gotSchema, err := r.ReadSchema()
	require.NoError(t, err)
	require.Equal(t, s, gotSchema)

	metas, err := r.ReadColumnMetas()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	require.Equal(t, int64(0), metas[0].FileOffset)
	require.Equal(t, int64(4), metas[0].TotalLength())
	require.Equal(t, int64(4), metas[1].FileOffset)
	require.Equal(t, int64(3), metas[1].TotalLength())

	p0, err := r.ColumnPayload(metas[0])
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, p0)

	p1, err := r.ColumnPayload(metas[1])
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7}, p1)
}

func TestWriteColumnStreamOutOfOrder(t *testing.T) {
	w := container.NewWriter()
	require.NoError(t, w.WriteSchema(schema.Schema{{Name: "a", Kind: schema.KindLeaf, Type: format.Int32}}))

	err := w.WriteColumnStream(1, column.Meta{}, nil)
	require.Error(t, err)
}

func TestFinalizeWithoutSchema(t *testing.T) {
	w := container.NewWriter()
	_, err := w.Finalize()
	require.Error(t, err)
}

func TestNewReaderTruncated(t *testing.T) {
	_, err := container.NewReader([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestWriterSpentAfterFinalize(t *testing.T) {
	w := container.NewWriter()
	require.NoError(t, w.WriteSchema(schema.Schema{{Name: "a", Kind: schema.KindLeaf, Type: format.Int32}}))

	_, err := w.Finalize()
	require.NoError(t, err)

	require.Error(t, w.WriteColumnStream(0, column.Meta{}, nil))

	_, err = w.Finalize()
	require.Error(t, err)
}
