package column_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/array"
	"github.com/havenbyte/colcodec/column"
	"github.com/havenbyte/colcodec/format"
)

func TestMetaTotalsAndSlice(t *testing.T) {
	m := column.Meta{
		FileOffset: 100,
		Pages: []column.PageMeta{
			{ByteLength: 10, ValueCount: 4},
			{ByteLength: 20, ValueCount: 8},
			{ByteLength: 30, ValueCount: 8},
		},
	}

	require.Equal(t, int64(60), m.TotalLength())
	require.Equal(t, int64(20), m.TotalValueCount())

	s := m.Slice(1, 3)
	require.Equal(t, int64(110), s.FileOffset)
	require.Equal(t, m.Pages[1:], s.Pages)

	skip := m.SkipOnePage()
	require.Equal(t, s, skip)
}

func TestNewWriteOptionsDefaults(t *testing.T) {
	w, err := column.NewWriteOptions()
	require.NoError(t, err)
	require.Equal(t, format.None, w.DefaultCompression)
	require.Equal(t, column.DefaultMaxPageSize, w.MaxPageSize)
	require.Zero(t, w.MinRatio)
}

func TestWriteOptionsOverrides(t *testing.T) {
	w, err := column.NewWriteOptions(
		column.WithDefaultCompression(format.Zstd),
		column.WithMaxPageSize(256),
		column.WithMinRatio(1.5),
		column.WithForbiddenCompressions(format.Dict, format.RLE),
		column.WithColumnCompression(2, format.LZ4),
	)
	require.NoError(t, err)

	require.Equal(t, format.Zstd, w.DefaultCompression)
	require.Equal(t, 256, w.MaxPageSize)
	require.Equal(t, 1.5, w.MinRatio)
	require.True(t, w.ForbiddenCompressions[format.Dict])
	require.True(t, w.ForbiddenCompressions[format.RLE])
	require.Equal(t, format.LZ4, w.ColumnCompressions[2])
}

func TestForcedCodecTagReadsEnv(t *testing.T) {
	for _, name := range []string{"FORCE_RLE", "FORCE_DICT", "FORCE_ONEVALUE", "FORCE_FREQ", "FORCE_BITPACK", "FORCE_DELTA", "FORCE_DELTABITPACK", "FORCE_PATAS"} {
		require.NoError(t, os.Unsetenv(name))
	}

	require.Equal(t, format.None, column.ForcedCodecTag())

	require.NoError(t, os.Setenv("FORCE_DICT", "1"))
	t.Cleanup(func() { os.Unsetenv("FORCE_DICT") })

	require.Equal(t, format.Dict, column.ForcedCodecTag())
}

func TestForcedCodecTagIgnoresFalsyValues(t *testing.T) {
	require.NoError(t, os.Setenv("FORCE_RLE", "false"))
	t.Cleanup(func() { os.Unsetenv("FORCE_RLE") })

	require.Equal(t, format.None, column.ForcedCodecTag())
}

func TestWriteLeafColumnMultiplePages(t *testing.T) {
	n := 50
	vals := make([]int64, n)
	validity := make([]bool, n)
	for i := range vals {
		vals[i] = int64(i * 3)
		validity[i] = i%7 != 0
	}

	l := &array.Leaf{Type: format.Int32, Int64s: vals, Validity: validity}

	w, err := column.NewWriteOptions(column.WithMaxPageSize(8))
	require.NoError(t, err)

	dst, meta, err := column.WriteLeafColumn(nil, l, nil, nil, nil, true, w, 0)
	require.NoError(t, err)
	require.Equal(t, 7, len(meta.Pages)) // ceil(50/8)
	require.Equal(t, int64(len(dst)), meta.TotalLength())

	got, rep, def, present, err := column.ReadLeafColumn(dst, meta, format.Int32, true, false)
	require.NoError(t, err)
	require.Nil(t, rep)
	require.Nil(t, def)
	require.Nil(t, present)
	require.Equal(t, vals, got.Int64s)
	require.Equal(t, validity, got.Validity)
}

func TestWriteLeafColumnSinglePageNonNullable(t *testing.T) {
	vals := []int64{5, 5, 5, 5, 5}
	l := &array.Leaf{Type: format.Int32, Int64s: vals}

	w, err := column.NewWriteOptions()
	require.NoError(t, err)

	dst, meta, err := column.WriteLeafColumn(nil, l, nil, nil, nil, false, w, 0)
	require.NoError(t, err)
	require.Len(t, meta.Pages, 1)
	require.Equal(t, int64(0), meta.FileOffset)

	got, _, _, _, err := column.ReadLeafColumn(dst, meta, format.Int32, false, false)
	require.NoError(t, err)
	require.Equal(t, vals, got.Int64s)
	require.Nil(t, got.Validity)
}
