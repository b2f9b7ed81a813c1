package leaf_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/leaf"
	"github.com/havenbyte/colcodec/stats"
)

func noMinRatioIntOpts() leaf.IntOptions {
	return leaf.IntOptions{DefaultCompression: format.None}
}

func TestEncodeDecodeIntGeneral(t *testing.T) {
	vals := []int64{1, 2, 3, 4, 5, 100, -7}
	s := stats.ProbeInt(vals, nil)

	encoded, err := leaf.EncodeInt(vals, format.Int64, s, noMinRatioIntOpts())
	require.NoError(t, err)

	got, err := leaf.DecodeInt(encoded, len(vals), format.Int64)
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeIntEachTypedCodec(t *testing.T) {
	cases := map[string][]int64{
		"rle":      {5, 5, 5, 5, 9, 9, 1, 1, 1},
		"sorted":   {1, 2, 3, 5, 8, 13, 21},
		"single":   {42, 42, 42, 42},
		"lowcard":  {1, 2, 1, 3, 2, 1, 3, 3, 2},
		"random":   nil,
	}

	rng := rand.New(rand.NewSource(1))
	vals := make([]int64, 200)
	for i := range vals {
		vals[i] = rng.Int63n(1000)
	}
	cases["random"] = vals

	opts := leaf.IntOptions{DefaultCompression: format.None, MinRatio: 1.01}

	for name, vals := range cases {
		s := stats.ProbeInt(vals, nil)

		encoded, err := leaf.EncodeInt(vals, format.Int64, s, opts)
		require.NoError(t, err, name)

		got, err := leaf.DecodeInt(encoded, len(vals), format.Int64)
		require.NoError(t, err, name)
		require.Equal(t, vals, got, name)
	}
}

func TestEncodeDecodeIntWithForbidden(t *testing.T) {
	vals := []int64{1, 2, 3, 5, 8, 13, 21}
	s := stats.ProbeInt(vals, nil)

	opts := leaf.IntOptions{
		DefaultCompression:    format.None,
		MinRatio:              1.01,
		ForbiddenCompressions: map[format.CodecTag]bool{format.Delta: true},
	}

	encoded, err := leaf.EncodeInt(vals, format.Int64, s, opts)
	require.NoError(t, err)

	got, err := leaf.DecodeInt(encoded, len(vals), format.Int64)
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeIntDeltaAndDeltaBitPack(t *testing.T) {
	vals := make([]int64, 500)
	for i := range vals {
		vals[i] = int64(i * 3)
	}

	s := stats.ProbeInt(vals, nil)
	require.True(t, s.IsSorted)

	for _, tag := range []format.CodecTag{format.Delta, format.DeltaBitPack} {
		opts := leaf.IntOptions{DefaultCompression: format.None, Force: tag}

		encoded, err := leaf.EncodeInt(vals, format.Int64, s, opts)
		require.NoError(t, err, tag)

		got, err := leaf.DecodeInt(encoded, len(vals), format.Int64)
		require.NoError(t, err, tag)
		require.Equal(t, vals, got, tag)
	}
}

func TestEncodeDecodeFloatPatas(t *testing.T) {
	vals := []float64{1.5, 1.5, 1.50001, 2.0, -3.25, 100.125, 0.0, -0.0}
	s := stats.ProbeFloat(vals, nil)

	opts := leaf.FloatOptions{DefaultCompression: format.None, MinRatio: 1.01}

	encoded, err := leaf.EncodeFloat(vals, s, opts)
	require.NoError(t, err)

	got, err := leaf.DecodeFloat(encoded, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeFloatGeneral(t *testing.T) {
	vals := []float64{1.1, 2.2, 3.3}
	s := stats.ProbeFloat(vals, nil)

	encoded, err := leaf.EncodeFloat(vals, s, leaf.FloatOptions{DefaultCompression: format.Zstd})
	require.NoError(t, err)

	got, err := leaf.DecodeFloat(encoded, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeBool(t *testing.T) {
	vals := []bool{true, true, false, false, false, true}
	s := stats.ProbeBool(vals, nil)

	opts := leaf.BoolOptions{DefaultCompression: format.None, MinRatio: 1.01}

	encoded, err := leaf.EncodeBool(vals, s, opts)
	require.NoError(t, err)

	got, err := leaf.DecodeBool(encoded, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeBytesDict(t *testing.T) {
	vals := [][]byte{[]byte("alpha"), []byte("beta"), []byte("alpha"), []byte("gamma"), []byte("beta")}
	s := stats.ProbeBytes(vals, nil)

	opts := leaf.BytesOptions{DefaultCompression: format.None, MinRatio: 1.01}

	encoded, err := leaf.EncodeBytes(vals, s, opts)
	require.NoError(t, err)

	got, err := leaf.DecodeBytes(encoded, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeBytesFreq(t *testing.T) {
	vals := make([][]byte, 0, 50)
	for i := 0; i < 45; i++ {
		vals = append(vals, []byte("common"))
	}
	vals = append(vals, []byte("rare1"), []byte("rare2"), []byte("rare3"))

	s := stats.ProbeBytes(vals, nil)

	opts := leaf.BytesOptions{
		DefaultCompression:    format.None,
		MinRatio:              1.01,
		ForbiddenCompressions: map[format.CodecTag]bool{format.Dict: true, format.OneValue: true},
	}

	encoded, err := leaf.EncodeBytes(vals, s, opts)
	require.NoError(t, err)

	got, err := leaf.DecodeBytes(encoded, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func wide128(lo byte) []byte {
	v := make([]byte, 16)
	v[0] = lo

	return v
}

func TestEncodeDecodeWideEachCodec(t *testing.T) {
	cases := map[string][][]byte{
		"rle":     {wide128(5), wide128(5), wide128(5), wide128(9), wide128(9), wide128(1)},
		"lowcard": {wide128(1), wide128(2), wide128(1), wide128(3), wide128(2), wide128(1)},
		"single":  {wide128(42), wide128(42), wide128(42), wide128(42)},
	}

	opts := leaf.WideOptions{DefaultCompression: format.None, MinRatio: 1.01}

	for name, vals := range cases {
		s := stats.ProbeBytes(vals, nil)

		encoded, err := leaf.EncodeWide(vals, 16, s, opts)
		require.NoError(t, err, name)

		got, err := leaf.DecodeWide(encoded, len(vals), 16)
		require.NoError(t, err, name)
		require.Equal(t, vals, got, name)
	}
}

func TestEncodeDecodeWideGeneral(t *testing.T) {
	vals := make([][]byte, 10)
	for i := range vals {
		v := make([]byte, 32)
		v[0] = byte(i)
		v[31] = byte(255 - i)
		vals[i] = v
	}

	s := stats.ProbeBytes(vals, nil)

	encoded, err := leaf.EncodeWide(vals, 32, s, leaf.WideOptions{DefaultCompression: format.Zstd})
	require.NoError(t, err)

	got, err := leaf.DecodeWide(encoded, len(vals), 32)
	require.NoError(t, err)
	require.Equal(t, vals, got)
}

func TestEncodeDecodeBytesGeneral(t *testing.T) {
	vals := [][]byte{[]byte("foo"), []byte("bar"), []byte("bazbaz")}
	s := stats.ProbeBytes(vals, nil)

	encoded, err := leaf.EncodeBytes(vals, s, leaf.BytesOptions{DefaultCompression: format.LZ4})
	require.NoError(t, err)

	got, err := leaf.DecodeBytes(encoded, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, got)
}
