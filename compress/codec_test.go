package compress_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/compress"
	"github.com/havenbyte/colcodec/format"
)

func allCodecs(t *testing.T) map[format.CodecTag]compress.Codec {
	t.Helper()

	out := map[format.CodecTag]compress.Codec{}
	for _, tag := range compress.AllGeneralTags() {
		c, err := compress.GetCodec(tag)
		require.NoError(t, err)
		out[tag] = c
	}

	return out
}

func TestRoundTripAllCodecs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	inputs := [][]byte{
		nil,
		{},
		[]byte("a"),
		bytes.Repeat([]byte("ab"), 1000),
		make([]byte, 4096),
	}
	rng.Read(inputs[4])

	for tag, codec := range allCodecs(t) {
		for _, in := range inputs {
			compressed, err := codec.Compress(in)
			require.NoError(t, err, "tag=%s", tag)

			got, err := codec.Decompress(compressed)
			require.NoError(t, err, "tag=%s", tag)

			if len(in) == 0 {
				require.Empty(t, got, "tag=%s", tag)
			} else {
				require.Equal(t, in, got, "tag=%s", tag)
			}
		}
	}
}

func TestCreateCodecRejectsUnknownTag(t *testing.T) {
	_, err := compress.CreateCodec(format.RLE, "test")
	require.Error(t, err)
}

func TestGetCodecRejectsUnknownTag(t *testing.T) {
	_, err := compress.GetCodec(format.CodecTag(99))
	require.Error(t, err)
}

func TestLZ4DecompressTo(t *testing.T) {
	codec := compress.NewLZ4Codec()
	in := bytes.Repeat([]byte("compress me please"), 500)

	compressed, err := codec.Compress(in)
	require.NoError(t, err)

	got, err := codec.DecompressTo(compressed, len(in))
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestStatsRatio(t *testing.T) {
	s := compress.Stats{OriginalSize: 100, CompressedSize: 40}
	require.InDelta(t, 0.4, s.Ratio(), 1e-9)

	zero := compress.Stats{}
	require.Equal(t, 1.0, zero.Ratio())
}
