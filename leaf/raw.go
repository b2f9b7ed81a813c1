package leaf

import (
	"encoding/binary"
	"math"

	"github.com/havenbyte/colcodec/compress"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
)

// int64ToBytes serializes vals as fixed-width little-endian integers
// according to width (1, 2, 4 or 8 bytes), the raw buffer every general
// codec (LZ4/Zstd/Snappy/None) and RLE's run values operate on.
func int64ToBytes(vals []int64, width int) []byte {
	out := make([]byte, len(vals)*width)

	for i, v := range vals {
		off := i * width

		switch width {
		case 1:
			out[off] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(out[off:], uint16(v))
		case 4:
			binary.LittleEndian.PutUint32(out[off:], uint32(v))
		case 8:
			binary.LittleEndian.PutUint64(out[off:], uint64(v))
		}
	}

	return out
}

func bytesToInt64(buf []byte, width, count int) []int64 {
	out := make([]int64, count)

	for i := range out {
		off := i * width

		switch width {
		case 1:
			out[i] = int64(int8(buf[off]))
		case 2:
			out[i] = int64(int16(binary.LittleEndian.Uint16(buf[off:])))
		case 4:
			out[i] = int64(int32(binary.LittleEndian.Uint32(buf[off:])))
		case 8:
			out[i] = int64(binary.LittleEndian.Uint64(buf[off:]))
		}
	}

	return out
}

func widthForType(t format.PhysicalType) int {
	switch t {
	case format.Int8, format.Uint8:
		return 1
	case format.Int16, format.Uint16:
		return 2
	case format.Int32, format.Uint32:
		return 4
	default:
		return 8
	}
}

func float64ToBytes(vals []float64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}

	return out
}

func bytesToFloat64(buf []byte, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}

	return out
}

// zigzagEncode maps a signed integer onto an unsigned one so that small
// magnitudes (positive or negative) bit-pack to few bits.
func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// generalCompress runs tag's general codec over buf, returning the
// compressed bytes. It is the fallback every typed codec set includes
// (format.None/LZ4/Zstd/Snappy); the typed codecs' own payloads do not
// pass through it.
func generalCompress(tag format.CodecTag, buf []byte) ([]byte, error) {
	codec, err := compress.GetCodec(tag)
	if err != nil {
		return nil, err
	}

	out, err := codec.Compress(buf)
	if err != nil {
		return nil, errs.NewCodecFailure(tag.String(), err)
	}

	return out, nil
}

func generalDecompress(tag format.CodecTag, buf []byte) ([]byte, error) {
	codec, err := compress.GetCodec(tag)
	if err != nil {
		return nil, err
	}

	out, err := codec.Decompress(buf)
	if err != nil {
		return nil, errs.NewCodecFailure(tag.String(), err)
	}

	return out, nil
}
