package leaf

import (
	"encoding/binary"
	"math"

	"github.com/havenbyte/colcodec/bitpack"
	"github.com/havenbyte/colcodec/dict"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/stats"
)

// FloatOptions mirrors IntOptions for float64 leaves.
type FloatOptions struct {
	DefaultCompression    format.CodecTag
	MinRatio              float64
	ForbiddenCompressions map[format.CodecTag]bool
	Force                 format.CodecTag
}

var floatCandidates = []format.CodecTag{format.Dict, format.OneValue, format.Patas}

// EncodeFloat selects and emits the typed payload for a float64 leaf.
func EncodeFloat(vals []float64, s stats.Float, opts FloatOptions) ([]byte, error) {
	tag := selectFloatTag(vals, s, opts)

	switch tag {
	case format.Dict:
		return encodeFloatDict(vals)
	case format.OneValue:
		return encodeFloatOneValue(vals)
	case format.Patas:
		return encodePatas(vals)
	default:
		raw := float64ToBytes(vals)

		compressed, err := generalCompress(tag, raw)
		if err != nil {
			return nil, err
		}

		dst := writeHeader(nil, tag, len(compressed), len(raw))

		return append(dst, compressed...), nil
	}
}

// DecodeFloat inverts EncodeFloat.
func DecodeFloat(in []byte, valueCount int) ([]float64, error) {
	tag, compressedSize, _, payload, err := readHeader(in)
	if err != nil {
		return nil, err
	}

	switch tag {
	case format.Dict:
		return decodeFloatDict(payload, valueCount)
	case format.OneValue:
		return decodeFloatOneValue(payload, valueCount)
	case format.Patas:
		return decodePatas(payload, valueCount)
	default:
		if !tag.IsRawMode() {
			return nil, errs.ErrUnknownCodecTag
		}

		raw, err := generalDecompress(tag, payload[:compressedSize])
		if err != nil {
			return nil, err
		}

		if len(raw) != valueCount*8 {
			return nil, errs.ErrValueCountMismatch
		}

		return bytesToFloat64(raw, valueCount), nil
	}
}

func selectFloatTag(vals []float64, s stats.Float, opts FloatOptions) format.CodecTag {
	best := opts.DefaultCompression

	if opts.Force != format.None && !opts.ForbiddenCompressions[opts.Force] {
		if opts.Force != format.OneValue || s.UniqueCount == 1 {
			return opts.Force
		}
	}

	if opts.MinRatio <= 0 {
		return best
	}

	bestRatio := 1.0

	for _, tag := range floatCandidates {
		if opts.ForbiddenCompressions[tag] {
			continue
		}

		if tag == format.OneValue && s.UniqueCount != 1 {
			continue
		}

		ratio := estimateFloatRatio(tag, vals, s)
		if ratio >= opts.MinRatio && ratio > bestRatio {
			best = tag
			bestRatio = ratio
		}
	}

	return best
}

func estimateFloatRatio(tag format.CodecTag, vals []float64, s stats.Float) float64 {
	if len(vals) == 0 {
		return 1.0
	}

	switch tag {
	case format.Dict:
		if s.UniqueCount == 0 {
			return 1.0
		}

		w := bitpack.WidthFor(uint64(s.UniqueCount - 1))

		return float64(len(vals)*8) / float64(len(vals)*int(w)/8+s.UniqueCount*8+1)
	case format.OneValue:
		return float64(len(vals) * 8)
	case format.Patas:
		return 3.0 // amortized Gorilla ratio for smoothly varying series
	default:
		return 1.0
	}
}

func encodeFloatOneValue(vals []float64) ([]byte, error) {
	var v float64
	if len(vals) > 0 {
		v = vals[0]
	}

	payload := float64ToBytes([]float64{v})
	dst := writeHeader(nil, format.OneValue, len(payload), 8)

	return append(dst, payload...), nil
}

func decodeFloatOneValue(payload []byte, valueCount int) ([]float64, error) {
	if len(payload) < 8 {
		return nil, errs.ErrTruncatedPage
	}

	v := bytesToFloat64(payload[:8], 1)[0]
	out := make([]float64, valueCount)
	for i := range out {
		out[i] = v
	}

	return out, nil
}

func encodeFloatDict(vals []float64) ([]byte, error) {
	b := dict.New(func(v float64) string {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		return string(buf[:])
	})
	for _, v := range vals {
		b.Push(v)
	}

	entries := b.Entries()
	indexes := b.Indexes()

	var payload []byte
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(entries)))
	payload = append(payload, float64ToBytes(entries)...)

	idxW := bitpack.WidthFor(uint64(len(entries) - 1))
	idxU := make([]uint64, len(indexes))
	for i, idx := range indexes {
		idxU[i] = uint64(idx)
	}

	packedIdx, err := bitpack.Pack(idxU, idxW)
	if err != nil {
		return nil, err
	}

	payload = append(payload, byte(idxW))
	payload = append(payload, packedIdx...)

	dst := writeHeader(nil, format.Dict, len(payload), len(vals)*8)

	return append(dst, payload...), nil
}

func decodeFloatDict(payload []byte, valueCount int) ([]float64, error) {
	if len(payload) < 4 {
		return nil, errs.ErrTruncatedPage
	}

	uniqueCount := int(binary.LittleEndian.Uint32(payload))
	pos := 4

	if len(payload) < pos+uniqueCount*8+1 {
		return nil, errs.ErrTruncatedPage
	}

	entries := bytesToFloat64(payload[pos:pos+uniqueCount*8], uniqueCount)
	pos += uniqueCount * 8

	idxW := payload[pos]
	pos++

	idxU, err := bitpack.Unpack(payload[pos:], valueCount, idxW)
	if err != nil {
		return nil, err
	}

	out := make([]float64, valueCount)
	for i, idx := range idxU {
		if int(idx) >= len(entries) {
			return nil, errs.NewOutOfSpec("dict: index %d out of range (%d entries)", idx, len(entries))
		}

		out[i] = entries[idx]
	}

	return out, nil
}
