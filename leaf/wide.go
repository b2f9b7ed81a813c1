package leaf

import (
	"bytes"
	"encoding/binary"

	"github.com/havenbyte/colcodec/bitpack"
	"github.com/havenbyte/colcodec/dict"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/stats"
)

// WideOptions mirrors IntOptions for 128- and 256-bit integer leaves.
type WideOptions struct {
	DefaultCompression    format.CodecTag
	MinRatio              float64
	ForbiddenCompressions map[format.CodecTag]bool
	Force                 format.CodecTag
}

// wideCandidates is the integer candidate set restricted to codecs that
// are well defined past 64 bits: BitPack tops out at width 64 and Delta
// selection on wide integers is refused, so
// only RLE, Dict and OneValue remain.
var wideCandidates = []format.CodecTag{format.RLE, format.Dict, format.OneValue}

// EncodeWide selects and emits the typed payload for a wide-integer leaf.
// vals holds one little-endian fixed-width value per position; width is
// the value byte width (16 for 128-bit, 32 for 256-bit types).
func EncodeWide(vals [][]byte, width int, s stats.Bytes, opts WideOptions) ([]byte, error) {
	tag := selectWideTag(vals, width, s, opts)

	switch tag {
	case format.RLE:
		return encodeWideRLE(vals, width)
	case format.Dict:
		return encodeWideDict(vals, width)
	case format.OneValue:
		return encodeWideOneValue(vals, width)
	default:
		return encodeWideGeneral(vals, width, tag)
	}
}

// DecodeWide inverts EncodeWide.
func DecodeWide(in []byte, valueCount, width int) ([][]byte, error) {
	tag, compressedSize, _, payload, err := readHeader(in)
	if err != nil {
		return nil, err
	}

	switch tag {
	case format.RLE:
		return decodeWideRLE(payload, valueCount, width)
	case format.Dict:
		return decodeWideDict(payload, valueCount, width)
	case format.OneValue:
		return decodeWideOneValue(payload, valueCount, width)
	default:
		if !tag.IsRawMode() {
			return nil, errs.ErrUnknownCodecTag
		}

		raw, err := generalDecompress(tag, payload[:compressedSize])
		if err != nil {
			return nil, err
		}

		if len(raw) != valueCount*width {
			return nil, errs.ErrValueCountMismatch
		}

		out := make([][]byte, valueCount)
		for i := range out {
			out[i] = raw[i*width : (i+1)*width]
		}

		return out, nil
	}
}

func selectWideTag(vals [][]byte, width int, s stats.Bytes, opts WideOptions) format.CodecTag {
	best := opts.DefaultCompression

	if opts.Force != format.None && !opts.ForbiddenCompressions[opts.Force] && forceEligibleWide(opts.Force, s) {
		return opts.Force
	}

	if opts.MinRatio <= 0 {
		return best
	}

	bestRatio := 1.0

	for _, tag := range wideCandidates {
		if opts.ForbiddenCompressions[tag] {
			continue
		}

		if tag == format.OneValue && s.UniqueCount != 1 {
			continue
		}

		ratio := estimateWideRatio(tag, vals, width, s)
		if ratio >= opts.MinRatio && ratio > bestRatio {
			best = tag
			bestRatio = ratio
		}
	}

	return best
}

func forceEligibleWide(tag format.CodecTag, s stats.Bytes) bool {
	switch tag {
	case format.OneValue:
		return s.UniqueCount == 1
	case format.RLE, format.Dict:
		return true
	default:
		return format.IsValidGeneralTag(tag)
	}
}

func estimateWideRatio(tag format.CodecTag, vals [][]byte, width int, s stats.Bytes) float64 {
	if len(vals) == 0 {
		return 1.0
	}

	raw := float64(len(vals) * width)

	switch tag {
	case format.RLE:
		if s.AverageRunLength <= 0 {
			return 1.0
		}

		return s.AverageRunLength * float64(width) / float64(4+width)
	case format.Dict:
		if s.UniqueCount == 0 {
			return 1.0
		}

		w := bitpack.WidthFor(uint64(s.UniqueCount))

		return raw / (float64(len(vals)*int(w))/8 + float64(s.UniqueCount*width) + 5)
	case format.OneValue:
		return raw
	default:
		return 1.0
	}
}

func encodeWideGeneral(vals [][]byte, width int, tag format.CodecTag) ([]byte, error) {
	raw := make([]byte, 0, len(vals)*width)
	for _, v := range vals {
		raw = append(raw, v...)
	}

	compressed, err := generalCompress(tag, raw)
	if err != nil {
		return nil, err
	}

	dst := writeHeader(nil, tag, len(compressed), len(raw))

	return append(dst, compressed...), nil
}

func encodeWideOneValue(vals [][]byte, width int) ([]byte, error) {
	v := make([]byte, width)
	if len(vals) > 0 {
		copy(v, vals[0])
	}

	dst := writeHeader(nil, format.OneValue, width, width)

	return append(dst, v...), nil
}

func decodeWideOneValue(payload []byte, valueCount, width int) ([][]byte, error) {
	if len(payload) < width {
		return nil, errs.ErrTruncatedPage
	}

	v := append([]byte(nil), payload[:width]...)

	out := make([][]byte, valueCount)
	for i := range out {
		out[i] = v
	}

	return out, nil
}

func encodeWideRLE(vals [][]byte, width int) ([]byte, error) {
	var payload []byte

	i := 0
	for i < len(vals) {
		run := 1
		for i+run < len(vals) && bytes.Equal(vals[i+run], vals[i]) {
			run++
		}

		payload = binary.LittleEndian.AppendUint32(payload, uint32(run))
		payload = append(payload, vals[i]...)

		i += run
	}

	dst := writeHeader(nil, format.RLE, len(payload), len(vals)*width)

	return append(dst, payload...), nil
}

func decodeWideRLE(payload []byte, valueCount, width int) ([][]byte, error) {
	out := make([][]byte, 0, valueCount)

	pos := 0
	for len(out) < valueCount {
		if pos+4+width > len(payload) {
			return nil, errs.ErrTruncatedPage
		}

		run := int(binary.LittleEndian.Uint32(payload[pos:]))
		pos += 4
		v := append([]byte(nil), payload[pos:pos+width]...)
		pos += width

		for j := 0; j < run && len(out) < valueCount; j++ {
			out = append(out, v)
		}
	}

	if len(out) != valueCount {
		return nil, errs.ErrValueCountMismatch
	}

	return out, nil
}

func encodeWideDict(vals [][]byte, width int) ([]byte, error) {
	b := dict.New(func(v string) string { return v })
	for _, v := range vals {
		b.Push(string(v))
	}

	entries := b.Entries()
	indexes := b.Indexes()

	var payload []byte
	payload = appendUint32(payload, uint32(len(entries)))
	for _, e := range entries {
		payload = append(payload, e...)
	}

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

	dst := writeHeader(nil, format.Dict, len(payload), len(vals)*width)

	return append(dst, payload...), nil
}

func decodeWideDict(payload []byte, valueCount, width int) ([][]byte, error) {
	if len(payload) < 4 {
		return nil, errs.ErrTruncatedPage
	}

	uniqueCount := int(readUint32(payload))
	pos := 4

	if len(payload) < pos+uniqueCount*width+1 {
		return nil, errs.ErrTruncatedPage
	}

	entries := make([][]byte, uniqueCount)
	for i := range entries {
		entries[i] = append([]byte(nil), payload[pos:pos+width]...)
		pos += width
	}

	idxW := payload[pos]
	pos++

	idxU, err := bitpack.Unpack(payload[pos:], valueCount, idxW)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, valueCount)
	for i, idx := range idxU {
		if int(idx) >= len(entries) {
			return nil, errs.NewOutOfSpec("dict: index %d out of range (%d entries)", idx, len(entries))
		}

		out[i] = entries[idx]
	}

	return out, nil
}
