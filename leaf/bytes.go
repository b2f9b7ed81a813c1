package leaf

import (
	"encoding/binary"

	"github.com/havenbyte/colcodec/bitpack"
	"github.com/havenbyte/colcodec/dict"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/stats"
)

// BytesOptions mirrors IntOptions for byte-slice leaves.
type BytesOptions struct {
	DefaultCompression    format.CodecTag
	MinRatio              float64
	ForbiddenCompressions map[format.CodecTag]bool
	Force                 format.CodecTag
}

var bytesCandidates = []format.CodecTag{format.Dict, format.OneValue, format.Freq}

// EncodeBytes selects and emits the typed payload for a byte-slice leaf.
func EncodeBytes(vals [][]byte, s stats.Bytes, opts BytesOptions) ([]byte, error) {
	tag := selectBytesTag(vals, s, opts)

	switch tag {
	case format.Dict:
		return encodeBytesDict(vals)
	case format.OneValue:
		return encodeBytesOneValue(vals)
	case format.Freq:
		return encodeBytesFreq(vals, s)
	default:
		return encodeBytesGeneral(vals, tag)
	}
}

// encodeBytesGeneral is the raw-mode fallback: the concatenated value
// buffer is compressed opaquely, preceded by a count and per-value
// length array so DecodeBytes can re-split it without a separate
// offsets stream. This keeps a byte-slice leaf payload self-contained
// even when no typed codec's estimated ratio clears min_ratio.
func encodeBytesGeneral(vals [][]byte, tag format.CodecTag) ([]byte, error) {
	raw := concatBytes(vals)

	compressed, err := generalCompress(tag, raw)
	if err != nil {
		return nil, err
	}

	lengths := appendUint32(nil, uint32(len(vals)))
	for _, v := range vals {
		lengths = appendUint32(lengths, uint32(len(v)))
	}

	payload := append(lengths, compressed...)

	dst := writeHeader(nil, tag, len(payload), len(raw))

	return append(dst, payload...), nil
}

func selectBytesTag(vals [][]byte, s stats.Bytes, opts BytesOptions) format.CodecTag {
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

	for _, tag := range bytesCandidates {
		if opts.ForbiddenCompressions[tag] {
			continue
		}

		if tag == format.OneValue && s.UniqueCount != 1 {
			continue
		}

		ratio := estimateBytesRatio(tag, vals, s)
		if ratio >= opts.MinRatio && ratio > bestRatio {
			best = tag
			bestRatio = ratio
		}
	}

	return best
}

func estimateBytesRatio(tag format.CodecTag, vals [][]byte, s stats.Bytes) float64 {
	totalLen := int64(0)
	for _, v := range vals {
		totalLen += int64(len(v))
	}

	if totalLen == 0 {
		return 1.0
	}

	switch tag {
	case format.Dict:
		if s.UniqueCount == 0 {
			return 1.0
		}

		w := bitpack.WidthFor(uint64(s.UniqueCount - 1))
		entryBytes := s.UniqueValueByteLen + int64(s.UniqueCount)*8

		return float64(totalLen) / (float64(len(vals)*int(w))/8 + float64(entryBytes))
	case format.OneValue:
		return float64(totalLen)
	case format.Freq:
		return 2.0
	default:
		return 1.0
	}
}

func concatBytes(vals [][]byte) []byte {
	var out []byte
	for _, v := range vals {
		out = append(out, v...)
	}

	return out
}

func encodeBytesOneValue(vals [][]byte) ([]byte, error) {
	var v []byte
	if len(vals) > 0 {
		v = vals[0]
	}

	payload := appendUint32(nil, uint32(len(v)))
	payload = append(payload, v...)

	dst := writeHeader(nil, format.OneValue, len(payload), len(v))

	return append(dst, payload...), nil
}

func decodeBytesOneValue(payload []byte, valueCount int) ([][]byte, error) {
	if len(payload) < 4 {
		return nil, errs.ErrTruncatedPage
	}

	n := int(readUint32(payload))
	if len(payload) < 4+n {
		return nil, errs.ErrTruncatedPage
	}

	v := append([]byte(nil), payload[4:4+n]...)

	out := make([][]byte, valueCount)
	for i := range out {
		out[i] = v
	}

	return out, nil
}

func encodeBytesDict(vals [][]byte) ([]byte, error) {
	b := dict.New(func(v string) string { return v })
	for _, v := range vals {
		b.Push(string(v))
	}

	entries := b.Entries()
	indexes := b.Indexes()

	var payload []byte
	payload = appendUint32(payload, uint32(len(entries)))
	for _, e := range entries {
		payload = binary.LittleEndian.AppendUint64(payload, uint64(len(e)))
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

	totalLen := 0
	for _, v := range vals {
		totalLen += len(v)
	}

	dst := writeHeader(nil, format.Dict, len(payload), totalLen)

	return append(dst, payload...), nil
}

func decodeBytesDict(payload []byte, valueCount int) ([][]byte, error) {
	if len(payload) < 4 {
		return nil, errs.ErrTruncatedPage
	}

	uniqueCount := int(readUint32(payload))
	pos := 4

	entries := make([][]byte, uniqueCount)
	for i := 0; i < uniqueCount; i++ {
		if len(payload) < pos+8 {
			return nil, errs.ErrTruncatedPage
		}

		n := int(binary.LittleEndian.Uint64(payload[pos:]))
		pos += 8

		if len(payload) < pos+n {
			return nil, errs.ErrTruncatedPage
		}

		entries[i] = append([]byte(nil), payload[pos:pos+n]...)
		pos += n
	}

	if len(payload) < pos+1 {
		return nil, errs.ErrTruncatedPage
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

// encodeBytesFreq implements Freq: a dominant value plus
// an exception bitmap and a nested payload for the exceptions, for
// columns where one value overwhelmingly repeats but a minority differ
// (e.g. a mostly-constant tag column with rare outliers).
func encodeBytesFreq(vals [][]byte, s stats.Bytes) ([]byte, error) {
	dominant, domCount := mostFrequentBytes(vals)

	exceptionBitmap := make([]byte, (len(vals)+7)/8)
	var exceptions [][]byte

	for i, v := range vals {
		if string(v) != string(dominant) {
			exceptionBitmap[i/8] |= 1 << uint(i%8)
			exceptions = append(exceptions, v)
		}
	}

	nested, err := encodeBytesDict(exceptions)
	if err != nil {
		return nil, err
	}

	var payload []byte
	payload = appendUint32(payload, uint32(len(dominant)))
	payload = append(payload, dominant...)
	payload = append(payload, exceptionBitmap...)
	payload = appendUint32(payload, uint32(len(nested)))
	payload = append(payload, nested...)

	totalLen := 0
	for _, v := range vals {
		totalLen += len(v)
	}

	_ = domCount
	dst := writeHeader(nil, format.Freq, len(payload), totalLen)

	return append(dst, payload...), nil
}

func decodeBytesFreq(payload []byte, valueCount int) ([][]byte, error) {
	if len(payload) < 4 {
		return nil, errs.ErrTruncatedPage
	}

	domLen := int(readUint32(payload))
	pos := 4

	if len(payload) < pos+domLen {
		return nil, errs.ErrTruncatedPage
	}

	dominant := append([]byte(nil), payload[pos:pos+domLen]...)
	pos += domLen

	bitmapLen := (valueCount + 7) / 8
	if len(payload) < pos+bitmapLen {
		return nil, errs.ErrTruncatedPage
	}

	bitmap := payload[pos : pos+bitmapLen]
	pos += bitmapLen

	if len(payload) < pos+4 {
		return nil, errs.ErrTruncatedPage
	}

	nestedLen := int(readUint32(payload[pos:]))
	pos += 4

	if len(payload) < pos+nestedLen {
		return nil, errs.ErrTruncatedPage
	}

	exceptionCount := 0
	for i := 0; i < valueCount; i++ {
		if bitmap[i/8]&(1<<uint(i%8)) != 0 {
			exceptionCount++
		}
	}

	exceptions, err := DecodeBytes(payload[pos:pos+nestedLen], exceptionCount)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, valueCount)
	ei := 0

	for i := range out {
		if bitmap[i/8]&(1<<uint(i%8)) != 0 {
			out[i] = exceptions[ei]
			ei++
		} else {
			out[i] = dominant
		}
	}

	return out, nil
}

func mostFrequentBytes(vals [][]byte) ([]byte, int) {
	counts := map[string]int{}
	order := map[string][]byte{}

	for _, v := range vals {
		s := string(v)
		counts[s]++
		if _, ok := order[s]; !ok {
			order[s] = v
		}
	}

	var best []byte
	bestCount := -1

	for _, v := range vals {
		s := string(v)
		if counts[s] > bestCount {
			bestCount = counts[s]
			best = order[s]
		}
	}

	return best, bestCount
}

// DecodeBytes inverts EncodeBytes.
func DecodeBytes(in []byte, valueCount int) ([][]byte, error) {
	tag, compressedSize, _, payload, err := readHeader(in)
	if err != nil {
		return nil, err
	}

	switch tag {
	case format.Dict:
		return decodeBytesDict(payload, valueCount)
	case format.OneValue:
		return decodeBytesOneValue(payload, valueCount)
	case format.Freq:
		return decodeBytesFreq(payload, valueCount)
	default:
		if !tag.IsRawMode() {
			return nil, errs.ErrUnknownCodecTag
		}

		if len(payload) < 4 {
			return nil, errs.ErrTruncatedPage
		}

		n := int(readUint32(payload))
		pos := 4
		lengths := make([]int, n)

		for i := range lengths {
			if len(payload) < pos+4 {
				return nil, errs.ErrTruncatedPage
			}

			lengths[i] = int(readUint32(payload[pos:]))
			pos += 4
		}

		if compressedSize < pos {
			return nil, errs.ErrTruncatedPage
		}

		raw, err := generalDecompress(tag, payload[pos:compressedSize])
		if err != nil {
			return nil, err
		}

		out := make([][]byte, n)
		off := 0

		for i, l := range lengths {
			if off+l > len(raw) {
				return nil, errs.ErrTruncatedPage
			}

			out[i] = raw[off : off+l]
			off += l
		}

		return out, nil
	}
}
