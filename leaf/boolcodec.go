package leaf

import (
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/stats"
)

// BoolOptions mirrors IntOptions for bool leaves.
type BoolOptions struct {
	DefaultCompression    format.CodecTag
	MinRatio              float64
	ForbiddenCompressions map[format.CodecTag]bool
	Force                 format.CodecTag
}

var boolCandidates = []format.CodecTag{format.RLE, format.OneValue}

// EncodeBool selects and emits the typed payload for a bool leaf.
func EncodeBool(vals []bool, s stats.Bool, opts BoolOptions) ([]byte, error) {
	tag := selectBoolTag(s, opts)

	switch tag {
	case format.RLE:
		return encodeBoolRLE(vals)
	case format.OneValue:
		return encodeBoolOneValue(vals)
	default:
		raw := packBoolBits(vals)

		compressed, err := generalCompress(tag, raw)
		if err != nil {
			return nil, err
		}

		dst := writeHeader(nil, tag, len(compressed), len(raw))

		return append(dst, compressed...), nil
	}
}

// DecodeBool inverts EncodeBool.
func DecodeBool(in []byte, valueCount int) ([]bool, error) {
	tag, compressedSize, _, payload, err := readHeader(in)
	if err != nil {
		return nil, err
	}

	switch tag {
	case format.RLE:
		return decodeBoolRLE(payload, valueCount)
	case format.OneValue:
		return decodeBoolOneValue(payload, valueCount)
	default:
		if !tag.IsRawMode() {
			return nil, errs.ErrUnknownCodecTag
		}

		raw, err := generalDecompress(tag, payload[:compressedSize])
		if err != nil {
			return nil, err
		}

		return unpackBoolBits(raw, valueCount), nil
	}
}

func selectBoolTag(s stats.Bool, opts BoolOptions) format.CodecTag {
	best := opts.DefaultCompression

	if opts.Force != format.None && !opts.ForbiddenCompressions[opts.Force] {
		if opts.Force != format.OneValue || (s.TrueCount == 0 || s.FalseCount == 0) {
			return opts.Force
		}
	}

	if opts.MinRatio <= 0 {
		return best
	}

	bestRatio := 1.0

	for _, tag := range boolCandidates {
		if opts.ForbiddenCompressions[tag] {
			continue
		}

		if tag == format.OneValue && s.TrueCount != 0 && s.FalseCount != 0 {
			continue
		}

		var ratio float64
		switch tag {
		case format.RLE:
			if s.AverageRunLength > 0 {
				ratio = s.AverageRunLength / 40 // amortized (run_length u32 + value byte) vs 1 bit
			}
		case format.OneValue:
			ratio = float64(s.TupleCount) / 8
		}

		if ratio >= opts.MinRatio && ratio > bestRatio {
			best = tag
			bestRatio = ratio
		}
	}

	return best
}

func packBoolBits(vals []bool) []byte {
	out := make([]byte, (len(vals)+7)/8)
	for i, v := range vals {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}

	return out
}

func unpackBoolBits(buf []byte, count int) []bool {
	out := make([]bool, count)
	for i := range out {
		out[i] = buf[i/8]&(1<<uint(i%8)) != 0
	}

	return out
}

func encodeBoolOneValue(vals []bool) ([]byte, error) {
	var v bool
	if len(vals) > 0 {
		v = vals[0]
	}

	var b byte
	if v {
		b = 1
	}

	dst := writeHeader(nil, format.OneValue, 1, 1)

	return append(dst, b), nil
}

func decodeBoolOneValue(payload []byte, valueCount int) ([]bool, error) {
	if len(payload) < 1 {
		return nil, errs.ErrTruncatedPage
	}

	v := payload[0] != 0
	out := make([]bool, valueCount)
	for i := range out {
		out[i] = v
	}

	return out, nil
}

func encodeBoolRLE(vals []bool) ([]byte, error) {
	var payload []byte

	i := 0
	for i < len(vals) {
		run := 1
		for i+run < len(vals) && vals[i+run] == vals[i] {
			run++
		}

		payload = appendUint32(payload, uint32(run))

		var b byte
		if vals[i] {
			b = 1
		}

		payload = append(payload, b)
		i += run
	}

	dst := writeHeader(nil, format.RLE, len(payload), (len(vals)+7)/8)

	return append(dst, payload...), nil
}

func decodeBoolRLE(payload []byte, valueCount int) ([]bool, error) {
	out := make([]bool, 0, valueCount)

	pos := 0
	for len(out) < valueCount {
		if pos+5 > len(payload) {
			return nil, errs.ErrTruncatedPage
		}

		run := int(readUint32(payload[pos:]))
		v := payload[pos+4] != 0
		pos += 5

		for j := 0; j < run; j++ {
			out = append(out, v)
		}
	}

	if len(out) != valueCount {
		return nil, errs.ErrValueCountMismatch
	}

	return out, nil
}
