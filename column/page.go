package column

import (
	"github.com/havenbyte/colcodec/array"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/leaf"
	"github.com/havenbyte/colcodec/page"
	"github.com/havenbyte/colcodec/stats"
)

// leafOptions resolves the per-physical-type leaf.XxxOptions for
// columnIndex from a WriteOptions, applying the debug FORCE_* override
// on top of the resolved default/min-ratio/forbidden set.
type leafOptions struct {
	defaultCompression format.CodecTag
	minRatio           float64
	forbidden          map[format.CodecTag]bool
	force              format.CodecTag
}

func resolveLeafOptions(w *WriteOptions, columnIndex int) leafOptions {
	return leafOptions{
		defaultCompression: w.defaultCompressionFor(columnIndex),
		minRatio:           w.MinRatio,
		forbidden:          w.ForbiddenCompressions,
		force:              ForcedCodecTag(),
	}
}

// EncodePage writes one page's full wire layout: the
// validity stream or nested-levels block, followed by the codec_tag +
// sizes + payload the leaf package's per-type Encode* functions produce.
//
// A nested leaf (lv != nil) writes its levels block followed by its own
// validity stream: NestedShredder records a leaf-array slot (Present)
// whenever this position is reached at all, independently of whether the
// scalar value stored there is itself null, so a present-but-null leaf
// value cannot be told apart from a present-and-valid one by Def alone.
// A shredded leaf therefore always carries its own validity bitmap
// alongside its levels; the validity-or-levels either/or only holds for a
// leaf that was never shredded.
func EncodePage(dst []byte, l *array.Leaf, lv *page.Levels, nullable bool, w *WriteOptions, columnIndex int) ([]byte, error) {
	switch {
	case lv != nil:
		dst = page.WriteLevels(dst, *lv)
		dst = page.WriteValidity(dst, l.Validity)
	case nullable:
		dst = page.WriteValidity(dst, l.Validity)
	}

	opts := resolveLeafOptions(w, columnIndex)

	payload, err := encodeLeafValues(l, opts)
	if err != nil {
		return nil, err
	}

	return append(dst, payload...), nil
}

// DecodePage is EncodePage's inverse. valueCount is the page's declared
// value count (from the column's ColumnMeta entry); nested selects the
// levels-block header instead of a validity stream. Byte-slice leaves
// carry explicit length-prefixed values rather than a raw offset buffer,
// so page-to-page offset continuity falls out of simple concatenation and
// needs no threaded offset state.
func DecodePage(in []byte, physType format.PhysicalType, valueCount int, nullable, nested bool) (l *array.Leaf, lv *page.Levels, consumed int, err error) {
	pos := 0

	if nested {
		levels, n, err := page.ReadLevels(in)
		if err != nil {
			return nil, nil, 0, err
		}

		lv = &levels
		pos += n
	}

	var validity []bool
	if nested || nullable {
		v, n, err := page.ReadValidity(in[pos:], valueCount)
		if err != nil {
			return nil, nil, 0, err
		}

		validity = v
		pos += n
	}

	l, n, err := decodeLeafValues(in[pos:], physType, valueCount, validity)
	if err != nil {
		return nil, nil, 0, err
	}

	pos += n

	return l, lv, pos, nil
}

func encodeLeafValues(l *array.Leaf, opts leafOptions) ([]byte, error) {
	switch {
	case l.Type == format.Bool:
		s := stats.ProbeBool(l.Bools, l.Validity)

		return leaf.EncodeBool(l.Bools, s, leaf.BoolOptions{
			DefaultCompression:    opts.defaultCompression,
			MinRatio:              opts.minRatio,
			ForbiddenCompressions: opts.forbidden,
			Force:                 opts.force,
		})

	case l.Type.IsBytes():
		s := stats.ProbeBytes(l.Bytes, l.Validity)

		return leaf.EncodeBytes(l.Bytes, s, leaf.BytesOptions{
			DefaultCompression:    opts.defaultCompression,
			MinRatio:              opts.minRatio,
			ForbiddenCompressions: opts.forbidden,
			Force:                 opts.force,
		})

	case l.Type == format.Float32:
		vals := widenFloat32(l.Float32)
		s := stats.ProbeFloat(vals, l.Validity)

		return leaf.EncodeFloat(vals, s, leaf.FloatOptions{
			DefaultCompression:    opts.defaultCompression,
			MinRatio:              opts.minRatio,
			ForbiddenCompressions: opts.forbidden,
			Force:                 opts.force,
		})

	case l.Type.IsFloat():
		s := stats.ProbeFloat(l.Floats, l.Validity)

		return leaf.EncodeFloat(l.Floats, s, leaf.FloatOptions{
			DefaultCompression:    opts.defaultCompression,
			MinRatio:              opts.minRatio,
			ForbiddenCompressions: opts.forbidden,
			Force:                 opts.force,
		})

	case l.Type.IsWideInteger():
		s := stats.ProbeBytes(l.Wide, l.Validity)

		return leaf.EncodeWide(l.Wide, wideWidth(l.Type), s, leaf.WideOptions{
			DefaultCompression:    opts.defaultCompression,
			MinRatio:              opts.minRatio,
			ForbiddenCompressions: opts.forbidden,
			Force:                 opts.force,
		})

	case l.Type.IsInteger():
		s := stats.ProbeInt(l.Int64s, l.Validity)

		return leaf.EncodeInt(l.Int64s, l.Type, s, leaf.IntOptions{
			DefaultCompression:    opts.defaultCompression,
			MinRatio:              opts.minRatio,
			ForbiddenCompressions: opts.forbidden,
			Force:                 opts.force,
		})

	default:
		return nil, errs.NewNotYetImplemented("page encoding for %s", l.Type)
	}
}

func decodeLeafValues(in []byte, physType format.PhysicalType, valueCount int, validity []bool) (*array.Leaf, int, error) {
	switch {
	case physType == format.Bool:
		vals, err := leaf.DecodeBool(in, valueCount)
		if err != nil {
			return nil, 0, err
		}

		return &array.Leaf{Type: physType, Validity: validity, Bools: vals}, payloadLen(in, valueCount), nil

	case physType.IsBytes():
		vals, err := leaf.DecodeBytes(in, valueCount)
		if err != nil {
			return nil, 0, err
		}

		return &array.Leaf{Type: physType, Validity: validity, Bytes: vals}, payloadLen(in, valueCount), nil

	case physType == format.Float32:
		vals, err := leaf.DecodeFloat(in, valueCount)
		if err != nil {
			return nil, 0, err
		}

		return &array.Leaf{Type: physType, Validity: validity, Float32: narrowFloat32(vals)}, payloadLen(in, valueCount), nil

	case physType.IsFloat():
		vals, err := leaf.DecodeFloat(in, valueCount)
		if err != nil {
			return nil, 0, err
		}

		return &array.Leaf{Type: physType, Validity: validity, Floats: vals}, payloadLen(in, valueCount), nil

	case physType.IsWideInteger():
		vals, err := leaf.DecodeWide(in, valueCount, wideWidth(physType))
		if err != nil {
			return nil, 0, err
		}

		return &array.Leaf{Type: physType, Validity: validity, Wide: vals}, payloadLen(in, valueCount), nil

	case physType.IsInteger():
		vals, err := leaf.DecodeInt(in, valueCount, physType)
		if err != nil {
			return nil, 0, err
		}

		return &array.Leaf{Type: physType, Validity: validity, Int64s: vals}, payloadLen(in, valueCount), nil

	default:
		return nil, 0, errs.NewNotYetImplemented("page decoding for %s", physType)
	}
}

// payloadLen reports how many header-relative bytes the typed payload
// occupies, computed from its own compressed_size field rather than
// assumed, so callers advance exactly as far as the payload declares.
func payloadLen(in []byte, valueCount int) int {
	if len(in) < 9 {
		return len(in)
	}

	compressedSize := int(in[1]) | int(in[2])<<8 | int(in[3])<<16 | int(in[4])<<24

	n := 9 + compressedSize
	if n > len(in) {
		return len(in)
	}

	return n
}

// wideWidth returns the per-value byte width of a wide-integer type.
func wideWidth(t format.PhysicalType) int {
	if t == format.Int256 || t == format.Uint256 {
		return 32
	}

	return 16
}

func widenFloat32(vals []float32) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}

	return out
}

func narrowFloat32(vals []float64) []float32 {
	out := make([]float32, len(vals))
	for i, v := range vals {
		out[i] = float32(v)
	}

	return out
}
