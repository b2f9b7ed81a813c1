// Package compress implements the raw-mode general byte codecs named by
// format.CodecTag's low range (None, LZ4, Zstd, Snappy). These treat a
// page's already-encoded value buffer as an opaque byte string: they
// know nothing about the physical type or shape of what they compress,
// and run as a page's fallback (general) codec.
package compress

import (
	"fmt"

	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
)

// Compressor compresses an already-encoded byte buffer.
type Compressor interface {
	// Compress compresses data and returns the compressed result. The
	// returned slice is newly allocated; data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a buffer a Compressor of the same kind produced.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes the outcome of one compression call.
type Stats struct {
	Tag            format.CodecTag
	OriginalSize   int
	CompressedSize int
}

// Ratio returns CompressedSize/OriginalSize, or 1.0 if OriginalSize is zero.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 1.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// CreateCodec builds a Codec for the given raw-mode tag. target names the
// caller for error messages (e.g. "page", "dict entries").
func CreateCodec(tag format.CodecTag, target string) (Codec, error) {
	switch tag {
	case format.None:
		return NewNoOpCodec(), nil
	case format.LZ4:
		return NewLZ4Codec(), nil
	case format.Zstd:
		return NewZstdCodec(), nil
	case format.Snappy:
		return NewSnappyCodec(), nil
	default:
		return nil, errs.NewOutOfSpec("%s: invalid general codec tag %s", target, tag)
	}
}

var builtinCodecs = map[format.CodecTag]Codec{
	format.None:   NewNoOpCodec(),
	format.LZ4:    NewLZ4Codec(),
	format.Zstd:   NewZstdCodec(),
	format.Snappy: NewSnappyCodec(),
}

// GetCodec retrieves a shared built-in Codec for tag.
func GetCodec(tag format.CodecTag) (Codec, error) {
	if codec, ok := builtinCodecs[tag]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported general codec tag: %s", tag)
}

// AllGeneralTags lists the raw-mode tags in the fixed enumeration order
// cost-model tie-breaks use.
func AllGeneralTags() []format.CodecTag {
	return []format.CodecTag{format.None, format.LZ4, format.Zstd, format.Snappy}
}
