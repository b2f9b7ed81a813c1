package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the type carries
// internal match-finder state that is expensive to rebuild per call.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec implements format.LZ4 using pierrec/lz4's block API.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func NewLZ4Codec() LZ4Codec { return LZ4Codec{} }

// Block framing: one flag byte precedes the lz4 block. 0 means the input
// was stored verbatim (lz4 block mode signals incompressible input by
// writing 0 bytes, and a stored block is also smaller whenever the block
// would have expanded); 1 means an lz4-compressed block follows.
const (
	lz4FlagStored     = 0
	lz4FlagCompressed = 1
)

func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, err
	}

	if n == 0 || n >= len(data) {
		out := make([]byte, 1+len(data))
		out[0] = lz4FlagStored
		copy(out[1:], data)

		return out, nil
	}

	dst[0] = lz4FlagCompressed

	return dst[:1+n], nil
}

func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	block := data[1:]
	if data[0] == lz4FlagStored {
		return append([]byte(nil), block...), nil
	}

	bufSize := len(block) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(block, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// DecompressTo decompresses data into a buffer sized exactly uncompressedSize.
// Every caller in this module knows this size from the page header, so this
// is the path the decode hot loop takes instead of Decompress's adaptive growth.
func (c LZ4Codec) DecompressTo(data []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize == 0 {
		return nil, nil
	}

	block := data[1:]
	if data[0] == lz4FlagStored {
		return append([]byte(nil), block...), nil
	}

	buf := make([]byte, uncompressedSize)

	n, err := lz4.UncompressBlock(block, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
