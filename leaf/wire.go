// Package leaf implements LeafCodec: per-physical-type
// candidate codec sets, a cost-model-driven selector, and the typed wire
// format each codec reads and writes.
//
// Each codec is one encode/decode function pair, dispatched by the codec
// tag byte at the front of its payload.
package leaf

import (
	"encoding/binary"

	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/format"
)

// writeHeader appends the 1-byte codec tag, compressed_size (u32 le) and
// uncompressed_size (u32 le) that precede every typed payload.
func writeHeader(dst []byte, tag format.CodecTag, compressedSize, uncompressedSize int) []byte {
	dst = append(dst, byte(tag))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(compressedSize))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(uncompressedSize))

	return dst
}

const headerSize = 1 + 4 + 4

func appendUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func readUint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// readHeader parses the typed payload header from the front of in,
// returning the tag, compressed/uncompressed sizes and the remaining
// bytes after the header.
func readHeader(in []byte) (tag format.CodecTag, compressedSize, uncompressedSize int, rest []byte, err error) {
	if len(in) < headerSize {
		return 0, 0, 0, nil, errs.ErrTruncatedPage
	}

	tag = format.CodecTag(in[0])
	compressedSize = int(binary.LittleEndian.Uint32(in[1:5]))
	uncompressedSize = int(binary.LittleEndian.Uint32(in[5:9]))
	rest = in[headerSize:]

	if len(rest) < compressedSize {
		return 0, 0, 0, nil, errs.ErrTruncatedPage
	}

	return tag, compressedSize, uncompressedSize, rest, nil
}
