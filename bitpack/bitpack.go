// Package bitpack implements fixed-block bit-packing of unsigned integers
// at widths 0-64.
//
// Packing always operates on blocks of exactly 128 values: the trailing
// partial block is zero-padded before packing and truncated after
// unpacking, so callers never need to special-case the tail themselves.
// Accumulation runs through a 64-bit shift buffer flushed to bytes as it
// fills.
package bitpack

import (
	"encoding/binary"
	"math/bits"

	"github.com/havenbyte/colcodec/errs"
)

// BlockSize is the fixed number of values packed into one block.
const BlockSize = 128

// Align rounds n up to the next multiple of BlockSize.
func Align(n int) int {
	if n%BlockSize == 0 {
		return n
	}

	return (n/BlockSize + 1) * BlockSize
}

// RequiredWidth returns the minimum bit width needed to represent every
// value in vals, i.e. ceil(log2(max+1)), or 0 iff max is 0.
func RequiredWidth(vals []uint64) uint8 {
	var max uint64
	for _, v := range vals {
		if v > max {
			max = v
		}
	}

	return WidthFor(max)
}

// WidthFor returns the minimum bit width needed to represent max itself,
// i.e. ceil(log2(max+1)), or 0 iff max is 0. Callers that already track a
// running maximum (cost estimation, dict index width) use this directly
// instead of materializing a slice just to find its own max.
func WidthFor(max uint64) uint8 {
	if max == 0 {
		return 0
	}

	return uint8(bits.Len64(max))
}

// ByteLen returns the number of bytes occupied by n values packed at
// width w, i.e. ceil(n*w/8).
func ByteLen(n int, w uint8) int {
	bitsTotal := n * int(w)
	return (bitsTotal + 7) / 8
}

// Pack bit-packs vals (every element must satisfy v < 1<<w) at width w,
// padding the trailing partial block with zeros. Values are packed
// little-endian within the output byte stream: the least significant
// bits of the first value land in byte 0's low bits, and each later
// value continues at the next free bit, matching the bit order produced
// by OR-ing each value in above the bits already accumulated and
// flushing low-byte-first (see writeVal below).
func Pack(vals []uint64, w uint8) ([]byte, error) {
	if w > 64 {
		return nil, errs.ErrBitWidthOutOfRange
	}

	if w == 0 {
		return nil, nil
	}

	padded := Align(len(vals))
	out := make([]byte, ByteLen(padded, w))

	// A full block is 128*w bits, always a multiple of 64, so the
	// accumulator can flush in whole 8-byte chunks and is empty again at
	// every block boundary; padding values past len(vals) are zero and
	// contribute nothing beyond advancing the bit position.
	var acc uint64
	var accBits uint
	outPos := 0

	writeVal := func(v uint64) {
		v &= widthMask(w)
		acc |= v << accBits

		newBits := accBits + uint(w)
		if newBits >= 64 {
			binary.LittleEndian.PutUint64(out[outPos:], acc)
			outPos += 8

			if accBits > 0 {
				acc = v >> (64 - accBits)
			} else {
				acc = 0
			}

			accBits = newBits - 64
		} else {
			accBits = newBits
		}
	}

	for _, v := range vals {
		writeVal(v)
	}

	for i := len(vals); i < padded; i++ {
		writeVal(0)
	}

	return out, nil
}

// Unpack is the exact inverse of Pack: it decodes n values (n need not be
// a multiple of BlockSize; the trailing partial block's padding is
// dropped) from data packed at width w.
func Unpack(data []byte, n int, w uint8) ([]uint64, error) {
	if w > 64 {
		return nil, errs.ErrBitWidthOutOfRange
	}

	out := make([]uint64, n)
	if w == 0 {
		return out, nil
	}

	padded := Align(n)
	need := ByteLen(padded, w)
	if len(data) < need {
		return nil, errs.NewOutOfSpec("bitpack: need %d bytes for %d values at width %d, got %d", need, padded, w, len(data))
	}

	// Mirror of Pack's chunked accumulation: refill from whole 8-byte
	// chunks, splitting a value that straddles the chunk boundary between
	// the drained accumulator and the fresh chunk's low bits.
	var acc uint64
	var accBits uint
	inPos := 0

	for i := 0; i < n; i++ {
		if accBits < uint(w) {
			chunk := binary.LittleEndian.Uint64(data[inPos:])
			inPos += 8

			out[i] = (acc | chunk<<accBits) & widthMask(w)
			acc = chunk >> (uint(w) - accBits)
			accBits += 64 - uint(w)
		} else {
			out[i] = acc & widthMask(w)
			acc >>= uint(w)
			accBits -= uint(w)
		}
	}

	return out, nil
}

func widthMask(w uint8) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << w) - 1
}
