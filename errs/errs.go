// Package errs defines the closed set of error kinds the codec core returns.
//
// The core never recovers from an error internally: every error aborts the
// current page (on write) or the current column (on read) and is returned
// to the caller. Kinds are parameterized constructors rather than bare
// sentinels so each can carry the failing codec or byte detail.
package errs

import "fmt"

// OutOfSpec reports malformed bytes, unknown codec tags, length mismatches,
// or truncated streams encountered while decoding.
type OutOfSpec struct {
	Message string
}

func (e *OutOfSpec) Error() string {
	return "out of spec: " + e.Message
}

// NewOutOfSpec builds an OutOfSpec error with a formatted message.
func NewOutOfSpec(format string, args ...any) *OutOfSpec {
	return &OutOfSpec{Message: fmt.Sprintf(format, args...)}
}

// NotYetImplemented reports a type/codec combination the build does not
// support (e.g. Delta over a 128-bit integer column).
type NotYetImplemented struct {
	Message string
}

func (e *NotYetImplemented) Error() string {
	return "not yet implemented: " + e.Message
}

// NewNotYetImplemented builds a NotYetImplemented error with a formatted message.
func NewNotYetImplemented(format string, args ...any) *NotYetImplemented {
	return &NotYetImplemented{Message: fmt.Sprintf(format, args...)}
}

// CodecFailure wraps an error surfaced by an external codec library
// (LZ4, Zstd, Snappy).
type CodecFailure struct {
	Codec   string
	Message string
}

func (e *CodecFailure) Error() string {
	return fmt.Sprintf("codec failure (%s): %s", e.Codec, e.Message)
}

// NewCodecFailure builds a CodecFailure error for the named codec.
func NewCodecFailure(codec string, err error) *CodecFailure {
	return &CodecFailure{Codec: codec, Message: err.Error()}
}

// Sentinel errors for conditions that don't need a dynamic message.
var (
	// ErrUnknownCodecTag is returned when a page header names a codec tag
	// outside the closed enumeration in format.CodecTag.
	ErrUnknownCodecTag = NewOutOfSpec("unknown codec tag")
	// ErrTruncatedPage is returned when a page's declared byte length
	// would read past the end of the available data.
	ErrTruncatedPage = NewOutOfSpec("truncated page")
	// ErrValueCountMismatch is returned when a decoded page does not
	// yield exactly the page's declared value count.
	ErrValueCountMismatch = NewOutOfSpec("decoded value count mismatch")
	// ErrInvalidOffsets is returned when composite offsets are not
	// non-decreasing or reference out-of-range child positions.
	ErrInvalidOffsets = NewOutOfSpec("invalid offsets")
	// ErrBitWidthOutOfRange is returned when a requested BitPack width
	// falls outside [0,64].
	ErrBitWidthOutOfRange = NewOutOfSpec("bit width out of range")
)
