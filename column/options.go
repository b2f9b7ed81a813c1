// Package column implements ColumnOrchestrator: for one
// leaf (composites are shredded into leaf paths beforehand, by the batch
// package through nested.Shred) it slices the leaf into fixed-size pages, drives StatsProbe + LeafCodec selection per
// page, and records the per-page/per-column metadata
// ContainerIO's trailer serializes.
//
// WriteOptions is a single configuration struct built through the shared
// internal/options functional-options helper, carrying the column-index-
// keyed write knobs (default_compression, max_page_size, min_ratio,
// forbidden_compressions, column_compressions).
package column

import (
	"os"

	"github.com/havenbyte/colcodec/format"
	"github.com/havenbyte/colcodec/internal/options"
)

// DefaultMaxPageSize is the max_page_size used when a caller doesn't
// override it.
const DefaultMaxPageSize = 8192

// WriteOptions carries every recognized write option.
type WriteOptions struct {
	DefaultCompression    format.CodecTag
	MaxPageSize           int
	MinRatio              float64 // 0 means "selection disabled, always use default"
	ForbiddenCompressions map[format.CodecTag]bool
	ColumnCompressions    map[int]format.CodecTag // per-column-index override of DefaultCompression
}

// Option configures a WriteOptions.
type Option = options.Option[*WriteOptions]

// NewWriteOptions builds a WriteOptions with the defaults (general codec
// None, max_page_size 8192, no typed-codec selection) and applies opts in
// order.
func NewWriteOptions(opts ...Option) (*WriteOptions, error) {
	w := &WriteOptions{
		DefaultCompression: format.None,
		MaxPageSize:        DefaultMaxPageSize,
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// WithDefaultCompression sets the general codec used as the fallback
// when no typed codec is selected (or selection is disabled).
func WithDefaultCompression(tag format.CodecTag) Option {
	return options.NoError(func(w *WriteOptions) { w.DefaultCompression = tag })
}

// WithMaxPageSize sets max_page_size, the maximum number of values per page.
func WithMaxPageSize(n int) Option {
	return options.NoError(func(w *WriteOptions) { w.MaxPageSize = n })
}

// WithMinRatio enables typed-codec selection: a typed codec is chosen
// only when its estimated ratio is >= ratio.
func WithMinRatio(ratio float64) Option {
	return options.NoError(func(w *WriteOptions) { w.MinRatio = ratio })
}

// WithForbiddenCompressions excludes the given tags from selection.
func WithForbiddenCompressions(tags ...format.CodecTag) Option {
	return options.NoError(func(w *WriteOptions) {
		if w.ForbiddenCompressions == nil {
			w.ForbiddenCompressions = make(map[format.CodecTag]bool, len(tags))
		}

		for _, t := range tags {
			w.ForbiddenCompressions[t] = true
		}
	})
}

// WithColumnCompression overrides DefaultCompression for one column index.
func WithColumnCompression(columnIndex int, tag format.CodecTag) Option {
	return options.NoError(func(w *WriteOptions) {
		if w.ColumnCompressions == nil {
			w.ColumnCompressions = make(map[int]format.CodecTag)
		}

		w.ColumnCompressions[columnIndex] = tag
	})
}

// defaultCompressionFor resolves the fallback general codec for columnIndex,
// honoring ColumnCompressions' per-column override.
func (w *WriteOptions) defaultCompressionFor(columnIndex int) format.CodecTag {
	if tag, ok := w.ColumnCompressions[columnIndex]; ok {
		return tag
	}

	return w.DefaultCompression
}

// Debug-forcing environment variables: FORCE_DICT/FORCE_RLE
// and similar bypass estimate_ratio selection for a named codec tag,
// provided the leaf's stats still satisfy that codec's structural
// precondition (forceEligibleXxx in the leaf package). Re-read on every
// call rather than cached, so tests can toggle them per case.
var forceEnvVars = map[string]format.CodecTag{
	"FORCE_RLE":          format.RLE,
	"FORCE_DICT":         format.Dict,
	"FORCE_ONEVALUE":     format.OneValue,
	"FORCE_FREQ":         format.Freq,
	"FORCE_BITPACK":      format.BitPack,
	"FORCE_DELTA":        format.Delta,
	"FORCE_DELTABITPACK": format.DeltaBitPack,
	"FORCE_PATAS":        format.Patas,
}

// ForcedCodecTag returns the codec tag named by whichever FORCE_* debug
// environment variable is set (format.None if none is).
// Only one should be set at a time; if more than one is, the first match
// in forceEnvVars' (unspecified) iteration order wins.
func ForcedCodecTag() format.CodecTag {
	for name, tag := range forceEnvVars {
		if v, ok := os.LookupEnv(name); ok && v != "" && v != "0" && v != "false" {
			return tag
		}
	}

	return format.None
}
