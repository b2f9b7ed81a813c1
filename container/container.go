// Package container packages the schema block, column payload stream, and
// column meta index into one self-describing byte stream.
//
// The column meta index is a trailer rather than a header: the writer
// cannot know a column's total byte length, and therefore the index bytes
// before it, until every page has been emitted. A fixed 8-byte footer
// holding the trailer's offset lets a reader locate it from the end.
package container

import (
	"github.com/havenbyte/colcodec/column"
	"github.com/havenbyte/colcodec/endian"
	"github.com/havenbyte/colcodec/errs"
	"github.com/havenbyte/colcodec/internal/pool"
	"github.com/havenbyte/colcodec/schema"
)

// footerSize is the fixed 8-byte footer appended after the trailer: the
// absolute byte offset (within the whole container) at which the trailer
// begins. A reader locates the trailer by reading the last 8 bytes first,
// without needing to have seen the schema or payload yet.
const footerSize = 8

// Writer accumulates a schema block, a column payload stream, and the
// per-column metadata needed to build the trailer, through a
// write-schema, write-column-streams, finalize sequence.
//
// The payload stream accumulates in a pooled column-scratch buffer that is
// returned to the pool on Finalize, so back-to-back container writes reuse
// one allocation.
type Writer struct {
	engine  endian.EndianEngine
	schema  []byte
	payload *pool.ByteBuffer
	metas   []column.Meta
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{
		engine:  endian.GetLittleEndianEngine(),
		payload: pool.GetColumnBuffer(),
	}
}

// WriteSchema serializes s into the schema block. Must be called exactly
// once, before any WriteColumnStream call.
func (w *Writer) WriteSchema(s schema.Schema) error {
	if w.schema != nil {
		return errs.NewOutOfSpec("container: schema already written")
	}

	w.schema = schema.Encode(s)

	return nil
}

// WriteColumnStream appends one column's already-encoded page bytes to the
// payload stream and records its Meta (with FileOffset rebased to the
// payload stream's own origin) for the trailer. columnID must equal the
// number of columns written so far: columns are written in schema order.
func (w *Writer) WriteColumnStream(columnID int, meta column.Meta, data []byte) error {
	if w.payload == nil {
		return errs.NewOutOfSpec("container: writer already finalized")
	}

	if columnID != len(w.metas) {
		return errs.NewOutOfSpec("container: column %d written out of order (expected %d)", columnID, len(w.metas))
	}

	meta.FileOffset = int64(w.payload.Len())
	w.payload.MustWrite(data)
	w.metas = append(w.metas, meta)

	return nil
}

// Finalize appends the column meta index trailer and the footer, and
// returns the complete container bytes: [schema][payload][trailer][footer].
// The Writer is spent afterwards; its scratch buffer goes back to the pool.
func (w *Writer) Finalize() ([]byte, error) {
	if w.schema == nil {
		return nil, errs.NewOutOfSpec("container: schema not written")
	}

	if w.payload == nil {
		return nil, errs.NewOutOfSpec("container: writer already finalized")
	}

	out := append([]byte(nil), w.schema...)
	out = append(out, w.payload.Bytes()...)

	pool.PutColumnBuffer(w.payload)
	w.payload = nil

	trailerOffset := len(out)
	out = w.appendTrailer(out, w.metas)
	out = w.engine.AppendUint64(out, uint64(trailerOffset))

	return out, nil
}

// appendTrailer serializes the column meta index:
// column_count u64 le, then per column {file_offset u64 le, page_count u64
// le, per page {byte_length u64 le, value_count u64 le}}.
func (w *Writer) appendTrailer(dst []byte, metas []column.Meta) []byte {
	dst = w.engine.AppendUint64(dst, uint64(len(metas)))

	for _, m := range metas {
		dst = w.engine.AppendUint64(dst, uint64(m.FileOffset))
		dst = w.engine.AppendUint64(dst, uint64(len(m.Pages)))

		for _, p := range m.Pages {
			dst = w.engine.AppendUint64(dst, uint64(p.ByteLength))
			dst = w.engine.AppendUint64(dst, uint64(p.ValueCount))
		}
	}

	return dst
}

// Reader is ContainerIO's inverse: it locates the trailer via the footer,
// parses the schema from the front, and hands out each column's payload
// slice by Meta.
type Reader struct {
	engine        endian.EndianEngine
	data          []byte
	payloadOffset int
	trailerOffset int
}

// NewReader parses just enough of data (the footer, then the schema block)
// to serve ReadSchema/ReadColumnMetas/ColumnPayload; it does not copy data.
func NewReader(data []byte) (*Reader, error) {
	engine := endian.GetLittleEndianEngine()

	if len(data) < footerSize {
		return nil, errs.NewOutOfSpec("container: truncated footer")
	}

	trailerOffset := int(engine.Uint64(data[len(data)-footerSize:]))
	if trailerOffset < 0 || trailerOffset > len(data)-footerSize {
		return nil, errs.NewOutOfSpec("container: invalid trailer offset")
	}

	_, schemaLen, err := schema.Decode(data)
	if err != nil {
		return nil, err
	}

	if schemaLen > trailerOffset {
		return nil, errs.NewOutOfSpec("container: schema block overruns payload")
	}

	return &Reader{engine: engine, data: data, payloadOffset: schemaLen, trailerOffset: trailerOffset}, nil
}

// ReadSchema decodes the schema block written by Writer.WriteSchema.
func (r *Reader) ReadSchema() (schema.Schema, error) {
	s, _, err := schema.Decode(r.data)
	return s, err
}

// ReadColumnMetas decodes the trailer into one Meta per column, in the
// order they were written. The returned Metas' FileOffset is relative to
// the column payload stream's own origin, as ColumnPayload expects.
func (r *Reader) ReadColumnMetas() ([]column.Meta, error) {
	buf := r.data[r.trailerOffset : len(r.data)-footerSize]

	if len(buf) < 8 {
		return nil, errs.ErrTruncatedPage
	}

	count := int(r.engine.Uint64(buf))
	pos := 8

	metas := make([]column.Meta, count)

	for i := 0; i < count; i++ {
		if len(buf) < pos+16 {
			return nil, errs.ErrTruncatedPage
		}

		fileOffset := int64(r.engine.Uint64(buf[pos:]))
		pageCount := int(r.engine.Uint64(buf[pos+8:]))
		pos += 16

		pages := make([]column.PageMeta, pageCount)
		for j := 0; j < pageCount; j++ {
			if len(buf) < pos+16 {
				return nil, errs.ErrTruncatedPage
			}

			pages[j] = column.PageMeta{
				ByteLength: int64(r.engine.Uint64(buf[pos:])),
				ValueCount: int64(r.engine.Uint64(buf[pos+8:])),
			}
			pos += 16
		}

		metas[i] = column.Meta{FileOffset: fileOffset, Pages: pages}
	}

	return metas, nil
}

// ColumnPayload returns the byte range of the payload stream covering
// meta's pages, ready to be fed page-by-page to column.DecodePage.
func (r *Reader) ColumnPayload(meta column.Meta) ([]byte, error) {
	start := r.payloadOffset + int(meta.FileOffset)
	end := start + int(meta.TotalLength())

	if start < r.payloadOffset || end > r.trailerOffset || start > end {
		return nil, errs.ErrTruncatedPage
	}

	return r.data[start:end], nil
}
