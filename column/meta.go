package column

// PageMeta is one page's entry in a ColumnMeta's page list.
type PageMeta struct {
	ByteLength int64
	ValueCount int64
}

// Meta is the per-column metadata ContainerIO's trailer persists
//: the column's starting byte offset in the payload
// stream plus one PageMeta per page.
type Meta struct {
	FileOffset int64
	Pages      []PageMeta
}

// TotalLength returns the sum of every page's byte length, i.e. the
// column's total byte length on the wire.
func (m Meta) TotalLength() int64 {
	var total int64
	for _, p := range m.Pages {
		total += p.ByteLength
	}

	return total
}

// TotalValueCount returns the sum of every page's value count.
func (m Meta) TotalValueCount() int64 {
	var total int64
	for _, p := range m.Pages {
		total += p.ValueCount
	}

	return total
}

// Slice returns a new Meta covering the page range [start, end), with
// FileOffset adjusted to point at the first byte of page start.
func (m Meta) Slice(start, end int) Meta {
	offset := m.FileOffset
	for i := 0; i < start; i++ {
		offset += m.Pages[i].ByteLength
	}

	pages := append([]PageMeta(nil), m.Pages[start:end]...)

	return Meta{FileOffset: offset, Pages: pages}
}

// SkipOnePage returns m.Slice(1, len(m.Pages)): every page after the first.
func (m Meta) SkipOnePage() Meta {
	return m.Slice(1, len(m.Pages))
}
