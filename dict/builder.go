// Package dict implements DictBuilder: insertion-order
// value deduplication keyed by content hash, producing the entries
// table and index stream the Dict typed codec (leaf package) serializes.
//
package dict

import "github.com/havenbyte/colcodec/internal/hash"

// Builder deduplicates pushed values by content hash, in insertion order.
type Builder[T comparable] struct {
	toString func(T) string

	indexOf map[uint64][]entry[T]
	entries []T
	indexes []uint32
	last    uint32
}

type entry[T comparable] struct {
	value T
	index uint32
}

// New builds a Builder. toString must produce a stable, collision-free
// textual representation of a value for hashing (e.g. strconv.FormatInt
// for integers, or the raw bytes for a byte-slice leaf).
func New[T comparable](toString func(T) string) *Builder[T] {
	return &Builder[T]{
		toString: toString,
		indexOf:  make(map[uint64][]entry[T]),
	}
}

// Push records v, returning its dictionary index. Repeated values across
// calls return the same index; the underlying content hash only narrows
// the candidate bucket, so equal values are confirmed with ==.
func (b *Builder[T]) Push(v T) uint32 {
	h := hash.ID(b.toString(v))

	for _, e := range b.indexOf[h] {
		if e.value == v {
			b.last = e.index
			b.indexes = append(b.indexes, e.index)
			return e.index
		}
	}

	idx := uint32(len(b.entries))
	b.entries = append(b.entries, v)
	b.indexOf[h] = append(b.indexOf[h], entry[T]{value: v, index: idx})
	b.indexes = append(b.indexes, idx)
	b.last = idx

	return idx
}

// PushLastIndex repeats the previously pushed index without consulting
// the hash table, used for null positions so the index stream's length
// always equals the column's value count.
func (b *Builder[T]) PushLastIndex() uint32 {
	b.indexes = append(b.indexes, b.last)
	return b.last
}

// Entries returns the deduplicated values in insertion order.
func (b *Builder[T]) Entries() []T {
	return b.entries
}

// Indexes returns the per-position dictionary index stream, one entry
// per Push/PushLastIndex call, in call order.
func (b *Builder[T]) Indexes() []uint32 {
	return b.indexes
}

// UniqueCount returns the number of distinct entries recorded so far.
func (b *Builder[T]) UniqueCount() int {
	return len(b.entries)
}
