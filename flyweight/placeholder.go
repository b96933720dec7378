package flyweight

import "sync/atomic"

// placeholderAlign is the byte alignment every placeholder's data region
// starts and ends on, so "the next placeholder starts aligned" (spec
// §4.3 Alignment) holds without ever inspecting a neighbor's address.
const placeholderAlign = 8

func alignSize(n int) int {
	return (n + placeholderAlign - 1) &^ (placeholderAlign - 1)
}

// placeholder is one slot of a chunk's slab: either a live interned
// string (hash is its FNV-1, refcount > 0 while referenced) or a free
// field (hash == emptyHash). Unlike the source, which embeds this
// header directly inside the byte slab via placement-new, this port
// keeps placeholder as a plain Go struct addressed by (chunk, offset);
// see DESIGN.md for why carrying an in-buffer header isn't a good fit
// for Go. seq is bumped every time a slot changes identity (fresh
// allocation, reuse after a split, or reclaimed by CollectGarbage) so a
// stale WeakHandle can detect its target slot was recycled.
type placeholder struct {
	chunk    *chunk
	offset   int
	size     int // capacity reserved for this slot, already aligned
	used     int // actual string length, <= size; meaningless for empties
	hash     uint32
	seq      uint64
	refcount atomic.Int32
}

func (p *placeholder) bytes() []byte {
	return p.chunk.data[p.offset : p.offset+p.used]
}

func (p *placeholder) isEmpty() bool {
	return p.hash == emptyHash
}
