// Package flyweight implements the Flyweight String Factory of spec
// §3.6/§4.3: an interned-string store with chunked slab allocation,
// atomic reference counting, and hash-ordered lookup.
package flyweight

import (
	"bytes"
	"sync"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/psychi/fragments-sub003/internal/hashutil"
	"github.com/psychi/fragments-sub003/internal/order"
	"github.com/psychi/fragments-sub003/internal/rtti"
)

// emptyHash is the reserved hash value marking a free placeholder,
// computed the same way the source's _get_empty_hash does: the hash of
// the empty string.
var emptyHash = hashutil.EmptyHash

// defaultReserved is the default chunk capacity hint, mirroring
// PSYQ_STRING_FLYWEIGHT_FACTORY_CAPACITY_DEFAULT.
const defaultReserved = 256

// Config holds Factory's injected dependencies and tuning knobs.
type Config struct {
	Logger           *zap.Logger
	ReservedCapacity int // default chunk size hint when no per-call hint is given
}

func DefaultConfig() Config {
	return Config{ReservedCapacity: defaultReserved}
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Config) reserved() int {
	if c.ReservedCapacity <= 0 {
		return defaultReserved
	}
	return c.ReservedCapacity
}

// Factory is the interned-string store: a linked set of byte-slab chunks
// plus an index of every live and free placeholder, sorted by
// (hash, size) per spec §3.6.
type Factory struct {
	log      *zap.Logger
	mu       sync.Mutex
	reserved int
	chunks   []*chunk
	index    *btree.BTreeG[*placeholder]
	counter  rtti.Counter
}

// placeholderKey packs a placeholder's (hash, size, seq) ordering key
// into order.Pair's two-level shape, nesting a (size, seq) pair as the
// tiebreak inside the top-level (hash, ...) comparison.
func placeholderKey(p *placeholder) order.Pair[uint32, order.Pair[int, uint64]] {
	return order.Pair[uint32, order.Pair[int, uint64]]{
		A: p.hash,
		B: order.Pair[int, uint64]{A: p.size, B: p.seq},
	}
}

func lessPlaceholder(a, b *placeholder) bool {
	return placeholderKey(a).Less(placeholderKey(b))
}

func New(cfg Config) *Factory {
	return &Factory{
		log:      cfg.logger(),
		reserved: cfg.reserved(),
		index:    btree.NewG(32, lessPlaceholder),
	}
}

// Stats reports diagnostic counters, the Go equivalent of the source's
// chunk_count_ bookkeeping (SPEC_FULL's SUPPLEMENTED FEATURES).
type Stats struct {
	ChunkCount       int
	PlaceholderCount int
}

func (f *Factory) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{ChunkCount: len(f.chunks), PlaceholderCount: f.index.Len()}
}

// Intern interns view, returning a strong Handle. An empty view returns
// an empty Handle without allocating, per spec §4.3's failure model.
// chunkHint, when positive, overrides the factory's reserved capacity
// for a newly allocated chunk (only consulted if no existing chunk has
// room).
func (f *Factory) Intern(view string, chunkHint int) Handle {
	if len(view) == 0 {
		return Handle{}
	}
	data := []byte(view)
	hash := hashutil.Bytes(data)

	f.mu.Lock()
	defer f.mu.Unlock()

	if existing := f.findExact(data, hash); existing != nil {
		existing.refcount.Add(1)
		return Handle{f: f, p: existing}
	}

	p := f.equipString(data, hash, chunkHint)
	p.refcount.Store(1)
	f.index.ReplaceOrInsert(p)
	f.log.Debug("flyweight: interned new string", zap.Int("size", len(data)), zap.Uint32("hash", hash))
	return Handle{f: f, p: p}
}

// findExact scans the hash-equal run of the index for a byte-exact match.
func (f *Factory) findExact(data []byte, hash uint32) *placeholder {
	pivot := &placeholder{hash: hash}
	var found *placeholder
	f.index.AscendGreaterOrEqual(pivot, func(item *placeholder) bool {
		if item.hash != hash {
			return false
		}
		if item.isEmpty() {
			return true
		}
		if item.used == len(data) && bytes.Equal(item.bytes(), data) {
			found = item
			return false
		}
		return true
	})
	return found
}

// equipString finds or creates a placeholder big enough for data and
// writes data into it, per spec §4.3's intern algorithm steps 4-7.
func (f *Factory) equipString(data []byte, hash uint32, chunkHint int) *placeholder {
	needed := alignSize(len(data))
	p := f.distributeIdle(needed)
	if p == nil {
		p = f.createChunk(needed, chunkHint)
	}
	copy(p.chunk.data[p.offset:p.offset+needed], data)
	p.used = len(data)
	p.hash = hash
	return p
}

// distributeIdle finds the smallest free placeholder of at least size
// bytes without allocating a new chunk, splitting it if there's a
// leftover remainder. Returns nil if no chunk has room.
func (f *Factory) distributeIdle(size int) *placeholder {
	pivot := &placeholder{hash: emptyHash, size: size}
	var result *placeholder
	f.index.AscendGreaterOrEqual(pivot, func(item *placeholder) bool {
		if item.hash != emptyHash {
			return false
		}
		f.index.Delete(item)
		if item.size == size {
			item.seq = f.counter.Next()
			result = item
			return false
		}
		back := &placeholder{
			chunk: item.chunk, offset: item.offset + size,
			size: item.size - size, hash: emptyHash, seq: f.counter.Next(),
		}
		item.size = size
		item.seq = f.counter.Next()
		item.chunk.spliceAfter(item, back)
		f.index.ReplaceOrInsert(back)
		result = item
		return false
	})
	return result
}

// chunkGranularity is the unit new chunk sizes are rounded up to, giving
// the slab a power-of-two-ish footprint per spec §3.6.
const chunkGranularity = 64

func roundUpChunk(n int) int {
	size := chunkGranularity
	for size < n {
		size *= 2
	}
	return size
}

// createChunk allocates a fresh slab sized to fit at least `size` bytes
// (or chunkHint/the factory's reserved default, whichever is larger),
// carving the first placeholder from its front and keeping any leftover
// as a free placeholder.
func (f *Factory) createChunk(size int, chunkHint int) *placeholder {
	base := f.reserved
	if chunkHint > 0 {
		base = chunkHint
	}
	capacity := size
	if alignSize(base) > capacity {
		capacity = alignSize(base)
	}
	capacity = roundUpChunk(capacity)

	c := &chunk{data: make([]byte, capacity)}
	front := &placeholder{chunk: c, offset: 0, size: size, seq: f.counter.Next()}
	c.placeholders = []*placeholder{front}
	if capacity > size {
		back := &placeholder{
			chunk: c, offset: size, size: capacity - size,
			hash: emptyHash, seq: f.counter.Next(),
		}
		c.placeholders = append(c.placeholders, back)
		f.index.ReplaceOrInsert(back)
	}
	f.chunks = append(f.chunks, c)
	return front
}

// CountHash counts placeholders (live strings and free fields alike)
// carrying the given hash, matching the source's count_hash (which
// always reports at least 1 for the reserved empty hash).
func (f *Factory) CountHash(hash uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	if hash == emptyHash {
		count = 1
	}
	pivot := &placeholder{hash: hash}
	f.index.AscendGreaterOrEqual(pivot, func(item *placeholder) bool {
		if item.hash != hash {
			return false
		}
		count++
		return true
	})
	return count
}

// CollectGarbage sweeps unreferenced strings into free placeholders,
// coalesces adjacent free placeholders within each chunk, drops chunks
// that became wholly free, and rebuilds the hash index — the Go
// equivalent of the source's collect_garbage followed by its trailing
// std::sort (see DESIGN.md for why a full rebuild replaces delete/
// reinsert bookkeeping here).
func (f *Factory) CollectGarbage() {
	f.mu.Lock()
	defer f.mu.Unlock()

	surviving := f.chunks[:0]
	for _, c := range f.chunks {
		f.collectChunkGarbage(c)
		if c.isWhollyEmpty() {
			continue
		}
		surviving = append(surviving, c)
	}
	f.chunks = surviving

	rebuilt := btree.NewG(32, lessPlaceholder)
	count := 0
	for _, c := range f.chunks {
		for _, p := range c.placeholders {
			rebuilt.ReplaceOrInsert(p)
			count++
		}
	}
	f.index = rebuilt
	f.log.Debug("flyweight: collected garbage",
		zap.Int("chunks", len(f.chunks)), zap.Int("placeholders", count))
}

// collectChunkGarbage walks one chunk front-to-back, converting
// unreferenced placeholders into free fields and merging runs of
// adjacent free fields into one, per spec §4.3 Compaction.
func (f *Factory) collectChunkGarbage(c *chunk) {
	merged := c.placeholders[:0]
	var prevEmpty *placeholder
	for _, p := range c.placeholders {
		if p.refcount.Load() > 0 {
			prevEmpty = nil
			merged = append(merged, p)
			continue
		}
		if prevEmpty != nil {
			prevEmpty.size += p.size
			continue
		}
		if !p.isEmpty() {
			p.hash = emptyHash
			p.seq = f.counter.Next()
		}
		prevEmpty = p
		merged = append(merged, p)
	}
	c.placeholders = merged
}
