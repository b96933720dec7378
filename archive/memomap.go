package archive

import lru "github.com/hashicorp/golang-lru/v2"

// mapLookupKey identifies a single MapValue(i, key) call against one
// Archive: the map's own position plus every comparable field of
// MapKey, including its raw bytes (converted to string so the key stays
// hashable) rather than just its hash, so two different string/extended
// keys that happen to share a 32-bit hash can never collide in the
// cache and return each other's cached result.
type mapLookupKey struct {
	mapIter Iter
	format  format
	bits32  uint32
	bits64  uint64
	kind    uint32
	raw     string
}

func lookupKeyOf(mapIter Iter, key MapKey) mapLookupKey {
	return mapLookupKey{
		mapIter: mapIter,
		format:  key.format,
		bits32:  key.bits32,
		bits64:  key.bits64,
		kind:    key.kind,
		raw:     string(key.raw),
	}
}

// MemoMapValue memoizes MapValue lookups against one Archive with an
// LRU cache, since an Archive never mutates after Load (spec §5) and
// rule evaluation commonly repeats the same (map, key) lookup many
// times. Grounded on SPEC_FULL.md's DOMAIN STACK entry for
// github.com/hashicorp/golang-lru/v2.
type MemoMapValue struct {
	archive *Archive
	cache   *lru.Cache[mapLookupKey, Iter]
}

// defaultMemoSize is a modest working-set size for typical rule-table
// archives; callers with larger maps can size their own cache via
// NewMemoMapValueSize.
const defaultMemoSize = 256

// NewMemoMapValue wraps a with an LRU cache of defaultMemoSize entries.
func NewMemoMapValue(a *Archive) *MemoMapValue {
	return NewMemoMapValueSize(a, defaultMemoSize)
}

// NewMemoMapValueSize wraps a with an LRU cache holding up to size
// entries.
func NewMemoMapValueSize(a *Archive, size int) *MemoMapValue {
	if size <= 0 {
		size = defaultMemoSize
	}
	cache, _ := lru.New[mapLookupKey, Iter](size)
	return &MemoMapValue{archive: a, cache: cache}
}

// MapValue returns a.MapValue(i, key), serving a cached result when
// this exact (i, key) pair was looked up before.
func (m *MemoMapValue) MapValue(i Iter, key MapKey) Iter {
	lk := lookupKeyOf(i, key)
	if v, ok := m.cache.Get(lk); ok {
		return v
	}
	v := m.archive.MapValue(i, key)
	m.cache.Add(lk, v)
	return v
}
