package archive

import (
	"bytes"
	"math"
	"sort"

	"github.com/psychi/fragments-sub003/internal/hashutil"
)

// MapKey is a dictionary search key built from a host value, used to walk
// a map's hash-sorted key array. Construct one with NewBoolKey/NewUintKey/
// NewIntKey/NewFloatKey/NewStringKey/NewExtendedKey and pass it to
// MapValue.
type MapKey struct {
	format format
	hash   uint32
	bits32 uint32
	bits64 uint64
	kind   uint32
	raw    []byte
}

func NewBoolKey(v bool) MapKey {
	var b uint32
	if v {
		b = 1
	}
	return MapKey{format: format(KindBoolean), hash: b, bits32: b}
}

func NewUintKey(v uint64) MapKey {
	if v > math.MaxUint32 {
		return MapKey{format: formatUnsigned64, hash: hashutil.U64(v), bits64: v}
	}
	local := uint32(v)
	f := formatUnsignedImmediate
	if local > tagPayloadMask {
		f = formatUnsigned32
	}
	return MapKey{format: f, hash: hashutil.U32(local), bits32: local}
}

func NewIntKey(v int64) MapKey {
	if v >= 0 {
		return NewUintKey(uint64(v))
	}
	if v < math.MinInt32 {
		return MapKey{format: formatNegative64, hash: hashutil.U64(uint64(v)), bits64: uint64(v)}
	}
	local := uint32(v)
	immediateLimit := uint32(tagFormatMax) << tagFormatPosition
	f := formatNegativeImmediate
	if local < immediateLimit {
		f = formatNegative32
	}
	return MapKey{format: f, hash: hashutil.U32(local), bits32: local}
}

func NewFloatKey(v float64) MapKey {
	if i := int64(v); float64(i) == v {
		return NewIntKey(i)
	}
	if f32 := float32(v); float64(f32) == v {
		bits := math.Float32bits(f32)
		return MapKey{format: formatFloating32, hash: hashutil.U32(bits), bits32: bits}
	}
	bits := math.Float64bits(v)
	return MapKey{format: formatFloating64, hash: hashutil.U64(bits), bits64: bits}
}

func NewStringKey(s string) MapKey {
	data := []byte(s)
	return MapKey{format: format(KindString), hash: hashutil.Bytes(data), raw: data}
}

func NewExtendedKey(data []byte, kind uint32) MapKey {
	return MapKey{format: format(KindExtended), hash: hashutil.Bytes(data), raw: data, kind: kind}
}

// KeyFor builds the MapKey equivalent to whatever value keyArchive's
// keyIter points at, so a key read out of one Archive can look up a value
// in another (or the same) Archive's map — the source's
// get_map_value(map, key_iterator, key_archive) overload.
func KeyFor(keyArchive *Archive, keyIter Iter) (MapKey, bool) {
	t := keyArchive.tagAt(keyIter)
	switch t.format() {
	case format(KindBoolean):
		state := keyArchive.BoolState(keyIter)
		if state < 0 {
			return MapKey{}, false
		}
		return NewBoolKey(state > 0), true
	case formatUnsignedImmediate, formatUnsigned32, formatUnsigned64:
		v, _, ok := keyArchive.Uint(keyIter)
		return NewUintKey(v), ok
	case formatNegativeImmediate, formatNegative32, formatNegative64:
		v, _, ok := keyArchive.Int(keyIter)
		return NewIntKey(v), ok
	case formatFloating32, formatFloating64:
		v, _, ok := keyArchive.Float(keyIter)
		return NewFloatKey(v), ok
	case format(KindString):
		data, _, ok := keyArchive.StringData(keyIter)
		if !ok {
			return MapKey{}, false
		}
		return NewStringKey(string(data)), true
	case format(KindExtended):
		data, kind, _, ok := keyArchive.ExtendedData(keyIter)
		if !ok {
			return MapKey{}, false
		}
		return NewExtendedKey(data, kind), true
	default:
		return MapKey{}, false
	}
}

// getHash returns the precomputed hash of the value an element tag word
// points to, matching the source's get_hash.
func (a *Archive) getHash(t tag) uint32 {
	switch t.format() {
	case format(KindBoolean), formatUnsignedImmediate:
		return t.payload()
	case formatNegativeImmediate:
		return t.payload() | uint32(tagFormatMax)<<tagFormatPosition
	case formatUnsigned32, formatNegative32, formatFloating32:
		w, ok := a.body32(t)
		if !ok {
			return 0xffffffff
		}
		return w
	case format(KindString), format(KindExtended):
		body := a.bodyIter(t)
		hashW, ok := a.wordAt(body + 1)
		if !ok {
			return 0xffffffff
		}
		return hashW
	case formatUnsigned64, formatNegative64, formatFloating64:
		w, ok := a.body64(t)
		if !ok {
			return 0xffffffff
		}
		return hashutil.U64(w)
	default:
		return 0xffffffff
	}
}

func (a *Archive) compareHash(key MapKey, element Iter) int {
	right := a.getHash(a.tagAt(element))
	switch {
	case key.hash < right:
		return -1
	case right < key.hash:
		return 1
	}
	leftFormat := uint8(key.format)
	rightFormat := uint8(a.tagAt(element).format())
	switch {
	case leftFormat < rightFormat:
		return -1
	case rightFormat < leftFormat:
		return 1
	default:
		return 0
	}
}

// compareValue confirms byte-exact equality between key and the element a
// hash-equal candidate points to, returning 0 only on a genuine match.
// Spec §9 flags the source's raw-payload comparator as assert-only
// (debug-build) protection against hash collisions; this port always
// performs the full comparison rather than trusting the hash alone.
func (a *Archive) compareValue(key MapKey, element Iter) int {
	t := a.tagAt(element)
	if format(t.format()) != key.format {
		return 1
	}
	switch t.format() {
	case format(KindBoolean), formatUnsignedImmediate:
		if t.payload() != key.bits32 {
			return 1
		}
		return 0
	case formatNegativeImmediate:
		v := t.payload() | uint32(tagFormatMax)<<tagFormatPosition
		if v != key.bits32 {
			return 1
		}
		return 0
	case formatUnsigned32, formatNegative32, formatFloating32:
		w, ok := a.body32(t)
		if !ok || w != key.bits32 {
			return 1
		}
		return 0
	case formatUnsigned64, formatNegative64, formatFloating64:
		w, ok := a.body64(t)
		if !ok || w != key.bits64 {
			return 1
		}
		return 0
	case format(KindString):
		data, hash, ok := a.StringData(element)
		if !ok || hash != key.hash || len(data) != len(key.raw) {
			return 1
		}
		if !bytes.Equal(data, key.raw) {
			return 1
		}
		return 0
	case format(KindExtended):
		data, kind, hash, ok := a.ExtendedData(element)
		if !ok || hash != key.hash || kind != key.kind || len(data) != len(key.raw) {
			return 1
		}
		if !bytes.Equal(data, key.raw) {
			return 1
		}
		return 0
	default:
		return 1
	}
}

// MapValue looks up key in the map i points at: a binary search over the
// key array narrows to the first hash-equal candidate, then a linear scan
// over the run of equal hashes confirms an exact match, matching the
// source's lower_bound-then-linear-scan get_map_value.
func (a *Archive) MapValue(i Iter, key MapKey) Iter {
	_, valueBody, ok := a.containerHeaderAt(i)
	if !ok || a.tagAt(i).format() != format(KindMap) {
		return NoIter
	}
	keyBody, ok := a.mapKeyContainer(i)
	if !ok {
		return NoIter
	}
	keySize, ok := a.wordAt(keyBody)
	if !ok {
		return NoIter
	}
	keyBegin := keyBody + containerHeaderWords
	n := int(keySize)
	start := sort.Search(n, func(idx int) bool {
		return a.compareHash(key, keyBegin+Iter(idx)) <= 0
	})
	for idx := start; idx < n; idx++ {
		elem := keyBegin + Iter(idx)
		cmp := a.compareHash(key, elem)
		if cmp < 0 {
			break
		}
		if cmp == 0 && a.compareValue(key, elem) == 0 {
			return valueBody + containerHeaderWords + Iter(idx)
		}
	}
	return NoIter
}
