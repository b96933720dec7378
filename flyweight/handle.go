package flyweight

import "bytes"

// Handle is a strong reference to an interned string. The zero Handle
// represents the empty string and never needs releasing. Grounded on
// original_source's flyweight_string (the "handle" half of
// flyweight_factory.hpp's pair), adapted to Go's explicit Release model
// in place of the source's shared_ptr-style destructor.
type Handle struct {
	f *Factory
	p *placeholder
}

// Empty reports whether h holds no string (either the zero Handle, or a
// handle that was interned from "").
func (h Handle) Empty() bool {
	return h.p == nil
}

// Data returns the interned bytes. Callers must not mutate the result;
// it aliases the factory's internal chunk storage.
func (h Handle) Data() []byte {
	if h.p == nil {
		return nil
	}
	return h.p.bytes()
}

// Size returns the interned string's length in bytes.
func (h Handle) Size() int {
	if h.p == nil {
		return 0
	}
	return h.p.used
}

// Hash returns the string's FNV-1 hash, or the reserved empty hash for
// the empty Handle.
func (h Handle) Hash() uint32 {
	if h.p == nil {
		return emptyHash
	}
	return h.p.hash
}

// Clone returns a new strong Handle to the same string, bumping the
// refcount. The original is unaffected and must still be Released.
func (h Handle) Clone() Handle {
	if h.p == nil {
		return h
	}
	h.p.refcount.Add(1)
	return h
}

// Release drops this handle's reference. Once every Handle referencing a
// string is released, the string becomes eligible for reclamation by the
// next CollectGarbage. Release is idempotent-unsafe like a destructor:
// calling it twice on copies of the same Handle double-decrements, so
// callers should treat a Handle as consumed after Release.
func (h Handle) Release() {
	if h.p == nil {
		return
	}
	h.p.refcount.Add(-1)
}

// Weak returns a WeakHandle that can outlive this strong reference
// without itself keeping the string alive.
func (h Handle) Weak() WeakHandle {
	if h.p == nil {
		return WeakHandle{}
	}
	return WeakHandle{f: h.f, p: h.p, seq: h.p.seq}
}

// Compare orders two handles by (hash, size, bytes), matching the
// factory's own index order followed by a byte-exact tiebreak.
func (h Handle) Compare(o Handle) int {
	ha, hb := h.Hash(), o.Hash()
	if ha != hb {
		if ha < hb {
			return -1
		}
		return 1
	}
	sa, sb := h.Size(), o.Size()
	if sa != sb {
		if sa < sb {
			return -1
		}
		return 1
	}
	return bytes.Compare(h.Data(), o.Data())
}

// WeakHandle references an interned string without keeping it alive.
// Grounded on the source's weak_ptr-holding flyweight handle variant;
// this port substitutes a generation counter for weak_ptr's control
// block, since placeholders are plain structs with no shared ownership
// machinery of their own.
type WeakHandle struct {
	f   *Factory
	p   *placeholder
	seq uint64
}

// Empty reports whether w was ever bound to a string.
func (w WeakHandle) Empty() bool {
	return w.p == nil
}

// Resolve attempts to upgrade w to a strong Handle. It fails if the
// underlying slot was reclaimed (by CollectGarbage or by reuse after
// every strong reference was released) since w was created.
func (w WeakHandle) Resolve() (Handle, bool) {
	if w.p == nil {
		return Handle{}, true
	}
	w.f.mu.Lock()
	defer w.f.mu.Unlock()
	if w.p.seq != w.seq || w.p.refcount.Load() <= 0 {
		return Handle{}, false
	}
	w.p.refcount.Add(1)
	return Handle{f: w.f, p: w.p}, true
}
