package flyweight

import "testing"

func TestInternDeduplicates(t *testing.T) {
	f := New(DefaultConfig())
	a := f.Intern("hello", 0)
	b := f.Intern("hello", 0)
	if a.Data() == nil || string(a.Data()) != "hello" {
		t.Fatalf("unexpected data %q", a.Data())
	}
	if a.p != b.p {
		t.Fatalf("expected interning to return the same placeholder")
	}
	if f.CountHash(a.Hash()) != 1 {
		t.Fatalf("expected exactly one live placeholder for hash %d", a.Hash())
	}
	a.Release()
	b.Release()
}

func TestInternDistinctStrings(t *testing.T) {
	f := New(DefaultConfig())
	a := f.Intern("foo", 0)
	b := f.Intern("bar", 0)
	if a.p == b.p {
		t.Fatalf("distinct strings must not share a placeholder")
	}
	if string(a.Data()) != "foo" || string(b.Data()) != "bar" {
		t.Fatalf("data mismatch: %q %q", a.Data(), b.Data())
	}
	a.Release()
	b.Release()
}

func TestEmptyStringIsZeroHandle(t *testing.T) {
	f := New(DefaultConfig())
	h := f.Intern("", 0)
	if !h.Empty() {
		t.Fatalf("expected empty handle")
	}
	if h.Hash() != emptyHash {
		t.Fatalf("expected empty handle to report the reserved empty hash")
	}
	if f.Stats().ChunkCount != 0 {
		t.Fatalf("interning empty string must not allocate a chunk")
	}
}

func TestCloneIncrementsRefcount(t *testing.T) {
	f := New(DefaultConfig())
	a := f.Intern("clone-me", 0)
	b := a.Clone()
	a.Release()
	if string(b.Data()) != "clone-me" {
		t.Fatalf("clone lost data: %q", b.Data())
	}
	b.Release()
}

func TestWeakHandleResolvesWhileAlive(t *testing.T) {
	f := New(DefaultConfig())
	strong := f.Intern("weak-target", 0)
	weak := strong.Weak()

	resolved, ok := weak.Resolve()
	if !ok {
		t.Fatalf("expected resolve to succeed while a strong ref is held")
	}
	if string(resolved.Data()) != "weak-target" {
		t.Fatalf("resolved data mismatch: %q", resolved.Data())
	}
	resolved.Release()
	strong.Release()
}

func TestWeakHandleStaleAfterGarbageCollection(t *testing.T) {
	f := New(DefaultConfig())
	strong := f.Intern("reclaim-me", 0)
	weak := strong.Weak()
	strong.Release()

	f.CollectGarbage()

	// GC has already bumped the released placeholder's generation (and
	// dropped its wholly free chunk); re-interning the same text must not
	// revive the old weak handle.
	other := f.Intern("reclaim-me", 0)
	defer other.Release()

	if _, ok := weak.Resolve(); ok {
		t.Fatalf("expected stale weak handle to fail resolution after GC reclaimed its slot")
	}
}

func TestCollectGarbageReclaimsHashCount(t *testing.T) {
	f := New(DefaultConfig())
	h := f.Intern("transient", 0)
	hash := h.Hash()
	if f.CountHash(hash) != 1 {
		t.Fatalf("expected one live placeholder before release")
	}
	h.Release()
	f.CollectGarbage()
	if f.CountHash(hash) != 0 {
		t.Fatalf("expected released string's hash count to drop to zero after GC")
	}
}

func TestDistinctSizesShareChunkAfterGC(t *testing.T) {
	f := New(Config{ReservedCapacity: 64})
	a := f.Intern("short", 0)
	b := f.Intern("a-somewhat-longer-string-value", 0)
	a.Release()
	f.CollectGarbage()

	c := f.Intern("new-short", 0)
	defer c.Release()
	defer b.Release()

	if f.Stats().ChunkCount != 1 {
		t.Fatalf("expected the new string to share the surviving chunk, got %d chunks", f.Stats().ChunkCount)
	}
}

func TestHandleCompareOrdersByHashSizeThenBytes(t *testing.T) {
	f := New(DefaultConfig())
	a := f.Intern("alpha", 0)
	b := f.Intern("beta", 0)
	defer a.Release()
	defer b.Release()

	if a.Compare(a) != 0 {
		t.Fatalf("expected a handle to compare equal to itself")
	}
	if a.Compare(b) == 0 {
		t.Fatalf("expected distinct strings to compare unequal")
	}
}
