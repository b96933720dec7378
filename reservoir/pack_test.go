package reservoir

import "testing"

func TestAllocateFieldGrowsThenReuses(t *testing.T) {
	c := newChunk[int](1, 0, 0)

	pos1, ok := allocateField(c, 40)
	if !ok || pos1 != 0 {
		t.Fatalf("first alloc: pos=%d ok=%v", pos1, ok)
	}
	if len(c.blocks) != 1 {
		t.Fatalf("expected 1 block after a 40-bit alloc, got %d", len(c.blocks))
	}
	if len(c.emptyFields) != 1 || c.emptyFields[0] != (emptyField{position: 40, size: 24}) {
		t.Fatalf("expected a 24-bit leftover at position 40, got %+v", c.emptyFields)
	}

	pos2, ok := allocateField(c, 24)
	if !ok || pos2 != 40 {
		t.Fatalf("second alloc should reuse the leftover exactly: pos=%d ok=%v", pos2, ok)
	}
	if len(c.emptyFields) != 0 {
		t.Fatalf("leftover should be fully consumed, got %+v", c.emptyFields)
	}

	pos3, ok := allocateField(c, 8)
	if !ok || pos3 != 64 {
		t.Fatalf("third alloc should grow a fresh block: pos=%d ok=%v", pos3, ok)
	}
	if len(c.blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(c.blocks))
	}
}

func TestAllocateFieldPrefersSmallestSufficientEmpty(t *testing.T) {
	c := newChunk[int](1, 0, 0)
	insertEmptyField(c, 100, 16)
	insertEmptyField(c, 200, 8)
	insertEmptyField(c, 300, 32)

	pos, ok := allocateField(c, 8)
	if !ok || pos != 200 {
		t.Fatalf("expected to reuse the smallest sufficient field (pos=200), got pos=%d ok=%v", pos, ok)
	}
}

func TestInsertEmptyFieldDropsZeroLength(t *testing.T) {
	c := newChunk[int](1, 0, 0)
	if !insertEmptyField(c, 10, 0) {
		t.Fatal("zero-length insert should report success (no-op)")
	}
	if len(c.emptyFields) != 0 {
		t.Fatal("zero-length field must not be kept")
	}
}

func TestBitsSpanningBlockBoundary(t *testing.T) {
	blocks := make([]uint64, 2)
	setBitsRaw(blocks, 60, 8, 0xab)
	got := getBits(blocks, 60, 8)
	if got != 0xab {
		t.Fatalf("got %x, want ab", got)
	}
}

func TestBitsFullWord(t *testing.T) {
	blocks := make([]uint64, 1)
	setBitsRaw(blocks, 0, 64, 0xdeadbeefcafef00d)
	if getBits(blocks, 0, 64) != 0xdeadbeefcafef00d {
		t.Fatal("full 64-bit word round-trip failed")
	}
}
