package reservoir

import "testing"

func newTestReservoir() *Reservoir[int, int] {
	return New[int, int](DefaultConfig())
}

func TestUnsignedBasic(t *testing.T) {
	r := newTestReservoir()
	if !r.RegisterUnsigned(1, 10, 5, 8) {
		t.Fatal("register failed")
	}
	if v, ok := r.GetValue(10).AsUnsigned(); !ok || v != 5 {
		t.Fatalf("got %d %v, want 5", v, ok)
	}
	if !r.SetValue(10, Unsigned(250)) {
		t.Fatal("set failed")
	}
	if v, _ := r.GetValue(10).AsUnsigned(); v != 250 {
		t.Fatalf("got %d, want 250", v)
	}
	if r.GetTransition(10) != 1 {
		t.Fatal("expected transition")
	}
	r.ResetTransitions()
	if r.GetTransition(10) != 0 {
		t.Fatal("expected transition cleared")
	}
	r.ResetTransitions() // idempotent
	if r.GetTransition(10) != 0 {
		t.Fatal("expected transition still cleared")
	}
}

func TestSignedBoundaries(t *testing.T) {
	r := newTestReservoir()
	if !r.RegisterSigned(1, 11, -1, 8) {
		t.Fatal("register failed")
	}
	if v, _ := r.GetValue(11).AsSigned(); v != -1 {
		t.Fatalf("got %d, want -1", v)
	}
	if !r.SetValue(11, Signed(-128)) {
		t.Fatal("set -128 failed")
	}
	if v, _ := r.GetValue(11).AsSigned(); v != -128 {
		t.Fatalf("got %d, want -128", v)
	}
	if !r.SetValue(11, Signed(127)) {
		t.Fatal("set 127 failed")
	}
	if v, _ := r.GetValue(11).AsSigned(); v != 127 {
		t.Fatalf("got %d, want 127", v)
	}
	if r.SetValue(11, Signed(128)) {
		t.Fatal("128 should overflow an 8-bit signed field")
	}
}

func TestFloatBasic(t *testing.T) {
	r := newTestReservoir()
	if !r.RegisterFloat(1, 12, 1.5) {
		t.Fatal("register failed")
	}
	if v, _ := r.GetValue(12).AsFloat(); v != 1.5 {
		t.Fatalf("got %v, want 1.5", v)
	}
	if !r.SetValue(12, Float(-0.25)) {
		t.Fatal("set failed")
	}
	if v, _ := r.GetValue(12).AsFloat(); v != -0.25 {
		t.Fatalf("got %v, want -0.25", v)
	}
}

func TestKindMismatchRejected(t *testing.T) {
	r := newTestReservoir()
	r.RegisterBool(1, 1, true)
	if r.SetValue(1, Float(1)) {
		t.Fatal("bool->float set should fail")
	}
	if r.SetValue(1, Unsigned(1)) {
		t.Fatal("bool->unsigned set should fail")
	}
	if v, ok := r.GetValue(1).AsBool(); !ok || !v {
		t.Fatal("bool state should be unaffected by the rejected writes")
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	r := newTestReservoir()
	if !r.RegisterUnsigned(1, 5, 0, 4) {
		t.Fatal("first register should succeed")
	}
	if r.RegisterUnsigned(1, 5, 0, 4) {
		t.Fatal("duplicate register should fail")
	}
}

func TestNoOpWriteDoesNotSetTransition(t *testing.T) {
	r := newTestReservoir()
	r.RegisterUnsigned(1, 1, 7, 8)
	r.ResetTransitions()
	if !r.SetValue(1, Unsigned(7)) {
		t.Fatal("set should succeed")
	}
	if r.GetTransition(1) != 0 {
		t.Fatal("writing the same bits must not set the transition flag")
	}
}

func TestMissingKey(t *testing.T) {
	r := newTestReservoir()
	if r.GetValue(999).Kind() != KindEmpty {
		t.Fatal("missing key should read Empty")
	}
	if r.GetTransition(999) != -1 {
		t.Fatal("missing key transition should be -1")
	}
	if r.SetValue(999, Unsigned(1)) {
		t.Fatal("set on missing key should fail")
	}
}

func TestPack128SingleBitStates(t *testing.T) {
	r := newTestReservoir()
	for i := 0; i < 128; i++ {
		if !r.RegisterBool(1, i, i%2 == 0) {
			t.Fatalf("register %d failed", i)
		}
	}
	c := r.chunks[1]
	if len(c.blocks) != 2 {
		t.Fatalf("expected 2 blocks for 128 one-bit states, got %d", len(c.blocks))
	}
	for i := 0; i < 128; i++ {
		want := i%2 == 0
		got, _ := r.GetValue(i).AsBool()
		if got != want {
			t.Fatalf("state %d: got %v want %v", i, got, want)
		}
	}
}

func TestWideUnsignedAndSignedCoexistWithoutOverlap(t *testing.T) {
	r := newTestReservoir()
	if !r.RegisterUnsigned(1, 1, 0xffffffffffffffff, 64) {
		t.Fatal("register u64 failed")
	}
	if !r.RegisterSigned(1, 2, -1, 63) {
		t.Fatal("register i63 failed")
	}
	if v, _ := r.GetValue(1).AsUnsigned(); v != 0xffffffffffffffff {
		t.Fatalf("u64 got %x", v)
	}
	if v, _ := r.GetValue(2).AsSigned(); v != -1 {
		t.Fatalf("i63 got %d", v)
	}
}

func TestShrinkToFitPreservesValues(t *testing.T) {
	r := newTestReservoir()
	r.RegisterBool(1, 1, true)
	r.RegisterUnsigned(1, 2, 42, 16)
	r.RegisterSigned(2, 3, -7, 12)
	r.RegisterFloat(2, 4, 3.25)
	r.SetValue(2, Unsigned(99))
	r.ResetTransitions()
	r.SetValue(3, Signed(-8))

	r.ShrinkToFit()

	if v, _ := r.GetValue(1).AsBool(); !v {
		t.Fatal("bool lost")
	}
	if v, _ := r.GetValue(2).AsUnsigned(); v != 99 {
		t.Fatalf("unsigned lost: got %d", v)
	}
	if v, _ := r.GetValue(3).AsSigned(); v != -8 {
		t.Fatalf("signed lost: got %d", v)
	}
	if v, _ := r.GetValue(4).AsFloat(); v != 3.25 {
		t.Fatalf("float lost: got %v", v)
	}
	if r.GetTransition(2) != 0 {
		t.Fatal("transition state not preserved for key 2")
	}
	if r.GetTransition(3) != 1 {
		t.Fatal("transition state not preserved for key 3")
	}
}

func TestRemoveChunk(t *testing.T) {
	r := newTestReservoir()
	r.RegisterBool(1, 1, true)
	r.RegisterBool(2, 2, true)
	if !r.RemoveChunk(1) {
		t.Fatal("remove should succeed")
	}
	if r.RemoveChunk(1) {
		t.Fatal("second remove of the same chunk should fail")
	}
	if r.GetValue(1).Kind() != KindEmpty {
		t.Fatal("state belonging to a removed chunk should read Empty")
	}
	if v, _ := r.GetValue(2).AsBool(); !v {
		t.Fatal("untouched chunk's state should survive")
	}
}
