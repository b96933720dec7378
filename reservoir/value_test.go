package reservoir

import "testing"

func TestValueKindAccessors(t *testing.T) {
	if Empty().Kind() != KindEmpty {
		t.Fatal("Empty() should report KindEmpty")
	}
	if _, ok := Bool(true).AsUnsigned(); ok {
		t.Fatal("a Bool value should not answer AsUnsigned")
	}
	if v, ok := Unsigned(7).AsUnsigned(); !ok || v != 7 {
		t.Fatal("AsUnsigned round-trip failed")
	}
	if v, ok := Signed(-7).AsSigned(); !ok || v != -7 {
		t.Fatal("AsSigned round-trip failed")
	}
	if v, ok := Float(2.5).AsFloat(); !ok || v != 2.5 {
		t.Fatal("AsFloat round-trip failed")
	}
}

func TestVarietySizeAndKind(t *testing.T) {
	cases := []struct {
		v    Variety
		size uint32
		kind Kind
	}{
		{VarietyEmpty, 0, KindEmpty},
		{VarietyBool, 1, KindBool},
		{VarietyFloat, FloatBits, KindFloat},
		{8, 8, KindUnsigned},
		{64, 64, KindUnsigned},
		{-8, 8, KindSigned},
		{-64, 64, KindSigned},
	}
	for _, c := range cases {
		if got := Size(c.v); got != c.size {
			t.Errorf("Size(%d) = %d, want %d", c.v, got, c.size)
		}
		if got := KindOf(c.v); got != c.kind {
			t.Errorf("KindOf(%d) = %v, want %v", c.v, got, c.kind)
		}
	}
}
