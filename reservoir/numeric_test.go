package reservoir

import "testing"

func TestSignExtendRoundTrip(t *testing.T) {
	cases := []struct {
		v     int64
		width int
	}{
		{-1, 8}, {127, 8}, {-128, 8}, {0, 1}, {-1, 64}, {1<<62 - 1, 63}, {-(1 << 62), 63},
	}
	for _, c := range cases {
		bits := maskSigned(c.v, c.width)
		got := signExtend(bits, c.width)
		if got != c.v {
			t.Fatalf("signExtend(maskSigned(%d,%d)) = %d", c.v, c.width, got)
		}
	}
}

func TestFitsUnsigned(t *testing.T) {
	if !fitsUnsigned(255, 8) {
		t.Fatal("255 should fit in 8 bits")
	}
	if fitsUnsigned(256, 8) {
		t.Fatal("256 should not fit in 8 bits")
	}
	if !fitsUnsigned(^uint64(0), 64) {
		t.Fatal("max u64 should fit in 64 bits")
	}
}

func TestFitsSigned(t *testing.T) {
	if !fitsSigned(-128, 8) || fitsSigned(-129, 8) {
		t.Fatal("8-bit signed range should be [-128,127]")
	}
	if !fitsSigned(127, 8) || fitsSigned(128, 8) {
		t.Fatal("8-bit signed range should be [-128,127]")
	}
}
