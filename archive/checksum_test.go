package archive

import "testing"

func TestVerifyChecksumAcceptsMatching(t *testing.T) {
	data := []byte("hello binarc")
	sum := Checksum4(data)
	if !VerifyChecksum(data, sum) {
		t.Fatalf("expected matching checksum to verify")
	}
}

func TestVerifyChecksumRejectsTampered(t *testing.T) {
	data := []byte("hello binarc")
	sum := Checksum4(data)
	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0xFF
	if VerifyChecksum(tampered, sum) {
		t.Fatalf("expected tampered data to fail checksum verification")
	}
}
