package archive

import "golang.org/x/crypto/sha3"

// Checksum4 is the first 4 bytes of the SHA3-256 digest of data. It is
// not part of the BINARC wire format (spec §6.1 defines none); it is a
// loader-side integrity check a caller can run over a blob before
// handing it to Load, the same shape as the teacher's checksum4 helper
// in node/p2p/envelope.go.
func Checksum4(data []byte) [4]byte {
	d := sha3.Sum256(data)
	var out [4]byte
	copy(out[:], d[:4])
	return out
}

// VerifyChecksum reports whether data's Checksum4 matches want.
func VerifyChecksum(data []byte, want [4]byte) bool {
	return Checksum4(data) == want
}
