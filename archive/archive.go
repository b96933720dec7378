// Package archive implements the BINARC reader of spec §3.5/§4.2/§6.1: a
// read-only, zero-copy view over a span of aligned 32-bit words holding a
// tagged-value tree (scalars, strings, arrays, and hash-sorted maps).
package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/edsrzf/mmap-go"
	"go.uber.org/zap"
)

// magicLE is the little-endian encoding of the ASCII sentinel "pbon" that
// word 0 of a BINARC span carries, per spec §6.1.
const magicLE uint32 = 'p' | 'b'<<8 | 'o'<<16 | 'n'<<24

// rootUnitPosition is the fixed word index of the root tag; word 0 is the
// endian/magic sentinel.
const rootUnitPosition = 1

// Iter addresses a single tag word inside an Archive. The zero value is
// NOT a valid iterator; use NoIter (or the result of a failed lookup,
// which is always NoIter) to test for "points at nothing".
type Iter int32

// NoIter is the iterator value returned whenever a lookup or traversal
// fails to find its target.
const NoIter Iter = -1

// Archive is a borrowed, read-only span of word-aligned bytes. It never
// allocates to answer a read: every accessor returns an offset into the
// owning byte slice.
type Archive struct {
	log   *zap.Logger
	words []uint32
	raw   []byte
}

// Config holds the injected dependencies of archive construction, the same
// pattern the reservoir package uses for its Config.
type Config struct {
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Load parses a byte slice holding a BINARC span. The slice's length must
// be a multiple of 4; Load validates the word-0 magic sentinel and returns
// ErrCodeInvalidFormat if either check fails.
func Load(cfg Config, data []byte) (*Archive, error) {
	if len(data)%4 != 0 {
		return nil, newError(ErrCodeInvalidFormat, "length is not a multiple of 4")
	}
	if len(data) < 8 {
		return nil, newError(ErrCodeInvalidFormat, "span too short to hold a sentinel and root tag")
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	if words[0] != magicLE {
		return nil, newError(ErrCodeInvalidFormat, fmt.Sprintf("bad magic sentinel: %#x", words[0]))
	}
	return &Archive{log: cfg.logger(), words: words, raw: data}, nil
}

// LoadFile mmaps path read-only and parses it as a BINARC span. The
// returned Archive borrows the mapping for its lifetime; callers that
// need to release it should keep the *mmap.MMap alongside and Unmap it
// once the Archive is no longer in use.
func LoadFile(cfg Config, f mmapFile) (*Archive, mmap.MMap, error) {
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: mmap: %w", err)
	}
	a, err := Load(cfg, []byte(m))
	if err != nil {
		m.Unmap()
		return nil, nil, err
	}
	return a, m, nil
}

// mmapFile is the subset of *os.File that mmap-go's Map needs; declared
// locally so this package doesn't force an os.File import on every caller
// (tests construct Archives from in-memory byte slices via Load).
type mmapFile interface {
	Fd() uintptr
}

// Root returns the iterator for the span's single root value.
func (a *Archive) Root() Iter {
	return Iter(rootUnitPosition)
}

func (a *Archive) wordAt(i Iter) (uint32, bool) {
	if i < 0 || int(i) >= len(a.words) {
		return 0, false
	}
	return a.words[i], true
}

func (a *Archive) tagAt(i Iter) tag {
	w, ok := a.wordAt(i)
	if !ok {
		return 0
	}
	return tag(w)
}

func (a *Archive) bodyIter(t tag) Iter {
	return Iter(t.payload())
}

// Kind reports the storage format a value iterator points to. An
// out-of-range iterator reports KindNil, matching a nil tag's behavior.
func (a *Archive) Kind(i Iter) Kind {
	return a.tagAt(i).kind()
}

// IsNumeric reports whether i points at any of the Unsigned/Negative/Float
// formats.
func (a *Archive) IsNumeric(i Iter) bool {
	return isNumericFormat(a.tagAt(i).format())
}
