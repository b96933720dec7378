package archive

// stringHeaderWords mirrors the source's string_header: a container_header
// (size) followed by a precomputed FNV-1 hash of the string bytes.
const stringHeaderWords = 2 // size, hash

// extendedHeaderWords mirrors the source's extended_header: a string_header
// plus a caller-defined kind tag for the extended byte payload.
const extendedHeaderWords = stringHeaderWords + 1 // size, hash, kind

func (a *Archive) rawBytes(bodyWord Iter, headerWords, size int) ([]byte, bool) {
	start := (int(bodyWord) + headerWords) * 4
	end := start + size
	if start < 0 || end < start || end > len(a.raw) {
		return nil, false
	}
	return a.raw[start:end], true
}

func (a *Archive) stringBody(i Iter) (size, hash uint32, body Iter, ok bool) {
	t := a.tagAt(i)
	if t.format() != format(KindString) {
		return 0, 0, 0, false
	}
	body = a.bodyIter(t)
	sizeW, ok1 := a.wordAt(body)
	hashW, ok2 := a.wordAt(body + 1)
	if !ok1 || !ok2 {
		return 0, 0, 0, false
	}
	return sizeW, hashW, body, true
}

// StringData returns the UTF-8 bytes of the string i points at, and its
// precomputed hash. The second bool is false when i does not point at a
// string.
func (a *Archive) StringData(i Iter) (data []byte, hash uint32, ok bool) {
	size, hash, body, ok := a.stringBody(i)
	if !ok {
		return nil, 0, false
	}
	raw, ok := a.rawBytes(body, stringHeaderWords, int(size))
	if !ok {
		return nil, 0, false
	}
	return raw, hash, true
}

// StringSize returns the byte length of the string i points at, or 0 if i
// does not point at a string.
func (a *Archive) StringSize(i Iter) int {
	size, _, _, ok := a.stringBody(i)
	if !ok {
		return 0
	}
	return int(size)
}

func (a *Archive) extendedBody(i Iter) (size, hash, kind uint32, body Iter, ok bool) {
	t := a.tagAt(i)
	if t.format() != format(KindExtended) {
		return 0, 0, 0, 0, false
	}
	body = a.bodyIter(t)
	sizeW, ok1 := a.wordAt(body)
	hashW, ok2 := a.wordAt(body + 1)
	kindW, ok3 := a.wordAt(body + 2)
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, 0, false
	}
	return sizeW, hashW, kindW, body, true
}

// ExtendedData returns the raw bytes, caller-defined kind tag, and
// precomputed hash of the extended-type value i points at.
func (a *Archive) ExtendedData(i Iter) (data []byte, kind uint32, hash uint32, ok bool) {
	size, hash, kind, body, ok := a.extendedBody(i)
	if !ok {
		return nil, 0, 0, false
	}
	raw, ok := a.rawBytes(body, extendedHeaderWords, int(size))
	if !ok {
		return nil, 0, 0, false
	}
	return raw, kind, hash, true
}

// ExtendedSize returns the byte length of the extended value i points at,
// or 0 if i does not point at one.
func (a *Archive) ExtendedSize(i Iter) int {
	size, _, _, _, ok := a.extendedBody(i)
	if !ok {
		return 0
	}
	return int(size)
}
