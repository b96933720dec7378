package flyweight

// chunk is a contiguous byte slab holding one or more placeholders
// back-to-back, in offset order. Grounded on original_source's
// string_chunk, minus the in-place C++ header embedding (see
// placeholder.go's doc comment).
type chunk struct {
	data         []byte
	placeholders []*placeholder // offset-ordered, covers the whole of data
}

// isWhollyEmpty reports whether the entire chunk is one free placeholder,
// the signal CollectGarbage uses to drop a chunk.
func (c *chunk) isWhollyEmpty() bool {
	return len(c.placeholders) == 1 && c.placeholders[0].isEmpty()
}

// spliceAfter inserts back immediately after front in the offset-ordered
// placeholder list, used when distributeIdle splits a free slot in two.
func (c *chunk) spliceAfter(front, back *placeholder) {
	for i, p := range c.placeholders {
		if p == front {
			rest := append([]*placeholder{back}, c.placeholders[i+1:]...)
			c.placeholders = append(c.placeholders[:i+1], rest...)
			return
		}
	}
}
