package reservoir

import "sort"

// emptyFieldLess orders empty fields by size ascending then position
// ascending, matching the source's empty_field_less comparator.
func emptyFieldLess(a, b emptyField) bool {
	if a.size != b.size {
		return a.size < b.size
	}
	return a.position < b.position
}

// insertEmptyField inserts a new free field into a sorted free list,
// keeping the (size, position) order. Returns false (and leaves the list
// untouched) when position exceeds PositionMask; size is not checked.
func insertEmptyField[ChunkKey comparable](c *chunk[ChunkKey], position, size uint32) bool {
	if size == 0 {
		return true // a zero-length remainder is simply dropped (SPEC_FULL.md §"Supplemented features").
	}
	if position > PositionMask {
		return false
	}
	f := emptyField{position: position, size: size}
	i := sort.Search(len(c.emptyFields), func(i int) bool {
		return !emptyFieldLess(c.emptyFields[i], f)
	})
	c.emptyFields = append(c.emptyFields, emptyField{})
	copy(c.emptyFields[i+1:], c.emptyFields[i:])
	c.emptyFields[i] = f
	return true
}

// reuseEmptyField consumes (fully or partially) the free field at index
// i, returning the bit position at which the requested size now lives.
// Any unused tail becomes a fresh, re-sorted free field.
func reuseEmptyField[ChunkKey comparable](c *chunk[ChunkKey], size uint32, i int) uint32 {
	f := c.emptyFields[i]
	c.emptyFields = append(c.emptyFields[:i], c.emptyFields[i+1:]...)
	if size < f.size {
		insertEmptyField(c, f.position+size, f.size-size)
	}
	return f.position
}

// growAndAllocate appends ceil(size/BlockBits) zero-initialized blocks to
// the chunk and carves the requested field from the new tail, returning
// the allocated position and whether it was within bounds.
func growAndAllocate[ChunkKey comparable](c *chunk[ChunkKey], size uint32) (uint32, bool) {
	position := uint32(len(c.blocks)) * BlockBits
	if position > PositionMask {
		return 0, false
	}
	addBlocks := (size + BlockBits - 1) / BlockBits
	c.blocks = append(c.blocks, make([]uint64, addBlocks)...)
	addSize := addBlocks * BlockBits
	if size < addSize {
		insertEmptyField(c, position+size, addSize-size)
	}
	return position, true
}

// allocateField is the packing algorithm of spec §4.1: reuse the
// smallest sufficiently-large free field, or grow the chunk.
func allocateField[ChunkKey comparable](c *chunk[ChunkKey], size uint32) (uint32, bool) {
	i := sort.Search(len(c.emptyFields), func(i int) bool {
		return c.emptyFields[i].size >= size
	})
	if i < len(c.emptyFields) {
		return reuseEmptyField(c, size, i), true
	}
	return growAndAllocate(c, size)
}
