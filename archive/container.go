package archive

// containerHeaderWords is the size of a container_header: one size word
// ahead of its child tag words.
const containerHeaderWords = 1

// NoIndex is returned by ContainerIndex when the lookup fails.
const NoIndex = ^uint32(0)

func (a *Archive) containerHeaderAt(i Iter) (size uint32, body Iter, ok bool) {
	t := a.tagAt(i)
	switch t.format() {
	case format(KindArray), format(KindMap):
	default:
		return 0, 0, false
	}
	body = a.bodyIter(t)
	sizeW, ok := a.wordAt(body)
	return sizeW, body, ok
}

// IsContainer reports whether i points at an Array or Map.
func (a *Archive) IsContainer(i Iter) bool {
	switch a.tagAt(i).format() {
	case format(KindArray), format(KindMap):
		return true
	default:
		return false
	}
}

// ContainerSize returns the number of elements a container holds, or 0 if
// i does not point at a container.
func (a *Archive) ContainerSize(i Iter) int {
	size, _, ok := a.containerHeaderAt(i)
	if !ok {
		return 0
	}
	return int(size)
}

// ContainerAt returns the iterator for the index-th element of the
// container i points at, or NoIter if index is out of range.
func (a *Archive) ContainerAt(i Iter, index int) Iter {
	size, body, ok := a.containerHeaderAt(i)
	if !ok || index < 0 || uint32(index) >= size {
		return NoIter
	}
	return body + containerHeaderWords + Iter(index)
}

// ContainerIndex returns the index of element within the container i, or
// NoIndex if element does not belong to that container.
func (a *Archive) ContainerIndex(i Iter, element Iter) uint32 {
	size, body, ok := a.containerHeaderAt(i)
	if !ok {
		return NoIndex
	}
	begin := body + containerHeaderWords
	end := begin + Iter(size)
	if element < begin || element >= end {
		return NoIndex
	}
	return uint32(element - begin)
}

// Slice is a half-open [Begin, End) range of element iterators within one
// container, returned by ContainerSlice and walked with AdvanceIter.
type Slice struct {
	Begin, End Iter
}

// Valid reports whether the slice holds at least one element.
func (s Slice) Valid() bool { return s.Begin < s.End }

// ContainerSlice returns the [frontOffset, size+backOffset) range of a
// container's elements. A negative frontOffset counts back from the end;
// a non-positive backOffset counts back from the end too (0 means "up to
// the last element"), matching the source's get_container_slice.
func (a *Archive) ContainerSlice(i Iter, frontOffset, backOffset int) Slice {
	size, body, ok := a.containerHeaderAt(i)
	if !ok {
		return Slice{NoIter, NoIter}
	}
	begin := body + containerHeaderWords + Iter(frontOffset)
	end := body + containerHeaderWords + Iter(backOffset)
	if frontOffset < 0 {
		begin += Iter(size)
	}
	if backOffset <= 0 {
		end += Iter(size)
	}
	if begin < end {
		return Slice{begin, end}
	}
	return Slice{NoIter, NoIter}
}

// AdvanceIter steps an element iterator within slice by count (negative
// steps back), returning NoIter if the result would leave the slice.
func AdvanceIter(slice Slice, i Iter, count int) Iter {
	if !slice.Valid() {
		return NoIter
	}
	next := i + Iter(count)
	if slice.Begin <= next && next < slice.End {
		return next
	}
	return NoIter
}

// mapKeyContainer returns the iterator for the key container paired with
// a map's value container: it immediately follows the value container's
// child words, per the source's make_key_container_tag.
func (a *Archive) mapKeyContainer(mapIter Iter) (Iter, bool) {
	size, body, ok := a.containerHeaderAt(mapIter)
	if !ok || a.tagAt(mapIter).format() != format(KindMap) {
		return 0, false
	}
	keyBody := body + Iter(size) + containerHeaderWords
	return keyBody, true
}

// MapKeyAt returns the iterator for the key paired with the index-th
// value of the map i points at.
func (a *Archive) MapKeyAt(i Iter, index int) Iter {
	keyBody, ok := a.mapKeyContainer(i)
	if !ok {
		return NoIter
	}
	keySize, ok := a.wordAt(keyBody)
	if !ok || index < 0 || uint32(index) >= keySize {
		return NoIter
	}
	return keyBody + containerHeaderWords + Iter(index)
}

// MapKeyFor returns the iterator for the key corresponding to a value
// iterator previously obtained from the same map.
func (a *Archive) MapKeyFor(mapIter Iter, valueIter Iter) Iter {
	_, valueBody, ok := a.containerHeaderAt(mapIter)
	if !ok {
		return NoIter
	}
	valueBegin := valueBody + containerHeaderWords
	if valueIter < valueBegin {
		return NoIter
	}
	return a.MapKeyAt(mapIter, int(valueIter-valueBegin))
}
