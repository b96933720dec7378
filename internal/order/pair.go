// Package order provides a reusable two-level sort key, so a caller
// ordering values by more than one field doesn't have to hand-roll the
// tie-break comparison every time.
package order

import "cmp"

// Pair is a two-level sort key: compare A first, then B on ties. The
// flyweight factory's placeholder index nests one Pair inside another
// to get its three-level (hash, size, seq) order.
type Pair[A, B cmp.Ordered] struct {
	A A
	B B
}

// Less reports whether p sorts before o.
func (p Pair[A, B]) Less(o Pair[A, B]) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

// Compare returns -1, 0 or 1 the way sort.Search/slices.BinarySearchFunc
// expect.
func (p Pair[A, B]) Compare(o Pair[A, B]) int {
	if p.A != o.A {
		if p.A < o.A {
			return -1
		}
		return 1
	}
	return cmp.Compare(p.B, o.B)
}
