package archive

import "math"

// readImmediate extracts the 28-bit payload of an immediate tag, sign
// extending it when signed is true (a NEGATIVE_IMMEDIATE value is always
// negative: the four bits the format nibble occupies are set to ones
// before the word is read as a signed 32-bit value, per spec §6.1 and the
// source's read_immediate_numerics).
func readImmediate(t tag, signed bool) int64 {
	payload := uint32(t.payload())
	if !signed {
		return int64(payload)
	}
	sign := uint32(tagFormatMax) << tagFormatPosition
	return int64(int32(payload | sign))
}

func (a *Archive) body32(t tag) (uint32, bool) {
	w, ok := a.wordAt(a.bodyIter(t))
	return w, ok
}

func (a *Archive) body64(t tag) (uint64, bool) {
	base := a.bodyIter(t)
	lo, ok := a.wordAt(base)
	if !ok {
		return 0, false
	}
	hi, ok := a.wordAt(base + 1)
	if !ok {
		return 0, false
	}
	return uint64(lo) | uint64(hi)<<32, true
}

// numericKind tags which native representation a tag's stored numeric
// value was read into, before any requested-type cast is applied.
type numericKind int8

const (
	numericUnsigned numericKind = iota
	numericSigned
	numericFloat
)

// rawNumeric reads i's stored value into its own native representation,
// with no cast toward whatever type the caller will eventually request.
// ok is false only when i does not point at a numeric format at all (or
// its body word is out of bounds); it says nothing about whether a later
// cast of the value will be exact.
func (a *Archive) rawNumeric(i Iter) (kind numericKind, u uint64, s int64, f float64, ok bool) {
	t := a.tagAt(i)
	switch t.format() {
	case formatUnsignedImmediate:
		return numericUnsigned, uint64(readImmediate(t, false)), 0, 0, true
	case formatUnsigned32:
		w, ok2 := a.body32(t)
		if !ok2 {
			return 0, 0, 0, 0, false
		}
		return numericUnsigned, uint64(w), 0, 0, true
	case formatUnsigned64:
		w, ok2 := a.body64(t)
		if !ok2 {
			return 0, 0, 0, 0, false
		}
		return numericUnsigned, w, 0, 0, true
	case format(KindBoolean):
		return numericUnsigned, uint64(t.payload() & 1), 0, 0, true
	case formatNegativeImmediate:
		return numericSigned, 0, readImmediate(t, true), 0, true
	case formatNegative32:
		w, ok2 := a.body32(t)
		if !ok2 {
			return 0, 0, 0, 0, false
		}
		return numericSigned, 0, int64(int32(w)), 0, true
	case formatNegative64:
		w, ok2 := a.body64(t)
		if !ok2 {
			return 0, 0, 0, 0, false
		}
		return numericSigned, 0, int64(w), 0, true
	case formatFloating32:
		w, ok2 := a.body32(t)
		if !ok2 {
			return 0, 0, 0, 0, false
		}
		return numericFloat, 0, 0, float64(math.Float32frombits(w)), true
	case formatFloating64:
		w, ok2 := a.body64(t)
		if !ok2 {
			return 0, 0, 0, 0, false
		}
		return numericFloat, 0, 0, math.Float64frombits(w), true
	default:
		return 0, 0, 0, 0, false
	}
}

// Uint reads a value as an unsigned integer. It succeeds (ok=true) for
// any numeric format, including Boolean (0 or 1), casting unconditionally
// the way the source's read_argument_numerics does; exact reports
// whether that cast round-trips without loss or sign change, matching
// spec §4.2's read_numeric<T> -> {exact, value} contract. It fails
// (ok=false) only when i does not point at a numeric format at all.
func (a *Archive) Uint(i Iter) (value uint64, exact bool, ok bool) {
	kind, u, s, f, ok := a.rawNumeric(i)
	if !ok {
		return 0, false, false
	}
	switch kind {
	case numericUnsigned:
		return u, true, true
	case numericSigned:
		return uint64(s), s >= 0, true
	default:
		out := uint64(f)
		return out, float64(out) == f && f >= 0, true
	}
}

// Int reads a value as a signed integer, casting unconditionally from
// whatever numeric format i holds; exact reports whether the cast
// round-trips without loss or sign change (an Unsigned value that
// overflows int64 is still returned, just with exact=false, mirroring
// the source's read_argument_numerics sign check rather than discarding
// it). It fails (ok=false) only when i is not a numeric format at all.
func (a *Archive) Int(i Iter) (value int64, exact bool, ok bool) {
	kind, u, s, f, ok := a.rawNumeric(i)
	if !ok {
		return 0, false, false
	}
	switch kind {
	case numericUnsigned:
		out := int64(u)
		return out, out >= 0, true
	case numericSigned:
		return s, true, true
	default:
		out := int64(f)
		return out, float64(out) == f, true
	}
}

// Float reads a value as a double, succeeding for any numeric format (the
// source's get_numerics<double> path) including Boolean; exact reports
// whether the integer-to-float cast round-trips without loss.
func (a *Archive) Float(i Iter) (value float64, exact bool, ok bool) {
	kind, u, s, f, ok := a.rawNumeric(i)
	if !ok {
		return 0, false, false
	}
	switch kind {
	case numericFloat:
		return f, true, true
	case numericUnsigned:
		out := float64(u)
		return out, uint64(out) == u, true
	default:
		out := float64(s)
		return out, int64(out) == s, true
	}
}

// BoolState reads a value as a tri-state: 1 means true, 0 means false, and a
// negative return means i does not point at a Boolean, matching the
// source's get_boolean_state.
func (a *Archive) BoolState(i Iter) int {
	t := a.tagAt(i)
	if t.format() != format(KindBoolean) {
		return -1
	}
	if t.payload()&1 != 0 {
		return 1
	}
	return 0
}

// Bool reads a value as a bool, returning def if i does not point at a
// Boolean.
func (a *Archive) Bool(i Iter, def bool) bool {
	switch a.BoolState(i) {
	case 1:
		return true
	case 0:
		return false
	default:
		return def
	}
}
