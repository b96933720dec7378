// Package ifthen provides the thin operation-record glue of spec §2's
// IfThen/Scenario table: a comparison record (for conditions) and a
// mutation record (for actions), both built atop reservoir.Value and a
// reservoir.Reservoir key lookup. Grounded on
// original_source/scenario_engine/state_operation.hpp, whose single
// state_operation class template is instantiated twice upstream — once
// with a comparison operator for reading state, once with a mutation
// operator for writing it.
package ifthen

import "github.com/psychi/fragments-sub003/reservoir"

// Comparison is the operator of a Condition, read against a state's
// current value.
type Comparison int8

const (
	Equal Comparison = iota
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
)

// Mutation is the operator of an Action, applied to write a state's
// value from its current value and a right-hand operand.
type Mutation int8

const (
	Copy Mutation = iota
	Add
	Sub
	Mult
	Div
	Mod
	Or
	Xor
	And
)

// compareNumeric interprets sign (a -1/0/1 three-way comparison result,
// left vs. right) through cmp.
func compareNumeric(cmp Comparison, sign int) bool {
	a := sign
	switch cmp {
	case Equal:
		return a == 0
	case NotEqual:
		return a != 0
	case Less:
		return a < 0
	case LessEqual:
		return a <= 0
	case Greater:
		return a > 0
	case GreaterEqual:
		return a >= 0
	default:
		return false
	}
}

// compare3 returns -1/0/1 the way the stdlib cmp package does.
func compare3[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// evalComparison compares left against right, both already resolved to
// concrete reservoir.Value instances of matching Kind. A Kind mismatch
// (e.g. Signed against Unsigned) fails rather than silently coercing,
// since the upstream state_value never mixes representations either.
func evalComparison(cmp Comparison, left, right reservoir.Value) (bool, bool) {
	if left.Kind() != right.Kind() {
		return false, false
	}
	switch left.Kind() {
	case reservoir.KindBool:
		lb, _ := left.AsBool()
		rb, _ := right.AsBool()
		switch cmp {
		case Equal:
			return lb == rb, true
		case NotEqual:
			return lb != rb, true
		default:
			return false, false
		}
	case reservoir.KindUnsigned:
		lv, _ := left.AsUnsigned()
		rv, _ := right.AsUnsigned()
		return compareNumeric(cmp, compare3(lv, rv)), true
	case reservoir.KindSigned:
		lv, _ := left.AsSigned()
		rv, _ := right.AsSigned()
		return compareNumeric(cmp, compare3(lv, rv)), true
	case reservoir.KindFloat:
		lv, _ := left.AsFloat()
		rv, _ := right.AsFloat()
		return compareNumeric(cmp, compare3(lv, rv)), true
	default:
		return false, false
	}
}

// applyMutation computes the new value to store at left's key, given
// left's current value and a resolved right-hand operand. Bitwise
// operators (Or/Xor/And) only apply to Unsigned; Copy applies to any
// kind so long as both sides share it.
func applyMutation(mut Mutation, left, right reservoir.Value) (reservoir.Value, bool) {
	if mut == Copy {
		if left.Kind() != right.Kind() {
			return reservoir.Value{}, false
		}
		return right, true
	}
	if left.Kind() != right.Kind() {
		return reservoir.Value{}, false
	}
	switch left.Kind() {
	case reservoir.KindUnsigned:
		lv, _ := left.AsUnsigned()
		rv, _ := right.AsUnsigned()
		switch mut {
		case Add:
			return reservoir.Unsigned(lv + rv), true
		case Sub:
			return reservoir.Unsigned(lv - rv), true
		case Mult:
			return reservoir.Unsigned(lv * rv), true
		case Div:
			if rv == 0 {
				return reservoir.Value{}, false
			}
			return reservoir.Unsigned(lv / rv), true
		case Mod:
			if rv == 0 {
				return reservoir.Value{}, false
			}
			return reservoir.Unsigned(lv % rv), true
		case Or:
			return reservoir.Unsigned(lv | rv), true
		case Xor:
			return reservoir.Unsigned(lv ^ rv), true
		case And:
			return reservoir.Unsigned(lv & rv), true
		}
	case reservoir.KindSigned:
		lv, _ := left.AsSigned()
		rv, _ := right.AsSigned()
		switch mut {
		case Add:
			return reservoir.Signed(lv + rv), true
		case Sub:
			return reservoir.Signed(lv - rv), true
		case Mult:
			return reservoir.Signed(lv * rv), true
		case Div:
			if rv == 0 {
				return reservoir.Value{}, false
			}
			return reservoir.Signed(lv / rv), true
		case Mod:
			if rv == 0 {
				return reservoir.Value{}, false
			}
			return reservoir.Signed(lv % rv), true
		}
	case reservoir.KindFloat:
		lv, _ := left.AsFloat()
		rv, _ := right.AsFloat()
		switch mut {
		case Add:
			return reservoir.Float(lv + rv), true
		case Sub:
			return reservoir.Float(lv - rv), true
		case Mult:
			return reservoir.Float(lv * rv), true
		case Div:
			if rv == 0 {
				return reservoir.Value{}, false
			}
			return reservoir.Float(lv / rv), true
		}
	}
	return reservoir.Value{}, false
}
