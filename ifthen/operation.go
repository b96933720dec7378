package ifthen

import "github.com/psychi/fragments-sub003/reservoir"

// reader is the subset of reservoir.Reservoir a Condition or Action
// needs: read the left-hand key's current value, and (when the operand
// is itself a state reference) read the right-hand key's value too.
type reader[StatusKey comparable] interface {
	GetValue(key StatusKey) reservoir.Value
}

// writer additionally allows an Action to commit its result.
type writer[StatusKey comparable] interface {
	reader[StatusKey]
	SetValue(key StatusKey, v reservoir.Value) bool
}

// Operand is the right-hand side of a Condition or Action: either a
// literal value or a reference to another reservoir key, resolved at
// evaluation time against whatever reservoir the operation is run
// against. This mirrors state_operation's value_/right_state_ pair, but
// keeps the state-key case as its own typed field instead of packing a
// hashed key into the value's bit pattern — Go's StatusKey is already a
// comparable type parameter, so there is nothing to unpack.
type Operand[StatusKey comparable] struct {
	Literal reservoir.Value
	Key     StatusKey
	IsState bool
}

// Value returns the right-hand operand: Literal as-is, or the current
// value of Key read from r when IsState is set.
func (o Operand[StatusKey]) Value(r reader[StatusKey]) reservoir.Value {
	if o.IsState {
		return r.GetValue(o.Key)
	}
	return o.Literal
}

// Condition is the "If" half of an IfThen rule: compare the current
// value at Key against Right using Comparison. Grounded on
// state_operation.hpp's comparison-operator instantiation.
type Condition[StatusKey comparable] struct {
	Key        StatusKey
	Comparison Comparison
	Right      Operand[StatusKey]
}

// Evaluate reads Key's current value from r and compares it against
// Right. ok is false if either side is Empty or the two sides are of
// mismatched Kind.
func (c Condition[StatusKey]) Evaluate(r reader[StatusKey]) (result bool, ok bool) {
	left := r.GetValue(c.Key)
	right := c.Right.Value(r)
	return evalComparison(c.Comparison, left, right)
}

// Action is the "Then" half of an IfThen rule: write the result of
// applying Mutation to Key's current value and Right back into Key.
// Grounded on state_operation.hpp's mutation-operator instantiation.
type Action[StatusKey comparable] struct {
	Key      StatusKey
	Mutation Mutation
	Right    Operand[StatusKey]
}

// Apply computes the mutation's result and stores it at Key via w,
// returning false if the operand kinds mismatch, the mutation is
// undefined for the kind (e.g. Mod on Float), or w rejects the write
// (unregistered key, kind mismatch at the registry).
func (a Action[StatusKey]) Apply(w writer[StatusKey]) bool {
	left := w.GetValue(a.Key)
	right := a.Right.Value(w)
	next, ok := applyMutation(a.Mutation, left, right)
	if !ok {
		return false
	}
	return w.SetValue(a.Key, next)
}
