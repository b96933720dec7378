package message

import "sort"

// listenerHook is one (FunctionKey -> Function) entry of a Listener,
// sorted by FunctionKey. Unlike Dispatcher's Hook, a Listener holds its
// function strongly — it is its own owner, not a subscriber referencing
// someone else's lifetime.
type listenerHook struct {
	key Key
	fn  Function
}

// callFrame records one in-flight call_function invocation, letting a
// reentrant call for the same key find the snapshot already executing
// instead of re-reading (possibly already-removed) listener state.
// Grounded on original_source's function_call, minus its move-semantics
// workaround: Go function values need no "moved out" placeholder to stay
// safe to call while storage elsewhere is mutated, so this port keeps
// only the part of function_call that's an observable behavior — finding
// the in-flight snapshot — and drops the part that's pure C++ plumbing.
type callFrame struct {
	key    Key
	fn     Function
	active bool
}

// Listener is the single-key alternative to Dispatcher: one subscriber
// per function key, strongly owning its callbacks, with an explicit
// forward function for unmatched messages. Grounded on
// original_source/any/message/dispatcher.hpp's nested `listener` class.
type Listener struct {
	key       Key
	threadID  Key
	hooks     []listenerHook // sorted by key
	forward   Function
	callStack []*callFrame
}

// NewListener constructs a Listener identified by key, affine to
// threadID, with an optional forward function for unmatched calls.
func NewListener(key, threadID Key, forward Function) *Listener {
	return &Listener{key: key, threadID: threadID, forward: forward}
}

func (l *Listener) verifyThread(threadID Key) bool {
	return l.threadID == threadID
}

// Key returns this listener's own receiver key.
func (l *Listener) Key() Key {
	return l.key
}

// AddFunction registers fn under functionKey. It fails if functionKey is
// already registered, fn is nil, or called from the wrong thread.
func (l *Listener) AddFunction(threadID, functionKey Key, fn Function) bool {
	if !l.verifyThread(threadID) || fn == nil {
		return false
	}
	i := sort.Search(len(l.hooks), func(i int) bool { return l.hooks[i].key >= functionKey })
	if i < len(l.hooks) && l.hooks[i].key == functionKey {
		return false
	}
	l.hooks = append(l.hooks, listenerHook{})
	copy(l.hooks[i+1:], l.hooks[i:])
	l.hooks[i] = listenerHook{key: functionKey, fn: fn}
	return true
}

// RemoveFunction removes the hook registered under functionKey.
func (l *Listener) RemoveFunction(threadID, functionKey Key) bool {
	if !l.verifyThread(threadID) {
		return false
	}
	i := sort.Search(len(l.hooks), func(i int) bool { return l.hooks[i].key >= functionKey })
	if i >= len(l.hooks) || l.hooks[i].key != functionKey {
		return false
	}
	l.hooks = append(l.hooks[:i], l.hooks[i+1:]...)
	return true
}

// FindFunction reports whether functionKey currently has a registered
// hook.
func (l *Listener) FindFunction(threadID, functionKey Key) bool {
	if !l.verifyThread(threadID) {
		return false
	}
	i := sort.Search(len(l.hooks), func(i int) bool { return l.hooks[i].key >= functionKey })
	return i < len(l.hooks) && l.hooks[i].key == functionKey
}

// SetForwardFunction replaces the forward function, returning false if
// called from the wrong thread.
func (l *Listener) SetForwardFunction(threadID Key, fn Function) bool {
	if !l.verifyThread(threadID) {
		return false
	}
	l.forward = fn
	return true
}

// ResetForward clears the forward function. A replacement for the
// source's buggy move-assignment operator (spec §9 Open Questions: the
// original's `listener::operator=(this_type&&)` is a compile error and
// is not reproduced); this is the explicit method its move-assignment
// would have called.
func (l *Listener) ResetForward(threadID Key) bool {
	return l.SetForwardFunction(threadID, nil)
}

// CallFunction dispatches packet to its matching hook, per §4.4's
// Listener contract: +1 delivered, -1 forwarded, 0 nothing happened.
func (l *Listener) CallFunction(threadID Key, packet Packet) int8 {
	invoice := packet.Suite().Invoice
	if !invoice.VerifyReceiverKey(l.key) {
		return 0
	}
	return l.CallFunctionKey(threadID, packet, invoice.FunctionKey)
}

// CallFunctionKey dispatches packet to the hook registered under
// functionKey specifically, bypassing the receiver-key check
// CallFunction performs first.
func (l *Listener) CallFunctionKey(threadID Key, packet Packet, functionKey Key) int8 {
	if !l.verifyThread(threadID) {
		return 0
	}
	i := sort.Search(len(l.hooks), func(i int) bool { return l.hooks[i].key >= functionKey })
	if i < len(l.hooks) && l.hooks[i].key == functionKey {
		l.invoke(functionKey, l.hooks[i].fn, packet)
		return 1
	}
	if l.forward != nil {
		l.invoke(functionKey, l.forward, packet)
		return -1
	}
	return 0
}

func (l *Listener) invoke(key Key, fn Function, packet Packet) {
	for _, f := range l.callStack {
		if f.key == key && f.active {
			f.fn(packet)
			return
		}
	}
	frame := &callFrame{key: key, fn: fn, active: true}
	l.callStack = append(l.callStack, frame)
	fn(packet)
	frame.active = false
	l.callStack = l.callStack[:len(l.callStack)-1]
}
