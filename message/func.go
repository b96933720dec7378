package message

import "sync/atomic"

// Function is a message receiver callback.
type Function func(Packet)

// funcBox is the shared cell a FuncHandle and its WeakFunc observers
// point at, the Go stand-in for a shared_ptr/weak_ptr control block: the
// pointer itself is never collected out from under a WeakFunc, but Owner
// can mark it expired at any time.
type funcBox struct {
	fn   Function
	live atomic.Bool
}

// FuncHandle is the strong, owning reference to a registered receiver
// function. The dispatcher never holds one of these directly — it only
// ever stores the WeakFunc obtained from Weak(), per spec §9's "back-
// references from hooks to functions are weak ownership."
type FuncHandle struct {
	box *funcBox
}

// NewFunction wraps fn in a fresh, live FuncHandle.
func NewFunction(fn Function) FuncHandle {
	b := &funcBox{fn: fn}
	b.live.Store(true)
	return FuncHandle{box: b}
}

// Weak returns a non-owning observer of h. Registering this with a
// Dispatcher does not keep h (or its callback) alive.
func (h FuncHandle) Weak() WeakFunc {
	return WeakFunc{box: h.box}
}

// Release marks h's function expired. Every WeakFunc derived from h
// subsequently fails to resolve, and any Hook referencing it is swept on
// the owning Dispatcher's next flush.
func (h FuncHandle) Release() {
	if h.box != nil {
		h.box.live.Store(false)
	}
}

// WeakFunc is a non-owning reference to a registered receiver function.
type WeakFunc struct {
	box *funcBox
}

// Resolve attempts to upgrade w to its live Function. It fails once the
// owning FuncHandle has been released.
func (w WeakFunc) Resolve() (Function, bool) {
	if w.box == nil || !w.box.live.Load() {
		return nil, false
	}
	return w.box.fn, true
}

// Expired reports whether w can no longer resolve.
func (w WeakFunc) Expired() bool {
	return w.box == nil || !w.box.live.Load()
}
