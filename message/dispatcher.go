package message

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Config holds a Dispatcher's injected dependencies.
type Config struct {
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Dispatcher owns one thread's message hooks and packet queues. Per
// spec §4.4/§5, most of its operations must be called from the thread
// identified at construction; Go has no implicit "current thread"
// handle the way the source's std::thread::id does, so every
// thread-affine method takes the caller's threadID explicitly and
// compares it against the Dispatcher's own.
type Dispatcher struct {
	log      *zap.Logger
	threadID Key

	hooks []Hook // sorted by (FunctionKey asc, Priority asc)

	// lock guards export/import exchange with a Zone from any thread,
	// per spec's "lock: a spinlock guarding inter-thread exchange." The
	// source splits hook-list locking and packet-exchange locking across
	// overlapping uses of the same spinlock; this port folds both under
	// one mutex, since nothing here is hot enough to need finer-grained
	// locking and the unified lock cannot introduce a new race the
	// original's partial locking didn't already risk.
	lock sync.Mutex

	importPackets   []Packet
	exportPackets   []Packet
	deliveryPackets []Packet

	functionCache []Function // scratch buffer reused across deliverOne calls
}

// NewDispatcher constructs a Dispatcher affine to threadID.
func NewDispatcher(threadID Key, cfg Config) *Dispatcher {
	return &Dispatcher{log: cfg.logger(), threadID: threadID}
}

// ThreadID returns the thread this Dispatcher is affine to.
func (d *Dispatcher) ThreadID() Key {
	return d.threadID
}

func (d *Dispatcher) verifyThread(threadID Key) bool {
	return d.threadID == threadID
}

// AddFunction registers fn to receive messages addressed to
// (receiverKey, functionKey), ordered among same-functionKey hooks by
// priority. It fails if called from the wrong thread, if an equivalent
// live hook already exists for (receiverKey, functionKey), or if fn is
// the zero FuncHandle.
func (d *Dispatcher) AddFunction(threadID, receiverKey, functionKey Key, priority int32, fn FuncHandle) (bool, error) {
	if fn.box == nil {
		return false, newError(ErrCodeDegenerateHook, "nil function")
	}
	if functionKey == 0 && receiverKey == 0 {
		// A hook keyed on (0, 0) matches every invoice whose own
		// function/receiver keys also default to zero and never
		// expires on its own — effectively a permanent catch-all.
		return false, newError(ErrCodeDegenerateHook, "function_key 0 with receiver_key 0 matches everything forever")
	}
	if !d.verifyThread(threadID) {
		return false, newError(ErrCodeWrongThread, "add_function called from non-owning thread")
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	weak := fn.Weak()
	lower := sort.Search(len(d.hooks), func(i int) bool {
		return d.hooks[i].FunctionKey >= functionKey
	})
	insertAt := lower
	for i := lower; i < len(d.hooks); i++ {
		h := d.hooks[i]
		if h.FunctionKey != functionKey {
			break
		}
		if h.ReceiverKey == receiverKey && !h.Fn.Expired() {
			return false, newError(ErrCodeDuplicateHook, "equivalent hook already registered")
		}
		if h.Priority <= priority {
			insertAt = i + 1
		}
	}

	hook := Hook{ReceiverKey: receiverKey, FunctionKey: functionKey, Priority: priority, Fn: weak}
	d.hooks = append(d.hooks, Hook{})
	copy(d.hooks[insertAt+1:], d.hooks[insertAt:])
	d.hooks[insertAt] = hook
	return true, nil
}

// RemoveFunction weakens every live hook matching (receiverKey,
// functionKey) so it is swept on the next Flush, returning the function
// that was removed (or the zero WeakFunc if none matched).
func (d *Dispatcher) RemoveFunction(receiverKey, functionKey Key) WeakFunc {
	d.lock.Lock()
	defer d.lock.Unlock()
	var removed WeakFunc
	for i := range d.hooks {
		h := &d.hooks[i]
		if h.FunctionKey == functionKey && h.ReceiverKey == receiverKey && !h.Fn.Expired() {
			removed = h.Fn
			h.Fn = WeakFunc{}
		}
	}
	return removed
}

// RemoveFunctionsFor weakens every live hook registered under
// receiverKey regardless of function, returning how many were removed.
func (d *Dispatcher) RemoveFunctionsFor(receiverKey Key) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	count := 0
	for i := range d.hooks {
		h := &d.hooks[i]
		if h.ReceiverKey == receiverKey && !h.Fn.Expired() {
			h.Fn = WeakFunc{}
			count++
		}
	}
	return count
}

// FindFunction looks up the live hook for (receiverKey, functionKey).
func (d *Dispatcher) FindFunction(receiverKey, functionKey Key) WeakFunc {
	d.lock.Lock()
	defer d.lock.Unlock()
	for _, h := range d.findHookRun(functionKey) {
		if h.ReceiverKey == receiverKey && !h.Fn.Expired() {
			return h.Fn
		}
	}
	return WeakFunc{}
}

func (d *Dispatcher) findHookRun(functionKey Key) []Hook {
	lower := sort.Search(len(d.hooks), func(i int) bool {
		return d.hooks[i].FunctionKey >= functionKey
	})
	upper := lower
	for upper < len(d.hooks) && d.hooks[upper].FunctionKey == functionKey {
		upper++
	}
	return d.hooks[lower:upper]
}

// PostMessage enqueues packet in this Dispatcher's exports. The owning
// Zone's next Exchange hands it to the imports of every registered
// Dispatcher (this one included), and each delivers it on its next Flush.
// Zonal and External packets travel the same way; nothing here moves a
// packet to another Zone.
func (d *Dispatcher) PostMessage(packet Packet) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.exportPackets = append(d.exportPackets, packet)
	return true
}

// SendLocalMessage synchronously delivers packet to hooks registered on
// this Dispatcher, bypassing the post/flush queue entirely.
func (d *Dispatcher) SendLocalMessage(threadID Key, packet Packet) bool {
	if !d.verifyThread(threadID) {
		return false
	}
	d.deliverOne(packet)
	return true
}

// drainExports takes ownership of this Dispatcher's pending exports,
// for a Zone's exchange to fold into its trade buffer.
func (d *Dispatcher) drainExports() []Packet {
	d.lock.Lock()
	defer d.lock.Unlock()
	out := d.exportPackets
	d.exportPackets = nil
	return out
}

// importTrade appends a Zone exchange's trade buffer to this
// Dispatcher's imports, to be swapped into delivery on the next Flush.
func (d *Dispatcher) importTrade(packets []Packet) {
	if len(packets) == 0 {
		return
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.importPackets = append(d.importPackets, packets...)
}

// Flush swaps in packets imported from the owning Zone since the last
// flush, sweeps expired hooks, and delivers every packet now pending —
// in the batch that was imported, never packets that arrive mid-flush
// (a handler's own PostMessage is visible only on the next Flush, per
// the SUPPLEMENTED swap-not-append semantics grounded on
// original_source's dispatcher::flush).
func (d *Dispatcher) Flush(threadID Key) bool {
	if !d.verifyThread(threadID) {
		return false
	}

	d.lock.Lock()
	d.deliveryPackets, d.importPackets = d.importPackets, d.deliveryPackets[:0]
	d.lock.Unlock()

	d.sweepExpiredHooks()
	for _, p := range d.deliveryPackets {
		d.deliverOne(p)
	}
	d.deliveryPackets = d.deliveryPackets[:0]
	return true
}

func (d *Dispatcher) sweepExpiredHooks() {
	d.lock.Lock()
	defer d.lock.Unlock()
	survivors := d.hooks[:0]
	for _, h := range d.hooks {
		if !h.Fn.Expired() {
			survivors = append(survivors, h)
		}
	}
	d.hooks = survivors
}

// deliverOne runs the Delivery algorithm of spec §4.4 for a single
// packet: locate the hook-key run, verify each candidate's receiver
// match, upgrade weak functions into a cache, then invoke the cache —
// so hook mutation during a callback can never reorder this packet's
// delivery.
func (d *Dispatcher) deliverOne(packet Packet) {
	invoice := packet.Suite().Invoice
	d.functionCache = d.functionCache[:0]
	for _, h := range d.findHookRun(invoice.FunctionKey) {
		if !invoice.VerifyReceiverKey(h.ReceiverKey) {
			continue
		}
		fn, ok := h.Fn.Resolve()
		if !ok {
			continue
		}
		d.functionCache = append(d.functionCache, fn)
	}
	for _, fn := range d.functionCache {
		fn(packet)
	}
}
