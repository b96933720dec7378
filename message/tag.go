// Package message implements the Message Zone & Dispatcher of spec
// §3.7/§4.4: per-thread RPC dispatch with weak-handle subscriptions,
// priority-ordered delivery, and inter-thread packet trading.
package message

// Key is the integral identifier type shared by every addressable entity
// in a zone: senders, receivers, zones, dispatchers, and functions.
type Key = uint64

// Tag is a message's address header: who sent it, and which receivers
// should accept it. A receiver's address matches when
// (addr & ReceiverMask) == ReceiverAddr, so a single Tag can target a
// whole class of receivers via a coarse mask.
type Tag struct {
	SenderAddr   Key
	ReceiverAddr Key
	ReceiverMask Key
}

// MatchReceiver reports whether addr is accepted by this Tag's receiver
// address and mask.
func (t Tag) MatchReceiver(addr Key) bool {
	return (addr & t.ReceiverMask) == t.ReceiverAddr
}
