package rtti

import "sync/atomic"

// Counter is a generation-free monotonically increasing identifier
// source, used by flyweight for minting fresh weak-handle generations
// without ever recycling a value while the process is alive.
type Counter struct {
	n atomic.Uint64
}

// Next returns the next value, starting at 1 (0 is reserved to mean
// "never issued").
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// Load returns the last issued value without allocating a new one.
func (c *Counter) Load() uint64 {
	return c.n.Load()
}
