package message

import (
	"sync"

	"go.uber.org/zap"
)

// ZoneConfig holds a Zone's injected dependencies.
type ZoneConfig struct {
	Logger *zap.Logger
}

func (c ZoneConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Zone owns a set of per-thread Dispatchers and periodically exchanges
// their posted packets, per spec §4.4's Zone exchange. The caller adds
// each Dispatcher with Register after constructing it; a Zone never creates a
// Dispatcher on a caller's behalf since thread affinity must be decided
// by the caller that owns the thread.
type Zone struct {
	log         *zap.Logger
	mu          sync.Mutex
	dispatchers []*Dispatcher
}

func NewZone(cfg ZoneConfig) *Zone {
	return &Zone{log: cfg.logger()}
}

// Register adds d to the zone's exchange rotation. Safe to call from
// any thread; d itself is still only ever safely flushed/posted-to from
// its own owning thread.
func (z *Zone) Register(d *Dispatcher) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.dispatchers = append(z.dispatchers, d)
}

// Exchange drains every registered Dispatcher's exported packets into a
// combined trade buffer, then broadcasts that buffer into every
// Dispatcher's imports — so a destination dispatcher's imports, after
// this call, include every packet posted by any dispatcher whose
// exports were traded in this exchange (spec §5's ordering guarantee).
// Each per-dispatcher drain/import step is itself spinlock-guarded; the
// ordering guarantee holds regardless of how Exchange interleaves with
// concurrent PostMessage calls on any one dispatcher.
func (z *Zone) Exchange() {
	z.mu.Lock()
	dispatchers := append([]*Dispatcher(nil), z.dispatchers...)
	z.mu.Unlock()

	var trade []Packet
	for _, d := range dispatchers {
		trade = append(trade, d.drainExports()...)
	}
	if len(trade) == 0 {
		return
	}
	for _, d := range dispatchers {
		d.importTrade(trade)
	}
	z.log.Debug("message: zone exchange", zap.Int("dispatchers", len(dispatchers)), zap.Int("packets", len(trade)))
}
