// Package reservoir implements the State Reservoir of spec §4.1: a
// bit-packed, typed state store addressed by stable keys, with per-key
// transition tracking and in-place compaction.
package reservoir

import (
	"cmp"
	"sort"

	"go.uber.org/zap"
)

// Config holds construction-time options shared by every reservoir,
// mirroring how the teacher injects a crypto.CryptoProvider rather than
// reaching for a package-level singleton.
type Config struct {
	// Logger receives Debug-level traces for ShrinkToFit compaction and
	// Warn-level traces for recovered failures (duplicate registration,
	// exhausted positions, kind mismatch, overflow). Chunk growth is not
	// logged. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with a no-op logger.
func DefaultConfig() Config {
	return Config{Logger: zap.NewNop()}
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Reservoir is the bit-packed typed state store of spec §4.1. ChunkKey
// and StatusKey are host-chosen identifier types; StatusKey must be
// totally ordered because the registry set is kept sorted by it for
// binary-search lookup (spec §3.3).
type Reservoir[ChunkKey comparable, StatusKey cmp.Ordered] struct {
	log       *zap.Logger
	chunks    map[ChunkKey]*chunk[ChunkKey]
	order     []ChunkKey // insertion order, for deterministic ShrinkToFit/iteration
	registries []*registry[ChunkKey, StatusKey]       // sorted by statusKey
}

// New constructs an empty reservoir.
func New[ChunkKey comparable, StatusKey cmp.Ordered](cfg Config) *Reservoir[ChunkKey, StatusKey] {
	return &Reservoir[ChunkKey, StatusKey]{
		log:    cfg.logger(),
		chunks: make(map[ChunkKey]*chunk[ChunkKey]),
	}
}

func (r *Reservoir[ChunkKey, StatusKey]) equipChunk(key ChunkKey) *chunk[ChunkKey] {
	if c, ok := r.chunks[key]; ok {
		return c
	}
	c := newChunk[ChunkKey](key, 0, 0)
	r.chunks[key] = c
	r.order = append(r.order, key)
	return c
}

func (r *Reservoir[ChunkKey, StatusKey]) findRegistryIndex(key StatusKey) (int, bool) {
	i := sort.Search(len(r.registries), func(i int) bool {
		return r.registries[i].statusKey >= key
	})
	if i < len(r.registries) && r.registries[i].statusKey == key {
		return i, true
	}
	return i, false
}

func (r *Reservoir[ChunkKey, StatusKey]) findRegistry(key StatusKey) *registry[ChunkKey, StatusKey] {
	if i, ok := r.findRegistryIndex(key); ok {
		return r.registries[i]
	}
	return nil
}

// ReserveChunk pre-allocates blocks/free-list capacity for chunkKey's
// chunk, creating it if absent (spec §4.1 reserve_chunk).
func (r *Reservoir[ChunkKey, StatusKey]) ReserveChunk(chunkKey ChunkKey, reserveBlocks, reserveEmpties int) {
	c, ok := r.chunks[chunkKey]
	if !ok {
		c = newChunk[ChunkKey](chunkKey, reserveBlocks, reserveEmpties)
		r.chunks[chunkKey] = c
		r.order = append(r.order, chunkKey)
		return
	}
	if cap(c.blocks)-len(c.blocks) < reserveBlocks {
		grown := make([]uint64, len(c.blocks), len(c.blocks)+reserveBlocks)
		copy(grown, c.blocks)
		c.blocks = grown
	}
	if cap(c.emptyFields)-len(c.emptyFields) < reserveEmpties {
		grown := make([]emptyField, len(c.emptyFields), len(c.emptyFields)+reserveEmpties)
		copy(grown, c.emptyFields)
		c.emptyFields = grown
	}
}

// registerState is the shared body of register_bool/unsigned/signed/float:
// reject a duplicate statusKey, allocate a field, insert the sorted
// registry record.
func (r *Reservoir[ChunkKey, StatusKey]) registerState(chunkKey ChunkKey, statusKey StatusKey, variety Variety) *registry[ChunkKey, StatusKey] {
	i, dup := r.findRegistryIndex(statusKey)
	if dup {
		r.log.Warn("reservoir: duplicate status key on register", zap.Any("status_key", statusKey))
		return nil
	}

	c := r.equipChunk(chunkKey)
	size := Size(variety)
	pos, ok := allocateField(c, size)
	if !ok {
		r.log.Warn("reservoir: chunk exhausted", zap.Any("chunk_key", chunkKey), zap.Uint32("size", size))
		return nil
	}

	reg := &registry[ChunkKey, StatusKey]{chunkKey: chunkKey, statusKey: statusKey, variety: variety}
	if !reg.setPosition(pos) {
		r.log.Warn("reservoir: position overflow", zap.Any("status_key", statusKey))
		return nil
	}
	reg.setTransition(true) // fresh registrations start "changed", matching the source's initial field=1<<TRANSITION_FRONT.

	r.registries = append(r.registries, nil)
	copy(r.registries[i+1:], r.registries[i:])
	r.registries[i] = reg
	return reg
}

// RegisterBool registers a 1-bit boolean state.
func (r *Reservoir[ChunkKey, StatusKey]) RegisterBool(chunkKey ChunkKey, statusKey StatusKey, initial bool) bool {
	reg := r.registerState(chunkKey, statusKey, VarietyBool)
	if reg == nil {
		return false
	}
	v := uint64(0)
	if initial {
		v = 1
	}
	setBitsRaw(r.chunks[chunkKey].blocks, reg.position(), 1, v)
	return true
}

// RegisterUnsigned registers an unsigned integer state of bitWidth bits
// (2..64).
func (r *Reservoir[ChunkKey, StatusKey]) RegisterUnsigned(chunkKey ChunkKey, statusKey StatusKey, initial uint64, bitWidth int) bool {
	if bitWidth < 2 || bitWidth > BlockBits {
		return false
	}
	reg := r.registerState(chunkKey, statusKey, Variety(bitWidth))
	if reg == nil {
		return false
	}
	setBitsRaw(r.chunks[chunkKey].blocks, reg.position(), uint32(bitWidth), maskUnsigned(initial, bitWidth))
	return true
}

// RegisterSigned registers a signed integer state of bitWidth bits
// (2..64).
func (r *Reservoir[ChunkKey, StatusKey]) RegisterSigned(chunkKey ChunkKey, statusKey StatusKey, initial int64, bitWidth int) bool {
	if bitWidth < 2 || bitWidth > BlockBits {
		return false
	}
	reg := r.registerState(chunkKey, statusKey, Variety(-bitWidth))
	if reg == nil {
		return false
	}
	setBitsRaw(r.chunks[chunkKey].blocks, reg.position(), uint32(bitWidth), maskSigned(initial, bitWidth))
	return true
}

// RegisterFloat registers a floating-point state (always FloatBits wide).
func (r *Reservoir[ChunkKey, StatusKey]) RegisterFloat(chunkKey ChunkKey, statusKey StatusKey, initial float64) bool {
	reg := r.registerState(chunkKey, statusKey, VarietyFloat)
	if reg == nil {
		return false
	}
	setBitsRaw(r.chunks[chunkKey].blocks, reg.position(), FloatBits, Float(initial).bits)
	return true
}

// GetValue returns the current value of key, or Empty if key is not
// registered.
func (r *Reservoir[ChunkKey, StatusKey]) GetValue(key StatusKey) Value {
	reg := r.findRegistry(key)
	if reg == nil {
		return Empty()
	}
	c := r.chunks[reg.chunkKey]
	size := Size(reg.variety)
	bits := getBits(c.blocks, reg.position(), size)
	switch KindOf(reg.variety) {
	case KindBool:
		return Bool(bits != 0)
	case KindFloat:
		return Value{kind: KindFloat, bits: bits}
	case KindSigned:
		return Signed(signExtend(bits, int(size)))
	default:
		return Unsigned(bits)
	}
}

// GetFormat returns the variety of key's registered state, or
// VarietyEmpty if key is not registered.
func (r *Reservoir[ChunkKey, StatusKey]) GetFormat(key StatusKey) Variety {
	reg := r.findRegistry(key)
	if reg == nil {
		return VarietyEmpty
	}
	return reg.variety
}

// GetTransition returns 1 if key's value changed since the last
// ResetTransitions, 0 if it hasn't, or -1 if key is not registered.
func (r *Reservoir[ChunkKey, StatusKey]) GetTransition(key StatusKey) int {
	reg := r.findRegistry(key)
	if reg == nil {
		return -1
	}
	if reg.transition() {
		return 1
	}
	return 0
}

// ResetTransitions clears every registered key's transition flag. It is
// idempotent: calling it twice in a row is equivalent to calling it once.
func (r *Reservoir[ChunkKey, StatusKey]) ResetTransitions() {
	for _, reg := range r.registries {
		reg.setTransition(false)
	}
}

// SetValue writes new to key. It fails (returning false, leaving state
// unchanged) on a missing key or a kind mismatch between new and the
// registered variety, and on an unsigned/signed value that overflows the
// registered bit width (spec §7 Overflow).
func (r *Reservoir[ChunkKey, StatusKey]) SetValue(key StatusKey, new Value) bool {
	reg := r.findRegistry(key)
	if reg == nil {
		return false
	}
	wantKind := KindOf(reg.variety)
	if new.Kind() != wantKind {
		r.log.Warn("reservoir: set_value kind mismatch", zap.Any("status_key", key), zap.Stringer("want", wantKind), zap.Stringer("got", new.Kind()))
		return false
	}

	size := Size(reg.variety)
	var raw uint64
	switch wantKind {
	case KindBool:
		raw = new.bits & 1
	case KindFloat:
		raw = new.bits
	case KindUnsigned:
		if !fitsUnsigned(new.bits, int(size)) {
			r.log.Warn("reservoir: set_value overflow", zap.Any("status_key", key))
			return false
		}
		raw = maskUnsigned(new.bits, int(size))
	case KindSigned:
		signedVal := int64(new.bits)
		if !fitsSigned(signedVal, int(size)) {
			r.log.Warn("reservoir: set_value overflow", zap.Any("status_key", key))
			return false
		}
		raw = maskSigned(signedVal, int(size))
	}

	c := r.chunks[reg.chunkKey]
	old := getBits(c.blocks, reg.position(), size)
	if old == raw {
		return true // no-op write: bits unchanged, transition flag untouched.
	}
	setBitsRaw(c.blocks, reg.position(), size, raw)
	reg.setTransition(true)
	return true
}

// RemoveChunk drops chunkKey's chunk and every registry that referenced
// it. Returns false if chunkKey was never registered.
func (r *Reservoir[ChunkKey, StatusKey]) RemoveChunk(chunkKey ChunkKey) bool {
	if _, ok := r.chunks[chunkKey]; !ok {
		return false
	}
	delete(r.chunks, chunkKey)
	for i, k := range r.order {
		if k == chunkKey {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	kept := r.registries[:0]
	for _, reg := range r.registries {
		if reg.chunkKey != chunkKey {
			kept = append(kept, reg)
		}
	}
	r.registries = kept
	return true
}

// ShrinkToFit rebuilds every chunk from scratch, registering states
// largest-field-first so the packing algorithm produces a tightly packed
// layout with no fragmentation (spec §4.1 Shrink-to-fit). Every
// (key -> value) pair and every transition flag survives the rebuild.
func (r *Reservoir[ChunkKey, StatusKey]) ShrinkToFit() {
	type saved struct {
		chunkKey   ChunkKey
		statusKey  StatusKey
		variety    Variety
		value      Value
		transition bool
	}
	all := make([]saved, 0, len(r.registries))
	for _, reg := range r.registries {
		all = append(all, saved{
			chunkKey:   reg.chunkKey,
			statusKey:  reg.statusKey,
			variety:    reg.variety,
			value:      r.GetValue(reg.statusKey),
			transition: reg.transition(),
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return Size(all[i].variety) > Size(all[j].variety)
	})

	fresh := New[ChunkKey, StatusKey](Config{Logger: r.log})
	for _, s := range all {
		var reg *registry[ChunkKey, StatusKey]
		switch KindOf(s.variety) {
		case KindBool:
			b, _ := s.value.AsBool()
			reg = fresh.registerState(s.chunkKey, s.statusKey, VarietyBool)
			if reg != nil {
				setBitsRaw(fresh.chunks[s.chunkKey].blocks, reg.position(), 1, boolBit(b))
			}
		case KindUnsigned:
			u, _ := s.value.AsUnsigned()
			reg = fresh.registerState(s.chunkKey, s.statusKey, s.variety)
			if reg != nil {
				setBitsRaw(fresh.chunks[s.chunkKey].blocks, reg.position(), Size(s.variety), u)
			}
		case KindSigned:
			i, _ := s.value.AsSigned()
			reg = fresh.registerState(s.chunkKey, s.statusKey, s.variety)
			if reg != nil {
				setBitsRaw(fresh.chunks[s.chunkKey].blocks, reg.position(), Size(s.variety), maskSigned(i, int(Size(s.variety))))
			}
		case KindFloat:
			f, _ := s.value.AsFloat()
			reg = fresh.registerState(s.chunkKey, s.statusKey, VarietyFloat)
			if reg != nil {
				setBitsRaw(fresh.chunks[s.chunkKey].blocks, reg.position(), FloatBits, Float(f).bits)
			}
		}
		if reg != nil {
			reg.setTransition(s.transition)
		}
	}
	r.log.Debug("reservoir: shrink_to_fit", zap.Int("states", len(all)), zap.Int("chunks", len(fresh.chunks)))
	*r = *fresh
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
