package message

// Packet owns one Suite and describes whether it may cross zone
// boundaries. The source models Zonal/External as a class hierarchy
// (packet::zonal, packet::external); per spec §9's re-architecture note
// this port uses a tagged sum instead — a single concrete type with a
// boolean discriminant — since Go has no inheritance and the two
// variants differ only in that External additionally exposes itself for
// serialization.
type Packet struct {
	suite    Suite
	external bool
}

// NewZonalPacket builds a Packet confined to its originating zone.
func NewZonalPacket(suite Suite) Packet {
	return Packet{suite: suite}
}

// NewExternalPacket builds a Packet eligible for inter-zone transport.
// Serializing it for an actual cross-process transport is out of scope
// (spec §1 Non-goals: "No cross-process or network transport").
func NewExternalPacket(suite Suite) Packet {
	return Packet{suite: suite, external: true}
}

// Suite returns the packet's message suite.
func (p Packet) Suite() Suite {
	return p.suite
}

// IsExternal reports whether this packet may cross zone boundaries.
func (p Packet) IsExternal() bool {
	return p.external
}

// ExternalSuite returns the packet's suite only if it is External,
// mirroring the source's get_external_suite returning nullptr for a
// Zonal packet.
func (p Packet) ExternalSuite() (Suite, bool) {
	if !p.external {
		return Suite{}, false
	}
	return p.suite, true
}
