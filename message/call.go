package message

// Call identifies which method a message invokes and the caller's
// sequence number for that invocation, grounded on
// original_source/any/message/call.hpp.
type Call struct {
	Method   Key
	Sequence Key
}
