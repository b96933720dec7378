package message

// Hook is a single (receiver, function) subscription entry: a weak
// reference to the callback plus the routing fields delivery matches
// against. Grounded on original_source/any/message/dispatcher.hpp's
// nested `hook` class.
type Hook struct {
	ReceiverKey Key
	FunctionKey Key
	Priority    int32
	Fn          WeakFunc
}
