package message

// Invoice is a message's full routing header: enough addressing to
// carry it across zone and dispatcher boundaries and match it against a
// receiving Hook, per spec §3.7.
type Invoice struct {
	SenderKey      Key
	ZoneKey        Key
	ZoneMask       Key
	DispatcherKey  Key
	DispatcherMask Key
	ReceiverKey    Key
	ReceiverMask   Key
	FunctionKey    Key
}

// NewInvoice builds an Invoice targeting a single receiver/function pair
// directly, leaving zone/dispatcher routing fields zeroed (the common
// case for a zone-local post).
func NewInvoice(senderKey, receiverKey, receiverMask, functionKey Key) Invoice {
	return Invoice{
		SenderKey:    senderKey,
		ReceiverKey:  receiverKey,
		ReceiverMask: receiverMask,
		FunctionKey:  functionKey,
	}
}

// VerifyReceiverKey reports whether key matches this invoice's receiver
// address under ReceiverMask, i.e. (key & ReceiverMask) ==
// (ReceiverKey & ReceiverMask); a zero mask matches every key. Delivery
// calls this with a Hook's receiver key to decide whether the hook should
// fire.
func (inv Invoice) VerifyReceiverKey(key Key) bool {
	return (key & inv.ReceiverMask) == (inv.ReceiverKey & inv.ReceiverMask)
}
