package message

import "testing"

const ownerThread Key = 1

func newTestInvoice(receiverKey, receiverMask, functionKey Key) Invoice {
	return NewInvoice(0, receiverKey, receiverMask, functionKey)
}

func TestAddFunctionAndDeliverByMask(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	var got []Packet
	handle := NewFunction(func(p Packet) { got = append(got, p) })
	defer handle.Release()

	ok, err := d.AddFunction(ownerThread, 0xF0, 7, 0, handle)
	if !ok || err != nil {
		t.Fatalf("AddFunction failed: ok=%v err=%v", ok, err)
	}

	matching := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xF5, 0xF0, 7)))
	if !d.SendLocalMessage(ownerThread, matching) {
		t.Fatalf("SendLocalMessage failed")
	}
	if len(got) != 1 {
		t.Fatalf("expected one delivered packet, got %d", len(got))
	}

	nonMatching := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xF5, 0xF0, 8)))
	d.SendLocalMessage(ownerThread, nonMatching)
	if len(got) != 1 {
		t.Fatalf("expected function_key mismatch to not deliver, got %d total", len(got))
	}
}

func TestAddFunctionRejectsDuplicate(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	h1 := NewFunction(func(Packet) {})
	h2 := NewFunction(func(Packet) {})
	defer h1.Release()
	defer h2.Release()

	if ok, _ := d.AddFunction(ownerThread, 1, 1, 0, h1); !ok {
		t.Fatalf("first AddFunction should succeed")
	}
	if ok, err := d.AddFunction(ownerThread, 1, 1, 0, h2); ok || err == nil {
		t.Fatalf("duplicate AddFunction should fail, got ok=%v err=%v", ok, err)
	}
}

func TestAddFunctionRejectsWrongThread(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	h := NewFunction(func(Packet) {})
	defer h.Release()
	if ok, err := d.AddFunction(ownerThread+1, 1, 1, 0, h); ok || err == nil {
		t.Fatalf("wrong-thread AddFunction should fail")
	}
}

func TestAddFunctionRejectsDegenerateHook(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	h := NewFunction(func(Packet) {})
	defer h.Release()
	if ok, err := d.AddFunction(ownerThread, 0, 0, 0, h); ok || err == nil {
		t.Fatalf("degenerate (0,0) hook should be rejected")
	}
}

func TestPriorityOrdersDeliveryWithinSameFunctionKey(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	var order []string
	low := NewFunction(func(Packet) { order = append(order, "low") })
	high := NewFunction(func(Packet) { order = append(order, "high") })
	defer low.Release()
	defer high.Release()

	d.AddFunction(ownerThread, 1, 7, 10, low)
	d.AddFunction(ownerThread, 2, 7, 0, high)

	pkt := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xFF, 0, 7)))
	d.SendLocalMessage(ownerThread, pkt)
	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("expected delivery in ascending priority order, got %v", order)
	}
}

func TestRemoveFunctionSweptOnFlush(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	called := 0
	h := NewFunction(func(Packet) { called++ })
	defer h.Release()

	d.AddFunction(ownerThread, 1, 1, 0, h)
	d.RemoveFunction(1, 1)

	d.PostMessage(NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xFF, 0, 1))))
	d.importPackets = d.drainExports()
	d.Flush(ownerThread)
	if called != 0 {
		t.Fatalf("removed hook must not fire, called=%d", called)
	}
}

func TestWeakFunctionExpiresAfterRelease(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	called := 0
	h := NewFunction(func(Packet) { called++ })

	d.AddFunction(ownerThread, 1, 1, 0, h)
	h.Release()

	pkt := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xFF, 0, 1)))
	d.SendLocalMessage(ownerThread, pkt)
	if called != 0 {
		t.Fatalf("expired function must not fire, called=%d", called)
	}
}

func TestFlushSwapsNotAppends(t *testing.T) {
	d := NewDispatcher(ownerThread, Config{})
	var delivered int
	h := NewFunction(func(Packet) {
		delivered++
		// Reentrant post during delivery must not be visible this flush.
		d.PostMessage(NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xFF, 0, 1))))
	})
	defer h.Release()
	d.AddFunction(ownerThread, 1, 1, 0, h)

	d.importPackets = append(d.importPackets, NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xFF, 0, 1))))
	d.Flush(ownerThread)
	if delivered != 1 {
		t.Fatalf("expected exactly one delivery in first flush, got %d", delivered)
	}

	trade := d.drainExports()
	d.importTrade(trade)
	d.Flush(ownerThread)
	if delivered != 2 {
		t.Fatalf("expected the reentrant post to deliver on the next flush, got %d", delivered)
	}
}

func TestZoneExchangeBroadcastsToAllDispatchers(t *testing.T) {
	z := NewZone(ZoneConfig{})
	a := NewDispatcher(1, Config{})
	b := NewDispatcher(2, Config{})
	z.Register(a)
	z.Register(b)

	var bGot int
	h := NewFunction(func(Packet) { bGot++ })
	defer h.Release()
	b.AddFunction(2, 9, 42, 0, h)

	a.PostMessage(NewExternalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xFF, 0, 42))))
	z.Exchange()
	b.Flush(2)
	if bGot != 1 {
		t.Fatalf("expected dispatcher b to receive a's exported packet via zone exchange, got %d", bGot)
	}
}

func TestListenerCallFunctionReturnCodes(t *testing.T) {
	l := NewListener(0xF0, ownerThread, nil)
	called := false
	if !l.AddFunction(ownerThread, 5, func(Packet) { called = true }) {
		t.Fatalf("AddFunction should succeed")
	}

	hit := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xF0, 0xFFFFFFFF, 5)))
	if code := l.CallFunction(ownerThread, hit); code != 1 {
		t.Fatalf("expected +1 delivered, got %d", code)
	}
	if !called {
		t.Fatalf("expected hook to have fired")
	}

	unmatched := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xF0, 0xFFFFFFFF, 6)))
	if code := l.CallFunction(ownerThread, unmatched); code != 0 {
		t.Fatalf("expected 0 with no forward configured, got %d", code)
	}
}

func TestListenerForwardsUnmatched(t *testing.T) {
	forwarded := false
	l := NewListener(0xF0, ownerThread, func(Packet) { forwarded = true })

	pkt := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xF0, 0xFFFFFFFF, 99)))
	if code := l.CallFunction(ownerThread, pkt); code != -1 {
		t.Fatalf("expected -1 forwarded, got %d", code)
	}
	if !forwarded {
		t.Fatalf("expected forward function to have fired")
	}
}

func TestListenerRejectsDuplicateKey(t *testing.T) {
	l := NewListener(0xF0, ownerThread, nil)
	if !l.AddFunction(ownerThread, 1, func(Packet) {}) {
		t.Fatalf("first add should succeed")
	}
	if l.AddFunction(ownerThread, 1, func(Packet) {}) {
		t.Fatalf("duplicate key add should fail")
	}
}

func TestListenerReentrantCallUsesSnapshot(t *testing.T) {
	l := NewListener(0xF0, ownerThread, nil)
	depth := 0
	var self Function
	self = func(p Packet) {
		depth++
		if depth < 3 {
			l.CallFunctionKey(ownerThread, p, 1)
		}
	}
	l.AddFunction(ownerThread, 1, func(p Packet) { self(p) })

	pkt := NewZonalPacket(NewSuite(Tag{}, Call{}, newTestInvoice(0xF0, 0xFFFFFFFF, 1)))
	l.CallFunctionKey(ownerThread, pkt, 1)
	if depth != 3 {
		t.Fatalf("expected reentrant calls to reach depth 3, got %d", depth)
	}
}

func TestSuiteParameterRoundTrip(t *testing.T) {
	type payload struct{ X int }
	s := NewParametricSuite(Tag{}, Call{}, Invoice{}, payload{X: 42})
	v, ok := Parameter[payload](s)
	if !ok || v.X != 42 {
		t.Fatalf("expected parameter round-trip, got %+v ok=%v", v, ok)
	}
	if _, ok := Parameter[string](s); ok {
		t.Fatalf("expected type-mismatched parameter lookup to fail")
	}
}

func TestPacketExternalSuite(t *testing.T) {
	suite := NewSuite(Tag{}, Call{}, Invoice{})
	zonal := NewZonalPacket(suite)
	if _, ok := zonal.ExternalSuite(); ok {
		t.Fatalf("zonal packet must not expose an external suite")
	}
	external := NewExternalPacket(suite)
	if _, ok := external.ExternalSuite(); !ok {
		t.Fatalf("external packet must expose its suite")
	}
}
