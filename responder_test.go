package mdnsresponder

import "testing"

// newTestResponder builds a Responder around a real registry but with
// buffered, unconsumed command channels standing in for FSMs, so
// Register/Close logic can be exercised without opening real sockets.
func newTestResponder(t *testing.T) *Responder {
	t.Helper()
	reg, err := newRegistry("host.local")
	if err != nil {
		t.Fatalf("newRegistry: %v", err)
	}
	return &Responder{
		reg:     reg,
		senders: []chan command{make(chan command, commandBufferSize)},
	}
}

func TestResponderRegisterThenHandleClose(t *testing.T) {
	r := newTestResponder(t)

	handle, err := r.Register("_http._tcp.local", "My Web._http._tcp.local", 8080, []string{"v=1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, ok := r.reg.FindByName("My Web._http._tcp.local"); !ok {
		t.Fatal("expected service to be registered")
	}

	announce := <-r.senders[0]
	if announce.kind != cmdSendUnsolicited || announce.ttl != defaultTTL {
		t.Fatalf("unexpected announce command: %+v", announce)
	}

	if err := handle.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := r.reg.FindByName("My Web._http._tcp.local"); ok {
		t.Fatal("expected service to be gone after Close")
	}

	goodbye := <-r.senders[0]
	if goodbye.kind != cmdSendUnsolicited || goodbye.ttl != 0 || goodbye.includeAddrs {
		t.Fatalf("unexpected goodbye command: %+v", goodbye)
	}

	// Close is idempotent.
	if err := handle.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestResponderCloseIsIdempotent(t *testing.T) {
	r := newTestResponder(t)
	r.Close()
	r.Close()

	shutdown := <-r.senders[0]
	if shutdown.kind != cmdShutdown {
		t.Fatalf("unexpected command: %+v", shutdown)
	}
	select {
	case cmd := <-r.senders[0]:
		t.Fatalf("expected exactly one shutdown command, got extra: %+v", cmd)
	default:
	}
}

func TestResponderRegisterRejectsOversizedTXTEntry(t *testing.T) {
	r := newTestResponder(t)
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := r.Register("_http._tcp.local", "A._http._tcp.local", 80, []string{string(long)}); err == nil {
		t.Fatal("expected error for oversized TXT entry")
	}
}
