package service

import (
	"context"
	"testing"
	"time"

	"github.com/presenced/presenced/internal/monitor"
)

// The termination handshake end to end: the engine requests a full
// checkout, the pump performs it and acks, the engine unblocks.
func TestPump_CheckoutHandshake(t *testing.T) {
	svc, fs := testService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec, err := svc.CheckIn(ctx, false, "")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	eng := monitor.NewEngine(nil, testWindows())
	eng.SetCheckedIn(true)

	pump := NewPump(svc, eng, nil)
	go pump.Run(ctx)

	if !eng.RequestCheckout(2 * time.Second) {
		t.Fatal("expected checkout to be acknowledged")
	}

	stored := fs.attendance[rec.ID]
	if !stored.IsClosed() {
		t.Error("record should be closed after the handshake")
	}
	if !stored.IsAutoCheckOut {
		t.Error("handshake checkout should be marked automatic")
	}
	if eng.Status().CheckedIn {
		t.Error("engine state should be synced to checked out")
	}
}

// A checkout request with nothing to close times out but never blocks
// termination.
func TestPump_CheckoutHandshakeFailureDoesNotBlock(t *testing.T) {
	svc, _ := testService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// no attendance record exists; the checkout will fail
	eng := monitor.NewEngine(nil, testWindows())
	eng.SetCheckedIn(true)

	pump := NewPump(svc, eng, nil)
	go pump.Run(ctx)

	done := make(chan bool, 1)
	go func() {
		done <- eng.RequestCheckout(100 * time.Millisecond)
	}()

	select {
	case ok := <-done:
		if ok {
			t.Error("expected the handshake to time out")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RequestCheckout blocked shutdown")
	}
}
