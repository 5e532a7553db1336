package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/presenced/presenced/internal/config"
)

func testEngine() *Engine {
	return NewEngine(nil, config.Windows{
		LunchStart: config.TimeOfDay{Hour: 11, Minute: 30},
		LunchEnd:   config.TimeOfDay{Hour: 13},
		WorkEnd:    config.TimeOfDay{Hour: 18},
	})
}

type failingIdle struct{}

func (failingIdle) IdleTime(context.Context) (time.Duration, error) {
	return 0, errors.New("the name org.gnome.Mutter.IdleMonitor was not provided")
}

// A failed idle query must skip the whole cycle. In particular it must
// not read as resumed activity and close an in-progress away session.
func TestTick_IdleQueryFailureSkipsCycle(t *testing.T) {
	e := testEngine()
	e.idle = failingIdle{}
	e.SetCheckedIn(true)
	e.SetAway(true)
	before := e.Status()

	e.tick(context.Background())

	after := e.Status()
	if !after.Away || !after.AwayStart.Equal(before.AwayStart) {
		t.Errorf("failed idle query changed state: before %+v, after %+v", before, after)
	}
	select {
	case ev := <-e.Events():
		t.Errorf("failed idle query emitted %v", ev)
	default:
	}
}

func TestRequestCheckout_NotCheckedIn(t *testing.T) {
	e := testEngine()
	if !e.RequestCheckout(10 * time.Millisecond) {
		t.Error("expected immediate success when not checked in")
	}
	select {
	case ev := <-e.Events():
		t.Errorf("unexpected event %v", ev)
	default:
	}
}

func TestRequestCheckout_TimesOut(t *testing.T) {
	e := testEngine()
	e.SetCheckedIn(true)

	done := make(chan bool, 1)
	go func() {
		done <- e.RequestCheckout(50 * time.Millisecond)
	}()

	// the handshake emits a full-checkout request
	select {
	case ev := <-e.Events():
		if ev.Kind != EventAutoCheckOut {
			t.Errorf("event kind = %v, want %v", ev.Kind, EventAutoCheckOut)
		}
	case <-time.After(time.Second):
		t.Fatal("no checkout event emitted")
	}

	// no ack arrives: termination proceeds anyway
	select {
	case ok := <-done:
		if ok {
			t.Error("expected RequestCheckout to report timeout")
		}
	case <-time.After(time.Second):
		t.Fatal("RequestCheckout never returned")
	}
}

func TestRequestCheckout_Acked(t *testing.T) {
	e := testEngine()
	e.SetCheckedIn(true)

	done := make(chan bool, 1)
	go func() {
		done <- e.RequestCheckout(time.Second)
	}()

	select {
	case <-e.Events():
	case <-time.After(time.Second):
		t.Fatal("no checkout event emitted")
	}
	e.AckCheckout()

	select {
	case ok := <-done:
		if !ok {
			t.Error("expected acked checkout to report success")
		}
	case <-time.After(time.Second):
		t.Fatal("RequestCheckout never returned")
	}
}

func TestSetCheckedIn_ClearsAway(t *testing.T) {
	e := testEngine()
	e.SetCheckedIn(true)
	e.SetAway(true)
	e.SetCheckedIn(false)

	st := e.Status()
	if st.Away || !st.AwayStart.IsZero() {
		t.Errorf("checkout must clear away state, got %+v", st)
	}
}

func TestSetAway_TracksStart(t *testing.T) {
	e := testEngine()
	e.SetAway(true)
	if st := e.Status(); !st.Away || st.AwayStart.IsZero() {
		t.Errorf("manual away must set a start time, got %+v", st)
	}
	e.SetAway(false)
	if st := e.Status(); st.Away || !st.AwayStart.IsZero() {
		t.Errorf("ending manual away must clear the start time, got %+v", st)
	}
}

func TestSetWindows(t *testing.T) {
	e := testEngine()
	w := e.Windows()
	w.WorkEnd = config.TimeOfDay{Hour: 17, Minute: 30}
	e.SetWindows(w)
	if got := e.Windows().WorkEnd; got != w.WorkEnd {
		t.Errorf("WorkEnd = %v, want %v", got, w.WorkEnd)
	}
}
