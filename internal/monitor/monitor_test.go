package monitor

import (
	"testing"
	"time"

	"github.com/presenced/presenced/internal/config"
)

func testWindows() config.Windows {
	return config.Windows{
		LunchStart: config.TimeOfDay{Hour: 11, Minute: 30},
		LunchEnd:   config.TimeOfDay{Hour: 13},
		WorkEnd:    config.TimeOfDay{Hour: 18},
	}
}

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 3, hour, min, 0, 0, time.Local)
}

func TestTick_NotCheckedIn(t *testing.T) {
	s := State{}
	next, events := Tick(s, Sample{Now: at(10, 0), Idle: 20 * time.Minute}, testWindows())
	if next.Away || len(events) != 0 {
		t.Errorf("expected no-op while not checked in, got state %+v events %v", next, events)
	}
}

func TestTick_IdleThreshold(t *testing.T) {
	s := State{CheckedIn: true}
	w := testWindows()

	// 599 seconds idle: not away yet
	next, events := Tick(s, Sample{Now: at(10, 0), Idle: 599 * time.Second}, w)
	if next.Away || len(events) != 0 {
		t.Errorf("expected no away at 599s idle, got %+v %v", next, events)
	}

	// 600 seconds: away opens, backdated to when idling began
	now := at(10, 0)
	next, events = Tick(s, Sample{Now: now, Idle: 600 * time.Second}, w)
	if !next.Away {
		t.Fatal("expected away at 600s idle")
	}
	if len(events) != 1 || events[0].Kind != EventAwayStart {
		t.Fatalf("expected one away-start event, got %v", events)
	}
	wantStart := now.Add(-600 * time.Second)
	if !events[0].Start.Equal(wantStart) {
		t.Errorf("away start = %v, want %v", events[0].Start, wantStart)
	}
	if !next.AwayStart.Equal(wantStart) {
		t.Errorf("state away start = %v, want %v", next.AwayStart, wantStart)
	}
}

func TestTick_LunchClampAndGuard(t *testing.T) {
	s := State{CheckedIn: true}
	w := testWindows()
	idle := 100 * time.Minute // idling since well before lunch ended

	// 13:05: candidate start is before lunch end, guard suppresses
	next, events := Tick(s, Sample{Now: at(13, 5), Idle: idle}, w)
	if next.Away || len(events) != 0 {
		t.Errorf("expected suppression at 13:05, got %+v %v", next, events)
	}

	// 13:09: still inside the guard
	next, events = Tick(s, Sample{Now: at(13, 9), Idle: idle}, w)
	if next.Away || len(events) != 0 {
		t.Errorf("expected suppression at 13:09, got %+v %v", next, events)
	}

	// 13:10: guard passed, away opens clamped to lunch end
	next, events = Tick(s, Sample{Now: at(13, 10), Idle: idle}, w)
	if !next.Away {
		t.Fatal("expected away at 13:10")
	}
	if len(events) != 1 || events[0].Kind != EventAwayStart {
		t.Fatalf("expected one away-start event, got %v", events)
	}
	if !events[0].Start.Equal(at(13, 0)) {
		t.Errorf("away start = %v, want clamp to 13:00", events[0].Start)
	}
}

func TestTick_NoAwayDuringLunch(t *testing.T) {
	s := State{CheckedIn: true}
	next, events := Tick(s, Sample{Now: at(12, 0), Idle: 20 * time.Minute}, testWindows())
	if next.Away || len(events) != 0 {
		t.Errorf("away must never open during lunch, got %+v %v", next, events)
	}
}

func TestTick_ActivityEndsAway(t *testing.T) {
	start := at(14, 0)
	s := State{CheckedIn: true, Away: true, AwayStart: start}
	now := at(14, 5)

	next, events := Tick(s, Sample{Now: now, Idle: 30 * time.Second}, testWindows())
	if next.Away {
		t.Fatal("expected away to close on activity")
	}
	if len(events) != 1 || events[0].Kind != EventAwayEnd {
		t.Fatalf("expected one away-end event, got %v", events)
	}
	if !events[0].Start.Equal(start) || !events[0].End.Equal(now) {
		t.Errorf("away-end interval = [%v, %v], want [%v, %v]",
			events[0].Start, events[0].End, start, now)
	}
}

func TestTick_StillIdleStaysAway(t *testing.T) {
	s := State{CheckedIn: true, Away: true, AwayStart: at(14, 0)}
	next, events := Tick(s, Sample{Now: at(14, 30), Idle: 30 * time.Minute}, testWindows())
	if !next.Away || len(events) != 0 {
		t.Errorf("expected away to continue while idle, got %+v %v", next, events)
	}
}

func TestTick_ExclusionForcesClose(t *testing.T) {
	s := State{CheckedIn: true, Away: true, AwayStart: at(17, 40)}
	now := at(18, 1) // clock crossed work end while still away

	next, events := Tick(s, Sample{Now: now, Idle: 25 * time.Minute}, testWindows())
	if next.Away {
		t.Fatal("expected away to force-close after work end")
	}
	if len(events) != 1 || events[0].Kind != EventAwayEnd {
		t.Fatalf("expected one away-end event, got %v", events)
	}
	if !events[0].End.Equal(now) {
		t.Errorf("away end = %v, want %v", events[0].End, now)
	}
}

func TestTick_ZeroIdleIsNoOp(t *testing.T) {
	s := State{CheckedIn: true}
	next, events := Tick(s, Sample{Now: at(10, 0), Idle: 0}, testWindows())
	if next.Away || len(events) != 0 {
		t.Errorf("expected no-op tick, got %+v %v", next, events)
	}
}

func TestStartup_AutoCheckIn(t *testing.T) {
	events := Startup(State{}, at(6, 59))
	if len(events) != 0 {
		t.Errorf("no auto check-in before 07:00, got %v", events)
	}

	events = Startup(State{}, at(7, 0))
	if len(events) != 1 || events[0].Kind != EventAutoCheckIn {
		t.Errorf("expected auto check-in at 07:00, got %v", events)
	}

	events = Startup(State{CheckedIn: true}, at(9, 0))
	if len(events) != 0 {
		t.Errorf("no auto check-in while already checked in, got %v", events)
	}
}

func TestResume_ClosesAway(t *testing.T) {
	start := at(14, 0)
	s := State{CheckedIn: true, Away: true, AwayStart: start}
	now := at(15, 30)

	next, events := Resume(s, now)
	if next.Away {
		t.Fatal("expected away closed on resume")
	}
	if len(events) != 1 || events[0].Kind != EventAwayEnd {
		t.Fatalf("expected one away-end event, got %v", events)
	}
	if !events[0].Start.Equal(start) || !events[0].End.Equal(now) {
		t.Errorf("away-end interval = [%v, %v], want [%v, %v]",
			events[0].Start, events[0].End, start, now)
	}
}

func TestResume_AutoCheckInWhenNotCheckedIn(t *testing.T) {
	_, events := Resume(State{}, at(8, 0))
	if len(events) != 1 || events[0].Kind != EventAutoCheckIn {
		t.Errorf("expected auto check-in on resume, got %v", events)
	}
}

func TestSuspend_SnapshotAfterHours(t *testing.T) {
	events := Suspend(State{CheckedIn: true}, at(19, 0))
	if len(events) != 1 || events[0].Kind != EventSnapshot {
		t.Errorf("expected snapshot request at 19:00, got %v", events)
	}

	events = Suspend(State{CheckedIn: true}, at(17, 59))
	if len(events) != 0 {
		t.Errorf("no snapshot before 18:00, got %v", events)
	}

	events = Suspend(State{}, at(19, 0))
	if len(events) != 0 {
		t.Errorf("no snapshot while not checked in, got %v", events)
	}
}

func TestTick_PureInputUnchanged(t *testing.T) {
	s := State{CheckedIn: true}
	Tick(s, Sample{Now: at(10, 0), Idle: 20 * time.Minute}, testWindows())
	if s.Away || !s.AwayStart.IsZero() {
		t.Error("Tick mutated its input state")
	}
}
