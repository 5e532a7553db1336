// Package monitor decides, once per minute, whether the user's away
// status should change, and emits the matching lifecycle events. The
// transition logic is pure: the Engine owns the single State instance
// and applies whatever Tick returns.
package monitor

import (
	"time"

	"github.com/presenced/presenced/internal/config"
)

const (
	// IdleThreshold is how long input must be absent before the user is
	// considered away.
	IdleThreshold = 600 * time.Second

	// ActivityThreshold closes an away session once the idle clock drops
	// below it.
	ActivityThreshold = 60 * time.Second

	// LunchGuard suppresses an away session clamped to the end of lunch
	// until at least this much time has passed since lunch ended, so a
	// sub-10-minute tail never gets recorded.
	LunchGuard = 10 * time.Minute

	// AutoCheckInHour is the earliest local hour for automatic check-in.
	AutoCheckInHour = 7

	// SnapshotHour is the local hour from which suspend or shutdown
	// triggers a duration snapshot instead of being ignored.
	SnapshotHour = 18
)

// State is the monitor's whole mutable state. The Engine is its sole
// mutator; consumers learn of it only through events and re-sync it
// through explicit status updates.
type State struct {
	CheckedIn bool
	Away      bool
	AwayStart time.Time
}

// EventKind enumerates the signals the monitor emits toward its consumer.
type EventKind int

const (
	// EventAutoCheckIn asks the consumer to open today's record.
	EventAutoCheckIn EventKind = iota
	// EventAutoCheckOut asks for a full checkout with a precise end; the
	// consumer replies with an acknowledgment (shutdown handshake).
	EventAutoCheckOut
	// EventAwayStart reports an away session opening at Start.
	EventAwayStart
	// EventAwayEnd reports an away session closing over [Start, End].
	EventAwayEnd
	// EventSnapshot asks the consumer to store a duration snapshot using
	// the current time as end, without setting a checkout.
	EventSnapshot
)

func (k EventKind) String() string {
	switch k {
	case EventAutoCheckIn:
		return "auto-check-in"
	case EventAutoCheckOut:
		return "auto-check-out"
	case EventAwayStart:
		return "auto-away-start"
	case EventAwayEnd:
		return "auto-away-end"
	case EventSnapshot:
		return "auto-update-work-duration"
	}
	return "unknown"
}

// Event is one lifecycle signal. Start and End are set only for the away
// events.
type Event struct {
	Kind  EventKind
	Start time.Time
	End   time.Time
}

// Sample is one tick's worth of input. The Engine only builds one from a
// successful idle query; a failed query skips the tick entirely.
type Sample struct {
	Now  time.Time
	Idle time.Duration
}

// Tick evaluates one monitor cycle and returns the next state plus any
// events to emit. It never mutates its input.
func Tick(s State, in Sample, w config.Windows) (State, []Event) {
	if !s.CheckedIn {
		return s, nil
	}

	// Exclusion windows close an in-progress away but never open one.
	if w.Excluded(in.Now) {
		if s.Away {
			return closeAway(s, in.Now)
		}
		return s, nil
	}

	if in.Idle >= IdleThreshold && !s.Away {
		start := in.Now.Add(-IdleThreshold)
		lunchEnd := w.LunchEnd.On(in.Now)
		if start.Before(lunchEnd) && !in.Now.Before(lunchEnd) {
			// Idling began before lunch ended: the pre-lunch part is
			// excluded time, so the session starts at lunch end, and
			// only once it is long enough to be worth recording.
			if in.Now.Before(lunchEnd.Add(LunchGuard)) {
				return s, nil
			}
			start = lunchEnd
		}
		s.Away = true
		s.AwayStart = start
		return s, []Event{{Kind: EventAwayStart, Start: start}}
	}

	if s.Away && in.Idle < ActivityThreshold {
		return closeAway(s, in.Now)
	}

	return s, nil
}

func closeAway(s State, now time.Time) (State, []Event) {
	ev := Event{Kind: EventAwayEnd, Start: s.AwayStart, End: now}
	s.Away = false
	s.AwayStart = time.Time{}
	return s, []Event{ev}
}

// Startup is evaluated once when the monitor starts: request an automatic
// check-in if the working day has begun and nobody checked in yet. The
// consumer performs the check-in and reports back via status sync; state
// is not mutated here.
func Startup(s State, now time.Time) []Event {
	if now.Hour() >= AutoCheckInHour && !s.CheckedIn {
		return []Event{{Kind: EventAutoCheckIn}}
	}
	return nil
}

// Resume handles waking from sleep: re-run the auto-check-in rule and
// close any away session at the resume instant.
func Resume(s State, now time.Time) (State, []Event) {
	events := Startup(s, now)
	if s.Away {
		var closed []Event
		s, closed = closeAway(s, now)
		events = append(events, closed...)
	}
	return s, events
}

// Suspend handles sleep or shutdown. After SnapshotHour the session is
// assumed over and a duration snapshot is requested; earlier suspends
// emit nothing, since the same working day continues after resume. The
// precise resume time is unknowable here, so this is never a checkout.
func Suspend(s State, now time.Time) []Event {
	if s.CheckedIn && now.Hour() >= SnapshotHour {
		return []Event{{Kind: EventSnapshot}}
	}
	return nil
}
