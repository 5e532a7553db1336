package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/presenced/presenced/internal/config"
)

// IdleSource reports how long the OS has gone without user input.
type IdleSource interface {
	IdleTime(ctx context.Context) (time.Duration, error)
}

// Engine owns the monitor state and drives the one-minute tick loop. All
// external status syncs and window updates are serialized through its
// mutex; the tick handler performs no blocking I/O beyond the idle query.
type Engine struct {
	mu      sync.Mutex
	state   State
	windows config.Windows

	idle   IdleSource
	events chan Event
	ack    chan struct{}
}

func NewEngine(idle IdleSource, w config.Windows) *Engine {
	return &Engine{
		idle:    idle,
		windows: w,
		events:  make(chan Event, 32),
		ack:     make(chan struct{}, 1),
	}
}

// Events is the one-way signal channel toward the consumer. Delivery is
// fire-and-forget: the engine never blocks on a slow reader.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Run starts the periodic checker (runs every minute).
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	log.Println("Idle monitor started - checking once per minute...")

	e.mu.Lock()
	startup := Startup(e.state, time.Now())
	e.mu.Unlock()
	e.emit(startup)

	for {
		select {
		case <-ctx.Done():
			log.Println("Idle monitor shutting down...")
			return nil
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	idle, err := e.idle.IdleTime(ctx)
	if err != nil {
		// a missed tick only delays detection by one cycle; without a
		// real idle reading no transition can be trusted
		log.Printf("idle query failed, skipping tick: %v", err)
		return
	}

	e.mu.Lock()
	next, events := Tick(e.state, Sample{Now: time.Now(), Idle: idle}, e.windows)
	e.state = next
	e.mu.Unlock()

	e.emit(events)
}

func (e *Engine) emit(events []Event) {
	for _, ev := range events {
		select {
		case e.events <- ev:
		default:
			log.Printf("event channel full, dropping %s", ev.Kind)
		}
	}
}

// HandleResume is called by the power watcher when the system wakes.
func (e *Engine) HandleResume() {
	e.mu.Lock()
	next, events := Resume(e.state, time.Now())
	e.state = next
	e.mu.Unlock()

	e.emit(events)
}

// HandleSuspend is called when the system sleeps or shuts down.
func (e *Engine) HandleSuspend() {
	e.mu.Lock()
	events := Suspend(e.state, time.Now())
	e.mu.Unlock()

	e.emit(events)
}

// Status returns a copy of the monitor state.
func (e *Engine) Status() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Windows returns the engine's current exclusion windows.
func (e *Engine) Windows() config.Windows {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.windows
}

// SetCheckedIn syncs the checked-in flag after the consumer mutated the
// authoritative record. The engine's copy is advisory only.
func (e *Engine) SetCheckedIn(checkedIn bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CheckedIn = checkedIn
	if !checkedIn {
		e.state.Away = false
		e.state.AwayStart = time.Time{}
	}
}

// SetAway syncs a manual away toggle. A manual away starts counting now;
// ending one clears the start marker.
func (e *Engine) SetAway(away bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Away = away
	if away {
		e.state.AwayStart = time.Now()
	} else {
		e.state.AwayStart = time.Time{}
	}
}

// SetWindows applies a pushed exclusion-window update.
func (e *Engine) SetWindows(w config.Windows) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.windows = w
}

// AckCheckout signals that a requested full checkout completed.
func (e *Engine) AckCheckout() {
	select {
	case e.ack <- struct{}{}:
	default:
	}
}

// RequestCheckout runs the termination handshake: emit a full-checkout
// request and wait up to timeout for the acknowledgment. It returns false
// on timeout; the caller terminates either way, a checkout failure must
// never block shutdown.
func (e *Engine) RequestCheckout(timeout time.Duration) bool {
	e.mu.Lock()
	checkedIn := e.state.CheckedIn
	e.mu.Unlock()
	if !checkedIn {
		return true
	}

	// drain any stale ack
	select {
	case <-e.ack:
	default:
	}

	e.emit([]Event{{Kind: EventAutoCheckOut}})

	select {
	case <-e.ack:
		return true
	case <-time.After(timeout):
		log.Println("checkout confirmation timed out, terminating anyway")
		return false
	}
}
