package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/presenced/presenced/internal/monitor"
)

// Notifier delivers a desktop notification. Failures are logged and
// otherwise ignored.
type Notifier interface {
	Notify(title, body string) error
}

// Pump reads the engine's one-way event channel and performs the record
// mutations each event requests, then re-syncs the advisory engine state
// from the authoritative result. It is the only consumer of the channel.
type Pump struct {
	svc    *Service
	eng    *monitor.Engine
	notify Notifier
}

func NewPump(svc *Service, eng *monitor.Engine, notify Notifier) *Pump {
	return &Pump{svc: svc, eng: eng, notify: notify}
}

// Run processes events until ctx is done. A failed automatic action is
// logged and dropped; the monitor retries on its next qualifying tick or
// power event.
func (p *Pump) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.eng.Events():
			p.handle(ctx, ev)
		}
	}
}

func (p *Pump) handle(ctx context.Context, ev monitor.Event) {
	switch ev.Kind {
	case monitor.EventAutoCheckIn:
		rec, err := p.svc.CheckIn(ctx, true, "")
		if err != nil {
			log.Printf("auto check-in failed: %v", err)
			return
		}
		p.eng.SetCheckedIn(rec.IsOpen())
		if rec.IsOpen() {
			p.send("Checked in", fmt.Sprintf("Automatically checked in at %s",
				time.Now().Format("15:04")))
		}

	case monitor.EventAutoCheckOut:
		if _, err := p.svc.CheckOut(ctx, true); err != nil {
			log.Printf("auto check-out failed: %v", err)
			return
		}
		p.eng.SetCheckedIn(false)
		p.eng.AckCheckout()
		p.send("Checked out", fmt.Sprintf("Automatically checked out at %s",
			time.Now().Format("15:04")))

	case monitor.EventAwayStart:
		if _, err := p.svc.StartAway(ctx, ev.Start, true); err != nil {
			log.Printf("away start failed: %v", err)
			// no record was opened; undo the advisory flag so the
			// monitor can try again
			p.eng.SetAway(false)
			return
		}

	case monitor.EventAwayEnd:
		aw, err := p.svc.EndAway(ctx, ev.End)
		if err != nil {
			log.Printf("away end failed: %v", err)
			return
		}
		if aw != nil && aw.DurationMinutes != nil {
			p.send("Away ended", fmt.Sprintf("Away for %d minute(s)", *aw.DurationMinutes))
		}

	case monitor.EventSnapshot:
		if _, err := p.svc.SnapshotDuration(ctx, time.Now()); err != nil {
			log.Printf("duration snapshot failed: %v", err)
		}
	}
}

func (p *Pump) send(title, body string) {
	if p.notify == nil {
		return
	}
	if err := p.notify.Notify(title, body); err != nil {
		log.Printf("notification failed: %v", err)
	}
}
