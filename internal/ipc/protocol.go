// Package ipc exposes the daemon's control surface on the session D-Bus
// and sends desktop notifications.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/presenced/presenced/internal/config"
	"github.com/presenced/presenced/internal/monitor"
	"github.com/presenced/presenced/internal/record"
	"github.com/presenced/presenced/internal/service"
)

const (
	ObjectPath    = "/io/github/presenced"
	InterfaceName = "io.github.presenced.Manager"
	ServiceName   = "io.github.presenced"
)

// Manager is the object exported over D-Bus for pctl.
type Manager struct {
	Svc    *service.Service
	Engine *monitor.Engine
}

func dbusErr(err error) *dbus.Error {
	return dbus.MakeFailedError(err)
}

// callCtx bounds each control call; pctl should never hang on the store.
func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func (m *Manager) CheckIn(memo string) (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	rec, err := m.Svc.CheckIn(ctx, false, memo)
	if err != nil {
		return "", dbusErr(err)
	}
	m.Engine.SetCheckedIn(rec.IsOpen())
	return rec.ID, nil
}

func (m *Manager) CheckOut() (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	rec, err := m.Svc.CheckOut(ctx, false)
	if err != nil {
		return "", dbusErr(err)
	}
	m.Engine.SetCheckedIn(false)
	return rec.ID, nil
}

func (m *Manager) CancelCheckOut() (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	rec, err := m.Svc.CancelCheckOut(ctx)
	if err != nil {
		return "", dbusErr(err)
	}
	m.Engine.SetCheckedIn(true)
	return rec.ID, nil
}

func (m *Manager) StartAway() (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	aw, err := m.Svc.StartAway(ctx, time.Now(), false)
	if err != nil {
		return "", dbusErr(err)
	}
	m.Engine.SetAway(true)
	return aw.ID, nil
}

func (m *Manager) EndAway() (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	aw, err := m.Svc.EndAway(ctx, time.Now())
	if err != nil {
		return "", dbusErr(err)
	}
	m.Engine.SetAway(false)
	if aw == nil {
		return "", dbusErr(errors.New("no away session in progress"))
	}
	return aw.ID, nil
}

func (m *Manager) SetMemo(memo string) (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	rec, err := m.Svc.UpdateMemo(ctx, memo)
	if err != nil {
		return "", dbusErr(err)
	}
	return rec.ID, nil
}

// UpdateWindows pushes new exclusion windows into both the service and
// the engine; each keeps its own copy.
func (m *Manager) UpdateWindows(lunchStart, lunchEnd, workEnd string) *dbus.Error {
	var w config.Windows
	if err := w.LunchStart.UnmarshalText([]byte(lunchStart)); err != nil {
		return dbusErr(err)
	}
	if err := w.LunchEnd.UnmarshalText([]byte(lunchEnd)); err != nil {
		return dbusErr(err)
	}
	if err := w.WorkEnd.UnmarshalText([]byte(workEnd)); err != nil {
		return dbusErr(err)
	}
	if err := w.Validate(); err != nil {
		return dbusErr(err)
	}
	m.Svc.SetWindows(w)
	m.Engine.SetWindows(w)
	return nil
}

// Status is the JSON document pctl prints.
type Status struct {
	CheckedIn  bool               `json:"checked_in"`
	Away       bool               `json:"away"`
	AwayStart  *time.Time         `json:"away_start,omitempty"`
	Attendance *record.Attendance `json:"attendance,omitempty"`
	TodayAway  []record.Away      `json:"today_away,omitempty"`
	Windows    map[string]string  `json:"windows"`
}

func (m *Manager) GetStatus() (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	rec, aways, err := m.Svc.Today(ctx)
	if err != nil {
		return "", dbusErr(err)
	}

	st := m.Engine.Status()
	w := m.Engine.Windows()
	out := Status{
		CheckedIn:  st.CheckedIn,
		Away:       st.Away,
		Attendance: rec,
		TodayAway:  aways,
		Windows: map[string]string{
			"lunch_start": w.LunchStart.String(),
			"lunch_end":   w.LunchEnd.String(),
			"work_end":    w.WorkEnd.String(),
		},
	}
	if st.Away && !st.AwayStart.IsZero() {
		t := st.AwayStart
		out.AwayStart = &t
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", dbusErr(err)
	}
	return string(data), nil
}

func (m *Manager) Sweep() (string, *dbus.Error) {
	ctx, cancel := callCtx()
	defer cancel()

	result, err := m.Svc.Reconcile(ctx, time.Now())
	if err != nil {
		return "", dbusErr(err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", dbusErr(err)
	}
	return string(data), nil
}
