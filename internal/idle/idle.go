// Package idle reads the time since last user input from the desktop
// session over D-Bus.
package idle

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mutterService = "org.gnome.Mutter.IdleMonitor"
	mutterPath    = "/org/gnome/Mutter/IdleMonitor/Core"
	mutterMethod  = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

// Monitor queries the session compositor's idle counter. Query failures
// are expected to be unrecoverable within a tick; callers skip the tick
// and retry on the next one.
type Monitor struct {
	conn *dbus.Conn
}

func NewMonitor() (*Monitor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Monitor{conn: conn}, nil
}

func (m *Monitor) Close() error {
	return m.conn.Close()
}

// IdleTime returns the time since last input.
func (m *Monitor) IdleTime(ctx context.Context) (time.Duration, error) {
	obj := m.conn.Object(mutterService, mutterPath)

	var idleMillis uint64
	call := obj.CallWithContext(ctx, mutterMethod, 0)
	if call.Err != nil {
		return 0, fmt.Errorf("failed to query idle time: %w", call.Err)
	}
	if err := call.Store(&idleMillis); err != nil {
		return 0, fmt.Errorf("failed to parse idle time: %w", err)
	}

	return time.Duration(idleMillis) * time.Millisecond, nil
}
