// Package power watches logind for sleep and shutdown transitions and
// feeds them into the monitor engine.
package power

import (
	"context"
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
	"github.com/presenced/presenced/internal/monitor"
)

// Watch subscribes to PrepareForSleep and PrepareForShutdown on the
// system bus and calls the matching engine handlers until ctx is done.
func Watch(ctx context.Context, eng *monitor.Engine) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	for _, member := range []string{"PrepareForSleep", "PrepareForShutdown"} {
		if err := conn.AddMatchSignal(
			dbus.WithMatchObjectPath("/org/freedesktop/login1"),
			dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
			dbus.WithMatchMember(member),
		); err != nil {
			return fmt.Errorf("add match failed: %w", err)
		}
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)

	for {
		select {
		case sig := <-c:
			switch sig.Name {
			case "org.freedesktop.login1.Manager.PrepareForSleep":
				if len(sig.Body) == 0 {
					break
				}
				sleeping, _ := sig.Body[0].(bool)
				if sleeping {
					log.Println("System is going to sleep")
					eng.HandleSuspend()
				} else {
					log.Println("System has woken up")
					eng.HandleResume()
				}
			case "org.freedesktop.login1.Manager.PrepareForShutdown":
				if len(sig.Body) == 0 {
					break
				}
				shuttingDown, _ := sig.Body[0].(bool)
				if shuttingDown {
					log.Println("System is shutting down")
					eng.HandleSuspend()
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}
