package ipc

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// DesktopNotifier sends notifications via org.freedesktop.Notifications
// on the user's session bus.
type DesktopNotifier struct {
	conn *dbus.Conn
}

func NewDesktopNotifier() (*DesktopNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &DesktopNotifier{conn: conn}, nil
}

func (n *DesktopNotifier) Close() error {
	return n.conn.Close()
}

func (n *DesktopNotifier) Notify(title, body string) error {
	obj := n.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"presenced",        // app_name
		uint32(0),          // replaces_id
		"appointment-soon", // app_icon
		title,
		body,
		[]string{}, // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(1)),
		},
		int32(10000), // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
