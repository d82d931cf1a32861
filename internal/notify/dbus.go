//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"

	appName = "Reprise"
)

type dbusNotifier struct {
	obj dbus.BusObject
}

// New connects to the notification server on the session bus. Without a
// session bus it returns Discard.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Discard{}, nil //nolint:nilerr // no session bus, nothing to show
	}
	return &dbusNotifier{obj: conn.Object(notificationsName, notificationsPath)}, nil
}

func (d *dbusNotifier) Notify(n Notification) (uint32, error) {
	call := d.obj.Call(notificationsName+".Notify", 0,
		appName,
		n.Replaces,
		"",
		n.Summary,
		n.Body,
		[]string{},
		hints(n),
		expiry(n.Timeout),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

func (d *dbusNotifier) Close(id uint32) error {
	return d.obj.Call(notificationsName+".CloseNotification", 0, id).Err
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant("reprise"),
	}
	if n.Image != "" {
		h["image-path"] = dbus.MakeVariant(n.Image)
	}
	return h
}
