//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// Notify sends a desktop notification over the session bus and returns the
// server's notification id.
func Notify(ctx context.Context, title, body string, opts Options) (uint32, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("dbus connect: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logrus.WithError(cerr).Debug("dbus close")
		}
	}()

	var id uint32
	obj := conn.Object(notifyDest, notifyPath)
	err = obj.CallWithContext(ctx, notifyMethod, 0,
		opts.appName(), uint32(0), opts.IconPath, title, body,
		[]string{}, map[string]dbus.Variant{}, int32(opts.timeout().Milliseconds()),
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}
