// Package platform shows desktop notifications through the host's native
// notification service.
package platform

import "time"

// DefaultTimeout is how long a notification stays up when the host honours it.
const DefaultTimeout = 5 * time.Second

// Options configures one notification.
type Options struct {
	// AppName identifies the sender. Empty means "shotmark".
	AppName string
	// IconPath points at an image shown beside the text when supported.
	IconPath string
	Timeout  time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "shotmark"
	}
	return o.AppName
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
