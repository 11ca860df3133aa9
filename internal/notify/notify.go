package notify

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/config"
	"github.com/example/shotmark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture fires when a screenshot lands in the gallery.
	EventCapture Event = "capture"
	// EventSave fires when an annotated image is written.
	EventSave Event = "save"
	// EventCopy fires when an image goes to the clipboard.
	EventCopy Event = "copy"
)

// sendTimeout bounds a single call to the platform notifier.
const sendTimeout = 3 * time.Second

// Preferences holds the title and per-event templates.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the stock wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "shotmark",
		Templates: map[Event]string{
			EventCapture: "Captured %s",
			EventSave:    "Saved %s",
			EventCopy:    "Copied %s to clipboard",
		},
	}
}

// Sender delivers one notification.
type Sender func(ctx context.Context, title, body string, opts platform.Options) (uint32, error)

// Notifier sends OS notifications for the enabled events.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))}
	for k, v := range prefs.Templates {
		cloned.Templates[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// FromConfig builds a Notifier from the [notify] section.
func FromConfig(c config.Notify) *Notifier {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(c.Title); v != "" {
		prefs.Title = v
	}
	for event, v := range map[Event]string{
		EventCapture: c.CaptureText,
		EventSave:    c.SaveText,
		EventCopy:    c.CopyText,
	} {
		if v = strings.TrimSpace(v); v != "" {
			prefs.Templates[event] = v
		}
	}
	n := New(prefs)
	n.Enable(EventCapture, c.Capture)
	n.Enable(EventSave, c.Save)
	n.Enable(EventCopy, c.Copy)
	return n
}

// Enable toggles one event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// SetSender replaces the platform notifier.
func (n *Notifier) SetSender(s Sender) {
	if n != nil && s != nil {
		n.send = s
	}
}

// Capture announces a capture, with img as the icon when given.
func (n *Notifier) Capture(ctx context.Context, detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	var opts platform.Options
	if img != nil {
		path, cleanup, err := writePreview(img)
		if err != nil {
			logrus.WithError(err).Debug("notification preview")
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(ctx, EventCapture, detail, opts)
}

// Save announces a written file. The file itself is used as the icon.
func (n *Notifier) Save(ctx context.Context, path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	var opts platform.Options
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(ctx, EventSave, detail, opts)
}

// Copy announces a clipboard copy.
func (n *Notifier) Copy(ctx context.Context, detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(ctx, EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(ctx context.Context, event Event, detail string, opts platform.Options) {
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	opts.AppName = n.prefs.Title
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	log := logrus.WithField("event", event)
	if _, err := n.send(ctx, n.prefs.Title, body, opts); err != nil {
		log.WithError(err).Warn("notification failed")
		return
	}
	log.WithField("body", body).Debug("notification sent")
}

func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "shotmark-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", path).Debug("remove preview")
		}
	}
	return path, cleanup, nil
}
