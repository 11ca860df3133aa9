// Package editor drives a single annotation session: it owns the raster
// surface, the snapshot history and the gesture state machine, and decides
// when the surface may be exported.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/raster"
	"github.com/example/shotmark/internal/tools"
)

var (
	// ErrNotReady is returned for input or export before an image is loaded.
	ErrNotReady = errors.New("editor: image not loaded")
	// ErrNoTextEntry is returned by text operations outside a pending entry.
	ErrNoTextEntry = errors.New("editor: no pending text entry")
	// ErrSuperseded is returned by a load that finished after a newer one
	// started. Its result is discarded.
	ErrSuperseded = errors.New("editor: load superseded")
)

// State is the gesture controller state.
type State int

const (
	Idle State = iota
	Dragging
	TextPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case TextPending:
		return "text-pending"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Pointer is a pointer event in client coordinates together with the view
// rectangle the surface occupied when the event happened.
type Pointer struct {
	X, Y float64
	View View
}

// Option configures a Session.
type Option func(*Session)

// WithSettings sets the initial tool configuration.
func WithSettings(s tools.Settings) Option { return func(e *Session) { e.settings = s } }

// WithHistoryLimit bounds the number of snapshots kept for undo.
func WithHistoryLimit(n int) Option { return func(e *Session) { e.historyLimit = n } }

// WithLoader sets the image source used by Load.
func WithLoader(l Loader) Option { return func(e *Session) { e.loader = l } }

// WithLogger sets the logger. Defaults to the standard logrus logger.
func WithLogger(l *logrus.Entry) Option { return func(e *Session) { e.log = l } }

// WithChangeListener registers fn to run after every visible change.
func WithChangeListener(fn func()) Option {
	return func(e *Session) { e.listeners = append(e.listeners, fn) }
}

// Session is one editor instance. All methods are safe to call from multiple
// goroutines; listeners run outside the lock.
type Session struct {
	mu sync.Mutex

	loader       Loader
	settings     tools.Settings
	historyLimit int
	log          *logrus.Entry
	listeners    []func()

	generation uint64
	ready      bool
	loadErr    error
	surface    *raster.Surface
	history    *history.History

	state   State
	drag    tools.Strategy
	last    image.Point
	pending *TextEntry
}

// New creates a session with no image loaded.
func New(opts ...Option) *Session {
	s := &Session{settings: tools.DefaultSettings()}
	for _, o := range opts {
		o(s)
	}
	if v, err := s.settings.Validate(); err == nil {
		s.settings = v
	} else {
		s.settings = tools.DefaultSettings()
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return s
}

// OnChange registers fn to run after every visible change.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	ls := make([]func(), len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

// Ready reports whether an image is loaded and input is accepted.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// LoadErr returns the error of the last failed load.
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// State returns the gesture controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Size returns the surface dimensions.
func (s *Session) Size() (w, h int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return 0, 0, false
	}
	return s.surface.Width(), s.surface.Height(), true
}

// Frame returns a copy of the surface pixels for display.
func (s *Session) Frame() (*image.RGBA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, false
	}
	return s.surface.Snapshot(), true
}

// Settings returns the tool configuration for the next gesture.
func (s *Session) Settings() tools.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Configure replaces the tool configuration. It takes effect on the next
// gesture; a drag in progress keeps the settings it started with.
func (s *Session) Configure(set tools.Settings) error {
	v, err := set.Validate()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.settings = v
	s.mu.Unlock()
	s.log.WithField("settings", v.String()).Debug("tool settings changed")
	s.notify()
	return nil
}

// SetTool selects the tool for the next gesture.
func (s *Session) SetTool(t tools.Tool) error {
	set := s.Settings()
	set.Tool = t
	return s.Configure(set)
}

// SetWidth sets the stroke width, clamped to the supported range.
func (s *Session) SetWidth(w int) {
	set := s.Settings()
	set.Width = tools.ClampWidth(w)
	_ = s.Configure(set)
}

// SetColor selects a palette colour.
func (s *Session) SetColor(c color.RGBA) error {
	set := s.Settings()
	set.Color = c
	return s.Configure(set)
}

// CanUndo reports whether Undo would change the surface.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && s.history.CanUndo()
}

// CanRedo reports whether Redo would change the surface.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && s.history.CanRedo()
}

// HistoryLen returns the number of snapshots held, zero before loading.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return 0
	}
	return s.history.Len()
}

// HistoryIndex returns the snapshot the surface shows, -1 before loading.
func (s *Session) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return -1
	}
	return s.history.Index()
}

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo or a drag is in progress.
func (s *Session) Undo() bool {
	return s.step(func(h *history.History) (*image.RGBA, bool) { return h.Undo() }, "undo")
}

// Redo restores the next snapshot. It reports false when there is nothing to
// redo or a drag is in progress.
func (s *Session) Redo() bool {
	return s.step(func(h *history.History) (*image.RGBA, bool) { return h.Redo() }, "redo")
}

func (s *Session) step(move func(*history.History) (*image.RGBA, bool), name string) bool {
	s.mu.Lock()
	if !s.ready || s.state == Dragging {
		s.mu.Unlock()
		return false
	}
	if s.state == TextPending {
		// Reaching for undo blurs the text entry, which confirms it.
		s.confirmLocked(s.pending.Text)
	}
	snap, ok := move(s.history)
	if ok {
		if err := s.surface.Blit(snap); err != nil {
			s.log.WithError(err).Errorf("%s restore failed", name)
		}
	}
	idx := s.history.Index()
	s.mu.Unlock()
	if ok {
		s.log.WithField("index", idx).Debug(name)
		s.notify()
	}
	return ok
}

// sessionCanvas exposes the session to tool strategies. Callers hold s.mu.
type sessionCanvas struct{ s *Session }

func (c sessionCanvas) Surface() *raster.Surface { return c.s.surface }
func (c sessionCanvas) Base() *image.RGBA        { return c.s.history.Current() }
