package editor

import (
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/example/shotmark/internal/tools"
)

// TextEntry is the overlay shown while text is being typed. It is not part
// of the surface until confirmed.
type TextEntry struct {
	Anchor image.Point
	Text   string
	Size   float64
	Color  color.RGBA
	Active bool

	settings tools.Settings
}

func newTextEntry(at image.Point, set tools.Settings) *TextEntry {
	return &TextEntry{
		Anchor:   at,
		Size:     tools.TextSize(set.Width),
		Color:    set.Color,
		Active:   true,
		settings: set,
	}
}

// TextEntry returns a copy of the pending entry.
func (s *Session) TextEntry() (TextEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TextPending || s.pending == nil {
		return TextEntry{}, false
	}
	return *s.pending, true
}

// TextAnchorInView places the pending entry on the display. The position is
// derived from the current view each call, so it follows any rescaling.
func (s *Session) TextAnchorInView(v View) (x, y float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TextPending || s.pending == nil {
		return 0, 0, false
	}
	x, y = ToView(s.pending.Anchor, v, s.surface.Width(), s.surface.Height())
	return x, y, true
}

// TypeText appends to the pending entry.
func (s *Session) TypeText(str string) error {
	s.mu.Lock()
	if s.state != TextPending {
		s.mu.Unlock()
		return ErrNoTextEntry
	}
	s.pending.Text += str
	s.mu.Unlock()
	s.notify()
	return nil
}

// Backspace removes the last rune of the pending entry.
func (s *Session) Backspace() error {
	s.mu.Lock()
	if s.state != TextPending {
		s.mu.Unlock()
		return ErrNoTextEntry
	}
	if _, size := utf8.DecodeLastRuneInString(s.pending.Text); size > 0 {
		s.pending.Text = s.pending.Text[:len(s.pending.Text)-size]
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// ConfirmText closes the pending entry with text, as Enter or loss of focus
// would. Non-blank text is rendered and committed; blank text is dropped. It
// reports whether a snapshot was committed.
func (s *Session) ConfirmText(text string) (bool, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return false, ErrNotReady
	}
	if s.state != TextPending {
		s.mu.Unlock()
		return false, ErrNoTextEntry
	}
	committed, err := s.confirmLocked(text)
	s.mu.Unlock()
	s.notify()
	return committed, err
}

// CommitText confirms the pending entry with the text typed so far.
func (s *Session) CommitText() (bool, error) {
	entry, ok := s.TextEntry()
	if !ok {
		return false, ErrNoTextEntry
	}
	return s.ConfirmText(entry.Text)
}

// CancelText discards the pending entry without touching the surface.
func (s *Session) CancelText() {
	s.mu.Lock()
	if s.state != TextPending {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.state = Idle
	s.mu.Unlock()
	s.notify()
}

func (s *Session) confirmLocked(text string) (bool, error) {
	entry := s.pending
	s.pending = nil
	s.state = Idle
	if entry == nil {
		return false, nil
	}
	drawn, err := tools.RenderText(s.surface, entry.Anchor, text, entry.settings)
	if err != nil {
		s.log.WithError(err).Warn("text render failed")
		if rerr := s.surface.Blit(s.history.Current()); rerr != nil {
			s.log.WithError(rerr).Error("restore after text failure")
		}
		return false, err
	}
	if !drawn {
		return false, nil
	}
	s.history.Push(s.surface.Snapshot())
	s.log.WithField("index", s.history.Index()).Debug("text committed")
	return true, nil
}
