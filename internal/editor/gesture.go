package editor

import (
	"image"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/tools"
)

func (s *Session) toSurface(p Pointer) (image.Point, bool) {
	return ToSurface(p.X, p.Y, p.View, s.surface.Width(), s.surface.Height())
}

// PointerDown starts a gesture. With the text tool it opens a pending text
// entry at the pointer instead of starting a drag. A pending entry is
// confirmed first, as focus leaves it.
func (s *Session) PointerDown(p Pointer) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	pt, ok := s.toSurface(p)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	switch s.state {
	case TextPending:
		s.confirmLocked(s.pending.Text)
	case Dragging:
		// A release was lost; finish the old gesture before starting anew.
		s.endLocked()
	}
	set := s.settings
	if set.Tool == tools.Text {
		s.pending = newTextEntry(pt, set)
		s.state = TextPending
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{"x": pt.X, "y": pt.Y}).Debug("text entry opened")
		s.notify()
		return nil
	}
	strat, err := tools.NewStrategy(set)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	strat.Begin(sessionCanvas{s}, pt)
	s.drag = strat
	s.last = pt
	s.state = Dragging
	s.mu.Unlock()
	s.notify()
	return nil
}

// PointerMove continues a drag. Moves outside a drag are ignored.
func (s *Session) PointerMove(p Pointer) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.state != Dragging {
		s.mu.Unlock()
		return nil
	}
	pt, ok := s.toSurface(p)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.drag.Continue(sessionCanvas{s}, pt)
	s.last = pt
	s.mu.Unlock()
	s.notify()
	return nil
}

// PointerUp finishes a drag and commits it if it changed the surface. The
// gesture ends where the last move left it; the release position draws
// nothing.
func (s *Session) PointerUp(Pointer) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.state != Dragging {
		s.mu.Unlock()
		return nil
	}
	committed := s.endLocked()
	s.mu.Unlock()
	if committed {
		s.notify()
	}
	return nil
}

// PointerLeave finishes a drag at the last known position, exactly as a
// release would.
func (s *Session) PointerLeave() error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.state != Dragging {
		s.mu.Unlock()
		return nil
	}
	committed := s.endLocked()
	s.mu.Unlock()
	if committed {
		s.notify()
	}
	return nil
}

// endLocked closes the drag and pushes a snapshot when pixels changed.
func (s *Session) endLocked() bool {
	s.drag.End(sessionCanvas{s}, s.last)
	dirty := s.drag.Dirty()
	s.drag = nil
	s.state = Idle
	if !dirty {
		return false
	}
	s.history.Push(s.surface.Snapshot())
	s.log.WithFields(logrus.Fields{
		"tool":  s.settings.Tool.String(),
		"index": s.history.Index(),
	}).Debug("gesture committed")
	return true
}
