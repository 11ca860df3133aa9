// Package history keeps the linear undo/redo timeline of committed surface
// snapshots.
package history

import "image"

// History is an ordered list of snapshots with a cursor on the one the
// surface currently shows. Snapshot 0 is the pristine image.
type History struct {
	snaps []*image.RGBA
	index int
	limit int
}

// Option configures a History.
type Option func(*History)

// WithLimit bounds the number of retained snapshots. Once exceeded the oldest
// edit is dropped while the pristine snapshot is kept. Values below two mean
// unlimited.
func WithLimit(n int) Option { return func(h *History) { h.limit = n } }

// New starts a history whose only entry is base.
func New(base *image.RGBA, opts ...Option) *History {
	h := &History{snaps: []*image.RGBA{base}}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Push discards any redo entries and appends snap as the current snapshot.
// The history takes ownership of snap.
func (h *History) Push(snap *image.RGBA) {
	for i := h.index + 1; i < len(h.snaps); i++ {
		h.snaps[i] = nil
	}
	h.snaps = append(h.snaps[:h.index+1], snap)
	h.index = len(h.snaps) - 1
	if h.limit >= 2 && len(h.snaps) > h.limit {
		h.snaps = append(h.snaps[:1], h.snaps[2:]...)
		h.index--
	}
}

// Undo moves the cursor back one entry and returns the snapshot to restore.
func (h *History) Undo() (*image.RGBA, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.index--
	return h.snaps[h.index], true
}

// Redo moves the cursor forward one entry and returns the snapshot to restore.
func (h *History) Redo() (*image.RGBA, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.index++
	return h.snaps[h.index], true
}

// Current returns the snapshot under the cursor.
func (h *History) Current() *image.RGBA { return h.snaps[h.index] }

// Base returns the pristine snapshot.
func (h *History) Base() *image.RGBA { return h.snaps[0] }

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool { return h.index < len(h.snaps)-1 }

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.snaps) }

// Index returns the cursor position.
func (h *History) Index() int { return h.index }
