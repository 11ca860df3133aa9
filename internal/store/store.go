// Package store defines persistence for screenshot records. Backends live
// in the subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/example/shotmark/internal/shot"
)

// ErrNotFound is returned when no screenshot has the requested id.
var ErrNotFound = errors.New("store: screenshot not found")

// Store persists screenshots.
type Store interface {
	// List returns every screenshot, newest first, without edited image
	// bytes.
	List(ctx context.Context) ([]*shot.Screenshot, error)
	// Get returns one screenshot including its edited image.
	Get(ctx context.Context, id string) (*shot.Screenshot, error)
	// Save inserts or replaces a screenshot.
	Save(ctx context.Context, s *shot.Screenshot) error
	// Delete removes a screenshot.
	Delete(ctx context.Context, id string) error
}

// ValidID rejects ids that could escape a key namespace.
func ValidID(id string) error {
	if id == "" || id == "." || id == ".." || path.Base(id) != id {
		return fmt.Errorf("store: invalid id %q", id)
	}
	return nil
}

// SortNewest orders screenshots by capture time, newest first. Ties keep
// the larger id first, which for ulids is the later one.
func SortNewest(list []*shot.Screenshot) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CapturedAt.Equal(b.CapturedAt) {
			return a.CapturedAt.After(b.CapturedAt)
		}
		return a.ID > b.ID
	})
}

// SetEdited stores png as the edited image of screenshot id.
func SetEdited(ctx context.Context, st Store, id string, png []byte) (*shot.Screenshot, error) {
	s, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Edited = png
	if err := st.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save edited %s: %w", id, err)
	}
	return s, nil
}
