// Package memory keeps screenshots in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/store"
)

// Store is a map guarded by a mutex. Records are copied in and out.
type Store struct {
	mu    sync.RWMutex
	shots map[string]shot.Screenshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{shots: make(map[string]shot.Screenshot)}
}

func (s *Store) List(_ context.Context) ([]*shot.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*shot.Screenshot, 0, len(s.shots))
	for _, v := range s.shots {
		sum := v.Summary()
		out = append(out, &sum)
	}
	store.SortNewest(out)
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (*shot.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.shots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	v.Edited = append([]byte(nil), v.Edited...)
	return &v, nil
}

func (s *Store) Save(_ context.Context, sc *shot.Screenshot) error {
	if err := store.ValidID(sc.ID); err != nil {
		return err
	}
	v := *sc
	v.Edited = append([]byte(nil), sc.Edited...)
	s.mu.Lock()
	s.shots[sc.ID] = v
	s.mu.Unlock()
	logrus.WithField("screenshot_id", sc.ID).Debug("screenshot saved")
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shots[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.shots, id)
	logrus.WithField("screenshot_id", id).Debug("screenshot deleted")
	return nil
}
