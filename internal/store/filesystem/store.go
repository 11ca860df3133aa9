// Package filesystem stores each screenshot as a JSON file with the edited
// image alongside it as PNG.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/store"
)

const (
	metaExt   = ".json"
	editedExt = ".edited.png"
)

// Store keeps screenshots under a base directory.
type Store struct {
	basePath string
}

// NewStore creates basePath if needed.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) metaPath(id string) string   { return filepath.Join(s.basePath, id+metaExt) }
func (s *Store) editedPath(id string) string { return filepath.Join(s.basePath, id+editedExt) }

func (s *Store) List(ctx context.Context) ([]*shot.Screenshot, error) {
	log := logrus.WithField("path", s.basePath)
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	out := make([]*shot.Screenshot, 0, len(entries))
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, metaExt) {
			continue
		}
		sc, err := s.readMeta(strings.TrimSuffix(name, metaExt))
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("skipping unreadable screenshot")
			continue
		}
		out = append(out, sc)
	}
	store.SortNewest(out)
	return out, nil
}

func (s *Store) readMeta(id string) (*shot.Screenshot, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var sc shot.Screenshot
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	sc.Edited = nil
	return &sc, nil
}

func (s *Store) Get(_ context.Context, id string) (*shot.Screenshot, error) {
	if err := store.ValidID(id); err != nil {
		return nil, store.ErrNotFound
	}
	sc, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	edited, err := os.ReadFile(s.editedPath(id))
	switch {
	case err == nil:
		sc.Edited = edited
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read edited %s: %w", id, err)
	}
	return sc, nil
}

func (s *Store) Save(_ context.Context, sc *shot.Screenshot) error {
	if err := store.ValidID(sc.ID); err != nil {
		return err
	}
	log := logrus.WithField("screenshot_id", sc.ID)
	meta, err := json.MarshalIndent(sc.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", sc.ID, err)
	}
	if sc.HasEdit() {
		if err := writeAtomic(s.editedPath(sc.ID), sc.Edited); err != nil {
			return err
		}
	} else if err := os.Remove(s.editedPath(sc.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove edited %s: %w", sc.ID, err)
	}
	if err := writeAtomic(s.metaPath(sc.ID), meta); err != nil {
		return err
	}
	log.Debug("screenshot saved")
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	if err := store.ValidID(id); err != nil {
		return store.ErrNotFound
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if err := os.Remove(s.editedPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).WithField("screenshot_id", id).Warn("edited image left behind")
	}
	logrus.WithField("screenshot_id", id).Debug("screenshot deleted")
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
