package editor

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/raster"
)

// Loader resolves an image reference such as a URL or file path.
type Loader interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

// Fetch calls f.
func (f LoaderFunc) Fetch(ctx context.Context, ref string) (image.Image, error) { return f(ctx, ref) }

// Load starts fetching ref in the background. The session drops its current
// image and rejects input until the fetch completes. The returned channel
// receives the outcome once; a result overtaken by a later Load reports
// ErrSuperseded and leaves the session untouched.
func (s *Session) Load(ctx context.Context, ref string) <-chan error {
	done := make(chan error, 1)
	s.mu.Lock()
	loader := s.loader
	s.mu.Unlock()
	if loader == nil {
		done <- errors.New("editor: no loader configured")
		close(done)
		return done
	}
	gen := s.begin()
	log := s.log.WithField("ref", ref)
	log.Debug("loading image")
	go func() {
		defer close(done)
		img, err := loader.Fetch(ctx, ref)
		if err != nil {
			err = fmt.Errorf("load %s: %w", ref, err)
		}
		err = s.complete(gen, img, err)
		switch {
		case errors.Is(err, ErrSuperseded):
			log.Debug("stale load discarded")
		case err != nil:
			log.WithError(err).Warn("image load failed")
		default:
			log.Info("image loaded")
		}
		done <- err
	}()
	return done
}

// LoadImage installs img synchronously, replacing any current image.
func (s *Session) LoadImage(img image.Image) error {
	return s.complete(s.begin(), img, nil)
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.ready = false
	s.loadErr = nil
	s.surface = nil
	s.history = nil
	s.state = Idle
	s.drag = nil
	s.pending = nil
	s.mu.Unlock()
	s.notify()
	return gen
}

func (s *Session) complete(gen uint64, img image.Image, err error) error {
	if err == nil {
		if img == nil {
			err = errors.New("editor: nil image")
		} else if img.Bounds().Empty() {
			err = fmt.Errorf("editor: empty image %v", img.Bounds())
		}
	}
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		s.loadErr = err
		s.mu.Unlock()
		s.notify()
		return err
	}
	surf := raster.FromImage(img)
	var opts []history.Option
	if s.historyLimit > 0 {
		opts = append(opts, history.WithLimit(s.historyLimit))
	}
	s.surface = surf
	s.history = history.New(surf.Snapshot(), opts...)
	s.ready = true
	s.state = Idle
	s.mu.Unlock()
	s.notify()
	return nil
}
