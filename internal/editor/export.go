package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
)

// TrySave encodes the current surface as PNG. Before an image is loaded it
// fails with ErrNotReady rather than producing an empty image. Pending text
// that has not been confirmed is not included.
func (s *Session) TrySave() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the current surface to w as PNG.
func (s *Session) Encode(w io.Writer) error {
	img, err := s.Export()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Export returns a copy of the current surface.
func (s *Session) Export() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}
	return s.surface.Snapshot(), nil
}
