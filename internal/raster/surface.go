// Package raster implements the mutable pixel surface annotations are drawn
// onto. Every operation is synchronous, takes an explicit Paint and touches
// nothing outside the pixels it covers.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
)

// ErrSizeMismatch is returned when a snapshot does not match the surface.
var ErrSizeMismatch = errors.New("raster: snapshot size does not match surface")

// Surface is a fixed size RGBA buffer with a zero origin.
type Surface struct {
	img *image.RGBA
}

// New allocates a transparent surface.
func New(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// FromImage copies src onto a new zero-origin surface.
func FromImage(src image.Image) *Surface {
	b := src.Bounds()
	s := New(b.Dx(), b.Dy())
	draw.Draw(s.img, s.img.Bounds(), src, b.Min, draw.Src)
	return s
}

// Bounds reports the surface rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Width reports the surface width in pixels.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height reports the surface height in pixels.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Image exposes the live pixel buffer. Callers must treat it as read-only.
func (s *Surface) Image() *image.RGBA { return s.img }

// Snapshot returns a deep copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	return Clone(s.img)
}

// Blit replaces every pixel with the contents of src.
func (s *Surface) Blit(src *image.RGBA) error {
	if src == nil {
		return fmt.Errorf("raster: blit nil snapshot")
	}
	if !src.Bounds().Eq(s.img.Bounds()) {
		return ErrSizeMismatch
	}
	if src.Stride == s.img.Stride {
		copy(s.img.Pix, src.Pix)
		return nil
	}
	draw.Draw(s.img, s.img.Bounds(), src, src.Bounds().Min, draw.Src)
	return nil
}

// Equal reports whether the surface pixels match img exactly.
func (s *Surface) Equal(img *image.RGBA) bool {
	return Equal(s.img, img)
}

// Encode writes the surface as PNG.
func (s *Surface) Encode(w io.Writer) error {
	return png.Encode(w, s.img)
}

// EncodePNG returns the surface as PNG bytes.
func (s *Surface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone returns a deep copy of img.
func Clone(img *image.RGBA) *image.RGBA {
	if img == nil {
		return nil
	}
	out := &image.RGBA{
		Pix:    make([]byte, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(out.Pix, img.Pix)
	return out
}

// Equal reports whether two images hold identical pixels.
func Equal(a, b *image.RGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !a.Bounds().Eq(b.Bounds()) {
		return false
	}
	if a.Stride == b.Stride {
		return bytes.Equal(a.Pix, b.Pix)
	}
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if a.RGBAAt(x, y) != b.RGBAAt(x, y) {
				return false
			}
		}
	}
	return true
}

// composite applies mask to the surface with paint p.
func (s *Surface) composite(mask *image.Alpha, p Paint) bool {
	r := mask.Rect.Intersect(s.img.Bounds())
	if r.Empty() {
		return false
	}
	if p.Composite == CompositeClear {
		return s.clear(mask, r)
	}
	draw.DrawMask(s.img, r, p.source(), image.Point{}, mask, r.Min, draw.Over)
	return true
}

// clear scales existing pixels by the inverse of the mask coverage.
func (s *Surface) clear(mask *image.Alpha, r image.Rectangle) bool {
	touched := false
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(mask.AlphaAt(x, y).A)
			if m == 0 {
				continue
			}
			touched = true
			off := s.img.PixOffset(x, y)
			keep := 255 - m
			for i := 0; i < 4; i++ {
				s.img.Pix[off+i] = uint8(uint32(s.img.Pix[off+i]) * keep / 255)
			}
		}
	}
	return touched
}
