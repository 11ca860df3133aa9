package raster

import (
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse font: %w", fontErr)
		}
	})
	return regular, fontErr
}

// NewFace builds a text face for a pixel size. Faces are not safe for
// concurrent use, so each caller owns the one it gets and closes it.
func NewFace(size float64) (font.Face, error) {
	if size <= 0 || math.IsNaN(size) {
		return nil, fmt.Errorf("raster: invalid text size %v", size)
	}
	f, err := loadFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}

// MeasureText returns the bounding box of text at the given size relative to
// its top-left corner, plus the offset of the baseline from the top.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := NewFace(size)
	if err != nil {
		return 0, 0, 0, err
	}
	defer face.Close()
	width, height, baseline = measure(face, text)
	return width, height, baseline, nil
}

func measure(face font.Face, text string) (width, height, baseline int) {
	d := &font.Drawer{Face: face}
	width = d.MeasureString(text).Ceil()
	m := face.Metrics()
	baseline = m.Ascent.Ceil()
	height = baseline + m.Descent.Ceil()
	return width, height, baseline
}

// FillText renders text with its top-left corner at pt and returns the
// rectangle the glyphs may occupy.
func (s *Surface) FillText(pt image.Point, text string, p Paint, size float64) (image.Rectangle, error) {
	if p.Composite == CompositeClear {
		return image.Rectangle{}, fmt.Errorf("raster: text cannot use clear composition")
	}
	face, err := NewFace(size)
	if err != nil {
		return image.Rectangle{}, err
	}
	defer face.Close()
	w, h, baseline := measure(face, text)
	d := &font.Drawer{
		Dst:  s.img,
		Src:  p.source(),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+baseline),
	}
	d.DrawString(text)
	return image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h).Intersect(s.Bounds()), nil
}
