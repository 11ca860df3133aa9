// Package render post-processes exported annotations.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/blur"
)

// ShadowOptions configures the drop shadow placed behind an export.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions suits full-page screenshots.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  24,
		Offset:  image.Pt(16, 16),
		Opacity: 0.55,
	}
}

// Shadow returns img on a transparent canvas grown to hold a blurred drop
// shadow, together with where img's top-left corner landed. Zero opacity
// returns img unchanged.
func Shadow(img *image.RGBA, opts ShadowOptions) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || opts.Opacity <= 0 {
		return img, image.Point{}
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadowRect := padded.Add(opts.Offset)
	canvas := src.Union(shadowRect)
	shift := src.Min.Sub(canvas.Min)

	// Silhouette of the content in black, scaled by the shadow opacity.
	sil := image.NewRGBA(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			a := img.RGBAAt(x, y).A
			if a == 0 {
				continue
			}
			sil.SetRGBA(x-padded.Min.X, y-padded.Min.Y, color.RGBA{A: uint8(float64(a)*opacity + 0.5)})
		}
	}
	var shade image.Image = sil
	if radius > 0 {
		shade = blur.Gaussian(sil, float64(radius)/2)
	}

	dst := image.NewRGBA(canvas.Sub(canvas.Min))
	draw.Draw(dst, shade.Bounds().Add(shadowRect.Min.Sub(canvas.Min)), shade, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return dst, shift
}

// ShadowPNG decodes data, adds a shadow and encodes the result.
func ShadowPNG(data []byte, opts ShadowOptions) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	out, _ := Shadow(rgba, opts)
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
