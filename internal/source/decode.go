package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for data that is not a supported image format.
var ErrNotImage = errors.New("source: not a supported image")

var supported = map[string]bool{
	"png":  true,
	"jpg":  true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
}

// Sniff reports the image format of data by its magic bytes.
func Sniff(data []byte) (ext, mime string, err error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", "", fmt.Errorf("sniff: %w", err)
	}
	if kind == filetype.Unknown || !supported[kind.Extension] {
		return "", "", ErrNotImage
	}
	return kind.Extension, kind.MIME.Value, nil
}

// DefaultMaxPixels caps width*height of a decoded image.
const DefaultMaxPixels = 64 << 20

// Decode sniffs and decodes data within DefaultMaxPixels, returning the
// detected MIME type.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit is Decode with a pixel budget checked against the image header
// before any pixels are allocated. A budget of zero or less disables it.
func DecodeLimit(data []byte, maxPixels int64) (image.Image, string, error) {
	_, mime, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s header: %w", mime, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d is over %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", mime, err)
	}
	return img, mime, nil
}

// ToRGBA returns img as a zero-origin RGBA image, copying when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Thumbnail scales img to fit within maxW by maxH keeping its aspect ratio.
// Images already small enough are returned as a copy.
func Thumbnail(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	if w <= maxW && h <= maxH {
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
		return out
	}
	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	tw := max(1, int(float64(w)*scale+0.5))
	th := max(1, int(float64(h)*scale+0.5))
	return transform.Resize(img, tw, th, transform.Linear)
}
