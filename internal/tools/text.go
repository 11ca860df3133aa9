package tools

import (
	"image"
	"strings"

	"github.com/example/shotmark/internal/raster"
)

// RenderText draws a confirmed text entry with its top-left corner at p.
// Blank entries are ignored and report false.
func RenderText(dst *raster.Surface, p image.Point, text string, s Settings) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	s, err := s.Validate()
	if err != nil {
		return false, err
	}
	if _, err := dst.FillText(p, text, raster.Solid(s.Color, s.Width), TextSize(s.Width)); err != nil {
		return false, err
	}
	return true, nil
}
