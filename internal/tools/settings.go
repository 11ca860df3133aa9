package tools

import (
	"fmt"
	"image/color"
)

const (
	MinWidth     = 1
	MaxWidth     = 20
	DefaultWidth = 3

	// HighlighterOpacity is the fixed opacity of highlighter strokes.
	HighlighterOpacity = 0.5
)

// Settings is the tool configuration applied to the next gesture.
type Settings struct {
	Tool  Tool
	Width int
	Color color.RGBA
}

// DefaultSettings returns the configuration an editor opens with.
func DefaultSettings() Settings {
	return Settings{Tool: Pen, Width: DefaultWidth, Color: DefaultColor}
}

// ClampWidth limits w to the supported stroke widths.
func ClampWidth(w int) int {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

// Validate clamps the width and rejects unknown tools or colours outside the
// palette.
func (s Settings) Validate() (Settings, error) {
	if !s.Tool.Valid() {
		return s, fmt.Errorf("%w: %d", ErrUnknownTool, int(s.Tool))
	}
	if _, ok := ColorIndex(s.Color); !ok {
		return s, fmt.Errorf("%w: %s", ErrColorNotInPalette, Hex(s.Color))
	}
	s.Width = ClampWidth(s.Width)
	return s, nil
}

// TextSize returns the text size in pixels for a stroke width.
func TextSize(width int) float64 {
	return float64(10 + 2*ClampWidth(width))
}

// EraserRadius returns the eraser disc radius for a stroke width.
func EraserRadius(width int) int {
	return 2 * ClampWidth(width)
}

func (s Settings) String() string {
	return fmt.Sprintf("%s width=%d color=%s", s.Tool, s.Width, ColorName(s.Color))
}
