package tools

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrColorNotInPalette is returned when a colour outside the palette is
// selected.
var ErrColorNotInPalette = errors.New("tools: color not in palette")

// PaletteColor is a palette entry with its display name.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"Red", color.RGBA{0xff, 0x33, 0x00, 0xff}},
	{"Orange", color.RGBA{0xff, 0x99, 0x00, 0xff}},
	{"Yellow", color.RGBA{0xff, 0xff, 0x00, 0xff}},
	{"Green", color.RGBA{0x33, 0xcc, 0x33, 0xff}},
	{"Blue", color.RGBA{0x33, 0x99, 0xff, 0xff}},
	{"Purple", color.RGBA{0x99, 0x33, 0xff, 0xff}},
	{"White", color.RGBA{0xff, 0xff, 0xff, 0xff}},
	{"Black", color.RGBA{0x00, 0x00, 0x00, 0xff}},
}

// DefaultColor is the colour selected when an editor opens.
var DefaultColor = palette[0].Color

// Palette returns a copy of the selectable colours.
func Palette() []color.RGBA {
	out := make([]color.RGBA, len(palette))
	for i, p := range palette {
		out[i] = p.Color
	}
	return out
}

// PaletteColors returns palette entries annotated with their display names.
func PaletteColors() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// ColorIndex returns the palette position of c.
func ColorIndex(c color.RGBA) (int, bool) {
	for i, p := range palette {
		if p.Color == c {
			return i, true
		}
	}
	return -1, false
}

// ColorAt returns the palette colour at idx, clamped to the palette range.
func ColorAt(idx int) color.RGBA {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	return palette[idx].Color
}

// ColorName returns the palette name of c or its hex form.
func ColorName(c color.RGBA) string {
	if i, ok := ColorIndex(c); ok {
		return palette[i].Name
	}
	return Hex(c)
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts a palette name, an SVG colour name or a #rrggbb value.
// The result is not checked against the palette.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	for _, p := range palette {
		if strings.EqualFold(p.Name, name) {
			return p.Color, nil
		}
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") {
		name = name[1:]
		if len(name) == 3 {
			name = string([]byte{name[0], name[0], name[1], name[1], name[2], name[2]})
		}
		if len(name) == 6 {
			v, err := strconv.ParseUint(name, 16, 32)
			if err == nil {
				return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
			}
		}
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

// ParsePaletteColor parses s and requires the result to be a palette colour.
func ParsePaletteColor(s string) (color.RGBA, error) {
	c, err := ParseColor(s)
	if err != nil {
		return c, err
	}
	if _, ok := ColorIndex(c); !ok {
		return color.RGBA{}, fmt.Errorf("%w: %s", ErrColorNotInPalette, Hex(c))
	}
	return c, nil
}

// NearestPaletteColor returns the palette colour closest to c by squared
// RGB distance.
func NearestPaletteColor(c color.RGBA) color.RGBA {
	best, bestDist := palette[0].Color, -1
	for _, p := range palette {
		dr := int(p.Color.R) - int(c.R)
		dg := int(p.Color.G) - int(c.G)
		db := int(p.Color.B) - int(c.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = p.Color, d
		}
	}
	return best
}
