package theme

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// Color is a color.RGBA that reads and writes as #RRGGBB or #RRGGBBAA.
type Color color.RGBA

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) { return color.RGBA(c).RGBA() }

// Std returns the plain color.RGBA value.
func (c Color) Std() color.RGBA { return color.RGBA(c) }

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if c.A == 255 {
		return []byte(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)), nil
	}
	return []byte(fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := parseColor(string(b))
	if err != nil {
		return err
	}
	*c = Color(v)
	return nil
}

// Theme defines the colors of the annotation window.
type Theme struct {
	Name string `toml:"name,omitempty"`

	// General
	Background Color `toml:"background"` // behind the canvas
	Foreground Color `toml:"foreground"` // status and shortcut text

	// Tool bar
	ToolbarBackground Color `toml:"toolbar_background"`
	ButtonBackground  Color `toml:"button_background"`
	ButtonActive      Color `toml:"button_active"`
	ButtonText        Color `toml:"button_text"`
	ButtonBorder      Color `toml:"button_border"`

	// Canvas
	CheckerLight Color `toml:"checker_light"`
	CheckerDark  Color `toml:"checker_dark"`

	Toast     Color `toml:"toast"`
	ToastText Color `toml:"toast_text"`
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:              "default",
		Background:        Color{220, 220, 220, 255},
		Foreground:        Color{0, 0, 0, 255},
		ToolbarBackground: Color{220, 220, 220, 255},
		ButtonBackground:  Color{200, 200, 200, 255},
		ButtonActive:      Color{150, 150, 150, 255},
		ButtonText:        Color{0, 0, 0, 255},
		ButtonBorder:      Color{0, 0, 0, 255},
		CheckerLight:      Color{220, 220, 220, 255},
		CheckerDark:       Color{192, 192, 192, 255},
		Toast:             Color{40, 40, 40, 230},
		ToastText:         Color{255, 255, 255, 255},
	}
}

func dark() *Theme {
	return &Theme{
		Name:              "dark",
		Background:        Color{30, 30, 30, 255},
		Foreground:        Color{230, 230, 230, 255},
		ToolbarBackground: Color{45, 45, 45, 255},
		ButtonBackground:  Color{60, 60, 60, 255},
		ButtonActive:      Color{100, 100, 100, 255},
		ButtonText:        Color{230, 230, 230, 255},
		ButtonBorder:      Color{120, 120, 120, 255},
		CheckerLight:      Color{70, 70, 70, 255},
		CheckerDark:       Color{50, 50, 50, 255},
		Toast:             Color{230, 230, 230, 230},
		ToastText:         Color{0, 0, 0, 255},
	}
}

func highContrast() *Theme {
	return &Theme{
		Name:              "high_contrast",
		Background:        Color{0, 0, 0, 255},
		Foreground:        Color{255, 255, 0, 255},
		ToolbarBackground: Color{0, 0, 0, 255},
		ButtonBackground:  Color{0, 0, 0, 255},
		ButtonActive:      Color{0, 0, 255, 255},
		ButtonText:        Color{255, 255, 255, 255},
		ButtonBorder:      Color{255, 255, 255, 255},
		CheckerLight:      Color{255, 255, 255, 255},
		CheckerDark:       Color{0, 0, 0, 255},
		Toast:             Color{255, 255, 0, 255},
		ToastText:         Color{0, 0, 0, 255},
	}
}

func hotdog() *Theme {
	return &Theme{
		Name:              "hotdog",
		Background:        Color{255, 0, 0, 255},
		Foreground:        Color{255, 255, 0, 255},
		ToolbarBackground: Color{255, 0, 0, 255},
		ButtonBackground:  Color{255, 255, 0, 255},
		ButtonActive:      Color{255, 128, 0, 255},
		ButtonText:        Color{0, 0, 0, 255},
		ButtonBorder:      Color{0, 0, 0, 255},
		CheckerLight:      Color{255, 255, 0, 255},
		CheckerDark:       Color{255, 0, 0, 255},
		Toast:             Color{0, 0, 0, 230},
		ToastText:         Color{255, 255, 0, 255},
	}
}

var builtins = map[string]func() *Theme{
	"default":       Default,
	"dark":          dark,
	"high_contrast": highContrast,
	"hotdog":        hotdog,
}

// Builtin returns a fresh copy of a built-in theme.
func Builtin(name string) (*Theme, bool) {
	fn, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names lists the built-in themes.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func parseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}

func (t *Theme) colors() []*Color {
	return []*Color{
		&t.Background, &t.Foreground, &t.ToolbarBackground,
		&t.ButtonBackground, &t.ButtonActive, &t.ButtonText, &t.ButtonBorder,
		&t.CheckerLight, &t.CheckerDark, &t.Toast, &t.ToastText,
	}
}

// FillDefaults sets every unset color of t from base.
func (t *Theme) FillDefaults(base *Theme) {
	dst, src := t.colors(), base.colors()
	for i, c := range dst {
		if *c == (Color{}) {
			*c = *src[i]
		}
	}
}
