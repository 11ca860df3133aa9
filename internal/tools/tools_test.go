package tools

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shotmark/internal/raster"
)

type testCanvas struct {
	surf *raster.Surface
	base *image.RGBA
}

func (c *testCanvas) Surface() *raster.Surface { return c.surf }
func (c *testCanvas) Base() *image.RGBA        { return c.base }

func newCanvas(w, h int) *testCanvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	s := raster.FromImage(img)
	return &testCanvas{surf: s, base: s.Snapshot()}
}

func settings(t Tool) Settings {
	s := DefaultSettings()
	s.Tool = t
	return s
}

func countNonWhite(img *image.RGBA) int {
	n := 0
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y) != white {
				n++
			}
		}
	}
	return n
}

func TestParseTool(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Tool
	}{
		{"pen", Pen},
		{"Pencil", Pen},
		{"highlighter", Highlighter},
		{"rect", Rectangle},
		{"circle", Circle},
		{" text ", Text},
		{"eraser", Eraser},
	} {
		got, err := ParseTool(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	_, err := ParseTool("lasso")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolShortcuts(t *testing.T) {
	for _, tool := range All() {
		got, ok := ToolForShortcut(tool.Shortcut())
		require.True(t, ok)
		assert.Equal(t, tool, got)
	}
	got, ok := ToolForShortcut('E')
	assert.True(t, ok)
	assert.Equal(t, Eraser, got)
	_, ok = ToolForShortcut('z')
	assert.False(t, ok)
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, Pen, s.Tool)
	assert.Equal(t, 3, s.Width)
	assert.Equal(t, color.RGBA{0xff, 0x33, 0x00, 0xff}, s.Color)

	s.Width = 50
	v, err := s.Validate()
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, v.Width)
	s.Width = -2
	v, _ = s.Validate()
	assert.Equal(t, MinWidth, v.Width)

	s.Color = color.RGBA{1, 2, 3, 0xff}
	_, err = s.Validate()
	assert.ErrorIs(t, err, ErrColorNotInPalette)

	s = DefaultSettings()
	s.Tool = Tool(42)
	_, err = s.Validate()
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestParseColor(t *testing.T) {
	c, err := ParsePaletteColor("#3399FF")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x33, 0x99, 0xff, 0xff}, c)
	c, err = ParsePaletteColor("purple")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x99, 0x33, 0xff, 0xff}, c, "palette names win over SVG names")
	c, err = ParsePaletteColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, c)
	_, err = ParsePaletteColor("teal")
	assert.ErrorIs(t, err, ErrColorNotInPalette)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestNearestPaletteColor(t *testing.T) {
	sky, err := ParseColor("dodgerblue")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x33, 0x99, 0xff, 0xff}, NearestPaletteColor(sky))
	assert.Equal(t, color.RGBA{0xff, 0x33, 0x00, 0xff}, NearestPaletteColor(color.RGBA{0xff, 0, 0, 0xff}))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, NearestPaletteColor(color.RGBA{10, 10, 10, 0xff}))
}

func TestTextSize(t *testing.T) {
	assert.Equal(t, 16.0, TextSize(3))
	assert.Equal(t, 12.0, TextSize(0))
	assert.Equal(t, 50.0, TextSize(20))
}

func TestTextHasNoStrategy(t *testing.T) {
	_, err := NewStrategy(settings(Text))
	assert.ErrorIs(t, err, ErrNotDraggable)
}

func TestPenStroke(t *testing.T) {
	c := newCanvas(100, 100)
	st, err := NewStrategy(settings(Pen))
	require.NoError(t, err)
	st.Begin(c, image.Pt(10, 10))
	assert.False(t, st.Dirty())
	st.Continue(c, image.Pt(50, 50))
	st.End(c, image.Pt(50, 50))
	assert.True(t, st.Dirty())
	assert.Equal(t, DefaultColor, c.surf.Image().RGBAAt(30, 30))
}

func TestRectanglePreviewLeavesOneOutline(t *testing.T) {
	c := newCanvas(200, 200)
	st, err := NewStrategy(settings(Rectangle))
	require.NoError(t, err)
	st.Begin(c, image.Pt(20, 20))
	for i := 0; i < 30; i++ {
		st.Continue(c, image.Pt(40+i*4, 40+i*3))
	}
	st.End(c, image.Pt(156, 127))
	assert.True(t, st.Dirty())

	want := raster.FromImage(c.base)
	want.StrokeRect(image.Pt(20, 20), image.Pt(156, 127), raster.Solid(DefaultColor, DefaultWidth))
	assert.True(t, want.Equal(c.surf.Image()))
}

func TestCirclePreviewBackToStartIsClean(t *testing.T) {
	c := newCanvas(100, 100)
	st, err := NewStrategy(settings(Circle))
	require.NoError(t, err)
	st.Begin(c, image.Pt(50, 50))
	st.Continue(c, image.Pt(70, 50))
	assert.True(t, st.Dirty())
	st.Continue(c, image.Pt(50, 50))
	st.End(c, image.Pt(50, 50))
	assert.False(t, st.Dirty())
	assert.True(t, c.surf.Equal(c.base))
}

func TestCircleRadius(t *testing.T) {
	c := newCanvas(120, 120)
	st, _ := NewStrategy(settings(Circle))
	st.Begin(c, image.Pt(60, 60))
	st.Continue(c, image.Pt(90, 100))
	img := c.surf.Image()
	assert.Equal(t, DefaultColor, img.RGBAAt(60, 10), "radius is the distance to the pointer")
	assert.Equal(t, DefaultColor, img.RGBAAt(110, 60))
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(60, 60))
}

func TestHighlighterThenPen(t *testing.T) {
	c := newCanvas(100, 100)
	hl, _ := NewStrategy(settings(Highlighter))
	hl.Begin(c, image.Pt(10, 50))
	hl.Continue(c, image.Pt(90, 50))
	hl.End(c, image.Pt(90, 50))
	got := c.surf.Image().RGBAAt(30, 50)
	assert.NotEqual(t, DefaultColor, got, "highlighter is translucent")
	c.base = c.surf.Snapshot()

	pen, _ := NewStrategy(settings(Pen))
	pen.Begin(c, image.Pt(50, 10))
	pen.Continue(c, image.Pt(50, 90))
	assert.Equal(t, DefaultColor, c.surf.Image().RGBAAt(50, 50), "pen over highlighter is opaque")
	assert.Equal(t, DefaultColor, c.surf.Image().RGBAAt(50, 20))
}

func TestEraserOnlyActsOnMove(t *testing.T) {
	c := newCanvas(100, 100)
	st, _ := NewStrategy(settings(Eraser))
	st.Begin(c, image.Pt(50, 50))
	assert.False(t, st.Dirty())
	assert.True(t, c.surf.Equal(c.base))
	st.Continue(c, image.Pt(50, 50))
	st.End(c, image.Pt(50, 50))
	assert.True(t, st.Dirty())
	img := c.surf.Image()
	assert.Equal(t, color.RGBA{}, img.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(56, 50), "radius is twice the width")
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(57, 50))
}

func TestRenderText(t *testing.T) {
	c := newCanvas(200, 100)
	ok, err := RenderText(c.surf, image.Pt(20, 20), "Hi", DefaultSettings())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Positive(t, countNonWhite(c.surf.Image()))

	c = newCanvas(200, 100)
	ok, err = RenderText(c.surf, image.Pt(20, 20), "  \t", DefaultSettings())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, countNonWhite(c.surf.Image()))
}
