package window

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/shotmark/internal/editor"
	"github.com/example/shotmark/internal/raster"
	"github.com/example/shotmark/internal/theme"
	"github.com/example/shotmark/internal/tools"
)

const checkerSize = 8

var toolLabels = map[tools.Tool]string{
	tools.Pen:         "P:Pen",
	tools.Highlighter: "H:Hilite",
	tools.Rectangle:   "R:Rect",
	tools.Circle:      "C:Circle",
	tools.Text:        "T:Text",
	tools.Eraser:      "E:Eraser",
}

// frameState is everything a paint needs, captured on the event goroutine
// so drawing can happen elsewhere.
type frameState struct {
	width, height int
	layout        layout
	theme         *theme.Theme

	title    string
	image    *image.RGBA
	imgRect  image.Rectangle
	zoom     float64
	loadErr  error
	settings tools.Settings
	hover    hit

	historyIndex, historyLen int

	text       editor.TextEntry
	textActive bool
	textAt     image.Point

	message      string
	messageUntil time.Time
	now          time.Time
}

func (c *controller) snapshot(th *theme.Theme) frameState {
	st := frameState{
		width:        c.layout.width,
		height:       c.layout.height,
		layout:       c.layout,
		theme:        th,
		title:        c.title,
		zoom:         c.effectiveZoom(),
		loadErr:      c.session.LoadErr(),
		settings:     c.session.Settings(),
		hover:        c.hover,
		historyIndex: c.session.HistoryIndex(),
		historyLen:   c.session.HistoryLen(),
		message:      c.message,
		messageUntil: c.messageUntil,
		now:          c.now(),
	}
	if img, ok := c.session.Frame(); ok {
		st.image = img
		v, r := c.view()
		st.imgRect = r
		if entry, ok := c.session.TextEntry(); ok {
			st.text, st.textActive = entry, true
			if x, y, ok := c.session.TextAnchorInView(v); ok {
				st.textAt = image.Pt(int(math.Round(x)), int(math.Round(y)))
			}
		}
	}
	return st
}

// renderFrame paints one complete window image into dst.
func renderFrame(ctx context.Context, dst *image.RGBA, st frameState) {
	th := st.theme
	fill(dst, dst.Bounds(), th.Background)

	if st.image != nil {
		area := st.imgRect.Intersect(st.layout.canvas)
		drawCheckerboard(dst, area, th.CheckerLight, th.CheckerDark)
		if ctx.Err() != nil {
			return
		}
		xdraw.NearestNeighbor.Scale(dst, st.imgRect, st.image, st.image.Bounds(), draw.Over, nil)
		if st.textActive {
			drawTextEntry(dst, st)
		}
	} else {
		msg := "loading image..."
		if st.loadErr != nil {
			msg = "could not load image: " + st.loadErr.Error()
		}
		label(dst, st.layout.canvas.Min.X+8, st.layout.canvas.Min.Y+20, msg, th.Foreground)
	}
	if ctx.Err() != nil {
		return
	}

	drawStatus(dst, st)
	drawToolbar(dst, st)
	drawShortcuts(dst, st)

	if st.message != "" && st.now.Before(st.messageUntil) {
		drawToast(dst, st)
	}
}

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func label(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	u := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// drawCheckerboard fills rect of dst with a checkerboard so erased pixels
// read as transparent.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if (((x-rect.Min.X)/checkerSize)+((y-rect.Min.Y)/checkerSize))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawTextEntry shows the pending text with a caret, scaled with the view.
func drawTextEntry(dst *image.RGBA, st frameState) {
	size := math.Max(1, math.Round(st.text.Size*st.zoom*2)/2)
	face, err := raster.NewFace(size)
	if err != nil {
		return
	}
	defer face.Close()
	baseline := st.textAt.Y + face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.text.Color), Face: face, Dot: fixed.P(st.textAt.X, baseline)}
	d.DrawString(st.text.Text + "|")
}

func drawStatus(dst *image.RGBA, st frameState) {
	th := st.theme
	r := image.Rect(0, 0, st.width, statusHeight)
	fill(dst, r, th.ToolbarBackground)
	title := st.title
	if title == "" {
		title = "shotmark"
	}
	text := fmt.Sprintf("%s  |  %s %dpx %s  |  %.0f%%", title, st.settings.Tool, st.settings.Width,
		tools.ColorName(st.settings.Color), st.zoom*100)
	if st.historyLen > 0 {
		text += fmt.Sprintf("  |  edit %d/%d", st.historyIndex, st.historyLen-1)
	}
	label(dst, 4, 14, text, th.Foreground)
}

func buttonColor(th *theme.Theme, active, hovered bool) theme.Color {
	switch {
	case active:
		return th.ButtonActive
	case hovered:
		c := th.ButtonBackground
		return theme.Color{R: mid(c.R, th.ButtonActive.R), G: mid(c.G, th.ButtonActive.G), B: mid(c.B, th.ButtonActive.B), A: 255}
	}
	return th.ButtonBackground
}

func mid(a, b uint8) uint8 { return uint8((int(a) + int(b)) / 2) }

func drawToolbar(dst *image.RGBA, st frameState) {
	th := st.theme
	l := st.layout
	fill(dst, image.Rect(0, statusHeight, toolbarWidth, st.height-bottomHeight), th.ToolbarBackground)

	for i, t := range tools.All() {
		r := l.tools[i]
		hovered := st.hover.kind == hitTool && st.hover.index == i
		fill(dst, r, buttonColor(th, t == st.settings.Tool, hovered))
		outline(dst, r, th.ButtonBorder)
		label(dst, r.Min.X+4, r.Min.Y+16, toolLabels[t], th.ButtonText)
	}

	for i, c := range tools.Palette() {
		r := l.swatches[i]
		fill(dst, r, c)
		if c == st.settings.Color {
			outline(dst, r.Inset(-1), th.ButtonBorder)
			outline(dst, r, color.White)
		} else if st.hover.kind == hitSwatch && st.hover.index == i {
			draw.Draw(dst, r, image.NewUniform(color.RGBA{255, 255, 255, 80}), image.Point{}, draw.Over)
		}
	}

	fill(dst, l.widthRow, th.ToolbarBackground)
	for _, b := range []struct {
		r    image.Rectangle
		text string
		kind hitKind
	}{{l.widthDown, "-", hitWidthDown}, {l.widthUp, "+", hitWidthUp}} {
		fill(dst, b.r, buttonColor(th, false, st.hover.kind == b.kind))
		outline(dst, b.r, th.ButtonBorder)
		label(dst, b.r.Min.X+7, b.r.Min.Y+14, b.text, th.ButtonText)
	}
	label(dst, l.widthRow.Min.X+toolbarWidth/2-7, l.widthRow.Min.Y+16, fmt.Sprintf("%2d", st.settings.Width), th.Foreground)

	// Preview of the stroke width in the current colour.
	y := l.widthRow.Max.Y + 8
	if y+tools.MaxWidth < st.height-bottomHeight {
		w := st.settings.Width
		fill(dst, image.Rect(6, y+(tools.MaxWidth-w)/2, toolbarWidth-6, y+(tools.MaxWidth-w)/2+w), st.settings.Color)
	}
}

func drawShortcuts(dst *image.RGBA, st frameState) {
	th := st.theme
	fill(dst, image.Rect(0, st.height-bottomHeight, st.width, st.height), th.ToolbarBackground)
	for i, sc := range st.layout.shortcuts {
		hovered := st.hover.kind == hitShortcut && st.hover.index == i
		fill(dst, sc.rect, buttonColor(th, false, hovered))
		outline(dst, sc.rect, th.ButtonBorder)
		label(dst, sc.rect.Min.X+2, sc.rect.Min.Y+14, sc.label, th.ButtonText)
	}
}

func drawToast(dst *image.RGBA, st frameState) {
	th := st.theme
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := d.MeasureString(st.message).Ceil()
	px := (st.width - w) / 2
	py := st.height - bottomHeight - 24
	r := image.Rect(px-8, py-16, px+w+8, py+8)
	draw.Draw(dst, r, image.NewUniform(th.Toast), image.Point{}, draw.Over)
	label(dst, px, py, st.message, th.ToastText)
}
