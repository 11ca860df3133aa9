package window

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/example/shotmark/internal/tools"
)

const (
	toolbarWidth = 76
	statusHeight = 20
	bottomHeight = 24
	buttonHeight = 24
	swatchSize   = 16
	swatchGap    = 2
	minZoom      = 0.1
	maxZoom      = 16
)

type hitKind int

const (
	hitNone hitKind = iota
	hitTool
	hitSwatch
	hitWidthDown
	hitWidthUp
	hitShortcut
	hitCanvas
)

type hit struct {
	kind  hitKind
	index int
}

type shortcut struct {
	label  string
	action string
	rect   image.Rectangle
}

// layout places every control for one window size.
type layout struct {
	width, height int

	tools     []image.Rectangle
	swatches  []image.Rectangle
	widthRow  image.Rectangle
	widthDown image.Rectangle
	widthUp   image.Rectangle
	canvas    image.Rectangle
	shortcuts []shortcut
}

func newLayout(width, height int, textMode bool) layout {
	l := layout{width: width, height: height}
	y := statusHeight
	for range tools.All() {
		l.tools = append(l.tools, image.Rect(0, y, toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}

	y += 4
	x := 4
	for range tools.Palette() {
		if x+swatchSize > toolbarWidth {
			x = 4
			y += swatchSize + swatchGap
		}
		l.swatches = append(l.swatches, image.Rect(x, y, x+swatchSize, y+swatchSize))
		x += swatchSize + swatchGap
	}
	y += swatchSize + 6

	l.widthRow = image.Rect(0, y, toolbarWidth, y+buttonHeight)
	l.widthDown = image.Rect(2, y+2, 22, y+buttonHeight-2)
	l.widthUp = image.Rect(toolbarWidth-22, y+2, toolbarWidth-2, y+buttonHeight-2)

	l.canvas = image.Rect(toolbarWidth, statusHeight, max(toolbarWidth, width), max(statusHeight, height-bottomHeight))
	l.shortcuts = placeShortcuts(shortcutsFor(textMode), height)
	return l
}

func shortcutsFor(textMode bool) []shortcut {
	if textMode {
		return []shortcut{
			{label: "Enter:place", action: actionTextDone},
			{label: "Esc:cancel", action: actionTextCancel},
		}
	}
	return []shortcut{
		{label: "^Z:undo", action: actionUndo},
		{label: "^Y:redo", action: actionRedo},
		{label: "^S:save", action: actionSave},
		{label: "^C:copy", action: actionCopy},
		{label: "+/-:zoom", action: actionZoomFit},
		{label: "Q:quit", action: actionQuit},
	}
}

func placeShortcuts(list []shortcut, height int) []shortcut {
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	for i := range list {
		w := meas.MeasureString(list[i].label).Ceil()
		list[i].rect = image.Rect(x-2, y-14, x+w+2, y+4)
		x = list[i].rect.Max.X + 8
	}
	return list
}

// imageRect anchors the scaled image at the canvas origin so its position
// stays put while zooming.
func (l layout) imageRect(imgW, imgH int, zoom float64) image.Rectangle {
	w := int(float64(imgW) * zoom)
	h := int(float64(imgH) * zoom)
	return image.Rectangle{Min: l.canvas.Min, Max: l.canvas.Min.Add(image.Pt(w, h))}
}

// fitZoom is the largest zoom showing the whole image, capped at 1.
func (l layout) fitZoom(imgW, imgH int) float64 {
	if imgW <= 0 || imgH <= 0 || l.canvas.Empty() {
		return 1
	}
	zx := float64(l.canvas.Dx()) / float64(imgW)
	zy := float64(l.canvas.Dy()) / float64(imgH)
	z := min(zx, zy, 1)
	return max(z, minZoom)
}

func (l layout) hitTest(p image.Point) hit {
	for i, sc := range l.shortcuts {
		if p.In(sc.rect) {
			return hit{hitShortcut, i}
		}
	}
	if p.X < toolbarWidth {
		for i, r := range l.tools {
			if p.In(r) {
				return hit{hitTool, i}
			}
		}
		for i, r := range l.swatches {
			if p.In(r) {
				return hit{hitSwatch, i}
			}
		}
		switch {
		case p.In(l.widthDown):
			return hit{kind: hitWidthDown}
		case p.In(l.widthUp):
			return hit{kind: hitWidthUp}
		}
		return hit{kind: hitNone}
	}
	if p.In(l.canvas) {
		return hit{kind: hitCanvas}
	}
	return hit{kind: hitNone}
}
