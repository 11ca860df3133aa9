package tools

import (
	"errors"
	"image"
	"math"

	"github.com/example/shotmark/internal/raster"
)

// ErrNotDraggable is returned when a strategy is requested for the text tool,
// which places an entry instead of following a drag.
var ErrNotDraggable = errors.New("tools: tool does not drag")

// Canvas is the editing state a drag strategy works against.
type Canvas interface {
	// Surface is the live pixel buffer.
	Surface() *raster.Surface
	// Base is the last committed snapshot.
	Base() *image.RGBA
}

// Strategy follows one pointer gesture. Begin is called on pointer down,
// Continue for every move while the button is held and End once on release.
type Strategy interface {
	Begin(c Canvas, p image.Point)
	Continue(c Canvas, p image.Point)
	End(c Canvas, p image.Point)
	// Dirty reports whether the surface now differs from the base because of
	// this gesture.
	Dirty() bool
}

// NewStrategy returns the drag behaviour for s. Settings are captured, so
// later changes only affect the next gesture.
func NewStrategy(s Settings) (Strategy, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, err
	}
	switch s.Tool {
	case Pen:
		return &freehand{paint: raster.Solid(s.Color, s.Width)}, nil
	case Highlighter:
		return &freehand{paint: raster.Translucent(s.Color, s.Width, HighlighterOpacity)}, nil
	case Rectangle:
		return &shape{paint: raster.Solid(s.Color, s.Width), draw: rectOutline}, nil
	case Circle:
		return &shape{paint: raster.Solid(s.Color, s.Width), draw: circleOutline}, nil
	case Eraser:
		return &eraser{radius: EraserRadius(s.Width)}, nil
	case Text:
		return nil, ErrNotDraggable
	}
	return nil, ErrUnknownTool
}

type freehand struct {
	paint  raster.Paint
	stroke *raster.Stroke
}

func (f *freehand) Begin(c Canvas, p image.Point) {
	f.stroke = c.Surface().BeginStroke(f.paint, p)
}

func (f *freehand) Continue(c Canvas, p image.Point) {
	if f.stroke == nil {
		f.Begin(c, p)
	}
	f.stroke.LineTo(p)
}

func (f *freehand) End(Canvas, image.Point) {}

func (f *freehand) Dirty() bool { return f.stroke != nil && f.stroke.Dirty() }

type eraser struct {
	radius int
	dirty  bool
}

func (e *eraser) Begin(Canvas, image.Point) {}

func (e *eraser) Continue(c Canvas, p image.Point) {
	if c.Surface().EraseDisc(p, e.radius) {
		e.dirty = true
	}
}

func (e *eraser) End(Canvas, image.Point) {}

func (e *eraser) Dirty() bool { return e.dirty }

type shapeFunc func(s *raster.Surface, start, cur image.Point, p raster.Paint) bool

func rectOutline(s *raster.Surface, start, cur image.Point, p raster.Paint) bool {
	return s.StrokeRect(start, cur, p)
}

func circleOutline(s *raster.Surface, start, cur image.Point, p raster.Paint) bool {
	r := math.Hypot(float64(cur.X-start.X), float64(cur.Y-start.Y))
	return s.StrokeCircle(start, r, p)
}

// shape previews an outline from the start point. Each move restores the
// base first so only the latest outline is visible.
type shape struct {
	paint raster.Paint
	draw  shapeFunc
	start image.Point
	dirty bool
}

func (s *shape) Begin(_ Canvas, p image.Point) { s.start = p }

func (s *shape) Continue(c Canvas, p image.Point) {
	surf := c.Surface()
	if err := surf.Blit(c.Base()); err != nil {
		return
	}
	s.dirty = s.draw(surf, s.start, p, s.paint)
}

// End keeps whatever the last preview left on the surface.
func (s *shape) End(Canvas, image.Point) {}

func (s *shape) Dirty() bool { return s.dirty }
