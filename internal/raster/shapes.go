package raster

import (
	"image"
	"math"
)

// DrawLine strokes a single segment with round caps.
func (s *Surface) DrawLine(a, b image.Point, p Paint) bool {
	w := p.width()
	m := newMask(lineBounds(a, b, w).Intersect(s.Bounds()))
	walkLine(a, b, func(x, y int) { stampDisc(m, x, y, w) })
	return s.composite(m, p)
}

// DrawPath strokes the polyline through points as one operation. A single
// point leaves a dot the size of the brush.
func (s *Surface) DrawPath(points []image.Point, p Paint) bool {
	if len(points) == 0 {
		return false
	}
	st := s.BeginStroke(p, points[0])
	if len(points) == 1 {
		st.LineTo(points[0])
	}
	for _, pt := range points[1:] {
		st.LineTo(pt)
	}
	return st.Dirty()
}

// StrokeRect outlines the rectangle spanned by origin and the opposite corner
// extent. Coincident corners draw nothing.
func (s *Surface) StrokeRect(origin, extent image.Point, p Paint) bool {
	if origin == extent {
		return false
	}
	w := p.width()
	r := image.Rectangle{Min: origin, Max: extent}.Canon()
	bounds := r
	bounds.Max = bounds.Max.Add(image.Pt(1, 1))
	m := newMask(bounds.Inset(-(w/2 + 1)).Intersect(s.Bounds()))
	corners := []image.Point{r.Min, {r.Max.X, r.Min.Y}, r.Max, {r.Min.X, r.Max.Y}, r.Min}
	for i := 1; i < len(corners); i++ {
		walkLine(corners[i-1], corners[i], func(x, y int) { stampSquare(m, x, y, w) })
	}
	return s.composite(m, p)
}

// StrokeCircle outlines the circle of the given radius around center. The
// ring covers every pixel whose centre lies within half the paint width of
// the ideal circle.
func (s *Surface) StrokeCircle(center image.Point, radius float64, p Paint) bool {
	if radius <= 0 {
		return false
	}
	half := float64(p.width()) / 2
	if half < 0.5 {
		half = 0.5
	}
	outer := int(math.Ceil(radius+half)) + 1
	m := newMask(image.Rect(center.X-outer, center.Y-outer, center.X+outer+1, center.Y+outer+1).Intersect(s.Bounds()))
	if m.Rect.Empty() {
		return false
	}
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			d := math.Hypot(float64(x-center.X), float64(y-center.Y))
			if math.Abs(d-radius) <= half {
				m.SetAlpha(x, y, opaqueAlpha)
			}
		}
	}
	return s.composite(m, p)
}

// FillDisc paints a solid disc of the given radius.
func (s *Surface) FillDisc(center image.Point, radius int, p Paint) bool {
	if radius < 0 {
		return false
	}
	m := newMask(image.Rect(center.X-radius, center.Y-radius, center.X+radius+1, center.Y+radius+1).Intersect(s.Bounds()))
	if m.Rect.Empty() {
		return false
	}
	r2 := radius * radius
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy <= r2 {
				m.SetAlpha(x, y, opaqueAlpha)
			}
		}
	}
	return s.composite(m, p)
}

// EraseDisc clears a disc of the given radius back to transparency. It
// reports whether any pixel of the surface was inside the disc.
func (s *Surface) EraseDisc(center image.Point, radius int) bool {
	return s.FillDisc(center, radius, Eraser(1))
}
