package raster

import "image"

// Stroke draws a polyline incrementally. It remembers which pixels the
// stroke already covered, so translucent paint is applied once per pixel
// however many segments overlap there.
type Stroke struct {
	s       *Surface
	paint   Paint
	covered *image.Alpha
	last    image.Point
	dirty   bool
}

// BeginStroke starts a stroke at pt. Nothing is drawn until LineTo.
func (s *Surface) BeginStroke(p Paint, pt image.Point) *Stroke {
	return &Stroke{
		s:       s,
		paint:   p,
		covered: image.NewAlpha(s.Bounds()),
		last:    pt,
	}
}

// LineTo extends the stroke to pt and paints the newly covered pixels.
func (st *Stroke) LineTo(pt image.Point) bool {
	w := st.paint.width()
	seg := newMask(lineBounds(st.last, pt, w).Intersect(st.s.Bounds()))
	walkLine(st.last, pt, func(x, y int) { stampDisc(seg, x, y, w) })
	st.last = pt
	fresh := false
	r := seg.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if seg.AlphaAt(x, y).A == 0 {
				continue
			}
			if st.covered.AlphaAt(x, y).A != 0 {
				seg.SetAlpha(x, y, transparentAlpha)
				continue
			}
			st.covered.SetAlpha(x, y, opaqueAlpha)
			fresh = true
		}
	}
	if !fresh {
		return false
	}
	if st.s.composite(seg, st.paint) {
		st.dirty = true
		return true
	}
	return false
}

// Last reports the current pen position.
func (st *Stroke) Last() image.Point { return st.last }

// Dirty reports whether the stroke has changed any pixel.
func (st *Stroke) Dirty() bool { return st.dirty }
