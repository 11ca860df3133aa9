package editor

import (
	"image"
	"math"
)

// View is the rectangle the surface currently occupies on the host display,
// in the same client coordinates pointer events carry. It is sampled per
// event because the host may rescale the surface at any time.
type View struct {
	Left, Top     float64
	Width, Height float64
}

// ViewOf converts an integer display rectangle into a View.
func ViewOf(r image.Rectangle) View {
	return View{
		Left:   float64(r.Min.X),
		Top:    float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Empty reports whether the view has no area to map through.
func (v View) Empty() bool { return !(v.Width > 0 && v.Height > 0) }

// Contains reports whether a client coordinate falls within the view.
func (v View) Contains(x, y float64) bool {
	return x >= v.Left && y >= v.Top && x < v.Left+v.Width && y < v.Top+v.Height
}

// ToSurface maps a client coordinate onto a w by h surface. Points outside the
// view map outside the surface and are left to the drawing code to clip.
func ToSurface(x, y float64, v View, w, h int) (image.Point, bool) {
	if v.Empty() || w <= 0 || h <= 0 {
		return image.Point{}, false
	}
	sx := (x - v.Left) * (float64(w) / v.Width)
	sy := (y - v.Top) * (float64(h) / v.Height)
	return image.Pt(int(math.Floor(sx)), int(math.Floor(sy))), true
}

// ToView maps a surface pixel back into client coordinates.
func ToView(p image.Point, v View, w, h int) (x, y float64) {
	if w <= 0 || h <= 0 {
		return v.Left, v.Top
	}
	x = v.Left + float64(p.X)*(v.Width/float64(w))
	y = v.Top + float64(p.Y)*(v.Height/float64(h))
	return x, y
}
