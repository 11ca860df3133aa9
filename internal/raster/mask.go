package raster

import (
	"image"
	"image/color"
	"math"
)

var (
	opaqueAlpha      = color.Alpha{A: 0xff}
	transparentAlpha = color.Alpha{}
)

// Coverage masks are built first and composited once, so overlapping
// stamps within a single operation never blend twice.

func newMask(r image.Rectangle) *image.Alpha {
	return image.NewAlpha(r)
}

// lineBounds returns the rectangle a thick line between a and b can touch.
func lineBounds(a, b image.Point, width int) image.Rectangle {
	pad := width/2 + 1
	r := image.Rectangle{Min: a, Max: b}.Canon()
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r.Inset(-pad)
}

// stampDisc covers a round brush of the given diameter centred on (cx, cy).
func stampDisc(m *image.Alpha, cx, cy, width int) {
	if width <= 1 {
		m.SetAlpha(cx, cy, opaqueAlpha)
		return
	}
	r := float64(width) / 2
	ir := int(math.Ceil(r))
	r2 := r * r
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				m.SetAlpha(cx+dx, cy+dy, opaqueAlpha)
			}
		}
	}
}

// stampSquare covers a width by width block centred on (cx, cy).
func stampSquare(m *image.Alpha, cx, cy, width int) {
	lo := -(width - 1) / 2
	hi := width / 2
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			m.SetAlpha(cx+dx, cy+dy, opaqueAlpha)
		}
	}
}

// walkLine visits every Bresenham point from a to b inclusive.
func walkLine(a, b image.Point, visit func(x, y int)) {
	x0, y0, x1, y1 := a.X, a.Y, b.X, b.Y
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
