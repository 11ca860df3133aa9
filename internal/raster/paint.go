package raster

import (
	"image"
	"image/color"
)

// Composite selects how an operation combines with the pixels already on the
// surface.
type Composite int

const (
	// CompositeOver blends the paint colour over existing pixels.
	CompositeOver Composite = iota
	// CompositeClear removes existing pixels, leaving transparency behind.
	CompositeClear
)

// Paint carries every parameter a drawing operation needs. Nothing survives
// from one operation to the next, so each call declares its full state.
type Paint struct {
	Color     color.RGBA
	Width     int
	Opacity   float64
	Composite Composite
}

// Solid returns an opaque paint of the given colour and width.
func Solid(col color.RGBA, width int) Paint {
	return Paint{Color: col, Width: width, Opacity: 1, Composite: CompositeOver}
}

// Translucent returns a paint drawn at the given opacity.
func Translucent(col color.RGBA, width int, opacity float64) Paint {
	return Paint{Color: col, Width: width, Opacity: opacity, Composite: CompositeOver}
}

// Eraser returns a paint that clears pixels.
func Eraser(width int) Paint {
	return Paint{Width: width, Opacity: 1, Composite: CompositeClear}
}

func (p Paint) width() int {
	if p.Width < 1 {
		return 1
	}
	return p.Width
}

func (p Paint) opacity() float64 {
	switch {
	case p.Opacity <= 0:
		return 0
	case p.Opacity > 1:
		return 1
	}
	return p.Opacity
}

// source returns the uniform colour composited through a coverage mask.
func (p Paint) source() image.Image {
	c := color.NRGBAModel.Convert(p.Color).(color.NRGBA)
	c.A = uint8(float64(c.A)*p.opacity() + 0.5)
	return image.NewUniform(c)
}
