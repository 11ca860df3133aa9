package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadowExpandsCanvas(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out, shift := Shadow(img, opts)
	assert.Equal(t, image.Rect(0, 0, 22, 20), out.Bounds())
	assert.Equal(t, image.Point{}, shift)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(5, 5), "content is drawn over the shadow")
	assert.NotZero(t, out.RGBAAt(13, 11).A, "shadow lands at the offset")
}

func TestShadowNegativeOffsetShiftsContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{fill.R, fill.G, fill.B, fill.A})
	}
	out, shift := Shadow(img, ShadowOptions{Radius: 2, Offset: image.Pt(-5, 0), Opacity: 1})
	assert.Equal(t, image.Pt(7, 2), shift)
	assert.Equal(t, fill, out.RGBAAt(shift.X, shift.Y))
}

func TestShadowZeroOpacityIsIdentity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out, shift := Shadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10)})
	assert.Same(t, img, out)
	assert.Equal(t, image.Point{}, shift)
}

func TestShadowPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 6))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	data, err := ShadowPNG(buf.Bytes(), DefaultShadowOptions())
	require.NoError(t, err)
	out, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 54, 54), out.Bounds())

	_, err = ShadowPNG([]byte("nope"), DefaultShadowOptions())
	assert.Error(t, err)
}
