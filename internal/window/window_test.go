package window

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/shotmark/internal/editor"
	"github.com/example/shotmark/internal/theme"
	"github.com/example/shotmark/internal/tools"
)

func newTestController(t *testing.T, w, h int) *controller {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	s := editor.New()
	require.NoError(t, s.LoadImage(img))
	return newController(s, Options{Width: 1000, Height: 800})
}

func press(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress}
}

func move(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Direction: mouse.DirNone}
}

func release(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}
}

func typeKey(r rune) key.Event {
	return key.Event{Rune: r, Direction: key.DirPress}
}

func center(r image.Rectangle) (float32, float32) {
	return float32(r.Min.X+r.Dx()/2) + 0.5, float32(r.Min.Y+r.Dy()/2) + 0.5
}

func TestLayoutHitTest(t *testing.T) {
	l := newLayout(800, 600, false)
	require.Len(t, l.tools, len(tools.All()))
	require.Len(t, l.swatches, len(tools.Palette()))

	assert.Equal(t, hit{hitTool, 2}, l.hitTest(l.tools[2].Min.Add(image.Pt(3, 3))))
	assert.Equal(t, hit{hitSwatch, 7}, l.hitTest(l.swatches[7].Min.Add(image.Pt(1, 1))))
	assert.Equal(t, hit{kind: hitWidthUp}, l.hitTest(l.widthUp.Min.Add(image.Pt(1, 1))))
	assert.Equal(t, hit{kind: hitCanvas}, l.hitTest(image.Pt(400, 300)))
	assert.Equal(t, hit{hitShortcut, 0}, l.hitTest(l.shortcuts[0].rect.Min.Add(image.Pt(1, 1))))
	for _, r := range l.swatches {
		assert.LessOrEqual(t, r.Max.X, toolbarWidth)
	}
}

func TestFitZoom(t *testing.T) {
	l := newLayout(toolbarWidth+400, statusHeight+bottomHeight+300, false)
	assert.InDelta(t, 0.5, l.fitZoom(800, 600), 1e-9)
	assert.Equal(t, 1.0, l.fitZoom(100, 100), "small images are not enlarged")
	r := l.imageRect(800, 600, 0.5)
	assert.Equal(t, image.Rect(toolbarWidth, statusHeight, toolbarWidth+400, statusHeight+300), r)
}

func TestControlActions(t *testing.T) {
	a, ok := controlAction(key.Event{Rune: 'z', Modifiers: key.ModControl})
	assert.True(t, ok)
	assert.Equal(t, actionUndo, a)
	a, _ = controlAction(key.Event{Rune: 'Z', Modifiers: key.ModControl | key.ModShift})
	assert.Equal(t, actionRedo, a)
	a, _ = controlAction(key.Event{Rune: -1, Code: key.CodeY, Modifiers: key.ModControl})
	assert.Equal(t, actionRedo, a)
	_, ok = controlAction(key.Event{Rune: 'z'})
	assert.False(t, ok)
}

func TestDragThroughWindowCommits(t *testing.T) {
	c := newTestController(t, 400, 300)
	_, r := c.view()
	require.Equal(t, 1.0, c.effectiveZoom())

	assert.True(t, c.handleMouse(press(float32(r.Min.X+10), float32(r.Min.Y+10))))
	assert.Equal(t, editor.Dragging, c.session.State())
	c.handleMouse(move(float32(r.Min.X+100), float32(r.Min.Y+10)))
	c.handleMouse(release(float32(r.Min.X+100), float32(r.Min.Y+10)))
	assert.Equal(t, editor.Idle, c.session.State())
	assert.Equal(t, 2, c.session.HistoryLen())

	frame, ok := c.session.Frame()
	require.True(t, ok)
	assert.Equal(t, tools.DefaultColor, frame.RGBAAt(50, 10))

	redraw, quit := c.handleKey(key.Event{Rune: 'z', Modifiers: key.ModControl, Direction: key.DirPress})
	assert.True(t, redraw)
	assert.False(t, quit)
	assert.Equal(t, 0, c.session.HistoryIndex())
}

func TestLeavingImageEndsDrag(t *testing.T) {
	c := newTestController(t, 200, 200)
	_, r := c.view()
	c.handleMouse(press(float32(r.Min.X+10), float32(r.Min.Y+10)))
	c.handleMouse(move(float32(r.Min.X+50), float32(r.Min.Y+50)))
	assert.True(t, c.handleMouse(move(float32(r.Max.X+20), float32(r.Min.Y+50))))
	assert.Equal(t, editor.Idle, c.session.State())
	assert.Equal(t, 2, c.session.HistoryLen())

	// The release arrives after the leave and changes nothing.
	c.handleMouse(release(float32(r.Max.X+20), float32(r.Min.Y+50)))
	assert.Equal(t, 2, c.session.HistoryLen())
}

func TestToolbarSelectsToolsColorsAndWidth(t *testing.T) {
	c := newTestController(t, 200, 200)
	c.handleMouse(press(center(c.layout.tools[3])))
	assert.Equal(t, tools.Circle, c.session.Settings().Tool)
	c.handleMouse(press(center(c.layout.swatches[4])))
	assert.Equal(t, tools.ColorAt(4), c.session.Settings().Color)
	c.handleMouse(press(center(c.layout.widthUp)))
	assert.Equal(t, tools.DefaultWidth+1, c.session.Settings().Width)

	c.handleKey(typeKey('e'))
	assert.Equal(t, tools.Eraser, c.session.Settings().Tool)
	c.handleKey(typeKey('8'))
	assert.Equal(t, tools.ColorAt(7), c.session.Settings().Color)
	for i := 0; i < 30; i++ {
		c.handleKey(typeKey('['))
	}
	assert.Equal(t, tools.MinWidth, c.session.Settings().Width)
}

func TestTextEntryByKeyboard(t *testing.T) {
	c := newTestController(t, 300, 200)
	_, r := c.view()
	c.handleKey(typeKey('t'))
	c.handleMouse(press(float32(r.Min.X+20), float32(r.Min.Y+20)))
	require.Equal(t, editor.TextPending, c.session.State())
	assert.Len(t, c.layout.shortcuts, 2, "text mode shows its own shortcuts")

	// Tool shortcuts type while text is pending.
	c.handleKey(typeKey('H'))
	c.handleKey(typeKey('e'))
	c.handleKey(typeKey('x'))
	c.handleKey(key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirPress})
	entry, ok := c.session.TextEntry()
	require.True(t, ok)
	assert.Equal(t, "He", entry.Text)
	assert.Equal(t, tools.Text, c.session.Settings().Tool)

	c.handleKey(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress})
	assert.Equal(t, editor.Idle, c.session.State())
	assert.Equal(t, 2, c.session.HistoryLen())

	c.handleMouse(press(float32(r.Min.X+100), float32(r.Min.Y+100)))
	c.handleKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress})
	assert.Equal(t, editor.Idle, c.session.State())
	assert.Equal(t, 2, c.session.HistoryLen())
}

func TestClickingToolbarConfirmsText(t *testing.T) {
	c := newTestController(t, 300, 200)
	_, r := c.view()
	require.NoError(t, c.session.SetTool(tools.Text))
	c.handleMouse(press(float32(r.Min.X+20), float32(r.Min.Y+20)))
	require.NoError(t, c.session.TypeText("Hi"))
	c.handleMouse(press(center(c.layout.tools[0])))
	assert.Equal(t, editor.Idle, c.session.State())
	assert.Equal(t, 2, c.session.HistoryLen())
	assert.Equal(t, tools.Pen, c.session.Settings().Tool)
}

func TestSaveAndCopy(t *testing.T) {
	c := newTestController(t, 50, 40)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.trigger(actionSave)
	assert.Equal(t, "saving is not configured", c.message)

	var saved []byte
	c.onSave = func(b []byte) (string, error) { saved = b; return "/tmp/out.png", nil }
	c.trigger(actionSave)
	assert.NotEmpty(t, saved)
	assert.Equal(t, "saved /tmp/out.png", c.message)
	assert.True(t, c.toastVisible())

	c.onCopy = func(*image.RGBA) error { return errors.New("no display") }
	c.trigger(actionCopy)
	assert.Equal(t, "copy failed: no display", c.message)

	var copied *image.RGBA
	c.onCopy = func(img *image.RGBA) error { copied = img; return nil }
	c.trigger(actionCopy)
	require.NotNil(t, copied)
	assert.Equal(t, image.Rect(0, 0, 50, 40), copied.Bounds())
}

func TestInputBeforeLoadShowsMessage(t *testing.T) {
	c := newController(editor.New(), Options{Width: 400, Height: 300})
	c.trigger(actionSave)
	assert.Equal(t, "image is not loaded yet", c.message)
	c.handleMouse(press(200, 150))
	assert.Equal(t, editor.Idle, c.session.State())
}

func TestZoomKeys(t *testing.T) {
	c := newTestController(t, 100, 100)
	c.handleKey(typeKey('+'))
	assert.InDelta(t, 1.25, c.effectiveZoom(), 1e-9)
	c.handleKey(typeKey('-'))
	c.handleKey(typeKey('-'))
	assert.InDelta(t, 0.8, c.effectiveZoom(), 1e-9)
	c.handleKey(typeKey('0'))
	assert.Equal(t, 1.0, c.effectiveZoom())
	_, quit := c.handleKey(typeKey('q'))
	assert.True(t, quit)
}

func TestRenderFrame(t *testing.T) {
	c := newTestController(t, 100, 80)
	require.NoError(t, c.session.SetTool(tools.Eraser))
	_, r := c.view()
	c.handleMouse(press(float32(r.Min.X+50), float32(r.Min.Y+40)))
	c.handleMouse(move(float32(r.Min.X+50), float32(r.Min.Y+40)))
	c.handleMouse(release(float32(r.Min.X+50), float32(r.Min.Y+40)))

	th := theme.Default()
	st := c.snapshot(th)
	dst := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	renderFrame(context.Background(), dst, st)

	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, dst.RGBAAt(r.Min.X+2, r.Min.Y+2))
	erased := dst.RGBAAt(r.Min.X+50, r.Min.Y+40)
	assert.Contains(t, []color.RGBA{th.CheckerLight.Std(), th.CheckerDark.Std()}, erased, "erased pixels show the checkerboard")
	assert.Equal(t, th.ButtonActive.Std(), dst.RGBAAt(c.layout.tools[5].Min.X+2, c.layout.tools[5].Min.Y+2))
}

func TestReloadAfterFailedLoad(t *testing.T) {
	attempts := 0
	s := editor.New(editor.WithLoader(editor.LoaderFunc(func(context.Context, string) (image.Image, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection refused")
		}
		return image.NewRGBA(image.Rect(0, 0, 30, 20)), nil
	})))
	require.Error(t, <-s.Load(context.Background(), "https://example.com/shot.png"))

	var done <-chan error
	c := newController(s, Options{Width: 400, Height: 300, Reload: func() {
		done = s.Load(context.Background(), "https://example.com/shot.png")
	}})
	assert.ErrorContains(t, c.snapshot(theme.Default()).loadErr, "connection refused")

	redraw, quit := c.handleKey(key.Event{Rune: 'r', Modifiers: key.ModControl, Direction: key.DirPress})
	assert.True(t, redraw)
	assert.False(t, quit)
	require.NotNil(t, done)
	require.NoError(t, <-done)
	assert.True(t, s.Ready())
	assert.NoError(t, s.LoadErr())
	assert.Equal(t, "reloading image", c.message)

	c.reload = nil
	c.trigger(actionReload)
	assert.Equal(t, "reload is not available", c.message)
}
