package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shotmark/internal/raster"
	"github.com/example/shotmark/internal/tools"
)

var (
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
	red   = tools.DefaultColor
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func loaded(t *testing.T, w, h int, opts ...Option) (*Session, View) {
	t.Helper()
	s := New(opts...)
	require.NoError(t, s.LoadImage(whiteImage(w, h)))
	return s, View{Width: float64(w), Height: float64(h)}
}

func at(v View, x, y float64) Pointer { return Pointer{X: x, Y: y, View: v} }

func drag(t *testing.T, s *Session, v View, pts ...image.Point) {
	t.Helper()
	require.NoError(t, s.PointerDown(at(v, float64(pts[0].X), float64(pts[0].Y))))
	for _, p := range pts[1:] {
		require.NoError(t, s.PointerMove(at(v, float64(p.X), float64(p.Y))))
	}
	last := pts[len(pts)-1]
	require.NoError(t, s.PointerUp(at(v, float64(last.X), float64(last.Y))))
}

func TestInputBeforeReadyIsRejected(t *testing.T) {
	s := New()
	v := View{Width: 100, Height: 100}
	assert.ErrorIs(t, s.PointerDown(at(v, 10, 10)), ErrNotReady)
	assert.ErrorIs(t, s.PointerMove(at(v, 20, 20)), ErrNotReady)
	assert.ErrorIs(t, s.PointerUp(at(v, 20, 20)), ErrNotReady)
	assert.ErrorIs(t, s.PointerLeave(), ErrNotReady)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, s.HistoryLen())
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	_, err := s.TrySave()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestPenStrokeUndoRedo(t *testing.T) {
	s, v := loaded(t, 800, 600)
	assert.Equal(t, 1, s.HistoryLen())
	drag(t, s, v, image.Pt(100, 100), image.Pt(150, 150), image.Pt(200, 200))
	assert.Equal(t, 2, s.HistoryLen())
	assert.Equal(t, 1, s.HistoryIndex())

	edited, _ := s.Frame()
	assert.Equal(t, red, edited.RGBAAt(150, 150))

	require.True(t, s.Undo())
	frame, _ := s.Frame()
	assert.True(t, raster.Equal(frame, whiteImage(800, 600)), "undo restores the pristine image")
	assert.False(t, s.Undo())

	require.True(t, s.Redo())
	frame, _ = s.Frame()
	assert.True(t, raster.Equal(frame, edited))
	assert.False(t, s.Redo())
}

func TestReleaseAwayFromLastMoveDrawsNothingMore(t *testing.T) {
	for _, tool := range []tools.Tool{tools.Pen, tools.Rectangle} {
		s, v := loaded(t, 100, 60)
		require.NoError(t, s.SetTool(tool))
		require.NoError(t, s.PointerDown(at(v, 10, 10)))
		require.NoError(t, s.PointerMove(at(v, 40, 40)))
		committed, _ := s.Frame()
		require.NoError(t, s.PointerUp(at(v, 90, 50)))

		frame, _ := s.Frame()
		assert.True(t, raster.Equal(committed, frame), "%s: the commit matches the last move", tool)
		assert.Equal(t, white, frame.RGBAAt(70, 45), "%s: nothing toward the release point", tool)
		assert.Equal(t, 2, s.HistoryLen())
	}
}

func TestUndoManyEditsRestoresPristine(t *testing.T) {
	s, v := loaded(t, 200, 200)
	for i := 0; i < 5; i++ {
		y := 20 + i*30
		drag(t, s, v, image.Pt(10, y), image.Pt(190, y))
	}
	require.NoError(t, s.SetTool(tools.Eraser))
	drag(t, s, v, image.Pt(100, 100), image.Pt(110, 110))
	assert.Equal(t, 7, s.HistoryLen())
	for s.CanUndo() {
		require.True(t, s.Undo())
	}
	frame, _ := s.Frame()
	assert.True(t, raster.Equal(frame, whiteImage(200, 200)))
}

func TestNewEditTruncatesRedo(t *testing.T) {
	s, v := loaded(t, 100, 100)
	drag(t, s, v, image.Pt(10, 10), image.Pt(90, 10))
	drag(t, s, v, image.Pt(10, 50), image.Pt(90, 50))
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	drag(t, s, v, image.Pt(50, 10), image.Pt(50, 90))
	assert.Equal(t, 2, s.HistoryLen())
	assert.False(t, s.CanRedo())
	frame, _ := s.Frame()
	assert.Equal(t, white, frame.RGBAAt(30, 10), "discarded edit is gone")
	assert.Equal(t, red, frame.RGBAAt(50, 30))
}

func TestRectangleGesture(t *testing.T) {
	s, v := loaded(t, 800, 600)
	require.NoError(t, s.SetTool(tools.Rectangle))
	drag(t, s, v, image.Pt(50, 50), image.Pt(90, 80), image.Pt(120, 100), image.Pt(150, 120))
	assert.Equal(t, 2, s.HistoryLen())

	want := raster.FromImage(whiteImage(800, 600))
	want.StrokeRect(image.Pt(50, 50), image.Pt(150, 120), raster.Solid(red, tools.DefaultWidth))
	frame, _ := s.Frame()
	assert.True(t, want.Equal(frame), "exactly one outline remains")
}

func TestZeroSizeShapeDoesNotCommit(t *testing.T) {
	s, v := loaded(t, 100, 100)
	for _, tool := range []tools.Tool{tools.Rectangle, tools.Circle, tools.Pen, tools.Eraser} {
		require.NoError(t, s.SetTool(tool))
		require.NoError(t, s.PointerDown(at(v, 40, 40)))
		require.NoError(t, s.PointerUp(at(v, 40, 40)))
		assert.Equal(t, 1, s.HistoryLen(), tool.String())
		assert.Equal(t, Idle, s.State())
	}
}

func TestPointerLeaveCommits(t *testing.T) {
	s, v := loaded(t, 100, 100)
	require.NoError(t, s.PointerDown(at(v, 10, 10)))
	require.NoError(t, s.PointerMove(at(v, 60, 60)))
	assert.Equal(t, Dragging, s.State())
	require.NoError(t, s.PointerLeave())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 2, s.HistoryLen())
	require.NoError(t, s.PointerMove(at(v, 90, 90)))
	assert.Equal(t, 2, s.HistoryLen(), "hover after leave is ignored")
}

func TestTextEntryScenario(t *testing.T) {
	s, v := loaded(t, 800, 600)
	require.NoError(t, s.SetTool(tools.Text))
	require.NoError(t, s.PointerDown(at(v, 200, 200)))
	assert.Equal(t, TextPending, s.State())
	entry, ok := s.TextEntry()
	require.True(t, ok)
	assert.Equal(t, image.Pt(200, 200), entry.Anchor)
	assert.Equal(t, 16.0, entry.Size)
	frame, _ := s.Frame()
	assert.True(t, raster.Equal(frame, whiteImage(800, 600)), "no mutation before confirm")

	committed, err := s.ConfirmText("Hi")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 2, s.HistoryLen())
	withText, _ := s.Frame()
	assert.False(t, raster.Equal(withText, whiteImage(800, 600)))

	require.NoError(t, s.PointerDown(at(v, 300, 300)))
	committed, err = s.ConfirmText("   ")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, 2, s.HistoryLen())
	assert.Equal(t, Idle, s.State())
	frame, _ = s.Frame()
	assert.True(t, raster.Equal(frame, withText))
}

func TestTypingAndClickElsewhereConfirms(t *testing.T) {
	s, v := loaded(t, 300, 200)
	require.NoError(t, s.SetTool(tools.Text))
	require.NoError(t, s.PointerDown(at(v, 20, 20)))
	require.NoError(t, s.TypeText("Hix"))
	require.NoError(t, s.Backspace())
	entry, _ := s.TextEntry()
	assert.Equal(t, "Hi", entry.Text)

	require.NoError(t, s.PointerDown(at(v, 100, 100)))
	assert.Equal(t, 2, s.HistoryLen(), "blur commits the first entry")
	assert.Equal(t, TextPending, s.State(), "the click opens a new entry")
	s.CancelText()
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 2, s.HistoryLen())
	assert.ErrorIs(t, s.TypeText("x"), ErrNoTextEntry)
}

func TestTextAnchorFollowsView(t *testing.T) {
	s, v := loaded(t, 800, 600)
	require.NoError(t, s.SetTool(tools.Text))
	require.NoError(t, s.PointerDown(at(v, 200, 200)))
	x, y, ok := s.TextAnchorInView(View{Left: 10, Top: 20, Width: 400, Height: 300})
	require.True(t, ok)
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 120.0, y)
}

func TestScaledViewMapsToSurface(t *testing.T) {
	s, _ := loaded(t, 800, 600)
	v := View{Left: 100, Top: 50, Width: 400, Height: 300}
	require.NoError(t, s.PointerDown(at(v, 150, 100)))
	require.NoError(t, s.PointerMove(at(v, 200, 100)))
	require.NoError(t, s.PointerUp(at(v, 200, 100)))
	frame, _ := s.Frame()
	assert.Equal(t, red, frame.RGBAAt(100, 100))
	assert.Equal(t, red, frame.RGBAAt(200, 100))
	assert.Equal(t, white, frame.RGBAAt(250, 100))
}

func TestSettingsApplyToNextGesture(t *testing.T) {
	s, v := loaded(t, 100, 100)
	require.NoError(t, s.PointerDown(at(v, 10, 50)))
	require.NoError(t, s.SetColor(color.RGBA{0x00, 0x00, 0x00, 0xff}))
	require.NoError(t, s.PointerMove(at(v, 90, 50)))
	require.NoError(t, s.PointerUp(at(v, 90, 50)))
	frame, _ := s.Frame()
	assert.Equal(t, red, frame.RGBAAt(50, 50))

	assert.ErrorIs(t, s.SetColor(color.RGBA{1, 2, 3, 0xff}), tools.ErrColorNotInPalette)
	s.SetWidth(99)
	assert.Equal(t, tools.MaxWidth, s.Settings().Width)
}

func TestTrySaveAfterReady(t *testing.T) {
	s, v := loaded(t, 800, 600)
	require.NoError(t, s.SetTool(tools.Eraser))
	drag(t, s, v, image.Pt(400, 300), image.Pt(410, 300))
	data, err := s.TrySave()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())
	_, _, _, a := img.At(405, 300).RGBA()
	assert.Zero(t, a, "eraser transparency survives export")
}

func TestHistoryLimit(t *testing.T) {
	s, v := loaded(t, 100, 100, WithHistoryLimit(3))
	for i := 0; i < 5; i++ {
		drag(t, s, v, image.Pt(10, 10+i*10), image.Pt(90, 10+i*10))
	}
	assert.Equal(t, 3, s.HistoryLen())
	for s.CanUndo() {
		s.Undo()
	}
	frame, _ := s.Frame()
	assert.True(t, raster.Equal(frame, whiteImage(100, 100)))
}

type gateLoader struct {
	release map[string]chan struct{}
	images  map[string]image.Image
}

func (g *gateLoader) Fetch(ctx context.Context, ref string) (image.Image, error) {
	select {
	case <-g.release[ref]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	img, ok := g.images[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}
	return nil
}

func TestAsyncLoadDiscardsStaleResult(t *testing.T) {
	g := &gateLoader{
		release: map[string]chan struct{}{"a": make(chan struct{}), "b": make(chan struct{})},
		images:  map[string]image.Image{"a": whiteImage(10, 10), "b": whiteImage(20, 30)},
	}
	changes := make(chan struct{}, 64)
	s := New(WithLoader(g), WithChangeListener(func() { changes <- struct{}{} }))
	first := s.Load(context.Background(), "a")
	second := s.Load(context.Background(), "b")
	assert.False(t, s.Ready())

	close(g.release["b"])
	require.NoError(t, waitErr(t, second))
	close(g.release["a"])
	assert.ErrorIs(t, waitErr(t, first), ErrSuperseded)

	w, h, ok := s.Size()
	require.True(t, ok)
	assert.Equal(t, 20, w)
	assert.Equal(t, 30, h)
	assert.NotEmpty(t, changes)
}

func TestFailedLoadStaysNotReady(t *testing.T) {
	g := &gateLoader{release: map[string]chan struct{}{"missing": make(chan struct{})}}
	close(g.release["missing"])
	s := New(WithLoader(g))
	err := waitErr(t, s.Load(context.Background(), "missing"))
	require.Error(t, err)
	assert.False(t, s.Ready())
	assert.Error(t, s.LoadErr())
	_, err = s.TrySave()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestReloadResetsSession(t *testing.T) {
	s, v := loaded(t, 100, 100)
	drag(t, s, v, image.Pt(10, 10), image.Pt(90, 90))
	require.NoError(t, s.LoadImage(whiteImage(50, 50)))
	assert.Equal(t, 1, s.HistoryLen())
	assert.False(t, s.CanUndo())
	assert.Error(t, s.LoadImage(image.NewRGBA(image.Rectangle{})))
	assert.False(t, s.Ready())
}

func TestToSurface(t *testing.T) {
	p, ok := ToSurface(60, 45, View{Left: 10, Top: 20, Width: 100, Height: 50}, 200, 100)
	require.True(t, ok)
	assert.Equal(t, image.Pt(100, 50), p)
	_, ok = ToSurface(1, 1, View{}, 10, 10)
	assert.False(t, ok)
	p, _ = ToSurface(-5, 0, View{Width: 10, Height: 10}, 10, 10)
	assert.Equal(t, -5, p.X, "off-view points map off-surface")
}
