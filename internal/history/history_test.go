package history

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: v, A: 0xff})
	return img
}

func TestUndoRedoWalk(t *testing.T) {
	h := New(snap(0))
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	h.Push(snap(1))
	h.Push(snap(2))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Index())

	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, uint8(1), s.RGBAAt(0, 0).R)
	s, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, uint8(0), s.RGBAAt(0, 0).R)
	_, ok = h.Undo()
	assert.False(t, ok, "undo at index 0 is a no-op")
	assert.Equal(t, 0, h.Index())

	s, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, uint8(1), s.RGBAAt(0, 0).R)
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	h := New(snap(0))
	h.Push(snap(1))
	h.Push(snap(2))
	h.Undo()
	h.Undo()
	h.Push(snap(9))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Index())
	assert.False(t, h.CanRedo())
	_, ok := h.Redo()
	assert.False(t, ok)
	assert.Equal(t, uint8(9), h.Current().RGBAAt(0, 0).R)
}

func TestLimitKeepsBase(t *testing.T) {
	h := New(snap(0), WithLimit(3))
	for i := 1; i <= 5; i++ {
		h.Push(snap(uint8(i)))
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Index())
	assert.Equal(t, uint8(0), h.Base().RGBAAt(0, 0).R)
	assert.Equal(t, uint8(5), h.Current().RGBAAt(0, 0).R)
	s, _ := h.Undo()
	assert.Equal(t, uint8(4), s.RGBAAt(0, 0).R)
}

func TestUndoThenRedoRestoresEveryStep(t *testing.T) {
	h := New(snap(0))
	for i := 1; i <= 4; i++ {
		h.Push(snap(uint8(i)))
	}
	for h.CanUndo() {
		h.Undo()
	}
	for i := 1; i <= 4; i++ {
		s, ok := h.Redo()
		require.True(t, ok)
		assert.Equal(t, uint8(i), s.RGBAAt(0, 0).R)
	}
}
