// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/store"
)

// Sample returns a screenshot captured at the given offset from a fixed
// instant.
func Sample(id string, offset time.Duration) *shot.Screenshot {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Add(offset)
	return &shot.Screenshot{
		ID:         id,
		URL:        "https://" + id + ".example.com",
		Domain:     id + ".example.com",
		Title:      shot.TitleFor(id + ".example.com"),
		StatusCode: 200,
		Thumbnail:  "https://img.example.com/" + id + "/thumb.png",
		FullImage:  "https://img.example.com/" + id + "/full.png",
		CapturedAt: at,
	}
}

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, st.Delete(context.Background(), "nope"), store.ErrNotFound)
	})

	t.Run("SaveGetRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		s := Sample("a1", 0)
		s.Edited = []byte{0x89, 'P', 'N', 'G'}
		require.NoError(t, st.Save(ctx, s))
		got, err := st.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, s.URL, got.URL)
		assert.Equal(t, s.Title, got.Title)
		assert.Equal(t, s.StatusCode, got.StatusCode)
		assert.Equal(t, s.FullImage, got.FullImage)
		assert.Equal(t, s.Edited, got.Edited)
		assert.True(t, s.CapturedAt.Equal(got.CapturedAt))
	})

	t.Run("ListNewestFirstWithoutBlobs", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		old := Sample("old", 0)
		old.Edited = []byte("png")
		require.NoError(t, st.Save(ctx, old))
		require.NoError(t, st.Save(ctx, Sample("new", time.Hour)))
		require.NoError(t, st.Save(ctx, Sample("mid", time.Minute)))
		list, err := st.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "new", list[0].ID)
		assert.Equal(t, "mid", list[1].ID)
		assert.Equal(t, "old", list[2].ID)
		for _, s := range list {
			assert.Empty(t, s.Edited)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		require.NoError(t, st.Save(ctx, Sample("x", 0)))
		updated, err := store.SetEdited(ctx, st, "x", []byte("edited"))
		require.NoError(t, err)
		assert.Equal(t, []byte("edited"), updated.Edited)
		got, err := st.Get(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, []byte("edited"), got.Edited)
		list, err := st.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		_, err = store.SetEdited(ctx, st, "missing", nil)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		require.NoError(t, st.Save(ctx, Sample("d", 0)))
		require.NoError(t, st.Delete(ctx, "d"))
		_, err := st.Get(ctx, "d")
		assert.ErrorIs(t, err, store.ErrNotFound)
		list, err := st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("RejectsBadIDs", func(t *testing.T) {
		st := newStore(t)
		assert.Error(t, st.Save(context.Background(), Sample("../escape", 0)))
	})
}
