package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/shotmark/internal/shot"
)

func TestValidID(t *testing.T) {
	assert.NoError(t, ValidID("01HV3K6Z9X"))
	for _, bad := range []string{"", ".", "..", "a/b", "../x"} {
		assert.Error(t, ValidID(bad), bad)
	}
}

func TestSortNewest(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []*shot.Screenshot{
		{ID: "a", CapturedAt: at},
		{ID: "c", CapturedAt: at.Add(time.Hour)},
		{ID: "b", CapturedAt: at},
	}
	SortNewest(list)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "a", list[2].ID)
}
