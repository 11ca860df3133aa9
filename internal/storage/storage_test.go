package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shotmark/internal/config"
	"github.com/example/shotmark/internal/store/filesystem"
	"github.com/example/shotmark/internal/store/memory"
	"github.com/example/shotmark/internal/store/sqlite"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, closer, err := Open(ctx, config.Store{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)
	assert.NoError(t, closer.Close())

	st, closer, err = Open(ctx, config.Store{Type: "filesystem", Path: filepath.Join(dir, "shots")})
	require.NoError(t, err)
	assert.IsType(t, &filesystem.Store{}, st)
	assert.NoError(t, closer.Close())

	st, closer, err = Open(ctx, config.Store{Type: "SQLite", DSN: filepath.Join(dir, "shots.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, st)
	assert.NoError(t, closer.Close())
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, _, err := Open(context.Background(), config.Store{Type: "s3"})
	assert.Error(t, err)
	_, _, err = Open(context.Background(), config.Store{Type: "redis"})
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/shots", expandHome("~/shots"))
	assert.Equal(t, "/srv/shots", expandHome("/srv/shots"))
}
