package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shotmark/internal/theme"
	"github.com/example/shotmark/internal/tools"
)

func TestParse(t *testing.T) {
	input := `
theme = "my_custom_theme"
save_dir = "/tmp/screens"
history_limit = 25

[editor]
tool = "highlighter"
width = 8
color = "blue"

[store]
type = "sqlite"
dsn = "/tmp/shots.db"

[capture]
api_key = "k"
delay_ms = 500

[notify]
capture = true
save = false
copy = true

[themes.my_custom_theme]
background = "#111111"
foreground = "#FFFFFF"
`
	cfg, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "my_custom_theme", cfg.Theme)
	assert.Equal(t, "/tmp/screens", cfg.SaveDir)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, Notify{Capture: true, Copy: true}, cfg.Notify)
	assert.Equal(t, Store{Type: StoreSQLite, DSN: "/tmp/shots.db"}, cfg.Store)
	assert.Equal(t, "640x400", cfg.Capture.ThumbnailDimension, "unset keys keep defaults")

	th, ok := cfg.Themes["my_custom_theme"]
	require.True(t, ok)
	assert.Equal(t, "my_custom_theme", th.Name)
	assert.Equal(t, theme.Color{R: 0x11, G: 0x11, B: 0x11, A: 0xff}, th.Background)
	assert.Equal(t, theme.Default().CheckerDark, th.CheckerDark)

	s, err := cfg.EditorSettings()
	require.NoError(t, err)
	assert.Equal(t, tools.Highlighter, s.Tool)
	assert.Equal(t, 8, s.Width)
	assert.Equal(t, "Blue", tools.ColorName(s.Color))

	cl := cfg.ShotClient()
	assert.Equal(t, "k", cl.APIKey)
	assert.Equal(t, 500*time.Millisecond, cl.Delay)
}

func TestCircular(t *testing.T) {
	input := `theme = "dark"
save_dir = "/home/user/shots"

[notify]
capture = true
save = true

[themes.custom]
background = "#000000"
`
	cfg, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
}

func TestEditorSettingsRejectsBadValues(t *testing.T) {
	cfg := New()
	cfg.Editor.Tool = "lasso"
	_, err := cfg.EditorSettings()
	assert.ErrorIs(t, err, tools.ErrUnknownTool)

	cfg = New()
	cfg.Editor.Color = "teal"
	_, err = cfg.EditorSettings()
	assert.ErrorIs(t, err, tools.ErrColorNotInPalette)

	cfg = New()
	cfg.Editor.Width = 99
	s, err := cfg.EditorSettings()
	require.NoError(t, err)
	assert.Equal(t, tools.MaxWidth, s.Width)
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	env := map[string]string{
		"SHOTMARK_THEME":    "hotdog",
		"SHOTMARK_STORE":    "filesystem",
		"SHOTMARK_API_KEY":  "secret",
		"SHOTMARK_S3_BUCKET": " ",

		"SHOTMARK_NOTIFY_SAVE_TEXT": "Wrote %s",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "hotdog", cfg.Theme)
	assert.Equal(t, StoreFilesystem, cfg.Store.Type)
	assert.Equal(t, "secret", cfg.Capture.APIKey)
	assert.Empty(t, cfg.Store.Bucket)
	assert.Equal(t, "Wrote %s", cfg.Notify.SaveText)
}

func TestLoaderPaths(t *testing.T) {
	dir := t.TempDir()
	xdg := filepath.Join(dir, "xdg")
	env := map[string]string{"XDG_CONFIG_HOME": xdg}
	l := &Loader{Version: "1.0", Getenv: func(k string) string { return env[k] }}

	assert.Empty(t, l.GetConfigPath())
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)

	path := l.DefaultPath()
	assert.Equal(t, filepath.Join(xdg, "shotmark", "config.toml"), path)
	cfg.Theme = "dark"
	require.NoError(t, Save(path, cfg))
	assert.Equal(t, path, l.GetConfigPath())

	loaded, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.Theme)

	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(override, []byte(`theme = "hotdog"`), 0o644))
	l.OverridePath = override
	loaded, err = l.Load()
	require.NoError(t, err)
	assert.Equal(t, "hotdog", loaded.Theme)
}

func TestLevel(t *testing.T) {
	cfg := New()
	cfg.LogLevel = "debug"
	assert.Equal(t, "debug", cfg.Level().String())
	cfg.LogLevel = "loud"
	assert.Equal(t, "info", cfg.Level().String())
}
