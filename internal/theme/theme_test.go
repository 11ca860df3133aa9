package theme

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader(`
name = "mine"
background = "#111111"
toast = "#00000080"
`))
	require.NoError(t, err)
	assert.Equal(t, "mine", th.Name)
	assert.Equal(t, Color{0x11, 0x11, 0x11, 0xff}, th.Background)
	assert.Equal(t, Color{0, 0, 0, 0x80}, th.Toast)
	assert.Equal(t, Default().CheckerDark, th.CheckerDark)
}

func TestParseRejectsBadColor(t *testing.T) {
	_, err := Parse(strings.NewReader(`background = "red"`))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, hotdog()))
	back, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, hotdog(), back)
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ocean.toml"), []byte(`background = "#0000FF"`), 0o644))
	custom := Default()
	custom.Name = "dark"
	l := &Loader{ConfigDir: dir, Extra: map[string]*Theme{"dark": custom}}

	th, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "default", th.Name)

	th, err = l.Load("dark")
	require.NoError(t, err)
	assert.Same(t, custom, th, "config themes shadow built-ins")

	th, err = l.Load("hotdog")
	require.NoError(t, err)
	assert.Equal(t, "hotdog", th.Name)

	th, err = l.Load("ocean")
	require.NoError(t, err)
	assert.Equal(t, "ocean", th.Name)
	assert.Equal(t, Color{0, 0, 0xff, 0xff}, th.Background)

	_, err = l.Load("missing")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"dark", "default", "high_contrast", "hotdog"}, Names())
}
