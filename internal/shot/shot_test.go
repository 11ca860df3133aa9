package shot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path", got)
	got, err = NormalizeURL("HTTP://example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "http"))
	_, err = NormalizeURL("   ")
	assert.Error(t, err)
	_, err = NormalizeURL("https://")
	assert.Error(t, err)
}

func TestParseURLList(t *testing.T) {
	urls, err := ParseURLList("a.com\n\n  https://b.org \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com", "https://b.org"}, urls)
	_, err = ParseURLList("\n \n")
	assert.Error(t, err)
}

func TestTitleAndExportName(t *testing.T) {
	assert.Equal(t, "Example.com - Website", TitleFor("example.com"))
	s := &Screenshot{ID: "01ABC", Domain: "example.com"}
	assert.Equal(t, "example.com-edited-01ABC.png", s.ExportName())
}

func TestSourcePrefersEdit(t *testing.T) {
	s := &Screenshot{FullImage: "https://img/full.png"}
	assert.Equal(t, "https://img/full.png", s.Source(true))
	s.Edited = []byte{1, 2, 3}
	assert.True(t, strings.HasPrefix(s.Source(true), "data:image/png;base64,"))
	assert.Equal(t, "https://img/full.png", s.Source(false))
	assert.Nil(t, s.Summary().Edited)
	assert.NotNil(t, s.Edited, "summary copies")
}

func TestCapture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	c := NewClient("k3y")
	c.HTTP = srv.Client()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.Now = func() time.Time { return fixed }

	s, err := c.Capture(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, s.StatusCode)
	assert.Equal(t, "127.0.0.1", s.Domain)
	assert.Equal(t, fixed, s.CapturedAt)
	assert.Len(t, s.ID, 26)

	full, err := url.Parse(s.FullImage)
	require.NoError(t, err)
	q := full.Query()
	assert.Equal(t, "k3y", q.Get("key"))
	assert.Equal(t, srv.URL, q.Get("url"))
	assert.Equal(t, "1280x800", q.Get("dimension"))
	assert.Equal(t, "png", q.Get("format"))
	assert.Equal(t, "0", q.Get("cacheLimit"))
	assert.Equal(t, "2000", q.Get("delay"))
	thumb, _ := url.Parse(s.Thumbnail)
	assert.Equal(t, "640x400", thumb.Query().Get("dimension"))
}

func TestProbeUnreachableIs404(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	c := NewClient("")
	assert.Equal(t, http.StatusNotFound, c.ProbeStatus(context.Background(), addr))
}

func TestCaptureAllSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	c := NewClient("")
	c.HTTP = srv.Client()
	out, err := c.CaptureAll(context.Background(), []string{srv.URL, " "})
	assert.Error(t, err)
	assert.Len(t, out, 1)
}
