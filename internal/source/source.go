// Package source resolves image references into decoded images. A reference
// is an http(s) URL, a data: URI, a file path or file:// URL,
// "screen:[monitor]" for a desktop capture or "clipboard:" for the image on
// the clipboard.
package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/capture"
	"github.com/example/shotmark/internal/clipboard"
)

// DefaultMaxBytes caps the size of a fetched image.
const DefaultMaxBytes = 64 << 20

// ErrTooLarge is returned when a source exceeds the configured size limit.
var ErrTooLarge = errors.New("source: image too large")

// ScreenFunc captures the desktop or one monitor.
type ScreenFunc func(ctx context.Context, monitor string) (*image.RGBA, error)

// Fetcher loads images from references.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	maxPix   int64
	screen   ScreenFunc
	paste    func() ([]byte, error)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for http(s) references.
func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithMaxBytes caps the bytes read from any reference.
func WithMaxBytes(n int64) Option { return func(f *Fetcher) { f.maxBytes = n } }

// WithMaxPixels caps width*height of any decoded image.
func WithMaxPixels(n int64) Option { return func(f *Fetcher) { f.maxPix = n } }

// WithScreen replaces the desktop capture function.
func WithScreen(fn ScreenFunc) Option { return func(f *Fetcher) { f.screen = fn } }

// WithClipboard replaces the clipboard reader used for "clipboard:".
func WithClipboard(fn func() ([]byte, error)) Option { return func(f *Fetcher) { f.paste = fn } }

// New returns a Fetcher with a 30 second HTTP timeout.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		maxPix:   DefaultMaxPixels,
		screen:   capture.Desktop,
		paste:    clipboard.ReadPNG,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch resolves ref and decodes it.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	if monitor, ok := screenRef(ref); ok {
		if f.screen == nil {
			return nil, capture.ErrUnsupported
		}
		return f.screen(ctx, monitor)
	}
	data, err := f.Read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeLimit(data, f.maxPix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(ref), err)
	}
	return img, nil
}

// Read returns the raw bytes behind ref.
func (f *Fetcher) Read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, _, err := ParseDataURI(ref)
		return data, err
	case ref == "clipboard:":
		if f.paste == nil {
			return nil, clipboard.ErrUnsupported
		}
		return f.paste()
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.readHTTP(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", ref, err)
		}
		return f.readFile(u.Path)
	case ref == "":
		return nil, errors.New("source: empty reference")
	}
	return f.readFile(ref)
}

func (f *Fetcher) readHTTP(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	log := logrus.WithField("url", ref)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.WithError(cerr).Debug("close response body")
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", ref, resp.Status)
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil {
			logrus.WithError(cerr).WithField("path", path).Debug("close image file")
		}
	}()
	return f.readLimited(fh)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	limit := f.maxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

func screenRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "screen:") {
		return "", false
	}
	return strings.TrimPrefix(ref, "screen:"), true
}

func describe(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return "data uri"
	}
	return ref
}

// DataURI encodes data as a base64 data: URI.
func DataURI(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 or percent-encoded data: URI.
func ParseDataURI(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("source: not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("source: data uri missing payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if mime == "" {
		mime = "text/plain"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("source: decode data uri: %w", err)
		}
		return data, mime, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("source: decode data uri: %w", err)
	}
	return []byte(text), mime, nil
}
