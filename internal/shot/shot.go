// Package shot defines the screenshot record and the client that asks the
// remote rendering service to capture a web page.
package shot

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/example/shotmark/internal/source"
)

// Screenshot is one captured page. Thumbnail and FullImage are image
// references the source package can fetch. Edited holds the last exported
// annotation as PNG bytes.
type Screenshot struct {
	ID         string    `json:"id" yaml:"id"`
	URL        string    `json:"url" yaml:"url"`
	Domain     string    `json:"domain" yaml:"domain"`
	Title      string    `json:"title" yaml:"title"`
	StatusCode int       `json:"statusCode" yaml:"status_code"`
	Thumbnail  string    `json:"thumbnail" yaml:"thumbnail"`
	FullImage  string    `json:"fullImage" yaml:"full_image"`
	Edited     []byte    `json:"editedImage,omitempty" yaml:"-"`
	CapturedAt time.Time `json:"capturedAt" yaml:"captured_at"`
}

// HasEdit reports whether an annotated version has been saved.
func (s *Screenshot) HasEdit() bool { return len(s.Edited) > 0 }

// Source returns the reference to open in the editor. The saved edit wins
// when preferEdited is set and one exists.
func (s *Screenshot) Source(preferEdited bool) string {
	if preferEdited && s.HasEdit() {
		return source.DataURI(s.Edited, "image/png")
	}
	return s.FullImage
}

// Summary returns a copy without image bytes, for listings.
func (s Screenshot) Summary() Screenshot {
	s.Edited = nil
	return s
}

// ExportName is the download file name for the edited image.
func (s *Screenshot) ExportName() string {
	return fmt.Sprintf("%s-edited-%s.png", safeName(s.Domain), s.ID)
}

var schemeRE = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL adds https:// when no scheme is given and checks the result
// names a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is empty")
	}
	if !schemeRE.MatchString(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u.String(), nil
}

// ParseURLList splits a newline separated list, dropping blank lines.
func ParseURLList(text string) ([]string, error) {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		u, err := NormalizeURL(line)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid urls found")
	}
	return out, nil
}

// TitleFor builds the best-effort title for a host name.
func TitleFor(domain string) string {
	r, size := utf8.DecodeRuneInString(domain)
	if size == 0 {
		return "Website"
	}
	return string(unicode.ToUpper(r)) + domain[size:] + " - Website"
}

func safeName(s string) string {
	if s == "" {
		return "screenshot"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
}
