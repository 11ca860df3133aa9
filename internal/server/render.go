package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/example/shotmark/internal/shot"
)

type (
	// CreateRequest asks for one or more captures. URLs is a newline
	// separated list, as pasted into a form.
	CreateRequest struct {
		URL  string `json:"url"`
		URLs string `json:"urls"`
	}

	// ScreenshotResponse is a screenshot without its image bytes.
	ScreenshotResponse struct {
		shot.Screenshot
		HasEdit    bool   `json:"hasEdit"`
		ExportName string `json:"exportName"`
	}

	// ErrResponse is the JSON error body.
	ErrResponse struct {
		HTTPStatusCode int    `json:"-"`
		Message        string `json:"error"`
	}
)

// Bind implements render.Binder.
func (c *CreateRequest) Bind(*http.Request) error {
	if strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.URLs) == "" {
		return errors.New("url is required")
	}
	return nil
}

// List returns every requested URL, normalised.
func (c *CreateRequest) List() ([]string, error) {
	text := c.URLs
	if c.URL != "" {
		text = c.URL + "\n" + text
	}
	return shot.ParseURLList(text)
}

func newScreenshotResponse(s *shot.Screenshot) *ScreenshotResponse {
	return &ScreenshotResponse{
		Screenshot: s.Summary(),
		HasEdit:    s.HasEdit(),
		ExportName: s.ExportName(),
	}
}

// Render implements render.Renderer.
func (*ScreenshotResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// Render implements render.Renderer.
func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errStatus(code int, err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: code, Message: err.Error()}
}

func renderList(list []*shot.Screenshot) []render.Renderer {
	out := make([]render.Renderer, 0, len(list))
	for _, s := range list {
		out = append(out, newScreenshotResponse(s))
	}
	return out
}
