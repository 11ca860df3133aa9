package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/source"
	"github.com/example/shotmark/internal/store"
)

const (
	defaultThumbWidth  = 320
	defaultThumbHeight = 200
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list screenshots")
		_ = render.Render(w, r, errStatus(http.StatusInternalServerError, errors.New("failed to list screenshots")))
		return
	}
	_ = render.RenderList(w, r, renderList(list))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.capture == nil {
		_ = render.Render(w, r, errStatus(http.StatusNotImplemented, errors.New("capture is not configured")))
		return
	}
	req := &CreateRequest{}
	if err := render.Bind(r, req); err != nil {
		_ = render.Render(w, r, errStatus(http.StatusBadRequest, err))
		return
	}
	urls, err := req.List()
	if err != nil {
		_ = render.Render(w, r, errStatus(http.StatusBadRequest, err))
		return
	}
	var created []*shot.Screenshot
	for _, u := range urls {
		sc, err := s.capture.Capture(r.Context(), u)
		if err != nil {
			logrus.WithError(err).WithField("url", u).Warn("capture failed")
			continue
		}
		if err := s.store.Save(r.Context(), sc); err != nil {
			logrus.WithError(err).WithField("id", sc.ID).Error("Failed to save screenshot")
			_ = render.Render(w, r, errStatus(http.StatusInternalServerError, errors.New("failed to save screenshot")))
			return
		}
		created = append(created, sc)
	}
	if len(created) == 0 {
		_ = render.Render(w, r, errStatus(http.StatusBadGateway, errors.New("no screenshots captured")))
		return
	}
	render.Status(r, http.StatusCreated)
	_ = render.RenderList(w, r, renderList(created))
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*shot.Screenshot, bool) {
	id := chi.URLParam(r, "id")
	sc, err := s.store.Get(r.Context(), id)
	switch {
	case err == nil:
		return sc, true
	case errors.Is(err, store.ErrNotFound):
		_ = render.Render(w, r, errStatus(http.StatusNotFound, err))
	case store.ValidID(id) != nil:
		_ = render.Render(w, r, errStatus(http.StatusBadRequest, err))
	default:
		logrus.WithError(err).WithField("id", id).Error("Failed to get screenshot")
		_ = render.Render(w, r, errStatus(http.StatusInternalServerError, errors.New("failed to get screenshot")))
	}
	return nil, false
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.load(w, r)
	if !ok {
		return
	}
	_ = render.Render(w, r, newScreenshotResponse(sc))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		_ = render.Render(w, r, errStatus(http.StatusNotFound, err))
	default:
		logrus.WithError(err).WithField("id", id).Error("Failed to delete screenshot")
		_ = render.Render(w, r, errStatus(http.StatusInternalServerError, errors.New("failed to delete screenshot")))
	}
}

// handleImage serves the edited PNG, or redirects to the rendered page
// image when nothing has been saved yet.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.load(w, r)
	if !ok {
		return
	}
	if !sc.HasEdit() {
		http.Redirect(w, r, sc.FullImage, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sc.ExportName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(sc.Edited)))
	_, _ = w.Write(sc.Edited)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if s.fetch == nil {
		_ = render.Render(w, r, errStatus(http.StatusNotImplemented, errors.New("thumbnails are not configured")))
		return
	}
	sc, ok := s.load(w, r)
	if !ok {
		return
	}
	tw, th := queryInt(r, "w", defaultThumbWidth), queryInt(r, "h", defaultThumbHeight)
	img, err := s.fetch.Fetch(r.Context(), sc.Source(true))
	if err != nil {
		logrus.WithError(err).WithField("id", sc.ID).Warn("thumbnail source unavailable")
		_ = render.Render(w, r, errStatus(http.StatusBadGateway, errors.New("image unavailable")))
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, source.Thumbnail(img, tw, th)); err != nil {
		_ = render.Render(w, r, errStatus(http.StatusInternalServerError, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// handlePutEdited stores an exported annotation. Any supported image
// format is accepted and kept as PNG.
func (s *Server) handlePutEdited(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxUpload+1))
	if err != nil {
		_ = render.Render(w, r, errStatus(http.StatusBadRequest, err))
		return
	}
	if int64(len(data)) > s.maxUpload {
		_ = render.Render(w, r, errStatus(http.StatusRequestEntityTooLarge, source.ErrTooLarge))
		return
	}
	img, mime, err := source.DecodeLimit(data, s.maxPixels)
	if errors.Is(err, source.ErrTooLarge) {
		_ = render.Render(w, r, errStatus(http.StatusRequestEntityTooLarge, err))
		return
	}
	if err != nil {
		_ = render.Render(w, r, errStatus(http.StatusUnsupportedMediaType, err))
		return
	}
	if mime != "image/png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			_ = render.Render(w, r, errStatus(http.StatusInternalServerError, err))
			return
		}
		data = buf.Bytes()
	}
	sc, err := store.SetEdited(r.Context(), s.store, id, data)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = render.Render(w, r, errStatus(http.StatusNotFound, err))
			return
		}
		logrus.WithError(err).WithField("id", id).Error("Failed to save edited image")
		_ = render.Render(w, r, errStatus(http.StatusInternalServerError, errors.New("failed to save edited image")))
		return
	}
	logrus.WithFields(logrus.Fields{"id": id, "bytes": len(data)}).Info("edited image saved")
	_ = render.Render(w, r, newScreenshotResponse(sc))
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
