// Package server exposes the screenshot gallery over HTTP.
package server

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/source"
	"github.com/example/shotmark/internal/store"
)

// DefaultMaxUpload caps PUT bodies for edited images.
const DefaultMaxUpload = 32 << 20

// Capturer creates screenshot records for page URLs.
type Capturer interface {
	Capture(ctx context.Context, url string) (*shot.Screenshot, error)
}

// Fetcher loads images by reference for thumbnails.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// Server serves the gallery API.
type Server struct {
	store     store.Store
	capture   Capturer
	fetch     Fetcher
	maxUpload int64
	maxPixels int64
}

// Option configures a Server.
type Option func(*Server)

// WithFetcher enables the thumbnail endpoint.
func WithFetcher(f Fetcher) Option { return func(s *Server) { s.fetch = f } }

// WithMaxUpload sets the largest accepted edited image body.
func WithMaxUpload(n int64) Option { return func(s *Server) { s.maxUpload = n } }

// WithMaxPixels sets the largest accepted edited image in pixels.
func WithMaxPixels(n int64) Option { return func(s *Server) { s.maxPixels = n } }

// New creates a Server over st. capture may be nil to disable POST.
func New(st store.Store, capture Capturer, opts ...Option) *Server {
	s := &Server{store: st, capture: capture, maxUpload: DefaultMaxUpload, maxPixels: source.DefaultMaxPixels}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Origin", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Route("/api/screenshots", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/image", s.handleImage)
			r.Get("/thumbnail", s.handleThumbnail)
			r.Put("/edited", s.handlePutEdited)
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("Starting server")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logrus.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start),
			"reqID":    middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
