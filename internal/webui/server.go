// Package webui serves a rendered dashboard directory over HTTP, plus the
// input probe as a page and a JSON API.
//
// Routes:
//
//	GET /              → index.html and the other artifacts from the output dir
//	GET /probe         → how each input header resolves, as HTML
//	GET /api/probe     → the same report as JSON
//	GET /api/manifest  → manifest.json of the served dashboard
//	GET /healthz       → 200 ok
package webui

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hdidash/internal/dashboard"
	"hdidash/internal/logging"
	"hdidash/internal/probe"
)

// ProbeFunc produces a probe report on demand.
type ProbeFunc func(ctx context.Context) (probe.Report, error)

// Config controls server startup.
type Config struct {
	Addr string
	// Dir is the rendered dashboard directory.
	Dir string
	// Probe backs /probe and /api/probe; nil disables both.
	Probe ProbeFunc
}

// Server wraps a chi router and http.Server.
type Server struct {
	cfg    Config
	router *chi.Mux
	tmpl   *template.Template
	server *http.Server
}

// NewServer constructs a Server with routes and the embedded probe template.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		tmpl:   template.Must(template.New("probe").Parse(probeHTML)),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/probe", s.handleProbe)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/probe", s.handleAPIProbe)
		r.Get("/manifest", s.handleManifest)
	})
	s.router.Handle("/*", http.FileServer(http.Dir(s.cfg.Dir)))
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux { return s.router }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.FromContext(ctx).Info("serving dashboard", "addr", s.cfg.Addr, "dir", s.cfg.Dir)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	rep, err := s.probe(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, rep); err != nil {
		logging.FromContext(r.Context()).Error("template error", "err", err)
	}
}

func (s *Server) handleAPIProbe(w http.ResponseWriter, r *http.Request) {
	rep, err := s.probe(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = probe.WriteJSON(w, rep)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.Dir, dashboard.FileManifest)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "no dashboard rendered", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, path)
}

var errNoProbe = errors.New("probe not configured")

func (s *Server) probe(ctx context.Context) (probe.Report, error) {
	if s.cfg.Probe == nil {
		return probe.Report{}, errNoProbe
	}
	return s.cfg.Probe(ctx)
}

func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errNoProbe) {
		status = http.StatusNotFound
	}
	logging.FromContext(r.Context()).Warn("request failed", "path", r.URL.Path, "status", status, "err", err)
	http.Error(w, err.Error(), status)
}

// requestLogger logs one line per request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context()).Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

//go:embed probe.tmpl.html
var probeHTML string
