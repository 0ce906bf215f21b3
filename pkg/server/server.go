// Package server exposes the auth forms over HTTP: server-rendered pages for
// browsers, JSON documents for scripted clients, and small validation
// endpoints for progressive enhancement.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-authform/internal/logging"
	"github.com/goliatone/go-authform/pkg/clock"
	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/metrics"
	"github.com/goliatone/go-authform/pkg/render"
	"github.com/goliatone/go-authform/pkg/renderers/jsonview"
	"github.com/goliatone/go-authform/pkg/renderers/vanilla"
	"github.com/goliatone/go-authform/pkg/uischema"
)

// ErrNoForms is returned by New when the store is nil or empty.
var ErrNoForms = errors.New("server: no forms to serve")

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger used for requests and controllers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers replaces the default vanilla and json renderers.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithPalette sets the resolved theme tokens passed to every render.
func WithPalette(palette render.Palette) Option {
	return func(s *Server) {
		s.palette = palette
	}
}

// WithSubmitter sets the backend used by form posts. The default is a
// SimulatedSubmitter honouring each form's submit delay.
func WithSubmitter(submitter form.Submitter) Option {
	return func(s *Server) {
		if submitter != nil {
			s.submitter = submitter
		}
	}
}

// WithMetrics records form activity on m and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithClock overrides the clock used by controllers and notifications.
func WithClock(clk clock.Clock) Option {
	return func(s *Server) {
		s.clock = clock.OrReal(clk)
	}
}

// Server serves every form in a uischema.Store. It holds no per-user state:
// each request builds a fresh controller from the posted values.
type Server struct {
	forms     *uischema.Store
	renderers *render.Registry
	palette   render.Palette
	submitter form.Submitter
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	clock     clock.Clock
	logger    *slog.Logger
}

// New builds a Server for forms.
func New(forms *uischema.Store, options ...Option) (*Server, error) {
	if forms == nil || forms.Empty() {
		return nil, ErrNoForms
	}

	s := &Server{
		forms:  forms,
		clock:  clock.Real(),
		logger: logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderers == nil {
		html, err := vanilla.New(vanilla.WithStylesheet(assetsPrefix + vanilla.StylesheetName))
		if err != nil {
			return nil, fmt.Errorf("server: vanilla renderer: %w", err)
		}
		registry, err := render.NewRegistry(html, jsonview.New())
		if err != nil {
			return nil, fmt.Errorf("server: renderers: %w", err)
		}
		s.renderers = registry
	}
	if s.renderers.Len() == 0 {
		return nil, errors.New("server: renderer registry is empty")
	}
	if s.submitter == nil {
		s.submitter = &form.SimulatedSubmitter{Clock: s.clock}
	}
	return s, nil
}

// Routes returns the router with the standard middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	s.Register(r)
	return r
}

// Register mounts the form pages and API endpoints on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.handleIndex)
	for _, id := range s.forms.IDs() {
		def, _ := s.forms.Form(id)
		path := routeFor(def)
		r.Get(path, s.handlePage(def))
		r.Post(path, s.handlePost(def))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/forms/{id}", s.handleForm)
		r.Post("/validate", s.handleValidate)
		r.Post("/strength", s.handleStrength)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Handle(assetsPrefix+"*", http.StripPrefix(assetsPrefix, http.FileServer(http.FS(vanilla.AssetsFS()))))
}

// ListenAndServe serves Routes on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", s.clock.Now().Sub(start)),
		)
	})
}
