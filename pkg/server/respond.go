package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/render"
)

// respond renders view with the renderer the client asked for.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, view form.View, opts render.RenderOptions, status int) {
	opts.Palette = s.palette
	renderer := s.negotiate(r)
	body, err := renderer.Render(r.Context(), view, opts)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render failed",
			slog.String("renderer", renderer.Name()),
			slog.Any("error", err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// negotiate walks the Accept header in order and stops at the first media
// type a registered renderer produces. HTML wins when nothing matches.
func (s *Server) negotiate(r *http.Request) render.Renderer {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := render.MediaType(part)
		if mediaType == "" || strings.Contains(mediaType, "*") {
			continue
		}
		if renderer, ok := s.renderers.ForContentType(mediaType); ok {
			return renderer
		}
	}
	if renderer, ok := s.renderers.ForContentType("text/html"); ok {
		return renderer
	}
	renderer, _ := s.renderers.Get(s.renderers.List()[0])
	return renderer
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		slog.Int("status", status),
		slog.Any("error", err),
	)
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: form.ErrorCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

