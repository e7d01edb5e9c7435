// Package web exposes the coverage analyzer as an HTTP service: a JSON
// analyze endpoint backed by the TTL cache, a CSV export, the analysis
// history, and a health check. Presentation only — all analysis semantics
// live in the coverage package.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lannv1101/css-checker/cache"
	"github.com/lannv1101/css-checker/collect"
	"github.com/lannv1101/css-checker/history"
)

// Service wires the collector, cache and history store behind the router.
// History may be nil; recording is then skipped.
type Service struct {
	source  collect.Source
	results *cache.Results
	store   *history.Store
	logger  *slog.Logger
}

// NewService creates the HTTP service.
func NewService(source collect.Source, results *cache.Results, store *history.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, results: results, store: store, logger: logger}
}

// Router builds the chi router with the standard middleware stack.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders(DefaultHeaders()))
	r.Use(MaxBody(64 * 1024))

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/analyze", s.handleAnalyze)
		r.Get("/analyze/export", s.handleExport)
		r.Get("/history", s.handleHistory)
	})

	return r
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("web: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
