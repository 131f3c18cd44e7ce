// Package http exposes run diagnostics over HTTP for external observers:
// current run status, per-run convergence history, and Prometheus metrics.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmftio/bethe/pkg/domain"
	"github.com/dmftio/bethe/pkg/ports"
)

// StatusFunc returns a snapshot of the active run, or nil when idle.
type StatusFunc func() *domain.RunState

// Server serves the diagnostics API.
type Server struct {
	status   StatusFunc
	traces   ports.TraceStore
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithTraceStore enables the /runs/{runID}/history endpoint.
func WithTraceStore(traces ports.TraceStore) Option {
	return func(s *Server) { s.traces = traces }
}

// WithGatherer sets the Prometheus gatherer for /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the diagnostics API.
func NewHandler(status StatusFunc, opts ...Option) http.Handler {
	s := &Server{
		status:   status,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/runs/{runID}/history", s.handleHistory)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := s.status()
	if state == nil {
		http.Error(w, "no active run", http.StatusNotFound)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.traces == nil {
		http.Error(w, "trace store not configured", http.StatusNotImplemented)
		return
	}
	runID := chi.URLParam(r, "runID")
	history, err := s.traces.History(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		s.logger.Error("history lookup failed", "run_id", runID, "err", err)
		return
	}
	s.writeJSON(w, history)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
