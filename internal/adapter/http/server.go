package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

// Worker is the view of the analysis worker the server reports on.
type Worker interface {
	sharedobs.ReadinessChecker
	LastRun() (domain.RunSummary, bool)
}

// Server exposes liveness, readiness, the last completed analysis run and
// Prometheus metrics for the windstats worker.
type Server struct {
	httpServer *http.Server
	worker     Worker
	logger     *slog.Logger
}

// NewServer registers /healthz, /readyz, /status and /metrics.
func NewServer(addr string, worker Worker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		worker: worker,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(worker))
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// statusResponse is the body of GET /status. LastRun is null until the
// worker has completed a request.
type statusResponse struct {
	Ready   bool               `json:"ready"`
	LastRun *domain.RunSummary `json:"last_run"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Ready: s.worker.CheckReadiness(r.Context()) == nil}
	if last, ok := s.worker.LastRun(); ok {
		resp.LastRun = &last
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("encode status response", "error", err)
	}
}

// Start listens until Shutdown; it returns http.ErrServerClosed then.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP routes a request through the server's mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
