package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/pipeline"
)

const maxAssessBody = 10 << 20

// Assessor assesses decoded records on demand.
type Assessor interface {
	AssessBatch(ctx context.Context, recs []domain.NeoRecord, workers int) ([]domain.EnhancedAsteroid, []pipeline.RecordError)
}

// Server exposes health, readiness, metrics and on-demand assessment endpoints.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	workers    int
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics
// routes, plus POST /v1/assess when assessor is non-nil.
func NewServer(addr string, ready sharedobs.ReadinessChecker, assessor Assessor, workers int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		workers:  workers,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if assessor != nil {
		mux.HandleFunc("POST /v1/assess", s.handleAssess)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type assessResponse struct {
	Assessments []domain.AsteroidDocument `json:"assessments"`
	Errors      []pipeline.RecordError    `json:"errors"`
	Summary     domain.BatchSummary       `json:"summary"`
}

// handleAssess accepts a NeoWs feed response or a JSON array of records.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAssessBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Errorf("read body: %w", err))
		return
	}

	recs, err := domain.DecodeRecords(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	assessed, failed := s.assessor.AssessBatch(r.Context(), recs, s.workers)

	resp := assessResponse{
		Assessments: make([]domain.AsteroidDocument, len(assessed)),
		Errors:      failed,
		Summary:     domain.Summarize(assessed),
	}
	if resp.Errors == nil {
		resp.Errors = []pipeline.RecordError{}
	}
	for i := range assessed {
		resp.Assessments[i] = domain.ToDocument(assessed[i])
	}

	s.logger.Info("assess request served",
		"records", len(recs),
		"assessed", len(assessed),
		"failed", len(failed),
		"max_torino", resp.Summary.MaxTorino,
	)
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
