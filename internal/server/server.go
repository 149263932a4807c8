// Package server provides the HTTP REST API for corpus acquisition and
// temporal analysis.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helioscope/slr-analytics-service/internal/acquire"
	"github.com/helioscope/slr-analytics-service/internal/config"
	"github.com/helioscope/slr-analytics-service/internal/corpus"
	"github.com/helioscope/slr-analytics-service/internal/export"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
	"github.com/helioscope/slr-analytics-service/internal/pdf"
	"github.com/helioscope/slr-analytics-service/internal/temporal"
)

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server

	registry   *papersources.Registry
	acquirer   *acquire.Acquirer
	processor  *corpus.Processor
	analyzer   *temporal.Analyzer
	exporter   *export.Exporter
	pdfFetcher *pdf.Fetcher

	storage  config.StorageConfig
	metrics  config.MetricsConfig
	validate *validator.Validate
	logger   zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies. pdfFetcher may
// be nil when PDF downloads are disabled.
func NewServer(
	cfg Config,
	registry *papersources.Registry,
	acquirer *acquire.Acquirer,
	processor *corpus.Processor,
	analyzer *temporal.Analyzer,
	exporter *export.Exporter,
	pdfFetcher *pdf.Fetcher,
	storage config.StorageConfig,
	metricsCfg config.MetricsConfig,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		registry:   registry,
		acquirer:   acquirer,
		processor:  processor,
		analyzer:   analyzer,
		exporter:   exporter,
		pdfFetcher: pdfFetcher,
		storage:    storage,
		metrics:    metricsCfg,
		validate:   validator.New(),
		logger:     logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.requestLogMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metrics.Enabled {
		path := s.metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/acquisitions", s.startAcquisition)
		r.Post("/analyses", s.runAnalysis)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports readiness. The service is ready when at least one
// paper source is enabled; analysis-only deployments configure no sources
// and are always ready.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	sources := make([]string, 0, len(s.registry.EnabledSources()))
	for _, src := range s.registry.EnabledSources() {
		sources = append(sources, src.Name())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"enabled_sources": sources,
	})
}
