// Package observability provides logging and metrics support for the SLR
// analytics service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for acquisitions, analyses, and sources
//   - Context helpers for propagating observability data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("request_id", reqID).Msg("acquisition started")
//
// Add analysis context to logger:
//
//	logger = observability.WithAnalysisContext(logger, analysisID, query)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("slr_analytics")
//
// Record metrics:
//
//	metrics.RecordAcquisitionStarted()
//	metrics.RecordPublicationsFetched("openalex", 42)
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	reqID := observability.RequestIDFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: API request identifier
//   - analysis_id: Temporal analysis run identifier
//   - query: User's research query
//   - source: Paper source (openalex, arxiv, etc.)
//   - keyword: Vocabulary keyword under analysis
//   - period: Named comparison period
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
