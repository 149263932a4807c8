// Package main provides the entry point for the SLR analytics HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helioscope/slr-analytics-service/internal/acquire"
	"github.com/helioscope/slr-analytics-service/internal/config"
	"github.com/helioscope/slr-analytics-service/internal/corpus"
	"github.com/helioscope/slr-analytics-service/internal/export"
	"github.com/helioscope/slr-analytics-service/internal/observability"
	"github.com/helioscope/slr-analytics-service/internal/pdf"
	"github.com/helioscope/slr-analytics-service/internal/server"
	"github.com/helioscope/slr-analytics-service/internal/temporal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("slr-analytics-service starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("slr")
	}

	registry := acquire.BuildRegistry(cfg.PaperSources, logger)
	acquirer := acquire.NewAcquirer(registry, cfg.Storage.RawDir, logger, metrics)
	processor := corpus.NewProcessor(logger, metrics)
	analyzer := temporal.NewAnalyzer(cfg.Analysis, logger, metrics)
	exporter := export.NewExporter(logger, metrics)

	var pdfFetcher *pdf.Fetcher
	if cfg.PDF.Enabled {
		downloader := pdf.NewDownloader(pdf.Config{
			Timeout:   cfg.PDF.Timeout,
			MaxSize:   cfg.PDF.MaxSizeBytes,
			UserAgent: cfg.PDF.UserAgent,
		})
		pdfFetcher = pdf.NewFetcher(downloader, cfg.Storage.PDFDir, cfg.PDF.MaxConcurrent, logger, metrics)
	}

	httpCfg := server.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	srv := server.NewServer(
		httpCfg,
		registry,
		acquirer,
		processor,
		analyzer,
		exporter,
		pdfFetcher,
		cfg.Storage,
		cfg.Metrics,
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", httpCfg.Address).
		Int("enabled_sources", len(registry.EnabledSources())).
		Msg("slr-analytics-service is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down slr-analytics-service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("slr-analytics-service shutdown complete")
	return nil
}
