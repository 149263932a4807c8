// Package main provides the slr command line tool for running the corpus
// acquisition and temporal analysis pipeline without the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helioscope/slr-analytics-service/internal/config"
	"github.com/helioscope/slr-analytics-service/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "slr",
	Short: "Acquire and analyze systematic literature review corpora",
	Long: `slr runs the corpus pipeline from the command line: fetch publications
from the configured paper sources, deduplicate them into a corpus, run the
temporal keyword analysis and export the results.

Configuration is read the same way the server reads it: config file plus
SLR_-prefixed environment variables.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime loads configuration and builds the CLI logger.
func loadRuntime() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	return cfg, logger.With().Str("component", "cli").Logger(), nil
}
