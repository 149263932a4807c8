package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helioscope/slr-analytics-service/internal/acquire"
	"github.com/helioscope/slr-analytics-service/internal/corpus"
	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/pdf"
)

var (
	fetchStartYear  int
	fetchEndYear    int
	fetchMaxResults int
	fetchSources    []string
	fetchPDFs       bool
	fetchOut        string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <query>",
	Short: "Fetch publications from the configured paper sources",
	Long: `Fetch publications matching a query from every enabled paper source,
write raw per-source snapshots, deduplicate the merged result and save the
processed corpus as JSON.

Examples:
  slr fetch "digital twins" --start-year 2018 --end-year 2024
  slr fetch "federated learning" --sources openalex,arxiv --max-results 200
  slr fetch "llm agents" --pdfs --out ./corpora/llm_agents.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchStartYear, "start-year", 0, "first publication year, inclusive")
	fetchCmd.Flags().IntVar(&fetchEndYear, "end-year", 0, "last publication year, inclusive")
	fetchCmd.Flags().IntVar(&fetchMaxResults, "max-results", 0, "maximum results per source")
	fetchCmd.Flags().StringSliceVar(&fetchSources, "sources", nil, "restrict to named sources (core, openalex, arxiv, semantic_scholar, springer)")
	fetchCmd.Flags().BoolVar(&fetchPDFs, "pdfs", false, "download open access PDFs for the corpus")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "corpus output path (default: <processed_dir>/corpus_<timestamp>.json)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	query := args[0]
	if fetchStartYear != 0 && fetchEndYear != 0 && fetchEndYear < fetchStartYear {
		return fmt.Errorf("end-year %d precedes start-year %d", fetchEndYear, fetchStartYear)
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources := make([]domain.SourceType, len(fetchSources))
	for i, src := range fetchSources {
		sources[i] = domain.SourceType(src)
	}

	registry := acquire.BuildRegistry(cfg.PaperSources, logger)
	acquirer := acquire.NewAcquirer(registry, cfg.Storage.RawDir, logger, nil)

	result, err := acquirer.FetchAllSources(ctx, acquire.Request{
		Query:               query,
		StartYear:           fetchStartYear,
		EndYear:             fetchEndYear,
		MaxResultsPerSource: fetchMaxResults,
		Sources:             sources,
	})
	if err != nil {
		return fmt.Errorf("acquisition failed: %w", err)
	}

	for _, outcome := range result.Outcomes {
		if outcome.Error != "" {
			fmt.Printf("%-18s FAILED: %s\n", outcome.Source, outcome.Error)
			continue
		}
		fmt.Printf("%-18s %d publications (%d total at source)\n", outcome.Source, outcome.Count, outcome.TotalResults)
	}

	processed := corpus.NewProcessor(logger, nil).Process(result.Publications, sources)

	out := fetchOut
	if out == "" {
		out = filepath.Join(cfg.Storage.ProcessedDir, fmt.Sprintf("corpus_%s.json", time.Now().UTC().Format("20060102_150405")))
	}
	if err := corpus.Save(out, processed.Publications); err != nil {
		return err
	}

	fmt.Printf("\nfetched %d, removed %d duplicates, corpus of %d saved to %s\n",
		processed.TotalInput, processed.DuplicatesRemoved, len(processed.Publications), out)

	if fetchPDFs {
		downloader := pdf.NewDownloader(pdf.Config{
			Timeout:   cfg.PDF.Timeout,
			MaxSize:   cfg.PDF.MaxSizeBytes,
			UserAgent: cfg.PDF.UserAgent,
		})
		fetcher := pdf.NewFetcher(downloader, cfg.Storage.PDFDir, cfg.PDF.MaxConcurrent, logger, nil)
		pdfResult, err := fetcher.FetchAll(ctx, processed.Publications)
		if err != nil {
			return fmt.Errorf("pdf downloads aborted: %w", err)
		}
		fmt.Printf("pdfs: %d downloaded, %d skipped, %d failed\n",
			pdfResult.Downloaded, pdfResult.Skipped, pdfResult.Failed)
	}

	return nil
}
