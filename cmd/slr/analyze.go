package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/helioscope/slr-analytics-service/internal/corpus"
	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/export"
	"github.com/helioscope/slr-analytics-service/internal/temporal"
)

var (
	analyzeKeywords []string
	analyzeFormats  []string
	analyzeOutDir   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <corpus.json>",
	Short: "Run the temporal keyword analysis over a saved corpus",
	Long: `Run the full temporal analysis (publication volume trends, per-keyword
trends, temporal patterns, keyword lifecycles and period comparison) over a
corpus produced by "slr fetch", then export the report.

Examples:
  slr analyze ./corpora/corpus_20240301_120000.json
  slr analyze corpus.json --keywords "federated learning,differential privacy"
  slr analyze corpus.json --format json --format excel --out ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeKeywords, "keywords", nil, "restrict the analysis to these keywords (default: corpus vocabulary)")
	analyzeCmd.Flags().StringArrayVar(&analyzeFormats, "format", []string{"json"}, "export format: json, csv or excel (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out", "", "results directory (default: configured results_dir)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	pubs, err := corpus.Load(args[0])
	if err != nil {
		return err
	}

	vocab := domain.BuildVocabulary(pubs)
	if len(analyzeKeywords) > 0 {
		vocab = make(domain.Vocabulary)
		for _, kw := range analyzeKeywords {
			vocab.Add(kw)
		}
	}

	analyzer := temporal.NewAnalyzer(cfg.Analysis, logger, nil)
	report, err := analyzer.Analyze(cmd.Context(), pubs, vocab)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("analyzed %d publications, %d keywords\n", report.PublicationCount, report.KeywordCount)
	summary := report.KeywordTrends.SummaryStatistics
	fmt.Printf("trends: %d increasing, %d decreasing, %d stable\n",
		summary.PositiveTrends, summary.NegativeTrends, summary.NeutralTrends)

	outDir := analyzeOutDir
	if outDir == "" {
		outDir = cfg.Storage.ResultsDir
	}

	exporter := export.NewExporter(logger, nil)
	stamp := time.Now().UTC().Format("20060102_150405")
	for _, format := range analyzeFormats {
		path := filepath.Join(outDir, fmt.Sprintf("analysis_%s.%s", stamp, exportExtension(format)))
		if err := exporter.Export(report, path, export.Format(format)); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", format, path)
	}

	return nil
}

func exportExtension(format string) string {
	if format == string(export.FormatExcel) {
		return "xlsx"
	}
	return format
}
