package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helioscope/slr-analytics-service/internal/export"
	"github.com/helioscope/slr-analytics-service/internal/temporal"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <report.json> <format>",
	Short: "Re-export a saved analysis report in another format",
	Long: `Convert a JSON analysis report produced by "slr analyze" (or the
/api/v1/analyses endpoint) to CSV or Excel without rerunning the analysis.

Examples:
  slr export results/analysis_20240301_120000.json csv
  slr export report.json excel --out trends.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: report path with the new extension)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	reportPath, format := args[0], args[1]

	_, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}
	var report temporal.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("decoding report: %w", err)
	}

	out := exportOut
	if out == "" {
		out = strings.TrimSuffix(reportPath, ".json") + "." + exportExtension(format)
	}

	exporter := export.NewExporter(logger, nil)
	if err := exporter.Export(&report, out, export.Format(format)); err != nil {
		return err
	}

	fmt.Printf("exported %s to %s\n", format, out)
	return nil
}
