// Package export writes temporal analysis reports to disk in JSON, CSV and
// Excel form. JSON carries the complete report; CSV and Excel carry a
// condensed summary suitable for spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/helioscope/slr-analytics-service/internal/observability"
	"github.com/helioscope/slr-analytics-service/internal/temporal"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ErrUnsupportedFormat is returned when Export is asked for a format it
// does not know.
var ErrUnsupportedFormat = fmt.Errorf("unsupported export format")

// Exporter writes analysis reports to files.
type Exporter struct {
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewExporter builds an Exporter. metrics may be nil.
func NewExporter(logger zerolog.Logger, metrics *observability.Metrics) *Exporter {
	return &Exporter{
		logger:  logger.With().Str("component", "exporter").Logger(),
		metrics: metrics,
	}
}

// Export writes report to path in the given format.
func (e *Exporter) Export(report *temporal.Report, path string, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		err = e.WriteJSON(report, path)
	case FormatCSV:
		err = e.WriteCSV(report, path)
	case FormatExcel:
		err = e.WriteExcel(report, path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		e.logger.Error().Err(err).Str("path", path).Str("format", string(format)).Msg("export failed")
		return err
	}
	if e.metrics != nil {
		e.metrics.RecordExport(string(format))
	}
	e.logger.Info().Str("path", path).Str("format", string(format)).Msg("exported analysis results")
	return nil
}

// WriteJSON writes the complete report as indented JSON.
func (e *Exporter) WriteJSON(report *temporal.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing json export: %w", err)
	}
	return nil
}

// csvHeader is the column set of the CSV summary.
var csvHeader = []string{"type", "item", "metric", "value", "significance"}

// WriteCSV writes a summary CSV with one row per keyword trend and one per
// keyword lifecycle, keywords sorted for deterministic output.
func (e *Exporter) WriteCSV(report *temporal.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, keyword := range sortedTrendKeywords(report) {
		t := report.KeywordTrends.IndividualTrends[keyword]
		row := []string{
			"keyword_trend",
			keyword,
			"trend_slope",
			formatFloat(t.TrendSlope),
			formatFloat(t.PValue),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	for _, keyword := range sortedLifecycleKeywords(report) {
		l := report.Lifecycle.IndividualLifecycles[keyword]
		row := []string{
			"lifecycle",
			keyword,
			"current_stage",
			string(l.CurrentStage),
			formatFloat(l.GrowthRate),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv export: %w", err)
	}
	return nil
}

const (
	trendsSheet    = "Keyword_Trends"
	lifecycleSheet = "Lifecycle_Analysis"
)

// WriteExcel writes a two-sheet workbook: keyword trends and lifecycle
// analysis, one row per keyword.
func (e *Exporter) WriteExcel(report *temporal.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, trendsSheet,
		[]string{"keyword", "trend_slope", "trend_direction", "r_squared", "p_value", "total_occurrences"},
		trendRows(report)); err != nil {
		return fmt.Errorf("writing trends sheet: %w", err)
	}
	if err := writeSheet(f, lifecycleSheet,
		[]string{"keyword", "current_stage", "lifespan_months", "growth_rate", "maturity_index"},
		lifecycleRows(report)); err != nil {
		return fmt.Errorf("writing lifecycle sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving excel export: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func trendRows(report *temporal.Report) [][]any {
	rows := make([][]any, 0, len(report.KeywordTrends.IndividualTrends))
	for _, keyword := range sortedTrendKeywords(report) {
		t := report.KeywordTrends.IndividualTrends[keyword]
		rows = append(rows, []any{
			keyword, t.TrendSlope, string(t.TrendDirection), t.RSquared, t.PValue, t.TotalOccurrences,
		})
	}
	return rows
}

func lifecycleRows(report *temporal.Report) [][]any {
	rows := make([][]any, 0, len(report.Lifecycle.IndividualLifecycles))
	for _, keyword := range sortedLifecycleKeywords(report) {
		l := report.Lifecycle.IndividualLifecycles[keyword]
		rows = append(rows, []any{
			keyword, string(l.CurrentStage), l.LifespanMonths, l.GrowthRate, l.MaturityIndex,
		})
	}
	return rows
}

func sortedTrendKeywords(report *temporal.Report) []string {
	keywords := make([]string, 0, len(report.KeywordTrends.IndividualTrends))
	for k := range report.KeywordTrends.IndividualTrends {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

func sortedLifecycleKeywords(report *temporal.Report) []string {
	keywords := make([]string, 0, len(report.Lifecycle.IndividualLifecycles))
	for k := range report.Lifecycle.IndividualLifecycles {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
