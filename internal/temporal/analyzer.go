// Package temporal implements the temporal trend and lifecycle analysis of
// keyword usage in a publication corpus: monthly trend estimation, pattern
// detection (seasonality, cycles, trend changes), lifecycle classification
// and time-period comparison.
package temporal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/helioscope/slr-analytics-service/internal/config"
	"github.com/helioscope/slr-analytics-service/internal/dates"
	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/observability"
)

// Analyzer runs all temporal analyses over a prepared corpus. It is safe
// for concurrent use; all state lives in the per-call inputs.
type Analyzer struct {
	cfg     config.AnalysisConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewAnalyzer constructs an Analyzer with the given thresholds. metrics may
// be nil when instrumentation is not wanted, e.g. in tests.
func NewAnalyzer(cfg config.AnalysisConfig, logger zerolog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		logger:  logger.With().Str("component", "temporal_analyzer").Logger(),
		metrics: metrics,
	}
}

// Report aggregates every analysis the service performs over one corpus.
type Report struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	PublicationCount int                 `json:"publication_count"`
	KeywordCount     int                 `json:"keyword_count"`
	VolumeTrends     VolumeTrends        `json:"publication_trends"`
	KeywordTrends    KeywordTrends       `json:"keyword_trends"`
	TemporalPatterns TemporalPatterns    `json:"temporal_patterns"`
	Lifecycle        LifecycleAnalysis   `json:"keyword_lifecycle"`
	PeriodComparison ComparativeAnalysis `json:"period_comparison"`
}

// Analyze runs the full pipeline: data preparation over the publications and
// vocabulary, then every analysis stage. Publications without a resolvable
// date are skipped during preparation.
func (a *Analyzer) Analyze(ctx context.Context, pubs []*domain.Publication, vocab domain.Vocabulary) (*Report, error) {
	start := time.Now()
	logger := a.logger.With().Int("publications", len(pubs)).Int("vocabulary", len(vocab)).Logger()
	if id := observability.AnalysisIDFromContext(ctx); id != "" {
		logger = logger.With().Str("analysis_id", id).Logger()
	}
	logger.Info().Msg("starting temporal analysis")
	if a.metrics != nil {
		a.metrics.RecordAnalysisStarted()
	}

	dated, undated := dates.ResolveAll(pubs)
	if undated > 0 {
		logger.Warn().Int("undated", undated).Msg("publications without resolvable dates skipped")
		if a.metrics != nil {
			for i := 0; i < undated; i++ {
				a.metrics.RecordDateResolutionFailure()
			}
		}
	}

	prepared := Prepare(dated, vocab)
	if len(prepared.Occurrences) == 0 {
		logger.Warn().Msg("no dated keyword occurrences in corpus")
		if a.metrics != nil {
			a.metrics.RecordAnalysisFailed(time.Since(start).Seconds())
		}
		return nil, domain.NewInsufficientDataError("temporal", 1, 0)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:      time.Now().UTC(),
		PublicationCount: len(pubs),
		KeywordCount:     len(prepared.Occurrences),
		VolumeTrends:     a.AnalyzePublicationTrends(pubs),
		KeywordTrends:    a.AnalyzeKeywordTrends(prepared),
		TemporalPatterns: a.DetectTemporalPatterns(prepared),
		Lifecycle:        a.AnalyzeKeywordLifecycle(prepared),
		PeriodComparison: a.CompareTimePeriods(prepared),
	}

	elapsed := time.Since(start)
	if a.metrics != nil {
		a.metrics.RecordAnalysisCompleted(len(prepared.Occurrences), elapsed.Seconds())
	}
	logger.Info().
		Dur("elapsed", elapsed).
		Int("keywords_analyzed", len(report.KeywordTrends.IndividualTrends)).
		Msg("temporal analysis complete")
	return report, nil
}
