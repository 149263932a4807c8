package temporal

import (
	"sort"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/stats"
)

// TrendResult holds the fitted trend for one keyword's monthly series.
type TrendResult struct {
	Keyword          string                `json:"keyword"`
	TotalOccurrences int                   `json:"total_occurrences"`
	TimeSpanMonths   int                   `json:"time_span_months"`
	TrendSlope       float64               `json:"trend_slope"`
	TrendDirection   domain.TrendDirection `json:"trend_direction"`
	TrendStrength    float64               `json:"trend_strength"`
	RSquared         float64               `json:"r_squared"`
	PValue           float64               `json:"p_value"`
	MonthlyAverage   float64               `json:"monthly_average"`
	MonthlyStdDev    float64               `json:"monthly_std"`
	FirstOccurrence  string                `json:"first_occurrence"`
	LastOccurrence   string                `json:"last_occurrence"`
	PeakMonth        string                `json:"peak_month"`
	PeakCount        float64               `json:"peak_count"`
	MonthlyData      map[string]float64    `json:"monthly_data"`
}

// RankedKeyword is one entry in the growing or declining keyword lists.
type RankedKeyword struct {
	Keyword          string  `json:"keyword"`
	Slope            float64 `json:"slope"`
	RSquared         float64 `json:"r_squared"`
	TotalOccurrences int     `json:"total_occurrences"`
}

// StableKeyword is one entry in the stable keyword list, ranked by
// consistency (inverse monthly standard deviation).
type StableKeyword struct {
	Keyword          string  `json:"keyword"`
	Slope            float64 `json:"slope"`
	Consistency      float64 `json:"consistency"`
	TotalOccurrences int     `json:"total_occurrences"`
}

// TrendSummary aggregates trend statistics across all analyzed keywords.
type TrendSummary struct {
	TotalKeywords   int     `json:"total_keywords"`
	AverageSlope    float64 `json:"average_slope"`
	SlopeStdDev     float64 `json:"slope_std"`
	AverageRSquared float64 `json:"average_r_squared"`
	PositiveTrends  int     `json:"positive_trends"`
	NegativeTrends  int     `json:"negative_trends"`
	NeutralTrends   int     `json:"neutral_trends"`
}

// KeywordTrends is the full output of the trend estimator.
type KeywordTrends struct {
	IndividualTrends   map[string]TrendResult `json:"individual_trends"`
	SummaryStatistics  TrendSummary           `json:"summary_statistics"`
	TopGrowingKeywords []RankedKeyword        `json:"top_growing_keywords"`
	DecliningKeywords  []RankedKeyword        `json:"declining_keywords"`
	StableKeywords     []StableKeyword        `json:"stable_keywords"`
}

const rankedListSize = 10

// AnalyzeKeywordTrends fits a per-keyword monthly trend for every keyword
// meeting the minimum occurrence threshold and aggregates growing, declining
// and stable keyword lists.
func (a *Analyzer) AnalyzeKeywordTrends(prepared *PreparedData) KeywordTrends {
	results := make(map[string]TrendResult)
	for _, keyword := range prepared.Keywords() {
		occs := prepared.Occurrences[keyword]
		if len(occs) < a.cfg.MinOccurrences {
			continue
		}
		results[keyword] = a.analyzeKeywordTrend(keyword, occs)
	}

	return KeywordTrends{
		IndividualTrends:   results,
		SummaryStatistics:  a.summarizeTrends(results),
		TopGrowingKeywords: a.growingKeywords(results, prepared),
		DecliningKeywords:  a.decliningKeywords(results, prepared),
		StableKeywords:     a.stableKeywords(results, prepared),
	}
}

func (a *Analyzer) analyzeKeywordTrend(keyword string, occs []Occurrence) TrendResult {
	series := NewMonthlySeries(occs)

	x := monthIndices(series.Len())
	fit := stats.LinearFit(x, series.Counts)

	direction := domain.TrendStable
	switch {
	case fit.Slope > 0:
		direction = domain.TrendIncreasing
	case fit.Slope < 0:
		direction = domain.TrendDecreasing
	}

	first, last := occs[0].Date, occs[0].Date
	for _, o := range occs[1:] {
		if o.Date.Before(first) {
			first = o.Date
		}
		if o.Date.After(last) {
			last = o.Date
		}
	}

	peak := series.PeakIndex()

	return TrendResult{
		Keyword:          keyword,
		TotalOccurrences: len(occs),
		TimeSpanMonths:   series.Len(),
		TrendSlope:       fit.Slope,
		TrendDirection:   direction,
		TrendStrength:    abs(fit.R),
		RSquared:         fit.RSquared,
		PValue:           fit.PValue,
		MonthlyAverage:   stats.Mean(series.Counts),
		MonthlyStdDev:    stats.StdDev(series.Counts),
		FirstOccurrence:  first.Format("2006-01-02"),
		LastOccurrence:   last.Format("2006-01-02"),
		PeakMonth:        series.Label(peak),
		PeakCount:        series.Counts[peak],
		MonthlyData:      series.CountsByLabel(),
	}
}

func (a *Analyzer) summarizeTrends(results map[string]TrendResult) TrendSummary {
	if len(results) == 0 {
		return TrendSummary{}
	}

	slopes := make([]float64, 0, len(results))
	rSquared := make([]float64, 0, len(results))
	summary := TrendSummary{TotalKeywords: len(results)}

	for _, r := range results {
		slopes = append(slopes, r.TrendSlope)
		rSquared = append(rSquared, r.RSquared)
		switch {
		case r.TrendSlope > 0:
			summary.PositiveTrends++
		case r.TrendSlope < 0:
			summary.NegativeTrends++
		}
		if abs(r.TrendSlope) < a.cfg.StableSlopeEpsilon {
			summary.NeutralTrends++
		}
	}

	summary.AverageSlope = stats.Mean(slopes)
	summary.SlopeStdDev = stats.StdDev(slopes)
	summary.AverageRSquared = stats.Mean(rSquared)
	return summary
}

// growingKeywords returns the top keywords with a significant positive
// slope, steepest first.
func (a *Analyzer) growingKeywords(results map[string]TrendResult, prepared *PreparedData) []RankedKeyword {
	var growing []RankedKeyword
	for keyword, r := range results {
		if r.TrendSlope > 0 && r.PValue < a.cfg.SignificanceLevel {
			growing = append(growing, RankedKeyword{
				Keyword:          keyword,
				Slope:            r.TrendSlope,
				RSquared:         r.RSquared,
				TotalOccurrences: r.TotalOccurrences,
			})
		}
	}

	sort.SliceStable(growing, func(i, j int) bool {
		if growing[i].Slope != growing[j].Slope {
			return growing[i].Slope > growing[j].Slope
		}
		return prepared.rank(growing[i].Keyword) < prepared.rank(growing[j].Keyword)
	})
	return truncateRanked(growing, rankedListSize)
}

// decliningKeywords returns the top keywords with a significant negative
// slope, steepest decline first.
func (a *Analyzer) decliningKeywords(results map[string]TrendResult, prepared *PreparedData) []RankedKeyword {
	var declining []RankedKeyword
	for keyword, r := range results {
		if r.TrendSlope < 0 && r.PValue < a.cfg.SignificanceLevel {
			declining = append(declining, RankedKeyword{
				Keyword:          keyword,
				Slope:            r.TrendSlope,
				RSquared:         r.RSquared,
				TotalOccurrences: r.TotalOccurrences,
			})
		}
	}

	sort.SliceStable(declining, func(i, j int) bool {
		if declining[i].Slope != declining[j].Slope {
			return declining[i].Slope < declining[j].Slope
		}
		return prepared.rank(declining[i].Keyword) < prepared.rank(declining[j].Keyword)
	})
	return truncateRanked(declining, rankedListSize)
}

// stableKeywords returns keywords with near-zero slope and enough support,
// most consistent first.
func (a *Analyzer) stableKeywords(results map[string]TrendResult, prepared *PreparedData) []StableKeyword {
	var stable []StableKeyword
	for keyword, r := range results {
		if abs(r.TrendSlope) < a.cfg.StableSlopeEpsilon && r.TotalOccurrences >= a.cfg.StableMinOccurrences {
			stable = append(stable, StableKeyword{
				Keyword:          keyword,
				Slope:            r.TrendSlope,
				Consistency:      1 / (r.MonthlyStdDev + 1),
				TotalOccurrences: r.TotalOccurrences,
			})
		}
	}

	sort.SliceStable(stable, func(i, j int) bool {
		if stable[i].Consistency != stable[j].Consistency {
			return stable[i].Consistency > stable[j].Consistency
		}
		return prepared.rank(stable[i].Keyword) < prepared.rank(stable[j].Keyword)
	})
	if len(stable) > rankedListSize {
		stable = stable[:rankedListSize]
	}
	return stable
}

func truncateRanked(list []RankedKeyword, n int) []RankedKeyword {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func monthIndices(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
