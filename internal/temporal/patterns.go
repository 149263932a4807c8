package temporal

import (
	"sort"

	"github.com/helioscope/slr-analytics-service/internal/stats"
)

// Seasonality is the result of the lag-based seasonality check.
type Seasonality struct {
	Detected bool    `json:"detected"`
	Strength float64 `json:"strength,omitempty"`
	Period   int     `json:"period,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// Cycles is the result of peak and trough based cycle detection.
type Cycles struct {
	Cyclical           bool    `json:"cyclical"`
	PeaksDetected      int     `json:"peaks_detected"`
	TroughsDetected    int     `json:"troughs_detected"`
	AverageCycleLength float64 `json:"average_cycle_length,omitempty"`
	Reason             string  `json:"reason,omitempty"`
}

// TrendChange marks a month where the local trend slope shifts sharply.
type TrendChange struct {
	Index       int     `json:"index"`
	Month       string  `json:"month"`
	SlopeChange float64 `json:"slope_change"`
}

// KeywordPattern holds all detected patterns for one keyword.
type KeywordPattern struct {
	Keyword          string        `json:"keyword"`
	Seasonality      Seasonality   `json:"seasonality"`
	CyclicalPatterns Cycles        `json:"cyclical_patterns"`
	TrendChanges     []TrendChange `json:"trend_changes"`
	Volatility       float64       `json:"volatility"`
}

// PatternSummary aggregates pattern detection across all keywords.
type PatternSummary struct {
	TotalKeywordsAnalyzed    int     `json:"total_keywords_analyzed"`
	SeasonalKeywords         int     `json:"seasonal_keywords"`
	CyclicalKeywords         int     `json:"cyclical_keywords"`
	KeywordsWithTrendChanges int     `json:"keywords_with_trend_changes"`
	AverageVolatility        float64 `json:"average_volatility"`
}

// Anomaly flags a keyword whose series behaves unusually.
type Anomaly struct {
	Keyword string  `json:"keyword"`
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
}

// ChangePoint is a pooled cross-keyword trend change.
type ChangePoint struct {
	Keyword     string  `json:"keyword"`
	Month       string  `json:"month"`
	SlopeChange float64 `json:"slope_change"`
}

// TemporalPatterns is the full output of the pattern detector.
type TemporalPatterns struct {
	KeywordPatterns map[string]KeywordPattern `json:"keyword_patterns"`
	PatternSummary  PatternSummary            `json:"pattern_summary"`
	Anomalies       []Anomaly                 `json:"anomalies"`
	ChangePoints    []ChangePoint             `json:"change_points"`
}

// DetectTemporalPatterns runs seasonality, cycle, trend-change and
// volatility checks for every keyword meeting the minimum occurrence
// threshold, then pools anomalies and change points across keywords.
func (a *Analyzer) DetectTemporalPatterns(prepared *PreparedData) TemporalPatterns {
	keywords := prepared.Keywords()
	patterns := make(map[string]KeywordPattern)
	for _, keyword := range keywords {
		occs := prepared.Occurrences[keyword]
		if len(occs) < a.cfg.MinOccurrences {
			continue
		}
		patterns[keyword] = a.detectKeywordPatterns(keyword, occs)
	}

	return TemporalPatterns{
		KeywordPatterns: patterns,
		PatternSummary:  summarizePatterns(patterns),
		Anomalies:       a.detectAnomalies(keywords, patterns),
		ChangePoints:    a.poolChangePoints(keywords, patterns, prepared),
	}
}

func (a *Analyzer) detectKeywordPatterns(keyword string, occs []Occurrence) KeywordPattern {
	series := NewMonthlySeries(occs)

	return KeywordPattern{
		Keyword:          keyword,
		Seasonality:      a.detectSeasonality(series),
		CyclicalPatterns: a.detectCycles(series),
		TrendChanges:     a.detectTrendChanges(series),
		Volatility:       stats.CoefficientOfVariation(series.Counts),
	}
}

// detectSeasonality checks the autocorrelation of the series at the
// configured seasonal lag.
func (a *Analyzer) detectSeasonality(series MonthlySeries) Seasonality {
	if series.Len() < a.cfg.SeasonalMinPoints {
		return Seasonality{Detected: false, Reason: "insufficient_data"}
	}

	strength := abs(stats.Autocorrelation(series.Counts, a.cfg.SeasonalLag))
	s := Seasonality{
		Detected: strength > a.cfg.SeasonalThreshold,
		Strength: strength,
	}
	if s.Detected {
		s.Period = a.cfg.SeasonalLag
	}
	return s
}

// detectCycles locates strict local maxima and minima on the raw series.
// A series is cyclical when it shows at least two of each.
func (a *Analyzer) detectCycles(series MonthlySeries) Cycles {
	if series.Len() < a.cfg.PatternMinPoints {
		return Cycles{Cyclical: false, Reason: "insufficient_data"}
	}

	peaks := localMaxima(series.Counts)
	troughs := localMinima(series.Counts)

	c := Cycles{
		Cyclical:        len(peaks) > 1 && len(troughs) > 1,
		PeaksDetected:   len(peaks),
		TroughsDetected: len(troughs),
	}
	if len(peaks) > 1 {
		var gaps float64
		for i := 1; i < len(peaks); i++ {
			gaps += float64(peaks[i] - peaks[i-1])
		}
		c.AverageCycleLength = gaps / float64(len(peaks)-1)
	}
	return c
}

// detectTrendChanges slides a window across the series, comparing the slope
// of the preceding window against the following one at each interior index.
// Indices whose slope delta exceeds the configured sigma multiple of all
// deltas are reported, largest magnitude first.
func (a *Analyzer) detectTrendChanges(series MonthlySeries) []TrendChange {
	n := series.Len()
	if n < a.cfg.PatternMinPoints {
		return nil
	}

	window := n / 3
	if window < 2 {
		window = 2
	}

	var candidates []TrendChange
	var deltas []float64
	x := monthIndices(window)
	for i := window; i < n-window; i++ {
		before := stats.LinearFit(x, series.Counts[i-window:i])
		after := stats.LinearFit(x, series.Counts[i:i+window])
		delta := after.Slope - before.Slope
		candidates = append(candidates, TrendChange{
			Index:       i,
			Month:       series.Label(i),
			SlopeChange: delta,
		})
		deltas = append(deltas, delta)
	}
	if len(candidates) == 0 {
		return nil
	}

	threshold := stats.StdDev(deltas) * a.cfg.ChangePointZScore
	significant := candidates[:0]
	for _, c := range candidates {
		if abs(c.SlopeChange) > threshold {
			significant = append(significant, c)
		}
	}

	sort.SliceStable(significant, func(i, j int) bool {
		return abs(significant[i].SlopeChange) > abs(significant[j].SlopeChange)
	})
	if len(significant) > a.cfg.TopKeywordsDetailed {
		significant = significant[:a.cfg.TopKeywordsDetailed]
	}
	return significant
}

func summarizePatterns(patterns map[string]KeywordPattern) PatternSummary {
	if len(patterns) == 0 {
		return PatternSummary{}
	}

	summary := PatternSummary{TotalKeywordsAnalyzed: len(patterns)}
	volatilities := make([]float64, 0, len(patterns))
	for _, p := range patterns {
		if p.Seasonality.Detected {
			summary.SeasonalKeywords++
		}
		if p.CyclicalPatterns.Cyclical {
			summary.CyclicalKeywords++
		}
		if len(p.TrendChanges) > 0 {
			summary.KeywordsWithTrendChanges++
		}
		volatilities = append(volatilities, p.Volatility)
	}
	summary.AverageVolatility = stats.Mean(volatilities)
	return summary
}

// detectAnomalies flags keywords whose volatility exceeds the configured
// threshold, in first-seen keyword order.
func (a *Analyzer) detectAnomalies(keywords []string, patterns map[string]KeywordPattern) []Anomaly {
	var anomalies []Anomaly
	for _, keyword := range keywords {
		p, ok := patterns[keyword]
		if !ok {
			continue
		}
		if p.Volatility > a.cfg.VolatilityThreshold {
			anomalies = append(anomalies, Anomaly{
				Keyword: keyword,
				Type:    "high_volatility",
				Value:   p.Volatility,
			})
		}
	}
	return anomalies
}

// poolChangePoints merges per-keyword trend changes and keeps the largest
// by slope delta magnitude.
func (a *Analyzer) poolChangePoints(keywords []string, patterns map[string]KeywordPattern, prepared *PreparedData) []ChangePoint {
	var pooled []ChangePoint
	for _, keyword := range keywords {
		p, ok := patterns[keyword]
		if !ok {
			continue
		}
		for _, change := range p.TrendChanges {
			pooled = append(pooled, ChangePoint{
				Keyword:     keyword,
				Month:       change.Month,
				SlopeChange: change.SlopeChange,
			})
		}
	}

	sort.SliceStable(pooled, func(i, j int) bool {
		if abs(pooled[i].SlopeChange) != abs(pooled[j].SlopeChange) {
			return abs(pooled[i].SlopeChange) > abs(pooled[j].SlopeChange)
		}
		return prepared.rank(pooled[i].Keyword) < prepared.rank(pooled[j].Keyword)
	})
	if len(pooled) > a.cfg.TopKeywordsPooled {
		pooled = pooled[:a.cfg.TopKeywordsPooled]
	}
	return pooled
}

// localMaxima returns indices that are strictly greater than both
// neighbors.
func localMaxima(series []float64) []int {
	var out []int
	for i := 1; i < len(series)-1; i++ {
		if series[i] > series[i-1] && series[i] > series[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// localMinima returns indices that are strictly less than both neighbors.
func localMinima(series []float64) []int {
	var out []int
	for i := 1; i < len(series)-1; i++ {
		if series[i] < series[i-1] && series[i] < series[i+1] {
			out = append(out, i)
		}
	}
	return out
}
