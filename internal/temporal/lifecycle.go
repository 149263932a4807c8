package temporal

import (
	"math"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/stats"
)

// PhaseBoundary marks where a lifecycle phase ends on the cumulative usage
// curve.
type PhaseBoundary struct {
	EndPeriod  string `json:"end_period"`
	UsageAtEnd int    `json:"usage_at_end"`
}

// LifecyclePhases are the cumulative-usage phase boundaries: emergence ends
// at 10% of lifetime usage, growth at 50%, maturity at 90%. The boundaries
// are non-decreasing in time by construction.
type LifecyclePhases struct {
	Emergence PhaseBoundary `json:"emergence"`
	Growth    PhaseBoundary `json:"growth"`
	Maturity  PhaseBoundary `json:"maturity"`
}

// LifecycleResult describes one keyword's usage lifecycle.
type LifecycleResult struct {
	Keyword        string                `json:"keyword"`
	LifespanMonths int                   `json:"lifespan_months"`
	TotalUsage     int                   `json:"total_usage"`
	PeakMonth      string                `json:"peak_month"`
	PeakPosition   float64               `json:"peak_position"`
	Phases         LifecyclePhases       `json:"phases"`
	CurrentStage   domain.LifecycleStage `json:"current_stage"`
	GrowthRate     float64               `json:"growth_rate"`
	MaturityIndex  float64               `json:"maturity_index"`
}

// LifecycleAnalysis is the full output of the lifecycle classifier.
type LifecycleAnalysis struct {
	IndividualLifecycles map[string]LifecycleResult `json:"individual_lifecycles"`
	LifecycleCategories  map[string][]string        `json:"lifecycle_categories"`
	EmergingKeywords     []string                   `json:"emerging_keywords"`
	MatureKeywords       []string                   `json:"mature_keywords"`
	DecliningKeywords    []string                   `json:"declining_keywords"`
}

// AnalyzeKeywordLifecycle computes lifecycle metrics for every keyword
// meeting the minimum occurrence threshold and buckets keywords into
// emerging, growing, mature and declining categories.
func (a *Analyzer) AnalyzeKeywordLifecycle(prepared *PreparedData) LifecycleAnalysis {
	keywords := prepared.Keywords()
	results := make(map[string]LifecycleResult)
	for _, keyword := range keywords {
		occs := prepared.Occurrences[keyword]
		if len(occs) < a.cfg.MinOccurrences {
			continue
		}
		results[keyword] = a.analyzeKeywordLifecycle(keyword, occs)
	}

	categories := a.categorizeLifecycles(keywords, results)

	return LifecycleAnalysis{
		IndividualLifecycles: results,
		LifecycleCategories:  categories,
		EmergingKeywords:     categories[string(domain.CategoryEmerging)],
		MatureKeywords:       categories[string(domain.CategoryMature)],
		DecliningKeywords:    categories[string(domain.CategoryDeclining)],
	}
}

func (a *Analyzer) analyzeKeywordLifecycle(keyword string, occs []Occurrence) LifecycleResult {
	series := NewMonthlySeries(occs)
	cumulative := cumulativeSum(series.Counts)

	peak := series.PeakIndex()
	lifespan := series.Len()

	return LifecycleResult{
		Keyword:        keyword,
		LifespanMonths: lifespan,
		TotalUsage:     len(occs),
		PeakMonth:      series.Label(peak),
		PeakPosition:   float64(peak) / float64(lifespan),
		Phases:         identifyPhases(series, cumulative),
		CurrentStage:   currentStage(float64(peak) / float64(lifespan)),
		GrowthRate:     growthRate(cumulative),
		MaturityIndex:  maturityIndex(series.Counts),
	}
}

// identifyPhases finds the first month where cumulative usage reaches 10%,
// 50% and 90% of the keyword's lifetime total.
func identifyPhases(series MonthlySeries, cumulative []float64) LifecyclePhases {
	total := cumulative[len(cumulative)-1]
	return LifecyclePhases{
		Emergence: phaseBoundary(series, cumulative, total*0.1),
		Growth:    phaseBoundary(series, cumulative, total*0.5),
		Maturity:  phaseBoundary(series, cumulative, total*0.9),
	}
}

func phaseBoundary(series MonthlySeries, cumulative []float64, target float64) PhaseBoundary {
	end := len(cumulative) - 1
	for i, c := range cumulative {
		if c >= target {
			end = i
			break
		}
	}
	return PhaseBoundary{
		EndPeriod:  series.Label(end),
		UsageAtEnd: int(cumulative[end]),
	}
}

// currentStage derives the stage label from peak position alone. This can
// disagree with the combined category buckets; both views are reported.
func currentStage(peakPosition float64) domain.LifecycleStage {
	switch {
	case peakPosition < 0.3:
		return domain.StageEarlyPeak
	case peakPosition < 0.7:
		return domain.StageMature
	default:
		return domain.StageLateStage
	}
}

// growthRate fits the log of the cumulative usage curve, approximating the
// exponential growth regime. Fewer than two points yield 0.
func growthRate(cumulative []float64) float64 {
	if len(cumulative) < 2 {
		return 0
	}
	logged := make([]float64, len(cumulative))
	for i, c := range cumulative {
		logged[i] = math.Log(c + 1)
	}
	return stats.LinearFit(monthIndices(len(cumulative)), logged).Slope
}

// maturityIndex compares recent usage to the historical peak, clamped to
// [0, 1]. Fewer than three points yield 0.
func maturityIndex(counts []float64) float64 {
	if len(counts) < 3 {
		return 0
	}
	peak := stats.Max(counts)
	if peak == 0 {
		return 0
	}
	recent := stats.Mean(counts[len(counts)-3:])
	return math.Min(1.0, recent/peak)
}

// categorizeLifecycles buckets each analyzed keyword. The rules are applied
// in priority order and fall through to mature.
func (a *Analyzer) categorizeLifecycles(keywords []string, results map[string]LifecycleResult) map[string][]string {
	categories := map[string][]string{
		string(domain.CategoryEmerging):  {},
		string(domain.CategoryGrowing):   {},
		string(domain.CategoryMature):    {},
		string(domain.CategoryDeclining): {},
	}

	for _, keyword := range keywords {
		r, ok := results[keyword]
		if !ok {
			continue
		}

		var category domain.LifecycleCategory
		switch {
		case r.CurrentStage == domain.StageEarlyPeak && r.GrowthRate > 0.1:
			category = domain.CategoryEmerging
		case r.GrowthRate > 0.05 && r.MaturityIndex < 0.8:
			category = domain.CategoryGrowing
		case r.MaturityIndex > 0.8 && abs(r.GrowthRate) < 0.05:
			category = domain.CategoryMature
		case r.GrowthRate < -0.05 || r.MaturityIndex < 0.3:
			category = domain.CategoryDeclining
		default:
			category = domain.CategoryMature
		}
		categories[string(category)] = append(categories[string(category)], keyword)
	}

	return categories
}

func cumulativeSum(counts []float64) []float64 {
	out := make([]float64, len(counts))
	var running float64
	for i, c := range counts {
		running += c
		out[i] = running
	}
	return out
}
