package temporal

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/helioscope/slr-analytics-service/internal/dates"
	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/stats"
)

// VolumeBreakdown tallies publication counts per year and per calendar
// month, with year-over-year growth rates.
type VolumeBreakdown struct {
	YearlyCounts      map[int]int        `json:"yearly_counts"`
	MonthlyCounts     map[string]int     `json:"monthly_counts"`
	YearlyGrowthRates map[int]float64    `json:"yearly_growth_rates"`
	AverageGrowth     float64            `json:"average_yearly_growth"`
	TotalYears        int                `json:"total_years"`
	PeakYear          int                `json:"peak_year"`
	PeakCount         int                `json:"peak_count"`
}

// SeasonalBreakdown measures how publication volume spreads across the
// months of the year.
type SeasonalBreakdown struct {
	MonthlyDistribution map[int]int     `json:"monthly_distribution"`
	SeasonalIndices     map[int]float64 `json:"seasonal_indices"`
	PeakMonth           int             `json:"peak_month"`
	LowMonth            int             `json:"low_month"`
	SeasonalVariation   float64         `json:"seasonal_variation"`
}

// GrowthBreakdown assesses year-over-year growth and its acceleration.
type GrowthBreakdown struct {
	GrowthRates      map[int]float64 `json:"growth_rates"`
	Acceleration     map[int]float64 `json:"acceleration"`
	AverageGrowth    float64         `json:"average_growth_rate"`
	GrowthVolatility float64         `json:"growth_volatility"`
	CAGR             float64         `json:"compound_annual_growth_rate"`
}

// DateRange is the span of resolved publication dates in the corpus.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// VolumeTrends is the publication-volume side of the temporal report.
type VolumeTrends struct {
	Error             string            `json:"error,omitempty"`
	Volume            VolumeBreakdown   `json:"volume_trends"`
	SeasonalPatterns  SeasonalBreakdown `json:"seasonal_patterns"`
	Growth            GrowthBreakdown   `json:"growth_analysis"`
	TotalPublications int               `json:"total_publications"`
	DateRange         DateRange         `json:"date_range"`
}

// AnalyzePublicationTrends examines corpus-wide publication volume over
// time, independent of keywords. Publications without a resolvable date are
// skipped; a corpus with none yields an error result.
func (a *Analyzer) AnalyzePublicationTrends(pubs []*domain.Publication) VolumeTrends {
	var resolved []time.Time
	for _, pub := range pubs {
		if t, ok := pub.ResolvedTime(); ok {
			resolved = append(resolved, t)
			continue
		}
		if res := dates.Resolve(pub); res.Resolved {
			resolved = append(resolved, res.Date)
		}
	}
	if len(resolved) == 0 {
		return VolumeTrends{Error: "no valid publication dates found"}
	}

	minDate, maxDate := resolved[0], resolved[0]
	for _, t := range resolved[1:] {
		if t.Before(minDate) {
			minDate = t
		}
		if t.After(maxDate) {
			maxDate = t
		}
	}

	return VolumeTrends{
		Volume:            analyzeVolume(resolved),
		SeasonalPatterns:  analyzeSeasonal(resolved),
		Growth:            analyzeGrowth(resolved),
		TotalPublications: len(pubs),
		DateRange: DateRange{
			Start: minDate.Format("2006-01-02"),
			End:   maxDate.Format("2006-01-02"),
		},
	}
}

func yearlyCounts(resolved []time.Time) (map[int]int, []int) {
	counts := make(map[int]int)
	for _, t := range resolved {
		counts[t.Year()]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	return counts, years
}

// yearlyGrowth returns year-over-year relative change in chronological year
// order. The first year's rate is 0, matching a percentage change with no
// predecessor.
func yearlyGrowth(counts map[int]int, years []int) map[int]float64 {
	growth := make(map[int]float64, len(years))
	for i, y := range years {
		if i == 0 {
			growth[y] = 0
			continue
		}
		prev := counts[years[i-1]]
		if prev == 0 {
			growth[y] = 0
			continue
		}
		growth[y] = float64(counts[y]-prev) / float64(prev)
	}
	return growth
}

func analyzeVolume(resolved []time.Time) VolumeBreakdown {
	counts, years := yearlyCounts(resolved)

	monthly := make(map[string]int)
	for _, t := range resolved {
		monthly[fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))]++
	}

	growth := yearlyGrowth(counts, years)
	growthValues := make([]float64, 0, len(years))
	for _, y := range years {
		growthValues = append(growthValues, growth[y])
	}

	peakYear, peakCount := years[0], counts[years[0]]
	for _, y := range years[1:] {
		if counts[y] > peakCount {
			peakYear, peakCount = y, counts[y]
		}
	}

	return VolumeBreakdown{
		YearlyCounts:      counts,
		MonthlyCounts:     monthly,
		YearlyGrowthRates: growth,
		AverageGrowth:     stats.Mean(growthValues),
		TotalYears:        len(years),
		PeakYear:          peakYear,
		PeakCount:         peakCount,
	}
}

func analyzeSeasonal(resolved []time.Time) SeasonalBreakdown {
	distribution := make(map[int]int)
	for _, t := range resolved {
		distribution[int(t.Month())]++
	}

	months := make([]int, 0, len(distribution))
	for m := range distribution {
		months = append(months, m)
	}
	sort.Ints(months)

	var total float64
	for _, m := range months {
		total += float64(distribution[m])
	}
	mean := total / float64(len(months))

	indices := make(map[int]float64, len(months))
	indexValues := make([]float64, 0, len(months))
	peakMonth, lowMonth := months[0], months[0]
	for _, m := range months {
		indices[m] = float64(distribution[m]) / mean
		indexValues = append(indexValues, indices[m])
		if distribution[m] > distribution[peakMonth] {
			peakMonth = m
		}
		if distribution[m] < distribution[lowMonth] {
			lowMonth = m
		}
	}

	return SeasonalBreakdown{
		MonthlyDistribution: distribution,
		SeasonalIndices:     indices,
		PeakMonth:           peakMonth,
		LowMonth:            lowMonth,
		SeasonalVariation:   stats.SampleStdDev(indexValues),
	}
}

func analyzeGrowth(resolved []time.Time) GrowthBreakdown {
	counts, years := yearlyCounts(resolved)
	growth := yearlyGrowth(counts, years)

	growthValues := make([]float64, 0, len(years))
	acceleration := make(map[int]float64, len(years))
	for i, y := range years {
		growthValues = append(growthValues, growth[y])
		if i == 0 {
			acceleration[y] = 0
			continue
		}
		acceleration[y] = growth[y] - growth[years[i-1]]
	}

	var cagr float64
	if len(years) > 1 && counts[years[0]] > 0 {
		first := float64(counts[years[0]])
		last := float64(counts[years[len(years)-1]])
		cagr = math.Pow(last/first, 1/float64(len(years)-1)) - 1
	}

	return GrowthBreakdown{
		GrowthRates:      growth,
		Acceleration:     acceleration,
		AverageGrowth:    stats.Mean(growthValues),
		GrowthVolatility: stats.SampleStdDev(growthValues),
		CAGR:             cagr,
	}
}
