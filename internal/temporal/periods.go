package temporal

import (
	"fmt"
	"sort"

	"github.com/helioscope/slr-analytics-service/internal/config"
	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/stats"
)

// emergedRatioSentinel stands in for an infinite change ratio when a keyword
// appears in the later period only.
const emergedRatioSentinel = 999

const topChangeListSize = 10

// KeywordChange describes how one keyword's usage moved between two periods.
type KeywordChange struct {
	FromCount      int               `json:"from_count"`
	ToCount        int               `json:"to_count"`
	ChangeRatio    float64           `json:"change_ratio"`
	ChangeType     domain.ChangeType `json:"change_type"`
	AbsoluteChange int               `json:"absolute_change"`
}

// PeriodComparison holds the pairwise comparison of two time periods.
type PeriodComparison struct {
	ComparisonPeriods    string                   `json:"comparison_periods"`
	TotalKeywordsFirst   int                      `json:"total_keywords_first"`
	TotalKeywordsSecond  int                      `json:"total_keywords_second"`
	CommonKeywords       int                      `json:"common_keywords"`
	EmergingKeywords     []string                 `json:"emerging_keywords"`
	DisappearingKeywords []string                 `json:"disappearing_keywords"`
	MostIncreasing       []string                 `json:"most_increasing"`
	MostDecreasing       []string                 `json:"most_decreasing"`
	KeywordChanges       map[string]KeywordChange `json:"keyword_changes"`
}

// RankTest reports one non-parametric test outcome.
type RankTest struct {
	TestType    string  `json:"test_type"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	SampleSizes []int   `json:"sample_sizes,omitempty"`
	Groups      int     `json:"groups,omitempty"`
}

// StatisticalTests holds significance tests over the periods' common
// keywords. Error is set instead of raising when the data cannot support
// testing.
type StatisticalTests struct {
	Error    string              `json:"error,omitempty"`
	Pairwise map[string]RankTest `json:"pairwise,omitempty"`
	Overall  *RankTest           `json:"overall_comparison,omitempty"`
}

// PeriodMetrics summarizes keyword usage within a single period.
type PeriodMetrics struct {
	TotalKeywords      int            `json:"total_keywords"`
	TotalOccurrences   int            `json:"total_occurrences"`
	AverageFrequency   float64        `json:"average_frequency"`
	ShannonDiversity   float64        `json:"shannon_diversity"`
	ConcentrationIndex float64        `json:"concentration_index"`
	TopKeywords        map[string]int `json:"top_keywords"`
}

// MetricTrend is a linear trend over per-period metric values, in the
// configured period order.
type MetricTrend struct {
	Trend    string    `json:"trend"`
	Slope    float64   `json:"slope,omitempty"`
	RSquared float64   `json:"r_squared,omitempty"`
	PValue   float64   `json:"p_value,omitempty"`
	Values   []float64 `json:"values,omitempty"`
}

// OverallTrends tracks how diversity, concentration and volume evolve across
// the configured periods.
type OverallTrends struct {
	PeriodMetrics map[string]PeriodMetrics `json:"period_metrics"`
	Diversity     MetricTrend              `json:"diversity_trend"`
	Concentration MetricTrend              `json:"concentration_trend"`
	Volume        MetricTrend              `json:"volume_trend"`
}

// ComparativeAnalysis is the full output of the period comparator.
type ComparativeAnalysis struct {
	Error               string                      `json:"error,omitempty"`
	PeriodData          map[string]map[string]int   `json:"period_data,omitempty"`
	PairwiseComparisons map[string]PeriodComparison `json:"pairwise_comparisons,omitempty"`
	StatisticalTests    StatisticalTests            `json:"statistical_tests,omitempty"`
	OverallTrends       OverallTrends               `json:"overall_trends,omitempty"`
}

// CompareTimePeriods compares keyword usage across the configured time
// periods. Fewer than two periods yields an error result rather than a
// failure; so does an insufficient common-keyword set, but only for the
// statistical tests.
func (a *Analyzer) CompareTimePeriods(prepared *PreparedData) ComparativeAnalysis {
	periods := a.cfg.TimePeriods
	if len(periods) < 2 {
		return ComparativeAnalysis{Error: "at least 2 time periods are required for comparison"}
	}

	periodData := make(map[string]map[string]int, len(periods))
	for _, p := range periods {
		periodData[p.Name] = periodKeywordCounts(prepared, p)
	}

	comparisons := make(map[string]PeriodComparison)
	for i, p1 := range periods {
		for _, p2 := range periods[i+1:] {
			key := fmt.Sprintf("%s_vs_%s", p1.Name, p2.Name)
			comparisons[key] = a.compareKeywordSets(prepared, periodData[p1.Name], periodData[p2.Name], p1.Name, p2.Name)
		}
	}

	return ComparativeAnalysis{
		PeriodData:          periodData,
		PairwiseComparisons: comparisons,
		StatisticalTests:    a.periodStatisticalTests(periods, periodData),
		OverallTrends:       computeOverallTrends(periods, periodData),
	}
}

// periodKeywordCounts counts occurrences per keyword whose year falls inside
// the period, boundaries inclusive. Keywords absent from the period are not
// present in the map.
func periodKeywordCounts(prepared *PreparedData, p config.TimePeriod) map[string]int {
	counts := make(map[string]int)
	for keyword, occs := range prepared.Occurrences {
		for _, occ := range occs {
			if occ.Year >= p.StartYear && occ.Year <= p.EndYear {
				counts[keyword]++
			}
		}
	}
	return counts
}

func (a *Analyzer) compareKeywordSets(prepared *PreparedData, first, second map[string]int, name1, name2 string) PeriodComparison {
	all := make(map[string]struct{}, len(first)+len(second))
	for k := range first {
		all[k] = struct{}{}
	}
	common := 0
	for k := range second {
		if _, ok := first[k]; ok {
			common++
		}
		all[k] = struct{}{}
	}

	changes := make(map[string]KeywordChange, len(all))
	var emerging, disappearing, increasing, decreasing []string
	for keyword := range all {
		c1, c2 := first[keyword], second[keyword]
		change := classifyChange(c1, c2, a.cfg.EmergenceRatio, a.cfg.DeclineRatio)
		changes[keyword] = change

		switch change.ChangeType {
		case domain.ChangeEmerged:
			emerging = append(emerging, keyword)
		case domain.ChangeDisappeared:
			disappearing = append(disappearing, keyword)
		case domain.ChangeIncreased:
			increasing = append(increasing, keyword)
		case domain.ChangeDecreased:
			decreasing = append(decreasing, keyword)
		}
	}

	byRank := func(list []string) {
		sort.Slice(list, func(i, j int) bool {
			return prepared.rank(list[i]) < prepared.rank(list[j])
		})
	}
	byRank(emerging)
	byRank(disappearing)
	sort.Slice(increasing, func(i, j int) bool {
		ri, rj := changes[increasing[i]].ChangeRatio, changes[increasing[j]].ChangeRatio
		if ri != rj {
			return ri > rj
		}
		return prepared.rank(increasing[i]) < prepared.rank(increasing[j])
	})
	sort.Slice(decreasing, func(i, j int) bool {
		ri, rj := changes[decreasing[i]].ChangeRatio, changes[decreasing[j]].ChangeRatio
		if ri != rj {
			return ri < rj
		}
		return prepared.rank(decreasing[i]) < prepared.rank(decreasing[j])
	})

	return PeriodComparison{
		ComparisonPeriods:    fmt.Sprintf("%s vs %s", name1, name2),
		TotalKeywordsFirst:   len(first),
		TotalKeywordsSecond:  len(second),
		CommonKeywords:       common,
		EmergingKeywords:     truncateStrings(emerging, topChangeListSize),
		DisappearingKeywords: truncateStrings(disappearing, topChangeListSize),
		MostIncreasing:       truncateStrings(increasing, topChangeListSize),
		MostDecreasing:       truncateStrings(decreasing, topChangeListSize),
		KeywordChanges:       changes,
	}
}

func classifyChange(from, to int, emergenceRatio, declineRatio float64) KeywordChange {
	change := KeywordChange{
		FromCount:      from,
		ToCount:        to,
		AbsoluteChange: to - from,
	}
	switch {
	case from > 0 && to > 0:
		change.ChangeRatio = float64(to) / float64(from)
		switch {
		case change.ChangeRatio > emergenceRatio:
			change.ChangeType = domain.ChangeIncreased
		case change.ChangeRatio < declineRatio:
			change.ChangeType = domain.ChangeDecreased
		default:
			change.ChangeType = domain.ChangeStable
		}
	case from > 0:
		change.ChangeRatio = 0
		change.ChangeType = domain.ChangeDisappeared
	case to > 0:
		change.ChangeRatio = emergedRatioSentinel
		change.ChangeType = domain.ChangeEmerged
	default:
		change.ChangeRatio = 1
		change.ChangeType = domain.ChangeStable
	}
	return change
}

// periodStatisticalTests runs Mann-Whitney U pairwise and, with more than
// two periods, Kruskal-Wallis, over frequency vectors of the keywords common
// to every period. Vectors use sorted keyword order so the tests are
// reproducible.
func (a *Analyzer) periodStatisticalTests(periods []config.TimePeriod, periodData map[string]map[string]int) StatisticalTests {
	common := commonKeywords(periods, periodData)
	if len(common) < a.cfg.MinCommonKeywords {
		return StatisticalTests{Error: "insufficient common keywords for statistical testing"}
	}

	vectors := make(map[string][]float64, len(periods))
	for _, p := range periods {
		vector := make([]float64, len(common))
		for i, kw := range common {
			vector[i] = float64(periodData[p.Name][kw])
		}
		vectors[p.Name] = vector
	}

	pairwise := make(map[string]RankTest)
	for i, p1 := range periods {
		for _, p2 := range periods[i+1:] {
			key := fmt.Sprintf("%s_vs_%s", p1.Name, p2.Name)
			result := stats.MannWhitneyU(vectors[p1.Name], vectors[p2.Name])
			pairwise[key] = RankTest{
				TestType:    "Mann-Whitney U",
				Statistic:   result.Statistic,
				PValue:      result.PValue,
				Significant: result.PValue < a.cfg.SignificanceLevel,
				SampleSizes: []int{len(vectors[p1.Name]), len(vectors[p2.Name])},
			}
		}
	}

	tests := StatisticalTests{Pairwise: pairwise}
	if len(periods) > 2 {
		groups := make([][]float64, 0, len(periods))
		for _, p := range periods {
			groups = append(groups, vectors[p.Name])
		}
		result := stats.KruskalWallis(groups)
		tests.Overall = &RankTest{
			TestType:    "Kruskal-Wallis",
			Statistic:   result.Statistic,
			PValue:      result.PValue,
			Significant: result.PValue < a.cfg.SignificanceLevel,
			Groups:      len(periods),
		}
	}
	return tests
}

// commonKeywords returns the keywords present in every period, sorted.
func commonKeywords(periods []config.TimePeriod, periodData map[string]map[string]int) []string {
	var common []string
	for kw := range periodData[periods[0].Name] {
		inAll := true
		for _, p := range periods[1:] {
			if _, ok := periodData[p.Name][kw]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, kw)
		}
	}
	sort.Strings(common)
	return common
}

func computeOverallTrends(periods []config.TimePeriod, periodData map[string]map[string]int) OverallTrends {
	metrics := make(map[string]PeriodMetrics, len(periods))
	var diversity, concentration, volume []float64
	for _, p := range periods {
		counts := periodData[p.Name]
		if len(counts) == 0 {
			continue
		}
		m := computePeriodMetrics(counts)
		metrics[p.Name] = m
		diversity = append(diversity, m.ShannonDiversity)
		concentration = append(concentration, m.ConcentrationIndex)
		volume = append(volume, float64(m.TotalOccurrences))
	}

	return OverallTrends{
		PeriodMetrics: metrics,
		Diversity:     metricTrend(diversity),
		Concentration: metricTrend(concentration),
		Volume:        metricTrend(volume),
	}
}

func computePeriodMetrics(counts map[string]int) PeriodMetrics {
	values := make([]float64, 0, len(counts))
	total := 0
	for _, c := range counts {
		values = append(values, float64(c))
		total += c
	}

	return PeriodMetrics{
		TotalKeywords:      len(counts),
		TotalOccurrences:   total,
		AverageFrequency:   float64(total) / float64(len(counts)),
		ShannonDiversity:   stats.ShannonDiversity(values),
		ConcentrationIndex: stats.GiniConcentration(values),
		TopKeywords:        topKeywordCounts(counts, topChangeListSize),
	}
}

// topKeywordCounts keeps the period's most frequent keywords, ties broken
// alphabetically.
func topKeywordCounts(counts map[string]int, limit int) map[string]int {
	keys := make([]string, 0, len(counts))
	for kw := range counts {
		keys = append(keys, kw)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	top := make(map[string]int, len(keys))
	for _, kw := range keys {
		top[kw] = counts[kw]
	}
	return top
}

func metricTrend(values []float64) MetricTrend {
	if len(values) < 2 {
		return MetricTrend{Trend: "insufficient_data"}
	}
	fit := stats.LinearFit(monthIndices(len(values)), values)
	trend := string(domain.TrendDecreasing)
	if fit.Slope > 0 {
		trend = string(domain.TrendIncreasing)
	}
	return MetricTrend{
		Trend:    trend,
		Slope:    fit.Slope,
		RSquared: fit.RSquared,
		PValue:   fit.PValue,
		Values:   values,
	}
}

func truncateStrings(list []string, limit int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
