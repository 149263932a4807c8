package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// RankTestResult carries the statistic and two-sided p-value of a
// nonparametric rank test.
type RankTestResult struct {
	Statistic float64
	PValue    float64
}

// MannWhitneyU performs a two-sided Mann-Whitney U test using the normal
// approximation with tie and continuity corrections. The reported statistic
// is the smaller of the two U values. Empty samples or a tie-degenerate
// pooled sample yield p-value 1.
func MannWhitneyU(a, b []float64) RankTestResult {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return RankTestResult{PValue: 1}
	}

	ranks, tieTerm := midRanks(append(append([]float64{}, a...), b...))

	var r1 float64
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}

	fn1, fn2 := float64(n1), float64(n2)
	u1 := r1 - fn1*(fn1+1)/2
	u2 := fn1*fn2 - u1
	u := math.Min(u1, u2)

	n := fn1 + fn2
	mean := fn1 * fn2 / 2
	variance := fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		// All pooled values identical.
		return RankTestResult{Statistic: u, PValue: 1}
	}

	// Continuity correction pulls U half a step toward the mean.
	z := (u - mean + 0.5) / math.Sqrt(variance)

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * normal.CDF(z)
	if p > 1 {
		p = 1
	}

	return RankTestResult{Statistic: u, PValue: p}
}

// KruskalWallis performs a Kruskal-Wallis H test across the given groups
// with tie correction. The p-value comes from the chi-squared distribution
// with len(groups)-1 degrees of freedom. Fewer than two non-empty groups or
// a tie-degenerate pooled sample yield p-value 1.
func KruskalWallis(groups [][]float64) RankTestResult {
	nonEmpty := 0
	total := 0
	for _, g := range groups {
		if len(g) > 0 {
			nonEmpty++
		}
		total += len(g)
	}
	if nonEmpty < 2 || total < 2 {
		return RankTestResult{PValue: 1}
	}

	pooled := make([]float64, 0, total)
	for _, g := range groups {
		pooled = append(pooled, g...)
	}
	ranks, tieTerm := midRanks(pooled)

	fN := float64(total)
	var h float64
	offset := 0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		var rankSum float64
		for i := range g {
			rankSum += ranks[offset+i]
		}
		h += rankSum * rankSum / float64(len(g))
		offset += len(g)
	}
	h = 12/(fN*(fN+1))*h - 3*(fN+1)

	correction := 1 - tieTerm/(fN*fN*fN-fN)
	if correction <= 0 {
		// All pooled values identical.
		return RankTestResult{PValue: 1}
	}
	h /= correction

	chi := distuv.ChiSquared{K: float64(nonEmpty - 1)}
	p := 1 - chi.CDF(h)
	if p < 0 {
		p = 0
	}

	return RankTestResult{Statistic: h, PValue: p}
}

// midRanks assigns 1-based ranks to values, averaging ranks across ties.
// It also returns the tie term sum(t^3 - t) used by variance corrections.
func midRanks(values []float64) (ranks []float64, tieTerm float64) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[idx[j]] == values[idx[i]] {
			j++
		}
		// Tied block spans sorted positions [i, j).
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}
	return ranks, tieTerm
}
