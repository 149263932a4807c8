// Package stats provides the statistical primitives used by the temporal
// analyzer: descriptive statistics, least-squares trend fitting,
// autocorrelation, and nonparametric rank tests.
package stats

import (
	"math"
	"sort"

	mfstats "github.com/montanaflynn/stats"
)

// Mean returns the arithmetic mean of data, or 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m, _ := mfstats.Mean(data)
	return m
}

// StdDev returns the population standard deviation of data, or 0 for
// fewer than one value.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sd, _ := mfstats.StandardDeviationPopulation(data)
	return sd
}

// SampleStdDev returns the sample standard deviation of data, or 0 for
// fewer than two values.
func SampleStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sd, _ := mfstats.StandardDeviationSample(data)
	return sd
}

// CoefficientOfVariation returns stddev/mean, the volatility measure used
// for anomaly flagging. Returns 0 when the mean is 0.
func CoefficientOfVariation(data []float64) float64 {
	m := Mean(data)
	if m == 0 {
		return 0
	}
	return StdDev(data) / m
}

// Sum returns the sum of data.
func Sum(data []float64) float64 {
	s, _ := mfstats.Sum(data)
	if len(data) == 0 {
		return 0
	}
	return s
}

// Max returns the maximum of data, or 0 for empty input.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m, _ := mfstats.Max(data)
	return m
}

// ShannonDiversity returns the Shannon entropy of a frequency distribution.
// Zero-count entries contribute nothing. Returns 0 when the total is 0.
func ShannonDiversity(counts []float64) float64 {
	total := Sum(counts)
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log(p)
	}
	return h
}

// GiniConcentration returns a Gini-like concentration index for a frequency
// distribution: 0 for a perfectly even spread, approaching 1 when a single
// entry dominates. Returns 0 for fewer than two entries or a zero total.
func GiniConcentration(counts []float64) float64 {
	n := len(counts)
	if n < 2 {
		return 0
	}
	total := Sum(counts)
	if total == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, counts)
	sort.Float64s(sorted)

	var weighted float64
	for i, c := range sorted {
		weighted += float64(i+1) * c
	}
	return (2*weighted - float64(n+1)*total) / (float64(n) * total)
}
