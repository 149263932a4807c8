package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TrendFit is the result of an ordinary least squares fit of y against x.
type TrendFit struct {
	// Slope is the fitted slope.
	Slope float64
	// Intercept is the fitted intercept.
	Intercept float64
	// R is the Pearson correlation coefficient.
	R float64
	// RSquared is the coefficient of determination.
	RSquared float64
	// PValue is the two-sided p-value for the null hypothesis of zero slope.
	PValue float64
}

// LinearFit fits y = intercept + slope*x by ordinary least squares and
// attaches the Pearson correlation and its two-sided significance.
// Degenerate inputs (fewer than two points, constant x, or constant y)
// yield a zero slope with p-value 1.
func LinearFit(x, y []float64) TrendFit {
	n := len(x)
	if n != len(y) || n < 2 {
		return TrendFit{PValue: 1}
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return TrendFit{PValue: 1}
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		r = 0
	}

	return TrendFit{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquared:  r * r,
		PValue:    correlationPValue(r, n),
	}
}

// correlationPValue returns the two-sided p-value for a Pearson correlation
// r with n observations, using the t distribution with n-2 degrees of
// freedom.
func correlationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	df := float64(n - 2)
	denom := 1 - r*r
	if denom <= 0 {
		// Perfect correlation.
		return 0
	}
	t := r * math.Sqrt(df/denom)

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	if p > 1 {
		p = 1
	}
	return p
}

// Autocorrelation returns the Pearson correlation between a series and
// itself shifted by lag. It returns 0 when the overlap is shorter than two
// points or either window is constant.
func Autocorrelation(series []float64, lag int) float64 {
	n := len(series)
	if lag <= 0 || n-lag < 2 {
		return 0
	}

	head := series[:n-lag]
	tail := series[lag:]
	if StdDev(head) == 0 || StdDev(tail) == 0 {
		return 0
	}

	r := stat.Correlation(head, tail, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
