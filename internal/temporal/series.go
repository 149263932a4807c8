package temporal

import (
	"fmt"
	"time"
)

// MonthlySeries is a keyword's occurrence counts binned by calendar month,
// zero-filled for inactive months inside the observed range. Omitting empty
// months would bias the trend regression toward the active ones.
type MonthlySeries struct {
	// StartYear and StartMonth identify the first bin.
	StartYear  int
	StartMonth time.Month
	// Counts holds one entry per calendar month from the first to the last
	// observed occurrence, inclusive.
	Counts []float64
}

// NewMonthlySeries bins occurrences into a zero-filled monthly series
// spanning the occurrences' observed date range. An empty input yields an
// empty series.
func NewMonthlySeries(occs []Occurrence) MonthlySeries {
	if len(occs) == 0 {
		return MonthlySeries{}
	}

	minIdx := monthOrdinal(occs[0].Year, time.Month(occs[0].Month))
	maxIdx := minIdx
	for _, o := range occs[1:] {
		idx := monthOrdinal(o.Year, time.Month(o.Month))
		if idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	s := MonthlySeries{
		StartYear:  minIdx / 12,
		StartMonth: time.Month(minIdx%12 + 1),
		Counts:     make([]float64, maxIdx-minIdx+1),
	}
	for _, o := range occs {
		s.Counts[monthOrdinal(o.Year, time.Month(o.Month))-minIdx]++
	}
	return s
}

// Len returns the number of monthly bins.
func (s MonthlySeries) Len() int {
	return len(s.Counts)
}

// Label returns the "YYYY-MM" label of the i-th bin.
func (s MonthlySeries) Label(i int) string {
	idx := monthOrdinal(s.StartYear, s.StartMonth) + i
	return fmt.Sprintf("%04d-%02d", idx/12, idx%12+1)
}

// Labels returns every bin label in order.
func (s MonthlySeries) Labels() []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.Label(i)
	}
	return out
}

// PeakIndex returns the index of the maximum count. Ties resolve to the
// first occurrence. Returns -1 for an empty series.
func (s MonthlySeries) PeakIndex() int {
	if s.Len() == 0 {
		return -1
	}
	peak := 0
	for i, c := range s.Counts {
		if c > s.Counts[peak] {
			peak = i
		}
	}
	return peak
}

// CountsByLabel returns the series as a label-to-count mapping.
func (s MonthlySeries) CountsByLabel() map[string]float64 {
	out := make(map[string]float64, s.Len())
	for i, c := range s.Counts {
		out[s.Label(i)] = c
	}
	return out
}

// monthOrdinal maps a year and month to a single monotonically increasing
// month index.
func monthOrdinal(year int, month time.Month) int {
	return year*12 + int(month) - 1
}
