package domain

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MinDescriptiveValues is the fewest mean-wind values a source needs for
// descriptive statistics.
const MinDescriptiveValues = 5

// DescriptiveStats summarizes the mean-wind distribution of one source. All
// values except Count are rounded to 2 decimals.
type DescriptiveStats struct {
	Source string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P05    float64
	P25    float64
	P50    float64
	P75    float64
	P95    float64
	Max    float64
}

// AnalyzeDescriptive computes mean-wind statistics per source. Sources below the
// value floor are reported as skipped and produce no row.
func AnalyzeDescriptive(c SourceCollection) ([]DescriptiveStats, []Outcome) {
	var (
		rows     []DescriptiveStats
		outcomes []Outcome
	)

	c.Each(func(s Series) {
		if !s.Schema.Mean {
			outcomes = append(outcomes, skipped(StageDescriptive, s.Source, VarMean, "no windspeed_mean column"))
			return
		}
		values := make([]float64, 0, len(s.Records))
		for _, r := range s.Records {
			if r.Mean != nil {
				values = append(values, *r.Mean)
			}
		}
		if len(values) < MinDescriptiveValues {
			outcomes = append(outcomes, skipped(StageDescriptive, s.Source, VarMean,
				fmt.Sprintf("%v: %d values, need at least %d", ErrInsufficientData, len(values), MinDescriptiveValues)))
			return
		}

		rows = append(rows, Describe(s.Source, values))
		outcomes = append(outcomes, ok(StageDescriptive, s.Source, VarMean))
	})

	return rows, outcomes
}

// Describe computes the summary of a non-empty sample.
func Describe(source string, values []float64) DescriptiveStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = math.NaN()
	}

	return DescriptiveStats{
		Source: source,
		Count:  len(sorted),
		Mean:   round2(mean),
		Std:    round2(std),
		Min:    round2(sorted[0]),
		P05:    round2(percentile(sorted, 0.05)),
		P25:    round2(percentile(sorted, 0.25)),
		P50:    round2(percentile(sorted, 0.50)),
		P75:    round2(percentile(sorted, 0.75)),
		P95:    round2(percentile(sorted, 0.95)),
		Max:    round2(sorted[len(sorted)-1]),
	}
}

// percentile interpolates linearly between closest ranks at (n-1)·p on sorted data.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
