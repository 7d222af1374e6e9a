package domain

import (
	"fmt"
	"log/slog"
	"sort"
)

// DefaultMinYears is the fewest annual maxima accepted for a Gumbel fit.
const DefaultMinYears = 10

// AnnualMax is the largest value of one calendar year.
type AnnualMax struct {
	Year  int
	Value float64
}

// AnnualMaxima groups points by calendar year and keeps each year's maximum,
// ascending by year.
func AnnualMaxima(points []Point) []AnnualMax {
	byYear := make(map[int]float64)
	for _, p := range points {
		y := p.Time.Year()
		if cur, seen := byYear[y]; !seen || p.Value > cur {
			byYear[y] = p.Value
		}
	}
	out := make([]AnnualMax, 0, len(byYear))
	for y, v := range byYear {
		out = append(out, AnnualMax{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ReturnLevel is the estimate for one return period; Level is nil when absent.
type ReturnLevel struct {
	Period float64
	Level  *float64
}

// ReturnLevelResult is the estimate for one (source, variable) series.
type ReturnLevelResult struct {
	Source       string
	Variable     Variable
	Threshold    float64
	AnnualMaxima []AnnualMax
	Fit          *GumbelFit
	Levels       []ReturnLevel
	Outcome      Outcome
}

// ReturnLevelEstimator fits Gumbel distributions to annual maxima.
type ReturnLevelEstimator struct {
	MinYears int
	Logger   *slog.Logger
}

// NewReturnLevelEstimator creates an estimator; minYears below 2 falls back to
// DefaultMinYears.
func NewReturnLevelEstimator(minYears int, logger *slog.Logger) *ReturnLevelEstimator {
	if minYears < 2 {
		minYears = DefaultMinYears
	}
	return &ReturnLevelEstimator{MinYears: minYears, Logger: logger}
}

// Estimate computes return levels for every requested period. It never fails:
// short histories and fit failures produce absent levels and a non-OK outcome,
// while the annual maxima are always returned for inspection.
func (e *ReturnLevelEstimator) Estimate(source string, v Variable, threshold float64, points []Point, periods []float64) ReturnLevelResult {
	res := ReturnLevelResult{
		Source:    source,
		Variable:  v,
		Threshold: threshold,
		Levels:    make([]ReturnLevel, len(periods)),
	}
	for i, T := range periods {
		res.Levels[i] = ReturnLevel{Period: T}
	}

	if len(points) == 0 {
		res.Outcome = skipped(StageReturnLevels, source, v, "no values")
		return res
	}

	res.AnnualMaxima = AnnualMaxima(points)
	if len(res.AnnualMaxima) < e.MinYears {
		reason := fmt.Sprintf("%v: %d years of annual maxima, need at least %d", ErrInsufficientData, len(res.AnnualMaxima), e.MinYears)
		e.Logger.Warn("series too short for gumbel fit",
			"source", source,
			"variable", v,
			"years", len(res.AnnualMaxima),
			"min_years", e.MinYears,
		)
		res.Outcome = skipped(StageReturnLevels, source, v, reason)
		return res
	}

	maxima := make([]float64, len(res.AnnualMaxima))
	for i, am := range res.AnnualMaxima {
		maxima[i] = am.Value
	}
	fit, err := FitGumbel(maxima)
	if err != nil {
		e.Logger.Warn("gumbel fit failed", "source", source, "variable", v, "error", err)
		res.Outcome = failed(StageReturnLevels, source, v, err)
		return res
	}
	res.Fit = &fit

	var invalid []float64
	for i, T := range periods {
		rl, err := fit.ReturnLevel(T)
		if err != nil {
			invalid = append(invalid, T)
			continue
		}
		res.Levels[i].Level = ptr(round2(rl))
	}
	if len(invalid) > 0 {
		e.Logger.Warn("invalid return periods ignored", "source", source, "variable", v, "periods", invalid)
		res.Outcome = failed(StageReturnLevels, source, v, fmt.Errorf("%w: %v", ErrInvalidReturnPeriod, invalid))
		return res
	}
	res.Outcome = ok(StageReturnLevels, source, v)
	return res
}

// EstimateAll runs the estimator for every source providing v. Sources without a
// time column or without the variable column produce no result.
func (e *ReturnLevelEstimator) EstimateAll(c SourceCollection, v Variable, threshold float64, periods []float64) ([]ReturnLevelResult, []Outcome) {
	var (
		results  []ReturnLevelResult
		outcomes []Outcome
	)
	c.Each(func(s Series) {
		if !s.Schema.Time || !s.Schema.Has(v) {
			outcomes = append(outcomes, skipped(StageReturnLevels, s.Source, v, "missing time or "+string(v)+" column"))
			return
		}
		r := e.Estimate(s.Source, v, threshold, s.Points(v), periods)
		results = append(results, r)
		outcomes = append(outcomes, r.Outcome)
	})
	return results, outcomes
}
