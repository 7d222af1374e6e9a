package domain

import (
	"sort"
	"time"
)

// ExtremeDaySummary counts the days on which a source exceeded a threshold.
// MaxValue is nil and MaxDate zero when there were no exceedances.
type ExtremeDaySummary struct {
	Source    string
	Variable  Variable
	Threshold float64
	Count     int
	MaxValue  *float64
	MaxDate   time.Time
}

// ExtremeDayYearly is the exceedance count of one source in one calendar year.
type ExtremeDayYearly struct {
	Source   string
	Variable Variable
	Year     int
	Count    int
}

// YearlyMatrix pivots yearly counts into Years × Sources. Absent combinations
// are zero; Years ascend.
type YearlyMatrix struct {
	Variable Variable
	Years    []int
	Sources  []string
	Counts   [][]int
}

// ColumnSum returns the total count of a source over all years.
func (m YearlyMatrix) ColumnSum(source string) int {
	col := -1
	for i, s := range m.Sources {
		if s == source {
			col = i
			break
		}
	}
	if col < 0 {
		return 0
	}
	total := 0
	for _, row := range m.Counts {
		total += row[col]
	}
	return total
}

// ExtremeDayResult groups the outputs of one extreme-day analysis.
type ExtremeDayResult struct {
	Variable  Variable
	Threshold float64
	Summaries []ExtremeDaySummary
	Yearly    []ExtremeDayYearly
	Matrix    YearlyMatrix
	Outcomes  []Outcome
}

// AnalyzeExtremeDays finds, per source, the days where v strictly exceeds the
// threshold. Sources with usable data but no exceedance still get a summary
// with a zero count.
func AnalyzeExtremeDays(c SourceCollection, v Variable, threshold float64) ExtremeDayResult {
	res := ExtremeDayResult{Variable: v, Threshold: threshold}

	c.Each(func(s Series) {
		if !s.Schema.Time || !s.Schema.Has(v) {
			res.Outcomes = append(res.Outcomes, skipped(StageExtremeDays, s.Source, v, "missing time or "+string(v)+" column"))
			return
		}
		points := s.Points(v)
		if len(points) == 0 {
			res.Outcomes = append(res.Outcomes, skipped(StageExtremeDays, s.Source, v, "no rows with time and value"))
			return
		}

		summary, yearly := exceedances(s.Source, v, threshold, points)
		res.Summaries = append(res.Summaries, summary)
		res.Yearly = append(res.Yearly, yearly...)
		res.Outcomes = append(res.Outcomes, ok(StageExtremeDays, s.Source, v))
	})

	sources := make([]string, 0, len(res.Summaries))
	for _, sm := range res.Summaries {
		sources = append(sources, sm.Source)
	}
	res.Matrix = pivotYearly(v, sources, res.Yearly)
	return res
}

// exceedances summarizes the points above threshold. The maximum keeps its first
// occurrence in record order.
func exceedances(source string, v Variable, threshold float64, points []Point) (ExtremeDaySummary, []ExtremeDayYearly) {
	summary := ExtremeDaySummary{Source: source, Variable: v, Threshold: threshold}
	perYear := make(map[int]int)

	for _, p := range points {
		if !(p.Value > threshold) {
			continue
		}
		summary.Count++
		perYear[p.Time.Year()]++
		if summary.MaxValue == nil || p.Value > *summary.MaxValue {
			summary.MaxValue = ptr(p.Value)
			summary.MaxDate = p.Time
		}
	}

	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Ints(years)

	yearly := make([]ExtremeDayYearly, 0, len(years))
	for _, y := range years {
		yearly = append(yearly, ExtremeDayYearly{Source: source, Variable: v, Year: y, Count: perYear[y]})
	}
	return summary, yearly
}

func pivotYearly(v Variable, sources []string, yearly []ExtremeDayYearly) YearlyMatrix {
	m := YearlyMatrix{Variable: v, Sources: sources}

	yearSet := make(map[int]struct{})
	for _, y := range yearly {
		yearSet[y.Year] = struct{}{}
	}
	for y := range yearSet {
		m.Years = append(m.Years, y)
	}
	sort.Ints(m.Years)

	rowOf := make(map[int]int, len(m.Years))
	for i, y := range m.Years {
		rowOf[y] = i
	}
	colOf := make(map[string]int, len(sources))
	for i, s := range sources {
		colOf[s] = i
	}

	m.Counts = make([][]int, len(m.Years))
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(sources))
	}
	for _, y := range yearly {
		m.Counts[rowOf[y.Year]][colOf[y.Source]] += y.Count
	}
	return m
}
