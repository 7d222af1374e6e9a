package domain

import "time"

// CoverageRecord describes the temporal span and completeness of one source.
// Percentages are nil when the source lacks the column entirely.
type CoverageRecord struct {
	Source    string
	FirstDate time.Time
	LastDate  time.Time
	RowCount  int
	MeanPct   *float64
	GustPct   *float64
}

// AnalyzeCoverage computes a coverage record for every source with a usable time
// column. Sources without one are skipped, not reported as zero coverage.
func AnalyzeCoverage(c SourceCollection) ([]CoverageRecord, []Outcome) {
	var (
		records  []CoverageRecord
		outcomes []Outcome
	)

	c.Each(func(s Series) {
		if !s.Schema.Time {
			outcomes = append(outcomes, skipped(StageCoverage, s.Source, "", "no time column"))
			return
		}
		timed := s.TimedRecords()
		if len(timed) == 0 {
			outcomes = append(outcomes, skipped(StageCoverage, s.Source, "", "no parsable time values"))
			return
		}

		rec := CoverageRecord{
			Source:    s.Source,
			FirstDate: timed[0].Time,
			LastDate:  timed[0].Time,
			RowCount:  len(timed),
		}
		var meanCount, gustCount int
		for _, r := range timed {
			if r.Time.Before(rec.FirstDate) {
				rec.FirstDate = r.Time
			}
			if r.Time.After(rec.LastDate) {
				rec.LastDate = r.Time
			}
			if r.Mean != nil {
				meanCount++
			}
			if r.Gust != nil {
				gustCount++
			}
		}
		if s.Schema.Mean {
			rec.MeanPct = ptr(percent(meanCount, len(timed)))
		}
		if s.Schema.Gust {
			rec.GustPct = ptr(percent(gustCount, len(timed)))
		}

		records = append(records, rec)
		outcomes = append(outcomes, ok(StageCoverage, s.Source, ""))
	})

	return records, outcomes
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(100 * float64(n) / float64(total))
}
