package domain

// Site identifies one analysis target.
type Site struct {
	Name       string
	Folder     string
	Thresholds SiteThresholds
}

// SiteReport collects every derived result of one analysis run. It is built
// fresh per run and not modified afterwards.
type SiteReport struct {
	Site         Site
	Sources      []string
	Empty        bool
	Coverage     []CoverageRecord
	Descriptive  []DescriptiveStats
	ExtremeDays  []ExtremeDayResult
	ReturnLevels []ReturnLevelResult
	Directions   []DirectionBins
	Outcomes     []Outcome
}

// Skipped returns the outcomes of a stage that were not OK.
func (r SiteReport) Skipped(stage Stage) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Stage == stage && o.Status != StatusOK {
			out = append(out, o)
		}
	}
	return out
}
