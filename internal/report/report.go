// Package report turns a site analysis into the named tables consumed by the
// downstream report renderer. Column names and ordering are a compatibility
// contract: renderers look columns up by their exact header text.
package report

import (
	"strconv"
	"time"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

// Table is one tabular artifact. Cells are already formatted; an empty string is
// an absent value.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Records returns the header followed by the rows.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Columns)
	out = append(out, t.Rows...)
	return out
}

// Find returns the table with the given name.
func Find(tables []Table, name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Table names.
const (
	TableStats         = "stats_windspeed_mean"
	TableCoverage      = "coverage_summary"
	TableReturnLevels  = "return_levels_gumbel"
	TableReturnLevel50 = "return_level_50y"
	TableOutcomes      = "analysis_outcomes"
)

// ExtremeSummaryTable names the exceedance summary of a variable.
func ExtremeSummaryTable(v domain.Variable) string { return "extreme_days_summary_" + string(v) }

// ExtremePerYearTable names the year × source exceedance matrix of a variable.
func ExtremePerYearTable(v domain.Variable) string { return "extreme_days_per_year_" + string(v) }

// AnnualMaxTable names the annual-maxima diagnostic of one series.
func AnnualMaxTable(v domain.Variable, source string) string {
	return "annual_max_" + string(v) + "_" + source
}

// DirectionBinsTable names the wind-rose input of one source.
func DirectionBinsTable(source string) string { return "wind_direction_bins_" + source }

var (
	statsColumns = []string{
		"Source", "Nb of days", "Mean (m/s)", "Std dev (m/s)", "Min (m/s)",
		"5th percentile (m/s)", "25th percentile (m/s)", "50th percentile (m/s)",
		"75th percentile (m/s)", "95th percentile (m/s)", "Max (m/s)",
	}
	coverageColumns = []string{
		"Source", "First date", "Last date", "Row count", "Mean wind coverage (%)", "Gust coverage (%)",
	}
	extremeSummaryColumns = []string{
		"Source", "Variable", "BC_threshold (m/s)", "Nb_extreme_days", "Max_extreme_value (m/s)", "Date_max_value",
	}
	annualMaxColumns    = []string{"Year", "Max_value (m/s)"}
	returnLevelColumns  = []string{"Source", "Variable", "Return_period (years)", "Return_level (m/s)", "BC_threshold (m/s)"}
	directionBinColumns = []string{"Direction_center (deg)", "Max_windspeed_mean (m/s)", "Nb_days"}
	outcomeColumns      = []string{"Stage", "Source", "Variable", "Status", "Reason"}
)

// Build converts a site report into tables, in a fixed order. Tables without
// rows are omitted; an empty report yields no tables.
func Build(r domain.SiteReport) []Table {
	if r.Empty {
		return nil
	}

	var tables []Table
	add := func(t Table) {
		if len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	}

	add(coverageTable(r.Coverage))
	add(statsTable(r.Descriptive))
	for _, ed := range r.ExtremeDays {
		add(extremeSummaryTable(ed))
		add(extremePerYearTable(ed.Matrix))
	}
	for _, rl := range r.ReturnLevels {
		add(annualMaxTable(rl))
	}
	all, legacy := returnLevelTables(r.ReturnLevels)
	add(all)
	add(legacy)
	for _, d := range r.Directions {
		add(directionTable(d))
	}
	add(outcomeTable(r.Outcomes))
	return tables
}

func coverageTable(records []domain.CoverageRecord) Table {
	t := Table{Name: TableCoverage, Columns: coverageColumns}
	for _, c := range records {
		t.Rows = append(t.Rows, []string{
			c.Source,
			formatDate(c.FirstDate),
			formatDate(c.LastDate),
			strconv.Itoa(c.RowCount),
			formatOptional(c.MeanPct),
			formatOptional(c.GustPct),
		})
	}
	return t
}

func statsTable(stats []domain.DescriptiveStats) Table {
	t := Table{Name: TableStats, Columns: statsColumns}
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			s.Source,
			strconv.Itoa(s.Count),
			formatFloat(s.Mean),
			formatFloat(s.Std),
			formatFloat(s.Min),
			formatFloat(s.P05),
			formatFloat(s.P25),
			formatFloat(s.P50),
			formatFloat(s.P75),
			formatFloat(s.P95),
			formatFloat(s.Max),
		})
	}
	return t
}

func extremeSummaryTable(ed domain.ExtremeDayResult) Table {
	t := Table{Name: ExtremeSummaryTable(ed.Variable), Columns: extremeSummaryColumns}
	for _, s := range ed.Summaries {
		t.Rows = append(t.Rows, []string{
			s.Source,
			string(s.Variable),
			formatFloat(s.Threshold),
			strconv.Itoa(s.Count),
			formatOptional(s.MaxValue),
			formatDate(s.MaxDate),
		})
	}
	return t
}

func extremePerYearTable(m domain.YearlyMatrix) Table {
	t := Table{
		Name:    ExtremePerYearTable(m.Variable),
		Columns: append([]string{"Year"}, m.Sources...),
	}
	for i, y := range m.Years {
		row := make([]string, 0, len(m.Sources)+1)
		row = append(row, strconv.Itoa(y))
		for _, n := range m.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func annualMaxTable(rl domain.ReturnLevelResult) Table {
	t := Table{Name: AnnualMaxTable(rl.Variable, rl.Source), Columns: annualMaxColumns}
	for _, am := range rl.AnnualMaxima {
		t.Rows = append(t.Rows, []string{strconv.Itoa(am.Year), formatFloat(am.Value)})
	}
	return t
}

// returnLevelTables builds the full return-level table and the legacy 50-year
// subset, which stays empty unless 50 years was requested.
func returnLevelTables(results []domain.ReturnLevelResult) (Table, Table) {
	all := Table{Name: TableReturnLevels, Columns: returnLevelColumns}
	legacy := Table{Name: TableReturnLevel50, Columns: returnLevelColumns}
	for _, rl := range results {
		for _, lvl := range rl.Levels {
			row := []string{
				rl.Source,
				string(rl.Variable),
				formatFloat(lvl.Period),
				formatOptional(lvl.Level),
				formatFloat(rl.Threshold),
			}
			all.Rows = append(all.Rows, row)
			if lvl.Period == 50 {
				legacy.Rows = append(legacy.Rows, row)
			}
		}
	}
	return all, legacy
}

func directionTable(d domain.DirectionBins) Table {
	t := Table{Name: DirectionBinsTable(d.Source), Columns: directionBinColumns}
	for _, b := range d.Bins {
		t.Rows = append(t.Rows, []string{formatFloat(b.Center), formatFloat(b.MaxMean), strconv.Itoa(b.Count)})
	}
	return t
}

func outcomeTable(outcomes []domain.Outcome) Table {
	t := Table{Name: TableOutcomes, Columns: outcomeColumns}
	for _, o := range outcomes {
		t.Rows = append(t.Rows, []string{string(o.Stage), o.Source, string(o.Variable), string(o.Status), o.Reason})
	}
	return t
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
