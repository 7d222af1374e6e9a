package report

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

func f(v float64) *float64 { return &v }

func sampleReport() domain.SiteReport {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }
	return domain.SiteReport{
		Site:    domain.Site{Name: "dakar"},
		Sources: []string{"era5", "noaa"},
		Coverage: []domain.CoverageRecord{
			{Source: "era5", FirstDate: d(2000, 1, 1), LastDate: d(2011, 12, 31), RowCount: 4383, MeanPct: f(99.5)},
		},
		Descriptive: []domain.DescriptiveStats{
			{Source: "era5", Count: 4383, Mean: 5.5, Std: 3.03, Min: 1, P05: 1.45, P25: 3.25, P50: 5.5, P75: 7.75, P95: 9.55, Max: 10},
		},
		ExtremeDays: []domain.ExtremeDayResult{
			{
				Variable:  domain.VarMean,
				Threshold: 25,
				Summaries: []domain.ExtremeDaySummary{
					{Source: "era5", Variable: domain.VarMean, Threshold: 25, Count: 2, MaxValue: f(30), MaxDate: d(2004, 3, 2)},
					{Source: "noaa", Variable: domain.VarMean, Threshold: 25},
				},
				Matrix: domain.YearlyMatrix{
					Variable: domain.VarMean,
					Years:    []int{2003, 2004},
					Sources:  []string{"era5", "noaa"},
					Counts:   [][]int{{1, 0}, {1, 0}},
				},
			},
			{Variable: domain.VarGust, Threshold: 30},
		},
		ReturnLevels: []domain.ReturnLevelResult{
			{
				Source:       "era5",
				Variable:     domain.VarMean,
				Threshold:    25,
				AnnualMaxima: []domain.AnnualMax{{Year: 2000, Value: 12.5}, {Year: 2001, Value: 14}},
				Levels:       []domain.ReturnLevel{{Period: 10, Level: f(16.2)}, {Period: 50, Level: f(18.75)}},
			},
			{
				Source:    "noaa",
				Variable:  domain.VarMean,
				Threshold: 25,
				Levels:    []domain.ReturnLevel{{Period: 10}, {Period: 50}},
			},
		},
		Directions: []domain.DirectionBins{
			{Source: "era5", Width: 180, Bins: []domain.DirectionBin{{Center: 90, MaxMean: 7.5, Count: 3}, {Center: 270}}},
		},
		Outcomes: []domain.Outcome{
			{Stage: domain.StageDescriptive, Source: "noaa", Variable: domain.VarMean, Status: domain.StatusSkipped, Reason: "too few"},
		},
	}
}

func TestBuild_TableOrder(t *testing.T) {
	tables := Build(sampleReport())

	var names []string
	for _, tb := range tables {
		names = append(names, tb.Name)
	}
	expected := []string{
		"coverage_summary",
		"stats_windspeed_mean",
		"extreme_days_summary_windspeed_mean",
		"extreme_days_per_year_windspeed_mean",
		"annual_max_windspeed_mean_era5",
		"return_levels_gumbel",
		"return_level_50y",
		"wind_direction_bins_era5",
		"analysis_outcomes",
	}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Errorf("table names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Cells(t *testing.T) {
	tables := Build(sampleReport())

	cov, found := Find(tables, TableCoverage)
	require.True(t, found)
	assert.Equal(t, [][]string{{"era5", "2000-01-01", "2011-12-31", "4383", "99.5", ""}}, cov.Rows)

	stats, _ := Find(tables, TableStats)
	assert.Equal(t, []string{"era5", "4383", "5.5", "3.03", "1", "1.45", "3.25", "5.5", "7.75", "9.55", "10"}, stats.Rows[0])
	assert.Len(t, stats.Columns, 11)

	summary, _ := Find(tables, ExtremeSummaryTable(domain.VarMean))
	assert.Equal(t, [][]string{
		{"era5", "windspeed_mean", "25", "2", "30", "2004-03-02"},
		{"noaa", "windspeed_mean", "25", "0", "", ""},
	}, summary.Rows)

	perYear, _ := Find(tables, ExtremePerYearTable(domain.VarMean))
	assert.Equal(t, []string{"Year", "era5", "noaa"}, perYear.Columns)
	assert.Equal(t, [][]string{{"2003", "1", "0"}, {"2004", "1", "0"}}, perYear.Rows)

	am, _ := Find(tables, AnnualMaxTable(domain.VarMean, "era5"))
	assert.Equal(t, [][]string{{"2000", "12.5"}, {"2001", "14"}}, am.Rows)

	rl, _ := Find(tables, TableReturnLevels)
	assert.Equal(t, [][]string{
		{"era5", "windspeed_mean", "10", "16.2", "25"},
		{"era5", "windspeed_mean", "50", "18.75", "25"},
		{"noaa", "windspeed_mean", "10", "", "25"},
		{"noaa", "windspeed_mean", "50", "", "25"},
	}, rl.Rows)

	legacy, _ := Find(tables, TableReturnLevel50)
	assert.Equal(t, rl.Columns, legacy.Columns)
	assert.Equal(t, [][]string{
		{"era5", "windspeed_mean", "50", "18.75", "25"},
		{"noaa", "windspeed_mean", "50", "", "25"},
	}, legacy.Rows)

	dir, _ := Find(tables, DirectionBinsTable("era5"))
	assert.Equal(t, [][]string{{"90", "7.5", "3"}, {"270", "0", "0"}}, dir.Rows)

	out, _ := Find(tables, TableOutcomes)
	assert.Equal(t, [][]string{{"descriptive_stats", "noaa", "windspeed_mean", "skipped", "too few"}}, out.Rows)
}

func TestBuild_NoLegacyTableWithout50(t *testing.T) {
	r := sampleReport()
	for i := range r.ReturnLevels {
		r.ReturnLevels[i].Levels = r.ReturnLevels[i].Levels[:1]
	}
	_, found := Find(Build(r), TableReturnLevel50)
	assert.False(t, found)
}

func TestBuild_EmptyReport(t *testing.T) {
	assert.Empty(t, Build(domain.SiteReport{Empty: true}))
}

func TestTable_Records(t *testing.T) {
	tb := Table{Name: "x", Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, tb.Records())
}
