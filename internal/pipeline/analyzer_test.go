package pipeline_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/pipeline"
)

func TestAnalyzer_StageOrder(t *testing.T) {
	c, _ := domain.NewSourceCollection(map[string]domain.RawTable{
		"era5": syntheticTable("time", 2000, 12, true, true),
	}, discardLogger())

	rep := newAnalyzer().Analyze(testSite(), c)

	var stages []domain.Stage
	for _, o := range rep.Outcomes {
		if len(stages) == 0 || stages[len(stages)-1] != o.Stage {
			stages = append(stages, o.Stage)
		}
	}
	assert.Equal(t, []domain.Stage{
		domain.StageCoverage,
		domain.StageDescriptive,
		domain.StageExtremeDays,
		domain.StageReturnLevels,
		domain.StageDirections,
	}, stages)

	require.Len(t, rep.ExtremeDays, 2)
	assert.Equal(t, domain.VarMean, rep.ExtremeDays[0].Variable)
	assert.Equal(t, 25.0, rep.ExtremeDays[0].Threshold)
	assert.Equal(t, domain.VarGust, rep.ExtremeDays[1].Variable)
	assert.Equal(t, 30.0, rep.ExtremeDays[1].Threshold)

	require.Len(t, rep.ReturnLevels, 2)
	assert.Equal(t, domain.VarMean, rep.ReturnLevels[0].Variable)
	assert.Equal(t, domain.VarGust, rep.ReturnLevels[1].Variable)
	for _, rl := range rep.ReturnLevels {
		assert.Equal(t, domain.StatusOK, rl.Outcome.Status)
		require.Len(t, rl.Levels, 2)
	}
}

func TestAnalyzer_LaterStagesRunAfterSkips(t *testing.T) {
	// Only three daily values: too few for descriptive statistics and return
	// levels, but extreme days and coverage still apply.
	c, _ := domain.NewSourceCollection(map[string]domain.RawTable{
		"noaa": {
			Columns: []string{"time", "windspeed_mean"},
			Rows:    [][]string{{"2020-01-01", "20"}, {"2020-01-02", "26"}, {"2020-01-03", "30"}},
		},
	}, discardLogger())

	metrics := newTestMetrics()
	a := pipeline.NewAnalyzer(domain.DefaultMinYears, domain.DefaultDirectionBinWidth, discardLogger(), metrics)
	rep := a.Analyze(testSite(), c)

	assert.Len(t, rep.Coverage, 1)
	assert.Empty(t, rep.Descriptive)
	assert.Len(t, rep.Skipped(domain.StageDescriptive), 1)
	require.NotEmpty(t, rep.ExtremeDays[0].Summaries)
	assert.Equal(t, 2, rep.ExtremeDays[0].Summaries[0].Count)
	assert.Equal(t, domain.StatusSkipped, rep.ReturnLevels[0].Outcome.Status)
	assert.Len(t, rep.ReturnLevels[0].AnnualMaxima, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StageOutcomes.WithLabelValues("descriptive_stats", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StageOutcomes.WithLabelValues("coverage", "ok")))
}

func TestAnalyzer_LogsSkippedSources(t *testing.T) {
	c, _ := domain.NewSourceCollection(map[string]domain.RawTable{
		"noaa": {
			Columns: []string{"time", "windspeed_mean"},
			Rows:    [][]string{{"2020-01-01", "20"}, {"2020-01-02", "26"}, {"2020-01-03", "30"}},
		},
	}, discardLogger())

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	pipeline.NewAnalyzer(domain.DefaultMinYears, domain.DefaultDirectionBinWidth, logger, newTestMetrics()).
		Analyze(testSite(), c)

	var skipped, tooShort []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		switch rec["msg"] {
		case "stage skipped source":
			skipped = append(skipped, rec)
		case "series too short for gumbel fit":
			tooShort = append(tooShort, rec)
		}
	}

	var descriptive map[string]any
	for _, rec := range skipped {
		assert.Equal(t, "WARN", rec["level"])
		assert.NotEqual(t, string(domain.StageReturnLevels), rec["stage"])
		if rec["stage"] == string(domain.StageDescriptive) {
			descriptive = rec
		}
	}
	require.NotNil(t, descriptive, "descriptive skip is logged")
	assert.Equal(t, "dakar", descriptive["site"])
	assert.Equal(t, "noaa", descriptive["source"])
	assert.Equal(t, "skipped", descriptive["status"])
	assert.NotEmpty(t, descriptive["reason"])

	require.Len(t, tooShort, 1, "mean only: noaa has no gust column")
	assert.Equal(t, "noaa", tooShort[0]["source"])
	assert.Equal(t, "windspeed_mean", tooShort[0]["variable"])
	assert.Equal(t, 1.0, tooShort[0]["years"])
}

func TestAnalyzer_EmptyCollection(t *testing.T) {
	rep := newAnalyzer().Analyze(testSite(), domain.CollectionOf())
	assert.True(t, rep.Empty)
	assert.Empty(t, rep.Outcomes)
}
