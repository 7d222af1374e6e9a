package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDailyCSV writes years of daily data with one strong day per year.
func writeDailyCSV(t *testing.T, path string, firstYear, years int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("time,windspeed_mean,windspeed_gust\n")
	start := time.Date(firstYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(firstYear+years, 1, 1, 0, 0, 0, 0, time.UTC)
	for d, i := start, 0; d.Before(end); d, i = d.AddDate(0, 0, 1), i+1 {
		mean := 4 + float64(i%5)
		if d.Month() == time.February && d.Day() == 10 {
			mean = 20 + float64(d.Year()%9)
		}
		fmt.Fprintf(&b, "%s,%g,%g\n", d.Format(time.DateOnly), mean, mean*1.5)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func TestAnalyzeCommand(t *testing.T) {
	dataDir := t.TempDir()
	siteDir := filepath.Join(dataDir, "dakar")
	require.NoError(t, os.Mkdir(siteDir, 0o755))
	writeDailyCSV(t, filepath.Join(siteDir, "meteostat1_dakar.csv"), 2005, 12)
	writeDailyCSV(t, filepath.Join(siteDir, "noaa_dakar.csv"), 2010, 5)

	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"analyze", "--name", "dakar", "--mean-threshold", "22", "--return-periods", "10,50", "--xlsx"})
	require.NoError(t, cmd.Execute())

	artifacts := filepath.Join(siteDir, "figures_and_tables")
	for _, name := range []string{
		"coverage_summary.csv",
		"stats_windspeed_mean.csv",
		"extreme_days_summary_windspeed_mean.csv",
		"extreme_days_per_year_windspeed_gust.csv",
		"annual_max_windspeed_mean_meteostat1.csv",
		"annual_max_windspeed_mean_noaa.csv",
		"return_levels_gumbel.csv",
		"return_level_50y.csv",
		"analysis_outcomes.csv",
		"dakar_wind_statistics.xlsx",
	} {
		assert.FileExists(t, filepath.Join(artifacts, name))
	}

	assert.Contains(t, out.String(), "dakar: 2 sources")
	assert.Contains(t, out.String(), "insufficient data")
}

func TestAnalyzeCommand_RequiresSite(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze"})
	assert.Error(t, cmd.Execute())
}
