package parquet_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	parquetgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/parquet"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f64(v float64) *float64 { return &v }

func sampleCollection() domain.SourceCollection {
	day := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	return domain.CollectionOf(
		domain.Series{
			Source: "noaa",
			Schema: domain.Schema{Time: true, Mean: true},
			Records: []domain.DailyRecord{
				{Time: day, Mean: f64(4.5)},
				{Mean: f64(6)},
			},
		},
		domain.Series{
			Source: "era5",
			Schema: domain.Schema{Time: true, Mean: true, Gust: true, Direction: true},
			Records: []domain.DailyRecord{
				{Time: day, Mean: f64(5), Gust: f64(9.1), Direction: f64(270)},
				{Time: day.AddDate(0, 0, 1), Gust: f64(7)},
			},
		},
	)
}

func TestWriter_WriteSeries(t *testing.T) {
	out := t.TempDir()
	site := domain.Site{Name: "dakar"}
	w := parquet.NewWriter(out, discardLogger())

	require.NoError(t, w.WriteSeries(context.Background(), site, sampleCollection()))
	assert.Equal(t, filepath.Join(out, "dakar_harmonized_series.parquet"), w.Path(site))

	rows, err := parquetgo.ReadFile[parquet.Row](w.Path(site))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "era5", rows[0].Source)
	require.NotNil(t, rows[0].Time)
	assert.Equal(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC).Unix(), *rows[0].Time)
	assert.InDelta(t, 270.0, *rows[0].WindDirection, 1e-9)
	assert.Nil(t, rows[1].WindspeedMean)
	assert.Equal(t, "noaa", rows[2].Source)
	assert.Nil(t, rows[2].WindspeedGust)
	assert.Nil(t, rows[3].Time)
	assert.InDelta(t, 6.0, *rows[3].WindspeedMean, 1e-9)
}

func TestWriter_EmptyCollection(t *testing.T) {
	out := t.TempDir()
	w := parquet.NewWriter(out, discardLogger())
	site := domain.Site{Name: "dakar"}

	require.NoError(t, w.WriteSeries(context.Background(), site, domain.CollectionOf()))
	assert.NoFileExists(t, w.Path(site))
}

func TestRows_SourceOrder(t *testing.T) {
	rows := parquet.Rows(sampleCollection())
	var sources []string
	for _, r := range rows {
		sources = append(sources, r.Source)
	}
	assert.Equal(t, []string{"era5", "era5", "noaa", "noaa"}, sources)
}
