// Package parquet exports the harmonized daily series of a site.
package parquet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/csvdir"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

// Row is one canonical daily record of one source. Time is the Unix
// timestamp in seconds and is nil for records without a usable time.
type Row struct {
	Source        string   `parquet:"source"`
	Time          *int64   `parquet:"time"`
	WindspeedMean *float64 `parquet:"windspeed_mean"`
	WindspeedGust *float64 `parquet:"windspeed_gust"`
	WindDirection *float64 `parquet:"wind_direction"`
}

// Writer stores every source of a collection in one file,
// <dir>/<site>_harmonized_series.parquet.
// It implements pipeline.SeriesWriter.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// NewWriter creates a series exporter.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{outputDir: outputDir, logger: logger}
}

// Path returns the export path of a site.
func (w *Writer) Path(site domain.Site) string {
	return filepath.Join(csvdir.OutputDir(w.outputDir, site), site.Name+"_harmonized_series.parquet")
}

// WriteSeries writes the collection in source order, keeping record order
// within each source.
func (w *Writer) WriteSeries(ctx context.Context, site domain.Site, c domain.SourceCollection) error {
	if c.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := Rows(c)

	path := w.Path(site)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := writeFile(path, rows); err != nil {
		return fmt.Errorf("write harmonized series: %w", err)
	}
	w.logger.Info("harmonized series written", "site", site.Name, "path", path, "rows", len(rows))
	return nil
}

// Rows flattens a collection into export rows.
func Rows(c domain.SourceCollection) []Row {
	var rows []Row
	c.Each(func(s domain.Series) {
		for _, r := range s.Records {
			row := Row{
				Source:        s.Source,
				WindspeedMean: r.Mean,
				WindspeedGust: r.Gust,
				WindDirection: r.Direction,
			}
			if r.HasTime() {
				ts := r.Time.Unix()
				row.Time = &ts
			}
			rows = append(rows, row)
		}
	})
	return rows
}

// writeFile writes rows to path via a .tmp intermediate file.
func writeFile(path string, rows []Row) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	pw := parquet.NewGenericWriter[Row](f)
	if _, err := pw.Write(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := pw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
