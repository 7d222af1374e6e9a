package csvdir

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/report"
)

// ArtifactDir is the folder, relative to the site folder, that receives the
// tables when no output directory is configured.
const ArtifactDir = "figures_and_tables"

// Writer writes each result table to <dir>/<name>.csv.
// It implements pipeline.ArtifactWriter.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// NewWriter creates a CSV artifact writer. An empty outputDir writes into the
// site's figures_and_tables folder.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{outputDir: outputDir, logger: logger}
}

// Dir returns the directory the tables of site are written to.
func (w *Writer) Dir(site domain.Site) string {
	return OutputDir(w.outputDir, site)
}

// OutputDir resolves the artifact directory of a site.
func OutputDir(configured string, site domain.Site) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(site.Folder, ArtifactDir)
}

// WriteTables overwrites the CSV file of every table. Files are written to a
// temporary name first and renamed into place.
func (w *Writer) WriteTables(ctx context.Context, site domain.Site, tables []report.Table) error {
	dir := w.Dir(site)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(t.Rows) == 0 {
			continue
		}
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeCSV(path, t); err != nil {
			return fmt.Errorf("write %s: %w", t.Name, err)
		}
	}

	w.logger.Info("csv artifacts written", "site", site.Name, "dir", dir, "tables", len(tables))
	return nil
}

func writeCSV(path string, t report.Table) error {
	df := dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return df.Err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
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
