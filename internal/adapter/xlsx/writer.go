// Package xlsx writes the result tables of a site into a single workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/csvdir"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/report"
)

const maxSheetName = 31

// Writer stores one sheet per table in <dir>/<site>_wind_statistics.xlsx.
// It implements pipeline.ArtifactWriter.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// NewWriter creates a workbook writer. The directory is resolved the same way
// as for the CSV artifacts.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	return &Writer{outputDir: outputDir, logger: logger}
}

// Path returns the workbook path of a site.
func (w *Writer) Path(site domain.Site) string {
	return filepath.Join(csvdir.OutputDir(w.outputDir, site), site.Name+"_wind_statistics.xlsx")
}

// WriteTables replaces the site workbook. Numeric cells are stored as numbers,
// everything else as text.
func (w *Writer) WriteTables(ctx context.Context, site domain.Site, tables []report.Table) error {
	if len(tables) == 0 {
		return nil
	}
	path := w.Path(site)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	names := SheetNames(tables)
	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.NewSheet(names[i]); err != nil {
			return fmt.Errorf("create sheet %s: %w", names[i], err)
		}
		if err := writeSheet(f, names[i], t); err != nil {
			return fmt.Errorf("write sheet %s: %w", names[i], err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("workbook written", "site", site.Name, "path", path, "sheets", len(tables))
	return nil
}

func writeSheet(f *excelize.File, sheet string, t report.Table) error {
	for r, record := range t.Records() {
		cells := make([]any, len(record))
		for c, v := range record {
			cells[c] = cellValue(v, r == 0)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v string, header bool) any {
	if header || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

// SheetNames maps table names to unique worksheet names. Excel caps names at 31
// characters, so long names are truncated and collisions get a numeric suffix.
func SheetNames(tables []report.Table) []string {
	out := make([]string, len(tables))
	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := sanitize(t.Name)
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := "~" + strconv.Itoa(n)
			base := sanitize(t.Name)
			if len(base) > maxSheetName-len(suffix) {
				base = base[:maxSheetName-len(suffix)]
			}
			name = base + suffix
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
}
