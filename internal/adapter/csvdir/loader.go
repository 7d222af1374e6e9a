// Package csvdir reads per-source daily CSV files from a site folder and writes
// result tables back as CSV artifacts.
package csvdir

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

// missingCells are read as NaN by the CSV parser; the normalizer treats NaN as missing.
var missingCells = []string{"", "NA", "NaN", "nan", "None", "null"}

// Loader discovers source files in a site folder.
// It implements pipeline.SourceLoader.
type Loader struct {
	rules  domain.PrefixRules
	logger *slog.Logger
}

// NewLoader creates a Loader that keys files with the given prefix rules.
func NewLoader(rules domain.PrefixRules, logger *slog.Logger) *Loader {
	return &Loader{rules: rules, logger: logger}
}

// LoadSources reads every *.csv file of the site folder whose name matches a
// prefix rule. Files are visited in lexical order; when two files resolve to
// the same source the first one is kept. A file that cannot be parsed is kept
// as a non-tabular table so the collection reports it as dropped.
func (l *Loader) LoadSources(ctx context.Context, site domain.Site) (map[string]domain.RawTable, error) {
	entries, err := os.ReadDir(site.Folder)
	if err != nil {
		return nil, fmt.Errorf("read site folder: %w", err)
	}

	tables := make(map[string]domain.RawTable)
	origin := make(map[string]string)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".csv")
		source, ok := l.rules.Resolve(stem)
		if !ok {
			l.logger.Debug("file matches no source prefix", "file", e.Name())
			continue
		}
		if first, seen := origin[source]; seen {
			l.logger.Warn("duplicate source file ignored", "source", source, "file", e.Name(), "kept", first)
			continue
		}
		origin[source] = e.Name()

		t, err := readTable(filepath.Join(site.Folder, e.Name()))
		if err != nil {
			l.logger.Warn("source file unreadable", "source", source, "file", e.Name(), "error", err)
		}
		tables[source] = t
	}

	l.logger.Info("source files loaded", "site", site.Name, "folder", site.Folder, "sources", len(tables))
	return tables, nil
}

func readTable(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(missingCells),
	)
	if df.Err != nil {
		return domain.RawTable{}, df.Err
	}

	records := df.Records()
	return domain.RawTable{Columns: records[0], Rows: records[1:]}, nil
}
