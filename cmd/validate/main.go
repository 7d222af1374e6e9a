// Command validate performs integrity checks over the tables written for one
// site: coverage bounds, agreement between the extreme-day summaries and the
// per-year matrices, exceedance maxima against their thresholds, and
// monotonicity of the return levels.
//
// Usage:
//
//	go run ./cmd/validate -dir data/dakar/figures_and_tables
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/report"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "directory holding the CSV tables of one site")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Wind Statistics Artifact Validation ===")
	fmt.Println()

	tables, err := loadTables(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load tables: %v\n", err)
		return 1
	}
	if len(tables) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no CSV tables in %s\n", dir)
		return 1
	}

	phases := validate(tables)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Tables: %d\n", len(tables))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(tables map[string]report.Table) []*phase {
	return []*phase{
		validateCoverage(tables),
		validateExtremeDays(tables),
		validateReturnLevels(tables),
	}
}

// ── Data loading ──

func loadTables(dir string) (map[string]report.Table, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	tables := make(map[string]report.Table, len(paths))
	for _, path := range paths {
		t, err := loadTable(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		tables[t.Name] = t
	}
	return tables, nil
}

func loadTable(path string) (report.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Table{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return report.Table{}, df.Err
	}
	records := df.Records()
	return report.Table{
		Name:    strings.TrimSuffix(filepath.Base(path), ".csv"),
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

// column returns the index of a column, or -1.
func column(t report.Table, name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ── Phases ──

func validateCoverage(tables map[string]report.Table) *phase {
	p := &phase{name: "Coverage percentages within [0, 100]"}
	t, ok := tables[report.TableCoverage]
	if !ok {
		p.errorf("%s table missing", report.TableCoverage)
		return p
	}
	for _, col := range []string{"Mean wind coverage (%)", "Gust coverage (%)"} {
		idx := column(t, col)
		if idx < 0 {
			p.errorf("column %q missing", col)
			continue
		}
		for _, row := range t.Rows {
			if row[idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				p.errorf("%s %s: %q is not a number", row[0], col, row[idx])
				continue
			}
			if v < 0 || v > 100 {
				p.errorf("%s %s: %v outside [0, 100]", row[0], col, v)
			}
		}
	}
	return p
}

func validateExtremeDays(tables map[string]report.Table) *phase {
	p := &phase{name: "Extreme days consistent with per-year matrix"}
	for _, v := range domain.WindVariables {
		summary, ok := tables[report.ExtremeSummaryTable(v)]
		if !ok {
			continue
		}
		perYear := tables[report.ExtremePerYearTable(v)]
		checkExtremeSummary(p, v, summary, perYear)
	}
	return p
}

func checkExtremeSummary(p *phase, v domain.Variable, summary, perYear report.Table) {
	const (
		colSource    = 0
		colThreshold = 2
		colCount     = 3
		colMax       = 4
	)
	for _, row := range summary.Rows {
		source := row[colSource]
		count, err := strconv.Atoi(row[colCount])
		if err != nil {
			p.errorf("%s %s: count %q is not an integer", v, source, row[colCount])
			continue
		}

		if sum, ok := columnSum(perYear, source); !ok {
			if count > 0 {
				p.errorf("%s %s: %d extreme days but no per-year column", v, source, count)
			}
		} else if sum != count {
			p.errorf("%s %s: per-year sum %d != summary count %d", v, source, sum, count)
		}

		if count == 0 {
			if row[colMax] != "" {
				p.errorf("%s %s: max value %q with zero extreme days", v, source, row[colMax])
			}
			continue
		}
		threshold, err1 := strconv.ParseFloat(row[colThreshold], 64)
		maxValue, err2 := strconv.ParseFloat(row[colMax], 64)
		if err1 != nil || err2 != nil {
			p.errorf("%s %s: unreadable threshold %q or max %q", v, source, row[colThreshold], row[colMax])
			continue
		}
		if maxValue <= threshold {
			p.errorf("%s %s: max value %v not above threshold %v", v, source, maxValue, threshold)
		}
	}
}

func columnSum(t report.Table, source string) (int, bool) {
	idx := column(t, source)
	if idx < 0 {
		return 0, false
	}
	total := 0
	for _, row := range t.Rows {
		n, err := strconv.Atoi(row[idx])
		if err != nil {
			continue
		}
		total += n
	}
	return total, true
}

type levelKey struct {
	source   string
	variable string
}

type levelPoint struct {
	period float64
	level  float64
}

func validateReturnLevels(tables map[string]report.Table) *phase {
	p := &phase{name: "Return levels non-decreasing in period"}
	t, ok := tables[report.TableReturnLevels]
	if !ok {
		return p
	}

	series := make(map[levelKey][]levelPoint)
	for _, row := range t.Rows {
		if row[3] == "" {
			continue
		}
		period, err1 := strconv.ParseFloat(row[2], 64)
		level, err2 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil {
			p.errorf("%s %s: unreadable period %q or level %q", row[0], row[1], row[2], row[3])
			continue
		}
		k := levelKey{source: row[0], variable: row[1]}
		series[k] = append(series[k], levelPoint{period: period, level: level})
	}

	for k, points := range series {
		sort.Slice(points, func(i, j int) bool { return points[i].period < points[j].period })
		for i := 1; i < len(points); i++ {
			if points[i].level < points[i-1].level {
				p.errorf("%s %s: level %v at %vy below %v at %vy", k.source, k.variable,
					points[i].level, points[i].period, points[i-1].level, points[i-1].period)
			}
		}
	}

	if legacy, ok := tables[report.TableReturnLevel50]; ok {
		for _, row := range legacy.Rows {
			if row[2] != "50" {
				p.errorf("%s: row for %s %s has period %s", report.TableReturnLevel50, row[0], row[1], row[2])
			}
		}
	}
	return p
}
