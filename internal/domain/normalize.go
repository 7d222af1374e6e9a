package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// columnAliases maps generic provider column names to canonical ones. An alias is
// used only when the canonical column is absent.
var columnAliases = map[Variable]string{
	VarMean: "wind_speed",
	VarGust: "wind_gust",
}

// timeLayouts are tried in order when parsing a time cell.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102",
}

// missingSentinels are cell values treated as missing, compared case-insensitively.
var missingSentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"nat":  {},
	"none": {},
	"null": {},
}

// Normalize maps a raw provider table into the canonical schema.
//
// The time column is "time", else "date"; values are parsed as UTC and rows with
// unparsable times are kept without a time. Rows are stably sorted by time with
// missing times last. A table without any time column passes through: only
// canonically named columns are read and row order is untouched.
func Normalize(source string, t RawTable) Series {
	idx := columnIndex(t.Columns)

	timeCol, hasTime := idx[string(VarTime)]
	if !hasTime {
		timeCol, hasTime = idx["date"]
	}

	resolve := func(v Variable) (int, bool) {
		if i, ok := idx[string(v)]; ok {
			return i, true
		}
		if !hasTime {
			return 0, false
		}
		alias, ok := columnAliases[v]
		if !ok {
			return 0, false
		}
		i, ok := idx[alias]
		return i, ok
	}

	meanCol, hasMean := resolve(VarMean)
	gustCol, hasGust := resolve(VarGust)
	dirCol, hasDir := resolve(VarDirection)

	series := Series{
		Source: source,
		Schema: Schema{Time: hasTime, Mean: hasMean, Gust: hasGust, Direction: hasDir},
	}

	records := make([]DailyRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		var rec DailyRecord
		if hasTime {
			rec.Time = parseTime(cell(row, timeCol))
		}
		if hasMean {
			rec.Mean = parseFloat(cell(row, meanCol))
		}
		if hasGust {
			rec.Gust = parseFloat(cell(row, gustCol))
		}
		if hasDir {
			rec.Direction = parseFloat(cell(row, dirCol))
		}
		records = append(records, rec)
	}

	if hasTime {
		sort.SliceStable(records, func(i, j int) bool {
			a, b := records[i], records[j]
			if !a.HasTime() {
				return false
			}
			if !b.HasTime() {
				return true
			}
			return a.Time.Before(b.Time)
		})
	}

	series.Records = records
	return series
}

// columnIndex maps trimmed column names to their first position.
func columnIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isMissing(s string) bool {
	_, ok := missingSentinels[strings.ToLower(s)]
	return ok
}

// parseFloat parses a numeric cell, returning nil for missing or non-finite values.
func parseFloat(s string) *float64 {
	if isMissing(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseTime parses a time cell as UTC, returning the zero time when it cannot.
// Values without an offset are taken as UTC.
func parseTime(s string) time.Time {
	if isMissing(s) {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
