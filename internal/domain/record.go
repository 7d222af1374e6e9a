package domain

import "time"

// Variable names a canonical column.
type Variable string

const (
	VarTime      Variable = "time"
	VarMean      Variable = "windspeed_mean"
	VarGust      Variable = "windspeed_gust"
	VarDirection Variable = "wind_direction"
)

// WindVariables are the speed variables analyzed for extremes, in stage order.
var WindVariables = []Variable{VarMean, VarGust}

// RawTable is an untyped per-source daily table as delivered by a fetcher or read
// from disk. Cells are kept as text; the normalizer decides what they mean.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Tabular reports whether the table has at least one column.
func (t RawTable) Tabular() bool { return len(t.Columns) > 0 }

// Empty reports whether the table has no data rows.
func (t RawTable) Empty() bool { return len(t.Rows) == 0 }

// DailyRecord is one canonical row. A zero Time means the time was missing or
// unparsable; nil values are missing.
type DailyRecord struct {
	Time      time.Time
	Mean      *float64
	Gust      *float64
	Direction *float64
}

// HasTime reports whether the record carries a usable time.
func (r DailyRecord) HasTime() bool { return !r.Time.IsZero() }

// Value returns the record's value for a speed or direction variable.
func (r DailyRecord) Value(v Variable) *float64 {
	switch v {
	case VarMean:
		return r.Mean
	case VarGust:
		return r.Gust
	case VarDirection:
		return r.Direction
	default:
		return nil
	}
}

// Schema records which canonical columns a source provided.
type Schema struct {
	Time      bool
	Mean      bool
	Gust      bool
	Direction bool
}

// Has reports whether the column for v is present.
func (s Schema) Has(v Variable) bool {
	switch v {
	case VarTime:
		return s.Time
	case VarMean:
		return s.Mean
	case VarGust:
		return s.Gust
	case VarDirection:
		return s.Direction
	default:
		return false
	}
}

// Series is the canonical daily sequence of one source.
type Series struct {
	Source  string
	Schema  Schema
	Records []DailyRecord
}

// Point is a time-bearing, non-null value of one variable.
type Point struct {
	Time  time.Time
	Value float64
}

// HasColumn reports whether the source provided column v.
func (s Series) HasColumn(v Variable) bool { return s.Schema.Has(v) }

// Points returns the rows with a time and a value for v, in record order.
func (s Series) Points(v Variable) []Point {
	if !s.Schema.Time || !s.Schema.Has(v) {
		return nil
	}
	out := make([]Point, 0, len(s.Records))
	for _, r := range s.Records {
		val := r.Value(v)
		if !r.HasTime() || val == nil {
			continue
		}
		out = append(out, Point{Time: r.Time, Value: *val})
	}
	return out
}

// TimedRecords returns the records that carry a usable time.
func (s Series) TimedRecords() []DailyRecord {
	if !s.Schema.Time {
		return nil
	}
	out := make([]DailyRecord, 0, len(s.Records))
	for _, r := range s.Records {
		if r.HasTime() {
			out = append(out, r)
		}
	}
	return out
}

// SiteThresholds is the per-site analysis configuration. It is built once per
// run and never modified.
type SiteThresholds struct {
	MeanThreshold float64
	GustThreshold float64
	ReturnPeriods []float64
}

// DefaultThreshold is the building-code fallback for both mean wind and gusts (m/s).
const DefaultThreshold = 25.0

// DefaultReturnPeriods is used when no valid return periods are configured.
var DefaultReturnPeriods = []float64{50}

// DefaultSiteThresholds returns the documented fallbacks.
func DefaultSiteThresholds() SiteThresholds {
	return SiteThresholds{
		MeanThreshold: DefaultThreshold,
		GustThreshold: DefaultThreshold,
		ReturnPeriods: append([]float64(nil), DefaultReturnPeriods...),
	}
}

// Threshold returns the building-code threshold for a speed variable.
func (t SiteThresholds) Threshold(v Variable) float64 {
	if v == VarGust {
		return t.GustThreshold
	}
	return t.MeanThreshold
}
