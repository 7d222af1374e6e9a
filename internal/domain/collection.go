package domain

import (
	"log/slog"
	"sort"
	"strings"
)

// SourceCollection maps source names to canonical series for one site. Every
// entry has at least one record. Iteration follows ascending source name so that
// repeated runs produce identical output.
type SourceCollection struct {
	series map[string]Series
	names  []string
}

// NewSourceCollection normalizes raw tables and drops entries that are not
// tabular, empty, or left without records. Dropped entries are logged and
// reported as skipped outcomes; they never produce an error.
func NewSourceCollection(tables map[string]RawTable, logger *slog.Logger) (SourceCollection, []Outcome) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	c := SourceCollection{series: make(map[string]Series, len(tables))}
	outcomes := make([]Outcome, 0, len(names))

	for _, name := range names {
		t := tables[name]
		var reason string
		switch {
		case !t.Tabular():
			reason = "not tabular"
		case t.Empty():
			reason = "empty table"
		}
		if reason != "" {
			logger.Warn("source dropped", "source", name, "reason", reason)
			outcomes = append(outcomes, skipped(StageCollect, name, "", reason))
			continue
		}

		s := Normalize(name, t)
		if len(s.Records) == 0 {
			logger.Warn("source dropped", "source", name, "reason", "no usable rows")
			outcomes = append(outcomes, skipped(StageCollect, name, "", "no usable rows"))
			continue
		}

		c.series[name] = s
		c.names = append(c.names, name)
		outcomes = append(outcomes, ok(StageCollect, name, ""))
	}

	return c, outcomes
}

// CollectionOf builds a collection from already canonical series, dropping empty ones.
func CollectionOf(series ...Series) SourceCollection {
	c := SourceCollection{series: make(map[string]Series, len(series))}
	for _, s := range series {
		if len(s.Records) == 0 {
			continue
		}
		if _, dup := c.series[s.Source]; !dup {
			c.names = append(c.names, s.Source)
		}
		c.series[s.Source] = s
	}
	sort.Strings(c.names)
	return c
}

// Len returns the number of sources.
func (c SourceCollection) Len() int { return len(c.names) }

// Empty reports whether no source survived assembly.
func (c SourceCollection) Empty() bool { return len(c.names) == 0 }

// Names returns the source names in iteration order.
func (c SourceCollection) Names() []string {
	return append([]string(nil), c.names...)
}

// Get returns the series for a source.
func (c SourceCollection) Get(name string) (Series, bool) {
	s, ok := c.series[name]
	return s, ok
}

// Each calls fn for every series in iteration order.
func (c SourceCollection) Each(fn func(Series)) {
	for _, name := range c.names {
		fn(c.series[name])
	}
}

// PrefixRule binds a filename prefix to a canonical source key.
type PrefixRule struct {
	Prefix string
	Source string
}

// PrefixRules is an ordered rule table. Resolution picks the longest matching
// prefix; among prefixes of equal length the earlier rule wins.
type PrefixRules []PrefixRule

// DefaultPrefixRules recognizes the daily files written by the fetchers. Hourly
// ERA5 files ("era5_<site>") deliberately match nothing.
var DefaultPrefixRules = PrefixRules{
	{Prefix: "meteostat1", Source: "meteostat1"},
	{Prefix: "meteostat2", Source: "meteostat2"},
	{Prefix: "noaa_station1", Source: "noaa_station1"},
	{Prefix: "noaa_station2", Source: "noaa_station2"},
	{Prefix: "noaa", Source: "noaa"},
	{Prefix: "openmeteo", Source: "openmeteo"},
	{Prefix: "nasa_power", Source: "nasa_power"},
	{Prefix: "era5_daily", Source: "era5"},
	{Prefix: "visualcrossing", Source: "visualcrossing"},
}

// Resolve returns the source key for a filename stem.
func (rules PrefixRules) Resolve(stem string) (string, bool) {
	best := -1
	for i, r := range rules {
		if r.Prefix == "" || !strings.HasPrefix(stem, r.Prefix) {
			continue
		}
		if best < 0 || len(r.Prefix) > len(rules[best].Prefix) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return rules[best].Source, true
}
