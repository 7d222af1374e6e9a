package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

// SiteConfig describes one site to analyze. Thresholds are always usable: bad
// or missing values were already replaced by the documented defaults.
type SiteConfig struct {
	Name       string `validate:"required"`
	Folder     string `validate:"required"`
	Thresholds domain.SiteThresholds
}

// Site converts the configuration to the domain value.
func (s SiteConfig) Site() domain.Site {
	return domain.Site{Name: s.Name, Folder: s.Folder, Thresholds: s.Thresholds}
}

// siteFile mirrors the YAML layout. Threshold and period fields are kept as
// nodes so that malformed values can fall back instead of failing the decode.
type siteFile struct {
	Name          string    `yaml:"name"`
	Folder        string    `yaml:"folder"`
	MeanThreshold yaml.Node `yaml:"building_code_windspeed_mean_50y"`
	GustThreshold yaml.Node `yaml:"building_code_windspeed_gust_50y"`
	ReturnPeriods yaml.Node `yaml:"return_periods_years"`
}

// LoadSite reads a site file. A relative folder is resolved against the file's
// directory; a missing folder defaults to a directory named after the site.
func LoadSite(path string) (SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("read site file: %w", err)
	}
	sc, err := ParseSite(data)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(sc.Folder) {
		sc.Folder = filepath.Join(filepath.Dir(path), sc.Folder)
	}
	return sc, nil
}

// ParseSite decodes a site document. JSON documents are accepted as well, which
// is how sites arrive in analysis requests.
func ParseSite(data []byte) (SiteConfig, error) {
	var f siteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return SiteConfig{}, fmt.Errorf("decode site: %w", err)
	}

	sc := SiteConfig{
		Name:   strings.TrimSpace(f.Name),
		Folder: strings.TrimSpace(f.Folder),
		Thresholds: domain.SiteThresholds{
			MeanThreshold: thresholdFromNode(f.MeanThreshold),
			GustThreshold: thresholdFromNode(f.GustThreshold),
			ReturnPeriods: periodsFromNode(f.ReturnPeriods),
		},
	}
	if sc.Folder == "" {
		sc.Folder = sc.Name
	}
	if err := validate.Struct(sc); err != nil {
		return SiteConfig{}, describeValidation(err)
	}
	return sc, nil
}

// SiteFromFlags builds a site from command-line values using the same lenient
// rules as the site file.
func SiteFromFlags(name, folder, meanThreshold, gustThreshold, returnPeriods string) (SiteConfig, error) {
	sc := SiteConfig{
		Name:   strings.TrimSpace(name),
		Folder: strings.TrimSpace(folder),
		Thresholds: domain.SiteThresholds{
			MeanThreshold: ParseThreshold(meanThreshold),
			GustThreshold: ParseThreshold(gustThreshold),
			ReturnPeriods: ParseReturnPeriods(returnPeriods),
		},
	}
	if sc.Folder == "" {
		sc.Folder = sc.Name
	}
	if err := validate.Struct(sc); err != nil {
		return SiteConfig{}, describeValidation(err)
	}
	return sc, nil
}

// ParseThreshold reads a threshold in m/s. Empty, NaN, infinite, or unparsable
// input yields domain.DefaultThreshold.
func ParseThreshold(s string) float64 {
	v, ok := parseFinite(s)
	if !ok {
		return domain.DefaultThreshold
	}
	return v
}

// ParseReturnPeriods reads a comma separated list of return periods in years.
// Any bad element discards the whole list in favor of the default. Duplicates
// are dropped, keeping first occurrences.
func ParseReturnPeriods(s string) []float64 {
	if strings.TrimSpace(s) == "" {
		return defaultPeriods()
	}
	return periodsFromStrings(strings.Split(s, ","))
}

func thresholdFromNode(n yaml.Node) float64 {
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return domain.DefaultThreshold
	}
	return ParseThreshold(n.Value)
}

func periodsFromNode(n yaml.Node) []float64 {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return defaultPeriods()
		}
		return ParseReturnPeriods(n.Value)
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return defaultPeriods()
			}
			items = append(items, c.Value)
		}
		return periodsFromStrings(items)
	default:
		return defaultPeriods()
	}
}

func periodsFromStrings(items []string) []float64 {
	if len(items) == 0 {
		return defaultPeriods()
	}
	seen := make(map[float64]struct{}, len(items))
	out := make([]float64, 0, len(items))
	for _, item := range items {
		v, ok := parseFinite(item)
		if !ok {
			return defaultPeriods()
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func defaultPeriods() []float64 {
	return append([]float64(nil), domain.DefaultReturnPeriods...)
}
