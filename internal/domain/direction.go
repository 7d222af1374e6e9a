package domain

import (
	"fmt"
	"math"
)

// DefaultDirectionBinWidth is the wind-rose sector width in degrees.
const DefaultDirectionBinWidth = 20

// DirectionBin is one wind-rose sector: the largest mean wind observed while the
// wind blew from that sector, and how many days it did.
type DirectionBin struct {
	Center  float64
	MaxMean float64
	Count   int
}

// DirectionBins is the wind-rose input for one source.
type DirectionBins struct {
	Source string
	Width  int
	Bins   []DirectionBin
}

// AnalyzeDirections bins mean wind by direction for every source providing both
// columns. Directions are reduced modulo 360; sectors are [lo, hi) except the
// last, which also holds 360. Empty sectors report zero.
func AnalyzeDirections(c SourceCollection, width int) ([]DirectionBins, []Outcome) {
	if width <= 0 || 360%width != 0 {
		width = DefaultDirectionBinWidth
	}

	var (
		results  []DirectionBins
		outcomes []Outcome
	)
	c.Each(func(s Series) {
		if !s.Schema.Direction || !s.Schema.Mean {
			outcomes = append(outcomes, skipped(StageDirections, s.Source, VarDirection, "missing wind_direction or windspeed_mean column"))
			return
		}

		nbins := 360 / width
		bins := make([]DirectionBin, nbins)
		for i := range bins {
			bins[i].Center = float64(i*width) + float64(width)/2
		}

		used := 0
		for _, r := range s.Records {
			if r.Direction == nil || r.Mean == nil {
				continue
			}
			dir := math.Mod(*r.Direction, 360)
			if dir < 0 {
				dir += 360
			}
			i := int(dir) / width
			if i >= nbins {
				i = nbins - 1
			}
			b := &bins[i]
			if b.Count == 0 || *r.Mean > b.MaxMean {
				b.MaxMean = *r.Mean
			}
			b.Count++
			used++
		}
		if used == 0 {
			outcomes = append(outcomes, skipped(StageDirections, s.Source, VarDirection, "no rows with direction and mean wind"))
			return
		}

		results = append(results, DirectionBins{Source: s.Source, Width: width, Bins: bins})
		outcomes = append(outcomes, ok(StageDirections, s.Source, VarDirection))
	})
	return results, outcomes
}

// String renders a compact description used in logs.
func (d DirectionBins) String() string {
	return fmt.Sprintf("%s: %d sectors of %d°", d.Source, len(d.Bins), d.Width)
}
