// Command genmock writes synthetic daily wind data for one site, one CSV per
// source, in the layouts the real fetchers produce. A shared site climate is
// generated once and each source observes it with its own bias, noise, gaps
// and column naming, so the multi-source comparisons have something to find.
//
// Usage:
//
//	go run ./cmd/genmock -out data/dakar -site dakar -years 20 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat/distuv"
)

// sourceDef describes how one mock source observes the site climate.
type sourceDef struct {
	file      string // filename prefix, the site name is appended
	timeCol   string
	meanCol   string
	gustCol   string // empty: no gust column
	dirCol    string // empty: no direction column
	bias      float64
	noise     float64
	nullRate  float64
	firstYear int // years skipped at the start of the record
}

var sources = []sourceDef{
	{file: "meteostat1", timeCol: "time", meanCol: "windspeed_mean", gustCol: "windspeed_gust", dirCol: "wind_direction", bias: 0, noise: 0.4, nullRate: 0.02},
	{file: "openmeteo", timeCol: "time", meanCol: "wind_speed", gustCol: "wind_gust", bias: 0.6, noise: 0.8, nullRate: 0.005},
	{file: "era5_daily", timeCol: "date", meanCol: "windspeed_mean", gustCol: "windspeed_gust", dirCol: "wind_direction", bias: -0.8, noise: 0.3, nullRate: 0},
	{file: "nasa_power", timeCol: "time", meanCol: "windspeed_mean", bias: -1.2, noise: 0.6, nullRate: 0.01, firstYear: 3},
}

// day is one day of the underlying site climate.
type day struct {
	date      time.Time
	mean      float64
	gust      float64
	direction float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the source CSV files")
	site := flag.String("site", "site", "site name appended to each filename")
	years := flag.Int("years", 20, "number of years to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	endYear := flag.Int("end-year", 2024, "last generated year")
	flag.Parse()

	if *out == "" || *years < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -years >= 1")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	climate := generateClimate(*endYear-*years+1, *years, *seed)
	log.Printf("climate: %d days, %d years", len(climate), *years)

	for i, s := range sources {
		rng := rand.New(rand.NewPCG(*seed, uint64(i)+1))
		records := observe(s, climate, rng)
		if len(records) == 1 {
			log.Printf("%s: record starts after the last year, skipped", s.file)
			continue
		}
		path := filepath.Join(*out, s.file+"_"+*site+".csv")
		if err := writeCSV(path, records); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("%s: %d rows -> %s", s.file, len(records)-1, path)
	}
	return nil
}

// generateClimate draws calm days from a Weibull distribution and one storm
// day per year from a Gumbel distribution, so annual maxima are Gumbel shaped.
func generateClimate(firstYear, years int, seed uint64) []day {
	rng := rand.New(rand.NewPCG(seed, 0))
	calm := distuv.Weibull{K: 2, Lambda: 6, Src: rng}
	storm := distuv.GumbelRight{Mu: 21, Beta: 3, Src: rng}

	var days []day
	for y := firstYear; y < firstYear+years; y++ {
		start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		n := start.AddDate(1, 0, 0).Sub(start).Hours() / 24
		stormDay := rng.IntN(int(n))
		for i := 0; i < int(n); i++ {
			mean := calm.Rand()
			if i == stormDay {
				mean = math.Max(storm.Rand(), mean)
			}
			days = append(days, day{
				date:      start.AddDate(0, 0, i),
				mean:      mean,
				gust:      mean * (1.3 + 0.3*rng.Float64()),
				direction: math.Mod(240+rng.NormFloat64()*60+360, 360),
			})
		}
	}
	return days
}

// observe renders the climate as one source would report it, header first.
func observe(s sourceDef, climate []day, rng *rand.Rand) [][]string {
	header := []string{s.timeCol, s.meanCol}
	if s.gustCol != "" {
		header = append(header, s.gustCol)
	}
	if s.dirCol != "" {
		header = append(header, s.dirCol)
	}
	records := [][]string{header}

	skipBefore := climate[0].date.AddDate(s.firstYear, 0, 0)
	for _, d := range climate {
		if d.date.Before(skipBefore) {
			continue
		}
		row := []string{d.date.Format(time.DateOnly), value(d.mean, s, rng)}
		if s.gustCol != "" {
			row = append(row, value(d.gust, s, rng))
		}
		if s.dirCol != "" {
			row = append(row, strconv.FormatFloat(math.Round(d.direction), 'f', -1, 64))
		}
		records = append(records, row)
	}
	return records
}

func value(v float64, s sourceDef, rng *rand.Rand) string {
	if rng.Float64() < s.nullRate {
		return ""
	}
	v = math.Max(0, v+s.bias+rng.NormFloat64()*s.noise)
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func writeCSV(path string, records [][]string) error {
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return df.Err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
