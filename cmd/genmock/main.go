// Command genmock writes a deterministic synthetic wildfire dataset in the
// compressed contract format, plus the trend fixture computed from it. The
// output is used for local runs of the dashboard and for the validate tool.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/fires.csv.gz \
//	  -trends-out data/mock/trends.json \
//	  -rows 5000 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvgz"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

const (
	firstYear = 1992
	lastYear  = 2015
)

// stateDef describes where a state's synthetic fires land and how its yearly
// count drifts over time.
type stateDef struct {
	code     string
	counties []string
	lon, lat [2]float64
	weight   float64
	growth   float64 // relative change in yearly share per year
}

var states = []stateDef{
	{code: "CA", counties: []string{"Los Angeles", "Riverside", "San Diego", "Shasta"}, lon: [2]float64{-123.5, -116.0}, lat: [2]float64{33.0, 41.5}, weight: 5, growth: 0.02},
	{code: "TX", counties: []string{"Travis", "Bastrop", "Harris"}, lon: [2]float64{-104.0, -94.5}, lat: [2]float64{26.5, 36.0}, weight: 4, growth: 0.03},
	{code: "GA", counties: []string{"Ware", "Clinch"}, lon: [2]float64{-85.0, -81.5}, lat: [2]float64{30.8, 34.8}, weight: 3, growth: -0.02},
	{code: "AZ", counties: []string{"Maricopa", "Coconino", "Pima"}, lon: [2]float64{-114.5, -109.5}, lat: [2]float64{31.5, 36.8}, weight: 2, growth: 0.01},
	{code: "NY", counties: []string{"Suffolk"}, lon: [2]float64{-79.5, -72.0}, lat: [2]float64{40.6, 44.9}, weight: 1, growth: -0.03},
}

var causes = []string{
	"Lightning", "Equipment Use", "Smoking", "Campfire", "Debris Burning", "Railroad",
	"Arson", "Children", "Miscellaneous", "Fireworks", "Powerline", "Structure",
	"Missing/Undefined",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the gzip-compressed CSV")
	trendsOut := flag.String("trends-out", "", "optional output path for the trend JSON fixture")
	rows := flag.Int("rows", 5000, "number of fire rows to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	outOfRange := flag.Int("out-of-range", 3, "rows with a discovery day outside the year")
	flag.Parse()

	if *out == "" || *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -rows > 0")
	}

	// Set a fixed clock for reproducible ComputedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2017, time.May, 8, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	records := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), *rows, *outOfRange)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	w, err := csvgz.Create(*out)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.WriteRecord(rec); err != nil {
			_ = w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d records to %s", w.Rows(), *out)

	if *trendsOut == "" {
		return nil
	}
	trends := domain.ComputeTrends(domain.CountByStateYear(records), domain.TrendLinear)
	if err := writeJSON(*trendsOut, trends); err != nil {
		return err
	}
	log.Printf("wrote %d trends to %s", len(trends), *trendsOut)
	return nil
}

func generate(rng *rand.Rand, n, outOfRange int) []domain.FireRecord {
	records := make([]domain.FireRecord, 0, n)
	for i := range n {
		year := firstYear + rng.IntN(lastYear-firstYear+1)
		st := pickState(rng, year)

		doy := 1 + rng.Float64()*364
		if i < outOfRange {
			// Day 366 of a non-leap year falls outside the calendar.
			year = 2013
			doy = 366.5
		}

		size := math.Exp(rng.NormFloat64()*2.0 - 0.5)
		code := 1 + rng.IntN(len(causes))

		records = append(records, domain.FireRecord{
			Year:       year,
			DayOfYear:  math.Round(doy*10) / 10,
			CauseCode:  float64(code),
			CauseDescr: causes[code-1],
			Longitude:  round4(st.lon[0] + rng.Float64()*(st.lon[1]-st.lon[0])),
			Latitude:   round4(st.lat[0] + rng.Float64()*(st.lat[1]-st.lat[0])),
			Size:       round4(size),
			SizeClass:  sizeClass(size),
			State:      st.code,
			County:     pickCounty(rng, st),
		})
	}
	return records
}

// pickState draws a state weighted by its share, scaled by its growth
// relative to the first year so each state carries a trend.
func pickState(rng *rand.Rand, year int) stateDef {
	weights := make([]float64, len(states))
	total := 0.0
	for i, s := range states {
		weights[i] = math.Max(0.05, s.weight*(1+s.growth*float64(year-firstYear)))
		total += weights[i]
	}
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return states[i]
		}
		x -= w
	}
	return states[len(states)-1]
}

// pickCounty leaves roughly a third of counties blank, as in the source data.
func pickCounty(rng *rand.Rand, st stateDef) string {
	if rng.IntN(3) == 0 {
		return ""
	}
	return st.counties[rng.IntN(len(st.counties))]
}

// sizeClass applies the FPA FOD acreage classes A through G.
func sizeClass(acres float64) string {
	switch {
	case acres < 0.26:
		return "A"
	case acres < 10:
		return "B"
	case acres < 100:
		return "C"
	case acres < 300:
		return "D"
	case acres < 1000:
		return "E"
	case acres < 5000:
		return "F"
	default:
		return "G"
	}
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
