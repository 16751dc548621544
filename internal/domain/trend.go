package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TrendScale selects the response variable of the per-state fit.
type TrendScale string

const (
	// TrendLinear fits the raw yearly count.
	TrendLinear TrendScale = "linear"
	// TrendLog fits the natural logarithm of the yearly count.
	TrendLog TrendScale = "log"
)

// ParseTrendScale validates a scale name. Empty selects TrendLinear.
func ParseTrendScale(s string) (TrendScale, error) {
	switch TrendScale(s) {
	case "", TrendLinear:
		return TrendLinear, nil
	case TrendLog:
		return TrendLog, nil
	default:
		return "", fmt.Errorf("unknown trend scale %q", s)
	}
}

// YearCount is one (year, count) observation for a state.
type YearCount struct {
	Year  int
	Count int
}

// TrendCoefficient is the least-squares trend of a state's yearly fire count.
// Slope and Intercept are meaningful only when Defined is true.
type TrendCoefficient struct {
	State      string     `json:"state"`
	Slope      float64    `json:"-"`
	Intercept  float64    `json:"-"`
	Years      int        `json:"years"`
	Defined    bool       `json:"defined"`
	Scale      TrendScale `json:"scale"`
	ComputedAt time.Time  `json:"computed_at"`
}

// MarshalJSON reports undefined slopes as null rather than zero.
func (t TrendCoefficient) MarshalJSON() ([]byte, error) {
	type alias TrendCoefficient
	out := struct {
		alias
		Slope     *float64 `json:"slope"`
		Intercept *float64 `json:"intercept"`
	}{alias: alias(t)}
	if t.Defined {
		out.Slope = &t.Slope
		out.Intercept = &t.Intercept
	}
	return json.Marshal(out)
}

// Slope returns the ordinary least squares slope of count on year. ok is
// false when the points do not span at least two distinct years.
func Slope(points []YearCount, scale TrendScale) (slope, intercept float64, ok bool) {
	if distinctYears(points) < 2 {
		return 0, 0, false
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Year)
		ys[i] = float64(p.Count)
		if scale == TrendLog {
			ys[i] = math.Log(float64(p.Count))
		}
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, 0, false
	}
	return slope, intercept, true
}

// ComputeTrends fits one trend per state from per-state yearly counts.
// Output is sorted by state. States with a single observed year are included
// with Defined=false.
func ComputeTrends(counts []StateYearCount, scale TrendScale) []TrendCoefficient {
	byState := make(map[string][]YearCount)
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		byState[c.State] = append(byState[c.State], YearCount{Year: c.Year, Count: c.Count})
	}

	now := Now()
	out := make([]TrendCoefficient, 0, len(byState))
	for state, points := range byState {
		slope, intercept, ok := Slope(points, scale)
		out = append(out, TrendCoefficient{
			State:      state,
			Slope:      slope,
			Intercept:  intercept,
			Years:      distinctYears(points),
			Defined:    ok,
			Scale:      scale,
			ComputedAt: now,
		})
	}
	slices.SortFunc(out, func(a, b TrendCoefficient) int { return cmp.Compare(a.State, b.State) })
	return out
}

func distinctYears(points []YearCount) int {
	seen := make(map[int]struct{}, len(points))
	for _, p := range points {
		seen[p.Year] = struct{}{}
	}
	return len(seen)
}
