package domain

import (
	"cmp"
	"slices"
)

// StateCount is the number of fires recorded in a state.
type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// StateYearCount is the number of fires recorded in a state during a year.
type StateYearCount struct {
	State string `json:"state"`
	Year  int    `json:"year"`
	Count int    `json:"count"`
}

// StateMonthCount is the number of fires recorded in a state during a
// month-year bucket. Month is UnknownMonth for out-of-range discovery days.
type StateMonthCount struct {
	State  string `json:"state"`
	Year   int    `json:"year"`
	Month  string `json:"month"`
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// Known reports whether the count belongs to a real calendar month.
func (c StateMonthCount) Known() bool {
	return MonthBucket{Year: c.Year, Month: c.Month}.Known()
}

// CountByState groups records by state, sorted by state code.
func CountByState(records []FireRecord) []StateCount {
	counts := make(map[string]int)
	for i := range records {
		counts[records[i].State]++
	}

	out := make([]StateCount, 0, len(counts))
	for state, n := range counts {
		out = append(out, StateCount{State: state, Count: n})
	}
	slices.SortFunc(out, func(a, b StateCount) int { return cmp.Compare(a.State, b.State) })
	return out
}

type stateYear struct {
	state string
	year  int
}

// CountByStateYear groups records by state and year, sorted by state then year.
func CountByStateYear(records []FireRecord) []StateYearCount {
	counts := make(map[stateYear]int)
	for i := range records {
		counts[stateYear{records[i].State, records[i].Year}]++
	}

	out := make([]StateYearCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StateYearCount{State: k.state, Year: k.year, Count: n})
	}
	slices.SortFunc(out, func(a, b StateYearCount) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

type stateBucket struct {
	state  string
	bucket MonthBucket
}

// CountByStateMonth groups records by state and month-year bucket using cal.
// Output is sorted by state, year, then month, with the unknown month last
// within its year.
func CountByStateMonth(records []FireRecord, cal Calendar) []StateMonthCount {
	counts := make(map[stateBucket]int)
	for i := range records {
		b := cal.BucketOf(records[i].Year, records[i].DayOfYear)
		counts[stateBucket{records[i].State, b}]++
	}

	out := make([]StateMonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StateMonthCount{
			State:  k.state,
			Year:   k.bucket.Year,
			Month:  k.bucket.Month,
			Bucket: k.bucket.Key(),
			Count:  n,
		})
	}
	slices.SortFunc(out, func(a, b StateMonthCount) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(monthOrder(a.Month), monthOrder(b.Month))
	})
	return out
}

// monthOrder sorts "01".."12" numerically and UnknownMonth after them.
func monthOrder(m string) string {
	if m == UnknownMonth {
		return "99"
	}
	return m
}

// YearRange returns the smallest and largest year present. ok is false for
// an empty slice.
func YearRange(records []FireRecord) (minYear, maxYear int, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}
	minYear, maxYear = records[0].Year, records[0].Year
	for i := range records[1:] {
		y := records[i+1].Year
		minYear = min(minYear, y)
		maxYear = max(maxYear, y)
	}
	return minYear, maxYear, true
}

// FilterYears returns the fires whose year lies in [from, to], in input order.
func FilterYears(fires []GeoFire, from, to int) []GeoFire {
	out := make([]GeoFire, 0, len(fires))
	for i := range fires {
		if fires[i].Year >= from && fires[i].Year <= to {
			out = append(out, fires[i])
		}
	}
	return out
}
