package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthOf(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		day      float64
		expected string
	}{
		{"leap year day 60 is february", 2012, 60, "02"},
		{"non-leap day 60 is march first", 2013, 60, "03"},
		{"first day", 2013, 1, "01"},
		{"fractional day floors", 2013, 31.9, "01"},
		{"day 32 is february", 2013, 32, "02"},
		{"last day non-leap", 2013, 365, "12"},
		{"last day leap", 2012, 366, "12"},
		{"day 366 in non-leap year", 2013, 366, UnknownMonth},
		{"far out of range", 2012, 400, UnknownMonth},
		{"zero", 2012, 0, UnknownMonth},
		{"negative", 2012, -3, UnknownMonth},
		{"NaN", 2012, math.NaN(), UnknownMonth},
		{"infinity", 2012, math.Inf(1), UnknownMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MonthOf(tt.year, tt.day))
		})
	}
}

func TestMonthOf_OutOfRangeForAnyYear(t *testing.T) {
	for year := 1992; year <= 2015; year++ {
		assert.Equal(t, UnknownMonth, MonthOf(year, 400), "year %d", year)
	}
}

func TestMonthOf_MonotonicWithinYear(t *testing.T) {
	valid := map[string]bool{}
	for _, m := range monthLabels {
		valid[m] = true
	}

	for _, year := range []int{2011, 2012, 1900, 2000} {
		days := DefaultCalendar.DaysIn(year)
		prev := "00"
		for d := 1; d <= days; d++ {
			for _, frac := range []float64{0, 0.5} {
				m := MonthOf(year, float64(d)+frac)
				require.True(t, valid[m], "year %d day %v gave %q", year, float64(d)+frac, m)
				require.GreaterOrEqual(t, m, prev, "year %d day %d", year, d)
				prev = m
			}
		}
	}
}

func TestMonthOf_EveryMonthReached(t *testing.T) {
	seen := map[string]int{}
	for d := 1; d <= 365; d++ {
		seen[MonthOf(2013, float64(d))]++
	}
	require.Len(t, seen, 12)
	assert.Equal(t, 28, seen["02"])
	assert.Equal(t, 31, seen["12"])
}

func TestCalendar_LeapRules(t *testing.T) {
	simplified := Calendar{Rule: LeapSimplified}
	gregorian := Calendar{Rule: LeapGregorian}

	tests := []struct {
		year       int
		simplified bool
		gregorian  bool
	}{
		{2012, true, true},
		{2013, false, false},
		{1900, false, false},
		{2000, false, true},
		{2100, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.simplified, simplified.IsLeap(tt.year), "simplified %d", tt.year)
		assert.Equal(t, tt.gregorian, gregorian.IsLeap(tt.year), "gregorian %d", tt.year)
	}

	// Day 366 of 2000 only resolves under the full rule.
	assert.Equal(t, UnknownMonth, simplified.MonthOf(2000, 366))
	assert.Equal(t, "12", gregorian.MonthOf(2000, 366))
	assert.Equal(t, "03", simplified.MonthOf(2000, 60))
	assert.Equal(t, "02", gregorian.MonthOf(2000, 60))
}

func TestParseLeapRule(t *testing.T) {
	r, err := ParseLeapRule("")
	require.NoError(t, err)
	assert.Equal(t, LeapSimplified, r)

	r, err = ParseLeapRule("gregorian")
	require.NoError(t, err)
	assert.Equal(t, LeapGregorian, r)

	_, err = ParseLeapRule("julian")
	require.Error(t, err)
}

func TestMonthBucket_Key(t *testing.T) {
	assert.Equal(t, "2012-02", DefaultCalendar.BucketOf(2012, 60).Key())
	assert.Equal(t, "0999-01", MonthBucket{Year: 999, Month: "01"}.Key())

	unknown := DefaultCalendar.BucketOf(2013, 366)
	assert.Equal(t, UnknownMonth, unknown.Key())
	assert.Equal(t, 2013, unknown.Year)
	assert.False(t, unknown.Known())
}
