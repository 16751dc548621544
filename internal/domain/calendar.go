package domain

import (
	"fmt"
	"math"
)

// UnknownMonth is the sentinel month for a day-of-year outside the year.
const UnknownMonth = "unknown"

// LeapRule selects how leap years are identified.
type LeapRule string

const (
	// LeapSimplified treats a year as leap when divisible by 4 and not by 100.
	// It omits the /400 exception, so 2000 is not a leap year.
	LeapSimplified LeapRule = "simplified"
	// LeapGregorian applies the full Gregorian rule including /400.
	LeapGregorian LeapRule = "gregorian"
)

// ParseLeapRule validates a rule name. Empty selects LeapSimplified.
func ParseLeapRule(s string) (LeapRule, error) {
	switch LeapRule(s) {
	case "", LeapSimplified:
		return LeapSimplified, nil
	case LeapGregorian:
		return LeapGregorian, nil
	default:
		return "", fmt.Errorf("unknown leap year rule %q", s)
	}
}

var (
	monthEnds     = [12]int{31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}
	leapMonthEnds = [12]int{31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366}
	monthLabels   = [12]string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
)

// Calendar maps (year, day-of-year) pairs to calendar months.
type Calendar struct {
	Rule LeapRule
}

// DefaultCalendar uses the simplified leap rule.
var DefaultCalendar = Calendar{Rule: LeapSimplified}

// IsLeap reports whether year is a leap year under the calendar's rule.
func (c Calendar) IsLeap(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return c.Rule == LeapGregorian && year%400 == 0
}

// DaysIn returns 366 for leap years and 365 otherwise.
func (c Calendar) DaysIn(year int) int {
	if c.IsLeap(year) {
		return 366
	}
	return 365
}

// MonthOf returns the two-digit month ("01".."12") containing the given
// fractional day-of-year, or UnknownMonth when the day falls outside the year.
func (c Calendar) MonthOf(year int, dayOfYear float64) string {
	if math.IsNaN(dayOfYear) || math.IsInf(dayOfYear, 0) {
		return UnknownMonth
	}
	day := int(math.Floor(dayOfYear))
	if day < 1 {
		return UnknownMonth
	}

	ends := &monthEnds
	if c.IsLeap(year) {
		ends = &leapMonthEnds
	}
	for i, end := range ends {
		if end >= day {
			return monthLabels[i]
		}
	}
	return UnknownMonth
}

// BucketOf returns the month-year bucket for a record's discovery date.
func (c Calendar) BucketOf(year int, dayOfYear float64) MonthBucket {
	return MonthBucket{Year: year, Month: c.MonthOf(year, dayOfYear)}
}

// MonthOf is DefaultCalendar.MonthOf.
func MonthOf(year int, dayOfYear float64) string {
	return DefaultCalendar.MonthOf(year, dayOfYear)
}

// MonthBucket is a calendar month within a specific year.
type MonthBucket struct {
	Year  int    `json:"year"`
	Month string `json:"month"`
}

// Key renders the bucket as "YYYY-MM", or UnknownMonth for out-of-range days.
func (b MonthBucket) Key() string {
	if b.Month == UnknownMonth {
		return UnknownMonth
	}
	return fmt.Sprintf("%04d-%s", b.Year, b.Month)
}

// Known reports whether the bucket resolved to a real month.
func (b MonthBucket) Known() bool {
	return b.Month != UnknownMonth
}
