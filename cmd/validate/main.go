// Command validate checks a compressed wildfire dataset phase by phase: the
// header contract, row parsing, calendar coverage, aggregation round-trips,
// and trend definedness. It exits non-zero if any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -data "data compressed.csv.gz" -leap-rule simplified
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvgz"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

const maxDetails = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	extra  int
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) >= maxDetails {
		p.extra++
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) failures() int { return len(p.errors) + p.extra }

func (p *phase) passed() bool { return p.failures() == 0 }

func main() {
	dataPath := flag.String("data", "data compressed.csv.gz", "path to the compressed dataset")
	leapRule := flag.String("leap-rule", string(domain.LeapSimplified), "leap year rule: simplified or gregorian")
	flag.Parse()

	rule, err := domain.ParseLeapRule(*leapRule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(context.Background(), *dataPath, domain.Calendar{Rule: rule}); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, path string, cal domain.Calendar) int {
	fmt.Println("=== Wildfire Dataset Validation ===")
	fmt.Println()

	src, err := csvgz.OpenSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	defer src.Close()

	header := validateHeader(src.Header())
	records, parsing := parseRows(ctx, src)
	byState := domain.CountByState(records)
	byYear := domain.CountByStateYear(records)
	byMonth := domain.CountByStateMonth(records, cal)
	trends := domain.ComputeTrends(byYear, domain.TrendLinear)

	phases := []*phase{
		header,
		parsing,
		validateCalendar(records, cal),
		validateRoundTrip(byState, byYear, byMonth),
		validateTrends(trends),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", p.failures())
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	minYear, maxYear, _ := domain.YearRange(records)
	undefined := 0
	for _, t := range trends {
		if !t.Defined {
			undefined++
		}
	}
	fmt.Println()
	fmt.Printf("Records: %d rows, %d states, years %d-%d, %d states without a trend\n",
		len(records), len(byState), minYear, maxYear, undefined)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		if p.extra > 0 {
			fmt.Printf("  ... and %d more\n", p.extra)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateHeader requires the contract columns in contract order. A leading
// unnamed index column, as written by pandas, is tolerated.
func validateHeader(header []string) *phase {
	p := &phase{name: "Header matches column contract"}
	cols := slices.Clone(header)
	if len(cols) > 0 {
		cols[0] = strings.TrimPrefix(cols[0], "\ufeff")
	}
	if len(cols) > 0 && strings.TrimSpace(cols[0]) == "" {
		cols = cols[1:]
	}
	if !slices.Equal(cols, domain.Columns) {
		p.errorf("header %v, want %v", cols, domain.Columns)
	}
	return p
}

func parseRows(ctx context.Context, src *csvgz.Source) ([]domain.FireRecord, *phase) {
	p := &phase{name: "Every row parses"}
	idx, err := domain.IndexHeader(src.Header())
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}

	var records []domain.FireRecord //nolint:prealloc // row count unknown until EOF
	for line := 2; ; line++ {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.errorf("line %d: %v", line, err)
			break
		}
		rec, err := domain.ParseRecord(row, idx)
		if err != nil {
			p.errorf("line %d: %v", line, err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 && p.passed() {
		p.errorf("dataset has no rows")
	}
	return records, p
}

// validateCalendar checks that in-range days land in a real month and that
// only out-of-range days fall into the unknown bucket.
func validateCalendar(records []domain.FireRecord, cal domain.Calendar) *phase {
	p := &phase{name: "Discovery days map to calendar months"}
	for i, r := range records {
		month := cal.MonthOf(r.Year, r.DayOfYear)
		inRange := !math.IsNaN(r.DayOfYear) && !math.IsInf(r.DayOfYear, 0) && r.DayOfYear >= 1 && int(math.Floor(r.DayOfYear)) <= cal.DaysIn(r.Year)
		switch {
		case inRange && month == domain.UnknownMonth:
			p.errorf("row %d: day %v of %d mapped to unknown", i+1, r.DayOfYear, r.Year)
		case !inRange && month != domain.UnknownMonth:
			p.errorf("row %d: day %v of %d mapped to %s", i+1, r.DayOfYear, r.Year, month)
		}
	}
	return p
}

// validateRoundTrip checks that year and month buckets sum back to state totals.
func validateRoundTrip(byState []domain.StateCount, byYear []domain.StateYearCount, byMonth []domain.StateMonthCount) *phase {
	p := &phase{name: "Aggregates sum to state totals"}

	yearSums := make(map[string]int)
	for _, c := range byYear {
		yearSums[c.State] += c.Count
	}
	type stateYear struct {
		state string
		year  int
	}
	monthSums := make(map[stateYear]int)
	for _, c := range byMonth {
		monthSums[stateYear{c.State, c.Year}] += c.Count
	}

	for _, c := range byState {
		if yearSums[c.State] != c.Count {
			p.errorf("%s: yearly counts sum to %d, want %d", c.State, yearSums[c.State], c.Count)
		}
	}
	for _, c := range byYear {
		if got := monthSums[stateYear{c.State, c.Year}]; got != c.Count {
			p.errorf("%s %d: monthly counts sum to %d, want %d", c.State, c.Year, got, c.Count)
		}
	}
	return p
}

// validateTrends checks that every defined slope is finite and that only
// single-year states are undefined.
func validateTrends(trends []domain.TrendCoefficient) *phase {
	p := &phase{name: "Trend slopes are well defined"}
	for _, t := range trends {
		switch {
		case t.Defined && (math.IsNaN(t.Slope) || math.IsInf(t.Slope, 0)):
			p.errorf("%s: non-finite slope %v", t.State, t.Slope)
		case !t.Defined && t.Years >= 2:
			p.errorf("%s: %d distinct years but no slope", t.State, t.Years)
		}
	}
	return p
}
