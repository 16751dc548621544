package pipeline

import (
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Snapshot is an immutable view of one loaded dataset and everything derived
// from it. Handlers share it without locking.
type Snapshot struct {
	Source   string
	LoadedAt time.Time
	Calendar domain.Calendar
	Scale    domain.TrendScale

	Fires []domain.GeoFire

	ByState      []domain.StateCount
	ByStateYear  []domain.StateYearCount
	ByStateMonth []domain.StateMonthCount
	Trends       []domain.TrendCoefficient

	MinYear, MaxYear int
	UnknownMonths    int
}

// Build derives a snapshot from loaded records.
func Build(records []domain.FireRecord, cal domain.Calendar, scale domain.TrendScale) *Snapshot {
	byStateYear := domain.CountByStateYear(records)
	byStateMonth := domain.CountByStateMonth(records, cal)

	s := &Snapshot{
		LoadedAt:     domain.Now(),
		Calendar:     cal,
		Scale:        scale,
		Fires:        domain.AttachGeometry(records),
		ByState:      domain.CountByState(records),
		ByStateYear:  byStateYear,
		ByStateMonth: byStateMonth,
		Trends:       domain.ComputeTrends(byStateYear, scale),
	}
	s.MinYear, s.MaxYear, _ = domain.YearRange(records)
	for _, c := range byStateMonth {
		if !c.Known() {
			s.UnknownMonths += c.Count
		}
	}
	return s
}

// TrendsBetween fits trends over the years in [from, to]. The full range
// reuses the precomputed coefficients.
func (s *Snapshot) TrendsBetween(from, to int) []domain.TrendCoefficient {
	if from <= s.MinYear && to >= s.MaxYear {
		return s.Trends
	}
	counts := make([]domain.StateYearCount, 0, len(s.ByStateYear))
	for _, c := range s.ByStateYear {
		if c.Year >= from && c.Year <= to {
			counts = append(counts, c)
		}
	}
	return domain.ComputeTrends(counts, s.Scale)
}

// UndefinedTrends counts states whose slope could not be fit.
func (s *Snapshot) UndefinedTrends() int {
	n := 0
	for _, t := range s.Trends {
		if !t.Defined {
			n++
		}
	}
	return n
}
