package render

import (
	"time"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

const headRows = 5

// DatasetSummary describes the loaded dataset: its columns, size and the
// first few rows with their point geometry as WKT.
type DatasetSummary struct {
	Source        string       `json:"source"`
	LoadedAt      time.Time    `json:"loaded_at"`
	Columns       []string     `json:"columns"`
	Rows          int          `json:"rows"`
	States        int          `json:"states"`
	MinYear       int          `json:"min_year"`
	MaxYear       int          `json:"max_year"`
	UnknownMonths int          `json:"unknown_months"`
	LeapYearRule  string       `json:"leap_year_rule"`
	Head          []SummaryRow `json:"head"`
}

// SummaryRow is one previewed record.
type SummaryRow struct {
	domain.FireRecord
	Geometry string `json:"geometry"`
}

// SummaryInput carries the snapshot fields the summary reports.
type SummaryInput struct {
	Source        string
	LoadedAt      time.Time
	Fires         []domain.GeoFire
	States        int
	MinYear       int
	MaxYear       int
	UnknownMonths int
	Calendar      domain.Calendar
}

// Summarize builds the dataset preview.
func Summarize(in SummaryInput) DatasetSummary {
	n := min(headRows, len(in.Fires))
	head := make([]SummaryRow, n)
	for i := range n {
		head[i] = SummaryRow{FireRecord: in.Fires[i].FireRecord, Geometry: in.Fires[i].WKT()}
	}
	return DatasetSummary{
		Source:        in.Source,
		LoadedAt:      in.LoadedAt,
		Columns:       append(append([]string(nil), domain.Columns...), "geometry"),
		Rows:          len(in.Fires),
		States:        in.States,
		MinYear:       in.MinYear,
		MaxYear:       in.MaxYear,
		UnknownMonths: in.UnknownMonths,
		LeapYearRule:  string(in.Calendar.Rule),
		Head:          head,
	}
}
