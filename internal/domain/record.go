package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// Column names of the compressed dataset, in contract order.
const (
	ColFireYear      = "FIRE_YEAR"
	ColDiscoveryDOY  = "DISCOVERY_DOY"
	ColCauseCode     = "STAT_CAUSE_CODE"
	ColCauseDescr    = "STAT_CAUSE_DESCR"
	ColLongitude     = "LONGITUDE"
	ColLatitude      = "LATITUDE"
	ColFireSize      = "FIRE_SIZE"
	ColFireSizeClass = "FIRE_SIZE_CLASS"
	ColState         = "STATE"
	ColCounty        = "COUNTY"
	ColShape         = "Shape"
)

// Columns is the fixed column set shared by the prune tooling and the loader.
// Order matters: writers emit exactly this header.
var Columns = []string{
	ColFireYear,
	ColDiscoveryDOY,
	ColCauseCode,
	ColCauseDescr,
	ColLongitude,
	ColLatitude,
	ColFireSize,
	ColFireSizeClass,
	ColState,
	ColCounty,
	ColShape,
}

// ErrMissingColumn is returned when a dataset header lacks a contract column.
var ErrMissingColumn = errors.New("missing required column")

// FireRecord is one wildfire occurrence as read from the dataset.
type FireRecord struct {
	Year         int     `json:"year"`
	DayOfYear    float64 `json:"day_of_year"`
	CauseCode    float64 `json:"cause_code"`
	CauseDescr   string  `json:"cause_description"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
	Size         float64 `json:"size"`
	SizeClass    string  `json:"size_class"`
	State        string  `json:"state"`
	County       string  `json:"county,omitempty"`
	Shape        string  `json:"-"`
	CountySource string  `json:"county_source,omitempty"` // "", "reverse", "failed"
}

// GeoFire is a FireRecord paired with its point geometry.
type GeoFire struct {
	FireRecord
	Geometry *geojson.Geometry `json:"geometry"`
}

// ColumnIndex maps contract column names to positions in a CSV header.
type ColumnIndex map[string]int

// IndexHeader locates every contract column in header. Extra columns (such as
// a leading unnamed index written by pandas) are ignored.
func IndexHeader(header []string) (ColumnIndex, error) {
	idx := make(ColumnIndex, len(Columns))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return idx, nil
}

// ParseRecord converts a CSV row into a FireRecord. Numeric columns that are
// present but unparsable are errors; an empty county or cause is allowed.
func ParseRecord(row []string, idx ColumnIndex) (FireRecord, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	year, err := strconv.Atoi(trimFloatSuffix(get(ColFireYear)))
	if err != nil {
		return FireRecord{}, fmt.Errorf("parse %s: %w", ColFireYear, err)
	}
	doy, err := parseRequiredFloat(get(ColDiscoveryDOY))
	if err != nil {
		return FireRecord{}, fmt.Errorf("parse %s: %w", ColDiscoveryDOY, err)
	}
	lon, err := parseRequiredFloat(get(ColLongitude))
	if err != nil {
		return FireRecord{}, fmt.Errorf("parse %s: %w", ColLongitude, err)
	}
	lat, err := parseRequiredFloat(get(ColLatitude))
	if err != nil {
		return FireRecord{}, fmt.Errorf("parse %s: %w", ColLatitude, err)
	}
	size, err := parseOptionalFloat(get(ColFireSize))
	if err != nil {
		return FireRecord{}, fmt.Errorf("parse %s: %w", ColFireSize, err)
	}
	cause, err := parseOptionalFloat(get(ColCauseCode))
	if err != nil {
		return FireRecord{}, fmt.Errorf("parse %s: %w", ColCauseCode, err)
	}

	return FireRecord{
		Year:       year,
		DayOfYear:  doy,
		CauseCode:  cause,
		CauseDescr: get(ColCauseDescr),
		Longitude:  lon,
		Latitude:   lat,
		Size:       size,
		SizeClass:  strings.ToUpper(get(ColFireSizeClass)),
		State:      normalizeState(get(ColState)),
		County:     get(ColCounty),
		Shape:      get(ColShape),
	}, nil
}

// Row renders the record in contract column order.
func (r FireRecord) Row() []string {
	return []string{
		strconv.Itoa(r.Year),
		strconv.FormatFloat(r.DayOfYear, 'f', -1, 64),
		strconv.FormatFloat(r.CauseCode, 'f', -1, 64),
		r.CauseDescr,
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Size, 'f', -1, 64),
		r.SizeClass,
		r.State,
		r.County,
		r.Shape,
	}
}

func parseRequiredFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// trimFloatSuffix accepts integer columns that were written as floats ("2012.0").
func trimFloatSuffix(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 && strings.Trim(s[i+1:], "0") == "" {
		return s[:i]
	}
	return s
}

// normalizeState upper-cases and trims a USPS state code.
func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
