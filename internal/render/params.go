package render

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidParams wraps every widget parameter validation failure.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrUnsupportedLibrary is returned for charting libraries that are
	// offered in the dropdown but have no renderer.
	ErrUnsupportedLibrary = errors.New("charting library not implemented")
	// ErrNoData is returned when a raster chart has nothing to draw.
	ErrNoData = errors.New("no data to render")
)

// Library names a charting library from the dashboard dropdown.
type Library string

const (
	LibPlotly  Library = "plotly"
	LibGeoplot Library = "geoplot"
	LibFolium  Library = "folium"
	LibBokeh   Library = "bokeh"
	LibSeaborn Library = "seaborn"
	LibAltair  Library = "altair"
	LibBasemap Library = "basemap"
)

// SupportedLibraries lists the dropdown options in display order. Only
// LibPlotly has a renderer.
var SupportedLibraries = []Library{LibPlotly, LibGeoplot, LibFolium, LibBokeh, LibSeaborn, LibAltair, LibBasemap}

// Implemented reports whether figures can be built for the library.
func (l Library) Implemented() bool {
	return l == LibPlotly
}

// Granularity selects the time axis of the animated choropleth.
type Granularity string

const (
	GranularityYear  Granularity = "year"
	GranularityMonth Granularity = "month"
)

// Params is the full widget state of one dashboard request.
type Params struct {
	Lib          Library
	From, To     int
	RelativeSize bool
	Granularity  Granularity
	Limit        int
}

// Defaults fill parameters the request leaves out.
type Defaults struct {
	From, To int
	Limit    int
}

// ParseParams reads widget state from query values. from and to are
// inclusive years; relative_size defaults to true.
func ParseParams(q url.Values, d Defaults) (Params, error) {
	p := Params{
		Lib:          LibPlotly,
		From:         d.From,
		To:           d.To,
		RelativeSize: true,
		Granularity:  GranularityYear,
		Limit:        d.Limit,
	}

	if v := strings.TrimSpace(q.Get("lib")); v != "" {
		lib := Library(strings.ToLower(v))
		if !slices.Contains(SupportedLibraries, lib) {
			return Params{}, fmt.Errorf("%w: unknown lib %q", ErrInvalidParams, v)
		}
		p.Lib = lib
	}

	var err error
	if p.From, err = intParam(q, "from", p.From); err != nil {
		return Params{}, err
	}
	if p.To, err = intParam(q, "to", p.To); err != nil {
		return Params{}, err
	}
	if p.From > p.To {
		return Params{}, fmt.Errorf("%w: from (%d) is after to (%d)", ErrInvalidParams, p.From, p.To)
	}

	// The page form pairs the checkbox with a hidden "false" input, so a
	// checked box submits both values and the last one wins.
	if vs := q["relative_size"]; len(vs) > 0 && vs[len(vs)-1] != "" {
		v := vs[len(vs)-1]
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Params{}, fmt.Errorf("%w: relative_size must be a boolean", ErrInvalidParams)
		}
		p.RelativeSize = b
	}

	switch g := Granularity(strings.ToLower(q.Get("granularity"))); g {
	case "":
	case GranularityYear, GranularityMonth:
		p.Granularity = g
	default:
		return Params{}, fmt.Errorf("%w: granularity must be year or month", ErrInvalidParams)
	}

	if p.Limit, err = intParam(q, "limit", p.Limit); err != nil {
		return Params{}, err
	}
	if p.Limit <= 0 {
		return Params{}, fmt.Errorf("%w: limit must be positive", ErrInvalidParams)
	}
	return p, nil
}

// requireImplemented returns ErrUnsupportedLibrary for libraries without a renderer.
func (p Params) requireImplemented() error {
	if !p.Lib.Implemented() {
		return fmt.Errorf("%w: %s", ErrUnsupportedLibrary, p.Lib)
	}
	return nil
}

// Query encodes the parameters back into URL form, for links and forms.
func (p Params) Query() url.Values {
	return url.Values{
		"lib":           {string(p.Lib)},
		"from":          {strconv.Itoa(p.From)},
		"to":            {strconv.Itoa(p.To)},
		"relative_size": {strconv.FormatBool(p.RelativeSize)},
		"granularity":   {string(p.Granularity)},
	}
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParams, key)
	}
	return n, nil
}
