package render

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func geoFire(state string, year int, doy, size float64) domain.FireRecord {
	return domain.FireRecord{
		Year: year, DayOfYear: doy, State: state, Size: size,
		Longitude: -120.5, Latitude: 38.25, SizeClass: "B", CauseDescr: "Lightning",
	}
}

func sampleData() Data {
	records := []domain.FireRecord{
		geoFire("CA", 2012, 15, 10),
		geoFire("CA", 2012, 60, 5000),
		geoFire("CA", 2013, 60, 1),
		geoFire("CA", 2013, 400, 2),
		geoFire("CA", 2014, 100, 3),
		geoFire("NV", 2013, 200, 250),
		geoFire("NV", 2014, 200, 0.1),
	}
	byYear := domain.CountByStateYear(records)
	return Data{
		Fires:        domain.AttachGeometry(records),
		ByStateYear:  byYear,
		ByStateMonth: domain.CountByStateMonth(records, domain.DefaultCalendar),
		Trends:       domain.ComputeTrends(byYear, domain.TrendLinear),
	}
}

func defaultParams() Params {
	return Params{Lib: LibPlotly, From: 2012, To: 2014, RelativeSize: true, Granularity: GranularityYear, Limit: 100}
}

// --- params ---

func TestParseParams_Defaults(t *testing.T) {
	p, err := ParseParams(url.Values{}, Defaults{From: 1992, To: 2015, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, Params{Lib: LibPlotly, From: 1992, To: 2015, RelativeSize: true, Granularity: GranularityYear, Limit: 50}, p)
}

func TestParseParams(t *testing.T) {
	d := Defaults{From: 1992, To: 2015, Limit: 50}
	tests := []struct {
		name    string
		query   string
		want    func(*Params)
		wantErr string
	}{
		{name: "range", query: "from=2014&to=2015", want: func(p *Params) { p.From, p.To = 2014, 2015 }},
		{name: "lib case insensitive", query: "lib=Folium", want: func(p *Params) { p.Lib = LibFolium }},
		{name: "relative size off", query: "relative_size=false", want: func(p *Params) { p.RelativeSize = false }},
		{name: "checkbox checked after hidden false", query: "relative_size=false&relative_size=true", want: func(p *Params) { p.RelativeSize = true }},
		{name: "last value wins", query: "relative_size=true&relative_size=false", want: func(p *Params) { p.RelativeSize = false }},
		{name: "month granularity", query: "granularity=month", want: func(p *Params) { p.Granularity = GranularityMonth }},
		{name: "limit", query: "limit=7", want: func(p *Params) { p.Limit = 7 }},
		{name: "from after to", query: "from=2015&to=2014", wantErr: "from (2015) is after to (2014)"},
		{name: "bad year", query: "from=abc", wantErr: "from must be an integer"},
		{name: "unknown lib", query: "lib=d3", wantErr: "unknown lib"},
		{name: "bad bool", query: "relative_size=maybe", wantErr: "relative_size"},
		{name: "bad granularity", query: "granularity=week", wantErr: "granularity"},
		{name: "zero limit", query: "limit=0", wantErr: "limit must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseParams(q, d)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrInvalidParams)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			want := Params{Lib: LibPlotly, From: 1992, To: 2015, RelativeSize: true, Granularity: GranularityYear, Limit: 50}
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestParams_QueryRoundTrip(t *testing.T) {
	p := defaultParams()
	p.Granularity = GranularityMonth
	p.RelativeSize = false

	got, err := ParseParams(p.Query(), Defaults{Limit: p.Limit})
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

// --- figures ---

func TestBuild_UnsupportedLibrary(t *testing.T) {
	p := defaultParams()
	p.Lib = LibBokeh

	for _, kind := range Kinds {
		_, err := Build(kind, sampleData(), p)
		require.ErrorIs(t, err, ErrUnsupportedLibrary, kind)
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("bubble")
	assert.True(t, ok)
	assert.Equal(t, KindBubble, k)

	_, ok = ParseKind("heatmap")
	assert.False(t, ok)
}

func TestPlainMap(t *testing.T) {
	data, err := json.Marshal(PlainMap())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": [{"type": "scattergeo"}],
		"layout": {"geo": {"scope": "usa", "projection": {"type": "albers usa"}, "showland": true, "landcolor": "rgb(240, 240, 240)"}}
	}`, string(data))
}

func TestScatterMap_FiltersYearsAndTitles(t *testing.T) {
	p := defaultParams()
	p.From, p.To = 2013, 2013

	fig := ScatterMap(sampleData().Fires, p)

	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Len(t, tr.Lon, 3)
	assert.Len(t, tr.Lat, 3)
	assert.Equal(t, "Wildfires in the US from 2013 to 2013", fig.Layout.Title.Text)
	assert.Equal(t, "area", tr.Marker.SizeMode)
	assert.Equal(t, []float64{1, 2, 250}, tr.Marker.Size)
}

func TestScatterMap_ConstantSize(t *testing.T) {
	p := defaultParams()
	p.RelativeSize = false

	fig := ScatterMap(sampleData().Fires, p)
	assert.Equal(t, 4, fig.Data[0].Marker.Size)
	assert.Empty(t, fig.Data[0].Marker.SizeMode)
}

func TestScatterMap_KeepsLargestWhenCapped(t *testing.T) {
	p := defaultParams()
	p.Limit = 2

	fig := ScatterMap(sampleData().Fires, p)
	assert.Equal(t, []float64{5000, 250}, fig.Data[0].Marker.Size)
}

func TestScatterMap_EmptyRange(t *testing.T) {
	p := defaultParams()
	p.From, p.To = 1992, 1993

	fig := ScatterMap(sampleData().Fires, p)
	assert.Empty(t, fig.Data[0].Lon)
	assert.Equal(t, 4, fig.Data[0].Marker.Size)
}

func TestBubbleMap_FramePerYear(t *testing.T) {
	fig := BubbleMap(sampleData().ByStateYear, defaultParams())

	require.Len(t, fig.Frames, 3)
	assert.Equal(t, "2012", fig.Frames[0].Name)
	assert.Equal(t, "2014", fig.Frames[2].Name)
	assert.Equal(t, fig.Frames[0].Data, fig.Data)

	f2013 := fig.Frames[1].Data[0]
	assert.Equal(t, "USA-states", f2013.LocationMode)
	assert.Equal(t, []string{"CA", "NV"}, f2013.Locations)
	assert.Equal(t, []float64{2, 1}, f2013.Marker.Size)

	require.Len(t, fig.Layout.Sliders, 1)
	assert.Len(t, fig.Layout.Sliders[0].Steps, 3)
	require.Len(t, fig.Layout.UpdateMenus, 1)
	assert.Equal(t, "Play", fig.Layout.UpdateMenus[0].Buttons[0].Label)
}

func TestChoropleth_Yearly(t *testing.T) {
	d := sampleData()
	fig := Choropleth(d.ByStateYear, d.ByStateMonth, defaultParams())

	require.Len(t, fig.Frames, 3)
	first := fig.Frames[0].Data[0]
	assert.Equal(t, "choropleth", first.Type)
	assert.Equal(t, []string{"CA"}, first.Locations)
	assert.Equal(t, []float64{2}, first.Z)
	assert.Equal(t, 2.0, *first.ZMax)
}

func TestChoropleth_MonthlySkipsUnknown(t *testing.T) {
	d := sampleData()
	p := defaultParams()
	p.Granularity = GranularityMonth

	fig := Choropleth(d.ByStateYear, d.ByStateMonth, p)

	var names []string
	for _, f := range fig.Frames {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"2012-01", "2012-02", "2013-03", "2013-07", "2014-04", "2014-07"}, names)
	assert.NotContains(t, names, domain.UnknownMonth)
	assert.Equal(t, "Month: ", fig.Layout.Sliders[0].CurrentValue.Prefix)
}

func TestTrendMap_OnlyDefinedSlopes(t *testing.T) {
	trends := []domain.TrendCoefficient{
		{State: "CA", Slope: 1.5, Defined: true, Scale: domain.TrendLinear},
		{State: "DC", Defined: false, Scale: domain.TrendLinear},
		{State: "NV", Slope: -0.5, Defined: true, Scale: domain.TrendLinear},
	}

	fig := TrendMap(trends)
	tr := fig.Data[0]
	assert.Equal(t, []string{"CA", "NV"}, tr.Locations)
	assert.Equal(t, []float64{1.5, -0.5}, tr.Z)
	assert.Equal(t, 0.0, *tr.ZMid)
	assert.True(t, tr.ReverseScale)
	assert.Contains(t, fig.Layout.Title.Text, "fires per year")
}

// --- static renderings ---

func TestStaticMapPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StaticMapPNG(&buf, sampleData().Fires, defaultParams()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestStaticMapPNG_NoFires(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StaticMapPNG(&buf, nil, defaultParams()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTrendBarsPNG(t *testing.T) {
	trends := []domain.TrendCoefficient{
		{State: "CA", Slope: 1.5, Defined: true},
		{State: "NV", Slope: -0.5, Defined: true},
		{State: "DC"},
	}
	var buf bytes.Buffer
	require.NoError(t, TrendBarsPNG(&buf, trends))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTrendBarsPNG_NoDefinedTrends(t *testing.T) {
	var buf bytes.Buffer
	err := TrendBarsPNG(&buf, []domain.TrendCoefficient{{State: "DC"}})
	require.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, buf.Len())
}

// --- geojson / summary / page ---

func TestFeatureCollection(t *testing.T) {
	p := defaultParams()
	p.From, p.To = 2012, 2012

	data, err := FeatureCollection(sampleData().Fires, domain.DefaultCalendar, p)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.Equal(t, []float64{-120.5, 38.25}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "01", fc.Features[0].Properties["month"])
	assert.Equal(t, "02", fc.Features[1].Properties["month"])
	assert.Equal(t, "CA", fc.Features[0].Properties["state"])
}

func TestSummarize(t *testing.T) {
	d := sampleData()
	s := Summarize(SummaryInput{Source: "fires.csv.gz", Fires: d.Fires, States: 2, MinYear: 2012, MaxYear: 2014, Calendar: domain.DefaultCalendar})

	assert.Equal(t, 7, s.Rows)
	assert.Len(t, s.Head, 5)
	assert.Equal(t, "POINT (-120.5 38.25)", s.Head[0].Geometry)
	assert.Equal(t, "geometry", s.Columns[len(s.Columns)-1])
	assert.Equal(t, domain.Columns, s.Columns[:len(domain.Columns)])
	assert.Equal(t, "simplified", s.LeapYearRule)
}

func TestPage_RendersFigures(t *testing.T) {
	d := sampleData()
	var buf bytes.Buffer
	err := Page(&buf, Summarize(SummaryInput{Fires: d.Fires, MinYear: 2012, MaxYear: 2014}), d, defaultParams())
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<h1>Wildfire Visualisation</h1>")
	for _, kind := range Kinds {
		assert.Contains(t, html, `id="fig-`+string(kind)+`"`)
	}
	assert.Contains(t, html, "Wildfires in the US from 2012 to 2014")
	assert.Contains(t, html, "/api/maps/static.png?")
	assert.Contains(t, html, `<option value="plotly" selected>`)
}

func TestPage_UnsupportedLibraryShowsNotice(t *testing.T) {
	d := sampleData()
	p := defaultParams()
	p.Lib = LibAltair

	var buf bytes.Buffer
	err := Page(&buf, Summarize(SummaryInput{Fires: d.Fires}), d, p)
	require.ErrorIs(t, err, ErrUnsupportedLibrary)

	html := buf.String()
	assert.Contains(t, html, "Maps with altair are not implemented yet")
	assert.False(t, strings.Contains(html, `id="fig-plain"`))
}

var relativeSizeInput = regexp.MustCompile(`<input type="(hidden|checkbox)" name="relative_size" value="(\w+)"( checked)?`)

// formQuery rebuilds the relative_size values a browser would submit.
func formQuery(t *testing.T, html string) url.Values {
	t.Helper()
	matches := relativeSizeInput.FindAllStringSubmatch(html, -1)
	require.Len(t, matches, 2)
	q := url.Values{}
	for _, m := range matches {
		if m[1] == "hidden" || m[3] != "" {
			q.Add("relative_size", m[2])
		}
	}
	return q
}

func TestPage_RelativeSizeFormRoundTrip(t *testing.T) {
	for _, relative := range []bool{true, false} {
		t.Run(strconv.FormatBool(relative), func(t *testing.T) {
			d := sampleData()
			p := defaultParams()
			p.RelativeSize = relative

			var buf bytes.Buffer
			require.NoError(t, Page(&buf, Summarize(SummaryInput{Fires: d.Fires}), d, p))

			got, err := ParseParams(formQuery(t, buf.String()), Defaults{From: 2012, To: 2014, Limit: 100})
			require.NoError(t, err)
			assert.Equal(t, relative, got.RelativeSize)
		})
	}
}

func TestMarkdownHTML(t *testing.T) {
	out, err := MarkdownHTML([]byte("# Title\n\n*fires*"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>Title</h1>")
	assert.Contains(t, string(out), "<em>fires</em>")
}
