package render

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Kind names a figure endpoint.
type Kind string

const (
	KindPlain      Kind = "plain"
	KindScatter    Kind = "scatter"
	KindBubble     Kind = "bubble"
	KindChoropleth Kind = "choropleth"
	KindTrend      Kind = "trend"
)

// Kinds lists every figure kind.
var Kinds = []Kind{KindPlain, KindScatter, KindBubble, KindChoropleth, KindTrend}

// ParseKind validates a figure kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, slices.Contains(Kinds, k)
}

// Data is the aggregate input every figure draws from.
type Data struct {
	Fires        []domain.GeoFire
	ByStateYear  []domain.StateYearCount
	ByStateMonth []domain.StateMonthCount
	Trends       []domain.TrendCoefficient
}

// Build renders the figure of the given kind.
func Build(kind Kind, d Data, p Params) (*Figure, error) {
	if err := p.requireImplemented(); err != nil {
		return nil, err
	}
	switch kind {
	case KindPlain:
		return PlainMap(), nil
	case KindScatter:
		return ScatterMap(d.Fires, p), nil
	case KindBubble:
		return BubbleMap(d.ByStateYear, p), nil
	case KindChoropleth:
		return Choropleth(d.ByStateYear, d.ByStateMonth, p), nil
	case KindTrend:
		return TrendMap(d.Trends), nil
	default:
		return nil, fmt.Errorf("%w: unknown figure kind %q", ErrInvalidParams, kind)
	}
}

// PlainMap is an empty map of the United States.
func PlainMap() *Figure {
	return &Figure{
		Data:   []Trace{{Type: "scattergeo"}},
		Layout: Layout{Geo: usaGeo()},
	}
}

// ScatterTitle is the scatter map heading for a year range.
func ScatterTitle(from, to int) string {
	return fmt.Sprintf("Wildfires in the US from %d to %d", from, to)
}

const maxMarkerPx = 40

// ScatterMap plots individual fires in [p.From, p.To]. Only the p.Limit
// largest fires are kept. With p.RelativeSize marker area tracks fire size.
func ScatterMap(fires []domain.GeoFire, p Params) *Figure {
	selected := largestBetween(fires, p.From, p.To, p.Limit)

	tr := Trace{
		Type:          "scattergeo",
		Mode:          "markers",
		Name:          "fires",
		Lon:           make([]float64, len(selected)),
		Lat:           make([]float64, len(selected)),
		Text:          make([]string, len(selected)),
		HoverTemplate: "%{text}<extra></extra>",
	}
	sizes := make([]float64, len(selected))
	var maxSize float64
	for i, f := range selected {
		tr.Lon[i] = f.Longitude
		tr.Lat[i] = f.Latitude
		tr.Text[i] = fmt.Sprintf("%s %d: %s acres (%s)", f.State, f.Year, strconv.FormatFloat(f.Size, 'f', -1, 64), f.CauseDescr)
		sizes[i] = f.Size
		maxSize = max(maxSize, f.Size)
	}

	if p.RelativeSize && maxSize > 0 {
		tr.Marker = &Marker{
			Size:     sizes,
			SizeMode: "area",
			SizeRef:  2 * maxSize / (maxMarkerPx * maxMarkerPx),
			SizeMin:  2,
			Color:    "orangered",
			Opacity:  0.6,
		}
	} else {
		tr.Marker = &Marker{Size: 4, Color: "orangered", Opacity: 0.6}
	}

	return &Figure{
		Data: []Trace{tr},
		Layout: Layout{
			Title: &Title{Text: ScatterTitle(p.From, p.To)},
			Geo:   usaGeo(),
		},
	}
}

// largestBetween filters fires to [from, to] and keeps at most limit of
// them, preferring larger fires. Ties keep input order.
func largestBetween(fires []domain.GeoFire, from, to, limit int) []domain.GeoFire {
	out := domain.FilterYears(fires, from, to)
	if limit > 0 && len(out) > limit {
		slices.SortStableFunc(out, func(a, b domain.GeoFire) int { return cmp.Compare(b.Size, a.Size) })
		out = out[:limit]
	}
	return out
}

// BubbleMap draws per-state fire counts as bubbles at state centroids,
// one frame per year in [p.From, p.To].
func BubbleMap(counts []domain.StateYearCount, p Params) *Figure {
	byYear, maxCount := groupYears(counts, p.From, p.To)

	frames := make([]Frame, 0, len(byYear))
	for _, year := range sortedKeys(byYear) {
		rows := byYear[year]
		tr := Trace{
			Type:         "scattergeo",
			Mode:         "markers",
			Name:         strconv.Itoa(year),
			LocationMode: "USA-states",
			Locations:    make([]string, len(rows)),
			Text:         make([]string, len(rows)),
		}
		sizes := make([]float64, len(rows))
		for i, r := range rows {
			tr.Locations[i] = r.State
			tr.Text[i] = fmt.Sprintf("%s: %d fires", r.State, r.Count)
			sizes[i] = float64(r.Count)
		}
		tr.Marker = &Marker{
			Size:     sizes,
			SizeMode: "area",
			SizeRef:  2 * float64(maxCount) / (maxMarkerPx * maxMarkerPx),
			SizeMin:  3,
			Color:    "firebrick",
			Opacity:  0.7,
		}
		frames = append(frames, Frame{Name: strconv.Itoa(year), Data: []Trace{tr}})
	}

	fig := &Figure{
		Data: []Trace{{Type: "scattergeo"}},
		Layout: Layout{
			Title: &Title{Text: fmt.Sprintf("Fires per state, %d to %d", p.From, p.To)},
			Geo:   usaGeo(),
		},
	}
	animate(fig, frames, "Year: ")
	return fig
}

// Choropleth shades states by fire count, animated by year or by month.
// Unknown-month buckets never become frames.
func Choropleth(byYear []domain.StateYearCount, byMonth []domain.StateMonthCount, p Params) *Figure {
	type cell struct {
		state string
		count int
	}
	buckets := make(map[string][]cell)
	var order []string
	var maxCount int

	add := func(key, state string, n int) {
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], cell{state, n})
		maxCount = max(maxCount, n)
	}

	prefix := "Year: "
	if p.Granularity == GranularityMonth {
		prefix = "Month: "
		for _, c := range byMonth {
			if !c.Known() || c.Year < p.From || c.Year > p.To {
				continue
			}
			add(c.Bucket, c.State, c.Count)
		}
	} else {
		for _, c := range byYear {
			if c.Year < p.From || c.Year > p.To {
				continue
			}
			add(strconv.Itoa(c.Year), c.State, c.Count)
		}
	}
	// "YYYY" and "YYYY-MM" keys both sort chronologically as strings.
	slices.Sort(order)

	frames := make([]Frame, 0, len(order))
	for _, key := range order {
		cells := buckets[key]
		tr := Trace{
			Type:         "choropleth",
			Name:         key,
			LocationMode: "USA-states",
			Locations:    make([]string, len(cells)),
			Z:            make([]float64, len(cells)),
			ColorScale:   "Reds",
			ZMin:         ptr(0),
			ZMax:         ptr(float64(max(maxCount, 1))),
			ColorBar:     &ColorBar{Title: Title{Text: "Fires"}},
		}
		for i, c := range cells {
			tr.Locations[i] = c.state
			tr.Z[i] = float64(c.count)
		}
		frames = append(frames, Frame{Name: key, Data: []Trace{tr}})
	}

	fig := &Figure{
		Data: []Trace{{Type: "choropleth", LocationMode: "USA-states"}},
		Layout: Layout{
			Title: &Title{Text: fmt.Sprintf("Fires per state by %s, %d to %d", p.Granularity, p.From, p.To)},
			Geo:   usaGeo(),
		},
	}
	animate(fig, frames, prefix)
	return fig
}

// TrendMap shades states by trend slope on a diverging scale centred on
// zero. Red means more fires each year. States without a defined slope are
// left uncoloured.
func TrendMap(trends []domain.TrendCoefficient) *Figure {
	tr := Trace{
		Type:          "choropleth",
		LocationMode:  "USA-states",
		ColorScale:    "RdBu",
		ReverseScale:  true,
		ZMid:          ptr(0),
		HoverTemplate: "%{location}: %{z:.2f}<extra></extra>",
	}
	scale := domain.TrendLinear
	for _, t := range trends {
		scale = t.Scale
		if !t.Defined {
			continue
		}
		tr.Locations = append(tr.Locations, t.State)
		tr.Z = append(tr.Z, t.Slope)
	}

	unit := "fires per year"
	if scale == domain.TrendLog {
		unit = "log fires per year"
	}
	tr.ColorBar = &ColorBar{Title: Title{Text: unit}}

	return &Figure{
		Data: []Trace{tr},
		Layout: Layout{
			Title: &Title{Text: "Trend in yearly fire count (" + unit + ")"},
			Geo:   usaGeo(),
		},
	}
}

func groupYears(counts []domain.StateYearCount, from, to int) (map[int][]domain.StateYearCount, int) {
	byYear := make(map[int][]domain.StateYearCount)
	var maxCount int
	for _, c := range counts {
		if c.Year < from || c.Year > to {
			continue
		}
		byYear[c.Year] = append(byYear[c.Year], c)
		maxCount = max(maxCount, c.Count)
	}
	return byYear, max(maxCount, 1)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
