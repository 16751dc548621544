package render

import (
	"cmp"
	"fmt"
	"image/color"
	"io"
	"math"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Bounds of the static map, covering the lower 48 plus Alaska and Hawaii.
const (
	mapMinLon, mapMaxLon = -180.0, -60.0
	mapMinLat, mapMaxLat = 15.0, 72.0
)

var fireColor = color.RGBA{R: 204, G: 51, B: 17, A: 160}

// StaticMapPNG writes a lon/lat point map of fires in [p.From, p.To] as PNG.
// Larger fires get larger glyphs when p.RelativeSize is set.
func StaticMapPNG(w io.Writer, fires []domain.GeoFire, p Params) error {
	selected := largestBetween(fires, p.From, p.To, p.Limit)

	pl := plot.New()
	pl.Title.Text = ScatterTitle(p.From, p.To)
	pl.Title.TextStyle.Font.Size = vg.Points(14)
	pl.X.Label.Text = "Longitude"
	pl.Y.Label.Text = "Latitude"
	pl.Add(plotter.NewGrid())

	if len(selected) > 0 {
		pts := make(plotter.XYs, len(selected))
		var maxSize float64
		for i, f := range selected {
			pts[i].X = f.Longitude
			pts[i].Y = f.Latitude
			maxSize = max(maxSize, f.Size)
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = fireColor
		sc.GlyphStyle.Radius = vg.Points(1.5)
		if p.RelativeSize && maxSize > 0 {
			sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				style := sc.GlyphStyle
				// Area proportional to size, radius between 1.5 and 9 points.
				style.Radius = vg.Points(1.5 + 7.5*math.Sqrt(selected[i].Size/maxSize))
				return style
			}
		}
		pl.Add(sc)
	}

	pl.X.Min, pl.X.Max = mapMinLon, mapMaxLon
	pl.Y.Min, pl.Y.Max = mapMinLat, mapMaxLat

	wt, err := pl.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encode static map: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write static map: %w", err)
	}
	return nil
}

// TrendBarsPNG writes a bar chart of defined trend slopes, steepest first.
func TrendBarsPNG(w io.Writer, trends []domain.TrendCoefficient) error {
	defined := make([]domain.TrendCoefficient, 0, len(trends))
	for _, t := range trends {
		if t.Defined {
			defined = append(defined, t)
		}
	}
	if len(defined) == 0 {
		return fmt.Errorf("trend chart: %w", ErrNoData)
	}
	slices.SortStableFunc(defined, func(a, b domain.TrendCoefficient) int { return cmp.Compare(b.Slope, a.Slope) })

	bars := make([]chart.Value, len(defined))
	lo, hi := 0.0, 0.0
	for i, t := range defined {
		style := chart.Style{FillColor: drawing.ColorFromHex("cc3311"), StrokeColor: drawing.ColorFromHex("cc3311")}
		if t.Slope < 0 {
			style = chart.Style{FillColor: drawing.ColorFromHex("0077bb"), StrokeColor: drawing.ColorFromHex("0077bb")}
		}
		bars[i] = chart.Value{Label: t.State, Value: t.Slope, Style: style}
		lo = min(lo, t.Slope)
		hi = max(hi, t.Slope)
	}
	if lo == hi {
		hi = lo + 1
	}

	const barWidth, barSpacing = 14, 6
	bc := chart.BarChart{
		Title:        "Trend in yearly fire count by state",
		Width:        max(800, len(bars)*(barWidth+barSpacing)+160),
		Height:       480,
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:        chart.YAxis{Name: "slope", Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Bars:         bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	return nil
}
