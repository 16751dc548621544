package render

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// FeatureCollection encodes fires in [p.From, p.To] as GeoJSON, capped at
// p.Limit features with the largest fires first.
func FeatureCollection(fires []domain.GeoFire, cal domain.Calendar, p Params) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range largestBetween(fires, p.From, p.To, p.Limit) {
		if f.Geometry == nil {
			continue
		}
		feat := geojson.NewFeature(f.Geometry)
		feat.SetProperty("year", f.Year)
		feat.SetProperty("day_of_year", f.DayOfYear)
		feat.SetProperty("month", cal.MonthOf(f.Year, f.DayOfYear))
		feat.SetProperty("state", f.State)
		feat.SetProperty("county", f.County)
		feat.SetProperty("size", f.Size)
		feat.SetProperty("size_class", f.SizeClass)
		feat.SetProperty("cause", f.CauseDescr)
		fc.AddFeature(feat)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return data, nil
}
