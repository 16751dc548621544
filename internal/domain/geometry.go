package domain

import (
	"strconv"

	geojson "github.com/paulmach/go.geojson"
)

// AttachGeometry pairs each record's longitude and latitude into a GeoJSON
// point, in input order.
func AttachGeometry(records []FireRecord) []GeoFire {
	out := make([]GeoFire, len(records))
	for i := range records {
		out[i] = GeoFire{
			FireRecord: records[i],
			Geometry:   geojson.NewPointGeometry([]float64{records[i].Longitude, records[i].Latitude}),
		}
	}
	return out
}

// WKT renders the point as Well-Known Text, e.g. "POINT (-121.0058 40.0369)".
func (g GeoFire) WKT() string {
	if g.Geometry == nil || len(g.Geometry.Point) < 2 {
		return "POINT EMPTY"
	}
	return "POINT (" + formatCoord(g.Geometry.Point[0]) + " " + formatCoord(g.Geometry.Point[1]) + ")"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
