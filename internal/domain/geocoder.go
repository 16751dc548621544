package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	County           string
	State            string
	FormattedAddress string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves fire coordinates to administrative areas.
type Geocoder interface {
	// ReverseGeocode converts coordinates to county and state details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
