package domain

import (
	"context"
	"log/slog"
	"strings"
)

// NeedsCounty reports whether a record lacks a county but has coordinates to
// look one up from.
func NeedsCounty(rec FireRecord) bool {
	return strings.TrimSpace(rec.County) == "" && (rec.Latitude != 0 || rec.Longitude != 0)
}

// EnrichWithGeocoding fills a missing county by reverse geocoding the fire's
// coordinates. If geocoder is nil or the record already has a county, the
// record is returned unchanged. Failures set CountySource to "failed" and
// leave the county empty.
func EnrichWithGeocoding(ctx context.Context, rec FireRecord, geocoder Geocoder, logger *slog.Logger) FireRecord {
	if geocoder == nil || !NeedsCounty(rec) {
		return rec
	}

	result, err := geocoder.ReverseGeocode(ctx, rec.Latitude, rec.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", rec.Latitude,
			"lon", rec.Longitude,
			"state", rec.State,
			"error", err,
		)
		rec.CountySource = "failed"
		return rec
	}
	if result.County == "" {
		return rec
	}

	// A result from a neighboring state means the point sits on a border;
	// the recorded state wins.
	if result.State != "" && rec.State != "" && !strings.EqualFold(result.State, rec.State) {
		logger.Debug("geocoded county outside recorded state",
			"state", rec.State,
			"geocoded_state", result.State,
			"county", result.County,
		)
		return rec
	}

	rec.County = result.County
	rec.CountySource = "reverse"
	return rec
}
