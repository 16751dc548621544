package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestEnrichWithGeocoding_NilGeocoder(t *testing.T) {
	rec := FireRecord{State: "CA", Latitude: 38.5, Longitude: -121.4}

	result := EnrichWithGeocoding(context.Background(), rec, nil, discardLogger())

	assert.Equal(t, rec, result)
}

func TestEnrichWithGeocoding_FillsCounty(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{County: "Sacramento County", State: "CA", Confidence: 1}}
	rec := FireRecord{State: "CA", Latitude: 38.5, Longitude: -121.4}

	result := EnrichWithGeocoding(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, "Sacramento County", result.County)
	assert.Equal(t, "reverse", result.CountySource)
	assert.Equal(t, 1, geo.calls)
}

func TestEnrichWithGeocoding_ExistingCountySkipsLookup(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{County: "Other"}}
	rec := FireRecord{State: "CA", County: "Yolo", Latitude: 38.5, Longitude: -121.4}

	result := EnrichWithGeocoding(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, "Yolo", result.County)
	assert.Empty(t, result.CountySource)
	assert.Equal(t, 0, geo.calls)
}

func TestEnrichWithGeocoding_NoCoordinates(t *testing.T) {
	geo := &mockGeocoder{}
	rec := FireRecord{State: "CA"}

	EnrichWithGeocoding(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, 0, geo.calls)
}

func TestEnrichWithGeocoding_Error(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("timeout")}
	rec := FireRecord{State: "CA", Latitude: 38.5, Longitude: -121.4}

	result := EnrichWithGeocoding(context.Background(), rec, geo, discardLogger())

	assert.Empty(t, result.County)
	assert.Equal(t, "failed", result.CountySource)
}

func TestEnrichWithGeocoding_OtherStateIgnored(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{County: "Washoe County", State: "NV"}}
	rec := FireRecord{State: "CA", Latitude: 39.5, Longitude: -120.0}

	result := EnrichWithGeocoding(context.Background(), rec, geo, discardLogger())

	assert.Empty(t, result.County)
	assert.Empty(t, result.CountySource)
}

func TestEnrichWithGeocoding_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}
	rec := FireRecord{State: "CA", Latitude: 38.5, Longitude: -121.4}

	result := EnrichWithGeocoding(context.Background(), rec, geo, discardLogger())

	assert.Empty(t, result.County)
	assert.Empty(t, result.CountySource)
}
