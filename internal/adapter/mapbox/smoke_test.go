//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.mapbox.com/geocoding/v5/mapbox.places",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_ReverseGeocode_County(t *testing.T) {
	c := smokeClient(t)

	// Downtown Sacramento, CA.
	result, err := c.ReverseGeocode(context.Background(), 38.5816, -121.4944)
	require.NoError(t, err)

	assert.Contains(t, result.County, "Sacramento")
	assert.Equal(t, "CA", result.State)
	assert.NotEmpty(t, result.FormattedAddress)
}

func TestSmoke_ReverseGeocode_Offshore(t *testing.T) {
	c := smokeClient(t)

	// Open Pacific: no district, which must not be an error.
	result, err := c.ReverseGeocode(context.Background(), 30.0, -140.0)
	require.NoError(t, err)
	assert.Empty(t, result.County)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	// First call: cache miss → real API call.
	r1, err := cached.ReverseGeocode(context.Background(), 34.0522, -118.2437)
	require.NoError(t, err)
	assert.Contains(t, r1.County, "Los Angeles")

	// Nearby point rounds to the same key: cache hit → no API call.
	r2, err := cached.ReverseGeocode(context.Background(), 34.05221, -118.24371)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
