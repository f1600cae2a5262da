//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/agri-assist-api/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	// Karnal, Haryana
	result, err := c.ReverseGeocode(context.Background(), 29.6857, 76.9905)
	require.NoError(t, err)

	assert.NotEmpty(t, result.FormattedAddress)
	assert.NotEmpty(t, result.PlaceName)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_ReverseGeocode_Ocean(t *testing.T) {
	c := smokeClient(t)

	// Middle of the Indian Ocean has no place feature.
	result, err := c.ReverseGeocode(context.Background(), -20.0, 80.0)
	require.NoError(t, err)
	assert.Empty(t, result.PlaceName)
}

func TestSmoke_CachedResolver(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedResolver(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ReverseGeocode(context.Background(), 28.4595, 77.0266)
	require.NoError(t, err)
	require.NotEmpty(t, r1.PlaceName)

	r2, err := cached.ReverseGeocode(context.Background(), 28.4595, 77.0266)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
