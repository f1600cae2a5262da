package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock resolver ---

type mockResolver struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockResolver) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestResolveLocationLabel_CityBoxWins(t *testing.T) {
	geo := &mockResolver{result: GeocodingResult{PlaceName: "New Delhi"}}
	cities := DefaultReferenceData().Cities

	label := ResolveLocationLabel(context.Background(), 28.6, 77.2, cities, geo, discardLogger())

	assert.Equal(t, "Delhi", label)
	assert.Equal(t, 0, geo.calls)
}

func TestResolveLocationLabel_NilResolver(t *testing.T) {
	label := ResolveLocationLabel(context.Background(), 29.39, 76.96, DefaultReferenceData().Cities, nil, discardLogger())
	assert.Equal(t, UnknownLocation, label)
}

func TestResolveLocationLabel_PlaceName(t *testing.T) {
	geo := &mockResolver{result: GeocodingResult{
		FormattedAddress: "Panipat, Haryana, India",
		PlaceName:        "Panipat",
		Confidence:       0.9,
	}}

	label := ResolveLocationLabel(context.Background(), 29.39, 76.96, nil, geo, discardLogger())

	assert.Equal(t, "Panipat", label)
	assert.Equal(t, 1, geo.calls)
}

func TestResolveLocationLabel_FormattedAddressFallback(t *testing.T) {
	geo := &mockResolver{result: GeocodingResult{FormattedAddress: "Haryana, India"}}

	label := ResolveLocationLabel(context.Background(), 29.39, 76.96, nil, geo, discardLogger())

	assert.Equal(t, "Haryana, India", label)
}

func TestResolveLocationLabel_Error_GracefulDegradation(t *testing.T) {
	geo := &mockResolver{err: errors.New("rate limited")}

	label := ResolveLocationLabel(context.Background(), 29.39, 76.96, nil, geo, discardLogger())

	assert.Equal(t, UnknownLocation, label)
	assert.Equal(t, 1, geo.calls)
}

func TestResolveLocationLabel_EmptyResult(t *testing.T) {
	geo := &mockResolver{}

	label := ResolveLocationLabel(context.Background(), 0, 0, nil, geo, discardLogger())

	assert.Equal(t, UnknownLocation, label)
}

func TestCityBounds_ContainsEdges(t *testing.T) {
	b := CityBounds{Name: "Delhi", MinLat: 28.5, MaxLat: 28.7, MinLng: 77.1, MaxLng: 77.3}

	assert.True(t, b.Contains(28.5, 77.1))
	assert.True(t, b.Contains(28.7, 77.3))
	assert.False(t, b.Contains(28.71, 77.2))
	assert.False(t, b.Contains(28.6, 77.05))
}
