package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReferenceData_Valid(t *testing.T) {
	ref := DefaultReferenceData()

	require.NoError(t, ref.Validate())
	assert.Len(t, ref.Locations, 5)
	assert.Len(t, ref.BaseYields, 6)
	assert.Len(t, ref.Cities, 5)
	assert.Len(t, ref.WeatherDescriptions, 9)
	assert.InDelta(t, 5.0, ref.DefaultYield, 1e-9)
	assert.Equal(t, "wheat", ref.DefaultCrop)
}

func TestParseReferenceData_PartialOverride(t *testing.T) {
	raw := []byte(`
base_yields:
  wheat: 4.8
  millet: 1.9
default_yield: 3.5
`)
	ref, err := ParseReferenceData(raw)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"wheat": 4.8, "millet": 1.9}, ref.BaseYields)
	assert.InDelta(t, 3.5, ref.DefaultYield, 1e-9)
	// Untouched sections keep built-in values.
	assert.Equal(t, DefaultReferenceData().Locations, ref.Locations)
	assert.Equal(t, DefaultReferenceData().Cities, ref.Cities)
}

func TestParseReferenceData_Locations(t *testing.T) {
	raw := []byte(`
locations:
  - name: Gohana
    district: Sonipat
    state: Haryana
    pincode: "131301"
    type: city
`)
	ref, err := ParseReferenceData(raw)
	require.NoError(t, err)

	require.Len(t, ref.Locations, 1)
	assert.Equal(t, Location{Name: "Gohana", District: "Sonipat", State: "Haryana", Pincode: "131301", Type: "city"}, ref.Locations[0])
}

func TestParseReferenceData_InvalidReportsEveryProblem(t *testing.T) {
	raw := []byte(`
locations:
  - name: ""
    type: town
base_yields:
  wheat: -1
cities:
  - name: Nowhere
    min_lat: 10
    max_lat: 5
`)
	_, err := ParseReferenceData(raw)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "locations[0]: name is required")
	assert.Contains(t, msg, "type must be village or city")
	assert.Contains(t, msg, "base_yields[wheat]")
	assert.Contains(t, msg, `cities[0] "Nowhere"`)
}

func TestParseReferenceData_BadYAML(t *testing.T) {
	_, err := ParseReferenceData([]byte("locations: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse reference data")
}

func TestLoadReferenceData_RoundTripsDefaults(t *testing.T) {
	data, err := DefaultReferenceData().YAML()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	ref, err := LoadReferenceData(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultReferenceData(), ref)
}

func TestLoadReferenceData_MissingFile(t *testing.T) {
	_, err := LoadReferenceData(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read reference data")
}
