package domain

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// CityBounds is an inclusive latitude/longitude box that labels weather samples.
type CityBounds struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b CityBounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ReferenceData holds the lookup tables the handlers compute over. It is loaded
// once at startup and never mutated afterwards.
type ReferenceData struct {
	Locations []Location `yaml:"locations"`

	// BaseYields maps a crop identifier to its per-hectare yield in tons.
	BaseYields map[string]float64 `yaml:"base_yields"`
	// DefaultYield applies when the requested crop is not in BaseYields.
	DefaultYield float64 `yaml:"default_yield"`
	// DefaultCrop applies when a request names no crop at all.
	DefaultCrop string `yaml:"default_crop"`

	Cities              []CityBounds `yaml:"cities"`
	WeatherDescriptions []string     `yaml:"weather_descriptions"`
}

// DefaultReferenceData returns the built-in tables.
func DefaultReferenceData() ReferenceData {
	return ReferenceData{
		Locations: []Location{
			{Name: "Kharkhoda", District: "Sonipat", State: "Haryana", Pincode: "131402", Type: "village"},
			{Name: "Bahadurgarh", District: "Jhajjar", State: "Haryana", Pincode: "124507", Type: "city"},
			{Name: "Panipat", District: "Panipat", State: "Haryana", Pincode: "132103", Type: "city"},
			{Name: "Karnal", District: "Karnal", State: "Haryana", Pincode: "132001", Type: "city"},
			{Name: "Ambala", District: "Ambala", State: "Haryana", Pincode: "134003", Type: "city"},
		},
		BaseYields: map[string]float64{
			"rice":      5.5,
			"wheat":     4.2,
			"maize":     7.0,
			"cotton":    2.8,
			"sugarcane": 85,
			"soybean":   3.2,
		},
		DefaultYield: 5.0,
		DefaultCrop:  "wheat",
		Cities: []CityBounds{
			{Name: "Delhi", MinLat: 28.5, MaxLat: 28.7, MinLng: 77.1, MaxLng: 77.3},
			{Name: "Mumbai", MinLat: 19.0, MaxLat: 19.2, MinLng: 72.8, MaxLng: 73.0},
			{Name: "Bangalore", MinLat: 12.9, MaxLat: 13.0, MinLng: 77.5, MaxLng: 77.7},
			{Name: "Hyderabad", MinLat: 17.3, MaxLat: 17.4, MinLng: 78.4, MaxLng: 78.5},
			{Name: "Chennai", MinLat: 13.0, MaxLat: 13.1, MinLng: 80.2, MaxLng: 80.3},
		},
		WeatherDescriptions: []string{
			"Clear sky", "Partly cloudy", "Scattered clouds",
			"Light breeze", "Sunny", "Overcast", "Light rain",
			"Mostly sunny", "Few clouds",
		},
	}
}

// LoadReferenceData reads tables from a YAML file. Sections missing from the
// file keep their built-in values. The merged result must pass Validate.
func LoadReferenceData(path string) (ReferenceData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ReferenceData{}, fmt.Errorf("read reference data: %w", err)
	}
	return ParseReferenceData(raw)
}

// ParseReferenceData decodes YAML reference data over the built-in defaults.
func ParseReferenceData(raw []byte) (ReferenceData, error) {
	var file ReferenceData
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return ReferenceData{}, fmt.Errorf("parse reference data: %w", err)
	}

	ref := DefaultReferenceData()
	if file.Locations != nil {
		ref.Locations = file.Locations
	}
	if file.BaseYields != nil {
		ref.BaseYields = file.BaseYields
	}
	if file.DefaultYield != 0 {
		ref.DefaultYield = file.DefaultYield
	}
	if file.DefaultCrop != "" {
		ref.DefaultCrop = file.DefaultCrop
	}
	if file.Cities != nil {
		ref.Cities = file.Cities
	}
	if file.WeatherDescriptions != nil {
		ref.WeatherDescriptions = file.WeatherDescriptions
	}

	if err := ref.Validate(); err != nil {
		return ReferenceData{}, err
	}
	return ref, nil
}

// YAML encodes the tables in the format LoadReferenceData reads.
func (r ReferenceData) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Validate reports every problem in the tables, joined into one error.
func (r ReferenceData) Validate() error {
	var errs []error

	for i, loc := range r.Locations {
		if loc.Name == "" {
			errs = append(errs, fmt.Errorf("locations[%d]: name is required", i))
		}
		if loc.Type != "village" && loc.Type != "city" {
			errs = append(errs, fmt.Errorf("locations[%d] %q: type must be village or city, got %q", i, loc.Name, loc.Type))
		}
	}

	if len(r.BaseYields) == 0 {
		errs = append(errs, errors.New("base_yields: at least one crop is required"))
	}
	for crop, y := range r.BaseYields {
		if !(y > 0) || math.IsInf(y, 0) {
			errs = append(errs, fmt.Errorf("base_yields[%s]: yield must be positive, got %v", crop, y))
		}
	}
	if !(r.DefaultYield > 0) || math.IsInf(r.DefaultYield, 0) {
		errs = append(errs, fmt.Errorf("default_yield: must be positive, got %v", r.DefaultYield))
	}

	for i, c := range r.Cities {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("cities[%d]: name is required", i))
		}
		if c.MinLat > c.MaxLat || c.MinLng > c.MaxLng {
			errs = append(errs, fmt.Errorf("cities[%d] %q: min bound exceeds max bound", i, c.Name))
		}
	}

	if len(r.WeatherDescriptions) == 0 {
		errs = append(errs, errors.New("weather_descriptions: at least one description is required"))
	}

	return errors.Join(errs...)
}
