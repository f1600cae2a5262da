package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// Temperature model: warmer toward the equator, perturbed, then clamped.
const (
	equatorTemperature   = 35.0
	latitudeCoolingRate  = 0.8
	temperatureJitterMin = -3.0
	temperatureJitterMax = 8.0
	minTemperature       = 15.0
	maxTemperature       = 45.0
)

// ErrInvalidCoordinate is returned when a latitude or longitude is not a finite number.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// WeatherSample is a synthetic weather reading. Fields are drawn independently
// and are not meteorologically consistent with each other.
type WeatherSample struct {
	Location      string  `json:"location"`
	Temperature   float64 `json:"temperature"`
	Humidity      int     `json:"humidity"`
	Pressure      int     `json:"pressure"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection int     `json:"windDirection"`
	Visibility    float64 `json:"visibility"`
	UVIndex       int     `json:"uvIndex"`
	CloudCover    int     `json:"cloudCover"`
	Precipitation float64 `json:"precipitation"`
	Description   string  `json:"description"`
}

// FallbackWeather is returned alongside an error when coordinates cannot be parsed.
func FallbackWeather(rawLat, rawLng string) WeatherSample {
	return WeatherSample{
		Location:      fmt.Sprintf("Error Location (%s, %s)", rawLat, rawLng),
		Temperature:   25.0,
		Humidity:      60,
		Pressure:      1013,
		WindSpeed:     5.0,
		WindDirection: 180,
		Visibility:    10.0,
		UVIndex:       5,
		CloudCover:    50,
		Precipitation: 0.0,
		Description:   "Data unavailable",
	}
}

// WeatherSynthesizer fabricates plausible weather samples from coordinates.
// It is safe for concurrent use.
type WeatherSynthesizer struct {
	cities       []CityBounds
	descriptions []string
	resolver     PlaceResolver
	logger       *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWeatherSynthesizer creates a synthesizer over the reference tables. Pass a
// nil resolver to label coordinates from city boxes alone.
func NewWeatherSynthesizer(ref ReferenceData, rng *rand.Rand, resolver PlaceResolver, logger *slog.Logger) *WeatherSynthesizer {
	return &WeatherSynthesizer{
		cities:       ref.Cities,
		descriptions: ref.WeatherDescriptions,
		resolver:     resolver,
		logger:       logger,
		rng:          rng,
	}
}

// Synthesize parses the raw path coordinates and generates a sample. On a parse
// failure it returns FallbackWeather together with an ErrInvalidCoordinate error.
func (s *WeatherSynthesizer) Synthesize(ctx context.Context, rawLat, rawLng string) (WeatherSample, error) {
	lat, err := parseCoordinate("latitude", rawLat)
	if err != nil {
		return FallbackWeather(rawLat, rawLng), err
	}
	lng, err := parseCoordinate("longitude", rawLng)
	if err != nil {
		return FallbackWeather(rawLat, rawLng), err
	}

	label := ResolveLocationLabel(ctx, lat, lng, s.cities, s.resolver, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	base := equatorTemperature - math.Abs(lat)*latitudeCoolingRate
	temperature := roundTo(base+s.uniform(temperatureJitterMin, temperatureJitterMax), 1)

	return WeatherSample{
		Location:      fmt.Sprintf("%s (%s, %s)", label, rawLat, rawLng),
		Temperature:   clamp(temperature, minTemperature, maxTemperature),
		Humidity:      s.intBetween(45, 85),
		Pressure:      s.intBetween(995, 1020),
		WindSpeed:     roundTo(s.uniform(1, 15), 1),
		WindDirection: s.intBetween(0, 360),
		Visibility:    roundTo(s.uniform(5, 20), 1),
		UVIndex:       s.intBetween(2, 11),
		CloudCover:    s.intBetween(5, 90),
		Precipitation: roundTo(s.uniform(0, 5), 1),
		Description:   s.descriptions[s.rng.IntN(len(s.descriptions))],
	}, nil
}

// uniform draws from [lo, hi]. Callers hold s.mu.
func (s *WeatherSynthesizer) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// intBetween draws an integer from [lo, hi], both inclusive. Callers hold s.mu.
func (s *WeatherSynthesizer) intBetween(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func parseCoordinate(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: could not convert %s %q to a number", ErrInvalidCoordinate, name, raw)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidCoordinate, name)
	}
	return v, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
