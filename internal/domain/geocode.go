package domain

import (
	"context"
	"log/slog"
)

// UnknownLocation labels coordinates outside every configured city box.
const UnknownLocation = "Unknown Location"

// ResolveLocationLabel names a coordinate. City boxes are checked first, in
// order; when none match and a resolver is configured, the resolver's place name
// is used. Resolver failures and empty results degrade to UnknownLocation.
func ResolveLocationLabel(ctx context.Context, lat, lng float64, cities []CityBounds, resolver PlaceResolver, logger *slog.Logger) string {
	for _, c := range cities {
		if c.Contains(lat, lng) {
			return c.Name
		}
	}

	if resolver == nil {
		return UnknownLocation
	}

	result, err := resolver.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", lat,
			"lng", lng,
			"error", err,
		)
		return UnknownLocation
	}
	if result.PlaceName != "" {
		return result.PlaceName
	}
	if result.FormattedAddress != "" {
		return result.FormattedAddress
	}
	return UnknownLocation
}
