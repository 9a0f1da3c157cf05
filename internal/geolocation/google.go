package geolocation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/icarus/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleAPIClient is the subset of the Google Maps client used for geolocation.
type GoogleAPIClient interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleSource resolves the host position through the Google Geolocation API,
// falling back to IP-based lookup.
type GoogleSource struct {
	client GoogleAPIClient
	log    *slog.Logger
}

func NewGoogleSource(client GoogleAPIClient, log *slog.Logger) *GoogleSource {
	return &GoogleSource{client: client, log: log}
}

// Locate asks the API for a position. Failures yield an enabled reading without a fix, so the
// caller keeps showing the locating message instead of dropping to a disabled state.
func (gs *GoogleSource) Locate(ctx context.Context) (Reading, error) {
	gs.log.DebugContext(ctx, "Locating using Google Geolocation API")

	result, err := gs.client.Geolocate(ctx, &maps.GeolocationRequest{ConsiderIP: true})
	if err != nil {
		return Reading{Available: true, Enabled: true}, fmt.Errorf("failed to geolocate: %w", err)
	}
	if result == nil {
		return Reading{Available: true, Enabled: true}, ErrNoFix
	}

	gs.log.DebugContext(ctx, "Location resolved", "accuracy_m", result.Accuracy)

	return Fix(models.Coordinate{Latitude: result.Location.Lat, Longitude: result.Location.Lng}), nil
}
