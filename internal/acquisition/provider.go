package acquisition

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/icarus/internal/geo"
	"github.com/UnknownOlympus/icarus/internal/models"
)

// Provider is a flight data acquisition strategy against one external telemetry source.
// FetchNearby returns the flights around center normalized to models.FlightRecord,
// so downstream code never depends on the provider's wire format.
type Provider interface {
	FetchNearby(ctx context.Context, center models.Coordinate, radius geo.Radius) (models.FlightSet, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
