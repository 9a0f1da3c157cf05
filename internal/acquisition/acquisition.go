package acquisition

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/icarus/internal/geo"
	"github.com/UnknownOlympus/icarus/internal/models"
)

// Acquirer is the single entry point for flight data acquisition. It dispatches to the
// provider named by the selector and contains every failure at this boundary: callers
// always get a usable FlightSet plus the classified error for their own policy.
type Acquirer struct {
	providers map[ProviderType]Provider
	log       *slog.Logger
}

// NewAcquirer creates an Acquirer over the registered providers.
func NewAcquirer(log *slog.Logger, providers map[ProviderType]Provider) *Acquirer {
	registered := make(map[ProviderType]Provider, len(providers))
	for name, provider := range providers {
		registered[name] = provider
	}

	return &Acquirer{providers: registered, log: log}
}

// FetchNearbyFlights fetches and normalizes flights around center using the selected provider.
// On failure it logs the diagnostic and returns an empty FlightSet together with the error.
// Duplicate IDs in a provider reply keep their first occurrence.
func (a *Acquirer) FetchNearbyFlights(
	ctx context.Context,
	center models.Coordinate,
	radius geo.Radius,
	selector ProviderType,
) (models.FlightSet, error) {
	provider, ok := a.providers[selector]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownProvider, selector)
		a.log.ErrorContext(ctx, "Flight provider is not registered", "provider", selector)
		return models.FlightSet{}, err
	}

	flights, err := provider.FetchNearby(ctx, center, radius)
	if err != nil {
		a.log.WarnContext(ctx, "Flight acquisition failed",
			"provider", selector,
			"kind", Kind(err),
			"error", err)
		return models.FlightSet{}, err
	}

	unique := make(models.FlightSet, 0, len(flights))
	seen := make(map[string]struct{}, len(flights))
	for _, flight := range flights {
		if _, dup := seen[flight.ID]; dup {
			a.log.DebugContext(ctx, "Dropping duplicate flight", "provider", selector, "id", flight.ID)
			continue
		}
		seen[flight.ID] = struct{}{}
		unique = append(unique, flight)
	}

	a.log.DebugContext(ctx, "Flights acquired",
		"provider", selector,
		"lat", center.Latitude,
		"lon", center.Longitude,
		"radius", radius.String(),
		"flights", len(unique))

	return unique, nil
}
