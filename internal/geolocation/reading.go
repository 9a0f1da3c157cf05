package geolocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/icarus/internal/models"
)

var (
	// ErrUnavailable is returned when the platform offers no geolocation capability.
	ErrUnavailable = errors.New("geolocation is not supported")
	// ErrDenied is returned when geolocation exists but the user has not enabled it.
	ErrDenied = errors.New("geolocation is not enabled")
	// ErrNoFix is returned while the capability is enabled but no position is known yet.
	ErrNoFix = errors.New("geolocation fix is not available yet")
)

// Reading is a single user-location sample.
type Reading struct {
	Available bool               `json:"available"`
	Enabled   bool               `json:"enabled"`
	Coords    *models.Coordinate `json:"coords,omitempty"`
}

// Fix returns a ready reading at the given coordinates.
func Fix(coords models.Coordinate) Reading {
	return Reading{Available: true, Enabled: true, Coords: &coords}
}

// Err classifies the reading. A nil error means Coords can be used to query flights.
func (r Reading) Err() error {
	switch {
	case !r.Available:
		return ErrUnavailable
	case !r.Enabled:
		return ErrDenied
	case r.Coords == nil:
		return ErrNoFix
	}

	if err := r.Coords.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrNoFix, err)
	}

	return nil
}

// Source produces user-location readings.
type Source interface {
	Locate(ctx context.Context) (Reading, error)
}
