package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/icarus/internal/models"
)

// Geofence precondition errors.
var (
	ErrInvalidRadius = errors.New("search radius must be positive and finite")
	ErrInvalidCenter = errors.New("search center must have finite components")
)

// Radius is a search distance. It keeps the unit it was created with so that
// conversions back to the same unit are exact.
type Radius struct {
	value float64
	nm    bool
}

// NauticalMiles creates a radius expressed in nautical miles.
func NauticalMiles(v float64) Radius { return Radius{value: v, nm: true} }

// Kilometers creates a radius expressed in kilometers.
func Kilometers(v float64) Radius { return Radius{value: v} }

// NauticalMiles returns the radius in nautical miles.
func (r Radius) NauticalMiles() float64 {
	if r.nm {
		return r.value
	}

	return r.value / KmPerNauticalMile
}

// Kilometers returns the radius in kilometers.
func (r Radius) Kilometers() float64 {
	if r.nm {
		return r.value * KmPerNauticalMile
	}

	return r.value
}

func (r Radius) String() string {
	if r.nm {
		return fmt.Sprintf("%gnm", r.value)
	}

	return fmt.Sprintf("%gkm", r.value)
}

// BoundingBox is an axis-aligned latitude/longitude rectangle.
type BoundingBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b BoundingBox) Contains(c models.Coordinate) bool {
	return c.Latitude >= b.LatMin && c.Latitude <= b.LatMax &&
		c.Longitude >= b.LonMin && c.Longitude <= b.LonMax
}

// RadiusFilter is an exact circular geofence evaluated on the client side.
type RadiusFilter struct {
	Center   models.Coordinate `json:"center"`
	RadiusKm float64           `json:"radius_km"`
}

// Contains reports whether the coordinate lies within the great-circle radius of the center.
func (f RadiusFilter) Contains(c models.Coordinate) bool {
	return GreatCircleDistanceKm(f.Center, c) <= f.RadiusKm
}

// BuildBoundingBox converts a center and a radius in nautical miles into a square box,
// using 1 degree = 60 nautical miles for both axes. The box is a square approximation of the
// search circle. No wraparound normalization is done at the antimeridian or the poles.
func BuildBoundingBox(center models.Coordinate, radiusNauticalMiles float64) (BoundingBox, error) {
	if err := checkCenter(center); err != nil {
		return BoundingBox{}, err
	}
	if !positive(radiusNauticalMiles) {
		return BoundingBox{}, fmt.Errorf("%w: %f nm", ErrInvalidRadius, radiusNauticalMiles)
	}

	offset := radiusNauticalMiles / NauticalMilesPerDegree

	return BoundingBox{
		LatMin: center.Latitude - offset,
		LatMax: center.Latitude + offset,
		LonMin: center.Longitude - offset,
		LonMax: center.Longitude + offset,
	}, nil
}

// BuildRadiusFilter validates and builds a circular filter.
func BuildRadiusFilter(center models.Coordinate, radiusKm float64) (RadiusFilter, error) {
	if err := checkCenter(center); err != nil {
		return RadiusFilter{}, err
	}
	if !positive(radiusKm) {
		return RadiusFilter{}, fmt.Errorf("%w: %f km", ErrInvalidRadius, radiusKm)
	}

	return RadiusFilter{Center: center, RadiusKm: radiusKm}, nil
}

func checkCenter(c models.Coordinate) error {
	if !finite(c.Latitude) || !finite(c.Longitude) {
		return ErrInvalidCenter
	}

	return nil
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
