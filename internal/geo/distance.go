package geo

import (
	"math"

	"github.com/UnknownOlympus/icarus/internal/models"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile converts nautical miles to kilometers.
	KmPerNauticalMile = 1.852

	// NauticalMilesPerDegree is the length of one degree of latitude.
	NauticalMilesPerDegree = 60.0

	degreesToRadians = math.Pi / 180.0
)

// GreatCircleDistanceKm returns the haversine distance between two coordinates in kilometers.
// It is symmetric and zero for identical points.
func GreatCircleDistanceKm(a, b models.Coordinate) float64 {
	lat1 := a.Latitude * degreesToRadians
	lat2 := b.Latitude * degreesToRadians
	dLat := (b.Latitude - a.Latitude) * degreesToRadians
	dLon := (b.Longitude - a.Longitude) * degreesToRadians

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Rounding can push h a hair outside [0,1] for antipodal points.
	h = math.Min(math.Max(h, 0), 1)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
