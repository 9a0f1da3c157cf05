package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Coordinate represents a geographical point defined by its latitude and longitude.
// A Coordinate is immutable per reading; a new reading replaces it wholesale.
type Coordinate struct {
	Latitude  float64 `json:"latitude"  validate:"gte=-90,lte=90"`   // Latitude of the geographical point.
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"` // Longitude of the geographical point.
}

// Validate reports whether the coordinate lies inside the WGS84 ranges.
func (c Coordinate) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinate (%f, %f): %w", c.Latitude, c.Longitude, err)
	}

	return nil
}
