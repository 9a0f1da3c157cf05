package models

import (
	"fmt"
	"math"
)

// NotAvailable is rendered in place of any absent flight attribute.
const NotAvailable = "N/A"

// FlightRecord is the provider-agnostic shape of a single aircraft observation.
// Optional attributes are pointers: nil means the provider did not report it,
// which is different from a reported zero.
type FlightRecord struct {
	ID            string   `json:"id"` // ICAO24 transponder address, the stable identity of a flight.
	Callsign      *string  `json:"callsign,omitempty"`
	OriginCountry *string  `json:"origin_country,omitempty"`
	Longitude     float64  `json:"longitude"`
	Latitude      float64  `json:"latitude"`
	VelocityMs    *float64 `json:"velocity_ms,omitempty"`
	HeadingDeg    *float64 `json:"heading_deg,omitempty"`
	AltitudeM     *float64 `json:"altitude_m,omitempty"`
}

// Position returns the record position as a Coordinate.
func (f FlightRecord) Position() Coordinate {
	return Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
}

// Heading returns the heading in degrees, or zero when the provider did not report one.
func (f FlightRecord) Heading() float64 {
	if f.HeadingDeg == nil {
		return 0
	}

	return *f.HeadingDeg
}

// FlightDetails holds the human readable attributes shown in the popup.
type FlightDetails struct {
	Callsign      string `json:"callsign"`
	OriginCountry string `json:"origin_country"`
	Altitude      string `json:"altitude"`
	Velocity      string `json:"velocity"`
	Heading       string `json:"heading"`
}

// Details formats the record for display. Absent values are rendered as "N/A", never as zero.
func (f FlightRecord) Details() FlightDetails {
	return FlightDetails{
		Callsign:      textOrNA(f.Callsign),
		OriginCountry: textOrNA(f.OriginCountry),
		Altitude:      roundedOrNA(f.AltitudeM, "%d m"),
		Velocity:      roundedOrNA(f.VelocityMs, "%d m/s"),
		Heading:       headingOrNA(f.HeadingDeg),
	}
}

func textOrNA(v *string) string {
	if v == nil || *v == "" {
		return NotAvailable
	}

	return *v
}

func roundedOrNA(v *float64, format string) string {
	if v == nil {
		return NotAvailable
	}

	return fmt.Sprintf(format, int64(math.Round(*v)))
}

// headingOrNA rounds to whole degrees, so 359.6 is shown as 0°.
func headingOrNA(v *float64) string {
	if v == nil {
		return NotAvailable
	}

	deg := math.Mod(math.Round(*v), 360)
	if deg < 0 {
		deg += 360
	}

	return fmt.Sprintf("%d°", int64(deg))
}

// FlightSet is the ordered result of one fetch cycle. It fully replaces the previous set,
// so identity across fetches must be tracked by FlightRecord.ID.
type FlightSet []FlightRecord

// Find looks a flight up by its ID.
func (s FlightSet) Find(id string) (FlightRecord, bool) {
	for _, f := range s {
		if f.ID == id {
			return f, true
		}
	}

	return FlightRecord{}, false
}

// IDs returns the flight identifiers in set order.
func (s FlightSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, f := range s {
		ids = append(ids, f.ID)
	}

	return ids
}
