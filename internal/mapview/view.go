package mapview

import (
	"github.com/UnknownOlympus/icarus/internal/models"
)

const (
	// DefaultZoom is the map zoom level used when centering on the user.
	DefaultZoom = 12
	// BoundsLonPadding and BoundsLatPadding restrict panning around the user position.
	BoundsLonPadding = 0.2
	BoundsLatPadding = 0.06
)

// Status describes whether the map can show flights.
type Status string

const (
	StatusUnavailable Status = "unavailable"
	StatusDisabled    Status = "disabled"
	StatusLocating    Status = "locating"
	StatusReady       Status = "ready"
)

// Message returns the text shown to the user instead of the map, or "" when ready.
func (s Status) Message() string {
	switch s {
	case StatusUnavailable:
		return "Your browser does not support Geolocation"
	case StatusDisabled:
		return "Geolocation is not enabled"
	case StatusLocating:
		return "Fetching location..."
	default:
		return ""
	}
}

// Marker is one rendered aircraft.
type Marker struct {
	ID          string  `json:"id"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	RotationDeg float64 `json:"rotation"`
	Emphasized  bool    `json:"emphasized"`
}

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	SouthWest models.Coordinate `json:"south_west"`
	NorthEast models.Coordinate `json:"north_east"`
}

// Viewport positions the map around the user.
type Viewport struct {
	Center    models.Coordinate `json:"center"`
	Zoom      int               `json:"zoom"`
	MaxBounds Bounds            `json:"max_bounds"`
}

// Popup is the rendered detail popup.
type Popup struct {
	State    string               `json:"state"`
	FlightID string               `json:"flight_id"`
	Details  models.FlightDetails `json:"details"`
}

// View is everything a client needs to draw the map.
type View struct {
	Status   Status             `json:"status"`
	Message  string             `json:"message,omitempty"`
	User     *models.Coordinate `json:"user,omitempty"`
	Viewport *Viewport          `json:"viewport,omitempty"`
	Markers  []Marker           `json:"markers"`
	Popup    *Popup             `json:"popup,omitempty"`
}

// Input is the state a View is rendered from.
type Input struct {
	Status     Status
	User       *models.Coordinate
	Flights    models.FlightSet
	SelectedID string
	// PopupState is "" when the popup is closed.
	PopupState  string
	PopupRecord *models.FlightRecord
}

// Build renders the input. Markers and the popup are only produced once the user position is known.
func Build(in Input) View {
	view := View{
		Status:  in.Status,
		Message: in.Status.Message(),
		Markers: []Marker{},
	}
	if in.Status != StatusReady || in.User == nil {
		return view
	}

	user := *in.User
	view.User = &user
	view.Viewport = viewportFor(user)

	view.Markers = make([]Marker, 0, len(in.Flights))
	for _, flight := range in.Flights {
		view.Markers = append(view.Markers, Marker{
			ID:          flight.ID,
			Latitude:    flight.Latitude,
			Longitude:   flight.Longitude,
			RotationDeg: flight.Heading(),
			Emphasized:  in.PopupState != "" && flight.ID == in.SelectedID,
		})
	}

	if in.PopupState != "" && in.PopupRecord != nil {
		view.Popup = &Popup{
			State:    in.PopupState,
			FlightID: in.PopupRecord.ID,
			Details:  in.PopupRecord.Details(),
		}
	}

	return view
}

func viewportFor(center models.Coordinate) *Viewport {
	return &Viewport{
		Center: center,
		Zoom:   DefaultZoom,
		MaxBounds: Bounds{
			SouthWest: models.Coordinate{
				Latitude:  center.Latitude - BoundsLatPadding,
				Longitude: center.Longitude - BoundsLonPadding,
			},
			NorthEast: models.Coordinate{
				Latitude:  center.Latitude + BoundsLatPadding,
				Longitude: center.Longitude + BoundsLonPadding,
			},
		},
	}
}
