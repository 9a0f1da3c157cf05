package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/icarus/internal/geo"
	"github.com/UnknownOlympus/icarus/internal/models"
	"golang.org/x/time/rate"
)

// OpenSkyBaseURL -- OpenSky Network state vectors endpoint.
const OpenSkyBaseURL = "https://opensky-network.org/api/states/all"

// Positions inside an OpenSky state vector.
const (
	openSkyICAO24        = 0
	openSkyCallsign      = 1
	openSkyOriginCountry = 2
	openSkyLongitude     = 5
	openSkyLatitude      = 6
	openSkyVelocity      = 9
	openSkyTrueTrack     = 10
	openSkyGeoAltitude   = 13
	openSkyMinVectorLen  = openSkyGeoAltitude + 1
)

// OpenSkyProvider implements the Provider interface using the OpenSky Network bounding-box query.
// The server filters by a square box; WithCircularFilter trims the square to the exact circle.
type OpenSkyProvider struct {
	transport *transport   // Rate limited, circuit-broken HTTP transport
	baseURL   string       // Base URL for the OpenSky API
	log       *slog.Logger // Logger for logging operations
	circular  bool         // Apply the great-circle filter after the box query
}

// NewOpenSkyProvider creates a new OpenSky provider with its own HTTP client.
func NewOpenSkyProvider(rateLimit int, timeout time.Duration, log *slog.Logger) *OpenSkyProvider {
	client := &http.Client{Timeout: timeout}

	return NewOpenSkyProviderWithClient(client, rate.NewLimiter(rate.Limit(rateLimit), rateLimit), log)
}

// NewOpenSkyProviderWithClient allows injecting a custom HTTP client and limiter.
func NewOpenSkyProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *OpenSkyProvider {
	return &OpenSkyProvider{
		transport: newTransport(string(ProviderTypeOpenSky), client, limiter, log),
		baseURL:   OpenSkyBaseURL,
		log:       log,
	}
}

// WithCircularFilter makes the provider drop flights outside the search circle.
func (op *OpenSkyProvider) WithCircularFilter() *OpenSkyProvider {
	op.circular = true
	return op
}

// FetchNearby queries OpenSky with a bounding box derived from center and radius.
// A reply without a "states" field is malformed; "states": null means no flights in the box.
func (op *OpenSkyProvider) FetchNearby(
	ctx context.Context,
	center models.Coordinate,
	radius geo.Radius,
) (models.FlightSet, error) {
	box, err := geo.BuildBoundingBox(center, radius.NauticalMiles())
	if err != nil {
		return nil, fmt.Errorf("failed to build bounding box: %w", err)
	}

	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lamin", formatDegrees(box.LatMin))
	query.Set("lomin", formatDegrees(box.LonMin))
	query.Set("lamax", formatDegrees(box.LatMax))
	query.Set("lomax", formatDegrees(box.LonMax))
	query.Set("time", "0")
	reqURL.RawQuery = query.Encode()

	body, err := op.transport.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	// Decoded as raw fields so that a missing "states" key can be told apart from null.
	var result map[string]json.RawMessage
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode opensky response: %w", ErrMalformedResponse, err)
	}
	rawStates, found := result["states"]
	if !found {
		return nil, fmt.Errorf("%w: opensky response has no states field", ErrMalformedResponse)
	}

	var states [][]any
	if err = json.Unmarshal(rawStates, &states); err != nil {
		return nil, fmt.Errorf("%w: opensky states are not a list of vectors: %w", ErrMalformedResponse, err)
	}

	var filter *geo.RadiusFilter
	if op.circular {
		circle, errFilter := geo.BuildRadiusFilter(center, radius.Kilometers())
		if errFilter != nil {
			return nil, fmt.Errorf("failed to build radius filter: %w", errFilter)
		}
		filter = &circle
	}

	flights := make(models.FlightSet, 0, len(states))
	for idx, vector := range states {
		record, ok, errVec := parseOpenSkyVector(vector)
		if errVec != nil {
			return nil, fmt.Errorf("%w: state vector %d: %w", ErrMalformedResponse, idx, errVec)
		}
		if !ok {
			continue
		}
		if filter != nil && !filter.Contains(record.Position()) {
			continue
		}
		flights = append(flights, record)
	}

	op.log.DebugContext(ctx, "OpenSky states normalized", "states", len(states), "flights", len(flights))

	return flights, nil
}

// parseOpenSkyVector maps one positional state vector. It reports ok=false for vectors
// without a position, which are skipped rather than placed at (0, 0).
func parseOpenSkyVector(vector []any) (models.FlightRecord, bool, error) {
	if len(vector) < openSkyMinVectorLen {
		return models.FlightRecord{}, false, fmt.Errorf("expected at least %d fields, got %d",
			openSkyMinVectorLen, len(vector))
	}

	icao24, ok := vector[openSkyICAO24].(string)
	if !ok || strings.TrimSpace(icao24) == "" {
		return models.FlightRecord{}, false, fmt.Errorf("missing icao24 at index %d", openSkyICAO24)
	}

	if vector[openSkyLongitude] == nil || vector[openSkyLatitude] == nil {
		return models.FlightRecord{}, false, nil
	}
	lon, okLon := vector[openSkyLongitude].(float64)
	lat, okLat := vector[openSkyLatitude].(float64)
	if !okLon || !okLat {
		return models.FlightRecord{}, false, fmt.Errorf("non-numeric position for %s", icao24)
	}

	return models.FlightRecord{
		ID:            normalizeICAO24(icao24),
		Callsign:      optionalString(vector[openSkyCallsign]),
		OriginCountry: optionalString(vector[openSkyOriginCountry]),
		Longitude:     lon,
		Latitude:      lat,
		VelocityMs:    optionalFloat(vector[openSkyVelocity]),
		HeadingDeg:    optionalHeading(optionalFloat(vector[openSkyTrueTrack])),
		AltitudeM:     optionalFloat(vector[openSkyGeoAltitude]),
	}, true, nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func normalizeICAO24(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}

func optionalFloat(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}

	return &f
}

// optionalHeading folds a heading into [0, 360).
func optionalHeading(v *float64) *float64 {
	if v == nil {
		return nil
	}

	const fullTurn = 360.0
	h := math.Mod(*v, fullTurn)
	if math.IsNaN(h) {
		return nil
	}
	if h < 0 {
		h += fullTurn
	}
	// -1e-20 + 360 rounds to 360.
	if h >= fullTurn {
		h = 0
	}

	return &h
}
