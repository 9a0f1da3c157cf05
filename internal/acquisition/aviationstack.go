package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/icarus/internal/geo"
	"github.com/UnknownOlympus/icarus/internal/models"
	"golang.org/x/time/rate"
)

// AviationStackBaseURL -- AviationStack real-time flights endpoint.
const AviationStackBaseURL = "http://api.aviationstack.com/v1/flights"

// DefaultAviationStackLimit is the page size requested from AviationStack.
const DefaultAviationStackLimit = 100

const kmhToMs = 1 / 3.6

// AviationStackProvider implements the Provider interface using the AviationStack global flight list.
// The API has no geographic filter, so the provider keeps only flights with live telemetry
// inside the search circle.
type AviationStackProvider struct {
	transport  *transport   // Rate limited, circuit-broken HTTP transport
	baseURL    string       // Base URL for the AviationStack API
	apiKey     string       // access_key query parameter
	limit      int          // Maximum number of flights per request
	flightICAO string       // Optional flight_icao filter replacing flight_status=active
	log        *slog.Logger // Logger for logging operations
}

// NewAviationStackProvider creates a new AviationStack provider with its own HTTP client.
func NewAviationStackProvider(apiKey string, rateLimit int, timeout time.Duration, log *slog.Logger) *AviationStackProvider {
	client := &http.Client{Timeout: timeout}

	return NewAviationStackProviderWithClient(client, apiKey, rate.NewLimiter(rate.Limit(rateLimit), rateLimit), log)
}

// NewAviationStackProviderWithClient allows injecting a custom HTTP client and limiter.
func NewAviationStackProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *AviationStackProvider {
	return &AviationStackProvider{
		transport: newTransport(string(ProviderTypeAviationStack), client, limiter, log),
		baseURL:   AviationStackBaseURL,
		apiKey:    apiKey,
		limit:     DefaultAviationStackLimit,
		log:       log,
	}
}

// WithFlightICAO restricts the query to a single flight instead of every active flight.
func (ap *AviationStackProvider) WithFlightICAO(flightICAO string) *AviationStackProvider {
	ap.flightICAO = flightICAO
	return ap
}

// WithLimit overrides the page size.
func (ap *AviationStackProvider) WithLimit(limit int) *AviationStackProvider {
	if limit > 0 {
		ap.limit = limit
	}
	return ap
}

// AviationStack API response (only the fields the tracker reads).
type aviationStackResponse struct {
	Data *[]aviationStackFlight `json:"data"`
}

type aviationStackFlight struct {
	Flight struct {
		IATA *string `json:"iata"`
		ICAO *string `json:"icao"`
	} `json:"flight"`
	Aircraft *struct {
		ICAO24 *string `json:"icao24"`
	} `json:"aircraft"`
	Live *struct {
		Latitude        *float64 `json:"latitude"`
		Longitude       *float64 `json:"longitude"`
		Altitude        *float64 `json:"altitude"`         // meters
		Direction       *float64 `json:"direction"`        // degrees
		SpeedHorizontal *float64 `json:"speed_horizontal"` // km/h
	} `json:"live"`
}

// FetchNearby requests the active flight list and keeps flights within radius of center.
// Without an API key it fails with ErrMissingCredential and issues no request.
func (ap *AviationStackProvider) FetchNearby(
	ctx context.Context,
	center models.Coordinate,
	radius geo.Radius,
) (models.FlightSet, error) {
	if ap.apiKey == "" {
		return nil, fmt.Errorf("%w: aviationstack requires an access key", ErrMissingCredential)
	}

	filter, err := geo.BuildRadiusFilter(center, radius.Kilometers())
	if err != nil {
		return nil, fmt.Errorf("failed to build radius filter: %w", err)
	}

	reqURL, err := url.Parse(ap.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("access_key", ap.apiKey)
	if ap.flightICAO != "" {
		query.Set("flight_icao", ap.flightICAO)
	} else {
		query.Set("flight_status", "active")
	}
	query.Set("limit", strconv.Itoa(ap.limit))
	reqURL.RawQuery = query.Encode()

	body, err := ap.transport.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result aviationStackResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode aviationstack response: %w", ErrMalformedResponse, err)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: aviationstack response has no data field", ErrMalformedResponse)
	}

	flights := make(models.FlightSet, 0, len(*result.Data))
	for _, raw := range *result.Data {
		record, ok := raw.normalize()
		if !ok {
			continue
		}
		if !filter.Contains(record.Position()) {
			continue
		}
		flights = append(flights, record)
	}

	ap.log.DebugContext(ctx, "AviationStack flights filtered",
		"received", len(*result.Data),
		"in_range", len(flights),
		"radius_km", filter.RadiusKm)

	return flights, nil
}

// normalize maps a flight with live telemetry and an ICAO24 address. Flights with a null
// live block or null live coordinates are excluded, never defaulted to zero.
func (f aviationStackFlight) normalize() (models.FlightRecord, bool) {
	if f.Live == nil || f.Live.Latitude == nil || f.Live.Longitude == nil {
		return models.FlightRecord{}, false
	}
	if f.Aircraft == nil || f.Aircraft.ICAO24 == nil || *f.Aircraft.ICAO24 == "" {
		return models.FlightRecord{}, false
	}

	callsign := f.Flight.ICAO
	if callsign == nil || *callsign == "" {
		callsign = f.Flight.IATA
	}

	var velocity *float64
	if f.Live.SpeedHorizontal != nil {
		ms := *f.Live.SpeedHorizontal * kmhToMs
		velocity = &ms
	}

	return models.FlightRecord{
		ID:         normalizeICAO24(*f.Aircraft.ICAO24),
		Callsign:   optionalStringPtr(callsign),
		Longitude:  *f.Live.Longitude,
		Latitude:   *f.Live.Latitude,
		VelocityMs: velocity,
		HeadingDeg: optionalHeading(f.Live.Direction),
		AltitudeM:  f.Live.Altitude,
	}, true
}

func optionalStringPtr(v *string) *string {
	if v == nil {
		return nil
	}

	return optionalString(*v)
}
