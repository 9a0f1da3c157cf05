package geolocation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/icarus/internal/models"
	"googlemaps.github.io/maps"
)

// SourceType identifies where user-location readings come from.
type SourceType string

const (
	// SourceTypeClient means readings are pushed by the map client over the API.
	SourceTypeClient SourceType = "client"
	// SourceTypeStatic reports a fixed configured position.
	SourceTypeStatic SourceType = "static"
	// SourceTypeGoogle queries the Google Geolocation API.
	SourceTypeGoogle SourceType = "google"
)

var (
	// ErrUnknownSource is returned for an unsupported source type.
	ErrUnknownSource = errors.New("unknown geolocation source")
	// ErrMissingAPIKey is returned when the Google source is configured without a key.
	ErrMissingAPIKey = errors.New("API key is required for Google source")
)

// SourceConfig holds configuration for creating a Source.
type SourceConfig struct {
	Type      SourceType
	APIKey    string
	RateLimit int
	Static    models.Coordinate
	Logger    *slog.Logger
}

// NewSource builds a polling Source. The client type has no polling source and returns nil.
func NewSource(config SourceConfig) (Source, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	switch config.Type {
	case SourceTypeClient:
		return nil, nil
	case SourceTypeStatic:
		if err := config.Static.Validate(); err != nil {
			return nil, fmt.Errorf("invalid static location: %w", err)
		}
		return NewStaticSource(config.Static), nil
	case SourceTypeGoogle:
		return newGoogleSource(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, config.Type)
	}
}

func newGoogleSource(config SourceConfig) (Source, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleSource(client, config.Logger), nil
}
