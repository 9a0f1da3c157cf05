package acquisition

import (
	"fmt"
	"log/slog"
	"time"
)

// ProviderType represents the type of flight data provider.
type ProviderType string

const (
	// ProviderTypeOpenSky represents the OpenSky Network bounding-box provider.
	ProviderTypeOpenSky ProviderType = "opensky"
	// ProviderTypeAviationStack represents the AviationStack global-list provider.
	ProviderTypeAviationStack ProviderType = "aviationstack"
)

// ProviderConfig holds configuration for creating a flight data provider.
type ProviderConfig struct {
	Type           ProviderType  // Type of provider to create
	APIKey         string        // API key (used by AviationStack)
	BaseURL        string        // Overrides the public endpoint when set
	RateLimit      int           // Rate limit for requests per second
	Timeout        time.Duration // HTTP client timeout
	Limit          int           // Page size (used by AviationStack)
	FlightICAO     string        // Single flight filter (used by AviationStack)
	CircularFilter bool          // Trim the bounding box to the search circle (used by OpenSky)
	Logger         *slog.Logger  // Logger for the provider
}

// NewProvider creates a flight data provider based on the provided configuration.
// It applies the Factory pattern so the acquisition strategy is chosen by configuration.
//
// Supported provider types:
// - "opensky": OpenSky Network state vectors, filtered server-side by a bounding box
// - "aviationstack": AviationStack active flights, filtered locally by great-circle distance
//
// Returns an error if the provider type is unsupported.
func NewProvider(config ProviderConfig) (Provider, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		const defaultTimeout = 10 * time.Second
		config.Timeout = defaultTimeout
	}

	switch config.Type {
	case ProviderTypeOpenSky:
		return newOpenSkyProvider(config), nil
	case ProviderTypeAviationStack:
		return newAviationStackProvider(config), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider type: %s", ErrUnknownProvider, config.Type)
	}
}

// newOpenSkyProvider creates an OpenSky provider. Anonymous access needs no key.
func newOpenSkyProvider(config ProviderConfig) *OpenSkyProvider {
	if config.RateLimit <= 0 {
		config.RateLimit = 1
		config.Logger.Warn("Rate limit for OpenSky API not set, set a default value", "value", config.RateLimit)
	}

	provider := NewOpenSkyProvider(config.RateLimit, config.Timeout, config.Logger)
	if config.BaseURL != "" {
		provider.baseURL = config.BaseURL
	}
	if config.CircularFilter {
		provider.WithCircularFilter()
	}

	return provider
}

// newAviationStackProvider creates an AviationStack provider. A missing key is not fatal here:
// every fetch then fails with ErrMissingCredential.
func newAviationStackProvider(config ProviderConfig) *AviationStackProvider {
	if config.APIKey == "" {
		config.Logger.Warn("API key for AviationStack is not set, every fetch will fail")
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 1
		config.Logger.Warn("Rate limit for AviationStack API not set, set a default value", "value", config.RateLimit)
	}

	provider := NewAviationStackProvider(config.APIKey, config.RateLimit, config.Timeout, config.Logger).
		WithLimit(config.Limit).
		WithFlightICAO(config.FlightICAO)
	if config.BaseURL != "" {
		provider.baseURL = config.BaseURL
	}

	return provider
}
