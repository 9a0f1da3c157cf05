package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the flight tracker.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP server (map API, health and metrics).
// - ProviderType: The flight data provider to use (opensky, aviationstack).
// - OpenSky / AviationStack: Provider endpoints, radii and credentials.
// - RateLimit: Maximum provider requests per second.
// - Timeout: Provider request timeout.
// - Interval: Period between location polls and flight refreshes.
// - Location: Where user-location readings come from.
// - Database: Optional PostgreSQL snapshot store.
type Config struct {
	Env           string
	Port          int    `validate:"gt=0,lte=65535"`
	ProviderType  string `validate:"oneof=opensky aviationstack"`
	OpenSky       OpenSkyConfig
	AviationStack AviationStackConfig
	RateLimit     int           `validate:"gt=0"`
	Timeout       time.Duration `validate:"gt=0"`
	Interval      time.Duration `validate:"gt=0"`
	Location      LocationConfig
	LogFile       string
	CORSOrigins   []string
	Database      PostgresConfig
}

// OpenSkyConfig configures the bounding-box provider.
type OpenSkyConfig struct {
	URL            string  `validate:"required,url"`
	RadiusNM       float64 `validate:"gt=0"`
	CircularFilter bool    // Drop vectors inside the box but outside the search circle
}

// AviationStackConfig configures the global-list provider.
type AviationStackConfig struct {
	URL        string `validate:"required,url"`
	APIKey     string
	RadiusKM   float64 `validate:"gt=0"`
	Limit      int     `validate:"gt=0"`
	FlightICAO string
}

// LocationConfig selects the source of user-location readings.
type LocationConfig struct {
	Source    string  `validate:"oneof=client static google"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	GoogleKey string  `validate:"required_if=Source google"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address. Empty disables the snapshot store.
	Port     int    // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// Enabled reports whether a database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad reads the configuration from the environment (ICARUS_ prefix, DB_* for the database),
// an optional .env file and an optional YAML file named by ICARUS_CONFIG_FILE. It panics on
// invalid values.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := newViper()

	if file := os.Getenv("ICARUS_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	cfg := &Config{
		Env:          v.GetString("env"),
		ProviderType: strings.ToLower(v.GetString("provider.type")),
		OpenSky: OpenSkyConfig{
			URL:            v.GetString("opensky.url"),
			RadiusNM:       mustFloat(v, "opensky.radius_nm", "failed to parse OpenSky radius from configuration"),
			CircularFilter: v.GetBool("opensky.circular_filter"),
		},
		AviationStack: AviationStackConfig{
			URL:        v.GetString("aviationstack.url"),
			APIKey:     v.GetString("aviationstack.key"),
			RadiusKM:   mustFloat(v, "aviationstack.radius_km", "failed to parse AviationStack radius from configuration"),
			Limit:      mustInt(v, "aviationstack.limit", "failed to parse AviationStack limit from configuration"),
			FlightICAO: v.GetString("aviationstack.flight_icao"),
		},
		Port:      mustInt(v, "port", "failed to parse port for server from configuration"),
		RateLimit: mustInt(v, "rate_limit", "failed to parse rate limit from configuration, must be an integer types"),
		Timeout:   mustDuration(v, "timeout", "failed to parse timeout from configuration"),
		Interval:  mustDuration(v, "interval", "failed to parse interval from configuration"),
		Location: LocationConfig{
			Source:    strings.ToLower(v.GetString("location.source")),
			Latitude:  mustFloat(v, "latitude", "failed to parse latitude from configuration"),
			Longitude: mustFloat(v, "longitude", "failed to parse longitude from configuration"),
			GoogleKey: v.GetString("google_key"),
		},
		LogFile:     v.GetString("log_file"),
		CORSOrigins: stringList(v, "cors_origins"),
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     mustInt(v, "postgres.port", "failed to parse database port from configuration"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ICARUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("provider.type", "opensky")
	v.SetDefault("opensky.url", "https://opensky-network.org/api/states/all")
	v.SetDefault("opensky.radius_nm", "500")
	v.SetDefault("aviationstack.url", "http://api.aviationstack.com/v1/flights")
	v.SetDefault("aviationstack.radius_km", "1000")
	v.SetDefault("aviationstack.limit", "100")
	v.SetDefault("rate_limit", "1")
	v.SetDefault("timeout", "10s")
	v.SetDefault("interval", "30s")
	v.SetDefault("location.source", "client")
	v.SetDefault("latitude", "0")
	v.SetDefault("longitude", "0")
	v.SetDefault("postgres.port", "5432")

	_ = v.BindEnv("postgres.host", "DB_HOST")
	_ = v.BindEnv("postgres.port", "DB_PORT")
	_ = v.BindEnv("postgres.user", "DB_USERNAME")
	_ = v.BindEnv("postgres.password", "DB_PASSWORD")
	_ = v.BindEnv("postgres.db_name", "DB_NAME")

	return v
}

func mustInt(v *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}

	return value
}

func mustFloat(v *viper.Viper, key, msg string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		panic(msg)
	}

	return value
}

func mustDuration(v *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}

	return value
}

// stringList accepts both a comma separated env value and a YAML list.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
