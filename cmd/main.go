package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/icarus/internal/acquisition"
	"github.com/UnknownOlympus/icarus/internal/api"
	"github.com/UnknownOlympus/icarus/internal/config"
	"github.com/UnknownOlympus/icarus/internal/geo"
	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/UnknownOlympus/icarus/internal/metrics"
	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/UnknownOlympus/icarus/internal/repository"
	"github.com/UnknownOlympus/icarus/internal/scheduler"
	"github.com/UnknownOlympus/icarus/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const readingsBuffer = 8

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env, logOutput(cfg.LogFile))

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The snapshot store is optional; without a database the tracker only keeps state in memory.
	var (
		store  service.SnapshotStore
		health api.HealthChecker
	)
	if cfg.Database.Enabled() {
		dtb, err := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()

		repo := repository.NewRepository(dtb, logger)
		if err = repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare DB schema: %v", err)
		}
		store, health = repo, repo
	} else {
		logger.InfoContext(ctx, "Database is not configured, flight snapshots are disabled")
	}

	// Create the flight data provider selected by configuration.
	providerType := acquisition.ProviderType(cfg.ProviderType)
	provider, err := acquisition.NewProvider(providerConfig(cfg, logger))
	if err != nil {
		log.Fatalf("Failed to create flight data provider: %v", err)
	}
	acquirer := acquisition.NewAcquirer(logger, map[acquisition.ProviderType]acquisition.Provider{
		providerType: provider,
	})
	logger.InfoContext(ctx, "Flight data provider initialized", "type", providerType)

	// Create the user location source. Client-pushed locations have no poller,
	// so the tracker refreshes flights on its own timer instead.
	source, err := geolocation.NewSource(geolocation.SourceConfig{
		Type:   geolocation.SourceType(cfg.Location.Source),
		APIKey: cfg.Location.GoogleKey,
		Static: models.Coordinate{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude},
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to create location source: %v", err)
	}
	var refreshInterval time.Duration
	if source == nil {
		refreshInterval = cfg.Interval
	}

	hub := api.NewHub(logger, cfg.CORSOrigins)
	boundary := api.NewBoundary()
	readings := make(chan geolocation.Reading, readingsBuffer)

	tracker := service.NewTracker(logger, acquirer, store, hub, appMetrics, boundary, service.TrackerConfig{
		Provider:        providerType,
		Radius:          searchRadius(cfg),
		RefreshInterval: refreshInterval,
	})

	router := api.NewRouter(api.RouterConfig{
		Handler:        api.NewHandler(tracker, boundary, readings, health, logger),
		Hub:            hub,
		Registry:       reg,
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
	})

	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		tracker.Run(gctx, readings)
		return nil
	})

	if source != nil {
		poller := scheduler.New(source, cfg.Interval, readings, logger)
		group.Go(func() error {
			return runPoller(gctx, poller)
		})
	}

	group.Go(func() error {
		logger.InfoContext(gctx, "Starting HTTP server", "port", cfg.Port)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", errServe)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(writeTimeout)*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Application stopped with error", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// runPoller keeps the location poller running until ctx is canceled.
func runPoller(ctx context.Context, poller *scheduler.Poller) error {
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start location poller: %w", err)
	}
	defer poller.Stop()

	<-ctx.Done()
	return nil
}

// providerConfig maps the configuration of the selected provider onto the acquisition factory.
func providerConfig(cfg *config.Config, logger *slog.Logger) acquisition.ProviderConfig {
	providerCfg := acquisition.ProviderConfig{
		Type:      acquisition.ProviderType(cfg.ProviderType),
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	}

	switch providerCfg.Type {
	case acquisition.ProviderTypeOpenSky:
		providerCfg.BaseURL = cfg.OpenSky.URL
		providerCfg.CircularFilter = cfg.OpenSky.CircularFilter
	case acquisition.ProviderTypeAviationStack:
		providerCfg.BaseURL = cfg.AviationStack.URL
		providerCfg.APIKey = cfg.AviationStack.APIKey
		providerCfg.Limit = cfg.AviationStack.Limit
		providerCfg.FlightICAO = cfg.AviationStack.FlightICAO
	}

	return providerCfg
}

// searchRadius returns the radius in the unit the selected provider works with.
func searchRadius(cfg *config.Config) geo.Radius {
	if acquisition.ProviderType(cfg.ProviderType) == acquisition.ProviderTypeAviationStack {
		return geo.Kilometers(cfg.AviationStack.RadiusKM)
	}

	return geo.NauticalMiles(cfg.OpenSky.RadiusNM)
}

// logOutput writes to stdout and, when file is set, to a rotating log file.
func logOutput(file string) io.Writer {
	if file == "" {
		return os.Stdout
	}

	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    64, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	})
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string, out io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
