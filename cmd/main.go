package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/ampere/internal/api"
	"github.com/UnknownOlympus/ampere/internal/config"
	"github.com/UnknownOlympus/ampere/internal/evrange"
	"github.com/UnknownOlympus/ampere/internal/geocoding"
	"github.com/UnknownOlympus/ampere/internal/metrics"
	"github.com/UnknownOlympus/ampere/internal/repository"
	"github.com/UnknownOlympus/ampere/internal/resolver"
	"github.com/UnknownOlympus/ampere/internal/service"
	"github.com/UnknownOlympus/ampere/internal/stations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The database is optional: without it the catalogue source, the persistent
	// place cache and the backfill are disabled.
	var repo *repository.Repository
	if cfg.Database.Enabled() {
		dtb, err := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()

		repo = repository.NewRepository(dtb, logger)
		if err = repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare DB schema: %v", err)
		}
	}

	geocoder, err := newGeocoder(cfg, repo, appMetrics, logger)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoder.Type)

	sources, err := stations.NewSources(sourceConfigs(cfg, repo, logger))
	if err != nil {
		log.Fatalf("Failed to create station sources: %v", err)
	}

	stationResolver := resolver.New(logger, appMetrics,
		resolver.WithDedupThreshold(cfg.Resolver.DedupKm),
		resolver.WithSourceTimeout(cfg.Resolver.SourceTimeout),
		resolver.WithRadius(cfg.Resolver.RadiusKm),
	)

	stationService := service.NewStationService(
		logger, geocoder, cfg.Geocoder.Type, stationResolver, sources, appMetrics,
	)
	logger.InfoContext(ctx, "Station sources initialized", "sources", stationService.Sources())

	efficiency := evrange.DefaultEfficiency
	if len(cfg.Efficiency) > 0 {
		efficiency = cfg.Efficiency
	}
	estimator, err := evrange.NewEstimator(efficiency)
	if err != nil {
		log.Fatalf("Failed to create range estimator: %v", err)
	}

	var health api.HealthChecker
	if repo != nil {
		health = repo

		backfill := service.NewCatalogueBackfill(
			logger,
			repo,
			geocoder,
			cfg.Geocoder.Type, // Provider name for metrics
			appMetrics,
			cfg.Backfill.Workers,
			cfg.Backfill.Interval,
			cfg.Backfill.AddressSuffix,
		)
		go backfill.Run(ctx)
	}

	handler := api.NewHandler(logger, stationService, estimator, health, cfg.Resolver.K)
	router := api.NewRouter(handler, reg, appMetrics, logger)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = runServer(ctx, logger, router, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "HTTP server failed", "error", err)
		os.Exit(1)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newGeocoder builds the configured provider and puts the caches in front of it.
func newGeocoder(
	cfg *config.Config,
	repo *repository.Repository,
	appMetrics *metrics.Metrics,
	logger *slog.Logger,
) (geocoding.Provider, error) {
	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Type),
		APIKey:    cfg.Geocoder.APIKey,
		RateLimit: cfg.Geocoder.RateLimit,
		Country:   cfg.Geocoder.Country,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	var store geocoding.PlaceCache
	if repo != nil {
		store = repo
	}

	return geocoding.NewCachedProvider(
		provider, cfg.Geocoder.CacheSize, cfg.Geocoder.CacheTTL, store, appMetrics, logger,
	)
}

// sourceConfigs maps the configured sources, in priority order, to factory configurations.
func sourceConfigs(cfg *config.Config, repo *repository.Repository, logger *slog.Logger) []stations.SourceConfig {
	var store stations.StationStore
	if repo != nil {
		store = repo
	}

	configs := make([]stations.SourceConfig, len(cfg.Sources))
	for i, source := range cfg.Sources {
		configs[i] = stations.SourceConfig{
			Type:       stations.SourceType(source.Type),
			Name:       source.Name,
			APIKey:     source.APIKey,
			RateLimit:  source.RateLimit,
			MaxResults: source.MaxResults,
			Stations:   source.Candidates(),
			Store:      store,
			Logger:     logger,
		}
	}

	return configs
}

// runServer serves the API until ctx is canceled and then shuts the server down.
func runServer(ctx context.Context, log *slog.Logger, handler http.Handler, port int) error {
	readTimeout := 5
	writeTimeout := 30
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Starting HTTP server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Log that a shutdown signal has been received.
	log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
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
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
