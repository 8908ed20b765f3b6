package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/neo-hazard-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/neo-hazard-etl/internal/adapter/kafka"
	natsadapter "github.com/couchcryptid/neo-hazard-etl/internal/adapter/nats"
	"github.com/couchcryptid/neo-hazard-etl/internal/adapter/neows"
	"github.com/couchcryptid/neo-hazard-etl/internal/config"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
	"github.com/couchcryptid/neo-hazard-etl/internal/pipeline"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	// Orbital-element lookups are feature-flagged via NEOWS_ENABLED / NEOWS_API_KEY.
	var orbits domain.OrbitalDataSource
	if cfg.NeoWsEnabled {
		client := neows.NewClient(cfg.NeoWsBaseURL, cfg.NeoWsAPIKey, cfg.NeoWsTimeout, metrics, logger)
		orbits = neows.NewCachedOrbitSource(client, cfg.NeoWsCacheSize, cfg.NeoWsCacheTTL, clockwork.NewRealClock(), metrics)
		metrics.OrbitLookupEnabled.Set(1)
		logger.Info("neows orbit lookup enabled",
			"cache_size", cfg.NeoWsCacheSize,
			"cache_ttl", cfg.NeoWsCacheTTL,
			"timeout", cfg.NeoWsTimeout,
		)
	} else {
		logger.Info("neows orbit lookup disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(orbits, cfg.AssessParams(), metrics, logger)

	opts := []pipeline.Option{pipeline.WithWorkers(cfg.AssessWorkers)}

	var alerts *natsadapter.Publisher
	if cfg.NATSURL != "" {
		alerts, err = natsadapter.Connect(cfg, metrics, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithAlerts(alerts))
		logger.Info("nats alerts enabled", "subject", cfg.NATSAlertSubject, "min_torino", cfg.AlertMinTorino)
	} else {
		logger.Info("nats alerts disabled")
	}

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, transformer, cfg.AssessWorkers, logger)

	logAssessSettings(logger, cfg)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if alerts != nil {
		if err := alerts.Close(); err != nil {
			logger.Error("nats close error", "error", err)
		}
	}
	observability.ShutdownTracing(shutdownCtx, shutdownTracing, logger)

	logger.Info("shutdown complete")
}

func logAssessSettings(logger *slog.Logger, cfg *config.Config) {
	logger.Info("assessment settings",
		"policy", cfg.ValidationPolicy,
		"seed", cfg.AssessSeed,
		"density_earth", cfg.DensityEarth,
		"density_moon", cfg.DensityMoon,
	)
	if cfg.DensityEarth != cfg.DensityMoon {
		logger.Warn("impactor densities differ between Earth and Moon contexts",
			"density_earth", cfg.DensityEarth,
			"density_moon", cfg.DensityMoon,
		)
	}
}
