package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvgz"
	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/wildfire-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"max_lookups", cfg.MapboxMaxLookups,
		)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Trend publishing is optional; a nil publisher disables it.
	var publisher pipeline.TrendPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka trend publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	reader := csvgz.NewReader(cfg.DataPath, logger)
	p := pipeline.New(reader, publisher, pipeline.Options{
		Calendar:   cfg.Calendar(),
		TrendScale: cfg.TrendScale,
		Geocoder:   geocoder,
		MaxLookups: cfg.MapboxMaxLookups,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.Options{
		ScatterMaxPoints: cfg.ScatterMaxPoints,
	}, metrics, logger)

	// Serve health and readiness while the dataset loads; /readyz and the
	// dashboard routes report 503 until the first snapshot is live.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// A bad dataset is fatal.
	if _, err := p.Load(ctx); err != nil {
		logger.Error("load dataset failed", "path", cfg.DataPath, "error", err)
		shutdown(srv, p, writer, cfg.ShutdownTimeout, logger)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdown(srv, p, writer, cfg.ShutdownTimeout, logger)
	logger.Info("shutdown complete")
}

// shutdown stops the server, abandons in-flight trend publishes and closes
// the Kafka writer, in that order.
func shutdown(srv *httpadapter.Server, p *pipeline.Pipeline, writer *kafkaadapter.Writer, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	p.Close()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
}
