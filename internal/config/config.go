package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	LeapYearRule     domain.LeapRule
	TrendScale       domain.TrendScale
	ScatterMaxPoints int

	// Kafka trend publishing configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int

	// Mapbox county geocoding configuration.
	MapboxToken      string
	MapboxEnabled    bool
	MapboxTimeout    time.Duration
	MapboxCacheSize  int
	MapboxMaxLookups int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	leapRule, err := domain.ParseLeapRule(sharedcfg.EnvOrDefault("LEAP_YEAR_RULE", string(domain.LeapSimplified)))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAP_YEAR_RULE: %w", err)
	}

	trendScale, err := domain.ParseTrendScale(sharedcfg.EnvOrDefault("TREND_SCALE", string(domain.TrendLinear)))
	if err != nil {
		return nil, fmt.Errorf("invalid TREND_SCALE: %w", err)
	}

	scatterMax, err := parsePositiveInt("SCATTER_MAX_POINTS", 50000)
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:         sharedcfg.EnvOrDefault("DATA_PATH", "data compressed.csv.gz"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		LeapYearRule:     leapRule,
		TrendScale:       trendScale,
		ScatterMaxPoints: scatterMax,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "wildfire-state-trends"),
		BatchSize:      batchSize,

		MapboxToken:      mapboxToken,
		MapboxEnabled:    mapboxEnabled,
		MapboxTimeout:    mapboxTimeout,
		MapboxCacheSize:  parseMapboxCacheSize(),
		MapboxMaxLookups: parseMapboxMaxLookups(),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// Calendar returns the calendar configured by LEAP_YEAR_RULE.
func (c *Config) Calendar() domain.Calendar {
	return domain.Calendar{Rule: c.LeapYearRule}
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func parseMapboxMaxLookups() int {
	if s := os.Getenv("MAPBOX_MAX_LOOKUPS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 500
}
