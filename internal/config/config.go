package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Assessment.
	AssessWorkers    int
	AssessSeed       uint64
	ValidationPolicy domain.ValidationPolicy
	DensityEarth     float64
	DensityMoon      float64

	// NASA NeoWs orbital-element lookup.
	NeoWsAPIKey    string
	NeoWsEnabled   bool
	NeoWsBaseURL   string
	NeoWsTimeout   time.Duration
	NeoWsCacheSize int
	NeoWsCacheTTL  time.Duration

	// NATS alerts. Disabled when NATSURL is empty.
	NATSURL          string
	NATSAlertSubject string
	AlertMinTorino   int

	// OpenTelemetry.
	TracingEnabled     bool
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
	TracingServiceName string
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

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	neowsTimeout, err := parsePositiveDuration("NEOWS_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	neowsCacheTTL, err := parsePositiveDuration("NEOWS_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	workers, err := parseIntInRange("ASSESS_WORKERS", 4, 1, 256)
	if err != nil {
		return nil, err
	}
	minTorino, err := parseIntInRange("ALERT_MIN_TORINO", 5, 0, 10)
	if err != nil {
		return nil, err
	}

	seed, err := parseSeed()
	if err != nil {
		return nil, err
	}

	policy, err := domain.ParseValidationPolicy(os.Getenv("VALIDATION_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid VALIDATION_POLICY: %w", err)
	}

	densityEarth, err := parsePositiveFloat("NEO_DENSITY_EARTH", 2000)
	if err != nil {
		return nil, err
	}
	densityMoon, err := parsePositiveFloat("NEO_DENSITY_MOON", 2500)
	if err != nil {
		return nil, err
	}

	sampleRatio, err := parseSampleRatio()
	if err != nil {
		return nil, err
	}

	neowsAPIKey := os.Getenv("NEOWS_API_KEY")
	neowsEnabled := neowsAPIKey != ""
	if v := os.Getenv("NEOWS_ENABLED"); v != "" {
		neowsEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-neo-feed"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "neo-hazard-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "neo-hazard-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		AssessWorkers:    workers,
		AssessSeed:       seed,
		ValidationPolicy: policy,
		DensityEarth:     densityEarth,
		DensityMoon:      densityMoon,

		NeoWsAPIKey:    neowsAPIKey,
		NeoWsEnabled:   neowsEnabled,
		NeoWsBaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("NEOWS_BASE_URL", "https://api.nasa.gov/neo/rest/v1"), "/"),
		NeoWsTimeout:   neowsTimeout,
		NeoWsCacheSize: parseNeoWsCacheSize(),
		NeoWsCacheTTL:  neowsCacheTTL,

		NATSURL:          os.Getenv("NATS_URL"),
		NATSAlertSubject: sharedcfg.EnvOrDefault("NATS_ALERT_SUBJECT", "neo.alerts"),
		AlertMinTorino:   minTorino,

		TracingEnabled:     strings.EqualFold(os.Getenv("TRACING_ENABLED"), "true"),
		TracingExporter:    strings.ToLower(sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout")),
		TracingEndpoint:    sharedcfg.EnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
		TracingSampleRatio: sampleRatio,
		TracingServiceName: sharedcfg.EnvOrDefault("TRACING_SERVICE_NAME", "neo-hazard-etl"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.NeoWsEnabled && cfg.NeoWsAPIKey == "" {
		return nil, errors.New("NEOWS_ENABLED is true but NEOWS_API_KEY is not set")
	}
	if cfg.TracingExporter != "stdout" && cfg.TracingExporter != "otlp" {
		return nil, fmt.Errorf("invalid TRACING_EXPORTER %q: must be stdout or otlp", cfg.TracingExporter)
	}

	return cfg, nil
}

// Densities returns the configured impactor densities.
func (c *Config) Densities() domain.Densities {
	return domain.Densities{Earth: c.DensityEarth, Moon: c.DensityMoon}
}

// AssessParams returns the assessment parameters implied by the configuration.
func (c *Config) AssessParams() domain.AssessParams {
	return domain.AssessParams{
		Densities: c.Densities(),
		Policy:    c.ValidationPolicy,
		Seed:      c.AssessSeed,
	}
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be %d-%d", key, lo, hi)
	}
	return n, nil
}

func parsePositiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f > 0) {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}

func parseSeed() (uint64, error) {
	s := os.Getenv("ASSESS_SEED")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid ASSESS_SEED: must be an unsigned integer")
	}
	return n, nil
}

func parseSampleRatio() (float64, error) {
	s := os.Getenv("TRACING_SAMPLE_RATIO")
	if s == "" {
		return 1, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, errors.New("invalid TRACING_SAMPLE_RATIO: must be between 0 and 1")
	}
	return f, nil
}

func parseNeoWsCacheSize() int {
	if s := os.Getenv("NEOWS_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
