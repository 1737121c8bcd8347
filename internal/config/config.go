package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
// The proxy and the provisioner share one config; each validates only the
// settings it uses at wiring time.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Geocoding backend (place index API).
	PlacesBaseURL string
	PlacesAPIKey  string
	PlacesTimeout time.Duration

	// Provider index map configuration store.
	ConfigStoreBaseURL     string
	ConfigStoreApplication string
	ConfigStoreEnvironment string
	ConfigStoreProfile     string
	IndexCacheTTL          time.Duration

	// Grab is only available in one deployment region; static fact.
	GrabSupported bool

	// Optional audit trail.
	KafkaBrokers    []string
	KafkaAuditTopic string

	// Warehouse provisioning (provisioner binary only).
	SecretsBaseURL string
	SecretsName    string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	placesTimeout, err := parseDuration("PLACES_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	indexCacheTTL, err := parseDuration("INDEX_CACHE_TTL", "900s")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PlacesBaseURL: sharedcfg.EnvOrDefault("PLACES_BASE_URL", "https://places.geo.us-east-1.amazonaws.com"),
		PlacesAPIKey:  os.Getenv("PLACES_API_KEY"),
		PlacesTimeout: placesTimeout,

		ConfigStoreBaseURL:     sharedcfg.EnvOrDefault("CONFIGSTORE_BASE_URL", "http://localhost:2772"),
		ConfigStoreApplication: sharedcfg.EnvOrDefault("CONFIGSTORE_APPLICATION", "geocode-proxy"),
		ConfigStoreEnvironment: sharedcfg.EnvOrDefault("CONFIGSTORE_ENVIRONMENT", "prod"),
		ConfigStoreProfile:     sharedcfg.EnvOrDefault("CONFIGSTORE_PROFILE", "place-indexes"),
		IndexCacheTTL:          indexCacheTTL,

		GrabSupported: os.Getenv("GRAB_SUPPORTED") == "true",

		KafkaBrokers:    brokers,
		KafkaAuditTopic: sharedcfg.EnvOrDefault("KAFKA_AUDIT_TOPIC", "geocode-call-audit"),

		SecretsBaseURL: os.Getenv("SECRETS_BASE_URL"),
		SecretsName:    sharedcfg.EnvOrDefault("SECRETS_NAME", "snowflake-credentials"),
	}

	if cfg.PlacesBaseURL == "" {
		return nil, errors.New("PLACES_BASE_URL is required")
	}
	if cfg.ConfigStoreBaseURL == "" {
		return nil, errors.New("CONFIGSTORE_BASE_URL is required")
	}

	return cfg, nil
}

// AuditEnabled reports whether the Kafka audit trail is configured.
func (c *Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
