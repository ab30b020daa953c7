package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Location store backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all bot settings, populated from environment variables.
type Config struct {
	DiscordToken         string
	DiscordApplicationID string
	DiscordPublicKey     ed25519.PublicKey
	DiscordAPIURL        string

	TMDBAPIKey    string
	MoviesEnabled bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream call budgets.
	UpstreamTimeout time.Duration
	QuoteTimeout    time.Duration
	CommandTimeout  time.Duration

	// Location store.
	LocationBackend string
	LocationPath    string
	LocationDSN     string

	GeocodeCacheSize   int
	NominatimUserAgent string

	// Audit publishing, enabled when KAFKA_BROKERS is set.
	KafkaBrokers       []string
	KafkaAuditTopic    string
	AuditEnabled       bool
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parsePositiveDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	quoteTimeout, err := parsePositiveDuration("QUOTE_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	commandTimeout, err := parsePositiveDuration("COMMAND_TIMEOUT", 30*time.Second)
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

	cacheSize, err := parseGeocodeCacheSize()
	if err != nil {
		return nil, err
	}

	publicKey, err := parsePublicKey(os.Getenv("DISCORD_PUBLIC_KEY"))
	if err != nil {
		return nil, err
	}

	tmdbKey := os.Getenv("TMDB_API_KEY")
	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		DiscordToken:         os.Getenv("DISCORD_TOKEN"),
		DiscordApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
		DiscordPublicKey:     publicKey,
		DiscordAPIURL:        sharedcfg.EnvOrDefault("DISCORD_API_URL", "https://discord.com/api/v10"),

		TMDBAPIKey:    tmdbKey,
		MoviesEnabled: tmdbKey != "",

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UpstreamTimeout: upstreamTimeout,
		QuoteTimeout:    quoteTimeout,
		CommandTimeout:  commandTimeout,

		LocationBackend: sharedcfg.EnvOrDefault("LOCATION_BACKEND", BackendFile),
		LocationPath:    sharedcfg.EnvOrDefault("LOCATION_PATH", "user_locations.json"),
		LocationDSN:     os.Getenv("LOCATION_DSN"),

		GeocodeCacheSize:   cacheSize,
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "DiscordWeatherBot/1.0 (non-profit educational project)"),

		KafkaBrokers:       brokers,
		KafkaAuditTopic:    sharedcfg.EnvOrDefault("KAFKA_AUDIT_TOPIC", "bot-command-events"),
		AuditEnabled:       len(brokers) > 0,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is required")
	}
	switch cfg.LocationBackend {
	case BackendFile:
		if cfg.LocationPath == "" {
			return nil, errors.New("LOCATION_PATH is required for the file backend")
		}
	case BackendSQLite, BackendPostgres:
		if cfg.LocationDSN == "" {
			return nil, fmt.Errorf("LOCATION_DSN is required for the %s backend", cfg.LocationBackend)
		}
	default:
		return nil, fmt.Errorf("invalid LOCATION_BACKEND %q", cfg.LocationBackend)
	}
	if cfg.AuditEnabled && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// ValidateInteractions checks the settings the HTTP interactions endpoint needs.
func (c *Config) ValidateInteractions() error {
	if c.DiscordApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required to serve interactions")
	}
	if len(c.DiscordPublicKey) == 0 {
		return errors.New("DISCORD_PUBLIC_KEY is required to serve interactions")
	}
	return nil
}

func parsePublicKey(s string) (ed25519.PublicKey, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, errors.New("invalid DISCORD_PUBLIC_KEY: want 64 hex characters")
	}
	return ed25519.PublicKey(key), nil
}
