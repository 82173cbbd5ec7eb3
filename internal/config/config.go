// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// MembershipDatabaseURL is the Postgres DSN for the regional membership store.
	MembershipDatabaseURL string `mapstructure:"MEMBERSHIP_DATABASE_URL"`
	// LedgerDatabaseURL is the Postgres DSN for the global quota ledger. May
	// point at a different cluster than the membership store.
	LedgerDatabaseURL string `mapstructure:"LEDGER_DATABASE_URL"`
	// ClusterSyncURL is the base URL of the cluster role sync endpoint. Empty
	// selects the in-process no-op syncer (local development).
	ClusterSyncURL string `mapstructure:"CLUSTER_SYNC_URL"`
	// ClusterSyncTimeout is the per-call timeout for role sync (e.g. "10s").
	ClusterSyncTimeout string `mapstructure:"CLUSTER_SYNC_TIMEOUT"`
	// Region identifies this deployment's region (e.g. "eu-west-1"). Ledger
	// rows are keyed by it.
	Region string `mapstructure:"REGION"`
	// DefaultWorkspaceLimit caps how many workspaces a single user may create.
	DefaultWorkspaceLimit int `mapstructure:"DEFAULT_WORKSPACE_LIMIT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTelExporterEndpoint is the OTLP gRPC endpoint (e.g. localhost:4317).
	// Empty disables exporting; providers become no-ops.
	OTelExporterEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTelExporterInsecure forces plaintext OTLP when true.
	OTelExporterInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// EventsKafkaBrokers is a comma-separated list of Kafka broker addresses.
	// When set, membership events are published to Kafka.
	EventsKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for membership events.
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// Worker-only: KafkaGroupID is the consumer group ID for the events worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: LokiURL is where the events worker pushes log lines.
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MEMBERSHIP_DATABASE_URL", "")
	v.SetDefault("LEDGER_DATABASE_URL", "")
	v.SetDefault("CLUSTER_SYNC_URL", "")
	v.SetDefault("CLUSTER_SYNC_TIMEOUT", "10s")
	v.SetDefault("REGION", "local")
	v.SetDefault("DEFAULT_WORKSPACE_LIMIT", 10)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "workspace-membership-events")
	v.SetDefault("KAFKA_GROUP_ID", "workspace-events-worker")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.Region == "" {
		return nil, errors.New("config: REGION must be set")
	}
	if cfg.DefaultWorkspaceLimit <= 0 {
		return nil, errors.New("config: DEFAULT_WORKSPACE_LIMIT must be positive")
	}

	return &cfg, nil
}

// SyncTimeout parses ClusterSyncTimeout as a time.Duration. Returns 10s if unset or invalid.
func (c *Config) SyncTimeout() time.Duration {
	d, err := time.ParseDuration(c.ClusterSyncTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// EventsKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) EventsKafkaBrokersList() []string {
	if c == nil || c.EventsKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.EventsKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
