package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Assignment AssignmentConfig `yaml:"assignment"`
	Reconcile  ReconcileConfig  `yaml:"reconcile"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `yaml:"port" env:"SERVER_PORT"`
	Host        string   `yaml:"host" env:"SERVER_HOST"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
}

// RedisConfig holds the Redis connection used for campaign locks. Empty URL
// falls back to Postgres advisory locks.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// AssignmentConfig tunes the assignment operations.
type AssignmentConfig struct {
	TxTimeoutMS     int  `yaml:"tx_timeout_ms" env:"ASSIGNMENT_TX_TIMEOUT_MS"`
	LockTTLSeconds  int  `yaml:"lock_ttl_seconds" env:"ASSIGNMENT_LOCK_TTL_SECONDS"`
	LockWaitMS      int  `yaml:"lock_wait_ms" env:"ASSIGNMENT_LOCK_WAIT_MS"`
	LockRetryMS     int  `yaml:"lock_retry_ms" env:"ASSIGNMENT_LOCK_RETRY_MS"`
	SkipLedgerCheck bool `yaml:"skip_ledger_check" env:"ASSIGNMENT_SKIP_LEDGER_CHECK"`
}

// TxTimeout returns the per-operation transaction bound.
func (c AssignmentConfig) TxTimeout() time.Duration {
	return time.Duration(c.TxTimeoutMS) * time.Millisecond
}

// LockTTL returns how long a campaign lock survives a crashed holder.
func (c AssignmentConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LockWait returns how long an operation waits for a busy campaign.
func (c AssignmentConfig) LockWait() time.Duration {
	return time.Duration(c.LockWaitMS) * time.Millisecond
}

// LockRetry returns the polling interval while waiting for a lock.
func (c AssignmentConfig) LockRetry() time.Duration {
	return time.Duration(c.LockRetryMS) * time.Millisecond
}

// ReconcileConfig controls the background ledger reconciler.
type ReconcileConfig struct {
	Enabled         bool `yaml:"enabled" env:"RECONCILE_ENABLED"`
	IntervalSeconds int  `yaml:"interval_seconds" env:"RECONCILE_INTERVAL_SECONDS"`
}

// Interval returns the configured interval as a duration
func (c ReconcileConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `yaml:"level" env:"LOG_LEVEL"`
	RedactPII bool   `yaml:"redact_pii" env:"LOG_REDACT_PII"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Logging: LoggingConfig{RedactPII: true}}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Assignment.TxTimeoutMS == 0 {
		cfg.Assignment.TxTimeoutMS = 5000
	}
	if cfg.Assignment.LockTTLSeconds == 0 {
		cfg.Assignment.LockTTLSeconds = 30
	}
	if cfg.Assignment.LockWaitMS == 0 {
		cfg.Assignment.LockWaitMS = 2000
	}
	if cfg.Assignment.LockRetryMS == 0 {
		cfg.Assignment.LockRetryMS = 25
	}
	if cfg.Reconcile.IntervalSeconds == 0 {
		cfg.Reconcile.IntervalSeconds = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Logging: LoggingConfig{RedactPII: true}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromEnv loads .env (if present), the YAML file at path, then applies
// environment overrides on top.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}
