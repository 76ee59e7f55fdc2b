// Package config loads oracled configuration from the environment, with an
// optional YAML overlay for file-based deployments.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Address codecs.
const (
	CodecRaw    = "raw"
	CodecBase58 = "base58"
)

// Config is the full oracled configuration.
type Config struct {
	ListenAddr string `env:"ORACLE_LISTEN_ADDR,default=:8080" yaml:"listen_addr"`
	LogLevel   string `env:"ORACLE_LOG_LEVEL,default=info" yaml:"log_level"`
	LogPretty  bool   `env:"ORACLE_LOG_PRETTY,default=false" yaml:"log_pretty"`

	// Owner and BaseDenom seed the config singleton on first boot against an
	// empty store. Ignored once the oracle is initialized.
	Owner     string `env:"ORACLE_OWNER" yaml:"owner"`
	BaseDenom string `env:"ORACLE_BASE_DENOM,default=uusd" yaml:"base_denom"`

	// AddressCodec selects how external addresses are canonicalized.
	AddressCodec string `env:"ORACLE_ADDRESS_CODEC,default=raw" yaml:"address_codec"`

	Store StoreConfig `yaml:"store"`

	// RateLimit bounds execute requests per second per instance; Burst is the
	// token bucket depth. Zero disables limiting.
	RateLimit float64 `env:"ORACLE_RATE_LIMIT,default=0" yaml:"rate_limit"`
	Burst     int     `env:"ORACLE_RATE_BURST,default=10" yaml:"rate_burst"`

	// StaleAfter marks a price record stale when its last update is older
	// than this. StaleCheckSpec is the cron spec for the sweep.
	StaleAfter     time.Duration `env:"ORACLE_STALE_AFTER,default=5m" yaml:"stale_after"`
	StaleCheckSpec string        `env:"ORACLE_STALE_CHECK_SPEC,default=@every 1m" yaml:"stale_check_spec"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	Backend     string `env:"ORACLE_STORE_BACKEND,default=memory" yaml:"backend"`
	RedisAddr   string `env:"ORACLE_REDIS_ADDR,default=localhost:6379" yaml:"redis_addr"`
	RedisDB     int    `env:"ORACLE_REDIS_DB,default=0" yaml:"redis_db"`
	RedisPrefix string `env:"ORACLE_REDIS_PREFIX,default=oracle" yaml:"redis_prefix"`
	PostgresDSN string `env:"ORACLE_POSTGRES_DSN" yaml:"postgres_dsn"`
}

// Load reads configuration from the environment (a .env file is honored when
// present) and applies the YAML overlay at path when path is non-empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode env config: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("postgres backend requires ORACLE_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.AddressCodec {
	case CodecRaw, CodecBase58:
	default:
		return fmt.Errorf("unknown address codec %q", c.AddressCodec)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %v", c.RateLimit)
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("stale threshold must be positive, got %v", c.StaleAfter)
	}
	return nil
}
