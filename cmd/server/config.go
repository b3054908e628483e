// Package main provides the anfrage server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/anfrage/internal/relay"
	"github.com/good-yellow-bee/anfrage/internal/security"
	"github.com/good-yellow-bee/anfrage/internal/storage"
	"github.com/good-yellow-bee/anfrage/pkg/config"
)

// Config represents the server configuration. Values from the YAML file are
// overridden by environment variables.
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Store     StoreConfig       `yaml:"store"`
	Redis     RedisConfig       `yaml:"redis"`
	Admin     AdminConfig       `yaml:"admin"`
	Notify    NotifyConfig      `yaml:"notify"`
	Email     relay.EmailConfig `yaml:"email"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Verbose   bool              `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	HTTPAddress string        `yaml:"http_address" env:"ANFRAGE_HTTP_ADDRESS"` // default :8080
	HTTPTLS     HTTPTLSConfig `yaml:"http_tls"`
}

// HTTPTLSConfig contains HTTPS settings for the HTTP listener.
type HTTPTLSConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ANFRAGE_TLS_ENABLED"`
	CertFile string `yaml:"cert_file" env:"ANFRAGE_TLS_CERT_FILE"`
	KeyFile  string `yaml:"key_file" env:"ANFRAGE_TLS_KEY_FILE"`
}

// StoreConfig selects the request store and the local dashboard store.
type StoreConfig struct {
	Driver      string `yaml:"driver" env:"STORE_DRIVER"`         // sqlite (default) or postgres
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH"`     // default data/anfrage.db
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`   // postgres connection URL
	LocalPath   string `yaml:"local_path" env:"LOCAL_STORE_PATH"` // default data/local.json
}

// RedisConfig enables shared rate limiting across instances.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// AdminConfig contains the admin viewer secrets.
type AdminConfig struct {
	Token         string `yaml:"token" env:"ADMIN_DASHBOARD_TOKEN"`
	PasswordHash  string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	CSRFKey       string `yaml:"csrf_key" env:"CSRF_KEY"`
	SecureCookies bool   `yaml:"secure_cookies" env:"ANFRAGE_SECURE_COOKIES"`
}

// NotifyConfig points the gateway at the notification relay.
type NotifyConfig struct {
	FunctionURL string `yaml:"function_url" env:"NOTIFY_FUNCTION_URL"`
	ServiceKey  string `yaml:"service_key" env:"NOTIFY_SERVICE_KEY"`
	Timeout     string `yaml:"timeout" env:"NOTIFY_TIMEOUT"` // default 10s
}

// RateLimitConfig tunes the submission limiter.
type RateLimitConfig struct {
	PerWindow      int    `yaml:"per_window" env:"RATE_LIMIT_PER_WINDOW"` // default 5
	Window         string `yaml:"window" env:"RATE_LIMIT_WINDOW"`         // default 1m
	TelemetryLimit int    `yaml:"telemetry_per_window" env:"TELEMETRY_LIMIT_PER_WINDOW"`
}

// MetricsConfig contains the Prometheus listener settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ANFRAGE_METRICS_ENABLED"`
	Address string `yaml:"address" env:"ANFRAGE_METRICS_ADDRESS"` // default :9090
}

// ConfigKeyEnv holds the passphrase for a sealed (.enc) config file.
const ConfigKeyEnv = "ANFRAGE_CONFIG_KEY"

// LoadConfig loads configuration from a YAML file, then the environment.
// Sealed files are opened with the passphrase from ANFRAGE_CONFIG_KEY.
func LoadConfig(path string) (*Config, error) {
	data, err := security.ReadFile(path, []byte(os.Getenv(ConfigKeyEnv)))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(&cfg)
}

// DefaultConfig returns a configuration built from defaults and the
// environment.
func DefaultConfig() (*Config, error) {
	return finish(&Config{Metrics: MetricsConfig{Enabled: true}})
}

func finish(cfg *Config) (*Config, error) {
	if err := config.ParseEnv(cfg); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = storage.DriverSQLite
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "data/anfrage.db"
	}
	if c.Store.LocalPath == "" {
		c.Store.LocalPath = "data/local.json"
	}
	if c.Notify.Timeout == "" {
		c.Notify.Timeout = "10s"
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = "1m"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case storage.DriverSQLite:
	case storage.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}
	if c.Server.HTTPTLS.Enabled {
		if c.Server.HTTPTLS.CertFile == "" {
			return fmt.Errorf("server.http_tls.cert_file is required when TLS is enabled")
		}
		if c.Server.HTTPTLS.KeyFile == "" {
			return fmt.Errorf("server.http_tls.key_file is required when TLS is enabled")
		}
	}
	if c.Admin.CSRFKey != "" && len(c.Admin.CSRFKey) != 32 {
		return fmt.Errorf("admin.csrf_key must be exactly 32 bytes")
	}
	if _, err := c.NotifyTimeout(); err != nil {
		return fmt.Errorf("invalid notify.timeout: %w", err)
	}
	if _, err := c.RateLimitWindow(); err != nil {
		return fmt.Errorf("invalid rate_limit.window: %w", err)
	}
	if c.RateLimit.PerWindow < 0 || c.RateLimit.TelemetryLimit < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Store.Driver == storage.DriverPostgres {
		return c.Store.DatabaseURL
	}
	return c.Store.SQLitePath
}

// NotifyTimeout parses notify.timeout.
func (c *Config) NotifyTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Notify.Timeout)
}

// RateLimitWindow parses rate_limit.window.
func (c *Config) RateLimitWindow() (time.Duration, error) {
	return time.ParseDuration(c.RateLimit.Window)
}
