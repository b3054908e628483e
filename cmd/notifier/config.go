// Package main provides the standalone notification relay.
package main

import (
	"fmt"

	"github.com/good-yellow-bee/anfrage/internal/relay"
	"github.com/good-yellow-bee/anfrage/pkg/config"
)

// Config is read from the environment only.
type Config struct {
	HTTPAddress string `env:"NOTIFIER_HTTP_ADDRESS" envDefault:":8081"`
	ServiceKey  string `env:"NOTIFY_SERVICE_KEY"`
	Email       relay.EmailConfig
	Verbose     bool `env:"NOTIFIER_VERBOSE"`
}

// LoadConfig reads the relay configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for errors. A missing provider is not an
// error: the relay then answers 500 for every call and logs why. Without a
// service key the bearer check is off.
func (c *Config) Validate() error {
	if c.HTTPAddress == "" {
		return fmt.Errorf("NOTIFIER_HTTP_ADDRESS must not be empty")
	}
	return nil
}
