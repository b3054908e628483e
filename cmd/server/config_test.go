package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/security"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("HTTPAddress = %q, want :8080", cfg.Server.HTTPAddress)
	}
	if cfg.Store.Driver != "sqlite" || cfg.DSN() != "data/anfrage.db" {
		t.Errorf("store = %+v, want sqlite at data/anfrage.db", cfg.Store)
	}
	if d, _ := cfg.NotifyTimeout(); d != 10*time.Second {
		t.Errorf("NotifyTimeout() = %v, want 10s", d)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anfrage.yaml")
	yaml := `
server:
  http_address: ":9000"
store:
  sqlite_path: /tmp/from-file.db
admin:
  token: file-token
rate_limit:
  per_window: 3
  window: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ADMIN_DASHBOARD_TOKEN", "env-token")
	t.Setenv("NOTIFY_FUNCTION_URL", "https://relay.example/functions/notify-project")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.HTTPAddress != ":9000" {
		t.Errorf("HTTPAddress = %q, want :9000", cfg.Server.HTTPAddress)
	}
	if cfg.Admin.Token != "env-token" {
		t.Errorf("Admin.Token = %q, want env-token", cfg.Admin.Token)
	}
	if cfg.Notify.FunctionURL == "" {
		t.Error("Notify.FunctionURL not read from environment")
	}
	if cfg.RateLimit.PerWindow != 3 {
		t.Errorf("PerWindow = %d, want 3", cfg.RateLimit.PerWindow)
	}
	if w, _ := cfg.RateLimitWindow(); w != 30*time.Second {
		t.Errorf("RateLimitWindow() = %v, want 30s", w)
	}
}

func TestLoadConfig_Sealed(t *testing.T) {
	dir := t.TempDir()
	path, err := security.WriteFile(filepath.Join(dir, "anfrage.yaml"), []byte("admin:\n  token: sealed-token\n"), []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigKeyEnv, "pw")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Admin.Token != "sealed-token" {
		t.Errorf("Admin.Token = %q", cfg.Admin.Token)
	}

	t.Setenv(ConfigKeyEnv, "")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error without passphrase")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"postgres without url", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"postgres with url", func(c *Config) {
			c.Store.Driver = "postgres"
			c.Store.DatabaseURL = "postgres://localhost/anfrage"
		}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, true},
		{"tls without cert", func(c *Config) { c.Server.HTTPTLS.Enabled = true }, true},
		{"short csrf key", func(c *Config) { c.Admin.CSRFKey = "short" }, true},
		{"bad notify timeout", func(c *Config) { c.Notify.Timeout = "soon" }, true},
		{"bad window", func(c *Config) { c.RateLimit.Window = "1x" }, true},
		{"negative limit", func(c *Config) { c.RateLimit.PerWindow = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.setDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDSN_Postgres(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "postgres", DatabaseURL: "postgres://db/anfrage"}}
	if got := cfg.DSN(); got != "postgres://db/anfrage" {
		t.Errorf("DSN() = %q", got)
	}
}
