package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseEnv_Overlay(t *testing.T) {
	type target struct {
		Address string `env:"ANFRAGE_TEST_ADDRESS"`
		Path    string `env:"ANFRAGE_TEST_PATH"`
	}
	t.Setenv("ANFRAGE_TEST_ADDRESS", ":9090")

	cfg := target{Address: ":8080", Path: "data/anfrage.db"}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv() error = %v", err)
	}
	if cfg.Address != ":9090" {
		t.Errorf("Address = %q, want :9090", cfg.Address)
	}
	if cfg.Path != "data/anfrage.db" {
		t.Errorf("Path = %q, file value was overwritten", cfg.Path)
	}
}

func TestParseEnv_BadValue(t *testing.T) {
	type target struct {
		Port int `env:"ANFRAGE_TEST_PORT"`
	}
	t.Setenv("ANFRAGE_TEST_PORT", "abc")

	var cfg target
	if err := ParseEnv(&cfg); err == nil {
		t.Error("ParseEnv() accepted a non-numeric port")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ANFRAGE_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANFRAGE_TEST_DOTENV", "")
	os.Unsetenv("ANFRAGE_TEST_DOTENV")

	LoadDotEnv(path)
	if got := os.Getenv("ANFRAGE_TEST_DOTENV"); got != "from-file" {
		t.Errorf("ANFRAGE_TEST_DOTENV = %q", got)
	}

	// Missing files are ignored.
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestVersionString(t *testing.T) {
	if !strings.HasPrefix(VersionString(), "anfrage ") {
		t.Errorf("VersionString() = %q", VersionString())
	}
	if GetBuildInfo().Version != Version {
		t.Error("GetBuildInfo().Version mismatch")
	}
}
