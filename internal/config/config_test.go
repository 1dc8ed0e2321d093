package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/ddgtran/internal/session"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != session.DefaultBaseURL {
		t.Errorf("expected base url %q, got %q", session.DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.UserAgent != session.DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}
	if cfg.Timeout != session.DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", session.DefaultTimeout, cfg.Timeout)
	}
	if cfg.DB != DefaultDBPath {
		t.Errorf("expected db %q, got %q", DefaultDBPath, cfg.DB)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
}

func TestInit_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddgtran.yaml")
	content := "base_url: http://localhost:8080\ntimeout: 5s\nconcurrency: 8\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v := viper.New()
	used, err := Init(v, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != path {
		t.Errorf("expected %q, got %q", path, used)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Timeout)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("expected 8, got %d", cfg.Concurrency)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %q", cfg.LogLevel)
	}
	if cfg.UserAgent != session.DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	if _, err := Init(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestInit_Environment(t *testing.T) {
	t.Setenv("DDGTRAN_CONCURRENCY", "2")
	t.Setenv("DDGTRAN_DB", "/tmp/x.db")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	if _, err := Init(v, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("expected 2, got %d", cfg.Concurrency)
	}
	if cfg.DB != "/tmp/x.db" {
		t.Errorf("expected /tmp/x.db, got %q", cfg.DB)
	}
}

func TestLoad_ClampsInvalidValues(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("concurrency", 0)
	v.Set("timeout", "-1s")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("expected %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.Timeout != session.DefaultTimeout {
		t.Errorf("expected %v, got %v", session.DefaultTimeout, cfg.Timeout)
	}
}
