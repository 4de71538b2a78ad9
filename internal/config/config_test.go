package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ObsDir != "./data/obspack" {
		t.Errorf("ObsDir = %q", cfg.ObsDir)
	}
	if cfg.HTTPTimeout != 2*time.Minute {
		t.Errorf("HTTPTimeout = %v, want 2m", cfg.HTTPTimeout)
	}
	if cfg.CatalogRefresh != 6*time.Hour {
		t.Errorf("CatalogRefresh = %v, want 6h", cfg.CatalogRefresh)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log settings = %q %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CO2_OBS_DIR", "/srv/obspack")
	t.Setenv("CO2_ARCHIVE_URL", "https://archive.example.org/cmip")
	t.Setenv("CO2_HTTP_TIMEOUT", "30s")
	t.Setenv("CO2_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ObsDir != "/srv/obspack" {
		t.Errorf("ObsDir = %q", cfg.ObsDir)
	}
	if cfg.ArchiveURL != "https://archive.example.org/cmip" {
		t.Errorf("ArchiveURL = %q", cfg.ArchiveURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CO2_HTTP_TIMEOUT", "banana")
	if _, err := Load(); err == nil {
		t.Error("expected an error for an unparseable timeout")
	}
}
