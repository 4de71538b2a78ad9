package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds process-wide settings read from the environment. Per-run
// recipe parameters live in RecipeOptions instead.
type AppConfig struct {
	// ObsDir is the directory holding the Globalview+ observation files.
	ObsDir string
	// ModelDir is the local model archive directory.
	ModelDir string
	// ArchiveURL is the base URL of the remote model archive; empty
	// disables the remote source.
	ArchiveURL string
	// CacheDir receives model files downloaded from the archive.
	CacheDir string

	// HTTPTimeout bounds each archive request.
	HTTPTimeout time.Duration

	// CatalogRefresh controls how often the background scheduler re-reads
	// the model catalogs in serve mode.
	CatalogRefresh time.Duration

	LogLevel  string // debug, info, warn or error
	LogFormat string // text or json

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.ObsDir = getenvDefault("CO2_OBS_DIR", "./data/obspack")
	cfg.ModelDir = getenvDefault("CO2_MODEL_DIR", "./data/models")
	cfg.ArchiveURL = os.Getenv("CO2_ARCHIVE_URL")
	cfg.CacheDir = getenvDefault("CO2_CACHE_DIR", filepath.Join(os.TempDir(), "co2-diagnostics"))

	timeoutStr := getenvDefault("CO2_HTTP_TIMEOUT", "2m")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CO2_HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	refreshStr := getenvDefault("CO2_CATALOG_REFRESH", "6h")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CO2_CATALOG_REFRESH: %w", err)
	}
	cfg.CatalogRefresh = refresh

	cfg.LogLevel = getenvDefault("CO2_LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("CO2_LOG_FORMAT", "text")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
