// Package config loads and validates application configuration from
// environment variables. A .env file is honored when present (local
// development); real deployments set the environment directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
	"github.com/dararith/vehicle-inventory/backend/internal/sheet"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"] (Next dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// UpstreamURL is the Apps Script deployment URL acting as the system
	// of record. Required.
	UpstreamURL string

	// UpstreamToken is the server-held bearer token sent on upstream
	// write actions. Read actions are unauthenticated to the upstream.
	UpstreamToken string

	// SessionSecret signs session tokens. Required.
	SessionSecret string

	// CronSecret protects the proactive cache-refresh endpoint. When
	// empty, the cron endpoint rejects all callers.
	CronSecret string

	// CacheTTL is the vehicle list cache validity window, sourced from
	// VEHICLE_CACHE_TTL_MS. Exactly 0 disables caching entirely.
	// Defaults to 10 minutes.
	CacheTTL time.Duration

	// CacheDatabaseURL, when set, switches the cache slot from the
	// in-process store to a Postgres-backed snapshot table.
	CacheDatabaseURL string

	// Timeouts are the per-call-class budgets for upstream requests.
	Timeouts sheet.Timeouts

	// FolderIDs maps display category names to the Drive folder that
	// stores that category's vehicle images.
	FolderIDs map[string]string
}

// Load reads configuration from the environment (after a best-effort
// .env load) and returns a Config. Returns an error listing every
// required variable that is not set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		UpstreamToken:    os.Getenv("UPSTREAM_TOKEN"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		CacheDatabaseURL: os.Getenv("CACHE_DATABASE_URL"),
		Timeouts: sheet.Timeouts{
			Read:   getDuration("UPSTREAM_READ_TIMEOUT", sheet.DefaultTimeouts.Read),
			Write:  getDuration("UPSTREAM_WRITE_TIMEOUT", sheet.DefaultTimeouts.Write),
			Upload: getDuration("UPSTREAM_UPLOAD_TIMEOUT", sheet.DefaultTimeouts.Upload),
			Health: getDuration("HEALTH_TIMEOUT", sheet.DefaultTimeouts.Health),
		},
		FolderIDs: folderIDs(),
	}

	ttl, err := cacheTTL()
	if err != nil {
		return Config{}, err
	}
	cfg.CacheTTL = ttl

	var missing []string

	cfg.UpstreamURL = os.Getenv("UPSTREAM_URL")
	if cfg.UpstreamURL == "" {
		missing = append(missing, "UPSTREAM_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// cacheTTL parses VEHICLE_CACHE_TTL_MS as integer milliseconds.
// Unset means the 10-minute default; an explicit 0 disables caching.
func cacheTTL() (time.Duration, error) {
	raw := os.Getenv("VEHICLE_CACHE_TTL_MS")
	if raw == "" {
		return 10 * time.Minute, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("VEHICLE_CACHE_TTL_MS must be a non-negative integer, got %q", raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// folderIDs assembles the category → Drive folder mapping. Categories
// without a configured folder reject image uploads at validation time.
func folderIDs() map[string]string {
	ids := map[string]string{}
	for env, category := range map[string]string{
		"FOLDER_ID_CARS":        domain.CategoryCars,
		"FOLDER_ID_MOTORCYCLES": domain.CategoryMotorcycles,
		"FOLDER_ID_TUKTUK":      domain.CategoryTukTuk,
	} {
		if v := os.Getenv(env); v != "" {
			ids[category] = v
		}
	}
	return ids
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses an environment variable as a time.Duration
// ("30s", "2m"), falling back on absence or parse failure.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
