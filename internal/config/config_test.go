package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dararith/vehicle-inventory/backend/internal/config"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
	"github.com/dararith/vehicle-inventory/backend/internal/sheet"
)

// setRequired sets the variables without which Load fails.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("UPSTREAM_URL", "https://script.google.com/macros/s/abc/exec")
	t.Setenv("SESSION_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("VEHICLE_CACHE_TTL_MS", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, sheet.DefaultTimeouts, cfg.Timeouts)
}

func TestLoad_MissingRequiredListsAll(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "")
	t.Setenv("SESSION_SECRET", "")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_URL")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_CacheTTLFromMilliseconds(t *testing.T) {
	setRequired(t)
	t.Setenv("VEHICLE_CACHE_TTL_MS", "600000")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestLoad_ExplicitZeroTTLDisablesCaching(t *testing.T) {
	setRequired(t)
	t.Setenv("VEHICLE_CACHE_TTL_MS", "0")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
}

func TestLoad_BadTTLRejected(t *testing.T) {
	setRequired(t)

	for _, raw := range []string{"abc", "-1", "10s"} {
		t.Setenv("VEHICLE_CACHE_TTL_MS", raw)
		_, err := config.Load()
		assert.Error(t, err, "VEHICLE_CACHE_TTL_MS=%q", raw)
	}
}

func TestLoad_CORSOriginsSplitAndTrimmed(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_FolderIDs(t *testing.T) {
	setRequired(t)
	t.Setenv("FOLDER_ID_CARS", "folder-cars")
	t.Setenv("FOLDER_ID_MOTORCYCLES", "folder-moto")
	t.Setenv("FOLDER_ID_TUKTUK", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "folder-cars", cfg.FolderIDs[domain.CategoryCars])
	assert.Equal(t, "folder-moto", cfg.FolderIDs[domain.CategoryMotorcycles])
	_, ok := cfg.FolderIDs[domain.CategoryTukTuk]
	assert.False(t, ok)
}

func TestLoad_TimeoutOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("UPSTREAM_READ_TIMEOUT", "45s")
	t.Setenv("UPSTREAM_UPLOAD_TIMEOUT", "2m")
	t.Setenv("UPSTREAM_WRITE_TIMEOUT", "garbage")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Timeouts.Read)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Upload)
	assert.Equal(t, sheet.DefaultTimeouts.Write, cfg.Timeouts.Write)
}
