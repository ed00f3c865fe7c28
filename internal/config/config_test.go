package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.mapbox.com", cfg.Mapbox.BaseURL)
	assert.Equal(t, "hr", cfg.Mapbox.Country)
	assert.Equal(t, 3, cfg.Mapbox.Limit)
	assert.InDelta(t, 0.5, cfg.Geocode.MinConfidence, 0.001)
	assert.Equal(t, 30, cfg.Geocode.StaleDays)
	assert.Equal(t, 300, cfg.Geocode.BatchDelayMs)
	assert.Equal(t, "https://www.entrio.hr", cfg.Sources.Entrio.BaseURL)
	assert.Equal(t, "20:00", cfg.Sources.Entrio.DefaultTime)
	assert.Equal(t, "09:00", cfg.Sources.CroatiaHR.DefaultTime)
	assert.Equal(t, "Free", cfg.Sources.CroatiaHR.DefaultPrice)
	assert.Equal(t, 5, cfg.Sources.Entrio.MaxPages)
	assert.Equal(t, 3, cfg.Scrape.DetailSampleRate)
	assert.Equal(t, 2, cfg.Scrape.MaxConcurrent)
	assert.Equal(t, 3, cfg.Schedule.DailyHour)
	assert.Equal(t, 10, cfg.Schedule.DailyMaxPages)
	assert.Equal(t, 2, cfg.Schedule.HourlyMaxPages)
	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "event-scrape", cfg.Temporal.TaskQueue)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/events
log:
  level: debug
  format: console
sources:
  entrio:
    max_pages: 12
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/events", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12, cfg.Sources.Entrio.MaxPages)
	// Defaults still apply for unset values
	assert.Equal(t, "20:00", cfg.Sources.Entrio.DefaultTime)
	assert.Equal(t, 5, cfg.Sources.CroatiaHR.MaxPages)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("EVENTS_STORE_DRIVER", "postgres")
	t.Setenv("EVENTS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("EVENTS_MAPBOX_TOKEN", "pk.test")
	t.Setenv("EVENTS_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pk.test", cfg.Mapbox.Token)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
