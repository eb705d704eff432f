package datasource_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernow/datasource"
	"weathernow/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OWM_API_KEY", "")
	t.Setenv("WEATHERNOW_API_KEY", "")

	cfg, err := datasource.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, datasource.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, models.Metric, cfg.UnitSystem())
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 11, cfg.NoonWindow.From)
	assert.Equal(t, 14, cfg.NoonWindow.To)
	assert.True(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Geolocation.Allow)

	assert.ErrorIs(t, cfg.Validate(), datasource.ErrMissingCredential)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weathernow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
units: imperial
timeout: 3s
noon_window:
  from: 10
  to: 15
cache:
  ttl: 1m
geolocation:
  allow: true
  mode: static
  lat: 48.43
  lon: -123.37
`), 0o600))

	t.Setenv("WEATHERNOW_API_KEY", "")
	t.Setenv("OWM_API_KEY", " from-env ")
	t.Setenv("WEATHERNOW_SERVER_PORT", "9090")

	cfg, err := datasource.LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, models.Imperial, cfg.UnitSystem())
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.NoonWindow.From)
	assert.Equal(t, 15, cfg.NoonWindow.To)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "static", cfg.Geolocation.Mode)
	assert.InDelta(t, 48.43, cfg.Geolocation.Lat, 1e-9)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := datasource.LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestConfig_ValidateNoonWindow(t *testing.T) {
	cfg := &datasource.Config{APIKey: "k", DefaultUnits: "metric"}
	cfg.NoonWindow.From, cfg.NoonWindow.To = 15, 11
	assert.Error(t, cfg.Validate())

	cfg.NoonWindow.From, cfg.NoonWindow.To = 11, 14
	assert.NoError(t, cfg.Validate())

	cfg.DefaultUnits = "kelvin"
	assert.ErrorIs(t, cfg.Validate(), datasource.ErrInvalidUnits)
}
