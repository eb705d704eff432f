package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weathernow/datasource"
)

func TestBuildGateway(t *testing.T) {
	cfg, err := datasource.LoadConfig("")
	require.NoError(t, err)
	cfg.APIKey = "k"
	cfg.Timeout = time.Second

	gateway, cached := buildGateway(cfg, zap.NewNop())
	require.NotNil(t, cached)
	assert.Equal(t, "OpenWeatherMap [Rate Limited] [Cached]", gateway.Name())

	cfg.Cache.Enabled = false
	cfg.RateLimit.Enabled = false
	gateway, cached = buildGateway(cfg, zap.NewNop())
	assert.Nil(t, cached)
	assert.Equal(t, "OpenWeatherMap", gateway.Name())
}
