package main

import (
	"fmt"

	"go.uber.org/zap"

	"weathernow/cache"
	"weathernow/collector"
	"weathernow/datasource"
	"weathernow/geolocate"
	"weathernow/providers/openweathermap"
	"weathernow/summary"
)

// app is the wired program: config, logger, gateway chain and collector
type app struct {
	cfg       *datasource.Config
	logger    *zap.Logger
	opts      summary.Options
	cache     *cache.CachedGateway // nil when caching is disabled
	collector *collector.Collector
}

func newApp(configFile, units string, debug bool) (*app, error) {
	cfg, err := datasource.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if units != "" {
		cfg.DefaultUnits = units
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	opts := summary.DefaultOptions()
	opts.NoonWindow = summary.NoonWindow{From: cfg.NoonWindow.From, To: cfg.NoonWindow.To}

	gateway, cached := buildGateway(cfg, logger)
	resolver := geolocate.FromConfig(cfg, logger)

	c := collector.NewCollector(gateway, resolver, cfg.UnitSystem(), opts, logger)
	c.SetFetchTimeout(2 * cfg.Timeout)

	return &app{
		cfg:       cfg,
		logger:    logger,
		opts:      opts,
		cache:     cached,
		collector: c,
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// buildGateway wraps the OpenWeatherMap client in the configured rate
// limiter and cache. The cache sits outside the limiter so hits cost no tokens.
func buildGateway(cfg *datasource.Config, logger *zap.Logger) (datasource.Gateway, *cache.CachedGateway) {
	var gateway datasource.Gateway = openweathermap.NewGateway(cfg.APIKey, cfg.BaseURL, cfg.Timeout, logger)

	if cfg.RateLimit.Enabled {
		gateway = datasource.NewRateLimitedGateway(gateway, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		logger.Debug("applied rate limiting", zap.Float64("rps", cfg.RateLimit.RPS), zap.Int("burst", cfg.RateLimit.Burst))
	}
	var cached *cache.CachedGateway
	if cfg.Cache.Enabled {
		cached = cache.NewCachedGateway(gateway, cfg.Cache.Size, cfg.Cache.TTL, cfg.Timeout, logger)
		gateway = cached
		logger.Debug("applied response cache", zap.Duration("ttl", cfg.Cache.TTL), zap.Int("size", cfg.Cache.Size))
	}

	logger.Info("gateway ready", zap.String("gateway", gateway.Name()), zap.String("units", string(cfg.UnitSystem())))
	return gateway, cached
}
