package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"weathernow/datasource"
	"weathernow/models"
)

// CachedGateway wraps a Gateway and caches successful payloads per resource,
// location and unit system. Concurrent misses for the same key share one
// upstream call, which runs detached from any single caller's cancellation and
// is bounded by its own timeout. Errors are never cached.
type CachedGateway struct {
	gateway  datasource.Gateway
	timeout  time.Duration
	current  *expirable.LRU[string, models.CurrentPayload]
	forecast *expirable.LRU[string, models.ForecastPayload]
	group    singleflight.Group
	logger   *zap.Logger

	mutex          sync.Mutex
	cacheHitCount  int
	cacheMissCount int
}

// NewCachedGateway creates a cached wrapper holding at most size entries per
// resource, each valid for ttl. A shared upstream call is abandoned after
// timeout; zero means no limit beyond the gateway's own.
func NewCachedGateway(gateway datasource.Gateway, size int, ttl, timeout time.Duration, logger *zap.Logger) *CachedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGateway{
		gateway:  gateway,
		timeout:  timeout,
		current:  expirable.NewLRU[string, models.CurrentPayload](size, nil, ttl),
		forecast: expirable.NewLRU[string, models.ForecastPayload](size, nil, ttl),
		logger:   logger,
	}
}

// Name returns the name of the underlying gateway with [Cached] suffix
func (c *CachedGateway) Name() string {
	return c.gateway.Name() + " [Cached]"
}

func cacheKey(loc models.Location, units models.UnitSystem) string {
	return loc.Key() + "|" + string(units)
}

// FetchCurrent returns cached current conditions when available
func (c *CachedGateway) FetchCurrent(ctx context.Context, loc models.Location, units models.UnitSystem) (models.CurrentPayload, error) {
	key := cacheKey(loc, units)
	if data, ok := c.current.Get(key); ok {
		c.hit(datasource.ResourceCurrent, key)
		return data, nil
	}
	c.miss(datasource.ResourceCurrent, key)

	v, err := c.shared(ctx, datasource.ResourceCurrent+"|"+key, func(ctx context.Context) (interface{}, error) {
		data, err := c.gateway.FetchCurrent(ctx, loc, units)
		if err != nil {
			return nil, err
		}
		c.current.Add(key, data)
		return data, nil
	})
	if err != nil {
		return models.CurrentPayload{}, err
	}
	return v.(models.CurrentPayload), nil
}

// FetchForecast returns a cached forecast when available
func (c *CachedGateway) FetchForecast(ctx context.Context, loc models.Location, units models.UnitSystem) (models.ForecastPayload, error) {
	key := cacheKey(loc, units)
	if data, ok := c.forecast.Get(key); ok {
		c.hit(datasource.ResourceForecast, key)
		return data, nil
	}
	c.miss(datasource.ResourceForecast, key)

	v, err := c.shared(ctx, datasource.ResourceForecast+"|"+key, func(ctx context.Context) (interface{}, error) {
		data, err := c.gateway.FetchForecast(ctx, loc, units)
		if err != nil {
			return nil, err
		}
		c.forecast.Add(key, data)
		return data, nil
	})
	if err != nil {
		return models.ForecastPayload{}, err
	}
	return v.(models.ForecastPayload), nil
}

// shared runs fetch once per key for all concurrent callers. Each caller
// waits only as long as its own ctx allows; leaving early does not cancel the
// call for the others.
func (c *CachedGateway) shared(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, c.timeout)
			defer cancel()
		}
		return fetch(callCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *CachedGateway) hit(resource, key string) {
	c.mutex.Lock()
	c.cacheHitCount++
	c.mutex.Unlock()
	c.logger.Debug("cache hit", zap.String("resource", resource), zap.String("key", key))
}

func (c *CachedGateway) miss(resource, key string) {
	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()
	c.logger.Debug("cache miss", zap.String("resource", resource), zap.String("key", key))
}

// Purge drops every cached payload
func (c *CachedGateway) Purge() {
	c.current.Purge()
	c.forecast.Purge()
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedGateway) CacheStats() (hits, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedGateway implements the Gateway interface
var _ datasource.Gateway = (*CachedGateway)(nil)
