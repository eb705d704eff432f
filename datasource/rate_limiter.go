package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"weathernow/models"
)

// RateLimitedGateway wraps a Gateway with separate limiters for the current
// and forecast resources
type RateLimitedGateway struct {
	gateway         Gateway
	currentLimiter  *rate.Limiter
	forecastLimiter *rate.Limiter
	name            string
}

// NewRateLimitedGateway creates a rate limited gateway.
// rps is the maximum requests per second per resource (can be fractional)
// burst is the maximum burst size allowed
func NewRateLimitedGateway(gateway Gateway, rps float64, burst int) *RateLimitedGateway {
	return &RateLimitedGateway{
		gateway:         gateway,
		currentLimiter:  rate.NewLimiter(rate.Limit(rps), burst),
		forecastLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", gateway.Name()),
	}
}

// FetchCurrent waits for the current-conditions limiter, then forwards
func (r *RateLimitedGateway) FetchCurrent(ctx context.Context, loc models.Location, units models.UnitSystem) (models.CurrentPayload, error) {
	if err := r.currentLimiter.Wait(ctx); err != nil {
		return models.CurrentPayload{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.gateway.FetchCurrent(ctx, loc, units)
}

// FetchForecast waits for the forecast limiter, then forwards
func (r *RateLimitedGateway) FetchForecast(ctx context.Context, loc models.Location, units models.UnitSystem) (models.ForecastPayload, error) {
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return models.ForecastPayload{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.gateway.FetchForecast(ctx, loc, units)
}

// Name returns the gateway name
func (r *RateLimitedGateway) Name() string {
	return r.name
}

var _ Gateway = (*RateLimitedGateway)(nil)
