package geolocate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"weathernow/models"
)

// IPResolver estimates the position from the host's public IP address using
// an ip-api.com compatible JSON service
type IPResolver struct {
	client     *resty.Client
	serviceURL string
	logger     *zap.Logger
}

// NewIPResolver creates a resolver for serviceURL, e.g. http://ip-api.com/json
func NewIPResolver(serviceURL string, logger *zap.Logger) *IPResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPResolver{
		client:     resty.New().SetHeader("Accept", "application/json"),
		serviceURL: serviceURL,
		logger:     logger,
	}
}

type ipLookup struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Resolve looks up the current position
func (r *IPResolver) Resolve(ctx context.Context) (models.Coordinates, error) {
	var out ipLookup
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon").
		SetResult(&out).
		Get(r.serviceURL)
	if err != nil {
		return models.Coordinates{}, classify(err)
	}
	if !resp.IsSuccess() {
		return models.Coordinates{}, &LocationError{Kind: Unavailable, Err: fmt.Errorf("lookup returned status %d", resp.StatusCode())}
	}
	if out.Status != "success" || out.Lat == nil || out.Lon == nil {
		msg := out.Message
		if msg == "" {
			msg = "no position in response"
		}
		return models.Coordinates{}, &LocationError{Kind: Unavailable, Err: errors.New(msg)}
	}

	coords := models.Coordinates{Latitude: *out.Lat, Longitude: *out.Lon}
	r.logger.Debug("resolved position from IP",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude),
	)
	return coords, nil
}
