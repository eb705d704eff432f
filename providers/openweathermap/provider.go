package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"weathernow/datasource"
	"weathernow/models"
)

const userAgent = "WeatherNow/1.0"

// Gateway talks to the OpenWeatherMap 2.5 current-conditions and forecast
// resources. Every call is a single attempt.
type Gateway struct {
	apiKey string
	client *resty.Client
	logger *zap.Logger
}

// Ensure Gateway implements datasource.Gateway
var _ datasource.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway client. An empty apiKey is accepted here and
// rejected on every call, before any request is sent.
func NewGateway(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Gateway {
	if baseURL == "" {
		baseURL = datasource.DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		path := ""
		if resp.RawResponse != nil && resp.RawResponse.Request != nil {
			path = resp.RawResponse.Request.URL.Path
		}
		logger.Debug("gateway response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("took", resp.Time()),
			zap.Int("bytes", len(resp.Body())),
		)
		return nil
	})

	return &Gateway{
		apiKey: apiKey,
		client: client,
		logger: logger,
	}
}

// Name returns the provider name
func (g *Gateway) Name() string {
	return "OpenWeatherMap"
}

// FetchCurrent fetches current conditions for a location
func (g *Gateway) FetchCurrent(ctx context.Context, loc models.Location, units models.UnitSystem) (models.CurrentPayload, error) {
	req, _, err := datasource.BuildRequests(loc, units, g.apiKey)
	if err != nil {
		return models.CurrentPayload{}, err
	}

	body, err := g.get(ctx, req)
	if err != nil {
		return models.CurrentPayload{}, err
	}
	return DecodeCurrent(body)
}

// FetchForecast fetches the 5-day/3-hour forecast for a location
func (g *Gateway) FetchForecast(ctx context.Context, loc models.Location, units models.UnitSystem) (models.ForecastPayload, error) {
	_, req, err := datasource.BuildRequests(loc, units, g.apiKey)
	if err != nil {
		return models.ForecastPayload{}, err
	}

	body, err := g.get(ctx, req)
	if err != nil {
		return models.ForecastPayload{}, err
	}
	return DecodeForecast(body)
}

func (g *Gateway) get(ctx context.Context, req datasource.Request) ([]byte, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(req.Query).
		Get("/" + req.Resource)
	if err != nil {
		return nil, &datasource.GatewayError{
			Kind:     datasource.Transport,
			Message:  err.Error(),
			Resource: req.Resource,
			Err:      err,
		}
	}

	if !resp.IsSuccess() {
		gwErr := datasource.ClassifyStatus(req.Resource, resp.StatusCode(), errorMessage(resp.Body()))
		g.logger.Warn("gateway returned error",
			zap.String("resource", req.Resource),
			zap.Int("status", gwErr.Status),
			zap.Stringer("kind", gwErr.Kind),
			zap.String("message", gwErr.Message),
		)
		return nil, gwErr
	}

	return resp.Body(), nil
}

// errorMessage extracts the "message" field of an error body such as
// {"cod":"404","message":"city not found"}
func errorMessage(body []byte) string {
	var apiError struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiError); err != nil {
		return ""
	}
	return apiError.Message
}

// DecodeCurrent parses a current-conditions body
func DecodeCurrent(body []byte) (models.CurrentPayload, error) {
	var payload models.CurrentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.CurrentPayload{}, fmt.Errorf("%w: current conditions: %v", datasource.ErrInvalidPayload, err)
	}
	return payload, nil
}

// DecodeForecast parses a forecast body. A "list" that is not an array is an
// invalid payload; an absent list is left nil for the summarizer to reject.
func DecodeForecast(body []byte) (models.ForecastPayload, error) {
	var payload models.ForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.ForecastPayload{}, fmt.Errorf("%w: forecast: %v", datasource.ErrInvalidPayload, err)
	}
	return payload, nil
}
