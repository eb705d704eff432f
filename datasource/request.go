package datasource

import (
	"fmt"
	"net/url"
	"strings"

	"weathernow/models"
)

// Gateway resources
const (
	ResourceCurrent  = "weather"
	ResourceForecast = "forecast"
)

// Request describes one GET against a gateway resource
type Request struct {
	Resource string
	Query    url.Values
}

// BuildRequests builds the current-conditions and forecast requests for a
// location. It fails before anything touches the network when the credential
// is empty, the location is ambiguous or the units are unknown.
func BuildRequests(loc models.Location, units models.UnitSystem, apiKey string) (current, forecast Request, err error) {
	if apiKey == "" {
		return Request{}, Request{}, ErrMissingCredential
	}
	if err := loc.Validate(); err != nil {
		return Request{}, Request{}, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}
	if !units.Valid() {
		return Request{}, Request{}, fmt.Errorf("%w: %q", ErrInvalidUnits, units)
	}

	current = Request{Resource: ResourceCurrent, Query: buildQuery(loc, units, apiKey)}
	forecast = Request{Resource: ResourceForecast, Query: buildQuery(loc, units, apiKey)}
	return current, forecast, nil
}

func buildQuery(loc models.Location, units models.UnitSystem, apiKey string) url.Values {
	params := url.Values{}
	if loc.Coords != nil {
		params.Set("lat", models.FormatCoordinate(loc.Coords.Latitude))
		params.Set("lon", models.FormatCoordinate(loc.Coords.Longitude))
	} else {
		params.Set("q", strings.TrimSpace(loc.City))
	}
	params.Set("units", string(units))
	params.Set("appid", apiKey)
	return params
}
