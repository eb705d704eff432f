package datasource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernow/datasource"
	"weathernow/models"
)

func TestBuildRequests_City(t *testing.T) {
	current, forecast, err := datasource.BuildRequests(models.CityLocation("  São Paulo "), models.Imperial, "secret")
	require.NoError(t, err)

	assert.Equal(t, datasource.ResourceCurrent, current.Resource)
	assert.Equal(t, datasource.ResourceForecast, forecast.Resource)
	for _, r := range []datasource.Request{current, forecast} {
		assert.Equal(t, "São Paulo", r.Query.Get("q"))
		assert.Equal(t, "imperial", r.Query.Get("units"))
		assert.Equal(t, "secret", r.Query.Get("appid"))
		assert.False(t, r.Query.Has("lat"))
		assert.False(t, r.Query.Has("lon"))
	}
	assert.Equal(t, "appid=secret&q=S%C3%A3o+Paulo&units=imperial", current.Query.Encode())
}

func TestBuildRequests_Coordinates(t *testing.T) {
	current, forecast, err := datasource.BuildRequests(models.CoordsLocation(48.4284, -123.3656), models.Metric, "k")
	require.NoError(t, err)

	for _, r := range []datasource.Request{current, forecast} {
		assert.Equal(t, "48.4284", r.Query.Get("lat"))
		assert.Equal(t, "-123.3656", r.Query.Get("lon"))
		assert.Equal(t, "metric", r.Query.Get("units"))
		assert.False(t, r.Query.Has("q"))
	}
}

func TestBuildRequests_MissingCredential(t *testing.T) {
	_, _, err := datasource.BuildRequests(models.CityLocation("Victoria"), models.Metric, "")
	assert.ErrorIs(t, err, datasource.ErrMissingCredential)
}

func TestBuildRequests_InvalidInput(t *testing.T) {
	both := models.CityLocation("Victoria")
	both.Coords = &models.Coordinates{Latitude: 1, Longitude: 2}

	tests := []struct {
		name  string
		loc   models.Location
		units models.UnitSystem
		want  error
	}{
		{"neither city nor coords", models.Location{}, models.Metric, datasource.ErrInvalidLocation},
		{"blank city", models.CityLocation("   "), models.Metric, datasource.ErrInvalidLocation},
		{"both city and coords", both, models.Metric, datasource.ErrInvalidLocation},
		{"unknown units", models.CityLocation("Victoria"), models.UnitSystem("kelvin"), datasource.ErrInvalidUnits},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := datasource.BuildRequests(tc.loc, tc.units, "k")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
