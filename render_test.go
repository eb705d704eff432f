package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernow/models"
)

func TestRenderReport(t *testing.T) {
	report := models.Report{
		Location: models.CityLocation("London"),
		Units:    models.Imperial,
		Current: models.CurrentConditions{
			Location:    "London, GB",
			Temperature: 54,
			FeelsLike:   50,
			Humidity:    81,
			WindSpeed:   10,
			Description: "light rain",
			Icon:        "10d",
		},
		Forecast: []models.DailySummary{
			{DateKey: "2024-03-01", Weekday: "Fri", Min: 40, Max: 49, Description: "scattered clouds", Icon: "03d"},
			{DateKey: "2024-03-02", Weekday: "Sat", Min: 38, Max: 47, Description: "rain", Icon: "10d"},
		},
	}

	var buf bytes.Buffer
	renderReport(&buf, report, 5)
	out := buf.String()

	assert.Contains(t, out, "Weather for London, GB:")
	assert.Contains(t, out, "Conditions:  Light Rain")
	assert.Contains(t, out, "Temperature: 54°F")
	assert.Contains(t, out, "Wind Speed:  10 mph")
	assert.Contains(t, out, "https://openweathermap.org/img/wn/10d@2x.png")
	assert.Contains(t, out, "Fri 2024-03-01 Scattered Clouds")
	assert.Contains(t, out, "High: 49°F  Low: 40°F")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	// two real days padded to five cards
	assert.Equal(t, 3, strings.Count(out, "High: --°  Low: --°"))
}
