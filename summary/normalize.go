// Package summary turns raw gateway payloads into display records: the
// current-conditions card and the five daily forecast cards.
//
// All rounding uses math.Round, which rounds half away from zero.
package summary

import (
	"math"

	"weathernow/datasource"
	"weathernow/models"
)

// NormalizeCurrent maps a current-conditions payload to a display record.
// Temperature, humidity and wind speed are required; a missing feels-like
// reading falls back to the temperature.
func NormalizeCurrent(p models.CurrentPayload) (models.CurrentConditions, error) {
	if p.Main == nil || p.Main.Temp == nil {
		return models.CurrentConditions{}, &datasource.MissingFieldError{Field: "main.temp"}
	}
	if p.Main.Humidity == nil {
		return models.CurrentConditions{}, &datasource.MissingFieldError{Field: "main.humidity"}
	}
	if p.Wind == nil || p.Wind.Speed == nil {
		return models.CurrentConditions{}, &datasource.MissingFieldError{Field: "wind.speed"}
	}

	feelsLike := *p.Main.Temp
	if p.Main.FeelsLike != nil {
		feelsLike = *p.Main.FeelsLike
	}

	out := models.CurrentConditions{
		Location:    locationLabel(p.Name, p.Sys.Country),
		Temperature: round(*p.Main.Temp),
		FeelsLike:   round(feelsLike),
		Humidity:    *p.Main.Humidity,
		WindSpeed:   round(*p.Wind.Speed),
	}
	if len(p.Weather) > 0 {
		out.Description = p.Weather[0].Description
		out.Icon = p.Weather[0].Icon
	}
	return out, nil
}

func locationLabel(name, country string) string {
	if country == "" {
		return name
	}
	return name + ", " + country
}

func round(v float64) int {
	return int(math.Round(v))
}
