package models

import "time"

// WeatherCondition is one entry of the gateway's "weather" array
type WeatherCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentPayload is the raw current-conditions response. Numeric readings are
// pointers so that an absent field can be told apart from a zero reading.
type CurrentPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main    *CurrentMain       `json:"main"`
	Wind    *CurrentWind       `json:"wind"`
	Weather []WeatherCondition `json:"weather"`
}

// CurrentMain holds the "main" block of a current-conditions response
type CurrentMain struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	Humidity  *int     `json:"humidity"`
}

// CurrentWind holds the "wind" block of a current-conditions response
type CurrentWind struct {
	Speed *float64 `json:"speed"`
}

// CurrentConditions is the flat display record for current weather
type CurrentConditions struct {
	Location    string `json:"location"`    // name plus country code
	Temperature int    `json:"temperature"` // rounded
	FeelsLike   int    `json:"feelsLike"`   // rounded
	Humidity    int    `json:"humidity"`    // percentage
	WindSpeed   int    `json:"windSpeed"`   // rounded, m/s or mph
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Report is the result of one successful fetch action
type Report struct {
	Location Location          `json:"location"`
	Units    UnitSystem        `json:"units"`
	Current  CurrentConditions `json:"current"`
	Forecast []DailySummary    `json:"forecast"`
	Fetched  time.Time         `json:"fetched"`
}

// IconURL returns the image URL the gateway serves for an icon code
func IconURL(code string) string {
	return "https://openweathermap.org/img/wn/" + code + "@2x.png"
}
