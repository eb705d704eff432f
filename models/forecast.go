package models

// ForecastSample is a single 3-hour forecast entry as returned by the gateway
type ForecastSample struct {
	Dt      int64              `json:"dt"` // Unix seconds, UTC
	Main    *SampleMain        `json:"main"`
	Weather []WeatherCondition `json:"weather"`
}

// SampleMain holds the temperature range of a forecast sample
type SampleMain struct {
	TempMin *float64 `json:"temp_min"`
	TempMax *float64 `json:"temp_max"`
}

// ForecastPayload is the raw 5-day/3-hour forecast response. A nil List means
// the field was absent or null.
type ForecastPayload struct {
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int64  `json:"timezone"` // seconds from UTC
	} `json:"city"`
	List []ForecastSample `json:"list"`
}

// DailySummary is one day card derived from the forecast samples of a local
// calendar day
type DailySummary struct {
	DateKey     string `json:"date"`    // YYYY-MM-DD in the location's local time
	Weekday     string `json:"weekday"` // three-letter abbreviation
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
