package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"weathernow/models"
)

// Gateway is the remote weather API: current conditions and the 3-hourly
// forecast, each queryable by city name or coordinates
type Gateway interface {
	// FetchCurrent fetches the raw current-conditions payload for a location
	FetchCurrent(ctx context.Context, loc models.Location, units models.UnitSystem) (models.CurrentPayload, error)

	// FetchForecast fetches the raw 5-day/3-hour forecast payload for a location
	FetchForecast(ctx context.Context, loc models.Location, units models.UnitSystem) (models.ForecastPayload, error)

	// Name returns the gateway's name
	Name() string
}

// DefaultBaseURL is the OpenWeatherMap 2.5 API root
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Config represents the application configuration
type Config struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	DefaultUnits string        `mapstructure:"units"`
	Timeout      time.Duration `mapstructure:"timeout"`

	RateLimit struct {
		Enabled bool    `mapstructure:"enabled"`
		RPS     float64 `mapstructure:"rps"`
		Burst   int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`

	Cache struct {
		Enabled bool          `mapstructure:"enabled"`
		TTL     time.Duration `mapstructure:"ttl"`
		Size    int           `mapstructure:"size"`
	} `mapstructure:"cache"`

	// Local hour window used to pick each day's representative sample
	NoonWindow struct {
		From int `mapstructure:"from"`
		To   int `mapstructure:"to"`
	} `mapstructure:"noon_window"`

	Geolocation struct {
		Allow      bool          `mapstructure:"allow"`
		Mode       string        `mapstructure:"mode"` // "ip" or "static"
		Lat        float64       `mapstructure:"lat"`
		Lon        float64       `mapstructure:"lon"`
		ServiceURL string        `mapstructure:"service_url"`
		Timeout    time.Duration `mapstructure:"timeout"`
	} `mapstructure:"geolocation"`

	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("units", string(models.Metric))
	v.SetDefault("timeout", 10*time.Second)

	// OpenWeatherMap free tier allows 60 calls/minute
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.size", 128)

	v.SetDefault("noon_window.from", 11)
	v.SetDefault("noon_window.to", 14)

	v.SetDefault("geolocation.allow", false)
	v.SetDefault("geolocation.mode", "ip")
	v.SetDefault("geolocation.lat", 0.0)
	v.SetDefault("geolocation.lon", 0.0)
	v.SetDefault("geolocation.service_url", "http://ip-api.com/json")
	v.SetDefault("geolocation.timeout", 10*time.Second)

	v.SetDefault("server.port", 8080)
}

// LoadConfig loads configuration from defaults, an optional config file
// (JSON, YAML or TOML, by extension) and WEATHERNOW_* environment variables.
// The API key is also read from OWM_API_KEY.
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WEATHERNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "WEATHERNOW_API_KEY", "OWM_API_KEY"); err != nil {
		return nil, err
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.APIKey = strings.TrimSpace(config.APIKey)
	return &config, nil
}

// Validate reports configuration errors that must stop the program at
// startup. A missing API key is fatal.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	if _, err := models.ParseUnitSystem(c.DefaultUnits); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUnits, err)
	}
	from, to := c.NoonWindow.From, c.NoonWindow.To
	if from < 0 || to > 23 || from > to {
		return fmt.Errorf("noon window [%d,%d] must satisfy 0 <= from <= to <= 23", from, to)
	}
	return nil
}

// UnitSystem returns the configured default unit system, falling back to metric
func (c *Config) UnitSystem() models.UnitSystem {
	u, err := models.ParseUnitSystem(c.DefaultUnits)
	if err != nil {
		return models.Metric
	}
	return u
}
