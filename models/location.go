package models

import (
	"errors"
	"strconv"
	"strings"
)

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Location identifies what to query: a city name or a coordinate pair, never both
type Location struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// Location validation failures
var (
	ErrLocationEmpty     = errors.New("either a city name or coordinates must be supplied")
	ErrLocationAmbiguous = errors.New("city name and coordinates are mutually exclusive")
)

// CityLocation builds a Location from user input, trimming whitespace
func CityLocation(city string) Location {
	return Location{City: strings.TrimSpace(city)}
}

// CoordsLocation builds a Location from a coordinate pair
func CoordsLocation(lat, lon float64) Location {
	return Location{Coords: &Coordinates{Latitude: lat, Longitude: lon}}
}

// Validate checks that exactly one form of location is present
func (l Location) Validate() error {
	hasCity := strings.TrimSpace(l.City) != ""
	switch {
	case hasCity && l.Coords != nil:
		return ErrLocationAmbiguous
	case !hasCity && l.Coords == nil:
		return ErrLocationEmpty
	}
	return nil
}

// Key returns a stable identifier for the location, used for caching and
// matching in-flight requests
func (l Location) Key() string {
	if l.Coords != nil {
		return "coords:" + FormatCoordinate(l.Coords.Latitude) + "," + FormatCoordinate(l.Coords.Longitude)
	}
	return "city:" + strings.ToLower(strings.TrimSpace(l.City))
}

// String returns a human readable form of the location
func (l Location) String() string {
	if l.Coords != nil {
		return FormatCoordinate(l.Coords.Latitude) + "," + FormatCoordinate(l.Coords.Longitude)
	}
	return l.City
}

// FormatCoordinate renders a coordinate with the shortest exact decimal form
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
