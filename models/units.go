package models

import (
	"fmt"
	"strings"
)

// UnitSystem selects the measurement units requested from the gateway and
// used for display suffixes
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem converts user input into a UnitSystem
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	}
	return "", fmt.Errorf("unknown unit system %q", s)
}

// Valid reports whether u is one of the supported unit systems
func (u UnitSystem) Valid() bool {
	return u == Metric || u == Imperial
}

// Toggle returns the other unit system
func (u UnitSystem) Toggle() UnitSystem {
	if u == Imperial {
		return Metric
	}
	return Imperial
}

// TemperatureSuffix returns the display suffix for temperatures
func (u UnitSystem) TemperatureSuffix() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// SpeedSuffix returns the display suffix for wind speed
func (u UnitSystem) SpeedSuffix() string {
	if u == Imperial {
		return "mph"
	}
	return "m/s"
}
