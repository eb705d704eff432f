package collector

import (
	"errors"

	"weathernow/datasource"
	"weathernow/geolocate"
	"weathernow/models"
)

// UserMessage maps an action failure to the text shown to the user
func UserMessage(err error) string {
	var (
		gwErr  *datasource.GatewayError
		locErr *geolocate.LocationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, datasource.ErrMissingCredential):
		return "Missing OpenWeatherMap API key."
	case errors.As(err, &locErr):
		switch locErr.Kind {
		case geolocate.PermissionDenied:
			return "Location permission denied. Search for a city instead."
		case geolocate.Timeout:
			return "Finding your location took too long. Try again or search for a city."
		default:
			return "Your location is not available on this device."
		}
	case datasource.IsGatewayKind(err, datasource.NotFound):
		return "I couldn't find that city. Try a different spelling."
	case datasource.IsGatewayKind(err, datasource.Unauthorized):
		return "Invalid API key. Double-check the configured credential."
	case errors.As(err, &gwErr):
		return gwErr.Message
	case errors.Is(err, models.ErrLocationAmbiguous):
		return "Search by city or by coordinates, not both."
	case errors.Is(err, datasource.ErrInvalidLocation):
		return "Please enter a city name."
	}
	return err.Error()
}

// ErrorKind names the failure class of err for machine consumers
func ErrorKind(err error) string {
	var (
		gwErr  *datasource.GatewayError
		locErr *geolocate.LocationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, datasource.ErrMissingCredential):
		return "configuration"
	case errors.As(err, &locErr):
		return "location_" + locErr.Kind.String()
	case errors.As(err, &gwErr):
		return gwErr.Kind.String()
	case errors.Is(err, datasource.ErrInvalidLocation), errors.Is(err, datasource.ErrInvalidUnits):
		return "invalid_request"
	case errors.Is(err, datasource.ErrInvalidPayload), errors.Is(err, datasource.ErrMissingField):
		return "invalid_payload"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	}
	return "transport"
}
