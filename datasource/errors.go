package datasource

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential is returned when no gateway credential is configured.
	// It is a configuration error and is raised before any network attempt.
	ErrMissingCredential = errors.New("missing OpenWeatherMap API key")

	// ErrInvalidLocation is returned when a request names both or neither of
	// a city and coordinates
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidUnits is returned for an unsupported unit system
	ErrInvalidUnits = errors.New("invalid unit system")

	// ErrInvalidPayload is returned when a gateway response cannot be
	// summarized
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMissingField is returned when a required reading is absent from a
	// gateway response
	ErrMissingField = errors.New("missing field")
)

// GatewayErrorKind classifies failed gateway calls
type GatewayErrorKind int

const (
	// Transport covers network failures and unclassified non-2xx responses
	Transport GatewayErrorKind = iota
	// NotFound means the gateway did not recognise the location
	NotFound
	// Unauthorized means the gateway rejected the credential
	Unauthorized
)

func (k GatewayErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	default:
		return "transport"
	}
}

// GatewayError is a failed call to the remote weather gateway
type GatewayError struct {
	Kind     GatewayErrorKind
	Status   int    // HTTP status, 0 for network failures
	Message  string // gateway message if present, else the status text
	Resource string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Resource, e.Message)
	}
	return fmt.Sprintf("%s request failed (status %d): %s", e.Resource, e.Status, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ClassifyStatus builds a GatewayError for a non-2xx response. message is the
// gateway's own message and may be empty.
func ClassifyStatus(resource string, status int, message string) *GatewayError {
	kind := Transport
	switch status {
	case http.StatusNotFound:
		kind = NotFound
	case http.StatusUnauthorized:
		kind = Unauthorized
	}
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("failed to fetch %s", resource)
	}
	return &GatewayError{Kind: kind, Status: status, Message: message, Resource: resource}
}

// IsGatewayKind reports whether err is a GatewayError of the given kind
func IsGatewayKind(err error, kind GatewayErrorKind) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Kind == kind
}

// MissingFieldError names the absent field
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
