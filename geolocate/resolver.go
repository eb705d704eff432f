// Package geolocate resolves the caller's current position. Failures are
// reported as *LocationError with one of three kinds; nothing is retried.
package geolocate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"weathernow/datasource"
	"weathernow/models"
)

// Kind classifies location failures
type Kind int

const (
	// Unavailable means no position source works on this host
	Unavailable Kind = iota
	// PermissionDenied means the user has not allowed geolocation
	PermissionDenied
	// Timeout means the position was not known within the deadline
	Timeout
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case Timeout:
		return "timeout"
	default:
		return "unavailable"
	}
}

// LocationError is a failed position lookup
type LocationError struct {
	Kind Kind
	Err  error
}

func (e *LocationError) Error() string {
	if e.Err == nil {
		return "geolocation " + e.Kind.String()
	}
	return fmt.Sprintf("geolocation %s: %v", e.Kind, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// Resolver finds the current position
type Resolver interface {
	Resolve(ctx context.Context) (models.Coordinates, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context) (models.Coordinates, error)

// Resolve calls f
func (f ResolverFunc) Resolve(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}

// Static always reports the same position
type Static struct {
	Coords models.Coordinates
}

// Resolve returns the fixed coordinates
func (s Static) Resolve(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, classify(err)
	}
	return s.Coords, nil
}

// RequireConsent wraps r so that it fails with PermissionDenied unless the
// user allowed geolocation
func RequireConsent(r Resolver, allowed bool) Resolver {
	return ResolverFunc(func(ctx context.Context) (models.Coordinates, error) {
		if !allowed {
			return models.Coordinates{}, &LocationError{Kind: PermissionDenied}
		}
		return r.Resolve(ctx)
	})
}

// WithTimeout bounds r by d. An expired deadline is reported as Timeout.
func WithTimeout(r Resolver, d time.Duration) Resolver {
	return ResolverFunc(func(ctx context.Context) (models.Coordinates, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		coords, err := r.Resolve(ctx)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return models.Coordinates{}, &LocationError{Kind: Timeout, Err: ctx.Err()}
			}
			return models.Coordinates{}, err
		}
		return coords, nil
	})
}

// classify maps a lookup error to a LocationError, keeping an existing one
func classify(err error) error {
	var locErr *LocationError
	if errors.As(err, &locErr) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &LocationError{Kind: Timeout, Err: err}
	}
	return &LocationError{Kind: Unavailable, Err: err}
}

// FromConfig builds the resolver described by the geolocation section of the
// configuration: consent check, then a bounded static or IP lookup
func FromConfig(cfg *datasource.Config, logger *zap.Logger) Resolver {
	geo := cfg.Geolocation

	var r Resolver
	switch geo.Mode {
	case "static":
		r = Static{Coords: models.Coordinates{Latitude: geo.Lat, Longitude: geo.Lon}}
	default:
		r = NewIPResolver(geo.ServiceURL, logger)
	}
	if geo.Timeout > 0 {
		r = WithTimeout(r, geo.Timeout)
	}
	return RequireConsent(r, geo.Allow)
}
