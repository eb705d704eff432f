package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"weathernow/datasource"
	"weathernow/geolocate"
	"weathernow/models"
	"weathernow/summary"
)

// ErrSuperseded is returned by an action whose result arrived after a newer
// action had started. The result is discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Collector owns the displayed weather state. Each fetch action loads current
// conditions and the forecast concurrently and either fully succeeds or fully
// fails. When actions overlap, the most recently started one wins.
type Collector struct {
	gateway  datasource.Gateway
	resolver geolocate.Resolver
	opts     summary.Options
	logger   *zap.Logger
	now      func() time.Time

	mu           sync.Mutex
	fetchTimeout time.Duration
	generation   uint64
	loading      bool
	resolving    bool             // the newest action is still locating the caller
	inFlight     *models.Location // target of the newest action, nil while resolving
	units        models.UnitSystem
	last         *models.Location // last successfully displayed location
	report       *models.Report
	lastErr      error

	events chan Event
}

// NewCollector creates a collector. resolver may be nil when geolocation is
// not available on this host.
func NewCollector(gateway datasource.Gateway, resolver geolocate.Resolver, units models.UnitSystem, opts summary.Options, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !units.Valid() {
		units = models.Metric
	}
	return &Collector{
		gateway:      gateway,
		resolver:     resolver,
		opts:         opts,
		logger:       logger,
		fetchTimeout: 15 * time.Second,
		now:          time.Now,
		units:        units,
		events:       make(chan Event, 64),
	}
}

// SetFetchTimeout changes the deadline applied to each action's gateway calls
func (c *Collector) SetFetchTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchTimeout = timeout
}

// Updates returns the channel that emits state changes. Events are dropped
// when nobody drains the channel.
func (c *Collector) Updates() <-chan Event {
	return c.events
}

// Units returns the current unit system
func (c *Collector) Units() models.UnitSystem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.units
}

// Load fetches and summarizes weather for loc without touching the
// collector's state. Both gateway calls run concurrently; if either fails the
// whole load fails and nothing is returned.
func (c *Collector) Load(ctx context.Context, loc models.Location, units models.UnitSystem) (models.Report, error) {
	if err := loc.Validate(); err != nil {
		return models.Report{}, fmt.Errorf("%w: %w", datasource.ErrInvalidLocation, err)
	}
	c.mu.Lock()
	timeout := c.fetchTimeout
	c.mu.Unlock()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		currentPayload  models.CurrentPayload
		forecastPayload models.ForecastPayload
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.gateway.FetchCurrent(gctx, loc, units)
		if err != nil {
			return fmt.Errorf("current conditions: %w", err)
		}
		currentPayload = p
		return nil
	})
	g.Go(func() error {
		p, err := c.gateway.FetchForecast(gctx, loc, units)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		forecastPayload = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Report{}, err
	}

	current, err := summary.NormalizeCurrent(currentPayload)
	if err != nil {
		return models.Report{}, fmt.Errorf("current conditions: %w", err)
	}
	days, err := summary.Summarize(forecastPayload, c.opts)
	if err != nil {
		return models.Report{}, fmt.Errorf("forecast: %w", err)
	}

	return models.Report{
		Location: loc,
		Units:    units,
		Current:  current,
		Forecast: days,
		Fetched:  c.now(),
	}, nil
}

// LoadHere resolves the current position and loads weather for it without
// touching the collector's state
func (c *Collector) LoadHere(ctx context.Context, units models.UnitSystem) (models.Report, error) {
	loc, err := c.resolve(ctx)
	if err != nil {
		return models.Report{}, err
	}
	return c.Load(ctx, loc, units)
}

func (c *Collector) resolve(ctx context.Context) (models.Location, error) {
	if c.resolver == nil {
		return models.Location{}, &geolocate.LocationError{Kind: geolocate.Unavailable}
	}
	coords, err := c.resolver.Resolve(ctx)
	if err != nil {
		return models.Location{}, err
	}
	return models.Location{Coords: &coords}, nil
}

// Fetch runs a fetch action for loc using the current unit system and
// records the outcome, unless a newer action started meanwhile, in which case
// it returns ErrSuperseded.
func (c *Collector) Fetch(ctx context.Context, loc models.Location) (models.Report, error) {
	a := c.begin(&loc)
	report, err := c.Load(ctx, loc, a.units)
	return c.complete(a, loc, report, err)
}

// FetchHere resolves the current position and fetches weather for it
func (c *Collector) FetchHere(ctx context.Context) (models.Report, error) {
	a := c.begin(nil)

	loc, err := c.resolve(ctx)
	if err != nil {
		return c.complete(a, models.Location{}, models.Report{}, err)
	}

	c.mu.Lock()
	latest := a.generation == c.generation
	if latest {
		c.inFlight = &loc
		c.resolving = false
	}
	c.mu.Unlock()
	if !latest {
		// a newer action started while resolving; skip the gateway calls
		return c.complete(a, loc, models.Report{}, nil)
	}

	report, err := c.Load(ctx, loc, a.units)
	return c.complete(a, loc, report, err)
}

// SetUnits switches the unit system. A change clears the displayed report and
// error and re-fetches the last-known location exactly once: the pending
// action's target if one is in flight (locating the caller again when that
// action is still resolving), else the last displayed location.
func (c *Collector) SetUnits(ctx context.Context, units models.UnitSystem) error {
	if !units.Valid() {
		return fmt.Errorf("%w: %q", datasource.ErrInvalidUnits, units)
	}

	c.mu.Lock()
	if units == c.units {
		c.mu.Unlock()
		return nil
	}
	c.units = units
	c.report = nil
	c.lastErr = nil
	here := c.loading && c.resolving
	target := c.inFlight
	if target == nil && !here {
		target = c.last
	}
	c.mu.Unlock()

	c.logger.Info("unit system changed", zap.String("units", string(units)))
	c.publish(Event{Kind: UnitsChanged, Units: units})

	var err error
	switch {
	case here:
		_, err = c.FetchHere(ctx)
	case target != nil:
		_, err = c.Fetch(ctx, *target)
	}
	return err
}

type action struct {
	id         string
	generation uint64
	units      models.UnitSystem
	started    time.Time
}

func (c *Collector) begin(loc *models.Location) action {
	c.mu.Lock()
	c.generation++
	a := action{
		id:         uuid.NewString(),
		generation: c.generation,
		units:      c.units,
		started:    time.Now(),
	}
	c.loading = true
	c.resolving = loc == nil
	c.inFlight = loc
	c.mu.Unlock()

	target := "current position"
	if loc != nil {
		target = loc.String()
	}
	c.logger.Info("fetch started",
		zap.String("action", a.id),
		zap.Uint64("generation", a.generation),
		zap.String("location", target),
		zap.String("units", string(a.units)),
	)
	ev := Event{Kind: Started, Generation: a.generation, Units: a.units}
	if loc != nil {
		ev.Location = *loc
	}
	c.publish(ev)
	return a
}

func (c *Collector) complete(a action, loc models.Location, report models.Report, err error) (models.Report, error) {
	fields := []zap.Field{
		zap.String("action", a.id),
		zap.Uint64("generation", a.generation),
		zap.Duration("took", time.Since(a.started)),
	}

	c.mu.Lock()
	if a.generation != c.generation {
		c.mu.Unlock()
		c.logger.Info("discarding stale result", fields...)
		c.publish(Event{Kind: Superseded, Generation: a.generation, Location: loc, Units: a.units, Err: err})
		return models.Report{}, ErrSuperseded
	}

	c.loading = false
	c.resolving = false
	c.inFlight = nil
	if err != nil {
		c.report = nil
		c.lastErr = err
		c.mu.Unlock()

		c.logger.Warn("fetch failed", append(fields, zap.Error(err))...)
		c.publish(Event{Kind: Failed, Generation: a.generation, Location: loc, Units: a.units, Err: err})
		return models.Report{}, err
	}

	c.report = &report
	c.lastErr = nil
	c.last = &loc
	c.mu.Unlock()

	c.logger.Info("fetch succeeded", append(fields, zap.String("location", report.Current.Location))...)
	c.publish(Event{Kind: Succeeded, Generation: a.generation, Location: loc, Units: a.units})
	return report, nil
}

func (c *Collector) publish(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

// Snapshot returns a copy of the displayed state
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Generation: c.generation,
		Units:      c.units,
		Loading:    c.loading,
	}
	if c.last != nil {
		l := *c.last
		s.LastLocation = &l
	}
	if c.report != nil {
		r := *c.report
		r.Forecast = append([]models.DailySummary(nil), c.report.Forecast...)
		s.Report = &r
	}
	if c.lastErr != nil {
		s.Error = UserMessage(c.lastErr)
		s.ErrorKind = ErrorKind(c.lastErr)
	}
	return s
}
