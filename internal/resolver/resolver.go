// Package resolver turns postal addresses into map coordinates by running a cascade of
// progressively less specific geocoding queries.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
)

const (
	// DefaultDelay matches Nominatim's fair-use limit of one request per second.
	DefaultDelay = time.Second
	// DefaultCountryName is appended to structured queries.
	DefaultCountryName = "India"
)

// Sleeper blocks for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Config holds the tunables of a Resolver.
type Config struct {
	ProviderName string        // Provider name for metrics labeling
	CountryName  string        // Country name appended to structured queries
	Delay        time.Duration // Pause between two consecutive attempts of one resolution
	Sleep        Sleeper       // Optional; defaults to a context-aware timer
}

// Resolver runs the resolution cascade against a geocoding provider.
// It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	log      *slog.Logger
	provider geocoding.Provider
	metrics  *metrics.Metrics
	cfg      Config
}

// Route holds the resolutions of both ends of a shipment.
type Route struct {
	Origin      models.Resolution
	Destination models.Resolution
}

// New creates a Resolver. Empty config fields fall back to DefaultCountryName and a
// context-aware sleep; a zero Delay is kept as is.
func New(log *slog.Logger, provider geocoding.Provider, metrics *metrics.Metrics, cfg Config) *Resolver {
	if cfg.CountryName == "" {
		cfg.CountryName = DefaultCountryName
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	return &Resolver{log: log, provider: provider, metrics: metrics, cfg: cfg}
}

// Resolve tries the attempts of Plan in order and returns the first coordinates found.
// Attempts are strictly sequential with the configured delay between two of them.
// Every provider failure only moves the cascade to the next attempt; a done context
// stops it. The result never says why an address could not be located.
func (r *Resolver) Resolve(ctx context.Context, addr models.PostalAddress) models.Resolution {
	attempts := Plan(addr, r.cfg.CountryName)
	if len(attempts) == 0 {
		r.log.DebugContext(ctx, "Address has no fields to geocode")
		return r.unresolved(0)
	}

	for idx, attempt := range attempts {
		if idx > 0 {
			if err := r.cfg.Sleep(ctx, r.cfg.Delay); err != nil {
				r.log.InfoContext(ctx, "Address resolution interrupted", "attempts", idx, "error", err)
				return r.unresolved(idx)
			}
		}

		coords, ok := r.lookup(ctx, attempt)
		if !ok {
			continue
		}

		if idx == 0 {
			r.log.DebugContext(ctx, "Address resolved", "strategy", attempt.Strategy, "query", attempt.Query)
		} else {
			r.log.InfoContext(ctx, "Address resolved using fallback",
				"strategy", attempt.Strategy,
				"query", attempt.Query,
				"fallback_level", idx)
		}
		r.metrics.Resolutions.WithLabelValues("resolved").Inc()

		return models.Resolved(coords, attempt.Strategy, idx+1)
	}

	r.log.WarnContext(ctx, "All resolution strategies exhausted", "attempts", len(attempts))

	return r.unresolved(len(attempts))
}

// ResolveRoute resolves origin and destination concurrently. Each side runs its own
// sequential cascade and observes its own delay.
func (r *Resolver) ResolveRoute(ctx context.Context, origin, destination models.PostalAddress) Route {
	var (
		route Route
		wgr   sync.WaitGroup
	)

	wgr.Add(2)
	go func() {
		defer wgr.Done()
		route.Origin = r.Resolve(ctx, origin)
	}()
	go func() {
		defer wgr.Done()
		route.Destination = r.Resolve(ctx, destination)
	}()
	wgr.Wait()

	return route
}

// lookup issues one provider call and collapses every failure into "not found".
func (r *Resolver) lookup(ctx context.Context, attempt models.Attempt) (models.Coordinates, bool) {
	startTime := time.Now()
	coords, err := r.provider.Geocode(ctx, attempt.Query)
	r.metrics.RequestSeconds.WithLabelValues(r.cfg.ProviderName).Observe(time.Since(startTime).Seconds())

	switch {
	case errors.Is(err, geocoding.ErrNoResult):
		r.log.DebugContext(ctx, "Strategy returned no results, trying fallback",
			"strategy", attempt.Strategy, "query", attempt.Query)
		r.metrics.StrategyAttempts.WithLabelValues(string(attempt.Strategy), "miss").Inc()
		return models.Coordinates{}, false
	case err != nil:
		r.log.WarnContext(ctx, "Geocoding provider failed, trying fallback",
			"strategy", attempt.Strategy, "query", attempt.Query, "error", err)
		r.metrics.StrategyAttempts.WithLabelValues(string(attempt.Strategy), "error").Inc()
		r.metrics.APIErrors.Inc()
		return models.Coordinates{}, false
	case coords == nil || !coords.Valid():
		r.log.WarnContext(ctx, "Geocoding provider returned unusable coordinates",
			"strategy", attempt.Strategy, "query", attempt.Query)
		r.metrics.StrategyAttempts.WithLabelValues(string(attempt.Strategy), "error").Inc()
		return models.Coordinates{}, false
	}

	r.metrics.StrategyAttempts.WithLabelValues(string(attempt.Strategy), "hit").Inc()

	return *coords, true
}

func (r *Resolver) unresolved(attempts int) models.Resolution {
	r.metrics.Resolutions.WithLabelValues("unresolved").Inc()
	return models.Unresolved(attempts)
}

// sleepContext waits for d while respecting context cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
