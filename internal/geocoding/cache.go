package geocoding

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// Cache stores coordinates of previously successful lookups, keyed by provider and query.
// Lookup returns nil coordinates and a nil error on a miss.
type Cache interface {
	Lookup(ctx context.Context, provider, query string) (*models.Coordinates, error)
	Store(ctx context.Context, provider, query string, coords models.Coordinates) error
}

// CachedProvider wraps a Provider and answers repeated queries from a Cache.
// Failed lookups are never cached, so an outage does not stick.
type CachedProvider struct {
	next  Provider
	cache Cache
	name  string
	log   *slog.Logger
}

// NewCachedProvider returns a Provider that consults cache before calling next.
// name keeps results of different providers apart.
func NewCachedProvider(next Provider, cache Cache, name string, log *slog.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, name: name, log: log}
}

// Geocode returns cached coordinates for query if present, otherwise delegates and stores the result.
func (cp *CachedProvider) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	cached, err := cp.cache.Lookup(ctx, cp.name, query)
	switch {
	case err != nil:
		cp.log.WarnContext(ctx, "Geocode cache lookup failed", "query", query, "error", err)
	case cached != nil && cached.Valid():
		cp.log.DebugContext(ctx, "Geocode cache hit", "query", query)
		return cached, nil
	}

	coords, err := cp.next.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if err = cp.cache.Store(ctx, cp.name, query, *coords); err != nil {
		cp.log.WarnContext(ctx, "Failed to store geocode result in cache", "query", query, "error", err)
	}

	return coords, nil
}
