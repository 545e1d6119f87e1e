package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/ampere/internal/metrics"
	"github.com/UnknownOlympus/ampere/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// PlaceCache is a persistent place -> coordinates store.
// GetCachedPlace returns nil coordinates and nil error on a miss.
type PlaceCache interface {
	GetCachedPlace(ctx context.Context, place string) (*models.Coordinates, error)
	SavePlace(ctx context.Context, place string, coords models.Coordinates) error
}

type cacheEntry struct {
	coords    models.Coordinates
	expiresAt time.Time
}

// CachedProvider puts an in-memory LRU and an optional persistent store in front of a Provider.
// Only successful lookups are cached.
type CachedProvider struct {
	next    Provider
	lru     *lru.Cache[string, cacheEntry]
	store   PlaceCache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewCachedProvider wraps next. store may be nil to keep the cache in memory only.
func NewCachedProvider(
	next Provider,
	size int,
	ttl time.Duration,
	store PlaceCache,
	metrics *metrics.Metrics,
	log *slog.Logger,
) (*CachedProvider, error) {
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &CachedProvider{
		next:    next,
		lru:     cache,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		log:     log,
	}, nil
}

// Geocode answers from the LRU, then from the store, and finally from the wrapped provider.
func (cp *CachedProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	key := cacheKey(place)

	if entry, ok := cp.lru.Get(key); ok {
		if entry.expiresAt.IsZero() || time.Now().Before(entry.expiresAt) {
			cp.metrics.GeocodeCache.WithLabelValues("memory", "hit").Inc()
			coords := entry.coords
			return &coords, nil
		}
		cp.lru.Remove(key)
	}
	cp.metrics.GeocodeCache.WithLabelValues("memory", "miss").Inc()

	if cp.store != nil {
		coords, err := cp.store.GetCachedPlace(ctx, key)
		switch {
		case err != nil:
			cp.log.WarnContext(ctx, "Failed to read place cache", "place", key, "error", err)
		case coords != nil:
			cp.metrics.GeocodeCache.WithLabelValues("store", "hit").Inc()
			cp.remember(key, *coords)
			return coords, nil
		default:
			cp.metrics.GeocodeCache.WithLabelValues("store", "miss").Inc()
		}
	}

	coords, err := cp.next.Geocode(ctx, place)
	if err != nil {
		return nil, err
	}

	cp.remember(key, *coords)
	if cp.store != nil {
		if errSave := cp.store.SavePlace(ctx, key, *coords); errSave != nil {
			cp.log.WarnContext(ctx, "Failed to persist geocoded place", "place", key, "error", errSave)
		}
	}

	return coords, nil
}

// remember stores coords in memory. A non-positive ttl keeps the entry until it is evicted.
func (cp *CachedProvider) remember(key string, coords models.Coordinates) {
	entry := cacheEntry{coords: coords}
	if cp.ttl > 0 {
		entry.expiresAt = time.Now().Add(cp.ttl)
	}
	cp.lru.Add(key, entry)
}

// cacheKey normalizes case and whitespace so "  Langata " and "langata" share an entry.
func cacheKey(place string) string {
	return strings.ToLower(strings.Join(strings.Fields(place), " "))
}
