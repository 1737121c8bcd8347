package configstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the full provider index map document.
type Fetcher interface {
	FetchIndexMap(ctx context.Context) (map[string]string, error)
}

// CachedResolver is a read-through, time-bound cache over the index map.
// The map changes rarely (it is deployment configuration), so a fetched copy
// is served for a freshness window before being transparently refetched.
// Concurrent cache misses share one in-flight fetch.
type CachedResolver struct {
	fetcher Fetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	group singleflight.Group

	mu        sync.RWMutex
	indexes   map[string]string
	fetchedAt time.Time
}

// NewCachedResolver creates a resolver caching fetched maps for ttl.
func NewCachedResolver(fetcher Fetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// ResolveIndexID maps a provider to its backend place-index identifier,
// fetching or refreshing the index map as needed. A provider absent from the
// map (e.g. grab outside its supported region) or an unreachable store both
// yield domain.ErrIndexUnavailable.
func (r *CachedResolver) ResolveIndexID(ctx context.Context, provider domain.Provider) (string, error) {
	if indexes, ok := r.fresh(); ok {
		r.metrics.IndexCache.WithLabelValues("hit").Inc()
		return lookup(indexes, provider)
	}

	r.metrics.IndexCache.WithLabelValues("miss").Inc()
	indexes, err := r.refresh(ctx)
	if err != nil {
		return "", err
	}
	return lookup(indexes, provider)
}

// CheckReadiness reports whether an index map is available, fetching one if
// the cache is empty or stale.
func (r *CachedResolver) CheckReadiness(ctx context.Context) error {
	if _, ok := r.fresh(); ok {
		return nil
	}
	_, err := r.refresh(ctx)
	return err
}

// fresh returns the cached map if it is within the freshness window.
func (r *CachedResolver) fresh() (map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.indexes == nil || r.clock.Since(r.fetchedAt) >= r.ttl {
		return nil, false
	}
	return r.indexes, true
}

// refresh fetches the map, sharing a single in-flight fetch between
// concurrent callers.
func (r *CachedResolver) refresh(ctx context.Context) (map[string]string, error) {
	v, err, _ := r.group.Do("index-map", func() (any, error) {
		indexes, err := r.fetcher.FetchIndexMap(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.indexes = indexes
		r.fetchedAt = r.clock.Now()
		r.mu.Unlock()
		return indexes, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return v.(map[string]string), nil
}

func lookup(indexes map[string]string, provider domain.Provider) (string, error) {
	indexID, ok := indexes[string(provider)]
	if !ok {
		return "", fmt.Errorf("%w: no place index configured for provider %q", domain.ErrIndexUnavailable, provider)
	}
	return indexID, nil
}
