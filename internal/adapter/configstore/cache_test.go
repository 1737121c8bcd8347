package configstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher counts fetches and can be made slow or failing.
type countingFetcher struct {
	fetches atomic.Int64
	delay   time.Duration
	err     error
	indexes map[string]string
}

func (f *countingFetcher) FetchIndexMap(_ context.Context) (map[string]string, error) {
	f.fetches.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.indexes, nil
}

func testIndexes() map[string]string {
	return map[string]string{
		"here": "explore.place.Here",
		"esri": "explore.place.Esri",
	}
}

func newTestResolver(f Fetcher, clock clockwork.Clock) *CachedResolver {
	return NewCachedResolver(f, 900*time.Second, clock, observability.NewMetricsForTesting())
}

func TestCachedResolver_FetchesOnceWithinWindow(t *testing.T) {
	fetcher := &countingFetcher{indexes: testIndexes()}
	clock := clockwork.NewFakeClock()
	r := newTestResolver(fetcher, clock)

	indexID, err := r.ResolveIndexID(context.Background(), domain.ProviderHere)
	require.NoError(t, err)
	assert.Equal(t, "explore.place.Here", indexID)

	clock.Advance(899 * time.Second)

	indexID, err = r.ResolveIndexID(context.Background(), domain.ProviderEsri)
	require.NoError(t, err)
	assert.Equal(t, "explore.place.Esri", indexID)

	assert.Equal(t, int64(1), fetcher.fetches.Load(), "second resolve should hit the cache")
}

func TestCachedResolver_RefetchesAfterExpiry(t *testing.T) {
	fetcher := &countingFetcher{indexes: testIndexes()}
	clock := clockwork.NewFakeClock()
	r := newTestResolver(fetcher, clock)

	_, err := r.ResolveIndexID(context.Background(), domain.ProviderHere)
	require.NoError(t, err)

	clock.Advance(901 * time.Second)

	_, err = r.ResolveIndexID(context.Background(), domain.ProviderHere)
	require.NoError(t, err)

	assert.Equal(t, int64(2), fetcher.fetches.Load(), "stale cache should refetch")
}

func TestCachedResolver_UnknownProvider(t *testing.T) {
	fetcher := &countingFetcher{indexes: testIndexes()}
	r := newTestResolver(fetcher, clockwork.NewFakeClock())

	_, err := r.ResolveIndexID(context.Background(), domain.ProviderGrab)
	require.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Contains(t, err.Error(), "grab")
}

func TestCachedResolver_FetchFailure(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("config store unreachable")}
	r := newTestResolver(fetcher, clockwork.NewFakeClock())

	_, err := r.ResolveIndexID(context.Background(), domain.ProviderHere)
	require.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestCachedResolver_FailedFetchIsNotCached(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("boom")}
	r := newTestResolver(fetcher, clockwork.NewFakeClock())

	_, err := r.ResolveIndexID(context.Background(), domain.ProviderHere)
	require.Error(t, err)

	fetcher.err = nil
	fetcher.indexes = testIndexes()

	indexID, err := r.ResolveIndexID(context.Background(), domain.ProviderHere)
	require.NoError(t, err)
	assert.Equal(t, "explore.place.Here", indexID)
}

func TestCachedResolver_ConcurrentMissesShareOneFetch(t *testing.T) {
	fetcher := &countingFetcher{indexes: testIndexes(), delay: 50 * time.Millisecond}
	r := newTestResolver(fetcher, clockwork.NewRealClock())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			indexID, err := r.ResolveIndexID(context.Background(), domain.ProviderHere)
			assert.NoError(t, err)
			assert.Equal(t, "explore.place.Here", indexID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fetcher.fetches.Load(), "cold-start stampede should share one fetch")
}

func TestCachedResolver_CheckReadiness(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("unreachable")}
	r := newTestResolver(fetcher, clockwork.NewFakeClock())

	require.Error(t, r.CheckReadiness(context.Background()))

	fetcher.err = nil
	fetcher.indexes = testIndexes()

	require.NoError(t, r.CheckReadiness(context.Background()))
	require.NoError(t, r.CheckReadiness(context.Background()))
	assert.Equal(t, int64(2), fetcher.fetches.Load(), "ready cache needs no refetch")
}
