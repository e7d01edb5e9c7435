// Package cache holds computed analysis results keyed by the requested page
// URL for a fixed time-to-live, so repeated requests inside the window skip
// the browser round-trip. Concurrent misses for the same URL are collapsed
// into a single computation.
//
// The cache is process-lifetime scoped: no persistence, no capacity bound,
// no active eviction. Stale entries act absent on read and stay in the map
// until the next Put overwrites them. Population is bounded by the number of
// distinct URLs analyzed during the process lifetime, not by request volume.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lannv1101/css-checker/coverage"
)

// DefaultTTL is how long a computed result stays fresh.
const DefaultTTL = time.Hour

type entry struct {
	result     coverage.Result
	computedAt time.Time
}

// Results is a concurrency-safe TTL cache of analysis results.
type Results struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

// Option customises a Results cache.
type Option func(*Results)

// WithTTL overrides the default 1 hour TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Results) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock injects the time source. Tests use this to step past the TTL
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(r *Results) { r.now = now }
}

// New creates an empty cache with DefaultTTL.
func New(opts ...Option) *Results {
	r := &Results{
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the cached result for key while it is still fresh. An expired
// entry behaves as absent.
func (r *Results) Get(key string) (coverage.Result, bool) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok || r.now().Sub(e.computedAt) >= r.ttl {
		return coverage.Result{}, false
	}
	return e.result, true
}

// Put stores a result for key, unconditionally replacing any prior entry.
func (r *Results) Put(key string, res coverage.Result) {
	r.mu.Lock()
	r.entries[key] = entry{result: res, computedAt: r.now()}
	r.mu.Unlock()
}

// Do returns the fresh cached result for key, or runs compute and stores its
// result. Simultaneous calls for the same key while compute is in flight
// share the one computation instead of each hitting the browser. The second
// return value reports whether the result came from the cache.
func (r *Results) Do(ctx context.Context, key string, compute func(context.Context) (coverage.Result, error)) (coverage.Result, bool, error) {
	if res, ok := r.Get(key); ok {
		return res, true, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// Re-check: another flight may have filled the entry between the
		// miss above and acquiring the flight.
		if res, ok := r.Get(key); ok {
			return res, nil
		}
		res, err := compute(ctx)
		if err != nil {
			return coverage.Result{}, err
		}
		r.Put(key, res)
		return res, nil
	})
	if err != nil {
		return coverage.Result{}, false, err
	}
	return v.(coverage.Result), false, nil
}
