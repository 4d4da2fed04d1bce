package divtrack

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateStore is the persisted side of exchange rates, typically *MarketData.
type RateStore interface {
	// RateAsOf returns the rate from base to quote on or before a given day.
	RateAsOf(base, quote string, on Date) (float64, bool)
	// AddRate records a rate so later resolutions work offline.
	AddRate(base, quote string, on Date, rate float64) error
}

// RateProvider fetches a live exchange rate from an external quote source.
type RateProvider interface {
	FetchRate(ctx context.Context, base, quote string) (float64, error)
}

// rateCacheTTL bounds how long a resolved rate is served from memory before
// the store and provider are consulted again.
const rateCacheTTL = 5 * time.Minute

type cachedRate struct {
	rate    float64
	expires time.Time
}

// Resolver resolves exchange rates through three layers: an in-process cache
// with a 5-minute TTL, the persisted rate store, and finally a live provider.
// Rates fetched from the provider are written back to the store. Identity
// conversions always return 1.0 and are never cached. When no layer can
// produce a rate the resolution fails with ErrRateUnavailable; there is no
// silent 1.0 fallback.
type Resolver struct {
	store    RateStore
	provider RateProvider

	mu    sync.Mutex
	cache map[string]cachedRate
	now   func() time.Time
}

// NewResolver creates a Resolver over a persisted store and an optional live
// provider. Either collaborator may be nil.
func NewResolver(store RateStore, provider RateProvider) *Resolver {
	return &Resolver{
		store:    store,
		provider: provider,
		cache:    make(map[string]cachedRate),
		now:      time.Now,
	}
}

// Resolve returns the rate converting one unit of base into quote as of the
// given date.
func (r *Resolver) Resolve(ctx context.Context, base, quote string, on Date) (float64, error) {
	if base == quote {
		return 1.0, nil
	}

	key := pair(base, quote) + "@" + on.String()

	r.mu.Lock()
	if c, ok := r.cache[key]; ok && r.now().Before(c.expires) {
		r.mu.Unlock()
		return c.rate, nil
	}
	r.mu.Unlock()

	if r.store != nil {
		if rate, ok := r.store.RateAsOf(base, quote, on); ok {
			r.put(key, rate)
			return rate, nil
		}
	}

	if r.provider != nil {
		rate, err := r.provider.FetchRate(ctx, base, quote)
		if err == nil {
			if r.store != nil {
				// a rate that cannot be persisted is still good for this run
				_ = r.store.AddRate(base, quote, on, rate)
			}
			r.put(key, rate)
			return rate, nil
		}
	}

	return 0, fmt.Errorf("%s/%s on %s: %w", base, quote, on, ErrRateUnavailable)
}

func (r *Resolver) put(key string, rate float64) {
	r.mu.Lock()
	r.cache[key] = cachedRate{rate: rate, expires: r.now().Add(rateCacheTTL)}
	r.mu.Unlock()
}
