package divtrack

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeProvider counts how many times a live rate is fetched.
type fakeProvider struct {
	rate  float64
	err   error
	calls int
}

func (p *fakeProvider) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	p.calls++
	return p.rate, p.err
}

func TestResolver_Identity(t *testing.T) {
	// Identity conversion needs no collaborators at all.
	r := NewResolver(nil, nil)
	got, err := r.Resolve(context.Background(), "EUR", "EUR", day("2025-03-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.0 {
		t.Errorf("identity rate = %v, want 1.0", got)
	}
}

func TestResolver_IdentityNeverHitsProvider(t *testing.T) {
	p := &fakeProvider{rate: 1.08}
	r := NewResolver(nil, p)
	if _, err := r.Resolve(context.Background(), "USD", "USD", day("2025-03-07")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times for an identity conversion, want 0", p.calls)
	}
}

func TestResolver_PrefersStoreOverProvider(t *testing.T) {
	m := newTestMarket()
	if err := m.AddRate("EUR", "USD", day("2025-03-01"), 1.05); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &fakeProvider{rate: 1.08}
	r := NewResolver(m, p)

	got, err := r.Resolve(context.Background(), "EUR", "USD", day("2025-03-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.05 {
		t.Errorf("rate = %v, want the stored 1.05", got)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times despite a stored rate, want 0", p.calls)
	}
}

func TestResolver_FallsBackToProvider(t *testing.T) {
	p := &fakeProvider{rate: 1.08}
	r := NewResolver(newTestMarket(), p)

	got, err := r.Resolve(context.Background(), "EUR", "USD", day("2025-03-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.08 {
		t.Errorf("rate = %v, want the live 1.08", got)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
}

func TestResolver_CacheExpires(t *testing.T) {
	p := &fakeProvider{rate: 1.08}
	r := NewResolver(nil, p)

	clock := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	ctx := context.Background()
	on := day("2025-03-07")
	for range 3 {
		if _, err := r.Resolve(ctx, "EUR", "USD", on); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times within the TTL, want 1", p.calls)
	}

	// A different date is a different cache entry.
	if _, err := r.Resolve(ctx, "EUR", "USD", on.Add(-1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("provider called %d times after a second date, want 2", p.calls)
	}

	clock = clock.Add(6 * time.Minute)
	if _, err := r.Resolve(ctx, "EUR", "USD", on); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times after the TTL expired, want 3", p.calls)
	}
}

func TestResolver_Unavailable(t *testing.T) {
	t.Run("no collaborators", func(t *testing.T) {
		r := NewResolver(nil, nil)
		_, err := r.Resolve(context.Background(), "EUR", "USD", day("2025-03-07"))
		if !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("error = %v, want ErrRateUnavailable", err)
		}
	})
	t.Run("provider fails", func(t *testing.T) {
		p := &fakeProvider{err: errors.New("quota exceeded")}
		r := NewResolver(newTestMarket(), p)
		_, err := r.Resolve(context.Background(), "EUR", "USD", day("2025-03-07"))
		if !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("error = %v, want ErrRateUnavailable", err)
		}
	})
}

func TestResolver_PersistsFetchedRates(t *testing.T) {
	m := newTestMarket()
	p := &fakeProvider{rate: 1.08}
	r := NewResolver(m, p)

	on := day("2025-03-07")
	if _, err := r.Resolve(context.Background(), "EUR", "USD", on); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The fetched rate landed in the store, dated with the resolution day.
	if rate, ok := m.RateAsOf("EUR", "USD", on); !ok || rate != 1.08 {
		t.Errorf("stored rate = %v, %v, want 1.08, true", rate, ok)
	}

	// A fresh resolver with no provider now resolves offline.
	offline := NewResolver(m, nil)
	got, err := offline.Resolve(context.Background(), "EUR", "USD", on)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.08 {
		t.Errorf("offline rate = %v, want the persisted 1.08", got)
	}
}

func TestMarketData_RateAsOf_Directional(t *testing.T) {
	m := newTestMarket()
	if err := m.AddRate("EUR", "USD", day("2025-03-01"), 1.25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The opposite direction is never derived from a recorded rate.
	if _, ok := m.RateAsOf("USD", "EUR", day("2025-03-07")); ok {
		t.Error("USD/EUR must not resolve from the recorded EUR/USD rate")
	}

	if err := m.AddRate("USD", "EUR", day("2025-03-01"), 0.81); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := m.RateAsOf("USD", "EUR", day("2025-03-07")); !ok || got != 0.81 {
		t.Errorf("USD/EUR = %v, %v, want its own recorded 0.81, true", got, ok)
	}
	if got, ok := m.RateAsOf("EUR", "USD", day("2025-03-07")); !ok || got != 1.25 {
		t.Errorf("EUR/USD = %v, %v, want 1.25, true", got, ok)
	}

	if _, ok := m.RateAsOf("EUR", "USD", day("2025-02-01")); ok {
		t.Error("no rate must be found before the first recorded day")
	}
}
