package quotes

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/divtrack/divtrack"
)

// the client doubles as the live rate provider of the FX resolver
var _ divtrack.RateProvider = (*Client)(nil)

// Updater folds provider data into the market store. It fetches end-of-day
// prices for every listing and refreshes the recorded exchange-rate pairs.
// Scheduling is left to the caller; each run is one pull.
type Updater struct {
	client *Client
}

// NewUpdater creates an updater over the given client.
func NewUpdater(client *Client) *Updater {
	return &Updater{client: client}
}

// UpdatePrices fetches close prices for all listings in the given range and
// records them in the market data. Listings that fail are skipped and
// reported in the joined error, so one dead ticker does not lose the rest of
// the pull.
func (u *Updater) UpdatePrices(ctx context.Context, m *divtrack.MarketData, from, to divtrack.Date) error {
	var errs error
	for listing := range m.Listings() {
		prices, err := u.client.FetchPrices(ctx, listing, from, to)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("prices for %s: %w", listing.Ticker(), err))
			continue
		}
		for _, p := range prices {
			if err := m.AddPrice(listing.ID(), p.Date, p.Close.InexactFloat64()); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		log.Printf("updated %d prices for %s", len(prices), listing.Ticker())
	}
	return errs
}

// UpdateRates refreshes every currency pair already recorded in the market
// data with the provider's live rate, stamped today.
func (u *Updater) UpdateRates(ctx context.Context, m *divtrack.MarketData) error {
	var errs error
	today := divtrack.Today()
	for _, p := range m.Pairs() {
		base, quote := p[:3], p[3:]
		rate, err := u.client.FetchRate(ctx, base, quote)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("rate for %s: %w", p, err))
			continue
		}
		if err := m.AddRate(base, quote, today, rate); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		log.Printf("updated rate %s=%v", p, rate)
	}
	return errs
}
