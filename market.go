package divtrack

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Listing represents an instrument listed on a trading venue, together with
// its recorded price history. Prices are quoted in the listing currency.
type Listing struct {
	id       ListingID
	ticker   string
	name     string
	currency string
	prices   History[float64]
}

// NewListing creates a listing after validating its identifier and currency.
func NewListing(id ListingID, ticker, name, currency string) (*Listing, error) {
	if _, err := ParseListingID(id.String()); err != nil {
		return nil, err
	}
	if ticker == "" {
		return nil, fmt.Errorf("listing %q: ticker is missing", id)
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, fmt.Errorf("listing %q: %w", id, err)
	}
	return &Listing{id: id, ticker: ticker, name: name, currency: currency}, nil
}

func (l *Listing) ID() ListingID    { return l.id }
func (l *Listing) Ticker() string   { return l.ticker }
func (l *Listing) Name() string     { return l.name }
func (l *Listing) Currency() string { return l.currency }

// Prices returns the price history of the listing.
func (l *Listing) Prices() *History[float64] { return &l.prices }

// PriceAsOf returns the price on a given day, or the most recent price before
// it.
func (l *Listing) PriceAsOf(day Date) (float64, bool) { return l.prices.ValueAsOf(day) }

// MarketData holds the listing registry, price histories and exchange-rate
// histories. It is the persisted side of pricing: reports read prices and
// rates from here, and the quotes updater writes into it.
type MarketData struct {
	listings map[ListingID]*Listing
	tickers  map[string]ListingID
	rates    map[string]*History[float64] // keyed by pair, e.g. "EURUSD"
}

// NewMarketData returns a new empty market data collection.
func NewMarketData() *MarketData {
	return &MarketData{
		listings: make(map[ListingID]*Listing),
		tickers:  make(map[string]ListingID),
		rates:    make(map[string]*History[float64]),
	}
}

// Add registers a listing. Duplicate IDs or tickers are rejected.
func (m *MarketData) Add(l *Listing) error {
	if _, ok := m.listings[l.id]; ok {
		return fmt.Errorf("listing %q is already defined", l.id)
	}
	if _, ok := m.tickers[l.ticker]; ok {
		return fmt.Errorf("ticker %q is already defined", l.ticker)
	}
	m.listings[l.id] = l
	m.tickers[l.ticker] = l.id
	return nil
}

// Listing returns the listing for an ID, or nil.
func (m *MarketData) Listing(id ListingID) *Listing { return m.listings[id] }

// ByTicker returns the listing with the given ticker, or nil.
func (m *MarketData) ByTicker(ticker string) *Listing {
	id, ok := m.tickers[ticker]
	if !ok {
		return nil
	}
	return m.listings[id]
}

// Listings returns an iterator over all listings in ticker order.
func (m *MarketData) Listings() iter.Seq[*Listing] {
	tickers := make([]string, 0, len(m.tickers))
	for t := range m.tickers {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	return func(yield func(*Listing) bool) {
		for _, t := range tickers {
			if !yield(m.listings[m.tickers[t]]) {
				return
			}
		}
	}
}

// AddPrice records a price for a listing on a given day. Unknown listings are
// rejected.
func (m *MarketData) AddPrice(id ListingID, on Date, price float64) error {
	l, ok := m.listings[id]
	if !ok {
		return fmt.Errorf("listing %q not declared in market data", id)
	}
	l.prices.Append(on, price)
	return nil
}

// PriceAsOf returns the price of a listing on a given day, or the most recent
// price before it.
func (m *MarketData) PriceAsOf(id ListingID, on Date) (float64, bool) {
	l, ok := m.listings[id]
	if !ok {
		return 0, false
	}
	return l.PriceAsOf(on)
}

// pair builds the canonical rate key for a base/quote currency pair.
func pair(base, quote string) string {
	return strings.ToUpper(base) + strings.ToUpper(quote)
}

// AddRate records the exchange rate of one unit of base expressed in quote on
// a given day.
func (m *MarketData) AddRate(base, quote string, on Date, rate float64) error {
	if err := ValidateCurrency(base); err != nil {
		return err
	}
	if err := ValidateCurrency(quote); err != nil {
		return err
	}
	key := pair(base, quote)
	h, ok := m.rates[key]
	if !ok {
		h = &History[float64]{}
		m.rates[key] = h
	}
	h.Append(on, rate)
	return nil
}

// RateAsOf returns the exchange rate from base to quote on a given day, using
// the most recent recorded rate on or before it. Directions are independent:
// a recorded (base, quote) rate is never derived from (quote, base).
func (m *MarketData) RateAsOf(base, quote string, on Date) (float64, bool) {
	if h, ok := m.rates[pair(base, quote)]; ok {
		if rate, ok := h.ValueAsOf(on); ok {
			return rate, true
		}
	}
	return 0, false
}

// Pairs returns the recorded currency pairs in lexical order.
func (m *MarketData) Pairs() []string {
	pairs := make([]string, 0, len(m.rates))
	for p := range m.rates {
		pairs = append(pairs, p)
	}
	slices.Sort(pairs)
	return pairs
}
