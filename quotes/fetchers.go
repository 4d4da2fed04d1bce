package quotes

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/divtrack/divtrack"
	"github.com/shopspring/decimal"
)

// This file contains the functions accessing the provider endpoints.

// Price is one end-of-day price point.
type Price struct {
	Date  divtrack.Date   `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// DividendEvent is one entry of the dividend calendar. Date is the
// ex-dividend date, Value the amount per share.
type DividendEvent struct {
	Date     divtrack.Date   `json:"date"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// ExchangeCodes returns the map of MIC to the provider's internal exchange
// code. The provider keys its tickers on its own exchange codes, so every
// listing lookup goes through this map first.
func (c *Client) ExchangeCodes(ctx context.Context) (map[string]string, error) {
	addr := "https://eodhd.com/api/exchanges-list/?fmt=json&api_token=" + c.apiKey

	type info struct {
		Code         string
		OperatingMIC string // can be a comma separated list of MICs
	}
	content := make([]info, 0)
	// the exchange list barely changes, cache it for a month
	if err := jwget(ctx, newMonthlyCachingClient(), addr, &content); err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for _, i := range content {
		for _, mic := range strings.Split(i.OperatingMIC, ",") {
			result[strings.TrimSpace(mic)] = i.Code
		}
	}
	return result, nil
}

// symbol builds the provider ticker "SYMBOL.EXCHANGECODE" for a listing.
func (c *Client) symbol(ctx context.Context, listing *divtrack.Listing) (string, error) {
	codes, err := c.ExchangeCodes(ctx)
	if err != nil {
		return "", err
	}
	code, ok := codes[listing.ID().Exchange()]
	if !ok {
		return "", fmt.Errorf("no provider exchange code for MIC %q", listing.ID().Exchange())
	}
	return listing.Ticker() + "." + code, nil
}

// FetchPrices returns the end-of-day close prices of a listing between two
// dates, bounds included.
func (c *Client) FetchPrices(ctx context.Context, listing *divtrack.Listing, from, to divtrack.Date) ([]Price, error) {
	symbol, err := c.symbol(ctx, listing)
	if err != nil {
		return nil, err
	}
	addr := fmt.Sprintf("https://eodhd.com/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s", symbol, c.apiKey, from, to)

	content := make([]Price, 0)
	if err := jwget(ctx, newDailyCachingClient(), addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// FetchDividends returns the dividend calendar of a listing between two
// dates, bounds included.
func (c *Client) FetchDividends(ctx context.Context, listing *divtrack.Listing, from, to divtrack.Date) ([]DividendEvent, error) {
	symbol, err := c.symbol(ctx, listing)
	if err != nil {
		return nil, err
	}
	addr := fmt.Sprintf("https://eodhd.com/api/div/%s?fmt=json&api_token=%s&from=%s&to=%s", symbol, c.apiKey, from, to)

	content := make([]DividendEvent, 0)
	if err := jwget(ctx, newDailyCachingClient(), addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// fxInstruments maps the currency pairs with a live chart instrument on the
// intraday endpoint.
var fxInstruments = map[string]string{
	"EURUSD": "349938",
	"EURGBP": "349871",
	"EURCHF": "349861",
	"EURJPY": "349894",
}

// FetchRate returns the live exchange rate converting one unit of base into
// quote. It implements the divtrack.RateProvider interface. Pairs without a
// chart instrument resolve through their inverse when possible; this is a
// limitation of the live endpoint only, recorded rates in the market store
// stay strictly directional.
func (c *Client) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	pair := strings.ToUpper(base) + strings.ToUpper(quote)
	if id, ok := fxInstruments[pair]; ok {
		return c.fetchIntraday(ctx, pair, id)
	}
	inverse := strings.ToUpper(quote) + strings.ToUpper(base)
	if id, ok := fxInstruments[inverse]; ok {
		rate, err := c.fetchIntraday(ctx, inverse, id)
		if err != nil {
			return math.NaN(), err
		}
		if rate == 0 {
			return math.NaN(), fmt.Errorf("zero rate for %s", inverse)
		}
		return 1 / rate, nil
	}
	return math.NaN(), fmt.Errorf("no live instrument for pair %s", pair)
}

// fetchIntraday reads the last point of the intraday mini chart of an
// instrument.
func (c *Client) fetchIntraday(ctx context.Context, pair, instrument string) (float64, error) {
	addr := "https://www.ls-tc.de/_rpc/json/instrument/chart/dataForInstrument?instrumentId=" + instrument + "&series=intraday&type=mini"
	var jobj any
	// intraday values are never cached
	if err := jwget(ctx, newLiveClient(), addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error in wget %q: %w", pair, err)
	}
	path := "$.series.intraday.data[-1:][1]"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error parsing %q: %q %w", pair, path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer, keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("error parsing %q: %q not a float %v", pair, path, jval)
	}
	return val, nil
}
