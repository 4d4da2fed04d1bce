package divtrack

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
)

// round2 rounds a report figure to two decimals. Rounding happens exactly
// once, at the report boundary; internal math keeps full precision.
func round2(f float64) float64 { return math.Round(f*100) / 100 }

// Sort fields accepted by the positions report. An unknown field falls back
// to SortByPortfolioPercent.
const (
	SortByTicker           = "ticker"
	SortByName             = "name"
	SortByQuantity         = "quantity"
	SortByCostBasis        = "costBasis"
	SortByCurrentPrice     = "currentPrice"
	SortByMarketValue      = "marketValue"
	SortByGain             = "gain"
	SortByGainPercent      = "gainPercent"
	SortByDividends        = "totalDividends"
	SortByLastTransaction  = "lastTransactionDate"
	SortByPortfolioPercent = "portfolioPercentage"
)

// PositionsOptions controls the valuation report.
type PositionsOptions struct {
	AsOf       Date   // valuation date, defaults to today
	Currency   string // display currency, defaults to the portfolio currency
	SortBy     string // one of the SortBy constants
	Descending bool
	Page       int // 1-based page number
	Limit      int // page size, 0 disables pagination
}

// ValuedPosition is an open position valued in the display currency.
//
// When the listing has no recorded price the position is valued at cost and
// the gain is zero, flagged by PriceMissing.
type ValuedPosition struct {
	Ticker  string
	Name    string
	Listing ListingID

	Quantity         float64
	CostBasis        float64 // in display currency
	Price            float64 // in display currency, 0 when missing
	MarketValue      float64 // in display currency
	Gain             float64
	GainPercent      Percent
	Dividends        float64 // gross dividends received, in display currency
	PortfolioPercent Percent
	LastTransaction  Date
	PriceMissing     bool
}

// MarshalJSON encodes the position with canonical field order and two-decimal
// monetary figures.
func (p ValuedPosition) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", p.Ticker)
	w.Optional("name", p.Name)
	w.Append("instrumentId", p.Listing.Instrument())
	w.Append("exchange", p.Listing.Exchange())
	w.Append("quantity", p.Quantity)
	w.Append("costBasis", round2(p.CostBasis))
	w.Append("currentPrice", round2(p.Price))
	w.Append("marketValue", round2(p.MarketValue))
	w.Append("gain", round2(p.Gain))
	w.Append("gainPercent", round2(float64(p.GainPercent)))
	w.Append("totalDividends", round2(p.Dividends))
	w.Append("portfolioPercentage", round2(float64(p.PortfolioPercent)))
	w.Optional("lastTransactionDate", p.LastTransaction)
	w.Optional("priceUnavailable", p.PriceMissing)
	return w.MarshalJSON()
}

// PositionsReport is the paginated valuation of a portfolio on a date.
type PositionsReport struct {
	Date      Date
	Portfolio string
	Currency  string

	Page  int // 1-based, 0 when pagination is disabled
	Limit int
	Total int // total open positions before pagination

	TotalValue float64
	TotalCost  float64
	TotalGain  float64

	Positions []ValuedPosition
}

// MarshalJSON encodes the report with canonical field order.
func (r *PositionsReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Append("portfolio", r.Portfolio)
	w.Append("currency", r.Currency)
	w.Optional("page", r.Page)
	w.Optional("limit", r.Limit)
	w.Append("total", r.Total)
	w.Append("totalValue", round2(r.TotalValue))
	w.Append("totalCost", round2(r.TotalCost))
	w.Append("totalGain", round2(r.TotalGain))
	w.Append("positions", r.Positions)
	return w.MarshalJSON()
}

// NewPositionsReport values the open positions of a portfolio in the display
// currency as of a date.
//
// Every position is converted through the resolver; a missing exchange rate
// fails the whole report with ErrRateUnavailable. A missing price does not:
// the position is valued at cost with zero gain. Portfolio percentages are
// computed over the converted market values of all open positions, so they
// sum to ~100 whenever the total value is positive.
func NewPositionsReport(ctx context.Context, b *Book, m *MarketData, fx *Resolver, owner, portfolioID string, opt PositionsOptions) (*PositionsReport, error) {
	p, err := b.Portfolio(owner, portfolioID)
	if err != nil {
		return nil, err
	}
	asOf := opt.AsOf
	if asOf.IsZero() {
		asOf = Today()
	}
	currency := opt.Currency
	if currency == "" {
		currency = p.Currency
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}

	report := &PositionsReport{
		Date:      asOf,
		Portfolio: p.ID,
		Currency:  currency,
	}

	// gross dividends per listing, converted at each payment date
	divs, err := payments(ctx, b, fx, []string{p.ID}, currency, Until(asOf))
	if err != nil {
		return nil, err
	}
	received := make(map[ListingID]float64)
	for _, pay := range divs {
		received[pay.listing] += pay.gross
	}

	for _, pos := range Positions(b.Ledger(), m, p.ID, asOf) {
		rate, err := fx.Resolve(ctx, pos.Currency, currency, asOf)
		if err != nil {
			return nil, fmt.Errorf("valuing %s: %w", pos.Ticker, err)
		}

		vp := ValuedPosition{
			Ticker:          pos.Ticker,
			Name:            pos.Name,
			Listing:         pos.Listing,
			Quantity:        pos.Quantity,
			CostBasis:       pos.CostBasis * rate,
			Dividends:       received[pos.Listing],
			LastTransaction: pos.LastTransaction,
		}
		if price, ok := m.PriceAsOf(pos.Listing, asOf); ok {
			vp.Price = price * rate
			vp.MarketValue = pos.Quantity * price * rate
			vp.Gain = vp.MarketValue - vp.CostBasis
			vp.GainPercent = Percent(guardDiv(vp.Gain, vp.CostBasis) * 100)
		} else {
			// no price on record: value at cost, zero gain
			vp.MarketValue = vp.CostBasis
			vp.PriceMissing = true
		}

		report.TotalValue += vp.MarketValue
		report.TotalCost += vp.CostBasis
		report.Positions = append(report.Positions, vp)
	}
	report.TotalGain = report.TotalValue - report.TotalCost

	for i := range report.Positions {
		report.Positions[i].PortfolioPercent = Percent(guardDiv(report.Positions[i].MarketValue, report.TotalValue) * 100)
	}

	sortPositions(report.Positions, opt.SortBy, opt.Descending)

	report.Total = len(report.Positions)
	if opt.Limit > 0 {
		page := opt.Page
		if page < 1 {
			page = 1
		}
		report.Page, report.Limit = page, opt.Limit
		start := (page - 1) * opt.Limit
		if start >= len(report.Positions) {
			report.Positions = nil
		} else {
			end := min(start+opt.Limit, len(report.Positions))
			report.Positions = report.Positions[start:end]
		}
	}
	return report, nil
}

// sortPositions stably sorts positions by the given field. The descending
// order is the exact negation of the ascending comparator, so ties keep the
// same relative order either way.
func sortPositions(positions []ValuedPosition, field string, descending bool) {
	compare := comparator(field)
	if descending {
		asc := compare
		compare = func(a, b ValuedPosition) int { return -asc(a, b) }
	}
	slices.SortStableFunc(positions, compare)
}

func comparator(field string) func(a, b ValuedPosition) int {
	switch field {
	case SortByTicker:
		return func(a, b ValuedPosition) int { return strings.Compare(a.Ticker, b.Ticker) }
	case SortByName:
		return func(a, b ValuedPosition) int { return strings.Compare(a.Name, b.Name) }
	case SortByDividends:
		return func(a, b ValuedPosition) int { return cmpFloat(a.Dividends, b.Dividends) }
	case SortByLastTransaction:
		return func(a, b ValuedPosition) int { return cmpDate(a.LastTransaction, b.LastTransaction) }
	case SortByQuantity:
		return func(a, b ValuedPosition) int { return cmpFloat(a.Quantity, b.Quantity) }
	case SortByCostBasis:
		return func(a, b ValuedPosition) int { return cmpFloat(a.CostBasis, b.CostBasis) }
	case SortByCurrentPrice:
		return func(a, b ValuedPosition) int { return cmpFloat(a.Price, b.Price) }
	case SortByMarketValue:
		return func(a, b ValuedPosition) int { return cmpFloat(a.MarketValue, b.MarketValue) }
	case SortByGain:
		return func(a, b ValuedPosition) int { return cmpFloat(a.Gain, b.Gain) }
	case SortByGainPercent:
		return func(a, b ValuedPosition) int {
			return cmpFloat(float64(a.GainPercent), float64(b.GainPercent))
		}
	default:
		return func(a, b ValuedPosition) int {
			return cmpFloat(float64(a.PortfolioPercent), float64(b.PortfolioPercent))
		}
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpDate(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
