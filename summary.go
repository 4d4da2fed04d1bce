package divtrack

import "context"

// Summary provides an at-a-glance overview of a portfolio's state on a given
// date, in the display currency.
type Summary struct {
	Date      Date
	Portfolio string
	Name      string
	Currency  string

	PositionCount  int
	TotalValue     float64
	TotalCost      float64
	TotalGain      float64
	GainPercent    Percent
	TotalDividends float64 // all-time gross dividends received
}

// MarshalJSON encodes the summary with canonical field order and two-decimal
// monetary figures.
func (s *Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", s.Date)
	w.Append("portfolio", s.Portfolio)
	w.Optional("name", s.Name)
	w.Append("currency", s.Currency)
	w.Append("positionCount", s.PositionCount)
	w.Append("totalValue", round2(s.TotalValue))
	w.Append("totalCost", round2(s.TotalCost))
	w.Append("totalGain", round2(s.TotalGain))
	w.Append("totalGainPercent", round2(float64(s.GainPercent)))
	w.Append("totalDividends", round2(s.TotalDividends))
	return w.MarshalJSON()
}

// NewSummary calculates the portfolio summary on a given date: the valuation
// totals over open positions plus the all-time gross dividends, all in the
// display currency.
func NewSummary(ctx context.Context, b *Book, m *MarketData, fx *Resolver, owner, portfolioID string, on Date, currency string) (*Summary, error) {
	p, err := b.Portfolio(owner, portfolioID)
	if err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = Today()
	}

	positions, err := NewPositionsReport(ctx, b, m, fx, owner, portfolioID, PositionsOptions{AsOf: on, Currency: currency})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Date:          on,
		Portfolio:     p.ID,
		Name:          p.Name,
		Currency:      positions.Currency,
		PositionCount: positions.Total,
		TotalValue:    positions.TotalValue,
		TotalCost:     positions.TotalCost,
		TotalGain:     positions.TotalGain,
		GainPercent:   Percent(guardDiv(positions.TotalGain, positions.TotalCost) * 100),
	}

	list, err := payments(ctx, b, fx, []string{p.ID}, positions.Currency, Until(on))
	if err != nil {
		return nil, err
	}
	for _, pay := range list {
		summary.TotalDividends += pay.gross
	}
	return summary, nil
}
