package divtrack

import (
	"math"
	"slices"
)

// guardDiv divides n by d, returning 0 when the denominator is effectively
// zero or the result is not a finite number. Reports must never show NaN or
// Inf.
func guardDiv(n, d float64) float64 {
	if math.Abs(d) < Epsilon {
		return 0
	}
	q := n / d
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

// Position is an open holding of a listing in a portfolio. Quantity and
// CostBasis are expressed in shares and in the listing currency.
// LastTransaction is the date of the most recent transaction of any type
// touching the listing, dividends and taxes included.
type Position struct {
	Listing  ListingID
	Ticker   string
	Name     string
	Currency string

	Quantity        float64
	CostBasis       float64 // average cost of the currently held shares
	LastTransaction Date
}

// positionAcc accumulates the ledger events of one listing.
type positionAcc struct {
	qty       float64
	buyQty    float64 // split-adjusted total bought quantity
	buyAmount float64 // total spent on buys, in listing currency
	last      Date
}

// Positions folds the ledger into the open positions of a portfolio as of a
// date, in ticker order.
//
// The cost basis is the average cost scaled to the current quantity:
//
//	costBasis = (totalBuyAmount / totalBuyQuantity) * currentQuantity
//
// Sells therefore reduce the basis proportionally, never the average. Splits
// scale the held and bought quantities by num/den, leaving the amount spent
// unchanged. Dividends and taxes never touch quantity or basis. A position
// whose quantity is Epsilon or below is closed and omitted.
func Positions(l *Ledger, m *MarketData, portfolio string, asOf Date, filters ...TxFilter) []Position {
	accs := make(map[ListingID]*positionAcc)
	acc := func(id ListingID) *positionAcc {
		a, ok := accs[id]
		if !ok {
			a = &positionAcc{}
			accs[id] = a
		}
		return a
	}

	filters = append([]TxFilter{ByPortfolio(portfolio), Until(asOf)}, filters...)
	for tx := range l.Transactions(filters...) {
		// the ledger is chronological, the last seen date is the most recent
		acc(tx.Listing()).last = tx.When()
		switch v := tx.(type) {
		case Buy:
			a := acc(v.Security)
			a.qty += v.Quantity
			a.buyQty += v.Quantity
			a.buyAmount += v.Amount.Float64()
		case Sell:
			acc(v.Security).qty -= v.Quantity
		case Split:
			a := acc(v.Security)
			a.qty *= v.Factor()
			a.buyQty *= v.Factor()
		}
	}

	positions := make([]Position, 0, len(accs))
	for id, a := range accs {
		if a.qty <= Epsilon {
			continue
		}
		p := Position{
			Listing:         id,
			Quantity:        a.qty,
			CostBasis:       guardDiv(a.buyAmount, a.buyQty) * a.qty,
			LastTransaction: a.last,
		}
		if listing := m.Listing(id); listing != nil {
			p.Ticker = listing.Ticker()
			p.Name = listing.Name()
			p.Currency = listing.Currency()
		}
		positions = append(positions, p)
	}

	slices.SortFunc(positions, func(a, b Position) int {
		switch {
		case a.Ticker < b.Ticker:
			return -1
		case a.Ticker > b.Ticker:
			return 1
		default:
			return 0
		}
	})
	return positions
}
