package divtrack

import (
	"iter"
	"slices"
	"sort"
)

// Epsilon is the quantity below which a position is considered closed.
// Accumulated float drift over many buys and sells never reopens a sold-out
// position.
const Epsilon = 1e-6

// Ledger represents the append-only list of transactions across all
// portfolios. In a Ledger transactions are always in chronological order;
// same-day transactions keep their insertion order.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Append adds a transaction to the ledger without validation. Callers that
// accept external input go through Book.Record instead.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// stableSort orders transactions by date, keeping the relative order of
// same-day transactions.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// TxFilter is a predicate over transactions. Filters compose by AND.
type TxFilter func(Transaction) bool

// ByPortfolio keeps transactions recorded in the given portfolio.
func ByPortfolio(id string) TxFilter {
	return func(tx Transaction) bool { return tx.Where() == id }
}

// ByPortfolios keeps transactions recorded in any of the given portfolios.
func ByPortfolios(ids ...string) TxFilter {
	return func(tx Transaction) bool { return slices.Contains(ids, tx.Where()) }
}

// ByListing keeps transactions for the given listing.
func ByListing(id ListingID) TxFilter {
	return func(tx Transaction) bool { return tx.Listing() == id }
}

// ByType keeps transactions of the given command types.
func ByType(types ...CommandType) TxFilter {
	return func(tx Transaction) bool {
		for _, t := range types {
			if tx.What() == t {
				return true
			}
		}
		return false
	}
}

// Until keeps transactions on or before the given date.
func Until(on Date) TxFilter {
	return func(tx Transaction) bool { return !tx.When().After(on) }
}

// Within keeps transactions inside the given date range (inclusive).
func Within(r Range) TxFilter {
	return func(tx Transaction) bool { return r.Contains(tx.When()) }
}

// InYear keeps transactions dated in the given calendar year.
func InYear(year int) TxFilter {
	return func(tx Transaction) bool { return tx.When().Year() == year }
}

// Transactions returns an iterator over transactions matching all the given
// filters, in chronological order.
func (l *Ledger) Transactions(filters ...TxFilter) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
	next:
		for _, tx := range l.transactions {
			for _, f := range filters {
				if !f(tx) {
					continue next
				}
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// quantity folds buys, sells and splits into the share count held in a
// portfolio for a listing on a given date.
func (l *Ledger) quantity(portfolio string, listing ListingID, on Date) float64 {
	var qty float64
	for tx := range l.Transactions(ByPortfolio(portfolio), ByListing(listing), Until(on)) {
		switch v := tx.(type) {
		case Buy:
			qty += v.Quantity
		case Sell:
			qty -= v.Quantity
		case Split:
			qty *= v.Factor()
		}
	}
	return qty
}
