package divtrack

import (
	"fmt"
	"iter"
	"slices"
)

// Portfolio is a named container for transactions, owned by a single user and
// reported in a display currency.
type Portfolio struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	Currency string `json:"currency"`
}

// Validate checks the portfolio definition.
func (p Portfolio) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("portfolio id is missing")
	}
	if p.Owner == "" {
		return fmt.Errorf("portfolio %q: owner is missing", p.ID)
	}
	if err := ValidateCurrency(p.Currency); err != nil {
		return fmt.Errorf("portfolio %q: %w", p.ID, err)
	}
	return nil
}

// MarshalJSON encodes the portfolio with a canonical field order.
func (p Portfolio) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Optional("name", p.Name)
	w.Append("owner", p.Owner)
	w.Append("currency", p.Currency)
	return w.MarshalJSON()
}

// Book groups the portfolios of all users with the shared transaction ledger.
// Every query path goes through an ownership check: a portfolio that exists
// but belongs to someone else is reported exactly like a missing one.
type Book struct {
	portfolios map[string]Portfolio
	ledger     *Ledger
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		portfolios: make(map[string]Portfolio),
		ledger:     NewLedger(),
	}
}

// Ledger returns the shared transaction ledger.
func (b *Book) Ledger() *Ledger { return b.ledger }

// SetLedger attaches a previously decoded ledger to the book.
func (b *Book) SetLedger(l *Ledger) { b.ledger = l }

// AddPortfolio registers a portfolio. Duplicate IDs are rejected.
func (b *Book) AddPortfolio(p Portfolio) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := b.portfolios[p.ID]; ok {
		return fmt.Errorf("portfolio %q is already defined", p.ID)
	}
	b.portfolios[p.ID] = p
	return nil
}

// Has reports whether a portfolio exists, regardless of owner.
func (b *Book) Has(id string) bool {
	_, ok := b.portfolios[id]
	return ok
}

// Portfolio returns the portfolio with the given id if it is owned by owner.
// A missing portfolio and a foreign portfolio both return
// ErrPortfolioNotFound.
func (b *Book) Portfolio(owner, id string) (Portfolio, error) {
	p, ok := b.portfolios[id]
	if !ok || p.Owner != owner {
		return Portfolio{}, fmt.Errorf("portfolio %q: %w", id, ErrPortfolioNotFound)
	}
	return p, nil
}

// Portfolios returns an iterator over the portfolios of one owner, in id
// order.
func (b *Book) Portfolios(owner string) iter.Seq[Portfolio] {
	ids := make([]string, 0, len(b.portfolios))
	for id, p := range b.portfolios {
		if p.Owner == owner {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return func(yield func(Portfolio) bool) {
		for _, id := range ids {
			if !yield(b.portfolios[id]) {
				return
			}
		}
	}
}

// Record validates a transaction against the book and market data, then
// appends it to the ledger. It returns the validated (and potentially
// quick-fixed) transaction.
func (b *Book) Record(m *MarketData, tx Transaction) (Transaction, error) {
	validated, err := tx.Validate(b, m)
	if err != nil {
		return tx, fmt.Errorf("invalid %s transaction on %s: %w", tx.What(), tx.When(), err)
	}
	b.ledger.Append(validated)
	return validated, nil
}
