package divtrack

// Listings and portfolios shared by the tests of this package. The ISINs are
// real so the check digit validation passes.
var (
	apple = ListingID("US0378331005.XNAS") // USD
	msft  = ListingID("US5949181045.XNAS") // USD
	sap   = ListingID("DE0007164600.XETR") // EUR
)

// EUR is a helper for tests to create euro money from const.
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for tests to create usd money from const.
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for tests to create money with no currency set.
func NO(v float64) Money { return M(v, "") }

func day(s string) Date { return MustParseDate(s) }

// newTestBook returns a book with a EUR portfolio "main" owned by alice and a
// USD portfolio "other" owned by bob.
func newTestBook() *Book {
	b := NewBook()
	if err := b.AddPortfolio(Portfolio{ID: "main", Name: "Main", Owner: "alice", Currency: "EUR"}); err != nil {
		panic(err)
	}
	if err := b.AddPortfolio(Portfolio{ID: "other", Owner: "bob", Currency: "USD"}); err != nil {
		panic(err)
	}
	return b
}

// newTestMarket returns market data with the three test listings declared.
func newTestMarket() *MarketData {
	m := NewMarketData()
	for _, def := range []struct {
		id                     ListingID
		ticker, name, currency string
	}{
		{apple, "AAPL", "Apple Inc.", "USD"},
		{msft, "MSFT", "Microsoft Corp.", "USD"},
		{sap, "SAP", "SAP SE", "EUR"},
	} {
		l, err := NewListing(def.id, def.ticker, def.name, def.currency)
		if err != nil {
			panic(err)
		}
		if err := m.Add(l); err != nil {
			panic(err)
		}
	}
	return m
}
