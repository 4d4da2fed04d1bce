package divtrack

import "testing"

func TestLedger_Quantity(t *testing.T) {
	l := NewLedger()
	l.Append(
		NewBuy(day("2025-01-10"), "main", apple, 100, USD(15000)),
		NewBuy(day("2025-01-15"), "main", msft, 50, USD(20000)),
		NewSell(day("2025-02-01"), "main", apple, 25, USD(4000)),
		NewBuy(day("2025-02-10"), "main", apple, 10, USD(1550)),
		NewSplit(day("2025-03-01"), "main", apple, 4, 1),
		NewSell(day("2025-03-15"), "main", msft, 50, USD(21000)),
		NewBuy(day("2025-01-20"), "other", apple, 7, USD(1100)),
	)

	testCases := []struct {
		name      string
		portfolio string
		listing   ListingID
		date      string
		want      float64
	}{
		{"before any transaction", "main", apple, "2025-01-09", 0},
		{"on the first buy", "main", apple, "2025-01-10", 100},
		{"after the sell", "main", apple, "2025-02-05", 75},
		{"after the second buy", "main", apple, "2025-02-10", 85},
		{"split multiplies the position", "main", apple, "2025-03-01", 340},
		{"sold out position", "main", msft, "2025-04-01", 0},
		{"other portfolio is isolated", "other", apple, "2025-04-01", 7},
		{"listing never traded", "main", sap, "2025-04-01", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := l.quantity(tc.portfolio, tc.listing, day(tc.date))
			if got != tc.want {
				t.Errorf("quantity(%s, %s, %s) = %v, want %v", tc.portfolio, tc.listing, tc.date, got, tc.want)
			}
		})
	}
}

func TestLedger_AppendKeepsChronology(t *testing.T) {
	l := NewLedger()
	l.Append(NewBuy(day("2025-03-01"), "main", apple, 1, USD(100)))
	l.Append(NewBuy(day("2025-01-01"), "main", apple, 2, USD(200)))
	l.Append(NewBuy(day("2025-02-01"), "main", apple, 3, USD(300)))

	var got []float64
	for tx := range l.Transactions() {
		got = append(got, tx.(Buy).Quantity)
	}
	want := []float64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transactions[%d] quantity = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLedger_StableSortOnSameDay(t *testing.T) {
	// Same-day transactions keep their insertion order, so a buy and the
	// sell of those very shares on the same day stay in cause-effect order.
	l := NewLedger()
	l.Append(
		NewBuy(day("2025-01-10"), "main", apple, 10, USD(1500)),
		NewSell(day("2025-01-10"), "main", apple, 10, USD(1520)),
	)

	var kinds []CommandType
	for tx := range l.Transactions() {
		kinds = append(kinds, tx.What())
	}
	if kinds[0] != CmdBuy || kinds[1] != CmdSell {
		t.Errorf("same day order = %v, want [buy sell]", kinds)
	}
}

func TestLedger_Filters(t *testing.T) {
	l := NewLedger()
	l.Append(
		NewBuy(day("2024-12-20"), "main", apple, 10, USD(1500)),
		NewDividend(day("2025-02-10"), "main", apple, USD(25)),
		NewTax(day("2025-02-10"), "main", apple, USD(5)),
		NewDividend(day("2025-05-12"), "main", msft, USD(40)),
		NewDividend(day("2025-03-01"), "other", apple, USD(10)),
	)

	count := func(filters ...TxFilter) int {
		n := 0
		for range l.Transactions(filters...) {
			n++
		}
		return n
	}

	if got := count(ByPortfolio("main")); got != 4 {
		t.Errorf("ByPortfolio(main) matched %d, want 4", got)
	}
	if got := count(ByListing(apple)); got != 4 {
		t.Errorf("ByListing(apple) matched %d, want 4", got)
	}
	if got := count(ByType(CmdDividend, CmdTax)); got != 4 {
		t.Errorf("ByType(dividend, tax) matched %d, want 4", got)
	}
	if got := count(InYear(2025)); got != 4 {
		t.Errorf("InYear(2025) matched %d, want 4", got)
	}
	if got := count(Until(day("2025-02-10"))); got != 3 {
		t.Errorf("Until(2025-02-10) matched %d, want 3 (bound inclusive)", got)
	}
	if got := count(Within(NewRange(day("2025-02-01"), day("2025-03-31")))); got != 3 {
		t.Errorf("Within(feb..mar) matched %d, want 3", got)
	}
	if got := count(ByPortfolio("main"), ByListing(apple), ByType(CmdDividend)); got != 1 {
		t.Errorf("composed filters matched %d, want 1", got)
	}
}
