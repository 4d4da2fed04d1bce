package divtrack

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuy_JSON(t *testing.T) {
	tx := NewBuy(day("2025-03-07"), "main", apple, 10, USD(1730.5))

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"command":"buy","date":"2025-03-07","portfolio":"main","security":"US0378331005.XNAS","quantity":10,"currency":"USD","amount":1730.5}`
	if string(data) != want {
		t.Errorf("marshal = %s\nwant      %s", data, want)
	}

	var back Buy
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Equal(tx) {
		t.Errorf("round trip = %+v, want %+v", back, tx)
	}
}

func TestBuy_JSONWithMemo(t *testing.T) {
	tx := NewBuy(day("2025-03-07"), "main", apple, 10, USD(1730.5))
	tx.SetMemo("first lot")

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"command":"buy","date":"2025-03-07","portfolio":"main","security":"US0378331005.XNAS","memo":"first lot","quantity":10,"currency":"USD","amount":1730.5}`
	if string(data) != want {
		t.Errorf("marshal = %s\nwant      %s", data, want)
	}
}

func TestSplit_DecodeDefaultsDenominator(t *testing.T) {
	var tx Split
	in := `{"command":"split","date":"2025-06-09","portfolio":"main","security":"US0378331005.XNAS","num":4}`
	if err := json.Unmarshal([]byte(in), &tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Denominator != 1 {
		t.Errorf("Denominator = %d, want the default 1", tx.Denominator)
	}
	if tx.Factor() != 4.0 {
		t.Errorf("Factor = %v, want 4", tx.Factor())
	}
}

func TestValidate_QuickFixesZeroDate(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	tx := NewBuy(Date{}, "main", apple, 10, USD(1730.5))
	fixed, err := tx.Validate(b, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed.When() != Today() {
		t.Errorf("date = %s, want today %s", fixed.When(), Today())
	}
}

func TestValidate_QuickFixesEmptyCurrency(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	tx := NewDividend(day("2025-03-07"), "main", apple, NO(25))
	fixed, err := tx.Validate(b, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fixed.(Dividend).Amount; !got.Equal(USD(25)) {
		t.Errorf("amount = %s, want the listing currency applied: 25 USD", got)
	}
}

func TestValidate_RejectsCurrencyMismatch(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	// Apple is listed in USD, a EUR amount must be rejected.
	tx := NewBuy(day("2025-03-07"), "main", apple, 10, EUR(1600))
	if _, err := tx.Validate(b, m); err == nil {
		t.Error("expected a currency mismatch error")
	}
}

func TestValidate_RejectsUnknownPortfolio(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	tx := NewBuy(day("2025-03-07"), "nope", apple, 10, USD(1730.5))
	if _, err := tx.Validate(b, m); err == nil {
		t.Error("expected an error for an unknown portfolio")
	}
}

func TestValidate_RejectsUndeclaredListing(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	tx := NewBuy(day("2025-03-07"), "main", ListingID("FR0000120271.XPAR"), 10, EUR(600))
	if _, err := tx.Validate(b, m); err == nil {
		t.Error("expected an error for an undeclared listing")
	}
}

func TestSell_Validate(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()
	if _, err := b.Record(m, NewBuy(day("2025-01-10"), "main", apple, 10, USD(1500))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("sell all resolves the held quantity", func(t *testing.T) {
		tx := NewSell(day("2025-02-01"), "main", apple, 0, USD(1800))
		fixed, err := tx.Validate(b, m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := fixed.(Sell).Quantity; got != 10 {
			t.Errorf("quantity = %v, want the full position 10", got)
		}
	})

	t.Run("oversell is rejected", func(t *testing.T) {
		tx := NewSell(day("2025-02-01"), "main", apple, 12, USD(1800))
		_, err := tx.Validate(b, m)
		if err == nil {
			t.Fatal("expected an error selling more than held")
		}
		if !strings.Contains(err.Error(), "position is only") {
			t.Errorf("error = %v, want a position size message", err)
		}
	})

	t.Run("sell before any buy is rejected", func(t *testing.T) {
		tx := NewSell(day("2025-01-01"), "main", apple, 5, USD(800))
		if _, err := tx.Validate(b, m); err == nil {
			t.Error("expected an error selling with no position on that date")
		}
	})
}

func TestBuy_ValidateRejectsNonPositive(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	if _, err := NewBuy(day("2025-03-07"), "main", apple, 0, USD(100)).Validate(b, m); err == nil {
		t.Error("expected an error for a zero quantity")
	}
	if _, err := NewBuy(day("2025-03-07"), "main", apple, 10, USD(-5)).Validate(b, m); err == nil {
		t.Error("expected an error for a negative amount")
	}
}
