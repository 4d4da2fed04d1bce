package divtrack

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewSummary(t *testing.T) {
	b, m, fx := newDividendFixture(t)

	summary, err := NewSummary(context.Background(), b, m, fx, "bob", "other", day("2025-03-01"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Portfolio != "other" || summary.Currency != "USD" {
		t.Errorf("header = %s %s, want other USD", summary.Portfolio, summary.Currency)
	}
	if summary.PositionCount != 1 {
		t.Errorf("position count = %d, want 1", summary.PositionCount)
	}
	if summary.TotalValue != 1000 || summary.TotalCost != 800 {
		t.Errorf("totals = %v / %v, want 1000 / 800", summary.TotalValue, summary.TotalCost)
	}
	if summary.TotalGain != 200 {
		t.Errorf("gain = %v, want 200", summary.TotalGain)
	}
	if summary.GainPercent != 25 {
		t.Errorf("gain percent = %v, want 25", summary.GainPercent)
	}
	// All four dividend payments, gross of tax.
	if summary.TotalDividends != 100 {
		t.Errorf("all-time dividends = %v, want 100", summary.TotalDividends)
	}
}

func TestNewSummary_DividendsUpToDate(t *testing.T) {
	b, m, fx := newDividendFixture(t)

	// Before the 2025 payment only three dividends count.
	summary, err := NewSummary(context.Background(), b, m, fx, "bob", "other", day("2025-01-31"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalDividends != 75 {
		t.Errorf("dividends up to january = %v, want 75", summary.TotalDividends)
	}
}

func TestNewSummary_EmptyPortfolio(t *testing.T) {
	b := newTestBook()
	m := newTestMarket()

	summary, err := NewSummary(context.Background(), b, m, NewResolver(m, nil), "alice", "main", day("2025-03-01"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.PositionCount != 0 || summary.TotalValue != 0 || summary.GainPercent != 0 {
		t.Errorf("empty summary = %+v, want all zero", summary)
	}
}

func TestSummary_JSON(t *testing.T) {
	b, m, fx := newDividendFixture(t)

	summary, err := NewSummary(context.Background(), b, m, fx, "bob", "other", day("2025-03-01"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`"date":"2025-03-01"`,
		`"portfolio":"other"`,
		`"currency":"USD"`,
		`"positionCount":1`,
		`"totalValue":1000`,
		`"totalGainPercent":25`,
		`"totalDividends":100`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary JSON misses %s:\n%s", want, out)
		}
	}
	// The portfolio has no display name, so none is encoded.
	if strings.Contains(out, `"name"`) {
		t.Errorf("summary JSON must omit an empty name:\n%s", out)
	}
}
