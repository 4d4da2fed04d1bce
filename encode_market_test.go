package divtrack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarketData_RoundTrip(t *testing.T) {
	m := newTestMarket()
	if err := m.AddPrice(apple, day("2025-03-01"), 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddPrice(apple, day("2025-03-02"), 151.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddPrice(msft, day("2025-03-01"), 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddRate("EUR", "USD", day("2025-03-01"), 1.08); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	folder := t.TempDir()
	if err := EncodeMarketData(folder, m); err != nil {
		t.Fatalf("EncodeMarketData() returned an unexpected error: %v", err)
	}

	back, err := DecodeMarketData(folder)
	if err != nil {
		t.Fatalf("DecodeMarketData() returned an unexpected error: %v", err)
	}

	l := back.ByTicker("AAPL")
	if l == nil {
		t.Fatal("AAPL listing lost in the round trip")
	}
	if l.ID() != apple || l.Currency() != "USD" || l.Name() != "Apple Inc." {
		t.Errorf("listing = %s %s %s", l.ID(), l.Currency(), l.Name())
	}

	if price, ok := back.PriceAsOf(apple, day("2025-03-05")); !ok || price != 151.5 {
		t.Errorf("PriceAsOf = %v, %v, want 151.5, true", price, ok)
	}
	if price, ok := back.PriceAsOf(msft, day("2025-03-01")); !ok || price != 500 {
		t.Errorf("PriceAsOf = %v, %v, want 500, true", price, ok)
	}
	if rate, ok := back.RateAsOf("EUR", "USD", day("2025-03-07")); !ok || rate != 1.08 {
		t.Errorf("RateAsOf = %v, %v, want 1.08, true", rate, ok)
	}
}

func TestEncodeMarketData_DayOrientedFiles(t *testing.T) {
	m := newTestMarket()
	if err := m.AddPrice(apple, day("2025-03-02"), 151.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddPrice(apple, day("2025-03-01"), 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddPrice(msft, day("2025-03-01"), 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	folder := t.TempDir()
	if err := EncodeMarketData(folder, m); err != nil {
		t.Fatalf("EncodeMarketData() returned an unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(folder, "prices.jsonl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One line per day in chronological order, tickers merged per line.
	want := `{"on":"2025-03-01","AAPL":150,"MSFT":500}
{"on":"2025-03-02","AAPL":151.5}
`
	if string(data) != want {
		t.Errorf("prices.jsonl:\n%s\nwant:\n%s", data, want)
	}
}

func TestDecodeMarketData_MissingFolder(t *testing.T) {
	m, err := DecodeMarketData(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ByTicker("AAPL") != nil {
		t.Error("a missing folder must decode into an empty database")
	}
}

func TestDecodeMarketData_RejectsUnknownTicker(t *testing.T) {
	folder := t.TempDir()
	files := map[string]string{
		"listings.jsonl": `{"ticker":"AAPL","id":"US0378331005.XNAS","currency":"USD"}` + "\n",
		"prices.jsonl":   `{"on":"2025-03-01","GHOST":10}` + "\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(folder, name), []byte(content), 0644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, err := DecodeMarketData(folder)
	if err == nil {
		t.Fatal("expected an error for a price keyed on an unknown ticker")
	}
	if !strings.Contains(err.Error(), "GHOST") {
		t.Errorf("error = %v, want it to name the unknown ticker", err)
	}
}
