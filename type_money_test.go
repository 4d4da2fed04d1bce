package divtrack

import (
	"encoding/json"
	"testing"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := EUR(10.50)
	b := EUR(2.25)

	if got := a.Add(b); !got.Equal(EUR(12.75)) {
		t.Errorf("Add = %s, want 12.75 EUR", got)
	}
	if got := a.Sub(b); !got.Equal(EUR(8.25)) {
		t.Errorf("Sub = %s, want 8.25 EUR", got)
	}
	if got := a.Neg(); !got.Equal(EUR(-10.50)) {
		t.Errorf("Neg = %s, want -10.50 EUR", got)
	}
}

func TestMoney_WeakEmptyCurrency(t *testing.T) {
	// The empty currency merges with any other in arithmetic.
	got := NO(5).Add(EUR(10))
	if got.Currency() != "EUR" {
		t.Errorf("currency = %q, want EUR", got.Currency())
	}
	if !got.Equal(EUR(15)) {
		t.Errorf("amount = %s, want 15 EUR", got)
	}
}

func TestMoney_Round(t *testing.T) {
	if got := EUR(10.456).Round(); !got.Equal(EUR(10.46)) {
		t.Errorf("Round = %s, want 10.46 EUR", got)
	}
	if got := USD(10.454).Round(); !got.Equal(USD(10.45)) {
		t.Errorf("Round = %s, want 10.45 USD", got)
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(USD(1730.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"currency":"USD","amount":1730.5}`; string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	// The empty currency is omitted.
	data, err = json.Marshal(NO(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"amount":5}`; string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestMoney_SignedString(t *testing.T) {
	if got := EUR(0).SignedString(); got != "-" {
		t.Errorf("zero SignedString = %q, want -", got)
	}
	if got := EUR(1).SignedString(); got[0] != '+' {
		t.Errorf("positive SignedString = %q, want a leading +", got)
	}
}

func TestValidateCurrency(t *testing.T) {
	for _, code := range []string{"EUR", "USD", "JPY", "GBP"} {
		if err := ValidateCurrency(code); err != nil {
			t.Errorf("ValidateCurrency(%q) unexpected error: %v", code, err)
		}
	}
	for _, code := range []string{"", "EURO", "XXXX", "eur"} {
		if err := ValidateCurrency(code); err == nil {
			t.Errorf("ValidateCurrency(%q) expected an error", code)
		}
	}
}
