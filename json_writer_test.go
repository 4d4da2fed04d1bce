package divtrack

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJsonObjectWriter_FieldOrder(t *testing.T) {
	// Report encoders depend on keys coming out in append order, not in the
	// alphabetical order encoding/json would impose on a map.
	var w jsonObjectWriter
	w.Append("ticker", "AAPL")
	w.Append("year", 2025)
	w.Append("totalDividends", 102.5)

	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"ticker":"AAPL","year":2025,"totalDividends":102.5}`; string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_EmptyObject(t *testing.T) {
	var w jsonObjectWriter
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("zero writer marshals to %s, want {}", got)
	}
}

func TestJsonObjectWriter_Optional(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		keep  bool
	}{
		{"empty string", "", false},
		{"zero int", 0, false},
		{"zero float", 0.0, false},
		{"false", false, false},
		{"zero date", Date{}, false},
		{"string", "main", true},
		{"float", 12.5, true},
		{"true", true, true},
		{"date", day("2025-03-07"), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w jsonObjectWriter
			w.Optional("v", tc.value)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kept := strings.Contains(string(got), `"v"`); kept != tc.keep {
				t.Errorf("Optional(%v) output %s, want kept=%v", tc.value, got, tc.keep)
			}
		})
	}
}

func TestJsonObjectWriter_AppendKeepsZeros(t *testing.T) {
	// Mandatory fields stay even when zero; only Optional elides.
	var w jsonObjectWriter
	w.Append("dividendCount", 0)
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"dividendCount":0}`; string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_Embed(t *testing.T) {
	var w jsonObjectWriter
	w.Append("command", "dividend")
	w.Embed(json.RawMessage(`{"date":"2025-02-01","portfolio":"main"}`))
	w.Append("amount", 50)

	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"command":"dividend","date":"2025-02-01","portfolio":"main","amount":50}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}

	// An empty object contributes nothing, not a stray comma.
	var w2 jsonObjectWriter
	w2.Embed(json.RawMessage(`{}`)).Append("after", 1)
	got, err = w2.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"after":1}`; string(got) != want {
		t.Errorf("empty embed: got %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_EmbedFrom(t *testing.T) {
	base := struct {
		Date      string `json:"date"`
		Portfolio string `json:"portfolio"`
	}{Date: "2025-02-01", Portfolio: "main"}

	var w jsonObjectWriter
	w.EmbedFrom(base).Append("quantity", 10)
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"date":"2025-02-01","portfolio":"main","quantity":10}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_ErrorStopsTheChain(t *testing.T) {
	var w jsonObjectWriter
	w.Append("bad", func() {}) // functions cannot marshal
	w.Append("after", 1)
	if _, err := w.MarshalJSON(); err == nil {
		t.Error("expected the marshal error to surface from MarshalJSON")
	}
}
