package divtrack

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeLedger(t *testing.T) {
	// A JSONL stream with every command type, out of order and with a blank
	// line in the middle.
	jsonlStream := `
{"command":"dividend","date":"2025-02-10","portfolio":"main","security":"US0378331005.XNAS","currency":"USD","amount":25}
{"command":"buy","date":"2025-01-10","portfolio":"main","security":"US0378331005.XNAS","quantity":10,"currency":"USD","amount":1500}

{"command":"tax","date":"2025-02-10","portfolio":"main","security":"US0378331005.XNAS","currency":"USD","amount":3.75}
{"command":"split","date":"2025-03-01","portfolio":"main","security":"US0378331005.XNAS","num":4,"den":1}
{"command":"sell","date":"2025-03-10","portfolio":"main","security":"US0378331005.XNAS","quantity":40,"currency":"USD","amount":1600}
`
	ledger, err := DecodeLedger(strings.NewReader(jsonlStream))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	if ledger.Len() != 5 {
		t.Fatalf("decoded %d transactions, want 5", ledger.Len())
	}

	// Decoding sorts the stream chronologically.
	var kinds []CommandType
	for tx := range ledger.Transactions() {
		kinds = append(kinds, tx.What())
	}
	want := []CommandType{CmdBuy, CmdDividend, CmdTax, CmdSplit, CmdSell}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("transactions[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestDecodeLedger_UnknownCommand(t *testing.T) {
	in := `{"command":"teleport","date":"2025-01-10","portfolio":"main","security":"US0378331005.XNAS"}`
	if _, err := DecodeLedger(strings.NewReader(in)); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestEncodeLedger_RoundTrip(t *testing.T) {
	ledger := NewLedger()
	buy := NewBuy(day("2025-01-10"), "main", apple, 10, USD(1500))
	buy.SetMemo("first lot")
	ledger.Append(
		buy,
		NewDividend(day("2025-02-10"), "main", apple, USD(25)),
		NewTax(day("2025-02-10"), "main", apple, USD(3.75)),
		NewSplit(day("2025-03-01"), "main", apple, 4, 1),
		NewSell(day("2025-03-10"), "main", apple, 40, USD(1600)),
	)

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() returned an unexpected error: %v", err)
	}

	back, err := DecodeLedger(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	if back.Len() != ledger.Len() {
		t.Fatalf("round trip decoded %d transactions, want %d", back.Len(), ledger.Len())
	}

	original := make([]Transaction, 0, ledger.Len())
	for tx := range ledger.Transactions() {
		original = append(original, tx)
	}
	i := 0
	for tx := range back.Transactions() {
		if !tx.Equal(original[i]) {
			t.Errorf("transactions[%d] = %+v, want %+v", i, tx, original[i])
		}
		i++
	}
}

func TestEncodeLedger_CanonicalOutput(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(
		NewSell(day("2025-03-10"), "main", apple, 40, USD(1600)),
		NewBuy(day("2025-01-10"), "main", apple, 10, USD(1500)),
	)

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() returned an unexpected error: %v", err)
	}
	want := `{"command":"buy","date":"2025-01-10","portfolio":"main","security":"US0378331005.XNAS","quantity":10,"currency":"USD","amount":1500}
{"command":"sell","date":"2025-03-10","portfolio":"main","security":"US0378331005.XNAS","quantity":40,"currency":"USD","amount":1600}
`
	if buf.String() != want {
		t.Errorf("EncodeLedger output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPortfolios_RoundTrip(t *testing.T) {
	book := newTestBook()

	var buf bytes.Buffer
	if err := EncodePortfolios(&buf, book); err != nil {
		t.Fatalf("EncodePortfolios() returned an unexpected error: %v", err)
	}
	want := `{"id":"main","name":"Main","owner":"alice","currency":"EUR"}
{"id":"other","owner":"bob","currency":"USD"}
`
	if buf.String() != want {
		t.Errorf("EncodePortfolios output:\n%s\nwant:\n%s", buf.String(), want)
	}

	back, err := DecodePortfolios(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodePortfolios() returned an unexpected error: %v", err)
	}
	p, err := back.Portfolio("alice", "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Currency != "EUR" || p.Name != "Main" {
		t.Errorf("decoded portfolio = %+v", p)
	}
}

func TestDecodePortfolios_RejectsDuplicates(t *testing.T) {
	in := `{"id":"main","owner":"alice","currency":"EUR"}
{"id":"main","owner":"bob","currency":"USD"}
`
	if _, err := DecodePortfolios(strings.NewReader(in)); err == nil {
		t.Error("expected an error for a duplicate portfolio id")
	}
}
