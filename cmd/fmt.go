package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/divtrack/divtrack"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `dvt fmt

  Validates and formats the ledger file. This command reads all transactions,
  validates them, applies available quick-fixes (like resolving "sell all"),
  sorts them by date, and writes them back in a canonical JSONL format.
`
}

func (*fmtCmd) SetFlags(_ *flag.FlagSet) {}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load book: %v\n", err)
		return subcommands.ExitFailure
	}
	market, err := DecodeMarketData()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load market data: %v\n", err)
		return subcommands.ExitFailure
	}

	// Replay every transaction through validation into a fresh book sharing
	// the same portfolios.
	ledger := book.Ledger()
	book.SetLedger(divtrack.NewLedger())
	for tx := range ledger.Transactions() {
		if _, err := book.Record(market, tx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	file, err := os.Create(*ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file for writing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	if err := divtrack.EncodeLedger(file, book.Ledger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing formatted ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Successfully formatted %s.\n", *ledgerFile)
	return subcommands.ExitSuccess
}
