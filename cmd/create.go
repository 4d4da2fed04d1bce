package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/divtrack/divtrack"
	"github.com/google/subcommands"
)

// createCmd holds the flags for the 'create' subcommand.
type createCmd struct {
	id       string
	name     string
	currency string
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "create a new portfolio" }
func (*createCmd) Usage() string {
	return `dvt create -p <id> [-n <name>] [-c <currency>]

  Creates a new portfolio owned by the current user, reported in the given
  display currency.
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "p", "", "Portfolio identifier")
	f.StringVar(&c.name, "n", "", "Human readable portfolio name")
	f.StringVar(&c.currency, "c", "EUR", "Display currency of the portfolio (e.g. USD, EUR)")
}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	p := divtrack.Portfolio{ID: c.id, Name: c.name, Owner: *owner, Currency: c.currency}
	if err := book.AddPortfolio(p); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if err := EncodePortfolios(book); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully created portfolio %q for %s in %s\n", c.id, p.Owner, p.Currency)
	return subcommands.ExitSuccess
}
