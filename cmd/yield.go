package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/divtrack/divtrack"
	"github.com/divtrack/divtrack/quotes"
	"github.com/divtrack/divtrack/renderer"
	"github.com/google/subcommands"
)

// yieldCmd holds the flags for the 'yield' subcommand.
type yieldCmd struct {
	date      string
	portfolio string
	currency  string
	sortBy    string
	desc      bool
	json      bool
}

func (*yieldCmd) Name() string     { return "yield" }
func (*yieldCmd) Synopsis() string { return "compare open positions by dividend yield" }
func (*yieldCmd) Usage() string {
	return `dvt yield [-d <date>] [-p <portfolio>] [-c <currency>] [-sort <field>] [-desc] [-json]

  Compares the open positions by their trailing twelve months of dividend
  income: current yield, yield on cost and inferred payment cadence.
`
}

func (c *yieldCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Valuation date. Defaults to today.")
	f.StringVar(&c.portfolio, "p", "", "Portfolio to report on. Defaults to all portfolios of the owner.")
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio currency.")
	f.StringVar(&c.sortBy, "sort", "", "Sort field for the underlying positions. Defaults to ticker.")
	f.BoolVar(&c.desc, "desc", false, "Sort in descending order")
	f.BoolVar(&c.json, "json", false, "Output the report as JSON instead of markdown")
}

func (c *yieldCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	opt := divtrack.PositionsOptions{
		Currency:   c.currency,
		SortBy:     c.sortBy,
		Descending: c.desc,
	}
	if c.date != "" {
		on, err := divtrack.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		opt.AsOf = on
	}

	book, market, err := loadAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fx := divtrack.NewResolver(market, quotes.NewClient(""))
	report, err := divtrack.NewYieldReport(ctx, book, market, fx, *owner, c.portfolio, opt)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(report); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.YieldMarkdown(report))
	return subcommands.ExitSuccess
}
