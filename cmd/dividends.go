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

// dividendsCmd holds the flags for the 'dividends' subcommand.
type dividendsCmd struct {
	portfolio string
	ticker    string
	year      int
	currency  string
	json      bool
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "display the dividend history per ticker and year" }
func (*dividendsCmd) Usage() string {
	return `dvt dividends [-p <portfolio>] [-t <ticker>] [-y <year>] [-c <currency>] [-json]

  Displays the dividend payments received, aggregated per ticker and per
  year, most recent year first.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio to report on. Defaults to all portfolios of the owner.")
	f.StringVar(&c.ticker, "t", "", "Restrict the report to one ticker")
	f.IntVar(&c.year, "y", 0, "Restrict the report to one calendar year")
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio currency.")
	f.BoolVar(&c.json, "json", false, "Output the report as JSON instead of markdown")
}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, market, err := loadAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fx := divtrack.NewResolver(market, quotes.NewClient(""))
	report, err := divtrack.NewDividendsReport(ctx, book, market, fx, *owner, c.portfolio,
		divtrack.DividendOptions{Ticker: c.ticker, Year: c.year, Currency: c.currency})
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
	printMarkdown(renderer.DividendsMarkdown(report))
	return subcommands.ExitSuccess
}
