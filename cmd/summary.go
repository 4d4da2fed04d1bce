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

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date      string
	portfolio string
	currency  string
	json      bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a portfolio summary" }
func (*summaryCmd) Usage() string {
	return `dvt summary [-d <date>] [-p <portfolio>] [-c <currency>] [-json]

  Displays a summary of the portfolio: market value, cost basis, unrealized
  gain and dividends received since inception.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", divtrack.Today().String(), "Date for the summary")
	f.StringVar(&c.portfolio, "p", "", "Portfolio to report on. Defaults to the only portfolio if one exists.")
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio currency.")
	f.BoolVar(&c.json, "json", false, "Output the report as JSON instead of markdown")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := divtrack.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, market, err := loadAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	portfolio, err := selectPortfolio(book, c.portfolio)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	fx := divtrack.NewResolver(market, quotes.NewClient(""))
	summary, err := divtrack.NewSummary(ctx, book, market, fx, *owner, portfolio, on, c.currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(summary); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SummaryMarkdown(summary))
	return subcommands.ExitSuccess
}
