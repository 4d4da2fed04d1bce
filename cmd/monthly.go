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

// monthlyCmd holds the flags for the 'monthly' subcommand.
type monthlyCmd struct {
	portfolio string
	year      int
	from      int
	to        int
	currency  string
	json      bool
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the monthly dividend breakdown" }
func (*monthlyCmd) Usage() string {
	return `dvt monthly [-p <portfolio>] [-y <year> | -from <year> -to <year>] [-c <currency>] [-json]

  Displays the dividend income month by month. Every month of every covered
  year appears, paid or not, so the seasonality of the income is visible.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio to report on. Defaults to all portfolios of the owner.")
	f.IntVar(&c.year, "y", 0, "Restrict the breakdown to one calendar year. Defaults to every year with payments.")
	f.IntVar(&c.from, "from", 0, "First year of the breakdown")
	f.IntVar(&c.to, "to", 0, "Last year of the breakdown")
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio currency.")
	f.BoolVar(&c.json, "json", false, "Output the report as JSON instead of markdown")
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, market, err := loadAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	opt := divtrack.MonthlyOptions{FromYear: c.from, ToYear: c.to, Currency: c.currency}
	if c.year != 0 {
		opt.FromYear, opt.ToYear = c.year, c.year
	}

	fx := divtrack.NewResolver(market, quotes.NewClient(""))
	report, err := divtrack.NewMonthlyReport(ctx, book, market, fx, *owner, c.portfolio, opt)
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
	printMarkdown(renderer.MonthlyMarkdown(report))
	return subcommands.ExitSuccess
}
