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

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	date      string
	portfolio string
	currency  string
	sortBy    string
	desc      bool
	page      int
	limit     int
	json      bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the open positions and their value" }
func (*positionsCmd) Usage() string {
	return `dvt positions [-d <date>] [-p <portfolio>] [-c <currency>] [-sort <field>] [-desc] [-page <n>] [-limit <n>] [-json]

  Displays the open positions on a given date, valued at the latest known
  price and converted into the display currency.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Valuation date. Defaults to today.")
	f.StringVar(&c.portfolio, "p", "", "Portfolio to report on. Defaults to the only portfolio if one exists.")
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio currency.")
	f.StringVar(&c.sortBy, "sort", "", "Sort field (ticker, name, quantity, costBasis, currentPrice, marketValue, gain, gainPercent, totalDividends, lastTransactionDate, portfolioPercentage)")
	f.BoolVar(&c.desc, "desc", false, "Sort in descending order")
	f.IntVar(&c.page, "page", 0, "Page number, starting at 1")
	f.IntVar(&c.limit, "limit", 0, "Number of positions per page. 0 disables pagination.")
	f.BoolVar(&c.json, "json", false, "Output the report as JSON instead of markdown")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	opt := divtrack.PositionsOptions{
		Currency:   c.currency,
		SortBy:     c.sortBy,
		Descending: c.desc,
		Page:       c.page,
		Limit:      c.limit,
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
	portfolio, err := selectPortfolio(book, c.portfolio)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	fx := divtrack.NewResolver(market, quotes.NewClient(""))
	report, err := divtrack.NewPositionsReport(ctx, book, market, fx, *owner, portfolio, opt)
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
	printMarkdown(renderer.PositionsMarkdown(report))
	return subcommands.ExitSuccess
}

// loadAll loads the book and the market data together.
func loadAll() (*divtrack.Book, *divtrack.MarketData, error) {
	book, err := DecodeBook()
	if err != nil {
		return nil, nil, err
	}
	market, err := DecodeMarketData()
	if err != nil {
		return nil, nil, err
	}
	return book, market, nil
}
