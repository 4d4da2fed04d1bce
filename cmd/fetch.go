package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/divtrack/divtrack"
	"github.com/divtrack/divtrack/quotes"
	"github.com/google/subcommands"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	from   string
	apiKey string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch prices and exchange rates from the provider" }
func (*fetchCmd) Usage() string {
	return `dvt fetch [-from <date>] [-api-key <key>]

  Fetches daily closing prices for every declared listing, and refreshes the
  recorded exchange rate pairs, then persists the market data folder.

  The API key can also be set via the DIVTRACK_API_KEY environment variable.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "-1m", "Start date of the price history to fetch (supports relative dates like -1m)")
	f.StringVar(&c.apiKey, "api-key", "", "Provider API key. Defaults to $DIVTRACK_API_KEY.")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := divtrack.ParseDate(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing from date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to := divtrack.Today()

	market, err := DecodeMarketData()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	updater := quotes.NewUpdater(quotes.NewClient(c.apiKey))

	// A failing listing or pair is skipped, the rest is still persisted.
	if err := updater.UpdatePrices(ctx, market, from, to); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: some prices could not be fetched: %v\n", err)
	}
	if err := updater.UpdateRates(ctx, market); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: some rates could not be fetched: %v\n", err)
	}

	if err := EncodeMarketData(market); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully updated market data in %s\n", *marketPath)
	return subcommands.ExitSuccess
}
