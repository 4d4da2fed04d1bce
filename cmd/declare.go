package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/divtrack/divtrack"
	"github.com/google/subcommands"
)

// declareCmd holds the flags for the 'declare' subcommand.
type declareCmd struct {
	id       string
	ticker   string
	name     string
	currency string
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "declare a new listing in the market data" }
func (*declareCmd) Usage() string {
	return `dvt declare -s <listing-id> -t <ticker> [-n <name>] -c <currency>

  Declares a listing so transactions can reference it. The listing id is
  INSTRUMENT.EXCHANGE, e.g. US0378331005.XNAS for Apple on Nasdaq.
`
}

func (c *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "s", "", "Listing identifier (INSTRUMENT.EXCHANGE)")
	f.StringVar(&c.ticker, "t", "", "User chosen ticker for the listing")
	f.StringVar(&c.name, "n", "", "Human readable name of the listing")
	f.StringVar(&c.currency, "c", "", "Currency the listing trades in (e.g. USD, EUR)")
}

func (c *declareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.ticker == "" || c.currency == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	id, err := divtrack.ParseListingID(c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	listing, err := divtrack.NewListing(id, c.ticker, c.name, c.currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	market, err := DecodeMarketData()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if err := market.Add(listing); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if err := EncodeMarketData(market); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully declared %s as %q\n", id, c.ticker)
	return subcommands.ExitSuccess
}
