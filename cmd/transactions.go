package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/divtrack/divtrack"
	"github.com/google/subcommands"
)

// txFlags holds the flags shared by every transaction command.
type txFlags struct {
	date      string
	portfolio string
	security  string
	memo      string
}

func (c *txFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", divtrack.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "p", "", "Portfolio the transaction belongs to. Defaults to the only portfolio if one exists.")
	f.StringVar(&c.security, "s", "", "Listing identifier (INSTRUMENT.EXCHANGE) or declared ticker")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the transaction")
}

// resolve parses the shared flags against the loaded book and market data.
func (c *txFlags) resolve() (day divtrack.Date, portfolio string, listing divtrack.ListingID, err error) {
	day, err = divtrack.ParseDate(c.date)
	if err != nil {
		return day, "", "", fmt.Errorf("parsing date: %w", err)
	}

	book, err := DecodeBook()
	if err != nil {
		return day, "", "", err
	}
	portfolio, err = selectPortfolio(book, c.portfolio)
	if err != nil {
		return day, "", "", err
	}

	// A declared ticker is accepted in place of the full listing id.
	market, err := DecodeMarketData()
	if err != nil {
		return day, "", "", err
	}
	if l := market.ByTicker(c.security); l != nil {
		return day, portfolio, l.ID(), nil
	}
	listing, err = divtrack.ParseListingID(c.security)
	return day, portfolio, listing, err
}

// --- Buy Command ---

type buyCmd struct {
	txFlags
	quantity float64
	amount   float64
	currency string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares to open or add to a position" }
func (*buyCmd) Usage() string {
	return `dvt buy -d <date> -s <security> -q <quantity> -a <amount> [-c <currency>] [-m <memo>]

  Purchases shares of a listing for a total amount. The currency defaults to
  the listing currency.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.amount, "a", 0, "Total cost of the purchase")
	f.StringVar(&c.currency, "c", "", "Currency of the amount. Defaults to the listing currency.")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity <= 0 || c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, portfolio, listing, err := c.resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	tx := divtrack.NewBuy(day, portfolio, listing, c.quantity, divtrack.M(c.amount, c.currency))
	tx.SetMemo(c.memo)
	return RecordTransaction(tx)
}

// --- Sell Command ---

type sellCmd struct {
	txFlags
	quantity float64
	amount   float64
	currency string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares to trim or close a position" }
func (*sellCmd) Usage() string {
	return `dvt sell -d <date> -s <security> [-q <quantity>] -a <amount> [-c <currency>] [-m <memo>]

  Sells shares of a listing for a total amount. If the quantity is missing,
  all shares held on that date are sold.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Float64Var(&c.quantity, "q", 0, "Number of shares, if missing all shares are sold")
	f.Float64Var(&c.amount, "a", 0, "Total proceeds from the sale")
	f.StringVar(&c.currency, "c", "", "Currency of the amount. Defaults to the listing currency.")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity < 0 || c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, portfolio, listing, err := c.resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	tx := divtrack.NewSell(day, portfolio, listing, c.quantity, divtrack.M(c.amount, c.currency))
	tx.SetMemo(c.memo)
	return RecordTransaction(tx)
}

// --- Dividend Command ---

type dividendCmd struct {
	txFlags
	amount   float64
	currency string
}

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a dividend payment for a listing" }
func (*dividendCmd) Usage() string {
	return `dvt dividend -d <date> -s <security> -a <amount> [-c <currency>] [-m <memo>]

  Records a dividend payment. The amount is the gross total received, not per
  share. Withholding tax is recorded separately with 'dvt tax'.
`
}

func (c *dividendCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Float64Var(&c.amount, "a", 0, "Total gross dividend received")
	f.StringVar(&c.currency, "c", "", "Currency of the amount. Defaults to the listing currency.")
}

func (c *dividendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, portfolio, listing, err := c.resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	tx := divtrack.NewDividend(day, portfolio, listing, divtrack.M(c.amount, c.currency))
	tx.SetMemo(c.memo)
	return RecordTransaction(tx)
}

// --- Tax Command ---

type taxCmd struct {
	txFlags
	amount   float64
	currency string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "record withholding tax on a dividend" }
func (*taxCmd) Usage() string {
	return `dvt tax -d <date> -s <security> -a <amount> [-c <currency>] [-m <memo>]

  Records withholding tax retained on a dividend, usually on the same date as
  the dividend itself. Tax never affects the position or its cost basis.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Float64Var(&c.amount, "a", 0, "Tax withheld, as a positive amount")
	f.StringVar(&c.currency, "c", "", "Currency of the amount. Defaults to the listing currency.")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, portfolio, listing, err := c.resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	tx := divtrack.NewTax(day, portfolio, listing, divtrack.M(c.amount, c.currency))
	tx.SetMemo(c.memo)
	return RecordTransaction(tx)
}

// --- Split Command ---

type splitCmd struct {
	txFlags
	num int64
	den int64
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "record a stock split for a listing" }
func (*splitCmd) Usage() string {
	return `dvt split -d <date> -s <security> -num <n> [-den <n>] [-m <memo>]

  Records a stock split, num new shares for den old shares. A 4-for-1 split
  is -num 4, a 1-for-10 reverse split is -num 1 -den 10.
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Int64Var(&c.num, "num", 0, "New share count of the split ratio")
	f.Int64Var(&c.den, "den", 1, "Old share count of the split ratio")
}

func (c *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.num <= 0 || c.den <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, portfolio, listing, err := c.resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	tx := divtrack.NewSplit(day, portfolio, listing, c.num, c.den)
	tx.SetMemo(c.memo)
	return RecordTransaction(tx)
}
