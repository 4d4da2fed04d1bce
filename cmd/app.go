// Package cmd implements the CLI application to track a dividend portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/divtrack/divtrack"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&createCmd{}, "portfolios")

	c.Register(&declareCmd{}, "market data")
	c.Register(&fetchCmd{}, "market data")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&dividendCmd{}, "transactions")
	c.Register(&taxCmd{}, "transactions")
	c.Register(&splitCmd{}, "transactions")
	c.Register(&fmtCmd{}, "transactions")

	c.Register(&positionsCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&dividendsCmd{}, "reports")
	c.Register(&monthlyCmd{}, "reports")
	c.Register(&yieldCmd{}, "reports")
	c.Register(&reviewCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var marketPath = flag.String("market-path", ".market", "Path to the market data folder")
var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var portfoliosFile = flag.String("portfolios-file", "portfolios.jsonl", "Path to the portfolio definitions file (JSONL format)")
var owner = flag.String("owner", defaultOwner(), "Owner of the portfolios to operate on. Defaults to $DIVTRACK_OWNER then $USER.")

func defaultOwner() string {
	if o := os.Getenv("DIVTRACK_OWNER"); o != "" {
		return o
	}
	return os.Getenv("USER")
}

// DecodeMarketData decodes market data from the app market path folder. A
// missing folder yields an empty database.
func DecodeMarketData() (*divtrack.MarketData, error) {
	return divtrack.DecodeMarketData(*marketPath)
}

// EncodeMarketData encodes market data into the app market path folder.
func EncodeMarketData(m *divtrack.MarketData) error {
	return divtrack.EncodeMarketData(*marketPath, m)
}

// DecodeBook loads the portfolio definitions and the ledger from the app
// default files. Missing files yield an empty book.
func DecodeBook() (*divtrack.Book, error) {
	book := divtrack.NewBook()

	f, err := os.Open(*portfoliosFile)
	if err == nil {
		book, err = divtrack.DecodePortfolios(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("could not decode portfolios file %q: %w", *portfoliosFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not open portfolios file %q: %w", *portfoliosFile, err)
	}

	l, err := os.Open(*ledgerFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return book, nil
		}
		return nil, fmt.Errorf("could not open ledger file %q: %w", *ledgerFile, err)
	}
	defer l.Close()

	ledger, err := divtrack.DecodeLedger(l)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", *ledgerFile, err)
	}
	book.SetLedger(ledger)
	return book, nil
}

// EncodePortfolios persists the portfolio definitions into the app default
// file.
func EncodePortfolios(book *divtrack.Book) error {
	f, err := os.Create(*portfoliosFile)
	if err != nil {
		return fmt.Errorf("could not open portfolios file %q: %w", *portfoliosFile, err)
	}
	defer f.Close()
	return divtrack.EncodePortfolios(f, book)
}

// RecordTransaction validates a transaction against the book and market data,
// then appends the validated form to the app default ledger file.
func RecordTransaction(tx divtrack.Transaction) subcommands.ExitStatus {
	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	market, err := DecodeMarketData()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	validated, err := book.Record(market, tx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := divtrack.EncodeTransaction(f, validated); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended %s transaction to %s\n", validated.What(), *ledgerFile)
	return subcommands.ExitSuccess
}

// selectPortfolio returns the portfolio to report on. When id is empty and
// the owner has exactly one portfolio, that one is used.
func selectPortfolio(b *divtrack.Book, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	var ids []string
	for p := range b.Portfolios(*owner) {
		ids = append(ids, p.ID)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no portfolio found for owner %q", *owner)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("several portfolios found (%s), use -p to select one", strings.Join(ids, ", "))
	}
}
