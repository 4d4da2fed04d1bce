package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/divtrack/divtrack"
	"github.com/divtrack/divtrack/advisor"
	"github.com/divtrack/divtrack/quotes"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// reviewCmd holds the flags for the 'review' subcommand.
type reviewCmd struct {
	portfolio string
}

func (*reviewCmd) Name() string     { return "review" }
func (*reviewCmd) Synopsis() string { return "start an interactive AI review of the portfolio" }
func (*reviewCmd) Usage() string {
	return `dvt review [-p <portfolio>] [initial question]

  Starts an interactive session with an AI advisor that can read the
  portfolio reports and search for market news.
`
}

func (c *reviewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio to review. Defaults to the only portfolio if one exists.")
}

func (c *reviewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
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

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	session := &advisor.Session{
		Book:      book,
		Market:    market,
		Resolver:  divtrack.NewResolver(market, quotes.NewClient("")),
		Owner:     *owner,
		Portfolio: portfolio,
	}

	analyst := advisor.NewAnalyst()
	accountant := advisor.NewAccountant(session)
	a := advisor.New(os.Stdout, os.Stdin, analyst, accountant)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Advisor failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
