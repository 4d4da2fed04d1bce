// Command dvt tracks a dividend portfolio: its positions, their value and
// the income they generate.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/divtrack/divtrack/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion wires shell completion. It exits early when invoked by the
// shell completion machinery.
func completion() {
	dates := predict.Nothing
	currencies := predict.Set{"EUR", "USD", "GBP", "CHF", "JPY"}
	portfolios := predict.Nothing

	txFlags := map[string]complete.Predictor{
		"d": dates,
		"p": portfolios,
		"s": predict.Nothing,
		"m": predict.Nothing,
	}
	reportFlags := map[string]complete.Predictor{
		"d":    dates,
		"p":    portfolios,
		"c":    currencies,
		"json": predict.Nothing,
	}

	dvt := &complete.Command{
		Sub: map[string]*complete.Command{
			"create":    {Flags: map[string]complete.Predictor{"p": portfolios, "n": predict.Nothing, "c": currencies}},
			"declare":   {Flags: map[string]complete.Predictor{"s": predict.Nothing, "t": predict.Nothing, "n": predict.Nothing, "c": currencies}},
			"fetch":     {Flags: map[string]complete.Predictor{"from": dates, "api-key": predict.Nothing}},
			"buy":       {Flags: txFlags},
			"sell":      {Flags: txFlags},
			"dividend":  {Flags: txFlags},
			"tax":       {Flags: txFlags},
			"split":     {Flags: txFlags},
			"fmt":       {},
			"positions": {Flags: reportFlags},
			"summary":   {Flags: reportFlags},
			"dividends": {Flags: reportFlags},
			"monthly":   {Flags: reportFlags},
			"yield":     {Flags: reportFlags},
			"review":    {Flags: map[string]complete.Predictor{"p": portfolios}},
			"topic":     {},
		},
		Flags: map[string]complete.Predictor{
			"market-path":     predict.Dirs("*"),
			"ledger-file":     predict.Files("*.jsonl"),
			"portfolios-file": predict.Files("*.jsonl"),
			"owner":           predict.Nothing,
		},
	}
	dvt.Complete("dvt")
}
