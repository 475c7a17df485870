package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/colonelpanic8/keepbook"
	"github.com/colonelpanic8/keepbook/renderer"
)

type historyCmd struct {
	start       string
	end         string
	granularity string
	strategy    string
	interval    int64
	prices      bool
	precision   int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the portfolio total value over time" }
func (*historyCmd) Usage() string {
	return `kb history [-s <start>] [-e <end>] [-g <granularity>] [-strategy first|last]

  Computes the portfolio total value at every instant the composition or a
  relevant price changed, reduced to the requested granularity.

Usage Examples:
# Daily history of the current year, keeping the last point of each day.
$ kb history -s 2026-01-01 -g daily -strategy last

`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Inclusive start date (YYYY-MM-DD).")
	f.StringVar(&c.end, "e", "", "Inclusive end date (YYYY-MM-DD).")
	f.StringVar(&c.granularity, "g", "full", "Granularity: full, hourly, daily, weekly, monthly, yearly.")
	f.Int64Var(&c.interval, "interval", 0, "Custom bucket interval in milliseconds. Overrides -g.")
	f.StringVar(&c.strategy, "strategy", "last", "Coalesce strategy within a bucket: first or last.")
	f.BoolVar(&c.prices, "prices", true, "Also derive points from price history.")
	f.IntVar(&c.precision, "precision", 0, "Rounding precision handed to the valuation (0 keeps exact values).")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}

	granularity := keepbook.Custom(c.interval)
	if c.interval <= 0 {
		granularity, err = keepbook.ParseGranularity(c.granularity)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	strategy, err := keepbook.ParseCoalesceStrategy(c.strategy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	store, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	system := keepbook.NewSystem(store, store, keepbook.NewSnapshotValuer(store, store))
	response, err := system.History(ctx, keepbook.HistoryRequest{
		Currency:      cfg.Currency,
		StartDate:     c.start,
		EndDate:       c.end,
		Granularity:   granularity,
		Strategy:      strategy,
		IncludePrices: c.prices,
		Precision:     int32(c.precision),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing history: %v\n", err)
		return subcommands.ExitFailure
	}

	display(renderer.RenderHistory(response))
	return subcommands.ExitSuccess
}
