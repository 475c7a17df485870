package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/colonelpanic8/keepbook/feed"
)

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch the latest spot quotes into the store" }
func (*updateCmd) Usage() string {
	return `kb update

  Fetches the latest value of every quote endpoint configured under
  feed.quotes and records it as today's spot point. A later fetch for the
  same day overwrites the earlier one.

`
}

func (*updateCmd) SetFlags(*flag.FlagSet) {}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := Logger()

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(cfg.Feed.Quotes) == 0 {
		fmt.Fprintln(os.Stderr, "No quotes configured under feed.quotes, nothing to update.")
		return subcommands.ExitSuccess
	}

	store, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	client := feed.NewClient(cfg.Feed.Source, log)
	recorded, err := client.Update(ctx, store, cfg.Feed.Quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating quotes: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := SaveStore(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving store: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %d of %d quotes.\n", recorded, len(cfg.Feed.Quotes))
	return subcommands.ExitSuccess
}
