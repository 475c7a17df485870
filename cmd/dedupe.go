package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/colonelpanic8/keepbook"
)

type dedupeCmd struct {
	dryRun bool
}

func (*dedupeCmd) Name() string     { return "dedupe" }
func (*dedupeCmd) Synopsis() string { return "merge transactions that arrived under rotating identifiers" }
func (*dedupeCmd) Usage() string {
	return `kb dedupe [-n]

  Collapses stored transactions that represent the same real-world event
  under different identifiers into one record per event, keeping the last
  occurrence's contents at the first-seen position.

`
}

func (c *dedupeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "Report what would be merged without writing the store.")
}

func (c *dedupeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := Logger()

	store, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	before := store.Transactions()
	after := keepbook.DedupeTransactions(before)
	merged := len(before) - len(after)
	log.Info().Int("transactions", len(before)).Int("merged", merged).Msg("deduplication complete")

	if c.dryRun || merged == 0 {
		fmt.Printf("%d transactions, %d would be merged\n", len(before), merged)
		return subcommands.ExitSuccess
	}

	store.ReplaceTransactions(after)
	if err := SaveStore(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving store: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d transactions, %d merged\n", len(before), merged)
	return subcommands.ExitSuccess
}
