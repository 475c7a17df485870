package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/colonelpanic8/keepbook"
	"github.com/colonelpanic8/keepbook/renderer"
)

type staleCmd struct {
	staleOnly bool
}

func (*staleCmd) Name() string     { return "stale" }
func (*staleCmd) Synopsis() string { return "report which accounts have stale balance data" }
func (*staleCmd) Usage() string {
	return `kb stale [-only]

  Judges the age of every account's latest balance snapshot against its
  staleness threshold (account override, then connection, then default).

`
}

func (c *staleCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.staleOnly, "only", false, "Only list stale accounts.")
}

func (c *staleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}

	now := time.Now()
	var rows []renderer.AccountStaleness
	for _, account := range accounts {
		accountCfg, err := store.GetAccountConfig(ctx, account.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config for %q: %v\n", account.ID, err)
			return subcommands.ExitFailure
		}

		var connectionCfg keepbook.ConnectionConfig
		if d, ok := cfg.Staleness.Connections[account.Connection]; ok {
			threshold := time.Duration(d)
			connectionCfg.StalenessThreshold = &threshold
		}
		threshold := keepbook.ResolveBalanceThreshold(accountCfg, connectionCfg, time.Duration(cfg.Staleness.Default))

		snapshots, err := store.BalanceSnapshots(ctx, account.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading snapshots for %q: %v\n", account.ID, err)
			return subcommands.ExitFailure
		}
		var lastSync *time.Time
		if n := len(snapshots); n > 0 {
			lastSync = &snapshots[n-1].Time
		}

		result := keepbook.CheckStaleness(lastSync, threshold, now)
		if c.staleOnly && !result.IsStale {
			continue
		}
		rows = append(rows, renderer.NewAccountStaleness(account, lastSync, result))
	}

	display(renderer.RenderStaleness(rows))
	return subcommands.ExitSuccess
}
