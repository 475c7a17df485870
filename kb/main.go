// Command kb inspects and reconciles a keepbook portfolio store.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/colonelpanic8/keepbook/cmd"
)

func main() {
	// Shell completion runs before flag parsing and exits when invoked by
	// the completion machinery.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"history": {Flags: map[string]complete.Predictor{
				"g":        predict.Set{"full", "hourly", "daily", "weekly", "monthly", "yearly"},
				"strategy": predict.Set{"first", "last"},
			}},
			"stale":  {},
			"dedupe": {},
			"update": {},
		},
		Flags: map[string]complete.Predictor{
			"store":  predict.Dirs("*"),
			"config": predict.Files("*.yaml"),
		},
	}
	completion.Complete("kb")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
