// Package cmd implements the CLI application to inspect and reconcile a
// portfolio store.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/colonelpanic8/keepbook"
)

// Register registers all subcommands. A main package calls Register()
// and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&historyCmd{}, "reports")
	c.Register(&staleCmd{}, "reports")
	c.Register(&dedupeCmd{}, "ingestion")
	c.Register(&updateCmd{}, "ingestion")
}

// As a CLI application it has a very short lived lifecycle, so it is ok
// to use global variables for the shared flags.

var storePath = flag.String("store", "keepbook-data", "Path to the store folder (JSONL files)")
var configFile = flag.String("config", "keepbook.yaml", "Path to the configuration file")
var verbose = flag.Bool("v", false, "Enable debug logging")

// Logger returns the application logger at the configured verbosity.
func Logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// OpenStore loads the store folder. A missing folder yields an empty
// store so read-only commands work on a fresh setup.
func OpenStore() (*keepbook.MemStore, error) {
	m, err := keepbook.DecodeStore(*storePath)
	if os.IsNotExist(err) {
		logger := Logger()
		logger.Warn().Str("store", *storePath).Msg("store does not exist, using an empty one")
		return keepbook.NewMemStore(), nil
	}
	return m, err
}

// SaveStore writes the store back to the store folder.
func SaveStore(m *keepbook.MemStore) error {
	return keepbook.EncodeStore(*storePath, m)
}

// display renders a markdown report for the terminal; when rendering is
// not possible the raw markdown is still readable.
func display(markdown string) {
	out, err := glamour.Render(markdown, "auto")
	if err != nil {
		fmt.Println(markdown)
		return
	}
	fmt.Print(out)
}
