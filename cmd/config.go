package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonelpanic8/keepbook/feed"
)

// Config is the application configuration, loaded from a YAML file.
type Config struct {
	Currency  string          `yaml:"currency"`
	Staleness StalenessConfig `yaml:"staleness"`
	Feed      FeedConfig      `yaml:"feed"`
}

// StalenessConfig configures the balance staleness thresholds: a global
// default, overridable per connection (account-level overrides live in
// the store itself).
type StalenessConfig struct {
	Default     Duration            `yaml:"default"`
	Connections map[string]Duration `yaml:"connections"`
}

// FeedConfig configures the spot quote feed.
type FeedConfig struct {
	Source string       `yaml:"source"`
	Quotes []feed.Quote `yaml:"quotes"`
}

// Duration is a time.Duration that unmarshals from its text form ("24h").
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadConfig reads the configuration file. A missing file yields the
// defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Currency:  "USD",
		Staleness: StalenessConfig{Default: Duration(24 * time.Hour)},
	}
	content, err := os.ReadFile(*configFile)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %q: %w", *configFile, err)
	}
	return cfg, nil
}
