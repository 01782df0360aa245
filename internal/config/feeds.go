package config

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// Identity strategies
const (
	StrategyExact    = "exact"
	StrategyFallback = "fallback"
)

// FeedsConfig is the feed catalog loaded from YAML
type FeedsConfig struct {
	Feeds map[string]FeedConfig `mapstructure:"feeds"`
}

// FeedConfig describes one feed family
type FeedConfig struct {
	URLs          []string          `mapstructure:"urls"`
	Columns       map[string]string `mapstructure:"columns"` // destination field -> source column
	Identity      IdentityConfig    `mapstructure:"identity"`
	Authoritative bool              `mapstructure:"authoritative"` // unresolved players are created
	Period        string            `mapstructure:"period"`        // none, season or week
	Categories    []string          `mapstructure:"categories"`
	Attributes    []string          `mapstructure:"attributes"` // bio, league
	Procedures    []string          `mapstructure:"procedures"` // called after a clean run
}

// IdentityConfig selects how rows are matched to players
type IdentityConfig struct {
	Strategy   string `mapstructure:"strategy"`
	Column     string `mapstructure:"column"`
	NameColumn string `mapstructure:"name_column"`
	Backfill   bool   `mapstructure:"backfill"`
}

// LoadFeeds reads and validates the feed catalog at path
func LoadFeeds(path string) (*FeedsConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read feed catalog %s: %w", path, err)
	}

	var cfg FeedsConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feed catalog %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feed catalog %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks every family
func (c *FeedsConfig) Validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("no feeds configured")
	}
	for _, name := range c.Names() {
		if err := c.Feeds[name].Validate(); err != nil {
			return fmt.Errorf("feed %s: %w", name, err)
		}
	}
	return nil
}

// Names returns the configured family names, sorted
func (c *FeedsConfig) Names() []string {
	names := make([]string, 0, len(c.Feeds))
	for n := range c.Feeds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks a single family
func (f FeedConfig) Validate() error {
	if len(f.URLs) == 0 {
		return fmt.Errorf("at least one url is required")
	}

	switch f.Identity.Strategy {
	case StrategyExact, StrategyFallback:
	default:
		return fmt.Errorf("unknown identity strategy %q", f.Identity.Strategy)
	}

	if f.Identity.Column == "" {
		return fmt.Errorf("identity column is required")
	}

	if f.Identity.Backfill && f.Identity.Strategy != StrategyFallback {
		return fmt.Errorf("backfill requires the %s strategy", StrategyFallback)
	}

	switch f.Period {
	case "", "none", "season", "week":
	default:
		return fmt.Errorf("unknown period %q", f.Period)
	}

	if len(f.Categories) > 0 && (f.Period == "" || f.Period == "none") {
		return fmt.Errorf("categories require a period")
	}

	return nil
}
