// Package config loads and validates tool configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/guanyuming-he/newscrawl/internal/fetcher"
	"github.com/guanyuming-he/newscrawl/internal/policy"
)

// Config captures every knob the CLI tools read. The struct is
// decoupled from Viper so subsystems stay testable without a config
// file.
type Config struct {
	Logging LoggingConfig                `mapstructure:"logging"`
	Crawler CrawlerConfig                `mapstructure:"crawler"`
	Index   IndexConfig                  `mapstructure:"index"`
	Search  SearchConfig                 `mapstructure:"search"`
	Updater UpdaterConfig                `mapstructure:"updater"`
	Remove  RemoveConfig                 `mapstructure:"remove"`
	Policy  map[string]policy.RuleConfig `mapstructure:"policy"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig governs the crawl loop and its HTTP client.
type CrawlerConfig struct {
	UserAgent      string   `mapstructure:"user_agent"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	IndexLimit     uint64   `mapstructure:"index_limit"`
	Seeds          []string `mapstructure:"seeds"`
}

// Timeout converts the HTTP timeout into a duration.
func (c CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IndexConfig tunes the document store.
type IndexConfig struct {
	// FlushThreshold raises the auto-commit batch size for bulk
	// indexing runs; 0 keeps the engine default.
	FlushThreshold int `mapstructure:"flush_threshold"`
}

// SearchConfig tunes the query side.
type SearchConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

// UpdaterConfig drives feed ingestion and the capacity bound.
type UpdaterConfig struct {
	Feeds    []string `mapstructure:"feeds"`
	NumToAdd int      `mapstructure:"num_to_add"`
	MaxDocs  uint64   `mapstructure:"max_docs"`
}

// RemoveConfig holds the per-host purge probabilities used by the
// remove tool.
type RemoveConfig struct {
	PurgeProbabilities map[string]float64 `mapstructure:"purge_probabilities"`
}

// Load builds a Config from an optional file plus environment
// variables (prefix NEWSCRAWL, dots become underscores).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("newscrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.newscrawl")
		// Missing file is fine; defaults and env cover everything.
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("crawler.user_agent", fetcher.DefaultUserAgent)
	v.SetDefault("crawler.timeout_seconds", 30)
	v.SetDefault("crawler.index_limit", 0)
	v.SetDefault("index.flush_threshold", 0)
	v.SetDefault("search.max_results", 64)
	v.SetDefault("updater.num_to_add", 1000)
	v.SetDefault("updater.max_docs", 100000)
	v.SetDefault("updater.feeds", []string{
		"https://feeds.a.dj.com/rss/WSJcomUSBusiness.xml",
		"https://feeds.a.dj.com/rss/RSSMarketsMain.xml",
		"http://rss.nytimes.com/services/xml/rss/nyt/Business.xml",
		"http://www.economist.com/feeds/print-sections/77/business.xml",
		"http://www.business-standard.com/rss/latest.rss",
		"http://feeds.harvardbusiness.org/harvardbusiness?format=xml",
		"https://economictimes.indiatimes.com/rssfeedsdefault.cms",
	})
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be > 0")
	}
	if c.Updater.NumToAdd <= 0 {
		return fmt.Errorf("updater.num_to_add must be > 0")
	}
	for host, p := range c.Remove.PurgeProbabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("remove.purge_probabilities[%s] must be in [0, 1]", host)
		}
	}
	return nil
}

// PolicyTable compiles the configured per-host rules.
func (c Config) PolicyTable() (*policy.Table, error) {
	return policy.FromConfig(c.Policy)
}
