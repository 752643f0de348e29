package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleConfig is the data form of one host's rule, as loaded from
// configuration.
type RuleConfig struct {
	// RecursePrefixes: recurse when the path starts with any of
	// these. With an empty list, paths matched by the index rules
	// below are still recursed (recurse is a superset of index).
	RecursePrefixes []string `mapstructure:"recurse_prefixes"`
	// IndexPrefixes: index when the path starts with any of these.
	IndexPrefixes []string `mapstructure:"index_prefixes"`
	// IndexPattern: index when the path matches this regexp.
	IndexPattern string `mapstructure:"index_pattern"`
	// IndexDashWords: index paths that look like article slugs
	// (word-word-word).
	IndexDashWords bool `mapstructure:"index_dash_words"`
	// IndexDateInPath: index paths embedding a date segment.
	IndexDateInPath bool `mapstructure:"index_date_in_path"`
}

// FromConfig builds a rules table from per-host configs.
func FromConfig(hosts map[string]RuleConfig) (*Table, error) {
	table := NewTable()
	for host, cfg := range hosts {
		rule, err := buildRule(cfg)
		if err != nil {
			return nil, fmt.Errorf("policy for %s: %w", host, err)
		}
		table.Set(host, rule)
	}
	return table, nil
}

func buildRule(cfg RuleConfig) (PathRule, error) {
	var pattern *regexp.Regexp
	if cfg.IndexPattern != "" {
		compiled, err := regexp.Compile(cfg.IndexPattern)
		if err != nil {
			return nil, err
		}
		pattern = compiled
	}

	recursePrefixes := append([]string(nil), cfg.RecursePrefixes...)
	indexPrefixes := append([]string(nil), cfg.IndexPrefixes...)
	dashWords := cfg.IndexDashWords
	dateInPath := cfg.IndexDateInPath

	return func(path string) Decision {
		index := hasPrefix(path, indexPrefixes) ||
			(pattern != nil && pattern.MatchString(path)) ||
			(dashWords && HasDashSeparatedWords(path)) ||
			(dateInPath && HasDateInPath(path))
		// Indexable paths are always worth exploring too.
		recurse := index || hasPrefix(path, recursePrefixes)
		return Decision{Recurse: recurse, Index: index}
	}, nil
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
