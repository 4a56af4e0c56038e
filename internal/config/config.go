// Package config loads analyzer settings from YAML with compiled-in
// defaults. Every field is optional; an absent file yields the defaults.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/aggregate"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/classify"
)

// SampleLimits bounds the example rows retained per bucket during
// aggregation.
type SampleLimits struct {
	NeedsReview int `yaml:"needs_review"`
	Other       int `yaml:"other"`
	Discipline  int `yaml:"discipline"`
}

// Config holds every tunable the analyzer accepts. Discipline rules, if
// given, replace the built-in table wholesale: partial overrides would
// make first-match-wins ordering ambiguous.
type Config struct {
	Workers         int                       `yaml:"workers"`
	DBPath          string                    `yaml:"db_path"`
	SampleLimits    SampleLimits              `yaml:"sample_limits"`
	DisciplineRules []classify.DisciplineRule `yaml:"discipline_rules"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		SampleLimits: SampleLimits{
			NeedsReview: aggregate.DefaultReviewSampleLimit,
			Other:       aggregate.DefaultOtherSampleLimit,
			Discipline:  aggregate.DefaultDisciplineSampleLimit,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the analyzer cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.SampleLimits.NeedsReview < 0 || c.SampleLimits.Other < 0 || c.SampleLimits.Discipline < 0 {
		return fmt.Errorf("sample limits must be >= 0")
	}
	for i, rule := range c.DisciplineRules {
		if rule.Name == "" {
			return fmt.Errorf("discipline rule %d has no name", i)
		}
		if len(rule.Substrings) == 0 {
			return fmt.Errorf("discipline rule %q has no substrings", rule.Name)
		}
	}
	return nil
}

// ClassifyOptions translates the config into classifier options.
func (c *Config) ClassifyOptions() []classify.Option {
	var opts []classify.Option
	if len(c.DisciplineRules) > 0 {
		opts = append(opts, classify.WithDisciplineRules(c.DisciplineRules))
	}
	return opts
}

// StateOptions translates the config into aggregation options.
func (c *Config) StateOptions() []aggregate.Option {
	return []aggregate.Option{
		aggregate.WithReviewSampleLimit(c.SampleLimits.NeedsReview),
		aggregate.WithOtherSampleLimit(c.SampleLimits.Other),
		aggregate.WithDisciplineSampleLimit(c.SampleLimits.Discipline),
	}
}
