// Package config loads Parley host configuration from YAML. Values omitted
// from the file fall back to documented defaults; invalid values fail loudly
// at load time rather than deep inside a turn.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file omits a value.
const (
	DefaultBackend            = "openai"
	DefaultTemperature        = 0.7
	DefaultMaxToolIterations  = 8
	DefaultMaxHistoryMessages = 20
	DefaultTimezone           = "UTC"
)

// Config captures host-level settings for the orchestration core.
type Config struct {
	// Backend selects the ChatBackend provider: "openai" or "anthropic".
	Backend string `yaml:"backend"`
	// Model is the provider-specific model identifier; empty uses the
	// adapter's default.
	Model string `yaml:"model"`
	// Temperature for completions.
	Temperature float64 `yaml:"temperature"`
	// MaxToolIterations bounds the tool-calling loop per turn.
	MaxToolIterations int `yaml:"max_tool_iterations"`
	// MaxHistoryMessages bounds raw history included in full-context mode.
	MaxHistoryMessages int `yaml:"max_history_messages"`
	// IncludeTimeContext adds a current-time system message to prompts.
	IncludeTimeContext bool `yaml:"include_time_context"`
	// Timezone is an IANA zone name for the time context block.
	Timezone string `yaml:"timezone"`
}

// Default returns a config populated with defaults.
func Default() *Config {
	return &Config{
		Backend:            DefaultBackend,
		Temperature:        DefaultTemperature,
		MaxToolIterations:  DefaultMaxToolIterations,
		MaxHistoryMessages: DefaultMaxHistoryMessages,
		Timezone:           DefaultTimezone,
	}
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges after load or manual construction.
func (c *Config) Validate() error {
	switch c.Backend {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.MaxToolIterations < 1 {
		return fmt.Errorf("config: max_tool_iterations must be at least 1")
	}
	if c.MaxHistoryMessages < 1 {
		return fmt.Errorf("config: max_history_messages must be at least 1")
	}

	return nil
}
