// Package config loads the storymap CLI configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatEDN  = "edn"
)

// Config represents the CLI configuration.
type Config struct {
	LogLevel slog.Level    `yaml:"log_level"`
	Debounce time.Duration `yaml:"debounce"`
	Format   string        `yaml:"format"`
	Pretty   bool          `yaml:"pretty"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)), validation.Max(10*time.Second)),
		validation.Field(&c.Format, validation.Required, validation.In(FormatJSON, FormatEDN)),
	)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: slog.LevelWarn,
		Debounce: 150 * time.Millisecond,
		Format:   FormatJSON,
	}
}

// Load reads filename over the defaults, expanding environment variables.
// A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
