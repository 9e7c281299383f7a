// Package config loads and validates per-project validation settings from
// the .auto-claude directory. A missing or broken config never disables
// validation; the loader falls back to safe defaults and records what went
// wrong.
package config

import (
	"github.com/jlwainwright/Auto-Claude/internal/rule"
)

// ConfigDirName is the per-project settings directory.
const ConfigDirName = ".auto-claude"

// ConfigFileNames are the recognized config files, in precedence order.
// The first one found wins; the rest are ignored.
var ConfigFileNames = []string{
	"output-validation.json",
	"output-validation.yaml",
	"output-validation.yml",
}

// Config is the effective validation configuration after merging a project
// config file over the defaults.
type Config struct {
	// Enabled turns validation on or off entirely.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// StrictMode escalates medium and low severity matches from warnings
	// to blocks.
	StrictMode bool `json:"strict_mode" yaml:"strict_mode"`

	// AllowedPaths are glob patterns for paths exempt from validation.
	AllowedPaths []string `json:"allowed_paths" yaml:"allowed_paths"`

	// DisabledRules lists builtin or custom rule ids to switch off.
	DisabledRules []string `json:"disabled_rules" yaml:"disabled_rules"`

	// SeverityOverrides remaps the severity of specific rules by id.
	SeverityOverrides map[string]rule.Severity `json:"severity_overrides" yaml:"severity_overrides"`

	// CustomRules extends the builtin catalog. A custom rule with a
	// builtin's id replaces that builtin.
	CustomRules []*rule.Rule `json:"custom_rules" yaml:"custom_rules"`

	// LogAllValidations records allowed decisions in the event log too,
	// not just warnings and blocks.
	LogAllValidations bool `json:"log_all_validations" yaml:"log_all_validations"`

	// Version is an optional config schema version marker.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// DefaultConfig returns the configuration used when no project config file
// exists or the file cannot be loaded.
func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		StrictMode:        false,
		AllowedPaths:      nil,
		DisabledRules:     nil,
		SeverityOverrides: map[string]rule.Severity{},
		CustomRules:       nil,
		LogAllValidations: false,
	}
}

// RuleOverrides converts the config into the override set applied when
// merging the builtin rule catalog.
func (c *Config) RuleOverrides() rule.Overrides {
	return rule.Overrides{
		DisabledRules:     c.DisabledRules,
		SeverityOverrides: c.SeverityOverrides,
		CustomRules:       c.CustomRules,
	}
}
