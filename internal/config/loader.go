package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// LoadWarning records a recoverable problem found while loading a config
// file. Warnings never stop the load; the affected setting falls back to
// its default.
type LoadWarning struct {
	Code    types.ErrorCode
	Message string
}

func (w LoadWarning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// fileConfig mirrors Config with pointer fields so that absent keys are
// distinguishable from zero values. Only fields present in the file
// override the defaults.
type fileConfig struct {
	Enabled           *bool             `json:"enabled" yaml:"enabled"`
	StrictMode        *bool             `json:"strict_mode" yaml:"strict_mode"`
	AllowedPaths      []string          `json:"allowed_paths" yaml:"allowed_paths"`
	DisabledRules     []string          `json:"disabled_rules" yaml:"disabled_rules"`
	SeverityOverrides map[string]string `json:"severity_overrides" yaml:"severity_overrides"`
	CustomRules       []*rule.Rule      `json:"custom_rules" yaml:"custom_rules"`
	LogAllValidations *bool             `json:"log_all_validations" yaml:"log_all_validations"`
	Version           *string           `json:"version" yaml:"version"`
}

// Loader reads the project validation config. It never returns an error:
// broken configs degrade to defaults with the problems reported as
// warnings, so validation stays on no matter what is in the file.
type Loader struct {
	projectDir string
	logger     *slog.Logger
	validate   *validator.Validate
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader rooted at the given project directory.
func NewLoader(projectDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		projectDir: projectDir,
		logger:     slog.Default(),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ConfigFilePath returns the path of the config file that would be loaded
// and whether one exists. JSON takes precedence over YAML.
func (l *Loader) ConfigFilePath() (string, bool) {
	dir := filepath.Join(l.projectDir, ConfigDirName)
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// HasConfigFile reports whether a project config file exists.
func (l *Loader) HasConfigFile() bool {
	_, ok := l.ConfigFilePath()
	return ok
}

// IsYAMLAvailable reports whether YAML configs can be parsed. The parser is
// compiled in, so this is always true.
func IsYAMLAvailable() bool {
	return true
}

// Load reads, parses, and validates the project config. The returned config
// is always usable; warnings describe anything that fell back to defaults.
func (l *Loader) Load() (*Config, []LoadWarning) {
	path, ok := l.ConfigFilePath()
	if !ok {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		warn := LoadWarning{
			Code:    types.CONFIG_PARSE_FAILED,
			Message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
		l.logger.Warn("config file unreadable, using defaults", "path", path, "error", err)
		return DefaultConfig(), []LoadWarning{warn}
	}

	var fc fileConfig
	if err := unmarshalConfig(path, data, &fc); err != nil {
		code := types.CONFIG_PARSE_FAILED
		if isTypeError(err) {
			code = types.CONFIG_SCHEMA_INVALID
		}
		warn := LoadWarning{
			Code:    code,
			Message: fmt.Sprintf("cannot parse %s: %v", path, err),
		}
		l.logger.Warn("config file invalid, using defaults", "path", path, "error", err)
		return DefaultConfig(), []LoadWarning{warn}
	}

	cfg := DefaultConfig()
	var warnings []LoadWarning

	if fc.Enabled != nil {
		cfg.Enabled = *fc.Enabled
	}
	if fc.StrictMode != nil {
		cfg.StrictMode = *fc.StrictMode
	}
	if fc.LogAllValidations != nil {
		cfg.LogAllValidations = *fc.LogAllValidations
	}
	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	if fc.DisabledRules != nil {
		cfg.DisabledRules = fc.DisabledRules
	}

	for _, pattern := range fc.AllowedPaths {
		if !doublestar.ValidatePattern(pattern) {
			warnings = append(warnings, LoadWarning{
				Code:    types.CONFIG_SCHEMA_INVALID,
				Message: fmt.Sprintf("allowed_paths: invalid glob pattern %q, skipped", pattern),
			})
			continue
		}
		cfg.AllowedPaths = append(cfg.AllowedPaths, pattern)
	}

	for id, sev := range fc.SeverityOverrides {
		s := rule.Severity(strings.ToLower(sev))
		if !s.IsValid() {
			warnings = append(warnings, LoadWarning{
				Code:    types.CONFIG_SCHEMA_INVALID,
				Message: fmt.Sprintf("severity_overrides.%s: invalid severity %q, skipped", id, sev),
			})
			continue
		}
		cfg.SeverityOverrides[id] = s
	}

	// Each custom rule is validated on its own so one bad rule never
	// drops the rest.
	for i, cr := range fc.CustomRules {
		if cr == nil {
			continue
		}
		if err := l.validateRule(cr); err != nil {
			warnings = append(warnings, LoadWarning{
				Code:    types.CUSTOM_RULE_INVALID,
				Message: fmt.Sprintf("custom_rules[%d] (%s): %v", i, cr.ID, err),
			})
			continue
		}
		cfg.CustomRules = append(cfg.CustomRules, cr)
	}

	for _, w := range warnings {
		l.logger.Warn("config setting skipped", "path", path, "code", string(w.Code), "detail", w.Message)
	}

	return cfg, warnings
}

// validateRule runs struct-tag validation followed by the rule's own
// semantic checks (pattern compilation, safety limits).
func (l *Loader) validateRule(r *rule.Rule) error {
	if err := l.validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return types.NewError(types.CUSTOM_RULE_INVALID, strings.Join(msgs, "; "))
		}
		return types.WrapError(types.CUSTOM_RULE_INVALID, "rule validation failed", err)
	}
	return r.Validate()
}

// formatFieldError renders a single validator.FieldError as a readable
// message.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func unmarshalConfig(path string, data []byte, fc *fileConfig) error {
	if strings.HasSuffix(path, ".json") {
		return json.Unmarshal(data, fc)
	}
	return yaml.Unmarshal(data, fc)
}

// isTypeError distinguishes a well-formed document with wrongly typed
// fields from one that does not parse at all.
func isTypeError(err error) bool {
	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonType) {
		return true
	}
	var yamlType *yaml.TypeError
	return errors.As(err, &yamlType)
}
