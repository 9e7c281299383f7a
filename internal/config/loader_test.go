package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	cfgDir := filepath.Join(dir, ConfigDirName)
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	path := filepath.Join(cfgDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_NoConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, warnings := NewLoader(dir).Load()

	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.StrictMode)
	assert.Empty(t, warnings)
}

func TestLoader_JSONConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{
		"strict_mode": true,
		"allowed_paths": ["docs/**", "*.md"],
		"disabled_rules": ["bash-chmod-777"],
		"severity_overrides": {"bash-deprecated-command": "HIGH"}
	}`)

	cfg, warnings := NewLoader(dir).Load()
	require.Empty(t, warnings)

	assert.True(t, cfg.Enabled, "absent fields keep their defaults")
	assert.True(t, cfg.StrictMode)
	assert.Equal(t, []string{"docs/**", "*.md"}, cfg.AllowedPaths)
	assert.Equal(t, []string{"bash-chmod-777"}, cfg.DisabledRules)
	assert.Equal(t, rule.SeverityHigh, cfg.SeverityOverrides["bash-deprecated-command"])
}

func TestLoader_YAMLConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.yaml", `
enabled: true
strict_mode: true
custom_rules:
  - rule_id: block-prod-deploy
    name: Block Prod Deploy
    pattern: "deploy --env prod"
    pattern_type: literal
    severity: critical
    priority: p0
    tool_types: [bash]
    context: command
    message: production deploys are gated
`)

	cfg, warnings := NewLoader(dir).Load()
	require.Empty(t, warnings)
	require.Len(t, cfg.CustomRules, 1)
	assert.Equal(t, "block-prod-deploy", cfg.CustomRules[0].ID)
	assert.True(t, cfg.CustomRules[0].Enabled, "omitted enabled defaults to true")
	assert.True(t, cfg.StrictMode)
}

func TestLoader_CustomRuleEnabledFlag(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{
		"custom_rules": [
			{
				"rule_id": "paused-rule",
				"name": "Paused",
				"pattern": "danger",
				"pattern_type": "literal",
				"severity": "low",
				"priority": "p3",
				"tool_types": ["bash"],
				"context": "command",
				"message": "m",
				"enabled": false
			},
			{
				"rule_id": "live-rule",
				"name": "Live",
				"pattern": "danger",
				"pattern_type": "literal",
				"severity": "low",
				"priority": "p3",
				"tool_types": ["bash"],
				"context": "command",
				"message": "m"
			}
		]
	}`)

	cfg, warnings := NewLoader(dir).Load()
	require.Empty(t, warnings)
	require.Len(t, cfg.CustomRules, 2)
	assert.False(t, cfg.CustomRules[0].Enabled, "explicit enabled: false is honored")
	assert.True(t, cfg.CustomRules[1].Enabled)
}

func TestLoader_JSONPrecedesYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{"strict_mode": true}`)
	writeConfig(t, dir, "output-validation.yaml", `strict_mode: false`)

	loader := NewLoader(dir)
	path, ok := loader.ConfigFilePath()
	require.True(t, ok)
	assert.Equal(t, "output-validation.json", filepath.Base(path))

	cfg, _ := loader.Load()
	assert.True(t, cfg.StrictMode)
}

func TestLoader_ParseErrorFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{"enabled": false, INVALID`)

	cfg, warnings := NewLoader(dir).Load()

	assert.True(t, cfg.Enabled, "broken config must not disable validation")
	require.Len(t, warnings, 1)
	assert.Equal(t, types.CONFIG_PARSE_FAILED, warnings[0].Code)
}

func TestLoader_TypeErrorReportedAsSchemaInvalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{"enabled": "yes"}`)

	cfg, warnings := NewLoader(dir).Load()

	assert.True(t, cfg.Enabled)
	require.Len(t, warnings, 1)
	assert.Equal(t, types.CONFIG_SCHEMA_INVALID, warnings[0].Code)
}

func TestLoader_BadCustomRuleDroppedOthersKept(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.yaml", `
custom_rules:
  - rule_id: "bad id with spaces"
    name: Bad
    pattern: x
    pattern_type: literal
    severity: low
    priority: p3
    tool_types: [bash]
    context: command
    message: m
  - rule_id: good-rule
    name: Good
    pattern: danger
    pattern_type: literal
    severity: low
    priority: p3
    tool_types: [bash]
    context: command
    message: m
`)

	cfg, warnings := NewLoader(dir).Load()

	require.Len(t, cfg.CustomRules, 1)
	assert.Equal(t, "good-rule", cfg.CustomRules[0].ID)
	require.Len(t, warnings, 1)
	assert.Equal(t, types.CUSTOM_RULE_INVALID, warnings[0].Code)
}

func TestLoader_InvalidSeverityOverrideSkipped(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{
		"severity_overrides": {"bash-chmod-777": "extreme", "bash-deprecated-command": "medium"}
	}`)

	cfg, warnings := NewLoader(dir).Load()

	assert.NotContains(t, cfg.SeverityOverrides, "bash-chmod-777")
	assert.Equal(t, rule.SeverityMedium, cfg.SeverityOverrides["bash-deprecated-command"])
	require.Len(t, warnings, 1)
	assert.Equal(t, types.CONFIG_SCHEMA_INVALID, warnings[0].Code)
}

func TestLoadConfig_Cached(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output-validation.json", `{"strict_mode": true}`)
	t.Cleanup(func() { ClearConfigCache() })

	first, _ := LoadConfig(dir)
	assert.True(t, first.StrictMode)

	// An edit after the first load is invisible until the cache is
	// cleared.
	writeConfig(t, dir, "output-validation.json", `{"strict_mode": false}`)
	second, _ := LoadConfig(dir)
	assert.Same(t, first, second)

	ClearConfigCache(dir)
	third, _ := LoadConfig(dir)
	assert.False(t, third.StrictMode)

	assert.NotNil(t, CachedConfig(dir))
	ClearConfigCache()
	assert.Nil(t, CachedConfig(dir))
}
