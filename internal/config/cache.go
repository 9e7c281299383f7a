package config

import (
	"path/filepath"
	"sync"
)

// The loaded config is cached per project directory so the validator does
// not reparse the file on every tool invocation. The cache is invalidated
// only by ClearConfigCache; config edits during a session are picked up on
// the next explicit clear.
var (
	cacheMu sync.Mutex
	cache   = map[string]*cachedConfig{}
)

type cachedConfig struct {
	cfg      *Config
	warnings []LoadWarning
}

// LoadConfig returns the cached config for projectDir, loading it on first
// use. Repeated calls return the same config and the same warnings.
func LoadConfig(projectDir string) (*Config, []LoadWarning) {
	key := cacheKey(projectDir)

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if entry, ok := cache[key]; ok {
		return entry.cfg, entry.warnings
	}

	cfg, warnings := NewLoader(projectDir).Load()
	cache[key] = &cachedConfig{cfg: cfg, warnings: warnings}
	return cfg, warnings
}

// CachedConfig returns the cached config for projectDir without loading,
// or nil when nothing is cached yet.
func CachedConfig(projectDir string) *Config {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if entry, ok := cache[cacheKey(projectDir)]; ok {
		return entry.cfg
	}
	return nil
}

// ClearConfigCache drops cached configs. With arguments it clears only the
// named project directories; with none it clears everything.
func ClearConfigCache(projectDirs ...string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if len(projectDirs) == 0 {
		cache = map[string]*cachedConfig{}
		return
	}
	for _, dir := range projectDirs {
		delete(cache, cacheKey(dir))
	}
}

func cacheKey(projectDir string) string {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return projectDir
	}
	return abs
}
