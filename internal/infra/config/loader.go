// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/tasktree/internal/settings"
)

// File names.
const (
	GlobalFileName = "config.toml"   // In the global config directory
	RepoFileName   = "tasktree.toml" // In the data directory
)

// Config is a set of setting values read from one or more files.
type Config struct {
	Values   map[settings.Key]string
	Warnings []string
}

func newConfig() *Config {
	return &Config{Values: make(map[settings.Key]string)}
}

// Apply writes the values into s in key order.
func (c *Config) Apply(s *settings.Settings) error {
	keys := make([]settings.Key, 0, len(c.Values))
	for k := range c.Values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	for _, k := range keys {
		if _, err := s.Set(k, c.Values[k]); err != nil {
			return fmt.Errorf("apply %s: %w", k, err)
		}
	}
	return nil
}

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Directory holding the task file
	globalConfDir string // Path to global config directory (e.g., ~/.config/tasktree)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tasktree")
}

// Load returns the merged configuration (repo + global).
// Repository config takes precedence over global config.
func (l *Loader) Load() (*Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.LoadRepo()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: global <- repo (later takes precedence)
	base := newConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return loadFile(filepath.Join(l.globalConfDir, GlobalFileName))
}

// LoadRepo returns only the data directory configuration.
func (l *Loader) LoadRepo() (*Config, error) {
	return loadFile(filepath.Join(l.dataDir, RepoFileName))
}

// loadFile loads a configuration from a file.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRaw(raw), nil
}

// convertRaw converts the raw map to settings values and collects warnings.
func convertRaw(raw map[string]any) *Config {
	res := newConfig()
	for section, value := range raw {
		options, ok := value.(map[string]any)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		for option, v := range options {
			key := settings.Key{Section: section, Option: option}
			if _, known := settings.Default(key); !known {
				res.Warnings = append(res.Warnings, fmt.Sprintf("unknown key in [%s]: %s", section, option))
				continue
			}
			s, ok := scalar(v)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("invalid value for %s", key))
				continue
			}
			res.Values[key] = s
		}
	}

	sort.Strings(res.Warnings)
	return res
}

// scalar formats a TOML scalar the way settings store it.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *Config) *Config {
	result := newConfig()
	for k, v := range base.Values {
		result.Values[k] = v
	}
	for k, v := range override.Values {
		result.Values[k] = v
	}
	result.Warnings = append(append(result.Warnings, base.Warnings...), override.Warnings...)
	return result
}
