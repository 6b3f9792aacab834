package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/tasktree/internal/settings"
)

// ErrConfigExists is returned when initializing a config file that exists.
var ErrConfigExists = errors.New("config file already exists")

// Info describes a config file.
type Info struct {
	Path    string
	Content string
	Exists  bool
}

// Manager manages configuration files.
type Manager struct {
	dataDir       string // Directory holding the task file
	globalConfDir string // Path to global config directory (e.g., ~/.config/tasktree)
}

// NewManager creates a new Manager.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(dataDir, globalConfDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// RepoConfigInfo returns information about the data directory config file.
func (m *Manager) RepoConfigInfo() Info {
	return configInfo(filepath.Join(m.dataDir, RepoFileName))
}

// GlobalConfigInfo returns information about the global config file.
func (m *Manager) GlobalConfigInfo() Info {
	if m.globalConfDir == "" {
		return Info{}
	}
	return configInfo(filepath.Join(m.globalConfDir, GlobalFileName))
}

func configInfo(path string) Info {
	content, err := os.ReadFile(path)
	if err != nil {
		return Info{Path: path}
	}
	return Info{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitRepoConfig creates a data directory config file listing every
// setting with its default, commented out.
func (m *Manager) InitRepoConfig() error {
	path := filepath.Join(m.dataDir, RepoFileName)
	if _, err := os.Stat(path); err == nil {
		return ErrConfigExists
	}
	if err := os.MkdirAll(m.dataDir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return os.WriteFile(path, []byte(RenderTemplate()), 0o600)
}

// RenderTemplate renders every known setting with its default value.
func RenderTemplate() string {
	var b strings.Builder
	b.WriteString("# tasktree settings. Uncomment a line to change it.\n")
	section := ""
	for _, key := range settings.Keys() {
		if key.Section != section {
			section = key.Section
			fmt.Fprintf(&b, "\n[%s]\n", section)
		}
		def, _ := settings.Default(key)
		fmt.Fprintf(&b, "# %s = %s\n", key.Option, tomlValue(def))
	}
	return b.String()
}

// Save writes the settings that differ from their defaults to the data
// directory config file.
func (m *Manager) Save(s *settings.Settings) error {
	doc := make(map[string]map[string]any)
	for key, value := range s.Overrides() {
		if doc[key.Section] == nil {
			doc[key.Section] = make(map[string]any)
		}
		doc[key.Section][key.Option] = typed(value)
	}

	content, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(m.dataDir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return os.WriteFile(filepath.Join(m.dataDir, RepoFileName), content, 0o600)
}

// typed turns a setting string back into a TOML bool or integer when it
// reads as one.
func typed(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	return value
}

func tomlValue(value string) string {
	switch v := typed(value).(type) {
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}
