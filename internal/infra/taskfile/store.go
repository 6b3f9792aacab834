// Package taskfile persists tasks, efforts, categories and notes in a
// single YAML file.
package taskfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/tasktree/internal/domain"
)

// FormatVersion is the version written to new files.
const FormatVersion = 1

// Store errors.
var (
	ErrCorruptFile        = errors.New("task file is corrupt")
	ErrUnsupportedVersion = errors.New("unsupported task file version")
)

// fileData represents the YAML file structure. Records are flat and refer
// to each other by ID.
// Fields are ordered to minimize memory padding.
type fileData struct {
	Categories []categoryRecord `yaml:"categories,omitempty"`
	Tasks      []taskRecord     `yaml:"tasks,omitempty"`
	Efforts    []effortRecord   `yaml:"efforts,omitempty"`
	Notes      []noteRecord     `yaml:"notes,omitempty"`
	Version    int              `yaml:"version"`
}

type taskRecord struct {
	Start       time.Time     `yaml:"start,omitempty"`
	Due         time.Time     `yaml:"due,omitempty"`
	Completed   time.Time     `yaml:"completed,omitempty"`
	ID          string        `yaml:"id"`
	Parent      string        `yaml:"parent,omitempty"`
	Subject     string        `yaml:"subject"`
	Description string        `yaml:"description,omitempty"`
	Categories  []string      `yaml:"categories,omitempty"`
	Budget      time.Duration `yaml:"budget,omitempty"`
	HourlyFee   float64       `yaml:"hourlyFee,omitempty"`
	FixedFee    float64       `yaml:"fixedFee,omitempty"`
	Priority    int           `yaml:"priority,omitempty"`
}

type effortRecord struct {
	Start       time.Time `yaml:"start"`
	Stop        time.Time `yaml:"stop,omitempty"`
	ID          string    `yaml:"id"`
	Task        string    `yaml:"task"`
	Description string    `yaml:"description,omitempty"`
}

type categoryRecord struct {
	ID          string `yaml:"id"`
	Parent      string `yaml:"parent,omitempty"`
	Subject     string `yaml:"subject"`
	Description string `yaml:"description,omitempty"`
	Filtered    bool   `yaml:"filtered,omitempty"`
}

type noteRecord struct {
	ID          string `yaml:"id"`
	Parent      string `yaml:"parent,omitempty"`
	Subject     string `yaml:"subject"`
	Description string `yaml:"description,omitempty"`
}

// Store implements domain.Repository using a YAML file.
type Store struct {
	path     string
	lockPath string
}

// Ensure Store implements Repository.
var _ domain.Repository = (*Store)(nil)

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// Exists returns true if the file has been written.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the file and rebuilds every entity. Entities are linked to
// each other but carry no bus; the caller attaches one before adding them
// to collections. Nothing is returned unless the whole file is valid.
// A missing file yields an empty snapshot.
func (s *Store) Load() (domain.Snapshot, error) {
	lock, err := s.acquireLock(false)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer func() { _ = lock.Unlock() }()

	data, err := s.read()
	if err != nil {
		return domain.Snapshot{}, err
	}
	return decode(data)
}

// Save writes snap to the file, replacing its previous content.
func (s *Store) Save(snap domain.Snapshot) error {
	lock, err := s.acquireLock(true)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	return s.write(encode(snap))
}

// acquireLock takes the exclusive lock for writers and a shared one for
// readers.
func (s *Store) acquireLock(exclusive bool) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(s.lockPath)
	var err error
	if exclusive {
		err = lock.Lock()
	} else {
		err = lock.RLock()
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return lock, nil
}

func (s *Store) read() (*fileData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileData{Version: FormatVersion}, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var data fileData
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	if data.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data.Version)
	}
	return &data, nil
}

func (s *Store) write(data *fileData) error {
	content, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
