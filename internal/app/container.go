// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/command"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/infra/config"
	"github.com/runoshun/tasktree/internal/infra/logging"
	"github.com/runoshun/tasktree/internal/infra/taskfile"
	"github.com/runoshun/tasktree/internal/relation"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/runoshun/tasktree/internal/view"
)

// StoreFileName is the task file name inside the data directory.
const StoreFileName = "tasktree.yaml"

// Config holds the application paths.
type Config struct {
	DataDir   string // Directory holding the task file, settings and logs
	StorePath string // Path to tasktree.yaml
}

// NewConfig derives the paths below dataDir.
func NewConfig(dataDir string) Config {
	return Config{
		DataDir:   dataDir,
		StorePath: filepath.Join(dataDir, StoreFileName),
	}
}

// Container owns the services of one running application. Everything
// shares Bus; Dispose tears the whole graph down.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store     domain.Repository
	Clock     domain.Clock
	EntityLog domain.Logger

	// Core services
	Bus       *event.Bus
	History   *command.History
	Clipboard *command.Clipboard
	Settings  *settings.Settings
	Relations *relation.Manager
	Dirty     *Dirty

	// Base collections
	Tasks      *collection.CompositeList[*domain.Task]
	Categories *collection.CompositeList[*domain.Category]
	Notes      *collection.CompositeList[*domain.Note]
	Efforts    *view.EffortFeed

	ConfigLoader  *config.Loader
	ConfigManager *config.Manager

	// Pointer fields
	Logger  *slog.Logger
	fileLog *logging.Logger

	// Configuration
	Config Config
}

// New creates a Container for dataDir, reading settings from the config
// files. The task file is not read until Load is called.
func New(dataDir string) (*Container, error) {
	cfg := NewConfig(dataDir)

	fileLog := logging.New(dataDir, slog.LevelInfo)
	c := NewWithDeps(cfg, taskfile.New(cfg.StorePath), domain.RealClock{}, fileLog)
	c.fileLog = fileLog
	c.ConfigLoader = config.NewLoader(dataDir)
	c.ConfigManager = config.NewManager(dataDir)

	appConfig, err := c.ConfigLoader.Load()
	if err != nil {
		c.Dispose()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := appConfig.Apply(c.Settings); err != nil {
		c.Dispose()
		return nil, err
	}

	level := logging.ParseLevel(c.Settings.Get(settings.KeyLogLevel))
	fileLog.SetLevel(level)
	c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	for _, w := range appConfig.Warnings {
		c.Logger.Warn("config", "warning", w)
	}
	return c, nil
}

// NewWithDeps creates a Container with custom dependencies for testing.
func NewWithDeps(cfg Config, store domain.Repository, clock domain.Clock, entityLog domain.Logger) *Container {
	if entityLog == nil {
		entityLog = domain.NopLogger{}
	}
	bus := event.NewBus(entityLog)
	s := settings.New(bus)
	tasks := collection.NewCompositeList[*domain.Task](bus)

	c := &Container{
		Store:      store,
		Clock:      clock,
		EntityLog:  entityLog,
		Bus:        bus,
		History:    command.NewHistory(bus, entityLog),
		Clipboard:  command.NewClipboard(bus),
		Settings:   s,
		Relations:  relation.New(bus, s, entityLog),
		Tasks:      tasks,
		Categories: collection.NewCompositeList[*domain.Category](bus),
		Notes:      collection.NewCompositeList[*domain.Note](bus),
		Efforts:    view.NewEffortFeed(tasks),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:     cfg,
	}
	c.Dirty = NewDirty(bus, c.Tasks, c.Categories, c.Notes)
	return c
}

// Load replaces the collections with the content of the store. When the
// store cannot be read the collections are left as they were.
func (c *Container) Load() error {
	snap, err := c.Store.Load()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	snap.Attach(c.Bus)

	if err := errors.Join(c.Tasks.Clear(), c.Categories.Clear(), c.Notes.Clear()); err != nil {
		return err
	}
	if err := errors.Join(
		c.Categories.Extend(snap.Categories...),
		c.Tasks.Extend(snap.Tasks...),
		c.Notes.Extend(snap.Notes...),
	); err != nil {
		return err
	}

	c.EntityLog.Info("", "store", fmt.Sprintf("loaded %d tasks", len(snap.Tasks)))
	c.Dirty.Reset()
	return c.History.Clear()
}

// Save writes the collections to the store.
func (c *Container) Save() error {
	snap := domain.Snapshot{
		Tasks:      c.Tasks.Items(),
		Categories: c.Categories.Items(),
		Notes:      c.Notes.Items(),
	}
	if err := c.Store.Save(snap); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	c.EntityLog.Info("", "store", fmt.Sprintf("saved %d tasks", len(snap.Tasks)))
	c.Dirty.Reset()
	return nil
}

// Dispose stops every observer and releases the log file.
func (c *Container) Dispose() {
	c.Relations.Dispose()
	c.Efforts.Dispose()
	c.Dirty.Dispose()
	c.Bus.Dispose()
	if c.fileLog != nil {
		_ = c.fileLog.Close()
	}
}
