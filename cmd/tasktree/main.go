// Package main is the entry point for the tasktree CLI.
package main

import (
	"fmt"
	"os"

	"github.com/runoshun/tasktree/internal/app"
	"github.com/runoshun/tasktree/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

// dataDirEnv overrides the data directory, which defaults to the working
// directory.
const dataDirEnv = "TASKTREE_DIR"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	// Create dependency injection container
	container, err := app.New(dataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer container.Dispose()

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}

func resolveDataDir() (string, error) {
	if dir := os.Getenv(dataDirEnv); dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}
