package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/tasktree/internal/app"
	"github.com/runoshun/tasktree/internal/infra/config"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileContainer builds a container that reads and writes config files in
// temporary directories.
func newFileContainer(t *testing.T) (*app.Container, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	c, err := app.New(dir)
	require.NoError(t, err)
	t.Cleanup(c.Dispose)
	return c, dir
}

func runRoot(c *app.Container, args ...string) (string, error) {
	root := NewRootCommand(c, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSettingsShowCommand(t *testing.T) {
	// Setup
	c, dir := newFileContainer(t)
	_, err := c.Settings.Set(settings.KeySortBy, "duedate")
	require.NoError(t, err)

	// Execute
	out, err := runRoot(c, "settings", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, filepath.Join(dir, config.RepoFileName)+" (not found)")
	assert.Contains(t, out, "[Effective Settings]")
	assert.Contains(t, out, "duedate*")
	assert.Contains(t, out, "behavior.duesoondays")
}

func TestSettingsSetCommand(t *testing.T) {
	// Setup
	c, dir := newFileContainer(t)

	// Execute
	out, err := runRoot(c, "settings", "set", "view.sortby", "duedate")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "view.sortby = duedate")
	content, err := os.ReadFile(filepath.Join(dir, config.RepoFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[view]")
	assert.Regexp(t, `sortby = ['"]duedate['"]`, string(content))
}

func TestSettingsSetCommand_UnknownKey(t *testing.T) {
	// Setup
	c, _ := newFileContainer(t)

	// Execute
	_, err := runRoot(c, "settings", "set", "view.colour", "red")

	// Assert
	assert.ErrorIs(t, err, settings.ErrUnknownKey)
}

func TestSettingsInitCommand(t *testing.T) {
	// Setup
	c, dir := newFileContainer(t)

	// Execute
	out, err := runRoot(c, "settings", "init")
	_, again := runRoot(c, "settings", "init")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	assert.FileExists(t, filepath.Join(dir, config.RepoFileName))
	assert.ErrorIs(t, again, config.ErrConfigExists)
}

func TestSettingsCommands_WithoutConfigFiles(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	_, setErr := f.run("settings", "set", "view.sortby", "duedate")
	_, initErr := f.run("settings", "init")
	out, showErr := f.run("settings", "show")

	// Assert
	assert.ErrorIs(t, setErr, errNoConfigFiles)
	assert.ErrorIs(t, initErr, errNoConfigFiles)
	require.NoError(t, showErr)
	assert.NotContains(t, out, "[Loaded from]")
	assert.Contains(t, out, "[Effective Settings]")
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"date", "2024-03-10", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), false},
		{"date and time", "2024-03-10 08:15", time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC), false},
		{"rfc3339", "2024-03-10T08:15:00Z", time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC), false},
		{"today", "today", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), false},
		{"tomorrow", "Tomorrow", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false},
		{"now", "now", now, false},
		{"none", "none", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"garbage", "next week", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.value, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
