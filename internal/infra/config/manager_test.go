package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RepoConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		dataDir := t.TempDir()
		content := "[view]\nsortby = \"subject\"\n"
		writeFile(t, dataDir, RepoFileName, content)

		info := NewManagerWithGlobalDir(dataDir, "").RepoConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, RepoFileName), info.Path)
		assert.Equal(t, content, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		dataDir := t.TempDir()

		info := NewManagerWithGlobalDir(dataDir, "").RepoConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, RepoFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GlobalConfigInfo_NoDirectory(t *testing.T) {
	info := NewManagerWithGlobalDir(t.TempDir(), "").GlobalConfigInfo()

	assert.Empty(t, info.Path)
	assert.False(t, info.Exists)
}

func TestManager_InitRepoConfig(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	manager := NewManagerWithGlobalDir(dataDir, "")

	// Execute
	require.NoError(t, manager.InitRepoConfig())
	err := manager.InitRepoConfig()

	// Assert
	assert.ErrorIs(t, err, ErrConfigExists)
	content, readErr := os.ReadFile(filepath.Join(dataDir, RepoFileName))
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "[view]")
	assert.Contains(t, string(content), "# tasksdue = \"unlimited\"")
	assert.Contains(t, string(content), "# markparentcompletedwhenallchildrencompleted = true")

	// The commented template loads as an empty config.
	cfg, loadErr := NewLoaderWithGlobalDir(dataDir, "").Load()
	require.NoError(t, loadErr)
	assert.Empty(t, cfg.Values)
}

func TestManager_SaveRoundTrip(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	s := settings.New(event.NewBus(nil))
	_, err := s.Set(settings.KeySortBy, "priority")
	require.NoError(t, err)
	_, err = s.SetBool(settings.KeyHideCompleted, true)
	require.NoError(t, err)
	_, err = s.Set(settings.KeyDueSoonDays, "4")
	require.NoError(t, err)

	// Execute
	require.NoError(t, NewManagerWithGlobalDir(dataDir, "").Save(s))
	cfg, err := NewLoaderWithGlobalDir(dataDir, "").Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[settings.Key]string{
		settings.KeySortBy:        "priority",
		settings.KeyHideCompleted: "true",
		settings.KeyDueSoonDays:   "4",
	}, cfg.Values)
}
