package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/tasktree/internal/infra/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.RepoFileName), []byte(content), 0o600))
}
