package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWritesRecordsAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "agentdesk.log")

	logger, closer, err := Open(path, slog.LevelWarn)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("language preference sync failed", "error", "boom")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "language preference sync failed")
	assert.Contains(t, string(data), "error=boom")
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing happens")
}
