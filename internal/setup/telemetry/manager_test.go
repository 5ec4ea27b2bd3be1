package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/raxnet/patrol/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggersCreatesSessionFiles(t *testing.T) {
	t.Parallel()
	logDir := t.TempDir()

	manager := telemetry.NewManager(telemetry.ServiceCLI, logDir, &config.Debug{
		LogLevel:      "debug",
		MaxLogsToKeep: 3,
		MaxLogLines:   100,
	})
	defer manager.Stop()

	mainLogger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	mainLogger.Info("hello")
	dbLogger.Error("query failed")
	require.NoError(t, mainLogger.Sync())
	require.NoError(t, dbLogger.Sync())

	sessionDir := manager.GetCurrentSessionDir()
	assert.FileExists(t, filepath.Join(sessionDir, "main.log"))
	assert.FileExists(t, filepath.Join(sessionDir, "database.log"))

	data, err := os.ReadFile(filepath.Join(sessionDir, "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.NotEmpty(t, manager.GetInstanceID())
}

func TestOldSessionsAreRotated(t *testing.T) {
	t.Parallel()
	logDir := t.TempDir()

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, os.Mkdir(filepath.Join(logDir, name), 0o755))
	}

	manager := telemetry.NewManager(telemetry.ServiceExport, logDir, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 2,
	})
	defer manager.Stop()

	_, _, err := manager.GetLoggers()
	require.NoError(t, err)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager(telemetry.ServiceCLI, t.TempDir(), &config.Debug{LogLevel: "loud"})
	defer manager.Stop()

	_, _, err := manager.GetLoggers()
	require.Error(t, err)
}
