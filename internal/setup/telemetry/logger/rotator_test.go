package logger_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raxnet/patrol/internal/setup/telemetry/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRotatorKeepsNewestLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "main.log")

	rotator, err := logger.NewRotator(path, 5)
	require.NoError(t, err)
	defer rotator.Close()

	for i := range 10 {
		_, err := fmt.Fprintf(rotator, "line %d\n", i)
		require.NoError(t, err)
	}

	lines := readLines(t, path)
	assert.Equal(t, []string{"line 5", "line 6", "line 7", "line 8", "line 9"}, lines)

	// Writes keep appending after a compaction
	_, err = fmt.Fprintln(rotator, "line 10")
	require.NoError(t, err)
	lines = readLines(t, path)
	assert.Len(t, lines, 6)
	assert.Equal(t, "line 10", lines[5])
}

func TestRotatorWithoutLimit(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "main.log")

	rotator, err := logger.NewRotator(path, 0)
	require.NoError(t, err)
	defer rotator.Close()

	for i := range 20 {
		_, err := fmt.Fprintf(rotator, "line %d\n", i)
		require.NoError(t, err)
	}

	assert.Len(t, readLines(t, path), 20)
}
