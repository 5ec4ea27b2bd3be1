package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	dbTypes "github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/raxnet/patrol/internal/export"
	"github.com/raxnet/patrol/internal/export/chart"
	"github.com/raxnet/patrol/internal/export/csv"
	"github.com/raxnet/patrol/internal/export/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	entries []*dbTypes.LeaderboardEntry
	limit   int
}

func (s *staticSource) Leaderboard(_ context.Context, limit int) ([]*dbTypes.LeaderboardEntry, error) {
	s.limit = limit
	return s.entries, nil
}

func sampleSource() *staticSource {
	return &staticSource{entries: []*dbTypes.LeaderboardEntry{
		{Rank: 1, UserID: 7, Name: "Dina", Points: 920, Reputation: 260, Tier: enum.UserTierElite, TasksCompleted: 31},
		{Rank: 2, UserID: 3, Name: "Bayu", Points: 515, Reputation: 104, Tier: enum.UserTierMember, TasksCompleted: 2},
	}}
}

func TestExportAll(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "exports")
	source := sampleSource()

	summary, err := export.New(source, outDir, &export.Config{Limit: 50}, zap.NewNop()).ExportAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, 50, source.limit)
	assert.ElementsMatch(t,
		[]string{export.ConfigFileName, sqlite.FileName, csv.FileName, chart.FileName},
		summary.Files)

	for _, name := range summary.Files {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	data, err := os.ReadFile(filepath.Join(outDir, export.ConfigFileName))
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, sonic.Unmarshal(data, &meta))
	assert.Equal(t, export.EngineVersion, meta["engineVersion"])
	assert.NotContains(t, meta, "salt")
}

func TestExportAllAnonymized(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	cfg := &export.Config{
		Anonymize:   true,
		Salt:        "test_salt",
		HashType:    export.HashTypeSHA256,
		Iterations:  1,
		Concurrency: 2,
		Formats:     []export.Format{export.FormatCSV},
	}

	_, err := export.New(sampleSource(), outDir, cfg, zap.NewNop()).ExportAll(t.Context())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, csv.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), export.HashID(7, "test_salt", export.HashTypeSHA256, 1, 0))
	assert.NotContains(t, string(data), "Dina")
}

func TestExportAllErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		cfg := &export.Config{Formats: []export.Format{"binary"}}
		_, err := export.New(sampleSource(), t.TempDir(), cfg, zap.NewNop()).ExportAll(t.Context())
		require.ErrorIs(t, err, export.ErrUnsupportedFormat)
	})

	t.Run("invalid hash type", func(t *testing.T) {
		t.Parallel()

		cfg := &export.Config{Anonymize: true, HashType: "md5"}
		_, err := export.New(sampleSource(), t.TempDir(), cfg, zap.NewNop()).ExportAll(t.Context())
		require.ErrorIs(t, err, export.ErrInvalidHashType)
	})

	t.Run("empty leaderboard skips the chart", func(t *testing.T) {
		t.Parallel()

		summary, err := export.New(&staticSource{}, t.TempDir(), &export.Config{}, zap.NewNop()).ExportAll(t.Context())
		require.NoError(t, err)
		assert.NotContains(t, summary.Files, chart.FileName)
	})
}
