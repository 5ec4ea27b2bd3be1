package csv_test

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	exportCSV "github.com/raxnet/patrol/internal/export/csv"
	"github.com/raxnet/patrol/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verifyCSVFile reads a CSV file and verifies its contents match the expected records.
func verifyCSVFile(t *testing.T, path string, expectedRecords []*types.Record) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, exportCSV.Header, header)

	for _, expected := range expectedRecords {
		record, err := reader.Read()
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(expected.Rank), record[0])
		assert.Equal(t, expected.UserRef, record[1])
		assert.Equal(t, expected.Name, record[2])
		assert.Equal(t, strconv.FormatInt(expected.Points, 10), record[3])
		assert.Equal(t, strconv.FormatInt(expected.Reputation, 10), record[4])
		assert.Equal(t, expected.Tier, record[5])
		assert.Equal(t, strconv.FormatInt(expected.TasksCompleted, 10), record[6])
	}

	_, err = reader.Read()
	assert.Equal(t, io.EOF, err, "expected EOF after last record")
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []*types.Record
	}{
		{
			name: "basic export",
			records: []*types.Record{
				{Rank: 1, UserRef: "7", Name: "Dina", Points: 920, Reputation: 260, Tier: "Elite", TasksCompleted: 31},
				{Rank: 2, UserRef: "3", Name: "Bayu", Points: 515, Reputation: 104, Tier: "Member", TasksCompleted: 2},
			},
		},
		{
			name:    "empty records",
			records: []*types.Record{},
		},
		{
			name: "names with special characters",
			records: []*types.Record{
				{Rank: 1, UserRef: "1", Name: "Sari, the \"fast\" one", Points: 10, Tier: "Member"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tempDir := t.TempDir()

			require.NoError(t, exportCSV.New(tempDir).Export(tt.records))
			verifyCSVFile(t, filepath.Join(tempDir, exportCSV.FileName), tt.records)
		})
	}
}

func TestExporter_ExistingFile(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tempDir, exportCSV.FileName), []byte("existing content\nmore\n"), 0o644)
	require.NoError(t, err)

	records := []*types.Record{{Rank: 1, UserRef: "1", Name: "Dina", Points: 500, Reputation: 100, Tier: "Member"}}
	require.NoError(t, exportCSV.New(tempDir).Export(records))

	verifyCSVFile(t, filepath.Join(tempDir, exportCSV.FileName), records)
}
