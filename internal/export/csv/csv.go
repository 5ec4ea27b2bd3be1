package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/raxnet/patrol/internal/export/types"
)

// FileName is the file the exporter writes.
const FileName = "leaderboard.csv"

// Header is the first row of the file.
var Header = []string{"rank", "user", "name", "points", "reputation", "tier", "tasks_completed"} //nolint:gochecknoglobals // -

// Exporter handles exporting leaderboard snapshots to csv files.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes the records to leaderboard.csv, replacing an older file.
func (e *Exporter) Export(records []*types.Record) error {
	file, err := os.Create(filepath.Join(e.outDir, FileName))
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write([]string{
			strconv.Itoa(record.Rank),
			record.UserRef,
			record.Name,
			strconv.FormatInt(record.Points, 10),
			strconv.FormatInt(record.Reputation, 10),
			record.Tier,
			strconv.FormatInt(record.TasksCompleted, 10),
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv file: %w", err)
	}

	return nil
}
