package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/raxnet/patrol/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// FileName is the database the exporter writes.
const FileName = "leaderboard.db"

// batchSize is the number of rows inserted per transaction.
const batchSize = 1000

// Exporter handles exporting leaderboard snapshots to SQLite databases.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes the records to a fresh leaderboard.db.
func (e *Exporter) Export(records []*types.Record) error {
	path := filepath.Join(e.outDir, FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file %s: %w", FileName, err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	err = sqlitex.ExecuteScript(conn, `
		CREATE TABLE leaderboard (
			rank INTEGER PRIMARY KEY,
			user TEXT NOT NULL,
			name TEXT NOT NULL,
			points INTEGER NOT NULL,
			reputation INTEGER NOT NULL,
			tier TEXT NOT NULL,
			tasks_completed INTEGER NOT NULL
		);
		CREATE INDEX idx_leaderboard_user ON leaderboard (user);
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		if err := insertBatch(conn, records[i:end]); err != nil {
			return err
		}
	}

	return nil
}

// insertBatch inserts records in a single transaction.
func insertBatch(conn *sqlite.Conn, records []*types.Record) (err error) {
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	for _, record := range records {
		err = sqlitex.Execute(conn,
			"INSERT INTO leaderboard (rank, user, name, points, reputation, tier, tasks_completed) VALUES (?, ?, ?, ?, ?, ?, ?)",
			&sqlitex.ExecOptions{
				Args: []any{
					record.Rank, record.UserRef, record.Name, record.Points,
					record.Reputation, record.Tier, record.TasksCompleted,
				},
			})
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return nil
}
