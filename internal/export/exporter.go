// Package export writes leaderboard snapshots to files.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	dbTypes "github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/export/chart"
	"github.com/raxnet/patrol/internal/export/csv"
	"github.com/raxnet/patrol/internal/export/sqlite"
	"github.com/raxnet/patrol/internal/export/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidHashType   = errors.New("invalid hash type")
)

// Format represents a supported export format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatCSV    Format = "csv"
	FormatChart  Format = "chart"
)

// AllFormats returns every supported format.
func AllFormats() []Format {
	return []Format{FormatSQLite, FormatCSV, FormatChart}
}

// EngineVersion is bumped on breaking changes to the file layouts.
const EngineVersion = "1.0.0"

// ConfigFileName is the metadata file written next to the exports.
const ConfigFileName = "export_config.json"

// Config holds the configuration for exports.
type Config struct {
	Description string    `json:"description"`
	Anonymize   bool      `json:"anonymize"`
	Salt        string    `json:"-"`
	HashType    HashType  `json:"hashType,omitempty"`
	Iterations  uint32    `json:"iterations,omitempty"`
	Memory      uint32    `json:"memory,omitempty"`
	Limit       int       `json:"limit"`
	Concurrency int       `json:"-"`
	Formats     []Format  `json:"formats"`
	ExportedAt  time.Time `json:"exportedAt"`
}

// LeaderboardSource provides the ranking to export.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, limit int) ([]*dbTypes.LeaderboardEntry, error)
}

// Summary describes a finished export.
type Summary struct {
	Records int
	Files   []string
}

// Exporter writes leaderboard snapshots in several formats.
type Exporter struct {
	source LeaderboardSource
	outDir string
	config *Config
	logger *zap.Logger
}

// New creates a new exporter instance. An empty format list exports all formats.
func New(source LeaderboardSource, outDir string, config *Config, logger *zap.Logger) *Exporter {
	if len(config.Formats) == 0 {
		config.Formats = AllFormats()
	}

	return &Exporter{
		source: source,
		outDir: outDir,
		config: config,
		logger: logger.Named("exporter"),
	}
}

// ExportAll loads the leaderboard and writes every configured format.
// Formats are written concurrently.
func (e *Exporter) ExportAll(ctx context.Context) (*Summary, error) {
	if e.config.Anonymize && !e.config.HashType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHashType, e.config.HashType)
	}

	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := e.source.Leaderboard(ctx, e.config.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	records := e.toRecords(entries)
	if e.config.ExportedAt.IsZero() {
		e.config.ExportedAt = time.Now().UTC()
	}

	e.logger.Info("Exporting leaderboard",
		zap.Int("records", len(records)),
		zap.Bool("anonymize", e.config.Anonymize),
		zap.String("outDir", e.outDir))

	if err := e.writeConfig(); err != nil {
		return nil, err
	}

	files := make([]string, len(e.config.Formats))
	p := pool.New().WithErrors().WithContext(ctx)
	for i, format := range e.config.Formats {
		p.Go(func(context.Context) error {
			name, err := e.export(format, records)
			if err != nil {
				return fmt.Errorf("failed to export %s format: %w", format, err)
			}
			files[i] = name
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Records: len(records), Files: []string{ConfigFileName}}
	for _, name := range files {
		if name != "" {
			summary.Files = append(summary.Files, name)
		}
	}

	e.logger.Info("Export completed", zap.Strings("files", summary.Files))

	return summary, nil
}

// toRecords converts leaderboard entries, hashing member IDs when anonymizing.
func (e *Exporter) toRecords(entries []*dbTypes.LeaderboardEntry) []*types.Record {
	var hashes []string
	if e.config.Anonymize {
		ids := make([]uint64, len(entries))
		for i, entry := range entries {
			ids[i] = entry.UserID
		}
		hashes = hashIDs(ids, e.config.Salt, e.config.HashType, e.config.Concurrency,
			e.config.Iterations, e.config.Memory)
	}

	records := make([]*types.Record, len(entries))
	for i, entry := range entries {
		record := &types.Record{
			Rank:           entry.Rank,
			UserRef:        strconv.FormatUint(entry.UserID, 10),
			Name:           entry.Name,
			Points:         entry.Points,
			Reputation:     entry.Reputation,
			Tier:           entry.Tier.String(),
			TasksCompleted: entry.TasksCompleted,
		}
		if hashes != nil {
			record.UserRef = hashes[i]
			record.Name = ""
		}
		records[i] = record
	}

	return records
}

// writeConfig saves the export metadata.
func (e *Exporter) writeConfig() error {
	jsonConfig := struct {
		*Config

		EngineVersion string `json:"engineVersion"`
	}{
		Config:        e.config,
		EngineVersion: EngineVersion,
	}

	data, err := sonic.MarshalIndent(jsonConfig, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal export config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(e.outDir, ConfigFileName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write export config: %w", err)
	}

	return nil
}

// export writes one format and returns the file it produced, or an empty
// name when there was nothing to write.
func (e *Exporter) export(format Format, records []*types.Record) (string, error) {
	switch format {
	case FormatSQLite:
		return sqlite.FileName, sqlite.New(e.outDir).Export(records)
	case FormatCSV:
		return csv.FileName, csv.New(e.outDir).Export(records)
	case FormatChart:
		err := chart.New(e.outDir).Export(records)
		if errors.Is(err, chart.ErrNoRecords) {
			e.logger.Warn("Skipping chart for empty leaderboard")
			return "", nil
		}
		return chart.FileName, err
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
