package models

import (
	"context"
	"fmt"

	"github.com/raxnet/patrol/internal/database/dbretry"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// LedgerModel handles database operations for the points journal.
type LedgerModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLedger creates a LedgerModel with database access.
func NewLedger(db *bun.DB, logger *zap.Logger) *LedgerModel {
	return &LedgerModel{
		db:     db,
		logger: logger.Named("db_ledger"),
	}
}

// InsertEntry appends an entry to the journal.
func (r *LedgerModel) InsertEntry(ctx context.Context, tx bun.IDB, entry *types.LedgerEntry) error {
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w (userID=%d, type=%s)", err, entry.UserID, entry.Type)
	}
	return nil
}

// GetEntriesByUser returns a user's journal, newest first.
func (r *LedgerModel) GetEntriesByUser(ctx context.Context, userID uint64, limit int) ([]*types.LedgerEntry, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.LedgerEntry, error) {
		var entries []*types.LedgerEntry
		query := r.db.NewSelect().Model(&entries).
			Where("user_id = ?", userID).
			Order("created_at DESC")
		if limit > 0 {
			query = query.Limit(limit)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get ledger entries: %w (userID=%d)", err, userID)
		}

		return entries, nil
	})
}

// GetBalanceDrifts returns every user whose points or reputation differ from
// the totals of their journal.
func (r *LedgerModel) GetBalanceDrifts(ctx context.Context) ([]*types.BalanceDrift, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.BalanceDrift, error) {
		var drifts []*types.BalanceDrift
		err := r.db.NewRaw(`
			SELECT u.id AS user_id, u.points, u.reputation,
				COALESCE(SUM(l.points_delta), 0) AS journal_points,
				COALESCE(SUM(l.reputation_delta), 0) AS journal_reputation
			FROM users AS u
			LEFT JOIN ledger_entries AS l ON l.user_id = u.id
			GROUP BY u.id
			HAVING u.points <> COALESCE(SUM(l.points_delta), 0)
				OR u.reputation <> COALESCE(SUM(l.reputation_delta), 0)
			ORDER BY u.id
		`).Scan(ctx, &drifts)
		if err != nil {
			return nil, fmt.Errorf("failed to audit balances: %w", err)
		}

		return drifts, nil
	})
}
