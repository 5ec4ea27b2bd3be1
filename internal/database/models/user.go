package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/raxnet/patrol/internal/database/dbretry"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UserModel handles database operations for member accounts.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a UserModel with database access.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// GetUserForUpdate loads a user and locks the row until the transaction ends.
func (r *UserModel) GetUserForUpdate(ctx context.Context, tx bun.IDB, userID uint64) (*types.User, error) {
	var user types.User
	err := tx.NewSelect().Model(&user).
		Where("id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w (userID=%d)", err, userID)
	}

	return &user, nil
}

// GetUserByID retrieves a user without locking.
func (r *UserModel) GetUserByID(ctx context.Context, userID uint64) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		var user types.User
		err := r.db.NewSelect().Model(&user).
			Where("id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user: %w (userID=%d)", err, userID)
		}

		return &user, nil
	})
}

// InsertUser creates a user and fills in the generated ID.
func (r *UserModel) InsertUser(ctx context.Context, tx bun.IDB, user *types.User) error {
	_, err := tx.NewInsert().Model(user).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w (name=%s)", err, user.Name)
	}

	return nil
}

// UpdateUser persists the mutable account fields.
func (r *UserModel) UpdateUser(ctx context.Context, tx bun.IDB, user *types.User) error {
	result, err := tx.NewUpdate().Model(user).
		Column("points", "reputation", "tasks_completed", "points_earned",
			"last_daily_bonus_claimed", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user: %w (userID=%d)", err, user.ID)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

// GetUsersByPoints returns users ordered by points, ties broken by ID.
func (r *UserModel) GetUsersByPoints(ctx context.Context, limit int) ([]*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.User, error) {
		var users []*types.User
		query := r.db.NewSelect().Model(&users).
			Order("points DESC", "id ASC")
		if limit > 0 {
			query = query.Limit(limit)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get users by points: %w", err)
		}

		return users, nil
	})
}
