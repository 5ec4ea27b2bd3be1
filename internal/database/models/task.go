package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/dbretry"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// TaskModel handles database operations for posted tasks.
type TaskModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTask creates a TaskModel with database access.
func NewTask(db *bun.DB, logger *zap.Logger) *TaskModel {
	return &TaskModel{
		db:     db,
		logger: logger.Named("db_task"),
	}
}

// GetTaskForUpdate loads a task and locks the row until the transaction ends.
func (r *TaskModel) GetTaskForUpdate(ctx context.Context, tx bun.IDB, taskID uuid.UUID) (*types.Task, error) {
	var task types.Task
	err := tx.NewSelect().Model(&task).
		Where("id = ?", taskID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to lock task: %w (taskID=%s)", err, taskID)
	}

	return &task, nil
}

// GetTaskByID retrieves a task without locking.
func (r *TaskModel) GetTaskByID(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Task, error) {
		var task types.Task
		err := r.db.NewSelect().Model(&task).
			Where("id = ?", taskID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to get task: %w (taskID=%s)", err, taskID)
		}

		return &task, nil
	})
}

// InsertTask creates a task.
func (r *TaskModel) InsertTask(ctx context.Context, tx bun.IDB, task *types.Task) error {
	if _, err := tx.NewInsert().Model(task).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert task: %w (taskID=%s)", err, task.ID)
	}
	return nil
}

// UpdateTask persists the completion counter and status.
func (r *TaskModel) UpdateTask(ctx context.Context, tx bun.IDB, task *types.Task) error {
	result, err := tx.NewUpdate().Model(task).
		Column("completed", "status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task: %w (taskID=%s)", err, task.ID)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return types.ErrTaskNotFound
	}

	return nil
}

// GetOpenTasks returns active tasks matching the filter.
func (r *TaskModel) GetOpenTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Task, error) {
		var tasks []*types.Task
		query := r.db.NewSelect().Model(&tasks).
			Where("status = ?", enum.TaskStatusActive)

		if filter.ExcludeOwnerID != 0 {
			query = query.Where("owner_id != ?", filter.ExcludeOwnerID)
		}
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}

		switch filter.SortBy {
		case enum.TaskSortByReward:
			query = query.Order("reward DESC", "created_at DESC", "id ASC")
		default:
			query = query.Order("created_at DESC", "id ASC")
		}

		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get open tasks: %w", err)
		}

		return tasks, nil
	})
}

// GetTasksByOwner returns every task posted by an owner, newest first.
func (r *TaskModel) GetTasksByOwner(ctx context.Context, ownerID uint64) ([]*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Task, error) {
		var tasks []*types.Task
		err := r.db.NewSelect().Model(&tasks).
			Where("owner_id = ?", ownerID).
			Order("created_at DESC", "id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tasks by owner: %w (ownerID=%d)", err, ownerID)
		}

		return tasks, nil
	})
}
