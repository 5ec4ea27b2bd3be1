package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"go.uber.org/zap"
)

// TaskService handles task-related business logic.
type TaskService struct {
	reader store.Reader
	logger *zap.Logger
}

// NewTask creates a new task service.
func NewTask(reader store.Reader, logger *zap.Logger) *TaskService {
	return &TaskService{
		reader: reader,
		logger: logger.Named("task_service"),
	}
}

// ValidateTaskParameters checks the type, target URL and quantity of a new
// task. Failures wrap ErrInvalidTaskParameters.
func ValidateTaskParameters(taskType enum.TaskType, targetURL string, quantity int64) error {
	if !taskType.IsATaskType() {
		return fmt.Errorf("%w: unknown task type %q", types.ErrInvalidTaskParameters, taskType)
	}

	if quantity < types.MinTaskQuantity || quantity > types.MaxTaskQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d, got %d",
			types.ErrInvalidTaskParameters, types.MinTaskQuantity, types.MaxTaskQuantity, quantity)
	}

	if !isValidTargetURL(targetURL) {
		return fmt.Errorf("%w: target URL %q is not a valid link", types.ErrInvalidTaskParameters, targetURL)
	}

	return nil
}

// isValidTargetURL accepts absolute http, https and ftp links with a host.
func isValidTargetURL(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "ftp":
	default:
		return false
	}

	host := parsed.Hostname()
	return host != "" && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}

// CreateTask validates and stores a new active task. The reward comes from
// the canonical rate table. The owner's balance is not checked here.
func (s *TaskService) CreateTask(
	ctx context.Context, tx store.Tx, ownerID uint64, taskType enum.TaskType, targetURL string, quantity int64,
) (*types.Task, error) {
	targetURL = strings.TrimSpace(targetURL)
	if err := ValidateTaskParameters(taskType, targetURL, quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	task := &types.Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Type:      taskType,
		TargetURL: targetURL,
		Reward:    taskType.Reward(),
		Quantity:  quantity,
		Completed: 0,
		Status:    enum.TaskStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tx.InsertTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Debug("Task created",
		zap.String("taskID", task.ID.String()),
		zap.Uint64("ownerID", ownerID),
		zap.String("type", taskType.String()),
		zap.Int64("quantity", quantity))

	return task, nil
}

// IncrementCompletion counts one approved completion and closes the task
// when it reaches its quantity. A full task is left untouched and
// ErrTaskAlreadyComplete is returned together with the task.
func (s *TaskService) IncrementCompletion(ctx context.Context, tx store.Tx, taskID uuid.UUID) (*types.Task, error) {
	task, err := tx.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.IsFull() {
		return task, types.ErrTaskAlreadyComplete
	}

	task.Completed++
	if task.IsFull() {
		task.Status = enum.TaskStatusCompleted
	}
	task.UpdatedAt = time.Now()

	if err := tx.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if task.Status == enum.TaskStatusCompleted {
		s.logger.Info("Task completed",
			zap.String("taskID", task.ID.String()),
			zap.Int64("quantity", task.Quantity))
	}

	return task, nil
}

// GetTask returns a snapshot of a task.
func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
	return s.reader.FindTask(ctx, taskID)
}

// ListOpenTasks returns the active tasks matching the filter.
func (s *TaskService) ListOpenTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	if filter.Type != nil && !filter.Type.IsATaskType() {
		return nil, fmt.Errorf("%w: unknown task type %q", types.ErrInvalidTaskParameters, *filter.Type)
	}
	if !filter.SortBy.IsATaskSortBy() {
		return nil, fmt.Errorf("%w: unknown sort order %q", types.ErrInvalidTaskParameters, filter.SortBy)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: negative pagination", types.ErrInvalidTaskParameters)
	}
	return s.reader.ListOpenTasks(ctx, filter)
}

// ListOwnedTasks returns every task posted by an owner, newest first.
func (s *TaskService) ListOwnedTasks(ctx context.Context, ownerID uint64) ([]*types.Task, error) {
	return s.reader.ListTasksByOwner(ctx, ownerID)
}
