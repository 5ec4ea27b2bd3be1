package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/uptrace/bun"
)

var _ store.Tx = (*txImpl)(nil)

// txImpl routes store.Tx calls to the models inside one bun transaction.
type txImpl struct {
	tx   bun.Tx
	repo *Repository
}

func (t *txImpl) GetUser(ctx context.Context, id uint64) (*types.User, error) {
	return t.repo.User().GetUserForUpdate(ctx, t.tx, id)
}

func (t *txImpl) InsertUser(ctx context.Context, user *types.User) error {
	return t.repo.User().InsertUser(ctx, t.tx, user)
}

func (t *txImpl) UpdateUser(ctx context.Context, user *types.User) error {
	return t.repo.User().UpdateUser(ctx, t.tx, user)
}

func (t *txImpl) GetTask(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	return t.repo.Task().GetTaskForUpdate(ctx, t.tx, id)
}

func (t *txImpl) InsertTask(ctx context.Context, task *types.Task) error {
	return t.repo.Task().InsertTask(ctx, t.tx, task)
}

func (t *txImpl) UpdateTask(ctx context.Context, task *types.Task) error {
	return t.repo.Task().UpdateTask(ctx, t.tx, task)
}

func (t *txImpl) GetSubmission(ctx context.Context, id uuid.UUID) (*types.TaskSubmission, error) {
	return t.repo.Submission().GetSubmissionForUpdate(ctx, t.tx, id)
}

func (t *txImpl) FindOpenSubmission(
	ctx context.Context, taskID uuid.UUID, submitterID uint64,
) (*types.TaskSubmission, error) {
	return t.repo.Submission().FindOpenSubmission(ctx, t.tx, taskID, submitterID)
}

func (t *txImpl) InsertSubmission(ctx context.Context, submission *types.TaskSubmission) error {
	return t.repo.Submission().InsertSubmission(ctx, t.tx, submission)
}

func (t *txImpl) UpdateSubmission(ctx context.Context, submission *types.TaskSubmission) error {
	return t.repo.Submission().UpdateSubmission(ctx, t.tx, submission)
}

func (t *txImpl) InsertVerdict(ctx context.Context, verdict *types.SubmissionVerdict) error {
	return t.repo.Submission().InsertVerdict(ctx, t.tx, verdict)
}

func (t *txImpl) InsertLedgerEntry(ctx context.Context, entry *types.LedgerEntry) error {
	return t.repo.Ledger().InsertEntry(ctx, t.tx, entry)
}
