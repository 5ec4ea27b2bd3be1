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

// SubmissionModel handles database operations for proofs and their verdicts.
type SubmissionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSubmission creates a SubmissionModel with database access.
func NewSubmission(db *bun.DB, logger *zap.Logger) *SubmissionModel {
	return &SubmissionModel{
		db:     db,
		logger: logger.Named("db_submission"),
	}
}

// GetSubmissionForUpdate loads a submission with its verdicts and locks the
// submission row until the transaction ends.
func (r *SubmissionModel) GetSubmissionForUpdate(
	ctx context.Context, tx bun.IDB, submissionID uuid.UUID,
) (*types.TaskSubmission, error) {
	var submission types.TaskSubmission
	err := tx.NewSelect().Model(&submission).
		Where("id = ?", submissionID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to lock submission: %w (submissionID=%s)", err, submissionID)
	}

	if err := r.attachVerdicts(ctx, tx, []*types.TaskSubmission{&submission}); err != nil {
		return nil, err
	}

	return &submission, nil
}

// GetSubmissionByID retrieves a submission with its verdicts without locking.
func (r *SubmissionModel) GetSubmissionByID(ctx context.Context, submissionID uuid.UUID) (*types.TaskSubmission, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.TaskSubmission, error) {
		var submission types.TaskSubmission
		err := r.db.NewSelect().Model(&submission).
			Where("id = ?", submissionID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrSubmissionNotFound
			}
			return nil, fmt.Errorf("failed to get submission: %w (submissionID=%s)", err, submissionID)
		}

		if err := r.attachVerdicts(ctx, r.db, []*types.TaskSubmission{&submission}); err != nil {
			return nil, err
		}

		return &submission, nil
	})
}

// FindOpenSubmission returns the submitter's pending or approved submission
// for a task, or nil if there is none.
func (r *SubmissionModel) FindOpenSubmission(
	ctx context.Context, tx bun.IDB, taskID uuid.UUID, submitterID uint64,
) (*types.TaskSubmission, error) {
	var submission types.TaskSubmission
	err := tx.NewSelect().Model(&submission).
		Where("task_id = ?", taskID).
		Where("submitter_id = ?", submitterID).
		Where("status != ?", enum.SubmissionStatusRejected).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // absence is not an error
		}
		return nil, fmt.Errorf("failed to find open submission: %w (taskID=%s, submitterID=%d)",
			err, taskID, submitterID)
	}

	return &submission, nil
}

// InsertSubmission creates a submission. The partial unique index on open
// submissions turns a concurrent duplicate into ErrDuplicateSubmission.
func (r *SubmissionModel) InsertSubmission(ctx context.Context, tx bun.IDB, submission *types.TaskSubmission) error {
	if _, err := tx.NewInsert().Model(submission).Exec(ctx); err != nil {
		if dbretry.IsUniqueViolation(err) {
			return types.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to insert submission: %w (submissionID=%s)", err, submission.ID)
	}
	return nil
}

// UpdateSubmission persists the status and settlement time.
func (r *SubmissionModel) UpdateSubmission(ctx context.Context, tx bun.IDB, submission *types.TaskSubmission) error {
	result, err := tx.NewUpdate().Model(submission).
		Column("status", "settled_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w (submissionID=%s)", err, submission.ID)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return types.ErrSubmissionNotFound
	}

	return nil
}

// InsertVerdict records a reviewer's verdict. The composite primary key
// turns a second vote by the same reviewer into ErrAlreadyReviewed.
func (r *SubmissionModel) InsertVerdict(ctx context.Context, tx bun.IDB, verdict *types.SubmissionVerdict) error {
	if _, err := tx.NewInsert().Model(verdict).Exec(ctx); err != nil {
		if dbretry.IsUniqueViolation(err) {
			return types.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to insert verdict: %w (submissionID=%s, reviewerID=%d)",
			err, verdict.SubmissionID, verdict.ReviewerID)
	}
	return nil
}

// GetSubmissionsBySubmitter returns a member's submissions, newest first.
func (r *SubmissionModel) GetSubmissionsBySubmitter(
	ctx context.Context, submitterID uint64,
) ([]*types.TaskSubmission, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.TaskSubmission, error) {
		var submissions []*types.TaskSubmission
		err := r.db.NewSelect().Model(&submissions).
			Where("submitter_id = ?", submitterID).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get submissions: %w (submitterID=%d)", err, submitterID)
		}

		if err := r.attachVerdicts(ctx, r.db, submissions); err != nil {
			return nil, err
		}

		return submissions, nil
	})
}

// GetPatrolQueue returns pending submissions the reviewer neither submitted
// nor reviewed, oldest first.
func (r *SubmissionModel) GetPatrolQueue(
	ctx context.Context, reviewerID uint64, limit int,
) ([]*types.TaskSubmission, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.TaskSubmission, error) {
		var submissions []*types.TaskSubmission
		query := r.db.NewSelect().Model(&submissions).
			Where("status = ?", enum.SubmissionStatusPending).
			Where("submitter_id != ?", reviewerID).
			Where(`NOT EXISTS (
				SELECT 1 FROM submission_verdicts AS sv
				WHERE sv.submission_id = task_submission.id AND sv.reviewer_id = ?
			)`, reviewerID).
			Order("created_at ASC")
		if limit > 0 {
			query = query.Limit(limit)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get patrol queue: %w (reviewerID=%d)", err, reviewerID)
		}

		if err := r.attachVerdicts(ctx, r.db, submissions); err != nil {
			return nil, err
		}

		return submissions, nil
	})
}

// attachVerdicts loads the verdicts of the given submissions in one query.
func (r *SubmissionModel) attachVerdicts(ctx context.Context, db bun.IDB, submissions []*types.TaskSubmission) error {
	if len(submissions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(submissions))
	byID := make(map[uuid.UUID]*types.TaskSubmission, len(submissions))
	for _, submission := range submissions {
		submission.Verdicts = make(map[uint64]enum.Verdict)
		ids = append(ids, submission.ID)
		byID[submission.ID] = submission
	}

	var verdicts []*types.SubmissionVerdict
	err := db.NewSelect().Model(&verdicts).
		Where("submission_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to get verdicts: %w", err)
	}

	for _, verdict := range verdicts {
		if submission, ok := byID[verdict.SubmissionID]; ok {
			submission.Verdicts[verdict.ReviewerID] = verdict.Verdict
		}
	}

	return nil
}
