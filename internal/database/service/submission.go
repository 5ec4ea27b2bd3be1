package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"go.uber.org/zap"
)

// DefaultPatrolQueueLimit caps the patrol queue when no limit is given.
const DefaultPatrolQueueLimit = 50

// SubmissionService handles proof submissions and verdict recording.
type SubmissionService struct {
	reader store.Reader
	logger *zap.Logger
}

// NewSubmission creates a new submission service.
func NewSubmission(reader store.Reader, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		reader: reader,
		logger: logger.Named("submission_service"),
	}
}

// CreateSubmission stores a pending submission with no verdicts. A member
// may hold only one pending or approved submission per task.
func (s *SubmissionService) CreateSubmission(
	ctx context.Context, tx store.Tx, taskID uuid.UUID, submitterID uint64, proofRef string,
) (*types.TaskSubmission, error) {
	proofRef = strings.TrimSpace(proofRef)
	if proofRef == "" {
		return nil, fmt.Errorf("%w: proof reference is required", types.ErrInvalidProof)
	}

	existing, err := tx.FindOpenSubmission(ctx, taskID, submitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submissions: %w", err)
	}
	if existing != nil {
		return nil, types.ErrDuplicateSubmission
	}

	submission := &types.TaskSubmission{
		ID:            uuid.New(),
		TaskID:        taskID,
		SubmitterID:   submitterID,
		ProofImageRef: proofRef,
		Status:        enum.SubmissionStatusPending,
		CreatedAt:     time.Now(),
		Verdicts:      make(map[uint64]enum.Verdict),
	}

	if err := tx.InsertSubmission(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Debug("Submission created",
		zap.String("submissionID", submission.ID.String()),
		zap.String("taskID", taskID.String()),
		zap.Uint64("submitterID", submitterID))

	return submission, nil
}

// CastVerdict records a reviewer's verdict on a pending submission and
// returns the submission with its updated tally. The submission stays
// locked for the rest of the transaction.
func (s *SubmissionService) CastVerdict(
	ctx context.Context, tx store.Tx, submissionID uuid.UUID, reviewerID uint64, verdict enum.Verdict,
) (*types.TaskSubmission, types.Tally, error) {
	submission, err := s.LockForReview(ctx, tx, submissionID, reviewerID, verdict)
	if err != nil {
		return nil, types.Tally{}, err
	}

	tally, err := s.RecordVerdict(ctx, tx, submission, reviewerID, verdict)
	if err != nil {
		return nil, types.Tally{}, err
	}

	return submission, tally, nil
}

// LockForReview locks a submission and checks that the reviewer may still
// cast the verdict on it. Nothing is written.
func (s *SubmissionService) LockForReview(
	ctx context.Context, tx store.Tx, submissionID uuid.UUID, reviewerID uint64, verdict enum.Verdict,
) (*types.TaskSubmission, error) {
	if !verdict.IsAVerdict() {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidVerdict, verdict)
	}

	submission, err := tx.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	switch {
	case submission.SubmitterID == reviewerID:
		return nil, types.ErrSelfReview
	case submission.HasReviewed(reviewerID):
		return nil, types.ErrAlreadyReviewed
	case submission.Status.IsTerminal():
		return nil, types.ErrSubmissionFinalized
	}

	return submission, nil
}

// RecordVerdict stores the verdict of a submission locked by LockForReview
// and returns the updated tally.
func (s *SubmissionService) RecordVerdict(
	ctx context.Context, tx store.Tx, submission *types.TaskSubmission, reviewerID uint64, verdict enum.Verdict,
) (types.Tally, error) {
	err := tx.InsertVerdict(ctx, &types.SubmissionVerdict{
		SubmissionID: submission.ID,
		ReviewerID:   reviewerID,
		Verdict:      verdict,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return types.Tally{}, err
	}

	if submission.Verdicts == nil {
		submission.Verdicts = make(map[uint64]enum.Verdict)
	}
	submission.Verdicts[reviewerID] = verdict

	return submission.Tally(), nil
}

// Finalize moves a pending submission to a terminal status.
func (s *SubmissionService) Finalize(
	ctx context.Context, tx store.Tx, submission *types.TaskSubmission, status enum.SubmissionStatus,
) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %q is not a terminal status", types.ErrInvalidVerdict, status)
	}
	if submission.Status.IsTerminal() {
		return types.ErrSubmissionFinalized
	}

	settledAt := time.Now()
	submission.Status = status
	submission.SettledAt = &settledAt

	if err := tx.UpdateSubmission(ctx, submission); err != nil {
		return fmt.Errorf("failed to finalize submission: %w", err)
	}

	return nil
}

// GetSubmission returns a snapshot of a submission with its verdicts.
func (s *SubmissionService) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*types.TaskSubmission, error) {
	return s.reader.FindSubmission(ctx, submissionID)
}

// PatrolQueue returns the pending submissions a reviewer may vote on,
// oldest first.
func (s *SubmissionService) PatrolQueue(
	ctx context.Context, reviewerID uint64, limit int,
) ([]*types.TaskSubmission, error) {
	if limit <= 0 {
		limit = DefaultPatrolQueueLimit
	}
	return s.reader.ListPatrolQueue(ctx, reviewerID, limit)
}

// ListBySubmitter returns a member's submissions, newest first.
func (s *SubmissionService) ListBySubmitter(
	ctx context.Context, submitterID uint64,
) ([]*types.TaskSubmission, error) {
	return s.reader.ListSubmissionsBySubmitter(ctx, submitterID)
}
