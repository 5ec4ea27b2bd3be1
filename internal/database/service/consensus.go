package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"go.uber.org/zap"
)

// ConsensusService settles submissions once enough patrol verdicts agree.
//
// Every call runs inside the caller's transaction and takes its locks in a
// fixed order: submission, then task, then the involved users by ascending
// ID. Settlement happens at most once because the verdict, the quorum
// check and the status transition share that transaction.
type ConsensusService struct {
	submissions *SubmissionService
	tasks       *TaskService
	ledger      *LedgerService
	quorum      int
	logger      *zap.Logger
}

// NewConsensus creates a new consensus service.
func NewConsensus(
	submissions *SubmissionService,
	tasks *TaskService,
	ledger *LedgerService,
	quorum int,
	logger *zap.Logger,
) *ConsensusService {
	if quorum < 1 {
		quorum = DefaultQuorum
	}
	return &ConsensusService{
		submissions: submissions,
		tasks:       tasks,
		ledger:      ledger,
		quorum:      quorum,
		logger:      logger.Named("consensus_service"),
	}
}

// Quorum returns the number of matching verdicts that settles a submission.
func (s *ConsensusService) Quorum() int {
	return s.quorum
}

// CastVerdict records a verdict, rewards the reviewer and settles the
// submission when a quorum is reached.
func (s *ConsensusService) CastVerdict(
	ctx context.Context, tx store.Tx, submissionID uuid.UUID, reviewerID uint64, verdict enum.Verdict,
) (*types.VerdictResult, error) {
	submission, err := s.submissions.LockForReview(ctx, tx, submissionID, reviewerID, verdict)
	if err != nil {
		return nil, err
	}

	task, err := tx.GetTask(ctx, submission.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task of submission: %w", err)
	}

	// The verdict row references the reviewer, so users are locked first
	if err := lockUsers(ctx, tx, reviewerID, submission.SubmitterID); err != nil {
		return nil, err
	}

	tally, err := s.submissions.RecordVerdict(ctx, tx, submission, reviewerID, verdict)
	if err != nil {
		return nil, err
	}

	ref := submission.ID.String()
	if _, err := s.ledger.RewardPatrolParticipation(ctx, tx, reviewerID, ref); err != nil {
		return nil, fmt.Errorf("failed to reward reviewer: %w", err)
	}

	result := &types.VerdictResult{
		Submission: submission,
		Task:       task,
		Tally:      tally,
		Outcome:    enum.SettlementOutcomePending,
	}

	switch {
	case tally.Approvals >= s.quorum:
		if err := s.approve(ctx, tx, result); err != nil {
			return nil, err
		}
	case tally.Rejections >= s.quorum:
		if err := s.reject(ctx, tx, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// approve finalizes an approved submission and pays its submitter. When the
// task is already full the approval stands but no completion is credited.
func (s *ConsensusService) approve(ctx context.Context, tx store.Tx, result *types.VerdictResult) error {
	submission := result.Submission

	if err := s.submissions.Finalize(ctx, tx, submission, enum.SubmissionStatusApproved); err != nil {
		return err
	}

	task, err := s.tasks.IncrementCompletion(ctx, tx, submission.TaskID)
	if err != nil {
		if !errors.Is(err, types.ErrTaskAlreadyComplete) {
			return fmt.Errorf("failed to count completion: %w", err)
		}

		s.logger.Warn("Approved submission exceeds task capacity, completion not credited",
			zap.String("submissionID", submission.ID.String()),
			zap.String("taskID", submission.TaskID.String()),
			zap.Uint64("submitterID", submission.SubmitterID),
			zap.Int64("quantity", task.Quantity))

		result.Task = task
		result.Outcome = enum.SettlementOutcomeCapacityExceeded
		return nil
	}
	result.Task = task

	_, err = s.ledger.RecordTaskCompletion(ctx, tx, submission.SubmitterID, task.Reward, submission.ID.String())
	if err != nil {
		return fmt.Errorf("failed to credit completion: %w", err)
	}

	s.logger.Info("Submission approved",
		zap.String("submissionID", submission.ID.String()),
		zap.Uint64("submitterID", submission.SubmitterID),
		zap.Int64("reward", task.Reward))

	result.Outcome = enum.SettlementOutcomeApproved
	return nil
}

// reject finalizes a rejected submission and penalizes its submitter.
func (s *ConsensusService) reject(ctx context.Context, tx store.Tx, result *types.VerdictResult) error {
	submission := result.Submission

	if err := s.submissions.Finalize(ctx, tx, submission, enum.SubmissionStatusRejected); err != nil {
		return err
	}

	if _, err := s.ledger.PenalizeFailedSubmission(ctx, tx, submission.SubmitterID, submission.ID.String()); err != nil {
		return fmt.Errorf("failed to penalize submitter: %w", err)
	}

	s.logger.Info("Submission rejected",
		zap.String("submissionID", submission.ID.String()),
		zap.Uint64("submitterID", submission.SubmitterID))

	result.Outcome = enum.SettlementOutcomeRejected
	return nil
}

// lockUsers locks the given users in ascending ID order.
func lockUsers(ctx context.Context, tx store.Tx, userIDs ...uint64) error {
	slices.Sort(userIDs)
	for _, userID := range slices.Compact(userIDs) {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to lock user %d: %w", userID, err)
		}
	}
	return nil
}
