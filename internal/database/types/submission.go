package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/types/enum"
)

// TaskSubmission is a member's proof that they completed a task.
type TaskSubmission struct {
	ID            uuid.UUID             `bun:",pk,type:uuid"      json:"id"`
	TaskID        uuid.UUID             `bun:",notnull,type:uuid" json:"taskId"`
	SubmitterID   uint64                `bun:",notnull"           json:"submitterId"`
	ProofImageRef string                `bun:",notnull"           json:"proofImageRef"`
	Status        enum.SubmissionStatus `bun:",notnull"           json:"status"`
	CreatedAt     time.Time             `bun:",notnull"           json:"createdAt"`
	SettledAt     *time.Time            `bun:",nullzero"          json:"settledAt"`

	Verdicts map[uint64]enum.Verdict `bun:"-" json:"verdicts"`
}

// SubmissionVerdict is one reviewer's verdict on a submission.
type SubmissionVerdict struct {
	SubmissionID uuid.UUID    `bun:",pk,type:uuid" json:"submissionId"`
	ReviewerID   uint64       `bun:",pk"           json:"reviewerId"`
	Verdict      enum.Verdict `bun:",notnull"      json:"verdict"`
	CreatedAt    time.Time    `bun:",notnull"      json:"createdAt"`
}

// Tally counts the verdicts cast on a submission.
type Tally struct {
	Approvals  int `json:"approvals"`
	Rejections int `json:"rejections"`
}

// Tally counts the submission's verdicts.
func (s *TaskSubmission) Tally() Tally {
	var tally Tally
	for _, verdict := range s.Verdicts {
		switch verdict {
		case enum.VerdictApproved:
			tally.Approvals++
		case enum.VerdictRejected:
			tally.Rejections++
		}
	}
	return tally
}

// HasReviewed reports whether the reviewer already cast a verdict.
func (s *TaskSubmission) HasReviewed(reviewerID uint64) bool {
	_, ok := s.Verdicts[reviewerID]
	return ok
}

// Clone returns a deep copy of the submission.
func (s *TaskSubmission) Clone() *TaskSubmission {
	c := *s
	if s.SettledAt != nil {
		settled := *s.SettledAt
		c.SettledAt = &settled
	}
	c.Verdicts = make(map[uint64]enum.Verdict, len(s.Verdicts))
	for reviewerID, verdict := range s.Verdicts {
		c.Verdicts[reviewerID] = verdict
	}
	return &c
}

// VerdictResult is returned to the caller after a verdict is cast.
type VerdictResult struct {
	Submission *TaskSubmission        `json:"submission"`
	Task       *Task                  `json:"task"`
	Tally      Tally                  `json:"tally"`
	Outcome    enum.SettlementOutcome `json:"outcome"`
}

// Settled reports whether the verdict moved the submission to a terminal state.
func (r *VerdictResult) Settled() bool {
	return r.Outcome != enum.SettlementOutcomePending
}

// Err returns ErrTaskCapacityExceeded when the approval could not be
// credited because the task was already full, and nil otherwise.
func (r *VerdictResult) Err() error {
	if r.Outcome == enum.SettlementOutcomeCapacityExceeded {
		return ErrTaskCapacityExceeded
	}
	return nil
}
