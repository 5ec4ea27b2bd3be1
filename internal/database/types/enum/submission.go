package enum

// SubmissionStatus represents the review state of a proof submission.
//
//go:generate go tool enumer -type=SubmissionStatus -trimprefix=SubmissionStatus
type SubmissionStatus int

const (
	// SubmissionStatusPending is awaiting patrol verdicts.
	SubmissionStatusPending SubmissionStatus = iota
	// SubmissionStatusApproved reached the approval quorum.
	SubmissionStatusApproved
	// SubmissionStatusRejected reached the rejection quorum.
	SubmissionStatusRejected
)

// IsTerminal reports whether the status can no longer change.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// Verdict is a single reviewer's decision on a submission.
//
//go:generate go tool enumer -type=Verdict -trimprefix=Verdict
type Verdict int

const (
	VerdictApproved Verdict = iota
	VerdictRejected
)

// SettlementOutcome describes what a cast verdict did to its submission.
//
//go:generate go tool enumer -type=SettlementOutcome -trimprefix=SettlementOutcome
type SettlementOutcome int

const (
	// SettlementOutcomePending means the quorum has not been reached yet.
	SettlementOutcomePending SettlementOutcome = iota
	// SettlementOutcomeApproved means the submission was approved and credited.
	SettlementOutcomeApproved
	// SettlementOutcomeRejected means the submission was rejected and penalized.
	SettlementOutcomeRejected
	// SettlementOutcomeCapacityExceeded means the submission was approved
	// after its task was already full, so no completion credit was paid.
	SettlementOutcomeCapacityExceeded
)
