package types

import "errors"

// Validation errors.
var (
	ErrInvalidTaskParameters = errors.New("invalid task parameters")
	ErrInvalidAmount         = errors.New("amount must be a positive integer")
	ErrInvalidVerdict        = errors.New("invalid verdict")
	ErrInvalidProof          = errors.New("invalid proof")
	ErrInvalidProfile        = errors.New("invalid profile")
)

// Business rule violations.
var (
	ErrInsufficientFunds    = errors.New("insufficient points")
	ErrDuplicateSubmission  = errors.New("proof already submitted for this task")
	ErrSelfReview           = errors.New("cannot review own submission")
	ErrAlreadyReviewed      = errors.New("submission already reviewed by this user")
	ErrSubmissionFinalized  = errors.New("submission already finalized")
	ErrAlreadyClaimedToday  = errors.New("daily bonus already claimed today")
	ErrTaskCapacityExceeded = errors.New("task capacity exceeded")
	ErrTaskAlreadyComplete  = errors.New("task already complete")
	ErrTaskNotActive        = errors.New("task is not active")
	ErrOwnTask              = errors.New("cannot submit proof for own task")
)

// Not found errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

var businessErrors = []error{ //nolint:gochecknoglobals // -
	ErrInvalidTaskParameters, ErrInvalidAmount, ErrInvalidVerdict, ErrInvalidProof, ErrInvalidProfile,
	ErrInsufficientFunds, ErrDuplicateSubmission, ErrSelfReview, ErrAlreadyReviewed,
	ErrSubmissionFinalized, ErrAlreadyClaimedToday, ErrTaskCapacityExceeded,
	ErrTaskAlreadyComplete, ErrTaskNotActive, ErrOwnTask,
	ErrUserNotFound, ErrTaskNotFound, ErrSubmissionNotFound,
}

// IsBusinessError reports whether err is a validation, business rule or
// not-found failure that should be shown to the user rather than treated
// as an infrastructure fault.
func IsBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
