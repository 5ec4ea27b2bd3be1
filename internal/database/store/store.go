// Package store defines the persistence boundary of the task market.
//
// Services never touch a concrete database. They receive a Tx inside
// Store.RunInTx, and every entity loaded through a Tx stays locked until the
// transaction commits or rolls back. Writes made through a Tx become visible
// only if the callback returns nil.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/types"
)

// Tx is a unit of work over users, tasks, submissions and the ledger journal.
type Tx interface {
	// GetUser loads and locks a user. Returns types.ErrUserNotFound if absent.
	GetUser(ctx context.Context, id uint64) (*types.User, error)
	// InsertUser stores a new user and assigns its ID.
	InsertUser(ctx context.Context, user *types.User) error
	// UpdateUser persists balance, reputation, stats and bonus fields.
	UpdateUser(ctx context.Context, user *types.User) error

	// GetTask loads and locks a task. Returns types.ErrTaskNotFound if absent.
	GetTask(ctx context.Context, id uuid.UUID) (*types.Task, error)
	InsertTask(ctx context.Context, task *types.Task) error
	// UpdateTask persists the completion counter and status.
	UpdateTask(ctx context.Context, task *types.Task) error

	// GetSubmission loads and locks a submission together with its verdicts.
	// Returns types.ErrSubmissionNotFound if absent.
	GetSubmission(ctx context.Context, id uuid.UUID) (*types.TaskSubmission, error)
	// FindOpenSubmission returns the submitter's pending or approved
	// submission for a task, or nil if there is none.
	FindOpenSubmission(ctx context.Context, taskID uuid.UUID, submitterID uint64) (*types.TaskSubmission, error)
	// InsertSubmission stores a new submission. Returns
	// types.ErrDuplicateSubmission if an open one already exists.
	InsertSubmission(ctx context.Context, submission *types.TaskSubmission) error
	// UpdateSubmission persists the status and settlement time.
	UpdateSubmission(ctx context.Context, submission *types.TaskSubmission) error
	// InsertVerdict stores a verdict. Returns types.ErrAlreadyReviewed if the
	// reviewer already voted on the submission.
	InsertVerdict(ctx context.Context, verdict *types.SubmissionVerdict) error

	// InsertLedgerEntry appends to the ledger journal.
	InsertLedgerEntry(ctx context.Context, entry *types.LedgerEntry) error
}

// Reader serves the read-only queries of the market. Results are snapshots
// and take no locks.
type Reader interface {
	FindUser(ctx context.Context, id uint64) (*types.User, error)
	FindTask(ctx context.Context, id uuid.UUID) (*types.Task, error)
	FindSubmission(ctx context.Context, id uuid.UUID) (*types.TaskSubmission, error)

	// ListOpenTasks returns active tasks matching the filter.
	ListOpenTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error)
	// ListTasksByOwner returns every task of an owner, newest first.
	ListTasksByOwner(ctx context.Context, ownerID uint64) ([]*types.Task, error)
	// ListSubmissionsBySubmitter returns a member's submissions, newest first.
	ListSubmissionsBySubmitter(ctx context.Context, submitterID uint64) ([]*types.TaskSubmission, error)
	// ListPatrolQueue returns pending submissions the reviewer did not submit
	// and has not reviewed yet, oldest first.
	ListPatrolQueue(ctx context.Context, reviewerID uint64, limit int) ([]*types.TaskSubmission, error)
	// ListUsersByPoints returns users ordered by points descending, ties
	// broken by registration order.
	ListUsersByPoints(ctx context.Context, limit int) ([]*types.User, error)
	// ListLedgerEntries returns a user's journal, newest first.
	ListLedgerEntries(ctx context.Context, userID uint64, limit int) ([]*types.LedgerEntry, error)
}

// Store is the injected persistence collaborator.
type Store interface {
	Reader
	// RunInTx runs fn in a single transaction. Nothing fn wrote is kept
	// when it returns an error.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
