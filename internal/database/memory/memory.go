// Package memory provides an in-process implementation of store.Store.
//
// Transactions are serialized by a single writer lock and stage their writes
// in a private overlay that is merged into the committed state only when the
// transaction callback succeeds. Readers see committed state only.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
)

var _ store.Store = (*Store)(nil)

// Store keeps every entity in memory.
type Store struct {
	writeMu sync.Mutex   // Serializes transactions
	mu      sync.RWMutex // Guards committed state against readers during commit

	users       map[uint64]*types.User
	nextUserID  uint64
	tasks       map[uuid.UUID]*types.Task
	submissions map[uuid.UUID]*types.TaskSubmission
	ledger      []*types.LedgerEntry
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       make(map[uint64]*types.User),
		nextUserID:  1,
		tasks:       make(map[uuid.UUID]*types.Task),
		submissions: make(map[uuid.UUID]*types.TaskSubmission),
	}
}

// RunInTx runs fn against a staged view of the store and commits the staged
// writes only if fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx := newTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	tx.commit()
	s.mu.Unlock()

	return nil
}

// FindUser returns a snapshot of a user.
func (s *Store) FindUser(_ context.Context, id uint64) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return user.Clone(), nil
}

// FindTask returns a snapshot of a task.
func (s *Store) FindTask(_ context.Context, id uuid.UUID) (*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, types.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// FindSubmission returns a snapshot of a submission.
func (s *Store) FindSubmission(_ context.Context, id uuid.UUID) (*types.TaskSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	submission, ok := s.submissions[id]
	if !ok {
		return nil, types.ErrSubmissionNotFound
	}
	return submission.Clone(), nil
}

// ListOpenTasks returns active tasks matching the filter.
func (s *Store) ListOpenTasks(_ context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	s.mu.RLock()
	tasks := make([]*types.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if task.Status != enum.TaskStatusActive {
			continue
		}
		if filter.ExcludeOwnerID != 0 && task.OwnerID == filter.ExcludeOwnerID {
			continue
		}
		if filter.Type != nil && task.Type != *filter.Type {
			continue
		}
		tasks = append(tasks, task.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(tasks, func(a, b *types.Task) int {
		if filter.SortBy == enum.TaskSortByReward {
			if c := cmp.Compare(b.Reward, a.Reward); c != 0 {
				return c
			}
		}
		return newestFirst(a, b)
	})

	return paginate(tasks, filter.Offset, filter.Limit), nil
}

// ListTasksByOwner returns every task of an owner, newest first.
func (s *Store) ListTasksByOwner(_ context.Context, ownerID uint64) ([]*types.Task, error) {
	s.mu.RLock()
	var tasks []*types.Task
	for _, task := range s.tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, task.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(tasks, newestFirst)
	return tasks, nil
}

// ListSubmissionsBySubmitter returns a member's submissions, newest first.
func (s *Store) ListSubmissionsBySubmitter(_ context.Context, submitterID uint64) ([]*types.TaskSubmission, error) {
	s.mu.RLock()
	var submissions []*types.TaskSubmission
	for _, submission := range s.submissions {
		if submission.SubmitterID == submitterID {
			submissions = append(submissions, submission.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(submissions, func(a, b *types.TaskSubmission) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return submissions, nil
}

// ListPatrolQueue returns the submissions a reviewer may still vote on.
func (s *Store) ListPatrolQueue(_ context.Context, reviewerID uint64, limit int) ([]*types.TaskSubmission, error) {
	s.mu.RLock()
	var submissions []*types.TaskSubmission
	for _, submission := range s.submissions {
		if submission.Status != enum.SubmissionStatusPending ||
			submission.SubmitterID == reviewerID ||
			submission.HasReviewed(reviewerID) {
			continue
		}
		submissions = append(submissions, submission.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(submissions, func(a, b *types.TaskSubmission) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return paginate(submissions, 0, limit), nil
}

// ListUsersByPoints returns users by points descending, then registration order.
func (s *Store) ListUsersByPoints(_ context.Context, limit int) ([]*types.User, error) {
	s.mu.RLock()
	users := make([]*types.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(users, func(a, b *types.User) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return paginate(users, 0, limit), nil
}

// ListLedgerEntries returns a user's journal, newest first.
func (s *Store) ListLedgerEntries(_ context.Context, userID uint64, limit int) ([]*types.LedgerEntry, error) {
	s.mu.RLock()
	var entries []*types.LedgerEntry
	for i := len(s.ledger) - 1; i >= 0; i-- {
		if s.ledger[i].UserID == userID {
			entry := *s.ledger[i]
			entries = append(entries, &entry)
		}
	}
	s.mu.RUnlock()

	return paginate(entries, 0, limit), nil
}

func newestFirst(a, b *types.Task) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
