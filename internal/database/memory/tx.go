package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
)

// tx stages writes on top of the committed state of a Store. The writer
// lock held by RunInTx keeps the committed state stable while it runs.
type tx struct {
	store *Store

	users       map[uint64]*types.User
	nextUserID  uint64
	tasks       map[uuid.UUID]*types.Task
	submissions map[uuid.UUID]*types.TaskSubmission
	ledger      []*types.LedgerEntry
}

func newTx(s *Store) *tx {
	return &tx{
		store:       s,
		users:       make(map[uint64]*types.User),
		nextUserID:  s.nextUserID,
		tasks:       make(map[uuid.UUID]*types.Task),
		submissions: make(map[uuid.UUID]*types.TaskSubmission),
	}
}

// commit merges the staged writes into the store.
func (t *tx) commit() {
	for id, user := range t.users {
		t.store.users[id] = user
	}
	for id, task := range t.tasks {
		t.store.tasks[id] = task
	}
	for id, submission := range t.submissions {
		t.store.submissions[id] = submission
	}
	t.store.ledger = append(t.store.ledger, t.ledger...)
	t.store.nextUserID = t.nextUserID
}

func (t *tx) user(id uint64) (*types.User, bool) {
	if user, ok := t.users[id]; ok {
		return user, true
	}
	user, ok := t.store.users[id]
	return user, ok
}

func (t *tx) task(id uuid.UUID) (*types.Task, bool) {
	if task, ok := t.tasks[id]; ok {
		return task, true
	}
	task, ok := t.store.tasks[id]
	return task, ok
}

func (t *tx) submission(id uuid.UUID) (*types.TaskSubmission, bool) {
	if submission, ok := t.submissions[id]; ok {
		return submission, true
	}
	submission, ok := t.store.submissions[id]
	return submission, ok
}

func (t *tx) GetUser(_ context.Context, id uint64) (*types.User, error) {
	user, ok := t.user(id)
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (t *tx) InsertUser(_ context.Context, user *types.User) error {
	user.ID = t.nextUserID
	t.nextUserID++
	t.users[user.ID] = user.Clone()
	return nil
}

func (t *tx) UpdateUser(_ context.Context, user *types.User) error {
	if _, ok := t.user(user.ID); !ok {
		return types.ErrUserNotFound
	}
	t.users[user.ID] = user.Clone()
	return nil
}

func (t *tx) GetTask(_ context.Context, id uuid.UUID) (*types.Task, error) {
	task, ok := t.task(id)
	if !ok {
		return nil, types.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (t *tx) InsertTask(_ context.Context, task *types.Task) error {
	t.tasks[task.ID] = task.Clone()
	return nil
}

func (t *tx) UpdateTask(_ context.Context, task *types.Task) error {
	current, ok := t.task(task.ID)
	if !ok {
		return types.ErrTaskNotFound
	}
	updated := current.Clone()
	updated.Completed = task.Completed
	updated.Status = task.Status
	updated.UpdatedAt = task.UpdatedAt
	t.tasks[task.ID] = updated
	return nil
}

func (t *tx) GetSubmission(_ context.Context, id uuid.UUID) (*types.TaskSubmission, error) {
	submission, ok := t.submission(id)
	if !ok {
		return nil, types.ErrSubmissionNotFound
	}
	return submission.Clone(), nil
}

func (t *tx) FindOpenSubmission(
	_ context.Context, taskID uuid.UUID, submitterID uint64,
) (*types.TaskSubmission, error) {
	isOpen := func(s *types.TaskSubmission) bool {
		return s.TaskID == taskID && s.SubmitterID == submitterID &&
			s.Status != enum.SubmissionStatusRejected
	}

	for _, submission := range t.submissions {
		if isOpen(submission) {
			return submission.Clone(), nil
		}
	}
	for id, submission := range t.store.submissions {
		if _, staged := t.submissions[id]; staged {
			continue
		}
		if isOpen(submission) {
			return submission.Clone(), nil
		}
	}
	return nil, nil //nolint:nilnil // absence is not an error
}

func (t *tx) InsertSubmission(ctx context.Context, submission *types.TaskSubmission) error {
	existing, err := t.FindOpenSubmission(ctx, submission.TaskID, submission.SubmitterID)
	if err != nil {
		return err
	}
	if existing != nil {
		return types.ErrDuplicateSubmission
	}

	stored := submission.Clone()
	stored.Verdicts = make(map[uint64]enum.Verdict)
	t.submissions[stored.ID] = stored
	return nil
}

func (t *tx) UpdateSubmission(_ context.Context, submission *types.TaskSubmission) error {
	current, ok := t.submission(submission.ID)
	if !ok {
		return types.ErrSubmissionNotFound
	}
	updated := current.Clone()
	updated.Status = submission.Status
	if submission.SettledAt != nil {
		settled := *submission.SettledAt
		updated.SettledAt = &settled
	}
	t.submissions[submission.ID] = updated
	return nil
}

func (t *tx) InsertVerdict(_ context.Context, verdict *types.SubmissionVerdict) error {
	current, ok := t.submission(verdict.SubmissionID)
	if !ok {
		return types.ErrSubmissionNotFound
	}
	if current.HasReviewed(verdict.ReviewerID) {
		return types.ErrAlreadyReviewed
	}
	updated := current.Clone()
	updated.Verdicts[verdict.ReviewerID] = verdict.Verdict
	t.submissions[updated.ID] = updated
	return nil
}

func (t *tx) InsertLedgerEntry(_ context.Context, entry *types.LedgerEntry) error {
	stored := *entry
	t.ledger = append(t.ledger, &stored)
	return nil
}
