package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/memory"
	"github.com/raxnet/patrol/internal/database/service"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store       *memory.Store
	ledger      *service.LedgerService
	tasks       *service.TaskService
	submissions *service.SubmissionService
	consensus   *service.ConsensusService
}

func setupTest(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	st := memory.New()

	ledger := service.NewLedger(st, service.DefaultEconomy(), logger)
	tasks := service.NewTask(st, logger)
	submissions := service.NewSubmission(st, logger)

	return &fixture{
		store:       st,
		ledger:      ledger,
		tasks:       tasks,
		submissions: submissions,
		consensus:   service.NewConsensus(submissions, tasks, ledger, service.DefaultQuorum, logger),
	}
}

// register opens an account and returns it.
func (f *fixture) register(t *testing.T, name string) *types.User {
	t.Helper()

	var user *types.User
	err := f.store.RunInTx(t.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = f.ledger.OpenAccount(ctx, tx, name, "", "UTC", time.Now())
		return err
	})
	require.NoError(t, err)

	return user
}

// fund posts a task and debits its cost from the owner.
func (f *fixture) fund(t *testing.T, ownerID uint64, taskType enum.TaskType, quantity int64) *types.Task {
	t.Helper()

	var task *types.Task
	err := f.store.RunInTx(t.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		task, err = f.tasks.CreateTask(ctx, tx, ownerID, taskType, "https://example.com/post/1", quantity)
		if err != nil {
			return err
		}
		_, err = f.ledger.Debit(ctx, tx, ownerID, task.Cost(), enum.LedgerEntryTypeTaskFunding, task.ID.String())
		return err
	})
	require.NoError(t, err)

	return task
}

func (f *fixture) submit(t *testing.T, taskID uuid.UUID, submitterID uint64) *types.TaskSubmission {
	t.Helper()

	submission, err := f.trySubmit(t, taskID, submitterID)
	require.NoError(t, err)

	return submission
}

func (f *fixture) trySubmit(t *testing.T, taskID uuid.UUID, submitterID uint64) (*types.TaskSubmission, error) {
	t.Helper()

	var submission *types.TaskSubmission
	err := f.store.RunInTx(t.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		submission, err = f.submissions.CreateSubmission(ctx, tx, taskID, submitterID, "proofs/"+uuid.NewString()+".webp")
		return err
	})

	return submission, err
}

func (f *fixture) cast(
	t *testing.T, submissionID uuid.UUID, reviewerID uint64, verdict enum.Verdict,
) (*types.VerdictResult, error) {
	t.Helper()

	var result *types.VerdictResult
	err := f.store.RunInTx(t.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		result, err = f.consensus.CastVerdict(ctx, tx, submissionID, reviewerID, verdict)
		return err
	})

	return result, err
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}

func (f *fixture) user(t *testing.T, userID uint64) *types.User {
	t.Helper()

	user, err := f.store.FindUser(t.Context(), userID)
	require.NoError(t, err)

	return user
}

func (f *fixture) task(t *testing.T, taskID uuid.UUID) *types.Task {
	t.Helper()

	task, err := f.store.FindTask(t.Context(), taskID)
	require.NoError(t, err)

	return task
}

// inTx runs fn in a transaction and returns its error.
func (f *fixture) inTx(t *testing.T, fn func(ctx context.Context, tx store.Tx) error) error {
	t.Helper()
	return f.store.RunInTx(t.Context(), fn)
}
