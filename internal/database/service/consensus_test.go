package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/service"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalCreditsSubmitterAndReviewers(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	a := f.register(t, "a")
	b := f.register(t, "b")
	c := f.register(t, "c")
	d := f.register(t, "d")

	// Bring A down to 100 points
	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		_, err := f.ledger.Debit(ctx, tx, a.ID, 400, enum.LedgerEntryTypeDebit, "")
		return err
	})
	require.NoError(t, err)

	task := f.fund(t, a.ID, enum.TaskTypeLike, 50)
	assert.Equal(t, int64(1), task.Reward)
	assert.Equal(t, int64(50), f.user(t, a.ID).Points)

	submission := f.submit(t, task.ID, b.ID)

	first, err := f.cast(t, submission.ID, c.ID, enum.VerdictApproved)
	require.NoError(t, err)
	assert.Equal(t, enum.SettlementOutcomePending, first.Outcome)

	second, err := f.cast(t, submission.ID, d.ID, enum.VerdictApproved)
	require.NoError(t, err)
	assert.Equal(t, enum.SettlementOutcomeApproved, second.Outcome)
	assert.Equal(t, enum.SubmissionStatusApproved, second.Submission.Status)
	assert.NotNil(t, second.Submission.SettledAt)
	require.NoError(t, second.Err())

	storedTask := f.task(t, task.ID)
	assert.Equal(t, int64(1), storedTask.Completed)
	assert.Equal(t, enum.TaskStatusActive, storedTask.Status)

	owner := f.user(t, a.ID)
	assert.Equal(t, int64(50), owner.Points)
	assert.Equal(t, int64(100), owner.Reputation)

	submitter := f.user(t, b.ID)
	assert.Equal(t, int64(501), submitter.Points)
	assert.Equal(t, int64(105), submitter.Reputation)
	assert.Equal(t, int64(1), submitter.TasksCompleted)
	assert.Equal(t, int64(1), submitter.PointsEarned)

	for _, reviewerID := range []uint64{c.ID, d.ID} {
		reviewer := f.user(t, reviewerID)
		assert.Equal(t, int64(501), reviewer.Points)
		assert.Equal(t, int64(101), reviewer.Reputation)
	}
}

func TestRejectionPenalizesSubmitter(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	owner := f.register(t, "owner")
	submitter := f.register(t, "submitter")
	e := f.register(t, "e")
	g := f.register(t, "f")
	task := f.fund(t, owner.ID, enum.TaskTypeShare, 10)

	submission := f.submit(t, task.ID, submitter.ID)

	_, err := f.cast(t, submission.ID, e.ID, enum.VerdictRejected)
	require.NoError(t, err)
	result, err := f.cast(t, submission.ID, g.ID, enum.VerdictRejected)
	require.NoError(t, err)

	assert.Equal(t, enum.SettlementOutcomeRejected, result.Outcome)
	assert.Equal(t, enum.SubmissionStatusRejected, result.Submission.Status)
	assert.Equal(t, types.Tally{Rejections: 2}, result.Tally)

	penalized := f.user(t, submitter.ID)
	assert.Equal(t, int64(90), penalized.Reputation)
	assert.Equal(t, int64(500), penalized.Points)
	assert.Equal(t, int64(0), f.task(t, task.ID).Completed)
}

func TestRejectionPenaltyFloorsAtZero(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	owner := f.register(t, "owner")
	submitter := f.register(t, "submitter")
	e := f.register(t, "e")
	g := f.register(t, "f")
	task := f.fund(t, owner.ID, enum.TaskTypeView, 10)

	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		_, err := f.ledger.AdjustReputation(ctx, tx, submitter.ID, -96, "")
		return err
	})
	require.NoError(t, err)

	submission := f.submit(t, task.ID, submitter.ID)
	_, err = f.cast(t, submission.ID, e.ID, enum.VerdictRejected)
	require.NoError(t, err)
	_, err = f.cast(t, submission.ID, g.ID, enum.VerdictRejected)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.user(t, submitter.ID).Reputation)
}

func TestSplitVerdictsStayPending(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	owner := f.register(t, "owner")
	submitter := f.register(t, "submitter")
	yes := f.register(t, "yes")
	no := f.register(t, "no")
	tiebreak := f.register(t, "tiebreak")
	task := f.fund(t, owner.ID, enum.TaskTypeFollow, 10)
	submission := f.submit(t, task.ID, submitter.ID)

	_, err := f.cast(t, submission.ID, yes.ID, enum.VerdictApproved)
	require.NoError(t, err)
	result, err := f.cast(t, submission.ID, no.ID, enum.VerdictRejected)
	require.NoError(t, err)
	assert.Equal(t, enum.SettlementOutcomePending, result.Outcome)
	assert.Equal(t, types.Tally{Approvals: 1, Rejections: 1}, result.Tally)

	result, err = f.cast(t, submission.ID, tiebreak.ID, enum.VerdictApproved)
	require.NoError(t, err)
	assert.Equal(t, enum.SettlementOutcomeApproved, result.Outcome)
	assert.Equal(t, int64(505), f.user(t, submitter.ID).Points)
}

func TestCapacityExceededKeepsApprovalWithoutCredit(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	owner := f.register(t, "owner")
	reviewerA := f.register(t, "reviewer-a")
	reviewerB := f.register(t, "reviewer-b")
	task := f.fund(t, owner.ID, enum.TaskTypeLike, 10)

	// Eleven members submit while the task is still open
	submissions := make([]*types.TaskSubmission, 0, 11)
	for range 11 {
		member := f.register(t, "member")
		submissions = append(submissions, f.submit(t, task.ID, member.ID))
	}

	for _, submission := range submissions[:10] {
		_, err := f.cast(t, submission.ID, reviewerA.ID, enum.VerdictApproved)
		require.NoError(t, err)
		result, err := f.cast(t, submission.ID, reviewerB.ID, enum.VerdictApproved)
		require.NoError(t, err)
		require.Equal(t, enum.SettlementOutcomeApproved, result.Outcome)
	}

	full := f.task(t, task.ID)
	require.Equal(t, int64(10), full.Completed)
	require.Equal(t, enum.TaskStatusCompleted, full.Status)

	lingering := submissions[10]
	_, err := f.cast(t, lingering.ID, reviewerA.ID, enum.VerdictApproved)
	require.NoError(t, err)
	result, err := f.cast(t, lingering.ID, reviewerB.ID, enum.VerdictApproved)
	require.NoError(t, err)

	assert.Equal(t, enum.SettlementOutcomeCapacityExceeded, result.Outcome)
	require.ErrorIs(t, result.Err(), types.ErrTaskCapacityExceeded)
	assert.Equal(t, enum.SubmissionStatusApproved, result.Submission.Status)

	assert.Equal(t, int64(10), f.task(t, task.ID).Completed)

	submitter := f.user(t, lingering.SubmitterID)
	assert.Equal(t, int64(500), submitter.Points)
	assert.Equal(t, int64(0), submitter.TasksCompleted)

	// Reviewers are still paid for their review work
	assert.Equal(t, int64(511), f.user(t, reviewerA.ID).Points)
}

func TestConcurrentVerdictsSettleOnce(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	owner := f.register(t, "owner")
	submitter := f.register(t, "submitter")
	task := f.fund(t, owner.ID, enum.TaskTypeFollow, 10)
	submission := f.submit(t, task.ID, submitter.ID)

	reviewers := make([]*types.User, 0, 8)
	for range 8 {
		reviewers = append(reviewers, f.register(t, "reviewer"))
	}

	var (
		mu        sync.Mutex
		outcomes  = make(map[enum.SettlementOutcome]int)
		finalized int
	)

	var wg conc.WaitGroup
	for _, reviewer := range reviewers {
		wg.Go(func() {
			result, err := f.cast(t, submission.ID, reviewer.ID, enum.VerdictApproved)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, types.ErrSubmissionFinalized)
				finalized++
				return
			}
			outcomes[result.Outcome]++
		})
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes[enum.SettlementOutcomeApproved])
	assert.Equal(t, service.DefaultQuorum-1, outcomes[enum.SettlementOutcomePending])
	assert.Equal(t, len(reviewers)-service.DefaultQuorum, finalized)

	assert.Equal(t, int64(1), f.task(t, task.ID).Completed)
	assert.Equal(t, int64(505), f.user(t, submitter.ID).Points)
	assert.Equal(t, int64(1), f.user(t, submitter.ID).TasksCompleted)
}

func TestQuorumOfOne(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	consensus := service.NewConsensus(f.submissions, f.tasks, f.ledger, 1, zapNop())
	owner := f.register(t, "owner")
	submitter := f.register(t, "submitter")
	reviewer := f.register(t, "reviewer")
	task := f.fund(t, owner.ID, enum.TaskTypeLike, 10)
	submission := f.submit(t, task.ID, submitter.ID)

	var result *types.VerdictResult
	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		var err error
		result, err = consensus.CastVerdict(ctx, tx, submission.ID, reviewer.ID, enum.VerdictApproved)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, consensus.Quorum())
	assert.Equal(t, enum.SettlementOutcomeApproved, result.Outcome)
}

// recordingTx logs the locking reads and the verdict insert in call order.
type recordingTx struct {
	store.Tx
	calls []string
}

func (r *recordingTx) GetSubmission(ctx context.Context, id uuid.UUID) (*types.TaskSubmission, error) {
	r.calls = append(r.calls, "submission")
	return r.Tx.GetSubmission(ctx, id)
}

func (r *recordingTx) GetTask(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	r.calls = append(r.calls, "task")
	return r.Tx.GetTask(ctx, id)
}

func (r *recordingTx) GetUser(ctx context.Context, id uint64) (*types.User, error) {
	r.calls = append(r.calls, fmt.Sprintf("user:%d", id))
	return r.Tx.GetUser(ctx, id)
}

func (r *recordingTx) InsertVerdict(ctx context.Context, verdict *types.SubmissionVerdict) error {
	r.calls = append(r.calls, "verdict")
	return r.Tx.InsertVerdict(ctx, verdict)
}

func TestCastVerdictLockOrder(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	owner := f.register(t, "owner")
	submitter := f.register(t, "submitter")
	reviewer := f.register(t, "reviewer")
	task := f.fund(t, owner.ID, enum.TaskTypeShare, 10)
	submission := f.submit(t, task.ID, submitter.ID)

	var calls []string
	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		recorder := &recordingTx{Tx: tx}
		_, err := f.consensus.CastVerdict(ctx, recorder, submission.ID, reviewer.ID, enum.VerdictApproved)
		calls = recorder.calls
		return err
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(calls), 5)
	assert.Equal(t, []string{
		"submission",
		"task",
		fmt.Sprintf("user:%d", submitter.ID),
		fmt.Sprintf("user:%d", reviewer.ID),
		"verdict",
	}, calls[:5])
}
