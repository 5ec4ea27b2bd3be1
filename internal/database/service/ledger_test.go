package service_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/raxnet/patrol/internal/database/service"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAccount(t *testing.T) {
	t.Parallel()
	f := setupTest(t)

	first := f.register(t, "alice")
	second := f.register(t, "bob")

	assert.Equal(t, int64(service.DefaultSignupPoints), first.Points)
	assert.Equal(t, int64(service.DefaultSignupReputation), first.Reputation)
	assert.Equal(t, enum.UserTierMember, first.Tier())
	assert.Less(t, first.ID, second.ID)

	entries, err := f.ledger.History(t.Context(), first.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, enum.LedgerEntryTypeSignupGrant, entries[0].Type)
	assert.Equal(t, first.Points, entries[0].BalanceAfter)
}

func TestOpenAccountRequiresName(t *testing.T) {
	t.Parallel()
	f := setupTest(t)

	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		_, err := f.ledger.OpenAccount(ctx, tx, "   ", "", "", time.Now())
		return err
	})
	require.ErrorIs(t, err, types.ErrInvalidProfile)
}

func TestCreditAndDebit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		credit     int64
		debit      int64
		wantErr    error
		wantPoints int64
	}{
		{name: "credit then debit", credit: 20, debit: 520, wantPoints: 0},
		{name: "debit more than balance", debit: 501, wantErr: types.ErrInsufficientFunds, wantPoints: 500},
		{name: "zero debit", debit: 0, wantErr: types.ErrInvalidAmount, wantPoints: 500},
		{name: "negative credit", credit: -5, wantErr: types.ErrInvalidAmount, wantPoints: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := setupTest(t)
			user := f.register(t, "alice")

			err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
				if tt.credit != 0 {
					if _, err := f.ledger.Credit(ctx, tx, user.ID, tt.credit, enum.LedgerEntryTypeCredit, ""); err != nil {
						return err
					}
				}
				_, err := f.ledger.Debit(ctx, tx, user.ID, tt.debit, enum.LedgerEntryTypeDebit, "")
				return err
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantPoints, f.user(t, user.ID).Points)
		})
	}
}

func TestFailedDebitLeavesNoJournal(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	user := f.register(t, "alice")

	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		_, err := f.ledger.Debit(ctx, tx, user.ID, 10_000, enum.LedgerEntryTypeDebit, "")
		return err
	})
	require.ErrorIs(t, err, types.ErrInsufficientFunds)

	entries, err := f.ledger.History(t.Context(), user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnknownUser(t *testing.T) {
	t.Parallel()
	f := setupTest(t)

	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		_, err := f.ledger.Credit(ctx, tx, 42, 1, enum.LedgerEntryTypeCredit, "")
		return err
	})
	require.ErrorIs(t, err, types.ErrUserNotFound)

	_, err = f.ledger.History(t.Context(), 42, 10)
	require.ErrorIs(t, err, types.ErrUserNotFound)
}

func TestAdjustReputationFloorsAtZero(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	user := f.register(t, "alice")

	var updated *types.User
	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		var err error
		updated, err = f.ledger.AdjustReputation(ctx, tx, user.ID, -1000, "moderation")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Reputation)

	entries, err := f.ledger.History(t.Context(), user.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-service.DefaultSignupReputation), entries[0].ReputationDelta)

	err = f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		var err error
		updated, err = f.ledger.AdjustReputation(ctx, tx, user.ID, 300, "")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), updated.Reputation)
	assert.Equal(t, enum.UserTierElite, updated.Tier())
}

func TestClaimDailyBonus(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	user := f.register(t, "alice")

	claim := func(now time.Time) error {
		return f.inTx(t, func(ctx context.Context, tx store.Tx) error {
			_, err := f.ledger.ClaimDailyBonus(ctx, tx, user.ID, now)
			return err
		})
	}

	morning := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	require.NoError(t, claim(morning))

	// Same calendar day, even late at night
	err := claim(time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC))
	require.ErrorIs(t, err, types.ErrAlreadyClaimedToday)
	assert.Equal(t, int64(500+service.DefaultDailyBonus), f.user(t, user.ID).Points)

	// Next calendar day, less than 24h later
	require.NoError(t, claim(time.Date(2026, 10, 20, 0, 1, 0, 0, time.UTC)))

	claimed := f.user(t, user.ID)
	assert.Equal(t, int64(500+2*service.DefaultDailyBonus), claimed.Points)
	require.NotNil(t, claimed.LastDailyBonusClaimed)
	assert.True(t, claimed.LastDailyBonusClaimed.Equal(time.Date(2026, 10, 20, 0, 1, 0, 0, time.UTC)))
}

func TestClaimDailyBonusUsesUserTimezone(t *testing.T) {
	t.Parallel()
	f := setupTest(t)

	var user *types.User
	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = f.ledger.OpenAccount(ctx, tx, "budi", "", "Asia/Jakarta", time.Now())
		return err
	})
	require.NoError(t, err)

	claim := func(now time.Time) error {
		return f.inTx(t, func(ctx context.Context, tx store.Tx) error {
			_, err := f.ledger.ClaimDailyBonus(ctx, tx, user.ID, now)
			return err
		})
	}

	// 23:30 in Jakarta
	require.NoError(t, claim(time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC)))
	// 00:30 the next day in Jakarta, still the same UTC date
	require.NoError(t, claim(time.Date(2026, 10, 19, 17, 30, 0, 0, time.UTC)))
	// 06:00 on that same Jakarta day
	err = claim(time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, types.ErrAlreadyClaimedToday)
}

func TestRecordTaskCompletion(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	user := f.register(t, "alice")

	var updated *types.User
	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		var err error
		updated, err = f.ledger.RecordTaskCompletion(ctx, tx, user.ID, 5, "submission")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(505), updated.Points)
	assert.Equal(t, int64(5), updated.PointsEarned)
	assert.Equal(t, int64(1), updated.TasksCompleted)
	assert.Equal(t, int64(105), updated.Reputation)
}

func TestPenalizeAndPatrolReward(t *testing.T) {
	t.Parallel()
	f := setupTest(t)
	user := f.register(t, "alice")

	err := f.inTx(t, func(ctx context.Context, tx store.Tx) error {
		if _, err := f.ledger.AdjustReputation(ctx, tx, user.ID, -95, ""); err != nil {
			return err
		}
		if _, err := f.ledger.PenalizeFailedSubmission(ctx, tx, user.ID, "s1"); err != nil {
			return err
		}
		_, err := f.ledger.RewardPatrolParticipation(ctx, tx, user.ID, "s2")
		return err
	})
	require.NoError(t, err)

	updated := f.user(t, user.ID)
	assert.Equal(t, int64(1), updated.Reputation)
	assert.Equal(t, int64(501), updated.Points)

	entries, err := f.ledger.History(t.Context(), user.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, enum.LedgerEntryTypePatrolReward, entries[0].Type)
	assert.Equal(t, enum.LedgerEntryTypeSubmissionPenalty, entries[1].Type)
	assert.Equal(t, int64(-5), entries[1].ReputationDelta)
}
