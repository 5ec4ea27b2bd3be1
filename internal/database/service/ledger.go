package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"go.uber.org/zap"
)

// LedgerService owns every change to a member's points and reputation.
// Each change is journaled as a LedgerEntry in the same transaction.
type LedgerService struct {
	reader  store.Reader
	economy Economy
	logger  *zap.Logger
}

// NewLedger creates a new ledger service.
func NewLedger(reader store.Reader, economy Economy, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		reader:  reader,
		economy: economy,
		logger:  logger.Named("ledger_service"),
	}
}

// OpenAccount registers a member with the starting grant.
func (s *LedgerService) OpenAccount(
	ctx context.Context, tx store.Tx, name, avatarURL, timezone string, now time.Time,
) (*types.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", types.ErrInvalidProfile)
	}

	if timezone == "" {
		timezone = time.UTC.String()
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		s.logger.Warn("Unknown time zone, falling back to UTC",
			zap.String("timezone", timezone),
			zap.Error(err))
		timezone = time.UTC.String()
	}

	user := &types.User{
		Name:       name,
		AvatarURL:  avatarURL,
		Timezone:   timezone,
		Points:     s.economy.SignupPoints,
		Reputation: s.economy.SignupReputation,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err := s.journal(ctx, tx, user, enum.LedgerEntryTypeSignupGrant,
		s.economy.SignupPoints, s.economy.SignupReputation, "", now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Registered user",
		zap.Uint64("userID", user.ID),
		zap.String("name", user.Name))

	return user, nil
}

// Credit adds points to a member's balance.
func (s *LedgerService) Credit(
	ctx context.Context, tx store.Tx, userID uint64, amount int64, entryType enum.LedgerEntryType, ref string,
) (*types.User, error) {
	if amount <= 0 {
		return nil, types.ErrInvalidAmount
	}

	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Points += amount
	if err := s.save(ctx, tx, user, entryType, amount, 0, ref); err != nil {
		return nil, err
	}

	return user, nil
}

// Debit removes points from a member's balance. The balance never goes
// negative: a debit larger than the balance fails with ErrInsufficientFunds
// and changes nothing.
func (s *LedgerService) Debit(
	ctx context.Context, tx store.Tx, userID uint64, amount int64, entryType enum.LedgerEntryType, ref string,
) (*types.User, error) {
	if amount <= 0 {
		return nil, types.ErrInvalidAmount
	}

	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Points < amount {
		return nil, fmt.Errorf("%w: balance %d, required %d", types.ErrInsufficientFunds, user.Points, amount)
	}

	user.Points -= amount
	if err := s.save(ctx, tx, user, entryType, -amount, 0, ref); err != nil {
		return nil, err
	}

	return user, nil
}

// AdjustReputation moves a member's reputation by delta, flooring at 0.
func (s *LedgerService) AdjustReputation(
	ctx context.Context, tx store.Tx, userID uint64, delta int64, ref string,
) (*types.User, error) {
	return s.adjustReputation(ctx, tx, userID, delta, enum.LedgerEntryTypeReputationAdjustment, ref)
}

// ClaimDailyBonus credits the daily bonus once per calendar day in the
// member's time zone. A second claim on the same day fails with
// ErrAlreadyClaimedToday and changes nothing.
func (s *LedgerService) ClaimDailyBonus(
	ctx context.Context, tx store.Tx, userID uint64, now time.Time,
) (*types.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.CanClaimDailyBonus(now) {
		return nil, types.ErrAlreadyClaimedToday
	}

	claimed := now
	user.Points += s.economy.DailyBonus
	user.LastDailyBonusClaimed = &claimed
	user.UpdatedAt = now

	if err := tx.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	ref := now.In(user.Location()).Format(time.DateOnly)
	if err := s.journal(ctx, tx, user, enum.LedgerEntryTypeDailyBonus, s.economy.DailyBonus, 0, ref, now); err != nil {
		return nil, err
	}

	s.logger.Debug("Daily bonus claimed",
		zap.Uint64("userID", userID),
		zap.String("day", ref))

	return user, nil
}

// RecordTaskCompletion pays the reward of an approved submission and
// raises the submitter's stats and reputation.
func (s *LedgerService) RecordTaskCompletion(
	ctx context.Context, tx store.Tx, userID uint64, reward int64, ref string,
) (*types.User, error) {
	if reward <= 0 {
		return nil, types.ErrInvalidAmount
	}

	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Points += reward
	user.PointsEarned += reward
	user.TasksCompleted++
	user.Reputation += CompletionReputation

	err = s.save(ctx, tx, user, enum.LedgerEntryTypeTaskCompletion, reward, CompletionReputation, ref)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// PenalizeFailedSubmission lowers the submitter's reputation after a
// rejected submission.
func (s *LedgerService) PenalizeFailedSubmission(
	ctx context.Context, tx store.Tx, userID uint64, ref string,
) (*types.User, error) {
	return s.adjustReputation(ctx, tx, userID, -RejectionPenalty, enum.LedgerEntryTypeSubmissionPenalty, ref)
}

// RewardPatrolParticipation pays a reviewer for casting a verdict.
func (s *LedgerService) RewardPatrolParticipation(
	ctx context.Context, tx store.Tx, userID uint64, ref string,
) (*types.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Points += PatrolRewardPoints
	user.Reputation += PatrolReputation

	err = s.save(ctx, tx, user, enum.LedgerEntryTypePatrolReward, PatrolRewardPoints, PatrolReputation, ref)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// History returns a member's journal, newest first.
func (s *LedgerService) History(ctx context.Context, userID uint64, limit int) ([]*types.LedgerEntry, error) {
	if _, err := s.reader.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.reader.ListLedgerEntries(ctx, userID, limit)
}

// adjustReputation applies a reputation delta with a floor of 0 and
// journals the delta that was actually applied.
func (s *LedgerService) adjustReputation(
	ctx context.Context, tx store.Tx, userID uint64, delta int64, entryType enum.LedgerEntryType, ref string,
) (*types.User, error) {
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := user.Reputation
	user.Reputation = max(user.Reputation+delta, 0)

	if err := s.save(ctx, tx, user, entryType, 0, user.Reputation-before, ref); err != nil {
		return nil, err
	}

	return user, nil
}

// save persists the user and journals the movement.
func (s *LedgerService) save(
	ctx context.Context, tx store.Tx, user *types.User,
	entryType enum.LedgerEntryType, pointsDelta, reputationDelta int64, ref string,
) error {
	now := time.Now()
	user.UpdatedAt = now

	if err := tx.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return s.journal(ctx, tx, user, entryType, pointsDelta, reputationDelta, ref, now)
}

func (s *LedgerService) journal(
	ctx context.Context, tx store.Tx, user *types.User,
	entryType enum.LedgerEntryType, pointsDelta, reputationDelta int64, ref string, now time.Time,
) error {
	entry := &types.LedgerEntry{
		ID:              uuid.New(),
		UserID:          user.ID,
		Type:            entryType,
		PointsDelta:     pointsDelta,
		ReputationDelta: reputationDelta,
		BalanceAfter:    user.Points,
		ReputationAfter: user.Reputation,
		Reference:       ref,
		CreatedAt:       now,
	}
	if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to journal %s: %w", entryType, err)
	}
	return nil
}
