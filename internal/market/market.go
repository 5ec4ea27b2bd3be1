// Package market is the entry point for every member-facing operation of the
// task exchange. Each mutating operation runs in a single store transaction.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/service"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLeaderboardSize is the number of members ranked when none is configured.
const DefaultLeaderboardSize = 100

// Market coordinates the ledger, task, submission and consensus services.
type Market struct {
	store       store.Store
	ledger      *service.LedgerService
	tasks       *service.TaskService
	submissions *service.SubmissionService
	consensus   *service.ConsensusService

	cache           *LeaderboardCache
	leaderboardSize int
	defaultTimezone string
	now             func() time.Time

	tracer trace.Tracer
	logger *zap.Logger
}

// Option configures a Market.
type Option func(*Market)

// WithLeaderboardCache serves leaderboard reads from Redis.
func WithLeaderboardCache(cache *LeaderboardCache) Option {
	return func(m *Market) {
		m.cache = cache
	}
}

// WithLeaderboardSize sets how many members are ranked.
func WithLeaderboardSize(size int) Option {
	return func(m *Market) {
		if size > 0 {
			m.leaderboardSize = size
		}
	}
}

// WithDefaultTimezone sets the time zone of members registered without one.
func WithDefaultTimezone(timezone string) Option {
	return func(m *Market) {
		m.defaultTimezone = timezone
	}
}

// WithClock replaces the clock used for registration and bonus claims.
func WithClock(now func() time.Time) Option {
	return func(m *Market) {
		m.now = now
	}
}

// New creates a market on top of a store.
func New(st store.Store, economy service.Economy, logger *zap.Logger, opts ...Option) (*Market, error) {
	if err := economy.Validate(); err != nil {
		return nil, err
	}

	ledger := service.NewLedger(st, economy, logger)
	tasks := service.NewTask(st, logger)
	submissions := service.NewSubmission(st, logger)

	m := &Market{
		store:           st,
		ledger:          ledger,
		tasks:           tasks,
		submissions:     submissions,
		consensus:       service.NewConsensus(submissions, tasks, ledger, economy.Quorum, logger),
		leaderboardSize: DefaultLeaderboardSize,
		defaultTimezone: time.UTC.String(),
		now:             time.Now,
		tracer:          otel.Tracer("github.com/raxnet/patrol/internal/market"),
		logger:          logger.Named("market"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Profile describes a member at registration.
type Profile struct {
	Name      string
	AvatarURL string
	Timezone  string // IANA name, empty for the market default
}

// RegisterUser creates a member with the starting grant.
func (m *Market) RegisterUser(ctx context.Context, name, avatarURL string) (*types.User, error) {
	return m.RegisterMember(ctx, Profile{Name: name, AvatarURL: avatarURL})
}

// RegisterMember creates a member from a full profile.
func (m *Market) RegisterMember(ctx context.Context, profile Profile) (user *types.User, err error) {
	ctx, span := m.tracer.Start(ctx, "market.RegisterMember")
	defer func() { m.endSpan(span, err) }()

	timezone := strings.TrimSpace(profile.Timezone)
	if timezone == "" {
		timezone = m.defaultTimezone
	}

	err = m.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = m.ledger.OpenAccount(ctx, tx, profile.Name, profile.AvatarURL, timezone, m.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user.id", int64(user.ID)))
	m.invalidateLeaderboard(ctx)

	return user, nil
}

// CreateTask validates a task, debits its full cost from the owner and
// posts it. Nothing is created when the owner cannot pay.
func (m *Market) CreateTask(
	ctx context.Context, ownerID uint64, taskType enum.TaskType, targetURL string, quantity int64,
) (task *types.Task, err error) {
	ctx, span := m.tracer.Start(ctx, "market.CreateTask", trace.WithAttributes(
		attribute.Int64("owner.id", int64(ownerID)),
		attribute.String("task.type", taskType.String()),
		attribute.Int64("task.quantity", quantity),
	))
	defer func() { m.endSpan(span, err) }()

	if err := service.ValidateTaskParameters(taskType, strings.TrimSpace(targetURL), quantity); err != nil {
		return nil, err
	}

	err = m.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.GetUser(ctx, ownerID); err != nil {
			return err
		}

		created, err := m.tasks.CreateTask(ctx, tx, ownerID, taskType, targetURL, quantity)
		if err != nil {
			return err
		}

		_, err = m.ledger.Debit(ctx, tx, ownerID, created.Cost(), enum.LedgerEntryTypeTaskFunding, created.ID.String())
		if err != nil {
			return err
		}

		task = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Task posted",
		zap.String("taskID", task.ID.String()),
		zap.Uint64("ownerID", ownerID),
		zap.String("type", taskType.String()),
		zap.Int64("cost", task.Cost()))
	m.invalidateLeaderboard(ctx)

	return task, nil
}

// SubmitProof records a member's proof of completing an active task.
func (m *Market) SubmitProof(
	ctx context.Context, taskID uuid.UUID, submitterID uint64, proofRef string,
) (submission *types.TaskSubmission, err error) {
	ctx, span := m.tracer.Start(ctx, "market.SubmitProof", trace.WithAttributes(
		attribute.String("task.id", taskID.String()),
		attribute.Int64("submitter.id", int64(submitterID)),
	))
	defer func() { m.endSpan(span, err) }()

	err = m.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}

		switch {
		case task.Status != enum.TaskStatusActive:
			return types.ErrTaskNotActive
		case task.OwnerID == submitterID:
			return types.ErrOwnTask
		}

		if _, err := tx.GetUser(ctx, submitterID); err != nil {
			return err
		}

		submission, err = m.submissions.CreateSubmission(ctx, tx, taskID, submitterID, proofRef)
		return err
	})
	if err != nil {
		return nil, err
	}

	return submission, nil
}

// CastVerdict records a patrol verdict and settles the submission when a
// quorum is reached.
func (m *Market) CastVerdict(
	ctx context.Context, submissionID uuid.UUID, reviewerID uint64, verdict enum.Verdict,
) (result *types.VerdictResult, err error) {
	ctx, span := m.tracer.Start(ctx, "market.CastVerdict", trace.WithAttributes(
		attribute.String("submission.id", submissionID.String()),
		attribute.Int64("reviewer.id", int64(reviewerID)),
		attribute.String("verdict", verdict.String()),
	))
	defer func() { m.endSpan(span, err) }()

	// Checked outside the transaction so the submission stays the first lock
	if _, err := m.store.FindUser(ctx, reviewerID); err != nil {
		return nil, err
	}

	err = m.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		result, err = m.consensus.CastVerdict(ctx, tx, submissionID, reviewerID, verdict)
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("settlement.outcome", result.Outcome.String()))
	m.invalidateLeaderboard(ctx)

	return result, nil
}

// ClaimDailyBonus credits the daily bonus at most once per calendar day.
func (m *Market) ClaimDailyBonus(ctx context.Context, userID uint64, now time.Time) (user *types.User, err error) {
	ctx, span := m.tracer.Start(ctx, "market.ClaimDailyBonus", trace.WithAttributes(
		attribute.Int64("user.id", int64(userID)),
	))
	defer func() { m.endSpan(span, err) }()

	err = m.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = m.ledger.ClaimDailyBonus(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.invalidateLeaderboard(ctx)

	return user, nil
}

// Now returns the market clock.
func (m *Market) Now() time.Time {
	return m.now()
}

// OpenTasks lists the active task board.
func (m *Market) OpenTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	return m.tasks.ListOpenTasks(ctx, filter)
}

// Task returns a single task.
func (m *Market) Task(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
	return m.tasks.GetTask(ctx, taskID)
}

// MyTasks lists the tasks a member posted, newest first.
func (m *Market) MyTasks(ctx context.Context, userID uint64) ([]*types.Task, error) {
	return m.tasks.ListOwnedTasks(ctx, userID)
}

// PatrolQueue lists the submissions a member may review, oldest first.
func (m *Market) PatrolQueue(ctx context.Context, userID uint64, limit int) ([]*types.TaskSubmission, error) {
	return m.submissions.PatrolQueue(ctx, userID, limit)
}

// MySubmissions lists a member's submissions, newest first.
func (m *Market) MySubmissions(ctx context.Context, userID uint64) ([]*types.TaskSubmission, error) {
	return m.submissions.ListBySubmitter(ctx, userID)
}

// Submission returns a single submission with its verdicts.
func (m *Market) Submission(ctx context.Context, submissionID uuid.UUID) (*types.TaskSubmission, error) {
	return m.submissions.GetSubmission(ctx, submissionID)
}

// Profile returns a member's account.
func (m *Market) Profile(ctx context.Context, userID uint64) (*types.User, error) {
	return m.store.FindUser(ctx, userID)
}

// History returns a member's ledger journal, newest first.
func (m *Market) History(ctx context.Context, userID uint64, limit int) ([]*types.LedgerEntry, error) {
	return m.ledger.History(ctx, userID, limit)
}

// Leaderboard ranks members by points, ties broken by registration order.
// A limit of 0 or less returns the full configured board.
func (m *Market) Leaderboard(ctx context.Context, limit int) ([]*types.LeaderboardEntry, error) {
	entries, err := m.leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *Market) leaderboard(ctx context.Context) ([]*types.LeaderboardEntry, error) {
	if m.cache == nil {
		return m.loadLeaderboard(ctx)
	}

	entries, ok, err := m.cache.Get(ctx)
	if err != nil {
		m.logger.Warn("Leaderboard cache unavailable, reading from store", zap.Error(err))
		return m.loadLeaderboard(ctx)
	}
	if ok {
		return entries, nil
	}

	generation, err := m.cache.Generation(ctx)
	if err != nil {
		m.logger.Warn("Leaderboard cache unavailable, reading from store", zap.Error(err))
		return m.loadLeaderboard(ctx)
	}

	entries, err = m.loadLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := m.cache.Set(ctx, generation, entries); err != nil {
		m.logger.Warn("Failed to cache leaderboard", zap.Error(err))
	}

	return entries, nil
}

func (m *Market) loadLeaderboard(ctx context.Context) ([]*types.LeaderboardEntry, error) {
	users, err := m.store.ListUsersByPoints(ctx, m.leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return types.NewLeaderboard(users), nil
}

// invalidateLeaderboard drops the cached leaderboard after points changed.
func (m *Market) invalidateLeaderboard(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

// endSpan records infrastructure failures on the span and closes it.
// Business rule violations are expected outcomes and only annotated.
func (m *Market) endSpan(span trace.Span, err error) {
	defer span.End()

	if err == nil {
		return
	}

	if types.IsBusinessError(err) {
		span.SetAttributes(attribute.String("rejected", err.Error()))
		m.logger.Debug("Operation rejected", zap.Error(err))
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if !errors.Is(err, context.Canceled) {
		m.logger.Error("Operation failed", zap.Error(err))
	}
}
