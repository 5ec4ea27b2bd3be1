package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/dbretry"
	"github.com/raxnet/patrol/internal/database/migrations"
	"github.com/raxnet/patrol/internal/database/store"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bunjson"
	"github.com/uptrace/bun/extra/bunotel"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// sonicProvider is a JSON provider that uses Sonic for encoding and decoding.
type sonicProvider struct{}

func (sonicProvider) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func (sonicProvider) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

func (sonicProvider) NewEncoder(w io.Writer) bunjson.Encoder {
	return sonic.ConfigDefault.NewEncoder(w)
}

func (sonicProvider) NewDecoder(r io.Reader) bunjson.Decoder {
	return sonic.ConfigDefault.NewDecoder(r)
}

// Client defines the methods that a database client must implement.
type Client interface {
	store.Store
	// Model returns the repository containing all model operations.
	Model() *Repository
	// Close gracefully shuts down the database connection.
	Close() error
	// DB returns the underlying bun.DB instance.
	DB() *bun.DB
}

// clientImpl represents the concrete implementation of the database client.
type clientImpl struct {
	db     *bun.DB
	logger *zap.Logger
	repo   *Repository
}

// NewConnection establishes a new database connection and returns a Client instance.
func NewConnection(
	ctx context.Context, config *config.PostgreSQL, logger *zap.Logger, autoMigrate bool,
) (Client, error) {
	// Initialize database connection with config values
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", config.Host, config.Port)),
		pgdriver.WithUser(config.User),
		pgdriver.WithPassword(config.Password),
		pgdriver.WithDatabase(config.DBName),
		pgdriver.WithInsecure(!config.SSL),
		pgdriver.WithApplicationName("patrol"),
	))

	// Set connection pool settings
	sqldb.SetMaxOpenConns(config.MaxOpenConns)
	sqldb.SetMaxIdleConns(config.MaxIdleConns)
	sqldb.SetConnMaxLifetime(time.Duration(config.MaxLifetime) * time.Minute)
	sqldb.SetConnMaxIdleTime(time.Duration(config.MaxIdleTime) * time.Minute)

	// Set Sonic as the JSON provider
	bunjson.SetProvider(sonicProvider{})

	// Create Bun db instance
	db := bun.NewDB(sqldb, pgdialect.New())

	// Add query hooks for logging and tracing
	db.AddQueryHook(NewHook(logger))
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName(config.DBName)))

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations if requested
	if autoMigrate {
		migrator := migrate.NewMigrator(db, migrations.Migrations)
		if err := migrator.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize migrations: %w", err)
		}

		group, err := migrator.Migrate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		if !group.IsZero() {
			logger.Info("Automatically ran migrations", zap.String("group", group.String()))
		}
	}

	client := &clientImpl{
		db:     db,
		logger: logger,
		repo:   NewRepository(db, logger),
	}

	logger.Info("Database connection established")

	return client, nil
}

// RunInTx runs fn in a PostgreSQL transaction. The whole transaction is
// replayed when it fails with a serialization failure or deadlock.
func (c *clientImpl) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return dbretry.Transaction(ctx, c.db, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &txImpl{tx: tx, repo: c.repo})
	})
}

func (c *clientImpl) FindUser(ctx context.Context, id uint64) (*types.User, error) {
	return c.repo.User().GetUserByID(ctx, id)
}

func (c *clientImpl) FindTask(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	return c.repo.Task().GetTaskByID(ctx, id)
}

func (c *clientImpl) FindSubmission(ctx context.Context, id uuid.UUID) (*types.TaskSubmission, error) {
	return c.repo.Submission().GetSubmissionByID(ctx, id)
}

func (c *clientImpl) ListOpenTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	return c.repo.Task().GetOpenTasks(ctx, filter)
}

func (c *clientImpl) ListTasksByOwner(ctx context.Context, ownerID uint64) ([]*types.Task, error) {
	return c.repo.Task().GetTasksByOwner(ctx, ownerID)
}

func (c *clientImpl) ListSubmissionsBySubmitter(
	ctx context.Context, submitterID uint64,
) ([]*types.TaskSubmission, error) {
	return c.repo.Submission().GetSubmissionsBySubmitter(ctx, submitterID)
}

func (c *clientImpl) ListPatrolQueue(
	ctx context.Context, reviewerID uint64, limit int,
) ([]*types.TaskSubmission, error) {
	return c.repo.Submission().GetPatrolQueue(ctx, reviewerID, limit)
}

func (c *clientImpl) ListUsersByPoints(ctx context.Context, limit int) ([]*types.User, error) {
	return c.repo.User().GetUsersByPoints(ctx, limit)
}

func (c *clientImpl) ListLedgerEntries(ctx context.Context, userID uint64, limit int) ([]*types.LedgerEntry, error) {
	return c.repo.Ledger().GetEntriesByUser(ctx, userID, limit)
}

// Close gracefully shuts down the database connection.
func (c *clientImpl) Close() error {
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	c.logger.Info("Database connection closed")

	return nil
}

// Model returns the repository containing all model operations.
func (c *clientImpl) Model() *Repository {
	return c.repo
}

// DB returns the underlying bun.DB instance.
func (c *clientImpl) DB() *bun.DB {
	return c.db
}
