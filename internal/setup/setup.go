package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/raxnet/patrol/internal/database"
	"github.com/raxnet/patrol/internal/database/migrations"
	"github.com/raxnet/patrol/internal/database/service"
	"github.com/raxnet/patrol/internal/market"
	"github.com/raxnet/patrol/internal/onboarding"
	"github.com/raxnet/patrol/internal/redis"
	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/raxnet/patrol/internal/setup/telemetry"
	"github.com/raxnet/patrol/internal/verification"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var (
	// ErrMigrationsPending is returned when the schema is behind and the
	// operator declined to migrate.
	ErrMigrationsPending = errors.New("database migrations are pending")
	// ErrOnboardingDisabled is returned when no Gemini API key is configured.
	ErrOnboardingDisabled = errors.New("onboarding is disabled: gemini.api_key is not set")
)

// App bundles all core dependencies and services needed by the application.
type App struct {
	Config       *config.Config      // Application configuration
	Logger       *zap.Logger         // Main application logger
	DBLogger     *zap.Logger         // Database-specific logger
	DB           database.Client     // Database connection pool
	RedisManager *redis.Manager      // Redis connection manager
	GenAIClient  *genai.Client       // Gemini client, nil when onboarding is disabled
	Market       *market.Market      // Task market facade
	Onboarding   *onboarding.Service // Access code service, nil when onboarding is disabled
	LogManager   *telemetry.Manager  // Log management system
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	cfg, configPath, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if logDir == "" {
		logDir = cfg.Common.Storage.LogDir
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	logger.Debug("Logging session started",
		zap.String("service", serviceType.String()),
		zap.String("instanceID", logManager.GetInstanceID()),
		zap.String("sessionDir", logManager.GetCurrentSessionDir()),
		zap.String("configPath", configPath))

	db, err := checkAndRunMigrations(ctx, &cfg.Common.PostgreSQL, dbLogger)
	if err != nil {
		logManager.Stop()
		return nil, err
	}

	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	app := &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		LogManager:   logManager,
	}

	if err := app.initMarket(); err != nil {
		app.Cleanup(ctx)
		return nil, err
	}

	if err := app.initOnboarding(ctx); err != nil {
		app.Cleanup(ctx)
		return nil, err
	}

	return app, nil
}

// initMarket builds the market facade. The leaderboard cache is optional and
// skipped when Redis is unreachable.
func (a *App) initMarket() error {
	marketCfg := &a.Config.Market
	economy := service.Economy{
		DailyBonus:       marketCfg.Economy.DailyBonus,
		SignupPoints:     marketCfg.Economy.SignupPoints,
		SignupReputation: marketCfg.Economy.SignupReputation,
		Quorum:           marketCfg.Economy.Quorum,
	}

	opts := []market.Option{
		market.WithDefaultTimezone(marketCfg.Economy.DefaultTimezone),
		market.WithLeaderboardSize(marketCfg.Leaderboard.Size),
	}

	if marketCfg.Leaderboard.CacheTTL > 0 {
		client, err := a.RedisManager.GetClient(redis.LeaderboardDBIndex)
		if err != nil {
			a.Logger.Warn("Leaderboard cache disabled", zap.Error(err))
		} else {
			ttl := time.Duration(marketCfg.Leaderboard.CacheTTL) * time.Second
			timeout := time.Duration(marketCfg.Leaderboard.CacheTimeout) * time.Millisecond
			cache := market.NewLeaderboardCache(client, ttl, a.Logger).WithTimeout(timeout)
			opts = append(opts, market.WithLeaderboardCache(cache))
		}
	}

	m, err := market.New(a.DB, economy, a.Logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create market: %w", err)
	}
	a.Market = m

	return nil
}

// initOnboarding wires the Gemini verifier and the access code store.
func (a *App) initOnboarding(ctx context.Context) error {
	geminiCfg := &a.Config.Common.Gemini
	if geminiCfg.APIKey == "" {
		a.Logger.Info("Gemini API key not set, onboarding disabled")
		return nil
	}

	genAIClient, err := genai.NewClient(ctx, option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	a.GenAIClient = genAIClient

	codeClient, err := a.RedisManager.GetClient(redis.OnboardingDBIndex)
	if err != nil {
		return err
	}

	onboardingCfg := &a.Config.Market.Onboarding
	rules := verification.ReceiptRules{
		Status:   onboardingCfg.ExpectedStatus,
		Amount:   onboardingCfg.ExpectedAmount,
		Merchant: onboardingCfg.ExpectedMerchant,
	}
	verifier := verification.NewGeminiVerifier(genAIClient, geminiCfg, rules, a.Logger)

	a.Onboarding = onboarding.NewService(
		verifier, codeClient, a.Market, onboardingCfg.CodePrefix,
		time.Duration(onboardingCfg.CodeTTL)*time.Minute, a.Logger,
	)

	return nil
}

// RequireOnboarding returns the onboarding service or ErrOnboardingDisabled.
func (a *App) RequireOnboarding() (*onboarding.Service, error) {
	if a.Onboarding == nil {
		return nil, ErrOnboardingDisabled
	}
	return a.Onboarding, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (a *App) Cleanup(_ context.Context) {
	if a.GenAIClient != nil {
		if err := a.GenAIClient.Close(); err != nil {
			a.Logger.Warn("Failed to close gemini client", zap.Error(err))
		}
	}

	// Sync buffered logs before shutdown
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := a.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections last as other components might need it during cleanup
	a.RedisManager.Close()

	a.LogManager.Stop()
}

// checkAndRunMigrations runs database migrations if the operator agrees.
func checkAndRunMigrations(ctx context.Context, cfg *config.PostgreSQL, dbLogger *zap.Logger) (database.Client, error) {
	tempDB, err := database.NewConnection(ctx, cfg, dbLogger, false)
	if err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(tempDB.DB(), migrations.Migrations)

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		tempDB.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	unapplied := ms.Unapplied()
	if len(unapplied) == 0 {
		return tempDB, nil
	}

	log.Printf("%d database migrations are pending. Would you like to run them now? (y/N)", len(unapplied))

	var response string
	_, _ = fmt.Scanln(&response)

	tempDB.Close()

	if response != "y" && response != "Y" {
		return nil, ErrMigrationsPending
	}

	return database.NewConnection(ctx, cfg, dbLogger, true)
}
