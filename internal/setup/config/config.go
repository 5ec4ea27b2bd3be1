package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrInvalidConfig         = errors.New("invalid config value")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.1.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentMarketVersion = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	Market MarketConfig `koanf:"market"`
}

// CommonConfig contains configuration shared by every command.
type CommonConfig struct {
	// Version of the common config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Gemini     Gemini     `koanf:"gemini"`
	Storage    Storage    `koanf:"storage"`
}

// MarketConfig contains the task market configuration.
type MarketConfig struct {
	// Version of the market config.
	Version     int         `koanf:"version"`
	Economy     Economy     `koanf:"economy"`
	Onboarding  Onboarding  `koanf:"onboarding"`
	Leaderboard Leaderboard `koanf:"leaderboard"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Require TLS for the connection.
	SSL bool `koanf:"ssl"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
	// Turn off client side caching for servers without CLIENT TRACKING.
	DisableCache bool `koanf:"disable_cache"`
}

// Gemini contains the donation proof verifier configuration.
type Gemini struct {
	// API key for the Generative Language API.
	APIKey string `koanf:"api_key"`
	// Model used to read the receipt.
	Model string `koanf:"model"`
	// Request timeout in seconds.
	Timeout int `koanf:"timeout"`
	// Maximum concurrent verification requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
	// Longest side of the image sent to the model, in pixels.
	MaxImageDimension int `koanf:"max_image_dimension"`
}

// Storage contains local output paths.
type Storage struct {
	// Directory for session logs.
	LogDir string `koanf:"log_dir"`
	// Directory for leaderboard exports.
	ExportDir string `koanf:"export_dir"`
}

// Economy contains the tunable amounts of the points economy.
type Economy struct {
	// Points credited by a daily bonus claim.
	DailyBonus int64 `koanf:"daily_bonus"`
	// Starting balance of a new member.
	SignupPoints int64 `koanf:"signup_points"`
	// Starting reputation of a new member.
	SignupReputation int64 `koanf:"signup_reputation"`
	// Matching verdicts needed to settle a submission.
	Quorum int `koanf:"quorum"`
	// Time zone used for members who did not pick one.
	DefaultTimezone string `koanf:"default_timezone"`
}

// Onboarding contains the donation receipt rules and access code settings.
type Onboarding struct {
	// Transaction status the receipt must show.
	ExpectedStatus string `koanf:"expected_status"`
	// Exact amount the receipt must show.
	ExpectedAmount string `koanf:"expected_amount"`
	// Merchant name the receipt must show.
	ExpectedMerchant string `koanf:"expected_merchant"`
	// Prefix of issued access codes.
	CodePrefix string `koanf:"code_prefix"`
	// Access code lifetime in minutes.
	CodeTTL int `koanf:"code_ttl"`
}

// Leaderboard contains leaderboard cache and export settings.
type Leaderboard struct {
	// Cache lifetime in seconds, 0 disables caching.
	CacheTTL int `koanf:"cache_ttl"`
	// Milliseconds a single cache call may wait on Redis.
	CacheTimeout int `koanf:"cache_timeout"`
	// Number of members shown and exported.
	Size int `koanf:"size"`
}

// LoadConfig loads the configuration from the default search paths.
func LoadConfig() (*Config, string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".patrol",
		homeDir + "/.patrol/config",
		"/etc/patrol/config",
		"/app/config",
		"config",
		".",
	}

	return LoadConfigFrom(configPaths)
}

// LoadConfigFrom loads every config file from the first search path that
// contains it, applies defaults and checks the file versions.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	configFiles := []string{"common", "market"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if _, err := os.Stat(configPath); err != nil {
				continue
			}

			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, "", fmt.Errorf("failed to parse %s: %w", configPath, err)
			}

			configLoaded = true
			if usedConfigPath == "" {
				usedConfigPath = path
			}

			break
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("market", config.Market.Version, CurrentMarketVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// applyDefaults fills in every value left out of the config files.
func (c *Config) applyDefaults() {
	common := &c.Common
	setDefault(&common.Debug.LogLevel, "info")
	setDefault(&common.Debug.MaxLogsToKeep, 10)
	setDefault(&common.Debug.MaxLogLines, 100000)
	setDefault(&common.PostgreSQL.Host, "localhost")
	setDefault(&common.PostgreSQL.Port, 5432)
	setDefault(&common.PostgreSQL.MaxOpenConns, 20)
	setDefault(&common.PostgreSQL.MaxIdleConns, 5)
	setDefault(&common.PostgreSQL.MaxLifetime, 30)
	setDefault(&common.PostgreSQL.MaxIdleTime, 5)
	setDefault(&common.Redis.Host, "localhost")
	setDefault(&common.Redis.Port, 6379)
	setDefault(&common.Gemini.Model, "gemini-2.5-flash")
	setDefault(&common.Gemini.Timeout, 60)
	setDefault(&common.Gemini.MaxConcurrent, 4)
	setDefault(&common.Gemini.MaxImageDimension, 1600)
	setDefault(&common.Storage.LogDir, "logs")
	setDefault(&common.Storage.ExportDir, "exports")

	market := &c.Market
	setDefault(&market.Economy.DailyBonus, 50)
	setDefault(&market.Economy.SignupPoints, 500)
	setDefault(&market.Economy.SignupReputation, 100)
	setDefault(&market.Economy.Quorum, 2)
	setDefault(&market.Economy.DefaultTimezone, "UTC")
	setDefault(&market.Onboarding.ExpectedStatus, "Berhasil")
	setDefault(&market.Onboarding.ExpectedAmount, "Rp10.000")
	setDefault(&market.Onboarding.ExpectedMerchant, "raxnet")
	setDefault(&market.Onboarding.CodePrefix, "RAXNET")
	setDefault(&market.Onboarding.CodeTTL, 1440)
	setDefault(&market.Leaderboard.Size, 100)
}

// validate rejects values that cannot be used.
func (c *Config) validate() error {
	economy := c.Market.Economy
	switch {
	case economy.DailyBonus < 0:
		return fmt.Errorf("%w: market.economy.daily_bonus must be positive", ErrInvalidConfig)
	case economy.Quorum < 1:
		return fmt.Errorf("%w: market.economy.quorum must be at least 1", ErrInvalidConfig)
	case c.Market.Leaderboard.CacheTTL < 0:
		return fmt.Errorf("%w: market.leaderboard.cache_ttl cannot be negative", ErrInvalidConfig)
	case c.Market.Leaderboard.CacheTimeout < 0:
		return fmt.Errorf("%w: market.leaderboard.cache_timeout cannot be negative", ErrInvalidConfig)
	case c.Common.Gemini.MaxConcurrent < 1:
		return fmt.Errorf("%w: common.gemini.max_concurrent must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// setDefault assigns value when the field still holds its zero value.
func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/raxnet/patrol/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
