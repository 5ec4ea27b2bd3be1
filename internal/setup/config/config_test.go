package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfigFromAppliesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, dir, "common.toml", `
[common]
version = 1

[common.postgresql]
db_name = "patrol_test"
`)
	writeFile(t, dir, "market.toml", `
[market]
version = 1

[market.economy]
daily_bonus = 75
`)

	cfg, path, err := config.LoadConfigFrom([]string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)
	assert.Equal(t, dir, path)

	assert.Equal(t, "patrol_test", cfg.Common.PostgreSQL.DBName)
	assert.Equal(t, 5432, cfg.Common.PostgreSQL.Port)
	assert.Equal(t, 60, cfg.Common.Gemini.Timeout)
	assert.Equal(t, int64(75), cfg.Market.Economy.DailyBonus)
	assert.Equal(t, int64(500), cfg.Market.Economy.SignupPoints)
	assert.Equal(t, 2, cfg.Market.Economy.Quorum)
	assert.Equal(t, "Rp10.000", cfg.Market.Onboarding.ExpectedAmount)
	assert.Equal(t, "RAXNET", cfg.Market.Onboarding.CodePrefix)
}

func TestLoadConfigFromErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		common  string
		market  string
		wantErr error
	}{
		{
			name:    "missing market file",
			common:  "[common]\nversion = 1\n",
			wantErr: config.ErrConfigFileNotFound,
		},
		{
			name:    "missing version",
			common:  "[common.debug]\nlog_level = \"debug\"\n",
			market:  "[market]\nversion = 1\n",
			wantErr: config.ErrConfigVersionMissing,
		},
		{
			name:    "version mismatch",
			common:  "[common]\nversion = 1\n",
			market:  "[market]\nversion = 99\n",
			wantErr: config.ErrConfigVersionMismatch,
		},
		{
			name:    "invalid quorum",
			common:  "[common]\nversion = 1\n",
			market:  "[market]\nversion = 1\n\n[market.economy]\nquorum = -1\n",
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()

			if tt.common != "" {
				writeFile(t, dir, "common.toml", tt.common)
			}
			if tt.market != "" {
				writeFile(t, dir, "market.toml", tt.market)
			}

			_, _, err := config.LoadConfigFrom([]string{dir})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Parallel()

	cfg, _, err := config.LoadConfigFrom([]string{"../../../config"})
	require.NoError(t, err)
	assert.Equal(t, config.CurrentCommonVersion, cfg.Common.Version)
	assert.Equal(t, config.CurrentMarketVersion, cfg.Market.Version)
	assert.Equal(t, 30, cfg.Market.Leaderboard.CacheTTL)
	assert.Equal(t, 250, cfg.Market.Leaderboard.CacheTimeout)
}
