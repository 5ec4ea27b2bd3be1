package market_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/raxnet/patrol/internal/market"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T, ttl time.Duration) (*market.LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return market.NewLeaderboardCache(client, ttl, zap.NewNop()), mr
}

func TestLeaderboardCache(t *testing.T) {
	t.Parallel()

	cache, mr := setupCache(t, 30*time.Second)

	_, ok, err := cache.Get(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)

	generation, err := cache.Generation(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(0), generation)

	entries := []*types.LeaderboardEntry{
		{Rank: 1, UserID: 7, Name: "Dina", Points: 900, Reputation: 260, Tier: enum.UserTierElite},
	}
	written, err := cache.Set(t.Context(), generation, entries)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, 30*time.Second, mr.TTL("patrol:leaderboard"))

	got, ok, err := cache.Get(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entries, got)

	mr.FastForward(31 * time.Second)
	_, ok, err = cache.Get(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cache.Set(t.Context(), generation, entries)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(t.Context()))
	assert.False(t, mr.Exists("patrol:leaderboard"))

	generation, err = cache.Generation(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), generation)
}

func TestLeaderboardCacheRejectsStaleSnapshot(t *testing.T) {
	t.Parallel()

	cache, mr := setupCache(t, time.Minute)
	entries := []*types.LeaderboardEntry{{Rank: 1, UserID: 1, Name: "Dina", Points: 500}}

	before, err := cache.Generation(t.Context())
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(t.Context()))

	written, err := cache.Set(t.Context(), before, entries)
	require.NoError(t, err)
	assert.False(t, written)
	assert.False(t, mr.Exists("patrol:leaderboard"))

	current, err := cache.Generation(t.Context())
	require.NoError(t, err)
	written, err = cache.Set(t.Context(), current, entries)
	require.NoError(t, err)
	assert.True(t, written)
	assert.True(t, mr.Exists("patrol:leaderboard"))
}

func TestLeaderboardCacheTimesOut(t *testing.T) {
	t.Parallel()

	cache, mr := setupCache(t, time.Minute)
	cache.WithTimeout(100 * time.Millisecond)
	mr.Close()

	start := time.Now()
	_, _, err := cache.Get(t.Context())
	require.Error(t, err)

	_, err = cache.Set(t.Context(), 0, nil)
	require.Error(t, err)

	require.Error(t, cache.Invalidate(t.Context()))
	assert.Less(t, time.Since(start), 2*time.Second)
}
