package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// leaderboardKey holds the serialized leaderboard snapshot.
	leaderboardKey = "patrol:leaderboard"
	// generationKey is bumped on every invalidation.
	generationKey = "patrol:leaderboard:generation"

	// DefaultCacheTimeout bounds every Redis round trip of the cache.
	DefaultCacheTimeout = 250 * time.Millisecond
)

// setIfCurrentScript writes the snapshot only while the generation it was
// built under is still current.
const setIfCurrentScript = `
	local current = tonumber(redis.call('GET', KEYS[1]) or 0)
	if current ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[3])
	return 1
`

// LeaderboardCache keeps the latest leaderboard snapshot in Redis.
type LeaderboardCache struct {
	client  rueidis.Client
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// NewLeaderboardCache creates a cache whose snapshots expire after ttl.
func NewLeaderboardCache(client rueidis.Client, ttl time.Duration, logger *zap.Logger) *LeaderboardCache {
	return &LeaderboardCache{
		client:  client,
		ttl:     ttl,
		timeout: DefaultCacheTimeout,
		logger:  logger.Named("leaderboard_cache"),
	}
}

// WithTimeout changes how long a single cache call may wait on Redis.
func (c *LeaderboardCache) WithTimeout(timeout time.Duration) *LeaderboardCache {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// Get returns the cached snapshot. The boolean is false on a cache miss.
func (c *LeaderboardCache) Get(ctx context.Context) ([]*types.LeaderboardEntry, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.client.Do(ctx, c.client.B().Get().Key(leaderboardKey).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var entries []*types.LeaderboardEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode leaderboard cache: %w", err)
	}

	return entries, true, nil
}

// Generation returns the current invalidation counter. Read it before
// loading a snapshot from the store and hand it to Set.
func (c *LeaderboardCache) Generation(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	generation, err := c.client.Do(ctx, c.client.B().Get().Key(generationKey).Build()).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read leaderboard generation: %w", err)
	}

	return generation, nil
}

// Set stores a snapshot built under the given generation. It reports false
// without writing when an invalidation happened since that generation was read.
func (c *LeaderboardCache) Set(ctx context.Context, generation int64, entries []*types.LeaderboardEntry) (bool, error) {
	data, err := sonic.Marshal(entries)
	if err != nil {
		return false, fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	seconds := max(int64(c.ttl/time.Second), 1)
	written, err := c.client.Do(ctx, c.client.B().Eval().
		Script(setIfCurrentScript).
		Numkeys(2).
		Key(generationKey).
		Key(leaderboardKey).
		Arg(strconv.FormatInt(generation, 10)).
		Arg(rueidis.BinaryString(data)).
		Arg(strconv.FormatInt(seconds, 10)).
		Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to write leaderboard cache: %w", err)
	}

	if written == 0 {
		c.logger.Debug("Discarded stale leaderboard snapshot", zap.Int64("generation", generation))
		return false, nil
	}
	return true, nil
}

// Invalidate bumps the generation and drops the snapshot so the next read
// rebuilds it. Snapshots built before the bump can no longer be stored.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for _, resp := range c.client.DoMulti(ctx,
		c.client.B().Incr().Key(generationKey).Build(),
		c.client.B().Del().Key(leaderboardKey).Build(),
	) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
		}
	}
	return nil
}
