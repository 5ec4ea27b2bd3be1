package redis_test

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/raxnet/patrol/internal/redis"
	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetClientReusesConnections(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	manager := redis.NewManager(&config.Redis{Host: mr.Host(), Port: port, DisableCache: true}, zap.NewNop())
	defer manager.Close()

	first, err := manager.GetClient(redis.OnboardingDBIndex)
	require.NoError(t, err)
	second, err := manager.GetClient(redis.OnboardingDBIndex)
	require.NoError(t, err)
	assert.Same(t, first, second)

	ctx := t.Context()
	require.NoError(t, first.Do(ctx, first.B().Set().Key("k").Value("v").Build()).Error())

	value, err := mr.DB(redis.OnboardingDBIndex).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
