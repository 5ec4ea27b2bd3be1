package onboarding_test

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/raxnet/patrol/internal/database/memory"
	"github.com/raxnet/patrol/internal/database/service"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/market"
	"github.com/raxnet/patrol/internal/onboarding"
	"github.com/raxnet/patrol/internal/verification"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var codePattern = regexp.MustCompile(`^RAXNET-[A-Z0-9]{6}$`)

type fakeVerifier struct {
	decision *verification.Decision
	err      error
}

func (f *fakeVerifier) Verify(context.Context, []byte, string) (*verification.Decision, error) {
	return f.decision, f.err
}

type fixture struct {
	service *onboarding.Service
	market  *market.Market
	redis   *miniredis.Miniredis
}

func setupTest(t *testing.T, verifier verification.Verifier) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	m, err := market.New(memory.New(), service.DefaultEconomy(), zap.NewNop())
	require.NoError(t, err)

	return &fixture{
		service: onboarding.NewService(verifier, client, m, "raxnet", time.Hour, zap.NewNop()),
		market:  m,
		redis:   mr,
	}
}

func accepted() *fakeVerifier {
	return &fakeVerifier{decision: &verification.Decision{
		Outcome: verification.OutcomeAccepted,
		Reason:  "Pembayaran tervalidasi",
	}}
}

func TestVerifyDonation(t *testing.T) {
	t.Parallel()

	t.Run("accepted receipt issues a code", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, accepted())

		result, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.NoError(t, err)
		require.NotNil(t, result.Grant)
		assert.Regexp(t, codePattern, result.Grant.Code)
		assert.True(t, f.redis.Exists("patrol:access_code:"+result.Grant.Code))
		assert.Equal(t, time.Hour, f.redis.TTL("patrol:access_code:"+result.Grant.Code))
	})

	t.Run("rejected receipt issues nothing", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, &fakeVerifier{decision: &verification.Decision{
			Outcome: verification.OutcomeRejected,
			Reason:  "Nama merchant tidak sesuai",
		}})

		result, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.NoError(t, err)
		assert.Nil(t, result.Grant)
		assert.Equal(t, "Nama merchant tidak sesuai", result.Decision.Reason)
		assert.Empty(t, f.redis.Keys())
	})

	t.Run("technical failure", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, &fakeVerifier{decision: &verification.Decision{
			Outcome: verification.OutcomeTechnicalFailure,
			Reason:  "timeout",
		}})

		_, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.ErrorIs(t, err, verification.ErrTechnicalFailure)
	})

	t.Run("unusable image", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, &fakeVerifier{err: types.ErrInvalidProof})

		_, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.ErrorIs(t, err, types.ErrInvalidProof)
	})
}

func TestRedeem(t *testing.T) {
	t.Parallel()

	t.Run("code registers exactly once", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, accepted())

		result, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.NoError(t, err)

		user, err := f.service.Redeem(t.Context(), " "+result.Grant.Code+" ", "Dina", "https://example.com/a.png")
		require.NoError(t, err)
		assert.Equal(t, "Dina", user.Name)
		assert.Equal(t, int64(service.DefaultSignupPoints), user.Points)

		_, err = f.service.Redeem(t.Context(), result.Grant.Code, "Dina again", "")
		require.ErrorIs(t, err, onboarding.ErrAccessCodeNotFound)

		board, err := f.market.Leaderboard(t.Context(), 0)
		require.NoError(t, err)
		assert.Len(t, board, 1)
	})

	t.Run("codes are case insensitive", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, accepted())

		result, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.NoError(t, err)

		_, err = f.service.Redeem(t.Context(), "raxnet-"+result.Grant.Code[len("RAXNET-"):], "Dina", "")
		require.NoError(t, err)
	})

	t.Run("expired code", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, accepted())

		result, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.NoError(t, err)

		f.redis.FastForward(2 * time.Hour)

		_, err = f.service.Redeem(t.Context(), result.Grant.Code, "Dina", "")
		require.ErrorIs(t, err, onboarding.ErrAccessCodeNotFound)
	})

	t.Run("empty name keeps the code", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, accepted())

		result, err := f.service.VerifyDonation(t.Context(), []byte("img"), "image/png")
		require.NoError(t, err)

		_, err = f.service.Redeem(t.Context(), result.Grant.Code, "  ", "")
		require.ErrorIs(t, err, types.ErrInvalidProfile)
		assert.True(t, f.redis.Exists("patrol:access_code:"+result.Grant.Code))
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()
		f := setupTest(t, accepted())

		_, err := f.service.Redeem(t.Context(), "RAXNET-NOPE00", "Dina", "")
		require.ErrorIs(t, err, onboarding.ErrAccessCodeNotFound)
	})
}

func TestNewCode(t *testing.T) {
	t.Parallel()

	t.Run("skips bytes past the last full alphabet cycle", func(t *testing.T) {
		t.Parallel()
		random := bytes.NewReader([]byte{255, 0, 252, 1, 253, 35, 36, 71, 251, 0, 0, 0})

		code, err := onboarding.NewCode(random, "RAXNET")
		require.NoError(t, err)
		assert.Equal(t, "RAXNET-AB9A99", code)
	})

	t.Run("no prefix", func(t *testing.T) {
		t.Parallel()

		code, err := onboarding.NewCode(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5}), "")
		require.NoError(t, err)
		assert.Equal(t, "ABCDEF", code)
	})

	t.Run("exhausted source", func(t *testing.T) {
		t.Parallel()

		_, err := onboarding.NewCode(bytes.NewReader([]byte{255, 255, 255, 255, 255, 255}), "RAXNET")
		require.Error(t, err)
	})
}
