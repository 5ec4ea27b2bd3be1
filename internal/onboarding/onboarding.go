// Package onboarding gates registration behind a verified donation receipt.
// An accepted receipt yields a one-time access code that is later redeemed
// for a market account.
package onboarding

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/market"
	"github.com/raxnet/patrol/internal/verification"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// CodeLength is the number of random characters after the prefix.
	CodeLength = 6
	// codeAlphabet is the character set of the random part.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// codeKeyPrefix namespaces access codes in Redis.
	codeKeyPrefix = "patrol:access_code:"
	// maxIssueAttempts bounds retries on code collisions.
	maxIssueAttempts = 5
)

var (
	// ErrAccessCodeNotFound is returned for unknown, expired or used codes.
	ErrAccessCodeNotFound = errors.New("access code not found or expired")
	// ErrCodeCollision is returned when no unused code could be generated.
	ErrCodeCollision = errors.New("failed to generate a unique access code")
)

// Registrar creates market accounts.
type Registrar interface {
	RegisterMember(ctx context.Context, profile market.Profile) (*types.User, error)
}

// Grant is the payload stored under an access code.
type Grant struct {
	Code      string    `json:"code"`
	Reason    string    `json:"reason"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Result is the outcome of a donation check.
type Result struct {
	Decision *verification.Decision
	Grant    *Grant // Set only when the receipt was accepted
}

// Service issues and redeems access codes.
type Service struct {
	verifier  verification.Verifier
	client    rueidis.Client
	registrar Registrar
	prefix    string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates an onboarding service.
func NewService(
	verifier verification.Verifier, client rueidis.Client, registrar Registrar,
	prefix string, ttl time.Duration, logger *zap.Logger,
) *Service {
	return &Service{
		verifier:  verifier,
		client:    client,
		registrar: registrar,
		prefix:    strings.ToUpper(strings.TrimSpace(prefix)),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger.Named("onboarding_service"),
	}
}

// VerifyDonation checks a receipt image and issues an access code when it
// is accepted. A rejected receipt returns the decision without a grant.
// A technical failure returns an error wrapping
// verification.ErrTechnicalFailure.
func (s *Service) VerifyDonation(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	decision, err := s.verifier.Verify(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	switch decision.Outcome {
	case verification.OutcomeAccepted:
	case verification.OutcomeRejected:
		s.logger.Info("Donation receipt rejected", zap.String("reason", decision.Reason))
		return &Result{Decision: decision}, nil
	default:
		return nil, fmt.Errorf("%w: %s", verification.ErrTechnicalFailure, decision.Reason)
	}

	grant, err := s.issue(ctx, decision.Reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Access code issued",
		zap.String("code", grant.Code),
		zap.Time("expiresAt", grant.ExpiresAt))

	return &Result{Decision: decision, Grant: grant}, nil
}

// Redeem consumes an access code and registers the member. A code can be
// redeemed exactly once.
func (s *Service) Redeem(ctx context.Context, code, name, avatarURL string) (*types.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, types.ErrInvalidProfile
	}

	key := codeKey(normalizeCode(code))
	data, err := s.client.Do(ctx, s.client.B().Getdel().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrAccessCodeNotFound
		}
		return nil, fmt.Errorf("failed to consume access code: %w", err)
	}

	var grant Grant
	if err := sonic.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("failed to decode access code: %w", err)
	}

	user, err := s.registrar.RegisterMember(ctx, market.Profile{Name: name, AvatarURL: avatarURL})
	if err != nil {
		s.restore(ctx, key, &grant, data)
		return nil, err
	}

	s.logger.Info("Access code redeemed",
		zap.String("code", grant.Code),
		zap.Uint64("userID", user.ID))

	return user, nil
}

// issue stores a new grant under an unused code.
func (s *Service) issue(ctx context.Context, reason string) (*Grant, error) {
	for range maxIssueAttempts {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}

		now := s.now()
		grant := &Grant{Code: code, Reason: reason, IssuedAt: now, ExpiresAt: now.Add(s.ttl)}

		data, err := sonic.Marshal(grant)
		if err != nil {
			return nil, fmt.Errorf("failed to encode access code: %w", err)
		}

		cmd := s.client.B().Set().Key(codeKey(code)).Value(rueidis.BinaryString(data)).Nx().Ex(s.ttl).Build()
		err = s.client.Do(ctx, cmd).Error()
		switch {
		case err == nil:
			return grant, nil
		case rueidis.IsRedisNil(err):
			s.logger.Debug("Access code collision", zap.String("code", code))
			continue
		default:
			return nil, fmt.Errorf("failed to store access code: %w", err)
		}
	}

	return nil, ErrCodeCollision
}

// restore puts a consumed grant back when registration failed after the
// code was taken.
func (s *Service) restore(ctx context.Context, key string, grant *Grant, data []byte) {
	remaining := grant.ExpiresAt.Sub(s.now())
	if remaining < time.Second {
		return
	}

	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(data)).Nx().Ex(remaining).Build()
	if err := s.client.Do(context.WithoutCancel(ctx), cmd).Error(); err != nil && !rueidis.IsRedisNil(err) {
		s.logger.Error("Failed to restore access code", zap.String("code", grant.Code), zap.Error(err))
	}
}

// generateCode returns a code like RAXNET-7QK2ZD.
func (s *Service) generateCode() (string, error) {
	return NewCode(rand.Reader, s.prefix)
}

// NewCode draws CodeLength characters from r and joins them to prefix.
// Bytes at or above the largest multiple of the alphabet size are skipped
// so every character is equally likely.
func NewCode(r io.Reader, prefix string) (string, error) {
	const limit = 256 - 256%len(codeAlphabet)

	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)
	for len(code) < CodeLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}

	if prefix == "" {
		return string(code), nil
	}
	return prefix + "-" + string(code), nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func codeKey(code string) string {
	return codeKeyPrefix + code
}
