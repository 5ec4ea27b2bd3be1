package service

import (
	"errors"
	"fmt"
)

// Fixed reputation and reward movements of the peer review economy.
const (
	CompletionReputation = 5
	RejectionPenalty     = 10
	PatrolRewardPoints   = 1
	PatrolReputation     = 1
)

// Defaults for the configurable economy values.
const (
	DefaultDailyBonus       = 50
	DefaultSignupPoints     = 500
	DefaultSignupReputation = 100
	DefaultQuorum           = 2
)

// ErrInvalidEconomy is returned when an economy setting is out of range.
var ErrInvalidEconomy = errors.New("invalid economy settings")

// Economy holds the tunable amounts of the market.
type Economy struct {
	DailyBonus       int64 // Points credited by a daily bonus claim
	SignupPoints     int64 // Starting balance of a new member
	SignupReputation int64 // Starting reputation of a new member
	Quorum           int   // Matching verdicts needed to settle a submission
}

// DefaultEconomy returns the standard economy.
func DefaultEconomy() Economy {
	return Economy{
		DailyBonus:       DefaultDailyBonus,
		SignupPoints:     DefaultSignupPoints,
		SignupReputation: DefaultSignupReputation,
		Quorum:           DefaultQuorum,
	}
}

// Validate checks that every amount is usable.
func (e Economy) Validate() error {
	switch {
	case e.DailyBonus <= 0:
		return fmt.Errorf("%w: daily bonus must be positive", ErrInvalidEconomy)
	case e.SignupPoints < 0 || e.SignupReputation < 0:
		return fmt.Errorf("%w: signup grant cannot be negative", ErrInvalidEconomy)
	case e.Quorum < 1:
		return fmt.Errorf("%w: quorum must be at least 1", ErrInvalidEconomy)
	}
	return nil
}
