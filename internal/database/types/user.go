package types

import (
	"time"

	"github.com/raxnet/patrol/internal/database/types/enum"
)

// Reputation thresholds for the derived member tiers.
const (
	TrustedReputation = 125
	VeteranReputation = 175
	EliteReputation   = 250
)

// User is a member account holding a point balance and reputation.
type User struct {
	ID                    uint64     `bun:",pk,autoincrement" json:"id"`
	Name                  string     `bun:",notnull"          json:"name"`
	AvatarURL             string     `bun:",notnull"          json:"avatarUrl"`
	Timezone              string     `bun:",notnull"          json:"timezone"`
	Points                int64      `bun:",notnull"          json:"points"`
	Reputation            int64      `bun:",notnull"          json:"reputation"`
	TasksCompleted        int64      `bun:",notnull"          json:"tasksCompleted"`
	PointsEarned          int64      `bun:",notnull"          json:"pointsEarned"`
	LastDailyBonusClaimed *time.Time `bun:",nullzero"         json:"lastDailyBonusClaimed"`
	CreatedAt             time.Time  `bun:",notnull"          json:"createdAt"`
	UpdatedAt             time.Time  `bun:",notnull"          json:"updatedAt"`
}

// TierFor derives the member tier from a reputation score.
func TierFor(reputation int64) enum.UserTier {
	switch {
	case reputation >= EliteReputation:
		return enum.UserTierElite
	case reputation >= VeteranReputation:
		return enum.UserTierVeteran
	case reputation >= TrustedReputation:
		return enum.UserTierTrusted
	default:
		return enum.UserTierMember
	}
}

// Tier returns the member tier for the user's current reputation.
func (u *User) Tier() enum.UserTier {
	return TierFor(u.Reputation)
}

// Location returns the user's time zone, falling back to UTC when the
// stored name cannot be resolved.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CanClaimDailyBonus reports whether no bonus has been claimed on the
// calendar date of now in the user's time zone.
func (u *User) CanClaimDailyBonus(now time.Time) bool {
	if u.LastDailyBonusClaimed == nil {
		return true
	}

	loc := u.Location()
	ly, lm, ld := u.LastDailyBonusClaimed.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()

	return ly != ny || lm != nm || ld != nd
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	if u.LastDailyBonusClaimed != nil {
		claimed := *u.LastDailyBonusClaimed
		c.LastDailyBonusClaimed = &claimed
	}
	return &c
}

// LeaderboardEntry is a ranked view of a user.
type LeaderboardEntry struct {
	Rank           int           `json:"rank"`
	UserID         uint64        `json:"userId"`
	Name           string        `json:"name"`
	AvatarURL      string        `json:"avatarUrl"`
	Points         int64         `json:"points"`
	Reputation     int64         `json:"reputation"`
	Tier           enum.UserTier `json:"tier"`
	TasksCompleted int64         `json:"tasksCompleted"`
}

// NewLeaderboard ranks users that are already ordered by points descending.
func NewLeaderboard(users []*User) []*LeaderboardEntry {
	entries := make([]*LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &LeaderboardEntry{
			Rank:           i + 1,
			UserID:         user.ID,
			Name:           user.Name,
			AvatarURL:      user.AvatarURL,
			Points:         user.Points,
			Reputation:     user.Reputation,
			Tier:           user.Tier(),
			TasksCompleted: user.TasksCompleted,
		})
	}
	return entries
}
