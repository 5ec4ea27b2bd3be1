package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/types/enum"
)

// LedgerEntry journals a single movement of a user's points or reputation.
type LedgerEntry struct {
	ID              uuid.UUID            `bun:",pk,type:uuid" json:"id"`
	UserID          uint64               `bun:",notnull"      json:"userId"`
	Type            enum.LedgerEntryType `bun:",notnull"      json:"type"`
	PointsDelta     int64                `bun:",notnull"      json:"pointsDelta"`
	ReputationDelta int64                `bun:",notnull"      json:"reputationDelta"`
	BalanceAfter    int64                `bun:",notnull"      json:"balanceAfter"`
	ReputationAfter int64                `bun:",notnull"      json:"reputationAfter"`
	Reference       string               `bun:",notnull"      json:"reference"`
	CreatedAt       time.Time            `bun:",notnull"      json:"createdAt"`
}

// BalanceDrift is a user whose stored balances disagree with the sum of
// their journal entries.
type BalanceDrift struct {
	UserID            uint64 `bun:"user_id"`
	Points            int64  `bun:"points"`
	JournalPoints     int64  `bun:"journal_points"`
	Reputation        int64  `bun:"reputation"`
	JournalReputation int64  `bun:"journal_reputation"`
}
