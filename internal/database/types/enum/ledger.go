package enum

// LedgerEntryType categorizes a journaled balance or reputation movement.
//
//go:generate go tool enumer -type=LedgerEntryType -trimprefix=LedgerEntryType
type LedgerEntryType int

const (
	LedgerEntryTypeSignupGrant LedgerEntryType = iota
	LedgerEntryTypeCredit
	LedgerEntryTypeDebit
	LedgerEntryTypeTaskFunding
	LedgerEntryTypeTaskCompletion
	LedgerEntryTypePatrolReward
	LedgerEntryTypeDailyBonus
	LedgerEntryTypeSubmissionPenalty
	LedgerEntryTypeReputationAdjustment
)
