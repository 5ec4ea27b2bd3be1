package types

// Record is one leaderboard row in an export file.
type Record struct {
	Rank           int
	UserRef        string // Member ID, or its salted hash when anonymized
	Name           string // Empty when anonymized
	Points         int64
	Reputation     int64
	Tier           string
	TasksCompleted int64
}
