package enum

// UserTier is a reputation-derived rank. It is never stored.
//
//go:generate go tool enumer -type=UserTier -trimprefix=UserTier
type UserTier int

const (
	UserTierMember UserTier = iota
	UserTierTrusted
	UserTierVeteran
	UserTierElite
)
