package keepbook

import "time"

// StalenessResult is the verdict on whether a piece of balance or price
// data is too old to trust.
type StalenessResult struct {
	IsStale   bool           `json:"isStale"`
	Age       *time.Duration `json:"age,omitempty"` // nil when nothing was ever synced
	Threshold time.Duration  `json:"threshold"`
}

// CheckStaleness classifies data last known at `last` against a threshold.
// A missing last-known instant is always stale with a nil age. An instant
// in the future relative to now is clamped to zero age, never negative.
// The boundary is inclusive on the stale side: age == threshold is stale.
func CheckStaleness(last *time.Time, threshold time.Duration, now time.Time) StalenessResult {
	if last == nil {
		return StalenessResult{IsStale: true, Threshold: threshold}
	}
	age := now.Sub(*last)
	if age < 0 {
		age = 0
	}
	return StalenessResult{
		IsStale:   age >= threshold,
		Age:       &age,
		Threshold: threshold,
	}
}

// ResolveBalanceThreshold resolves the staleness threshold for an
// account's balances: account config first, then the config of the
// connection it syncs from, then the global default. The first value
// present wins.
func ResolveBalanceThreshold(account AccountConfig, connection ConnectionConfig, global time.Duration) time.Duration {
	if account.StalenessThreshold != nil {
		return *account.StalenessThreshold
	}
	if connection.StalenessThreshold != nil {
		return *connection.StalenessThreshold
	}
	return global
}
