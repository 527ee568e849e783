package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// balanceCacheTTL bounds how stale a cached group summary may be.
	// Writes also invalidate eagerly; the TTL is the backstop.
	balanceCacheTTL = 30 * time.Second

	// maxInviteCodeAttempts bounds the retry loop when a freshly generated
	// invite code collides with an existing one.
	maxInviteCodeAttempts = 5
)

// balanceCacheKey is the cache key for a group's balance summary.
func balanceCacheKey(groupID string) string {
	return "balance:summary:" + groupID
}
