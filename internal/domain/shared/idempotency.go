package shared

import (
	"context"
	"time"
)

// SubmissionGuard records keys of non-idempotent submissions so the same
// submission is not sent twice within the TTL
type SubmissionGuard interface {
	// MarkSubmitted records the key with a TTL.
	// Returns true if the key was newly marked, false if it was already present
	MarkSubmitted(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release removes the key so the submission may be attempted again
	Release(ctx context.Context, key string) error

	// Close closes the guard and releases resources
	Close() error
}

// SubmissionGuardConfig holds configuration for duplicate submission checks
type SubmissionGuardConfig struct {
	// TTL is how long a submitted key blocks resubmission
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether duplicate submission checking is enabled
	// Default: true
	Enabled bool
}

// DefaultSubmissionGuardConfig returns the default guard configuration
func DefaultSubmissionGuardConfig() SubmissionGuardConfig {
	return SubmissionGuardConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
