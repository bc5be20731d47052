package ports

import (
	"context"
	"time"
)

// JobLockStore is the per-tenant single-flight lock for deletion jobs. Two
// overlapping scans of the same artifact set would corrupt summary totals, so
// the lock must hold across service instances, not just within one process.
type JobLockStore interface {
	// Acquire returns a release token and true when the tenant lock was taken.
	// A held lock returns ok == false without error.
	Acquire(ctx context.Context, tenantID string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, tenantID, token string) error
}
