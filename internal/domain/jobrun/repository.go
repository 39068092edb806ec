package jobrun

import (
	"context"
	"time"
)

// JobRunRepository is the durable idempotency ledger guaranteeing each
// daily job executes at most once per calendar day across concurrent
// service instances.
type JobRunRepository interface {
	// TryClaim atomically inserts a running row for (jobName, date).
	// claimed=false means another instance already holds the day; that is
	// not an error. The atomicity of this insert is the authoritative
	// guard, not HasRun.
	TryClaim(ctx context.Context, jobName string, date time.Time, executionID string) (claimed bool, err error)

	// HasRun reports whether a running or completed row exists. It is an
	// advisory fast path only; it races with TryClaim by design.
	HasRun(ctx context.Context, jobName string, date time.Time) (bool, error)

	Complete(ctx context.Context, executionID string, succeeded, failed int) error

	Fail(ctx context.Context, executionID string, message string) error

	// MarkSkipped writes the audit row for a losing claimant.
	MarkSkipped(ctx context.Context, jobName string, date time.Time) error
}
