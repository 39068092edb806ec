package jobrun

import "time"

// RunStatus is the lifecycle of a daily job execution record.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	// StatusSkipped rows are audit-only: a claimant that lost the race
	// records that it saw the day already taken.
	StatusSkipped RunStatus = "skipped"
)

// JobRun is one row of the idempotency ledger. At most one running or
// completed row may exist per (JobName, RunDate); the store enforces
// this with a uniqueness constraint, not application logic.
type JobRun struct {
	ExecutionID string
	JobName     string
	RunDate     time.Time
	Status      RunStatus
	ExecutedAt  time.Time
	Error       *string
	Succeeded   int
	Failed      int
}
