package notification

import "context"

// Notifier is the outbound message capability consumed by the daily
// summary and birthday jobs. Send failures are logged and counted by
// callers and never fail the owning job.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, message string) error
}
