package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/simha10/SAMS-sub000/internal/domain/jobrun"
	"github.com/simha10/SAMS-sub000/internal/pkg/clock"
)

// ErrStoreUnavailable signals the datastore could not be reached before
// any claim was attempted; the caller should retry later.
var ErrStoreUnavailable = errors.New("job store unavailable")

// Store is the slice of the database the runner needs to decide whether
// a job can proceed at all.
type Store interface {
	Ping(ctx context.Context) error
}

// Result is a job invocation's outcome. A skipped result is a success:
// another instance holds the day and the external scheduler must not
// retry or alert.
type Result struct {
	Job         string   `json:"job"`
	Date        string   `json:"date"`
	ExecutionID string   `json:"execution_id,omitempty"`
	Skipped     bool     `json:"skipped"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
}

// jobFn executes a job's business logic for the given calendar day.
// The returned error is reserved for "cannot proceed at all"; isolated
// per-user failures go into the counters instead.
type jobFn func(ctx context.Context, day time.Time) (succeeded, failed int, errs []string, err error)

// Runner coordinates daily jobs through the idempotency ledger so each
// executes at most once per calendar day across concurrent instances.
type Runner struct {
	store  Store
	ledger jobrun.JobRunRepository
	clk    clock.Clock
}

func NewRunner(store Store, ledger jobrun.JobRunRepository, clk clock.Clock) *Runner {
	return &Runner{store: store, ledger: ledger, clk: clk}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// run is the shared template: store availability, advisory HasRun fast
// path, atomic claim, business logic, terminal ledger transition.
func (r *Runner) run(ctx context.Context, name string, fn jobFn) (Result, error) {
	now := r.clk.Now()
	day := dayOf(now)
	res := Result{Job: name, Date: day.Format("2006-01-02")}

	if err := r.store.Ping(ctx); err != nil {
		return res, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ran, err := r.ledger.HasRun(ctx, name, day)
	if err != nil {
		return res, fmt.Errorf("failed to consult job ledger: %w", err)
	}
	if ran {
		slog.Info("Job: already ran today, skipping", "job", name, "date", res.Date)
		res.Skipped = true
		return res, nil
	}

	executionID := uuid.NewString()
	claimed, err := r.ledger.TryClaim(ctx, name, day, executionID)
	if err != nil {
		return res, fmt.Errorf("failed to claim job run: %w", err)
	}
	if !claimed {
		// Another instance won the claim race. The skipped row is audit
		// only; failing to write it must not fail the request.
		if err := r.ledger.MarkSkipped(ctx, name, day); err != nil {
			slog.Warn("Job: failed to write skipped audit row", "job", name, "error", err)
		}
		slog.Info("Job: claim lost to another instance, skipping", "job", name, "date", res.Date)
		res.Skipped = true
		return res, nil
	}
	res.ExecutionID = executionID

	succeeded, failed, errs, err := fn(ctx, day)
	if err != nil {
		if ferr := r.ledger.Fail(ctx, executionID, err.Error()); ferr != nil {
			slog.Error("Job: failed to mark run failed", "job", name, "error", ferr)
		}
		return res, err
	}

	res.Succeeded = succeeded
	res.Failed = failed
	res.Errors = errs

	if err := r.ledger.Complete(ctx, executionID, succeeded, failed); err != nil {
		return res, fmt.Errorf("failed to mark run completed: %w", err)
	}

	slog.Info("Job: completed", "job", name, "date", res.Date, "succeeded", succeeded, "failed", failed)
	return res, nil
}
