package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/simha10/SAMS-sub000/internal/domain/jobrun"
	"github.com/simha10/SAMS-sub000/internal/pkg/database"
)

type jobRunRepository struct {
	db *database.DB
}

func NewJobRunRepository(db *database.DB) jobrun.JobRunRepository {
	return &jobRunRepository{db: db}
}

// TryClaim implements jobrun.JobRunRepository. A partial unique index on
// (job_name, run_date) WHERE status IN ('running', 'completed') makes
// the insert the single authoritative arbiter: exactly one caller per
// day gets a row back. Failed days leave no live row, so a later retry
// can claim the same day again.
func (j *jobRunRepository) TryClaim(ctx context.Context, jobName string, date time.Time, executionID string) (bool, error) {
	q := GetQuerier(ctx, j.db)

	query := `
		INSERT INTO job_runs (execution_id, job_name, run_date, status, executed_at)
		VALUES ($1, $2, $3, 'running', NOW())
		ON CONFLICT (job_name, run_date) WHERE status IN ('running', 'completed') DO NOTHING
		RETURNING execution_id
	`

	var claimed string
	err := q.QueryRow(ctx, query, executionID, jobName, date).Scan(&claimed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim job run: %w", err)
	}

	return true, nil
}

// HasRun implements jobrun.JobRunRepository.
func (j *jobRunRepository) HasRun(ctx context.Context, jobName string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, j.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM job_runs
			WHERE job_name = $1
			  AND run_date = $2
			  AND status IN ('running', 'completed')
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, jobName, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check job run: %w", err)
	}

	return exists, nil
}

// Complete implements jobrun.JobRunRepository.
func (j *jobRunRepository) Complete(ctx context.Context, executionID string, succeeded, failed int) error {
	q := GetQuerier(ctx, j.db)

	query := `
		UPDATE job_runs
		SET status = 'completed', succeeded = $2, failed = $3
		WHERE execution_id = $1
		  AND status = 'running'
	`

	tag, err := q.Exec(ctx, query, executionID, succeeded, failed)
	if err != nil {
		return fmt.Errorf("failed to complete job run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no running job run for execution %s", executionID)
	}

	return nil
}

// Fail implements jobrun.JobRunRepository.
func (j *jobRunRepository) Fail(ctx context.Context, executionID string, message string) error {
	q := GetQuerier(ctx, j.db)

	query := `
		UPDATE job_runs
		SET status = 'failed', error = $2
		WHERE execution_id = $1
		  AND status = 'running'
	`

	tag, err := q.Exec(ctx, query, executionID, message)
	if err != nil {
		return fmt.Errorf("failed to mark job run failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no running job run for execution %s", executionID)
	}

	return nil
}

// MarkSkipped implements jobrun.JobRunRepository. Skipped rows live
// outside the partial unique index, so any number of losing claimants
// can record themselves without colliding.
func (j *jobRunRepository) MarkSkipped(ctx context.Context, jobName string, date time.Time) error {
	q := GetQuerier(ctx, j.db)

	query := `
		INSERT INTO job_runs (execution_id, job_name, run_date, status, executed_at)
		VALUES (gen_random_uuid(), $1, $2, 'skipped', NOW())
	`

	if _, err := q.Exec(ctx, query, jobName, date); err != nil {
		return fmt.Errorf("failed to record skipped job run: %w", err)
	}

	return nil
}
