package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/simha10/SAMS-sub000/internal/domain/attendance"
	"github.com/simha10/SAMS-sub000/internal/domain/user"
	svcattendance "github.com/simha10/SAMS-sub000/internal/service/attendance"
)

const (
	JobMarkAbsentees = "mark_absentees"
	JobAutoCheckout  = "auto_checkout"
)

// AttendanceJobs are the end-of-day corrections over the attendance
// ledger: absentee marking and auto-checkout.
type AttendanceJobs struct {
	runner         *Runner
	attendanceRepo attendance.AttendanceRepository
	userRepo       user.UserRepository
	cutoffMinute   int
}

func NewAttendanceJobs(
	runner *Runner,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	cutoffMinute int,
) *AttendanceJobs {
	return &AttendanceJobs{
		runner:         runner,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		cutoffMinute:   cutoffMinute,
	}
}

// MarkAbsentees creates a synthetic absent record for every active user
// without an attendance record for the current date. Per-user writes are
// idempotent find-or-create, so a partial previous attempt is safe to
// re-run.
func (j *AttendanceJobs) MarkAbsentees(ctx context.Context) (Result, error) {
	return j.runner.run(ctx, JobMarkAbsentees, func(ctx context.Context, day time.Time) (int, int, []string, error) {
		users, err := j.userRepo.ListActive(ctx)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("failed to list active users: %w", err)
		}

		var succeeded, failed int
		var errs []string
		for _, u := range users {
			rec := attendance.Attendance{
				UserID: u.ID,
				Date:   day,
				Status: attendance.StatusAbsent,
			}
			_, inserted, err := j.attendanceRepo.CreateIfAbsent(ctx, rec)
			if err != nil {
				failed++
				errs = append(errs, fmt.Sprintf("user %s: %v", u.ID, err))
				continue
			}
			if inserted {
				succeeded++
			}
		}
		return succeeded, failed, errs, nil
	})
}

// AutoCheckout synthesizes a checkout at the configured cutoff for every
// record still open, applying the same duration-based reclassification as
// a user-triggered checkout. The auto-checkout note is distinct from
// user-triggered violation flags so the approval surface can treat the
// record as editable.
func (j *AttendanceJobs) AutoCheckout(ctx context.Context) (Result, error) {
	return j.runner.run(ctx, JobAutoCheckout, func(ctx context.Context, day time.Time) (int, int, []string, error) {
		open, err := j.attendanceRepo.ListOpen(ctx, day)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("failed to list open attendance sessions: %w", err)
		}

		cutoff := day.Add(time.Duration(j.cutoffMinute) * time.Minute)

		var succeeded, failed int
		var errs []string
		for _, rec := range open {
			// An approved leave granted after the morning check-in leaves
			// the session open; the leave still wins.
			if rec.Status == attendance.StatusOnLeave {
				continue
			}

			mins := svcattendance.WorkedMinutes(*rec.CheckInTime, cutoff)

			rec.CheckOutTime = &cutoff
			rec.WorkingMinutes = mins
			svcattendance.FinalizeDuration(&rec, mins)

			// A standing violation flag from check-in takes precedence
			// over the auto-checkout note.
			if !rec.Flagged {
				rec.SetFlag(attendance.AutoCheckout(cutoff.Format("15:04")))
			}

			if err := j.attendanceRepo.Update(ctx, rec); err != nil {
				failed++
				errs = append(errs, fmt.Sprintf("attendance %s: %v", rec.ID, err))
				continue
			}
			succeeded++
		}
		return succeeded, failed, errs, nil
	})
}
