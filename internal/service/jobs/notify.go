package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/simha10/SAMS-sub000/internal/domain/attendance"
	"github.com/simha10/SAMS-sub000/internal/domain/notification"
	"github.com/simha10/SAMS-sub000/internal/domain/user"
)

const (
	JobDailySummary    = "daily_summary"
	JobBirthdayNotices = "birthday_notices"
)

// NotifyJobs dispatch outbound messages: the daily status summary and
// birthday greetings. Send failures are logged and counted, never
// retried, and never fail the owning job.
type NotifyJobs struct {
	runner           *Runner
	attendanceRepo   attendance.AttendanceRepository
	userRepo         user.UserRepository
	notifier         notification.Notifier
	summaryRecipient string
}

func NewNotifyJobs(
	runner *Runner,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	notifier notification.Notifier,
	summaryRecipient string,
) *NotifyJobs {
	return &NotifyJobs{
		runner:           runner,
		attendanceRepo:   attendanceRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		summaryRecipient: summaryRecipient,
	}
}

// DailySummary aggregates the day's record statuses and dispatches the
// report to the configured recipient.
func (j *NotifyJobs) DailySummary(ctx context.Context) (Result, error) {
	return j.runner.run(ctx, JobDailySummary, func(ctx context.Context, day time.Time) (int, int, []string, error) {
		counts, err := j.attendanceRepo.CountByStatus(ctx, day)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("failed to aggregate attendance statuses: %w", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Attendance summary for %s\n\n", day.Format("2006-01-02"))
		for _, status := range []attendance.Status{
			attendance.StatusPresent,
			attendance.StatusHalfDay,
			attendance.StatusOutsideDuty,
			attendance.StatusAbsent,
			attendance.StatusOnLeave,
		} {
			fmt.Fprintf(&b, "%s: %d\n", status, counts[status])
		}

		subject := fmt.Sprintf("Daily attendance summary - %s", day.Format("2006-01-02"))
		if err := j.notifier.Send(ctx, j.summaryRecipient, subject, b.String()); err != nil {
			slog.Error("Job: failed to send daily summary", "error", err)
			return 0, 1, []string{err.Error()}, nil
		}
		return 1, 0, nil, nil
	})
}

// BirthdayNotices greets every user whose date of birth matches today's
// month and day.
func (j *NotifyJobs) BirthdayNotices(ctx context.Context) (Result, error) {
	return j.runner.run(ctx, JobBirthdayNotices, func(ctx context.Context, day time.Time) (int, int, []string, error) {
		users, err := j.userRepo.ListWithBirthday(ctx, day.Month(), day.Day())
		if err != nil {
			return 0, 0, nil, fmt.Errorf("failed to list birthdays: %w", err)
		}

		var succeeded, failed int
		var errs []string
		for _, u := range users {
			msg := fmt.Sprintf("Happy birthday, %s! Wishing you a wonderful year ahead.", u.FullName)
			if err := j.notifier.Send(ctx, u.Email, "Happy Birthday!", msg); err != nil {
				slog.Error("Job: failed to send birthday notice", "user_id", u.ID, "error", err)
				failed++
				errs = append(errs, fmt.Sprintf("user %s: %v", u.ID, err))
				continue
			}
			succeeded++
		}
		return succeeded, failed, errs, nil
	})
}
