package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the durable per-user-per-day record store.
// (user_id, date) is unique; CreateIfAbsent is the atomic arena for the
// duplicate-day race.
type AttendanceRepository interface {
	// CreateIfAbsent inserts att unless a record for (user, date) already
	// exists; inserted reports whether this call won the insert.
	CreateIfAbsent(ctx context.Context, att Attendance) (created Attendance, inserted bool, err error)

	// GetByUserAndDate returns nil (not an error) when no record exists.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	Update(ctx context.Context, att Attendance) error

	// ListOpen returns records for date with a check-in and no check-out.
	ListOpen(ctx context.Context, date time.Time) ([]Attendance, error)

	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Attendance, int64, error)

	List(ctx context.Context, filter ListFilter) ([]Attendance, int64, error)

	// CountByStatus aggregates the day's record statuses.
	CountByStatus(ctx context.Context, date time.Time) (map[Status]int, error)
}
