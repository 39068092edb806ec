package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/simha10/SAMS-sub000/internal/domain/attendance"
	"github.com/simha10/SAMS-sub000/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, user_id, date, check_in_time, check_out_time,
	check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
	check_in_distance_m, check_out_distance_m,
	working_minutes, status, flagged, flag_kind, flagged_reason, is_half_day,
	created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date, &att.CheckInTime, &att.CheckOutTime,
		&att.CheckInLatitude, &att.CheckInLongitude, &att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.CheckInDistanceM, &att.CheckOutDistanceM,
		&att.WorkingMinutes, &att.Status, &att.Flagged, &att.FlagKind, &att.FlaggedReason, &att.IsHalfDay,
		&att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// CreateIfAbsent implements attendance.AttendanceRepository. The unique
// index on (user_id, date) decides the duplicate-day race; a conflicting
// insert returns no row and the caller re-reads the winner.
func (a *attendanceRepository) CreateIfAbsent(ctx context.Context, att attendance.Attendance) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			user_id, date, check_in_time, check_out_time,
			check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
			check_in_distance_m, check_out_distance_m,
			working_minutes, status, flagged, flag_kind, flagged_reason, is_half_day
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (user_id, date) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.UserID,
		att.Date,
		att.CheckInTime,
		att.CheckOutTime,
		att.CheckInLatitude,
		att.CheckInLongitude,
		att.CheckOutLatitude,
		att.CheckOutLongitude,
		att.CheckInDistanceM,
		att.CheckOutDistanceM,
		att.WorkingMinutes,
		att.Status,
		att.Flagged,
		att.FlagKind,
		att.FlaggedReason,
		att.IsHalfDay,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, false, nil
		}
		return attendance.Attendance{}, false, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, true, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1
		  AND date = $2
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendances
		WHERE id = $1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_in_time = $2,
			check_out_time = $3,
			check_in_latitude = $4,
			check_in_longitude = $5,
			check_out_latitude = $6,
			check_out_longitude = $7,
			check_in_distance_m = $8,
			check_out_distance_m = $9,
			working_minutes = $10,
			status = $11,
			flagged = $12,
			flag_kind = $13,
			flagged_reason = $14,
			is_half_day = $15,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.CheckInTime,
		att.CheckOutTime,
		att.CheckInLatitude,
		att.CheckInLongitude,
		att.CheckOutLatitude,
		att.CheckOutLongitude,
		att.CheckInDistanceM,
		att.CheckOutDistanceM,
		att.WorkingMinutes,
		att.Status,
		att.Flagged,
		att.FlagKind,
		att.FlaggedReason,
		att.IsHalfDay,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// ListOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpen(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT` + attendanceColumns + `
		FROM attendances
		WHERE date = $1
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NULL
		  AND status != 'on-leave'
		ORDER BY check_in_time ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance sessions: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return result, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.ListFilter) ([]attendance.Attendance, int64, error) {
	filter.UserID = &userID
	return a.List(ctx, filter)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	addCondition := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, argPos))
		args = append(args, value)
		argPos++
	}

	if filter.UserID != nil {
		addCondition("a.user_id = $%d", *filter.UserID)
	}
	if filter.Date != nil {
		addCondition("a.date = $%d", *filter.Date)
	}
	if filter.StartDate != nil {
		addCondition("a.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("a.date <= $%d", *filter.EndDate)
	}
	if filter.Status != nil {
		addCondition("a.status = $%d", *filter.Status)
	}
	if filter.Flagged != nil {
		addCondition("a.flagged = $%d", *filter.Flagged)
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances a WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.date, a.check_in_time, a.check_out_time,
			   a.check_in_latitude, a.check_in_longitude, a.check_out_latitude, a.check_out_longitude,
			   a.check_in_distance_m, a.check_out_distance_m,
			   a.working_minutes, a.status, a.flagged, a.flag_kind, a.flagged_reason, a.is_half_day,
			   a.created_at, a.updated_at,
			   u.full_name
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.date DESC, a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		err := rows.Scan(
			&att.ID, &att.UserID, &att.Date, &att.CheckInTime, &att.CheckOutTime,
			&att.CheckInLatitude, &att.CheckInLongitude, &att.CheckOutLatitude, &att.CheckOutLongitude,
			&att.CheckInDistanceM, &att.CheckOutDistanceM,
			&att.WorkingMinutes, &att.Status, &att.Flagged, &att.FlagKind, &att.FlaggedReason, &att.IsHalfDay,
			&att.CreatedAt, &att.UpdatedAt,
			&att.UserName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return result, total, nil
}

// CountByStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByStatus(ctx context.Context, date time.Time) (map[attendance.Status]int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT status, COUNT(*)
		FROM attendances
		WHERE date = $1
		GROUP BY status
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendances by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[attendance.Status]int)
	for rows.Next() {
		var status attendance.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}
