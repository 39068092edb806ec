package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn processes an employee check-in with geofence and
	// time-window verification.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut processes an employee check-out, including the
	// self-healing geofence correction and duration reclassification.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// GetMyAttendance retrieves records for the authenticated employee.
	GetMyAttendance(ctx context.Context, filter ListFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves records with filters (manager/admin).
	ListAttendance(ctx context.Context, filter ListFilter) (ListAttendanceResponse, error)

	// Approve clears a flagged record after manager review.
	Approve(ctx context.Context, req ApproveRequest) (AttendanceResponse, error)

	// Reject marks a flagged record absent with the manager's reason.
	Reject(ctx context.Context, req RejectRequest) (AttendanceResponse, error)
}
