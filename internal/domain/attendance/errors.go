package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn        = errors.New("already checked in")
	ErrOutsideAttendanceWindow = errors.New("attendance cannot be submitted at this time")
	ErrOnApprovedLeave         = errors.New("attendance is locked by an approved leave")

	// Check-out errors
	ErrNotCheckedIn      = errors.New("no check-in found")
	ErrAlreadyCheckedOut = errors.New("already checked out")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
