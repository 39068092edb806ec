package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/simha10/SAMS-sub000/internal/domain/attendance"
	"github.com/simha10/SAMS-sub000/internal/domain/office"
	"github.com/simha10/SAMS-sub000/internal/pkg/clock"
	"github.com/simha10/SAMS-sub000/internal/pkg/geo"
	"github.com/simha10/SAMS-sub000/internal/service/geofence"
)

// Windows carries the two independently configured time windows: the
// broad submission window gating any check-in/out at all, and the fair
// office hours feeding the decision engine.
type Windows struct {
	WindowStartMinute int
	WindowEndMinute   int
	OfficeStartMinute int
	OfficeEndMinute   int
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	office.OfficeRepository
	clk     clock.Clock
	windows Windows
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	officeRepo office.OfficeRepository,
	clk clock.Clock,
	windows Windows,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		OfficeRepository:     officeRepo,
		clk:                  clk,
		windows:              windows,
	}
}

// userIDFromContext extracts the authenticated employee from the access
// token claims.
func userIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

// dayOf truncates t to its calendar day in t's own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clk.Now()
	if !geo.WithinWindow(now, s.windows.WindowStartMinute, s.windows.WindowEndMinute) {
		return attendance.AttendanceResponse{}, attendance.ErrOutsideAttendanceWindow
	}
	today := dayOf(now)

	existing, err := s.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for today: %w", err)
	}
	if existing != nil {
		// The engine never overwrites an approved leave.
		if existing.Status == attendance.StatusOnLeave {
			return attendance.AttendanceResponse{}, attendance.ErrOnApprovedLeave
		}
		if existing.CheckInTime != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
	}

	offices, err := s.OfficeRepository.ListActiveByUser(ctx, userID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to list user geofences: %w", err)
	}
	match := geofence.Resolve(geofence.Position{Latitude: *req.Latitude, Longitude: *req.Longitude}, offices)

	withinHours := geo.WithinWindow(now, s.windows.OfficeStartMinute, s.windows.OfficeEndMinute)

	rec := attendance.Attendance{
		UserID: userID,
		Date:   today,
	}
	if existing != nil {
		rec = *existing
	}

	decideCheckIn(&rec, match, withinHours)

	rec.CheckInTime = &now
	rec.CheckInLatitude = req.Latitude
	rec.CheckInLongitude = req.Longitude
	if match != nil {
		d := match.DistanceM
		rec.CheckInDistanceM = &d
	}

	saved, err := s.persistCheckIn(ctx, rec, existing != nil)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapToResponse(saved), nil
}

// persistCheckIn writes the check-in atomically against the (user, date)
// uniqueness of the store. A lost insert race is retried once as a
// lookup-then-update, never surfaced to the caller.
func (s *AttendanceServiceImpl) persistCheckIn(ctx context.Context, rec attendance.Attendance, update bool) (attendance.Attendance, error) {
	if update {
		if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to update attendance record: %w", err)
		}
		return rec, nil
	}

	created, inserted, err := s.AttendanceRepository.CreateIfAbsent(ctx, rec)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	if inserted {
		return created, nil
	}

	// Someone else created the day's record between our lookup and the
	// insert. Re-read and decide again.
	current, err := s.AttendanceRepository.GetByUserAndDate(ctx, rec.UserID, rec.Date)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to re-read attendance record: %w", err)
	}
	if current == nil {
		return attendance.Attendance{}, fmt.Errorf("attendance record vanished after insert conflict")
	}
	if current.CheckInTime != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}

	rec.ID = current.ID
	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return rec, nil
}

// decideCheckIn applies the check-in precedence: geofence violation,
// then office-hours violation, then present.
func decideCheckIn(rec *attendance.Attendance, match *geofence.Match, withinHours bool) {
	switch {
	case match == nil:
		rec.Status = attendance.StatusOutsideDuty
		rec.SetFlag(attendance.NoGeofenceConfigured())
	case !match.WithinRadius:
		rec.Status = attendance.StatusOutsideDuty
		rec.SetFlag(attendance.GeofenceViolation(match.DistanceM, match.Office.RadiusM, false))
	case !withinHours:
		rec.Status = attendance.StatusOutsideDuty
		rec.SetFlag(attendance.OfficeHoursViolation(false))
	default:
		rec.Status = attendance.StatusPresent
		rec.ClearFlag()
	}
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clk.Now()
	if !geo.WithinWindow(now, s.windows.WindowStartMinute, s.windows.WindowEndMinute) {
		return attendance.AttendanceResponse{}, attendance.ErrOutsideAttendanceWindow
	}
	today := dayOf(now)

	rec, err := s.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for today: %w", err)
	}
	if rec == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	// The engine never overwrites an approved leave, even one granted
	// after a morning check-in.
	if rec.Status == attendance.StatusOnLeave {
		return attendance.AttendanceResponse{}, attendance.ErrOnApprovedLeave
	}
	if rec.CheckInTime == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	offices, err := s.OfficeRepository.ListActiveByUser(ctx, userID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to list user geofences: %w", err)
	}
	match := geofence.Resolve(geofence.Position{Latitude: *req.Latitude, Longitude: *req.Longitude}, offices)

	withinHours := geo.WithinWindow(now, s.windows.OfficeStartMinute, s.windows.OfficeEndMinute)
	workedMinutes := WorkedMinutes(*rec.CheckInTime, now)

	applyCheckOutCorrections(rec, match, withinHours)
	FinalizeDuration(rec, workedMinutes)

	rec.CheckOutTime = &now
	rec.CheckOutLatitude = req.Latitude
	rec.CheckOutLongitude = req.Longitude
	if match != nil {
		d := match.DistanceM
		rec.CheckOutDistanceM = &d
	}
	rec.WorkingMinutes = workedMinutes

	if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return mapToResponse(*rec), nil
}

// WorkedMinutes is the whole-minute duration between check-in and
// check-out, floored, never negative.
func WorkedMinutes(checkIn, checkOut time.Time) int {
	mins := checkOut.Sub(checkIn).Minutes()
	if mins < 0 {
		return 0
	}
	return int(math.Floor(mins))
}

// applyCheckOutCorrections applies the geofence-driven correction and the
// office-hours correction at checkout time. It is idempotent: applying it
// twice with the same inputs yields the same terminal state. A record
// already carrying a radius flag is never re-flagged with a duplicate
// radius reason; a record that drifted out and back in reverts to present
// (self-healing).
func applyCheckOutCorrections(rec *attendance.Attendance, match *geofence.Match, withinHours bool) {
	outside := match == nil || !match.WithinRadius
	if outside {
		if !rec.GeofenceFlagged() {
			rec.Status = attendance.StatusOutsideDuty
			if match != nil {
				rec.SetFlag(attendance.GeofenceViolation(match.DistanceM, match.Office.RadiusM, true))
			} else {
				rec.SetFlag(attendance.NoGeofenceConfigured())
			}
		}
	} else if rec.GeofenceFlagged() {
		rec.Status = attendance.StatusPresent
		rec.ClearFlag()
	}

	// Office-hours correction only applies when no radius flag stands.
	if !rec.GeofenceFlagged() && !withinHours {
		rec.Status = attendance.StatusOutsideDuty
		rec.SetFlag(attendance.OfficeHoursViolation(true))
	}
}

// FinalizeDuration applies the duration-based reclassification last.
// A worked duration above the full-day threshold keeps present unless a
// violation flag still stands; a short positive duration forces half-day,
// which is the final word and clears any violation flag.
func FinalizeDuration(rec *attendance.Attendance, workedMinutes int) {
	if workedMinutes > attendance.FullDayMinutes {
		if rec.Status != attendance.StatusOutsideDuty {
			rec.Status = attendance.StatusPresent
		}
		return
	}
	if workedMinutes > 0 {
		rec.Status = attendance.StatusHalfDay
		rec.IsHalfDay = true
		rec.ClearFlag()
	}
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.ListFilter) (attendance.ListAttendanceResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.ListFilter) (attendance.ListAttendanceResponse, error) {
	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// Approve implements attendance.AttendanceService. A flagged record the
// manager accepts becomes trusted: the flag clears and the status settles
// on what the duration already decided.
func (s *AttendanceServiceImpl) Approve(ctx context.Context, req attendance.ApproveRequest) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if rec.IsHalfDay {
		rec.Status = attendance.StatusHalfDay
	} else {
		rec.Status = attendance.StatusPresent
	}
	rec.ClearFlag()

	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to approve attendance: %w", err)
	}

	return mapToResponse(rec), nil
}

// Reject implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Reject(ctx context.Context, req attendance.RejectRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec.Status = attendance.StatusAbsent
	rec.SetFlag(attendance.ManagerOverride(req.Reason))
	// The manager's decision ends the review; the reason stays on record.
	rec.Flagged = false

	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to reject attendance: %w", err)
	}

	return mapToResponse(rec), nil
}

func buildListResponse(records []attendance.Attendance, total int64, filter attendance.ListFilter) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapToResponse(rec))
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func mapToResponse(rec attendance.Attendance) attendance.AttendanceResponse {
	var kind *string
	if rec.FlagKind != nil {
		k := string(*rec.FlagKind)
		kind = &k
	}

	return attendance.AttendanceResponse{
		ID:                rec.ID,
		UserID:            rec.UserID,
		UserName:          rec.UserName,
		Date:              rec.Date.Format("2006-01-02"),
		CheckInTime:       timePtrToString(rec.CheckInTime),
		CheckOutTime:      timePtrToString(rec.CheckOutTime),
		CheckInLatitude:   rec.CheckInLatitude,
		CheckInLongitude:  rec.CheckInLongitude,
		CheckOutLatitude:  rec.CheckOutLatitude,
		CheckOutLongitude: rec.CheckOutLongitude,
		CheckInDistanceM:  rec.CheckInDistanceM,
		CheckOutDistanceM: rec.CheckOutDistanceM,
		WorkingMinutes:    rec.WorkingMinutes,
		Status:            string(rec.Status),
		Flagged:           rec.Flagged,
		FlagKind:          kind,
		FlaggedReason:     rec.FlaggedReason,
		IsHalfDay:         rec.IsHalfDay,
	}
}
