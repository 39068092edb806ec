package attendance

import (
	"github.com/simha10/SAMS-sub000/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *CheckInRequest) Validate() error {
	return validateCoordinates(r.Latitude, r.Longitude)
}

type CheckOutRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *CheckOutRequest) Validate() error {
	return validateCoordinates(r.Latitude, r.Longitude)
}

func validateCoordinates(lat, lng *float64) error {
	var errs validator.ValidationErrors

	if lat == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if *lat < -90 || *lat > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lng == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if *lng < -180 || *lng > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

type RejectRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListFilter struct {
	UserID    *string
	Date      *string
	StartDate *string
	EndDate   *string
	Status    *string
	Flagged   *bool
	Page      int
	Limit     int
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	UserName          *string  `json:"user_name,omitempty"`
	Date              string   `json:"date"`
	CheckInTime       *string  `json:"check_in_time"`
	CheckOutTime      *string  `json:"check_out_time"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	CheckInDistanceM  *float64 `json:"check_in_distance_m,omitempty"`
	CheckOutDistanceM *float64 `json:"check_out_distance_m,omitempty"`
	WorkingMinutes    int      `json:"working_minutes"`
	Status            string   `json:"status"`
	Flagged           bool     `json:"flagged"`
	FlagKind          *string  `json:"flag_kind,omitempty"`
	FlaggedReason     *string  `json:"flagged_reason,omitempty"`
	IsHalfDay         bool     `json:"is_half_day"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
