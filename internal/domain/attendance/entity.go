package attendance

import (
	"time"
)

// Status is the daily attendance state, in increasing severity.
type Status string

const (
	StatusPresent     Status = "present"
	StatusHalfDay     Status = "half-day"
	StatusOutsideDuty Status = "outside-duty"
	StatusAbsent      Status = "absent"
	StatusOnLeave     Status = "on-leave"
)

// FullDayMinutes is the worked-minute threshold above which a day counts
// as a full day; at or below it (and above zero) the record is
// reclassified as half-day.
const FullDayMinutes = 300

type Attendance struct {
	ID                string
	UserID            string
	Date              time.Time
	CheckInTime       *time.Time
	CheckOutTime      *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckInDistanceM  *float64
	CheckOutDistanceM *float64
	WorkingMinutes    int
	Status            Status
	Flagged           bool
	FlagKind          *FlagKind
	FlaggedReason     *string
	IsHalfDay         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	UserName *string
}

// SetFlag marks the record for manager review with a tagged reason.
func (a *Attendance) SetFlag(r FlagReason) {
	kind := r.Kind
	rendered := r.Render()
	a.Flagged = true
	a.FlagKind = &kind
	a.FlaggedReason = &rendered
}

// ClearFlag removes any pending-review marker.
func (a *Attendance) ClearFlag() {
	a.Flagged = false
	a.FlagKind = nil
	a.FlaggedReason = nil
}

// GeofenceFlagged reports whether the record currently carries a radius
// violation flag, regardless of which transition set it.
func (a *Attendance) GeofenceFlagged() bool {
	return a.FlagKind != nil && *a.FlagKind == FlagGeofence
}
