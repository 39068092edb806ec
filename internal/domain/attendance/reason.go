package attendance

import "fmt"

// FlagKind tags a flagged reason so transition logic can branch on it
// without parsing the human-readable rendering.
type FlagKind string

const (
	FlagGeofence        FlagKind = "geofence"
	FlagOfficeHoursIn   FlagKind = "office-hours-in"
	FlagOfficeHoursOut  FlagKind = "office-hours-out"
	FlagAutoCheckout    FlagKind = "auto-checkout"
	FlagManagerOverride FlagKind = "manager-override"
)

// FlagReason is the structured flag carried alongside its rendering.
// Distance and radius are only meaningful for FlagGeofence; Note carries
// the auto-checkout timestamp or the manager's override reason.
type FlagReason struct {
	Kind       FlagKind
	DistanceM  float64
	RadiusM    float64
	AtCheckOut bool
	Note       string
}

func GeofenceViolation(distanceM, radiusM float64, atCheckOut bool) FlagReason {
	return FlagReason{Kind: FlagGeofence, DistanceM: distanceM, RadiusM: radiusM, AtCheckOut: atCheckOut}
}

// NoGeofenceConfigured is the degraded geofence flag used when a user has
// no active office; the check-in still succeeds in a flagged state.
func NoGeofenceConfigured() FlagReason {
	return FlagReason{Kind: FlagGeofence, Note: "no active office geofence configured"}
}

func OfficeHoursViolation(atCheckOut bool) FlagReason {
	if atCheckOut {
		return FlagReason{Kind: FlagOfficeHoursOut, AtCheckOut: true}
	}
	return FlagReason{Kind: FlagOfficeHoursIn}
}

func AutoCheckout(at string) FlagReason {
	return FlagReason{Kind: FlagAutoCheckout, AtCheckOut: true, Note: at}
}

func ManagerOverride(reason string) FlagReason {
	return FlagReason{Kind: FlagManagerOverride, Note: reason}
}

// Render produces the human-readable reason stored next to the kind.
// Geofence renderings keep the word "radius" for consumers of the old
// free-text contract.
func (r FlagReason) Render() string {
	switch r.Kind {
	case FlagGeofence:
		if r.Note != "" {
			return fmt.Sprintf("Outside allowed radius (%s) - Awaiting manager approval", r.Note)
		}
		if r.AtCheckOut {
			return fmt.Sprintf("Outside allowed radius at checkout (%.2fm from office, allowed %.2fm) - Awaiting manager approval", r.DistanceM, r.RadiusM)
		}
		return fmt.Sprintf("Outside allowed radius (%.2fm from office, allowed %.2fm) - Awaiting manager approval", r.DistanceM, r.RadiusM)
	case FlagOfficeHoursIn:
		return "Check-in outside office hours"
	case FlagOfficeHoursOut:
		return "Check-out outside office hours"
	case FlagAutoCheckout:
		return fmt.Sprintf("Auto checkout at %s - no check-out recorded", r.Note)
	case FlagManagerOverride:
		return fmt.Sprintf("Manager override: %s", r.Note)
	}
	return string(r.Kind)
}
