package office

import "time"

// Office is a circular geofence a check-in can be verified against.
// A user may be assigned a single default office or a set of branches;
// the resolver treats both uniformly as candidate geofences.
type Office struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	RadiusM   float64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
