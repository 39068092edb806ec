package geofence

import (
	"github.com/simha10/SAMS-sub000/internal/domain/office"
	"github.com/simha10/SAMS-sub000/internal/pkg/geo"
)

// Position is a raw GPS coordinate pair.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Match is the resolver output: the nearest qualifying office, how far
// away the position is, and whether it falls inside the radius.
type Match struct {
	Office       office.Office
	DistanceM    float64
	WithinRadius bool
}

// Resolve computes the distance to every active office and selects the
// minimum. Equidistant candidates tie-break to the first declared. A nil
// result means no active geofence exists; callers must treat that as
// "always outside" but still allow a flagged record to be written.
func Resolve(pos Position, offices []office.Office) *Match {
	var best *Match
	for _, o := range offices {
		if !o.IsActive {
			continue
		}
		d := geo.DistanceMeters(pos.Latitude, pos.Longitude, o.Latitude, o.Longitude)
		if best == nil || d < best.DistanceM {
			best = &Match{
				Office:       o,
				DistanceM:    d,
				WithinRadius: d <= o.RadiusM,
			}
		}
	}
	return best
}
