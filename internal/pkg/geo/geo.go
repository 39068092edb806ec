package geo

import (
	"math"
	"time"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine great-circle distance in meters
// between two coordinates, on a sphere of Earth's mean radius.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLng := (lng2 - lng1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// MinuteOfDay returns the wall-clock minute of day of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// WithinWindow reports whether t's local wall-clock minute of day falls
// inside [startMinute, endMinute], bounds inclusive.
func WithinWindow(t time.Time, startMinute, endMinute int) bool {
	m := MinuteOfDay(t)
	return m >= startMinute && m <= endMinute
}
