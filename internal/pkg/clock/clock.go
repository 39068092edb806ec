package clock

import "time"

// Clock is the time source injected into everything that makes
// time-of-day or duration decisions, so tests can pin "now".
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// NewReal returns a Clock that reads the system time in loc.
func NewReal(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &realClock{loc: loc}
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a Clock frozen at a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
