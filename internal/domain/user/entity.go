package user

import "time"

// User is the read-only slice of the org directory this service needs:
// who is active, who reports to whom, and birthdays.
type User struct {
	ID        string
	FullName  string
	Email     string
	Role      string
	DOB       *time.Time
	ManagerID *string
	IsActive  bool
}
