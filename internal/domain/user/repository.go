package user

import (
	"context"
	"time"
)

// UserRepository is consumed read-only by the decision engine and the
// daily job runners.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)

	ListActive(ctx context.Context) ([]User, error)

	// ListWithBirthday returns active users whose date of birth matches
	// the given month and day.
	ListWithBirthday(ctx context.Context, month time.Month, day int) ([]User, error)
}
