package office

import "context"

type OfficeRepository interface {
	// ListActiveByUser returns the user's candidate geofences (assigned
	// branches plus the default office) in declaration order. An empty
	// slice means the user has no geofence; callers degrade to "always
	// outside" rather than failing.
	ListActiveByUser(ctx context.Context, userID string) ([]Office, error)

	GetByID(ctx context.Context, id string) (Office, error)
}
