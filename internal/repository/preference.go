package repository

import "context"

// PreferenceRepository looks up per-user, per-type email opt-outs.
type PreferenceRepository interface {
	// Allows reports whether the user accepts emails for the given
	// notification type. A user with no stored row is treated as opted in.
	Allows(ctx context.Context, userID, notificationType string) (bool, error)
}
