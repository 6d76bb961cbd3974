package repository

import (
	"context"

	"docnotify/internal/model"
)

// UserRepository defines read access to user accounts.
type UserRepository interface {
	// FindByID returns a user by ID, or sql.ErrNoRows if the user does not exist.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// ListAdmins returns every user currently flagged as an administrator.
	// Callers must not cache the result across scheduler cycles.
	ListAdmins(ctx context.Context) ([]model.User, error)
}
