package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docnotify/internal/repository"
)

// PreferencePostgres is a PostgreSQL implementation of repository.PreferenceRepository.
type PreferencePostgres struct {
	db *sql.DB
}

// NewPreferencePostgres creates a new PreferencePostgres repository.
func NewPreferencePostgres(db *sql.DB) *PreferencePostgres {
	return &PreferencePostgres{db: db}
}

var _ repository.PreferenceRepository = (*PreferencePostgres)(nil)

// Allows reports whether the user accepts emails of the given type.
// A missing preference row means the user never opted out.
func (r *PreferencePostgres) Allows(ctx context.Context, userID, notificationType string) (bool, error) {
	const q = `
		SELECT allowed
		FROM notification_preferences
		WHERE user_id = $1 AND type = $2
	`
	var allowed bool
	err := r.db.QueryRowContext(ctx, q, userID, notificationType).Scan(&allowed)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return allowed, nil
}
