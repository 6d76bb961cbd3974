package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docnotify/internal/model"
	"docnotify/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

// ClaimAndInsert inserts a notification unless the uq_notifications_dedup
// index already holds a row for (user_id, type, title, dedup_day). The
// ON CONFLICT clause makes the claim and the write one atomic statement;
// a suppressed insert returns no row and is reported as Created=false.
func (r *NotificationPostgres) ClaimAndInsert(ctx context.Context, n *model.Notification) (*repository.ClaimResult, error) {
	const q = `
		INSERT INTO notifications (id, user_id, type, title, message, dedup_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, type, title, dedup_day) DO NOTHING
		RETURNING id, user_id, type, title, message, is_read, read_at, dedup_day, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.DedupDay,
		n.CreatedAt,
	)

	var out model.Notification
	var readAt sql.NullTime
	err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Type,
		&out.Title,
		&out.Message,
		&out.IsRead,
		&readAt,
		&out.DedupDay,
		&out.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict: an identical notification already exists for this day.
		return &repository.ClaimResult{Created: false}, nil
	}
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		t := readAt.Time
		out.ReadAt = &t
	}
	return &repository.ClaimResult{Created: true, Notification: &out}, nil
}

// ListByUser returns a user's notifications, newest first, with a total count.
func (r *NotificationPostgres) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	const qCount = `SELECT COUNT(*) FROM notifications WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, user_id, type, title, message, is_read, read_at, dedup_day, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var readAt sql.NullTime
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&readAt,
			&n.DedupDay,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Notification]{Items: items, Total: total}, nil
}

// MarkRead sets is_read/read_at the first time it is called for a row.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id string) error {
	const q = `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, now())
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
