package repository

import (
	"context"

	"docnotify/internal/model"
)

// ClaimResult reports the outcome of ClaimAndInsert.
// Created is false when a notification with the same (user, type, title,
// dedup day) already exists; in that case Notification is nil.
type ClaimResult struct {
	Created      bool
	Notification *model.Notification
}

// NotificationRepository defines data access for in-app notifications.
type NotificationRepository interface {
	// ClaimAndInsert atomically inserts a notification unless one with the
	// same (user_id, type, title, dedup_day) already exists. The insert and
	// the duplicate check are a single statement backed by a unique index,
	// so concurrent callers can never both succeed.
	ClaimAndInsert(ctx context.Context, n *model.Notification) (*ClaimResult, error)

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Notification], error)

	// MarkRead sets is_read and read_at on first call; later calls are no-ops.
	// Returns sql.ErrNoRows if the notification does not exist.
	MarkRead(ctx context.Context, id string) error
}
