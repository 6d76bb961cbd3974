package model

import "time"

// NotificationTypeDocumentExpiring is the type used for every notification
// produced by the expiration scheduler, regardless of whether the document
// is about to expire or already has.
const NotificationTypeDocumentExpiring = "document_expiring"

// Notification is an in-app message shown to a single user.
// DedupDay is the calendar day (in the scheduler's location) the notification
// was created on; together with UserID, Type and Title it forms the
// uniqueness key that makes delivery idempotent within a day.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	DedupDay  string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationPreference is a per-user, per-type email opt-in/opt-out row.
// A user with no row for a type is treated as opted in.
type NotificationPreference struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Allowed bool   `json:"allowed"`
}
