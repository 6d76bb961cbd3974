package model

import "time"

// Document status values. Soft-deleted documents stay in the table but are
// excluded from listings and expiration scans.
const (
	DocumentStatusActive  = "active"
	DocumentStatusDeleted = "deleted"
)

// Document represents a stored file in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// ExpiresAt is nil for documents without an expiration date; such documents
// are never picked up by the expiration scanner.
type Document struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Filename    string     `json:"filename"`
	StoragePath string     `json:"storage_path"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Label returns the human-readable name used in notification wording:
// the description when present, otherwise the filename.
func (d *Document) Label() string {
	if d.Description != "" {
		return d.Description
	}
	return d.Filename
}
