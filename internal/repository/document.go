package repository

import (
	"context"
	"time"

	"docnotify/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, including soft-deleted ones.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of non-deleted documents and a total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// FindExpiringBetween returns non-deleted documents whose expires_at falls
	// in [start, end). Documents with a NULL expires_at never match.
	FindExpiringBetween(ctx context.Context, start, end time.Time) ([]model.Document, error)

	// SoftDelete marks a document as deleted without removing the row.
	// Returns nil if the row does not exist.
	SoftDelete(ctx context.Context, id string) error
}
