package service

import (
	"context"
	"database/sql"
	"errors"

	"docnotify/internal/model"
	"docnotify/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationListResult is the service-level DTO for paginated notifications.
type NotificationListResult struct {
	Items []model.Notification `json:"data"`
	Total int                  `json:"total"`
}

// NotificationService exposes the read side of in-app notifications.
// Creation happens exclusively inside the expiration fanout.
type NotificationService interface {
	// ListForUser returns a user's notifications, newest first.
	ListForUser(ctx context.Context, userID string, limit, offset int) (*NotificationListResult, error)

	// MarkRead acknowledges a notification. Acknowledging an already-read
	// notification is a no-op, not an error.
	MarkRead(ctx context.Context, id string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, limit, offset int) (*NotificationListResult, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByUser(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
