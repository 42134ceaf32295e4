package repository

import (
	"context"

	"marketnotify/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListByUser returns the user's notifications newest-first. isRead filters
	// by read state when non-nil.
	ListByUser(ctx context.Context, userID string, isRead *bool, limit, offset int) ([]*entity.Notification, int64, error)
	Update(ctx context.Context, notification *entity.Notification) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}
