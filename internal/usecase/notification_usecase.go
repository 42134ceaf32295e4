package usecase

import (
	"context"
	"log"
	"time"

	"marketnotify/internal/domain/entity"
	"marketnotify/internal/domain/repository"
	"marketnotify/internal/infrastructure/provider"
	ws "marketnotify/internal/infrastructure/websocket"
	"marketnotify/pkg/errors"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	wsManager        *ws.Manager
	providers        []provider.Provider
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, wsManager *ws.Manager, providers []provider.Provider) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		wsManager:        wsManager,
		providers:        providers,
	}
}

type CreateNotificationInput struct {
	UserID  string
	Type    string
	Title   string
	Message string
	Data    map[string]interface{}
}

// CreateNotification persists a notification, pushes it into the recipient's
// notification room, and hands it to the outbound providers. Provider
// failures are logged and never propagated.
func (uc *NotificationUseCase) CreateNotification(ctx context.Context, input CreateNotificationInput) (*entity.Notification, error) {
	if input.UserID == "" || input.Type == "" || input.Title == "" || input.Message == "" {
		return nil, errors.BadRequest("userId, type, title, and message are required", nil)
	}
	if !entity.IsValidNotificationType(input.Type) {
		return nil, errors.BadRequest("Invalid notification type", nil)
	}

	notification := &entity.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   input.Title,
		Message: input.Message,
		Data:    input.Data,
		IsRead:  false,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("CreateNotification Error: Failed to create notification for user %s: %v", input.UserID, err)
		return nil, err
	}

	uc.wsManager.BroadcastToRoom(ws.UserNotificationRoom(input.UserID), ws.EventNewNotification, notification)

	for _, p := range uc.providers {
		if err := p.Send(ctx, notification); err != nil {
			log.Printf("CreateNotification: %s provider failed for user %s: %v", p.Name(), input.UserID, err)
		}
	}

	return notification, nil
}

// OnUnreachable implements the chat delivery fallback: when a message's
// receiver is not in the conversation room, a durable chat notification is
// created and a direct emit is attempted in case the receiver is connected
// elsewhere in the app.
func (uc *NotificationUseCase) OnUnreachable(ctx context.Context, recipientID string, conversation *entity.Conversation, message *entity.Message) error {
	notification, err := uc.CreateNotification(ctx, CreateNotificationInput{
		UserID:  recipientID,
		Type:    entity.NotificationTypeChat,
		Title:   "New Message",
		Message: message.Content,
		Data: map[string]interface{}{
			"conversationId": conversation.ID,
			"senderId":       message.SenderID,
			"messageId":      message.ID,
			"hasImage":       message.Image != "",
		},
	})
	if err != nil {
		return err
	}

	uc.wsManager.EmitToUser(recipientID, ws.EventNewNotification, notification)
	return nil
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, userID string, isRead *bool, limit, offset int) ([]*entity.Notification, int64, error) {
	return uc.notificationRepo.ListByUser(ctx, userID, isRead, limit, offset)
}

// MarkNotificationRead flips the read flag on a notification owned by the
// caller. A notification belonging to someone else reads as not found so the
// caller learns nothing about other users' notifications.
func (uc *NotificationUseCase) MarkNotificationRead(ctx context.Context, userID, notificationID string) (*entity.Notification, error) {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	if notification.UserID != userID {
		return nil, errors.NotFound("Notification", nil)
	}

	if !notification.IsRead {
		now := time.Now()
		notification.IsRead = true
		notification.ReadAt = &now
		if err := uc.notificationRepo.Update(ctx, notification); err != nil {
			return nil, err
		}
	}

	uc.wsManager.BroadcastToRoom(ws.UserNotificationRoom(userID), ws.EventNotificationUpdated, map[string]interface{}{
		"notificationId": notification.ID,
		"isRead":         true,
	})

	return notification, nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.CountUnread(ctx, userID)
}
