package repository

import (
	"context"

	"marketnotify/internal/domain/entity"
)

type ChatRepository interface {
	// FindOrCreateConversation resolves the single conversation for a
	// (user, seller) pair, creating it when absent. The store enforces the
	// pair uniqueness, so two concurrent first-contacts converge on one record.
	FindOrCreateConversation(ctx context.Context, userID, sellerID string) (*entity.Conversation, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)
	UpdateConversation(ctx context.Context, conversation *entity.Conversation) error

	// Message methods
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
	// MarkMessagesRead flips the read flag on every unread message in the
	// conversation not authored by readerID and returns the count affected.
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error)
}
