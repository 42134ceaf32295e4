package usecase

import (
	"context"
	"log"

	"marketnotify/internal/domain/entity"
	"marketnotify/internal/domain/repository"
	"marketnotify/internal/infrastructure/ratelimit"
	ws "marketnotify/internal/infrastructure/websocket"
	"marketnotify/pkg/errors"
)

// DeliveryFallback is the post-commit hook invoked when a message's
// counterparty is not reachable in the conversation room. Implementations
// persist a durable notification and attempt a direct emit; the chat path
// treats any failure as best-effort and only logs it.
type DeliveryFallback interface {
	OnUnreachable(ctx context.Context, recipientID string, conversation *entity.Conversation, message *entity.Message) error
}

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	wsManager   *ws.Manager
	fallback    DeliveryFallback
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(chatRepo repository.ChatRepository, wsManager *ws.Manager, fallback DeliveryFallback) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:    chatRepo,
		wsManager:   wsManager,
		fallback:    fallback,
		rateLimiter: rateLimiter,
	}
}

// ResolveConversationInput identifies a conversation either directly by ID or
// by the counterparty: SellerID when the caller is the customer, CustomerID
// when the caller is the seller.
type ResolveConversationInput struct {
	ConversationID string
	SellerID       string
	CustomerID     string
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	Image          string
}

// ResolveConversation returns the conversation for the caller, creating it on
// first contact. The upsert is race-safe at the store level; concurrent first
// contacts for the same pair converge on one record.
func (uc *ChatUseCase) ResolveConversation(ctx context.Context, currentUserID string, input ResolveConversationInput) (*entity.Conversation, error) {
	if input.ConversationID != "" {
		return uc.GetConversation(ctx, currentUserID, input.ConversationID)
	}

	var userID, sellerID string
	switch {
	case input.SellerID != "":
		userID, sellerID = currentUserID, input.SellerID
	case input.CustomerID != "":
		userID, sellerID = input.CustomerID, currentUserID
	default:
		return nil, errors.BadRequest("Either conversationId, sellerId, or userId is required", nil)
	}

	if userID == sellerID {
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(currentUserID, "create_conversation")
	if !allowed {
		log.Printf("ResolveConversation Rate Limited: User %s must wait %v", currentUserID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another conversation")
	}

	return uc.chatRepo.FindOrCreateConversation(ctx, userID, sellerID)
}

// GetConversation fetches a conversation the caller is a party to.
func (uc *ChatUseCase) GetConversation(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		log.Printf("GetConversation: user %s is not a party to conversation %s", userID, conversationID)
		return nil, errors.Forbidden("Access denied to this conversation", nil)
	}

	return conversation, nil
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	return uc.chatRepo.ListConversationsByUser(ctx, userID, limit, offset)
}

// GetMessages returns one page of a conversation's messages in chronological
// order. Storage sorts newest-first; the page is reversed before it is
// handed to the client.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}

	messages, total, err := uc.chatRepo.GetMessagesByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, total, nil
}

// SendMessage persists a message, updates the conversation's denormalized
// fields, and routes delivery: a confirmation to the sender, a broadcast to
// the conversation room, and, when the counterparty is not in the room, the
// durable-notification fallback.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if input.ConversationID == "" || input.Content == "" {
		return nil, errors.BadRequest("conversationId and content are required", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	conversation, err := uc.GetConversation(ctx, senderID, input.ConversationID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		Content:        input.Content,
		Image:          input.Image,
		IsRead:         false,
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to create message for conversation %s: %v", input.ConversationID, err)
		return nil, err
	}

	// Last-write-wins on the denormalized summary; two concurrent sends may
	// land in either order and the field reflects whichever committed last.
	conversation.LastMessage = input.Content
	conversation.LastUpdated = message.CreatedAt
	conversation.UnreadCount++

	if err := uc.chatRepo.UpdateConversation(ctx, conversation); err != nil {
		log.Printf("SendMessage Error: Failed to update conversation %s: %v", conversation.ID, err)
		return nil, err
	}

	uc.wsManager.EmitToUser(senderID, ws.EventMessageSent, message)

	room := ws.ConversationRoom(input.ConversationID)
	uc.wsManager.BroadcastToRoom(room, ws.EventNewMessage, message)

	receiverID := conversation.CounterpartyOf(senderID)
	if !uc.wsManager.IsUserInRoom(room, receiverID) {
		log.Printf("SendMessage: receiver %s not in room %s, falling back to notification", receiverID, room)
		if err := uc.fallback.OnUnreachable(ctx, receiverID, conversation, message); err != nil {
			// The message send already succeeded; an unreachable receiver is
			// not an error for the sender.
			log.Printf("SendMessage: notification fallback failed for user %s: %v", receiverID, err)
		}
	}

	return message, nil
}

// MarkConversationRead flips the read flag on every message in the
// conversation not authored by the caller and resets the unread counter.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) (int, error) {
	conversation, err := uc.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, err
	}

	count, err := uc.chatRepo.MarkMessagesRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	conversation.UnreadCount = 0
	if err := uc.chatRepo.UpdateConversation(ctx, conversation); err != nil {
		return count, err
	}

	uc.wsManager.BroadcastToRoom(ws.ConversationRoom(conversationID), ws.EventMessagesUpdated, ws.MessagesUpdatedPayload{
		ConversationID: conversationID,
		MarkedAsRead:   count,
	})

	log.Printf("Marked %d messages as read in conversation %s", count, conversationID)
	return count, nil
}

// HandleTyping relays a typing indicator to the rest of the room. It is
// silently dropped when the caller is not a party, so probing with typing
// events cannot reveal whether a conversation exists.
func (uc *ChatUseCase) HandleTyping(ctx context.Context, userID, conversationID string, isTyping bool) {
	if conversationID == "" {
		return
	}

	if allowed, _ := uc.rateLimiter.Allow(userID, "typing"); !allowed {
		return
	}

	if _, err := uc.GetConversation(ctx, userID, conversationID); err != nil {
		return
	}

	uc.wsManager.BroadcastToRoomExcept(ws.ConversationRoom(conversationID), userID, ws.EventUserTyping, ws.UserTypingPayload{
		UserID:         userID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
	})
}
