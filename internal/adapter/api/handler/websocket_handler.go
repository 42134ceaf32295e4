package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"marketnotify/internal/infrastructure/identity"
	ws "marketnotify/internal/infrastructure/websocket"
	"marketnotify/internal/usecase"
	apperrors "marketnotify/pkg/errors"
)

// WebSocketHandler owns the per-connection session: it authenticates the
// handshake, registers presence, dispatches inbound events, and relies on the
// read pump to tear the session down on disconnect.
type WebSocketHandler struct {
	wsManager           *ws.Manager
	identityClient      *identity.Client
	chatUseCase         *usecase.ChatUseCase
	notificationUseCase *usecase.NotificationUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the storefront origins once they are pinned down
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, identityClient *identity.Client, chatUseCase *usecase.ChatUseCase, notificationUseCase *usecase.NotificationUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:           wsManager,
		identityClient:      identityClient,
		chatUseCase:         chatUseCase,
		notificationUseCase: notificationUseCase,
	}
}

// HandleWebSocket authenticates the handshake and promotes the connection to
// a live session. Verification happens before the upgrade, so a bad or
// expired token never produces a session; the identity client's HTTP timeout
// bounds how long the handshake can hang on the user service.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := handshakeToken(c)
	ident, err := h.identityClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return apperrors.Unauthorized("Authentication required", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return apperrors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		ConnID: uuid.New().String(),
		UserID: ident.UserID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump(h.wsManager, h.handleEvent)

	return nil
}

// handshakeToken extracts the credential from the query string or the
// Authorization header.
func handshakeToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// handleEvent is the single dispatch point for every inbound event of an
// authenticated session.
func (h *WebSocketHandler) handleEvent(client *ws.Client, raw []byte) {
	var envelope ws.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("WebSocket: invalid frame from user %s: %v", client.UserID, err)
		h.sendError(client, "Invalid message format")
		return
	}

	ctx := context.Background()

	switch envelope.Event {
	case ws.EventJoinConversation:
		h.handleJoinConversation(ctx, client, envelope.Data)
	case ws.EventLeaveConversation:
		h.handleLeaveConversation(client, envelope.Data)
	case ws.EventSendMessage:
		h.handleSendMessage(ctx, client, envelope.Data)
	case ws.EventTyping:
		h.handleTyping(ctx, client, envelope.Data)
	case ws.EventMessageRead:
		h.handleMessageRead(ctx, client, envelope.Data)
	case ws.EventJoinNotifications:
		h.handleJoinNotifications(client)
	case ws.EventNotificationRead:
		h.handleNotificationRead(ctx, client, envelope.Data)
	default:
		log.Printf("WebSocket: unknown event %q from user %s", envelope.Event, client.UserID)
		h.sendError(client, "Unknown event")
	}
}

func (h *WebSocketHandler) handleJoinConversation(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.JoinConversationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(client, "Invalid join-conversation payload")
		return
	}

	conversation, err := h.chatUseCase.ResolveConversation(ctx, client.UserID, usecase.ResolveConversationInput{
		ConversationID: payload.ConversationID,
		SellerID:       payload.SellerID,
		CustomerID:     payload.UserID,
	})
	if err != nil {
		h.sendAppError(client, err)
		return
	}

	h.wsManager.JoinRoom(client, ws.ConversationRoom(conversation.ID))

	h.wsManager.SendEvent(client, ws.EventConversationJoined, map[string]interface{}{
		"conversationId": conversation.ID,
		"conversation":   conversation,
	})
}

func (h *WebSocketHandler) handleLeaveConversation(client *ws.Client, data json.RawMessage) {
	var payload ws.LeaveConversationPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		h.sendError(client, "Invalid leave-conversation payload")
		return
	}

	h.wsManager.LeaveRoom(client, ws.ConversationRoom(payload.ConversationID))

	h.wsManager.SendEvent(client, ws.EventConversationLeft, map[string]interface{}{
		"conversationId": payload.ConversationID,
	})
}

func (h *WebSocketHandler) handleSendMessage(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(client, "Invalid send-message payload")
		return
	}

	// The usecase emits message-sent to the sender and new-message to the
	// room, and runs the notification fallback for an absent counterparty.
	if _, err := h.chatUseCase.SendMessage(ctx, client.UserID, usecase.SendMessageInput{
		ConversationID: payload.ConversationID,
		Content:        payload.Content,
		Image:          payload.Image,
	}); err != nil {
		h.sendAppError(client, err)
	}
}

func (h *WebSocketHandler) handleTyping(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	// No error surface: unauthorized typing is dropped inside the usecase.
	h.chatUseCase.HandleTyping(ctx, client.UserID, payload.ConversationID, payload.IsTyping)
}

func (h *WebSocketHandler) handleMessageRead(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.MessageReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		h.sendError(client, "Invalid message-read payload")
		return
	}

	if _, err := h.chatUseCase.MarkConversationRead(ctx, client.UserID, payload.ConversationID); err != nil {
		h.sendAppError(client, err)
	}
}

func (h *WebSocketHandler) handleJoinNotifications(client *ws.Client) {
	h.wsManager.JoinRoom(client, ws.UserNotificationRoom(client.UserID))

	h.wsManager.SendEvent(client, ws.EventNotificationsJoined, map[string]interface{}{
		"userId":  client.UserID,
		"message": "Successfully joined notifications room",
	})
}

func (h *WebSocketHandler) handleNotificationRead(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.NotificationReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.NotificationID == "" {
		h.sendError(client, "notificationId is required")
		return
	}

	notification, err := h.notificationUseCase.MarkNotificationRead(ctx, client.UserID, payload.NotificationID)
	if err != nil {
		h.sendAppError(client, err)
		return
	}

	h.wsManager.SendEvent(client, ws.EventNotificationUpdated, map[string]interface{}{
		"notificationId": notification.ID,
		"isRead":         true,
	})
}

func (h *WebSocketHandler) sendError(client *ws.Client, message string) {
	h.wsManager.SendEvent(client, ws.EventError, ws.ErrorPayload{Message: message})
}

// sendAppError surfaces the application error message without leaking store
// internals; unexpected failures become a generic server error and never tear
// the session down.
func (h *WebSocketHandler) sendAppError(client *ws.Client, err error) {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		h.sendError(client, appErr.Message)
		return
	}

	log.Printf("WebSocket: unexpected error for user %s: %v", client.UserID, err)
	h.sendError(client, "Internal server error")
}
