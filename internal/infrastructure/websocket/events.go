package websocket

import (
	"encoding/json"
	"time"
)

// Inbound event names
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventSendMessage       = "send-message"
	EventTyping            = "typing"
	EventMessageRead       = "message-read"
	EventJoinNotifications = "join-notifications"
	EventNotificationRead  = "notification-read"
)

// Outbound event names
const (
	EventConversationJoined  = "conversation-joined"
	EventConversationLeft    = "conversation-left"
	EventMessageSent         = "message-sent"
	EventNewMessage          = "new-message"
	EventUserTyping          = "user-typing"
	EventMessagesUpdated     = "messages-updated"
	EventNotificationsJoined = "notifications-joined"
	EventNewNotification     = "new-notification"
	EventNotificationUpdated = "notification-updated"
	EventError               = "error"
)

// Room name prefixes
const (
	conversationRoomPrefix     = "conversation_"
	userNotificationRoomPrefix = "user_notifications_"
)

// ConversationRoom derives the broadcast room for a conversation.
func ConversationRoom(conversationID string) string {
	return conversationRoomPrefix + conversationID
}

// UserNotificationRoom derives a user's private notification room.
func UserNotificationRoom(userID string) string {
	return userNotificationRoomPrefix + userID
}

// Envelope is the wire format for every event in both directions.
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// EncodeEvent wraps a payload into the outbound wire format.
func EncodeEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Inbound payloads

type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
	SellerID       string `json:"sellerId"`
	UserID         string `json:"userId"`
}

type LeaveConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	Image          string `json:"image,omitempty"`
}

type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}

type MessageReadPayload struct {
	ConversationID string `json:"conversationId"`
}

type NotificationReadPayload struct {
	NotificationID string `json:"notificationId"`
}

// Outbound payloads

type UserTypingPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}

type MessagesUpdatedPayload struct {
	ConversationID string `json:"conversationId"`
	MarkedAsRead   int    `json:"markedAsRead"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
