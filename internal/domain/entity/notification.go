package entity

import "time"

// Notification types
const (
	NotificationTypeOrder     = "order"
	NotificationTypePayment   = "payment"
	NotificationTypeProduct   = "product"
	NotificationTypeSystem    = "system"
	NotificationTypePromotion = "promotion"
	NotificationTypeChat      = "chat"
)

type Notification struct {
	ID        string                 `json:"id" firestore:"id"`
	UserID    string                 `json:"user_id" firestore:"userId"`
	Type      string                 `json:"type" firestore:"type"`
	Title     string                 `json:"title" firestore:"title"`
	Message   string                 `json:"message" firestore:"message"`
	Data      map[string]interface{} `json:"data,omitempty" firestore:"data,omitempty"`
	IsRead    bool                   `json:"is_read" firestore:"isRead"`
	ReadAt    *time.Time             `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	CreatedAt time.Time              `json:"created_at" firestore:"createdAt"`
}

func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeOrder, NotificationTypePayment, NotificationTypeProduct,
		NotificationTypeSystem, NotificationTypePromotion, NotificationTypeChat:
		return true
	}
	return false
}
