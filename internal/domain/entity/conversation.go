package entity

import "time"

// Conversation is a direct chat between a customer and a seller. At most one
// conversation exists per (user, seller) pair; LastMessage and UnreadCount are
// denormalized from the message subcollection for fast listing.
type Conversation struct {
	ID       string `json:"id" firestore:"id"`
	UserID   string `json:"user_id" firestore:"userId"`
	SellerID string `json:"seller_id" firestore:"sellerId"`
	// Participants duplicates the pair for array-contains listing queries.
	Participants []string  `json:"-" firestore:"participants"`
	LastMessage string    `json:"last_message" firestore:"lastMessage"`
	LastUpdated time.Time `json:"last_updated" firestore:"lastUpdated"`
	UnreadCount int       `json:"unread_count" firestore:"unreadCount"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserID == userID || c.SellerID == userID
}

// CounterpartyOf returns the other party of the conversation.
func (c *Conversation) CounterpartyOf(userID string) string {
	if c.UserID == userID {
		return c.SellerID
	}
	return c.UserID
}
