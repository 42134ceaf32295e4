package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"marketnotify/internal/domain/entity"
	"marketnotify/internal/domain/repository"
	"marketnotify/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

// conversationPairID derives the document ID from the participant pair. Using
// a deterministic ID makes the (user, seller) uniqueness a store-level
// guarantee: a concurrent second Create fails with AlreadyExists instead of
// producing a duplicate record.
func conversationPairID(userID, sellerID string) string {
	return fmt.Sprintf("%s_%s", userID, sellerID)
}

func (r *firestoreChatRepository) FindOrCreateConversation(ctx context.Context, userID, sellerID string) (*entity.Conversation, error) {
	docRef := r.client.Collection("conversations").Doc(conversationPairID(userID, sellerID))

	doc, err := docRef.Get(ctx)
	if err == nil {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			return nil, errors.Internal("Failed to parse conversation data", err)
		}
		return &conversation, nil
	}
	if status.Code(err) != codes.NotFound {
		return nil, errors.Internal("Failed to get conversation", err)
	}

	now := time.Now()
	conversation := &entity.Conversation{
		ID:           docRef.ID,
		UserID:       userID,
		SellerID:     sellerID,
		Participants: []string{userID, sellerID},
		LastMessage:  "",
		LastUpdated:  now,
		UnreadCount:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := docRef.Create(ctx, conversation); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			// Lost the race to a concurrent first-contact; read the winner.
			doc, err := docRef.Get(ctx)
			if err != nil {
				return nil, errors.Internal("Failed to get conversation after create conflict", err)
			}
			var existing entity.Conversation
			if err := doc.DataTo(&existing); err != nil {
				return nil, errors.Internal("Failed to parse conversation data", err)
			}
			return &existing, nil
		}
		return nil, errors.Internal("Failed to create conversation", err)
	}

	log.Printf("Created conversation %s between user %s and seller %s", conversation.ID, userID, sellerID)
	return conversation, nil
}

func (r *firestoreChatRepository) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreChatRepository) ListConversationsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	query := r.client.Collection("conversations").
		Where("participants", "array-contains", userID).
		OrderBy("lastUpdated", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch conversations", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var conversations []*entity.Conversation
	for i := start; i < end; i++ {
		var conversation entity.Conversation
		if err := allDocs[i].DataTo(&conversation); err != nil {
			log.Printf("Error parsing conversation data for user %s: %v", userID, err)
			continue
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, total, nil
}

func (r *firestoreChatRepository) UpdateConversation(ctx context.Context, conversation *entity.Conversation) error {
	conversation.UpdatedAt = time.Now()

	_, err := r.client.Collection("conversations").Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Internal("Failed to update conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("conversations").Doc(message.ConversationID).
		Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

// GetMessagesByConversation returns messages newest-first; callers that
// present pages to clients reverse them into chronological order.
func (r *firestoreChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error) {
	query := r.client.Collection("conversations").Doc(conversationID).
		Collection("messages").Where("isRead", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query unread messages", err)
	}

	count := 0
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for conversation %s: %v", conversationID, err)
			continue
		}
		// Messages authored by the reader stay untouched.
		if message.SenderID == readerID {
			continue
		}

		if _, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "isRead", Value: true},
		}); err != nil {
			return count, errors.Internal("Failed to update message read status", err)
		}
		count++
	}

	return count, nil
}
