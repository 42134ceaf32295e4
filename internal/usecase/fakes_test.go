package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketnotify/internal/domain/entity"
	"marketnotify/pkg/errors"
)

// fakeChatRepository mirrors the durable store's contract in memory: one
// conversation per pair, messages returned newest-first.
type fakeChatRepository struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (r *fakeChatRepository) FindOrCreateConversation(ctx context.Context, userID, sellerID string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := userID + "_" + sellerID
	if existing, ok := r.conversations[id]; ok {
		return existing, nil
	}

	now := time.Now()
	conversation := &entity.Conversation{
		ID:           id,
		UserID:       userID,
		SellerID:     sellerID,
		Participants: []string{userID, sellerID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.conversations[id] = conversation
	return conversation, nil
}

func (r *fakeChatRepository) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conversation, nil
}

func (r *fakeChatRepository) ListConversationsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*entity.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastUpdated.After(all[j].LastUpdated) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeChatRepository) UpdateConversation(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conversation.ID]; !ok {
		return errors.NotFound("Conversation", nil)
	}
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], message)
	return nil
}

func (r *fakeChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.messages[conversationID]
	total := int64(len(stored))

	// Newest first, like the store.
	newest := make([]*entity.Message, len(stored))
	for i, m := range stored {
		newest[len(stored)-1-i] = m
	}

	if offset >= len(newest) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(newest) {
		end = len(newest)
	}
	return newest[offset:end], total, nil
}

func (r *fakeChatRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, m := range r.messages[conversationID] {
		if m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			count++
		}
	}
	return count, nil
}

type fakeNotificationRepository struct {
	mu            sync.Mutex
	notifications map[string]*entity.Notification
	order         []string
}

func newFakeNotificationRepository() *fakeNotificationRepository {
	return &fakeNotificationRepository{notifications: make(map[string]*entity.Notification)}
}

func (r *fakeNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification.ID = uuid.New().String()
	notification.CreatedAt = time.Now()
	r.notifications[notification.ID] = notification
	r.order = append(r.order, notification.ID)
	return nil
}

func (r *fakeNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	return notification, nil
}

func (r *fakeNotificationRepository) ListByUser(ctx context.Context, userID string, isRead *bool, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*entity.Notification
	for i := len(r.order) - 1; i >= 0; i-- {
		n := r.notifications[r.order[i]]
		if n.UserID != userID {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		all = append(all, n)
	}

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeNotificationRepository) Update(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[notification.ID]; !ok {
		return errors.NotFound("Notification", nil)
	}
	r.notifications[notification.ID] = notification
	return nil
}

func (r *fakeNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// recordingFallback captures fallback invocations from the chat path.
type recordingFallback struct {
	mu    sync.Mutex
	calls []fallbackCall
	err   error
}

type fallbackCall struct {
	recipientID string
	message     *entity.Message
}

func (f *recordingFallback) OnUnreachable(ctx context.Context, recipientID string, conversation *entity.Conversation, message *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fallbackCall{recipientID: recipientID, message: message})
	return f.err
}

func (f *recordingFallback) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
