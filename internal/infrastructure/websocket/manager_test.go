package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{
		ConnID: uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 16),
	}
}

func receiveEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("expected a buffered event, got none")
		return Envelope{}
	}
}

func TestRegisterClient(t *testing.T) {
	m := NewManager()
	client := newTestClient("user-1")

	assert.False(t, m.IsUserOnline("user-1"))
	m.RegisterClient(client)
	assert.True(t, m.IsUserOnline("user-1"))
}

func TestRegisterClientLatestConnectionWins(t *testing.T) {
	m := NewManager()
	first := newTestClient("user-1")
	m.RegisterClient(first)
	m.JoinRoom(first, ConversationRoom("c1"))

	second := newTestClient("user-1")
	m.RegisterClient(second)

	// The replaced connection lost its room memberships and its send
	// channel was closed, but the user stays online via the new one.
	assert.True(t, m.IsUserOnline("user-1"))
	assert.False(t, m.IsUserInRoom(ConversationRoom("c1"), "user-1"))

	_, open := <-first.Send
	assert.False(t, open)

	// The stale connection's own cleanup must not evict the new presence.
	m.UnregisterClient(first)
	assert.True(t, m.IsUserOnline("user-1"))

	m.JoinRoom(second, ConversationRoom("c1"))
	m.UnregisterClient(first)
	assert.True(t, m.IsUserInRoom(ConversationRoom("c1"), "user-1"))
}

func TestUnregisterClientCleansUpAtomically(t *testing.T) {
	m := NewManager()
	client := newTestClient("user-1")
	m.RegisterClient(client)
	m.JoinRoom(client, ConversationRoom("c1"))
	m.JoinRoom(client, ConversationRoom("c2"))
	m.JoinRoom(client, UserNotificationRoom("user-1"))

	m.UnregisterClient(client)

	assert.False(t, m.IsUserOnline("user-1"))
	assert.False(t, m.IsUserInRoom(ConversationRoom("c1"), "user-1"))
	assert.False(t, m.IsUserInRoom(ConversationRoom("c2"), "user-1"))
	assert.False(t, m.IsUserInRoom(UserNotificationRoom("user-1"), "user-1"))

	// Unregistering twice is harmless.
	m.UnregisterClient(client)
	assert.False(t, m.IsUserOnline("user-1"))
}

func TestLeaveRoomIsNoOpForNonMember(t *testing.T) {
	m := NewManager()
	client := newTestClient("user-1")
	m.RegisterClient(client)

	m.LeaveRoom(client, ConversationRoom("never-joined"))
	assert.True(t, m.IsUserOnline("user-1"))
}

func TestBroadcastToRoomHitsOnlyMembers(t *testing.T) {
	m := NewManager()
	member1 := newTestClient("user-1")
	member2 := newTestClient("user-2")
	outsider := newTestClient("user-3")
	for _, c := range []*Client{member1, member2, outsider} {
		m.RegisterClient(c)
	}
	room := ConversationRoom("c1")
	m.JoinRoom(member1, room)
	m.JoinRoom(member2, room)

	m.BroadcastToRoom(room, EventNewMessage, map[string]string{"id": "m1"})

	env1 := receiveEnvelope(t, member1)
	assert.Equal(t, EventNewMessage, env1.Event)
	env2 := receiveEnvelope(t, member2)
	assert.Equal(t, EventNewMessage, env2.Event)
	assert.Empty(t, outsider.Send)
}

func TestBroadcastToRoomExceptSkipsOriginator(t *testing.T) {
	m := NewManager()
	sender := newTestClient("user-1")
	other := newTestClient("user-2")
	m.RegisterClient(sender)
	m.RegisterClient(other)
	room := ConversationRoom("c1")
	m.JoinRoom(sender, room)
	m.JoinRoom(other, room)

	m.BroadcastToRoomExcept(room, "user-1", EventUserTyping, UserTypingPayload{
		ConversationID: "c1",
		UserID:         "user-1",
		IsTyping:       true,
	})

	assert.Empty(t, sender.Send)
	env := receiveEnvelope(t, other)
	assert.Equal(t, EventUserTyping, env.Event)
}

func TestEmitToUser(t *testing.T) {
	m := NewManager()
	client := newTestClient("user-1")
	m.RegisterClient(client)

	m.EmitToUser("user-1", EventNewNotification, map[string]string{"title": "New Message"})
	env := receiveEnvelope(t, client)
	assert.Equal(t, EventNewNotification, env.Event)
	assert.NotEmpty(t, env.Timestamp)

	// Emitting to an absent user must not panic or error.
	m.EmitToUser("user-absent", EventNewNotification, nil)
}

func TestConcurrentSessions(t *testing.T) {
	m := NewManager()
	const users = 20
	const reconnects = 10

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			room := ConversationRoom(fmt.Sprintf("c-%d", i%5))
			for j := 0; j < reconnects; j++ {
				c := newTestClient(userID)
				m.RegisterClient(c)
				m.JoinRoom(c, room)
				m.BroadcastToRoom(room, EventNewMessage, map[string]int{"seq": j})
				m.UnregisterClient(c)
			}
		}(i)
	}
	wg.Wait()

	// Every session ended with a disconnect, so both tables must be empty.
	for i := 0; i < users; i++ {
		userID := fmt.Sprintf("user-%d", i)
		assert.False(t, m.IsUserOnline(userID))
		for r := 0; r < 5; r++ {
			assert.False(t, m.IsUserInRoom(ConversationRoom(fmt.Sprintf("c-%d", r)), userID))
		}
	}
}
