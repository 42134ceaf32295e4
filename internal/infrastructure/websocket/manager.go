package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket connection for an authenticated user.
type Client struct {
	ConnID string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager owns the presence table (userID -> latest client) and the room
// membership table. It is pure bookkeeping: it never decides whether a
// recipient should get a durable notification, only who is reachable now.
//
// All mutation happens under one mutex so that concurrent connects,
// disconnects and joins always leave the two tables consistent with some
// serialization of the calls. No method does I/O while holding the lock;
// actual socket writes go through each client's buffered Send channel.
type Manager struct {
	clients map[string]*Client            // userID -> latest connection
	rooms   map[string]map[string]*Client // room -> userID -> client
	mutex   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// RegisterClient records the connection as the user's live presence. The
// latest connection wins: a reconnect overwrites the prior mapping, and the
// replaced connection is closed out of its rooms so stale sockets never
// receive room traffic.
func (m *Manager) RegisterClient(client *Client) {
	m.mutex.Lock()
	if prev, ok := m.clients[client.UserID]; ok && prev.ConnID != client.ConnID {
		m.removeFromAllRoomsLocked(prev)
		close(prev.Send)
	}
	m.clients[client.UserID] = client
	m.mutex.Unlock()

	log.Printf("WebSocket: client registered: user=%s conn=%s", client.UserID, client.ConnID)
}

// UnregisterClient releases every room membership and the presence entry in
// one lock acquisition, so no caller can observe a half-cleaned session. A
// connection that has already been replaced by a newer one only cleans up
// itself and leaves the newer presence entry untouched.
func (m *Manager) UnregisterClient(client *Client) {
	m.mutex.Lock()
	current, ok := m.clients[client.UserID]
	if ok && current.ConnID == client.ConnID {
		delete(m.clients, client.UserID)
		m.removeFromAllRoomsLocked(client)
		close(client.Send)
	}
	m.mutex.Unlock()

	log.Printf("WebSocket: client unregistered: user=%s conn=%s", client.UserID, client.ConnID)
}

func (m *Manager) removeFromAllRoomsLocked(client *Client) {
	for room, members := range m.rooms {
		if member, ok := members[client.UserID]; ok && member.ConnID == client.ConnID {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.rooms, room)
			}
		}
	}
}

// IsUserOnline reports whether the user has a live connection.
func (m *Manager) IsUserOnline(userID string) bool {
	m.mutex.RLock()
	_, ok := m.clients[userID]
	m.mutex.RUnlock()
	return ok
}

// JoinRoom adds the client to a room. Rooms are plain routing labels; joining
// a name that nobody else knows about is fine.
func (m *Manager) JoinRoom(client *Client, room string) {
	m.mutex.Lock()
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		m.rooms[room] = members
	}
	members[client.UserID] = client
	m.mutex.Unlock()

	log.Printf("WebSocket: user %s joined room %s", client.UserID, room)
}

// LeaveRoom removes the client from a room. Leaving a room the client never
// joined is a no-op.
func (m *Manager) LeaveRoom(client *Client, room string) {
	m.mutex.Lock()
	if members, ok := m.rooms[room]; ok {
		if member, exists := members[client.UserID]; exists && member.ConnID == client.ConnID {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.rooms, room)
			}
		}
	}
	m.mutex.Unlock()

	log.Printf("WebSocket: user %s left room %s", client.UserID, room)
}

// IsUserInRoom reports current room membership. The delivery decision for
// chat messages keys off this snapshot.
func (m *Manager) IsUserInRoom(room, userID string) bool {
	m.mutex.RLock()
	members, ok := m.rooms[room]
	if ok {
		_, ok = members[userID]
	}
	m.mutex.RUnlock()
	return ok
}

// BroadcastToRoom delivers an event to every connection currently joined to
// the room, and only those. A room with no members simply drops the event.
func (m *Manager) BroadcastToRoom(room, event string, payload interface{}) {
	m.broadcast(room, "", event, payload)
}

// BroadcastToRoomExcept is BroadcastToRoom minus one user, used for events
// the originator should not echo back (typing indicators).
func (m *Manager) BroadcastToRoomExcept(room, exceptUserID, event string, payload interface{}) {
	m.broadcast(room, exceptUserID, event, payload)
}

func (m *Manager) broadcast(room, exceptUserID, event string, payload interface{}) {
	data, err := EncodeEvent(event, payload)
	if err != nil {
		log.Printf("WebSocket: failed to encode %s for room %s: %v", event, room, err)
		return
	}

	m.mutex.RLock()
	members := m.rooms[room]
	targets := make([]*Client, 0, len(members))
	for userID, client := range members {
		if userID == exceptUserID {
			continue
		}
		targets = append(targets, client)
	}
	m.mutex.RUnlock()

	for _, client := range targets {
		m.deliver(client, data)
	}
}

// EmitToUser sends an event directly to a user's live connection. Absence is
// a normal state, not a failure: the event is dropped with a log line and the
// caller is expected to rely on durable persistence for eventual visibility.
func (m *Manager) EmitToUser(userID, event string, payload interface{}) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		log.Printf("WebSocket: user %s is not connected, dropping %s", userID, event)
		return
	}

	data, err := EncodeEvent(event, payload)
	if err != nil {
		log.Printf("WebSocket: failed to encode %s for user %s: %v", event, userID, err)
		return
	}

	m.deliver(client, data)
}

// SendEvent sends an event to one specific connection (confirmations, errors).
func (m *Manager) SendEvent(client *Client, event string, payload interface{}) {
	data, err := EncodeEvent(event, payload)
	if err != nil {
		log.Printf("WebSocket: failed to encode %s for user %s: %v", event, client.UserID, err)
		return
	}
	m.deliver(client, data)
}

// deliver is best-effort and never blocks: a recipient whose send buffer is
// full is disconnected rather than allowed to stall the sender's path.
func (m *Manager) deliver(client *Client, data []byte) {
	defer func() {
		// The Send channel may be closed concurrently by Unregister/Register.
		if r := recover(); r != nil {
			log.Printf("WebSocket: dropped event for user %s: connection closing", client.UserID)
		}
	}()

	select {
	case client.Send <- data:
	default:
		log.Printf("WebSocket: user %s send buffer full, closing connection", client.UserID)
		go m.UnregisterClient(client)
	}
}
