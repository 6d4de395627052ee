package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
)

// Conn is the part of *websocket.Conn the manager writes to
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	ID     uuid.UUID
	Conn   Conn
	RoomID string // empty receives every event
}

type Message struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
	RoomID string      `json:"roomId,omitempty"`
}

type BroadcastMessage struct {
	Message Message
	RoomID  string
}

// Manager tracks websocket clients and fans messages out to them. All
// membership changes and sends happen on the run goroutine.
type Manager struct {
	clients    map[Conn]*Client
	register   chan *Client
	unregister chan Conn
	broadcast  chan BroadcastMessage
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[Conn]*Client),
		register:   make(chan *Client),
		unregister: make(chan Conn),
		broadcast:  make(chan BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// closes every connection. Registrations arriving after that are closed
// on the spot.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.Conn] = client
			m.mutex.Unlock()
			logger.Debug("WebSocket client connected", "client_id", client.ID, "room", client.RoomID)

		case conn := <-m.unregister:
			m.remove(conn)

		case msg := <-m.broadcast:
			for _, conn := range m.deliver(msg) {
				m.remove(conn)
			}
		}
	}
}

// deliver sends msg to matching clients and returns the ones that failed
func (m *Manager) deliver(msg BroadcastMessage) []Conn {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var failed []Conn
	for conn, client := range m.clients {
		if client.RoomID != "" && client.RoomID != msg.RoomID {
			continue
		}
		if err := conn.WriteJSON(msg.Message); err != nil {
			logger.Warn("WebSocket send failed", "client_id", client.ID, "error", err)
			failed = append(failed, conn)
		}
	}
	return failed
}

func (m *Manager) remove(conn Conn) {
	m.mutex.Lock()
	client, ok := m.clients[conn]
	delete(m.clients, conn)
	m.mutex.Unlock()

	if ok {
		_ = conn.Close()
		logger.Debug("WebSocket client disconnected", "client_id", client.ID, "room", client.RoomID)
	}
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for conn := range m.clients {
		_ = conn.Close()
	}
	m.clients = make(map[Conn]*Client)
}

func (m *Manager) RegisterClient(conn Conn, roomID string) *Client {
	client := &Client{ID: uuid.New(), Conn: conn, RoomID: roomID}
	select {
	case m.register <- client:
	case <-m.done:
		_ = conn.Close()
	}
	return client
}

func (m *Manager) UnregisterClient(conn Conn) {
	select {
	case m.unregister <- conn:
	case <-m.done:
	}
}

// BroadcastToRoom queues a message for the room and for clients without a
// room. It drops the message when the queue is full.
func (m *Manager) BroadcastToRoom(roomID, messageType string, data interface{}) {
	msg := BroadcastMessage{
		Message: Message{Type: messageType, Data: data, RoomID: roomID},
		RoomID:  roomID,
	}
	select {
	case m.broadcast <- msg:
	default:
		logger.Warn("WebSocket broadcast queue full, dropping message", "type", messageType)
	}
}

// JoinRoom moves a client to another room; "" subscribes to everything
func (m *Manager) JoinRoom(conn Conn, roomID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	client, ok := m.clients[conn]
	if ok {
		client.RoomID = roomID
	}
	return ok
}

func (m *Manager) GetRoomClients(roomID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := 0
	for _, c := range m.clients {
		if c.RoomID == roomID {
			n++
		}
	}
	return n
}

func (m *Manager) GetTotalClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Publish makes the manager an event sink: each event is broadcast to the
// room named after its resource
func (m *Manager) Publish(ctx context.Context, event ports.Event) error {
	m.BroadcastToRoom(event.Resource, string(event.Type), event)
	return nil
}

// HandleMessage answers the small client protocol: ping, join_room and
// leave_room
func (m *Manager) HandleMessage(conn Conn, data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		logger.Debug("WebSocket message is not JSON", "error", err)
		return
	}

	switch message.Type {
	case "ping":
		_ = conn.WriteJSON(Message{Type: "pong", Data: "pong"})

	case "join_room":
		roomID := message.RoomID
		if roomData, ok := message.Data.(map[string]interface{}); ok {
			if id, ok := roomData["roomId"].(string); ok {
				roomID = id
			}
		}
		if !validRoom(roomID) {
			_ = conn.WriteJSON(Message{Type: "error", Data: "unknown room"})
			return
		}
		m.JoinRoom(conn, roomID)
		_ = conn.WriteJSON(Message{Type: "room_joined", Data: map[string]interface{}{"roomId": roomID}})

	case "leave_room":
		m.JoinRoom(conn, "")
		_ = conn.WriteJSON(Message{Type: "room_left", Data: "Left room successfully"})

	default:
		logger.Debug("Unknown WebSocket message type", "type", message.Type)
	}
}

func validRoom(roomID string) bool {
	return roomID == ports.ResourceUsers || roomID == ports.ResourceTasks
}

// ValidRoom reports whether roomID may be requested on connect
func ValidRoom(roomID string) bool {
	return roomID == "" || validRoom(roomID)
}
