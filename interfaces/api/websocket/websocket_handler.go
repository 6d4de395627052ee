package websocket

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	wsmanager "taskhub/infrastructure/websocket"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

type WebSocketHandler struct {
	manager *wsmanager.Manager
}

func NewWebSocketHandler(manager *wsmanager.Manager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// WebSocketUpgrade rejects plain HTTP requests and unknown rooms before the
// handshake
func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if !wsmanager.ValidRoom(c.Query("resource")) {
		return utils.BadRequestResponse(c, "Invalid resource: must be users or tasks")
	}
	return c.Next()
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	conn := &lockedConn{conn: c}
	room := c.Query("resource", "")

	client := h.manager.RegisterClient(conn, room)
	logger.Debug("WebSocket connected", "client_id", client.ID, "room", room)

	defer h.manager.UnregisterClient(conn)

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("WebSocket read ended", "client_id", client.ID, "error", err)
			return
		}
		h.manager.HandleMessage(conn, message)
	}
}

// lockedConn serialises writes; the manager and the read loop both reply
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *lockedConn) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}
