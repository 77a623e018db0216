package chathub

import (
	"sync"

	"lovechat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	ConnectionID string
	Username     string
	Peer         string
	Language     string
	Conn         *websocket.Conn
	Hub          *Hub

	mu     sync.Mutex
	send   chan models.Event
	closed bool
}

// NewWebSocketClient wraps conn for username. peer may be empty for a
// presence-only connection.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn, username, peer, lang string, buffer int) *WebSocketClient {
	return &WebSocketClient{
		ConnectionID: uuid.NewString(),
		Username:     username,
		Peer:         peer,
		Language:     lang,
		Conn:         conn,
		Hub:          hub,
		send:         make(chan models.Event, buffer),
	}
}

func (c *WebSocketClient) GetConnectionID() string { return c.ConnectionID }
func (c *WebSocketClient) GetUsername() string     { return c.Username }
func (c *WebSocketClient) GetPeer() string         { return c.Peer }
func (c *WebSocketClient) GetLanguage() string     { return c.Language }

// Deliver never blocks: a full buffer counts as a slow client.
func (c *WebSocketClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Run starts the pumps for the WebSocket.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the send channel, which stops writePump after it drains.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
