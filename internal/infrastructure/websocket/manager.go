package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"flatnest/internal/observability"
	"flatnest/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// Client is one authenticated WebSocket connection. A user may hold several
// at once (multiple tabs), so clients are tracked by identity of the struct,
// not by UID.
type Client struct {
	UID  string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(uid string, conn *websocket.Conn) *Client {
	return &Client{
		UID:  uid,
		Conn: conn,
		Send: make(chan []byte, 32),
	}
}

// Manager tracks all active WebSocket connections.
type Manager struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client] = true
				m.mutex.Unlock()
				observability.IncWSActive()
				logger.Debug("WebSocket client registered: %s", client.UID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client]; ok {
					delete(m.clients, client)
					close(client.Send)
					observability.DecWSActive()
				}
				m.mutex.Unlock()
				logger.Debug("WebSocket client unregistered: %s", client.UID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser pushes a message to every connection the user has open.
func (m *Manager) SendToUser(uid string, message []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for client := range m.clients {
		if client.UID == uid {
			select {
			case client.Send <- message:
			default:
			}
		}
	}
}

// ReadPump reads frames from the connection and hands each one to handle.
// It returns when the peer disconnects.
func (c *Client) ReadPump(m *Manager, handle func(message []byte)) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read error for %s: %v", c.UID, err)
			}
			break
		}

		handle(message)
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("WebSocket write error for %s: %v", c.UID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
