// Package websocket streams accepted registrations to connected admin
// dashboards in real time.
// File: websocket/feed.go
package websocket

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"inohax-registration/logger"
	"inohax-registration/models"
	"inohax-registration/services"
)

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// WSConn is the subset of *websocket.Conn the feed uses, extracted so tests
// can substitute a fake connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents one subscribed admin dashboard.
type Connection struct {
	conn WSConn
	send chan []byte
}

// Upgrader upgrades HTTP requests to WebSocket connections. The feed endpoint
// sits behind the admin auth gate, so origins are not re-checked here.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans registration events out to every connected dashboard.
type Hub struct {
	mu          sync.Mutex
	connections map[*Connection]bool
	broadcast   chan []byte
}

// NewHub creates an empty feed hub. Run must be started before publishing.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan []byte, 64),
	}
}

// Run listens for events on the broadcast channel and distributes them to
// connections. Slow consumers are dropped rather than blocking the fan-out.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		for c := range h.connections {
			select {
			case c.send <- msg:
			default:
				logger.Warn.Printf("[Run] dropping feed message for slow connection %v", c.conn.RemoteAddr())
			}
		}
		h.mu.Unlock()
	}
}

// PublishRegistration queues a registration-received event for all listeners.
func (h *Hub) PublishRegistration(reg models.Registration) {
	event := map[string]interface{}{
		"action":       "registrationReceived",
		"registration": reg,
	}
	msg, err := json.Marshal(event)
	if err != nil {
		logger.Error.Printf("[PublishRegistration] error marshalling event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logger.Warn.Println("[PublishRegistration] feed backlog full, dropping event")
	}
}

// ConnectionCount reports the number of subscribed dashboards.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// ServeWS upgrades the request and starts the read and write pumps for one
// dashboard connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWS] WebSocket upgrade error: %v", err)
		return
	}

	c := &Connection{
		conn: wsConn,
		send: make(chan []byte, 64),
	}
	h.register(c)

	go h.readPump(c)
	go h.writePump(c)
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	count := len(h.connections)
	h.mu.Unlock()

	logger.Info.Printf("[register] admin feed connection from %v (%d active)", c.conn.RemoteAddr(), count)
	services.PublishFeedConnections(count)
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, c)
	count := len(h.connections)
	close(c.send)
	h.mu.Unlock()

	logger.Info.Printf("[unregister] admin feed connection closed (%d active)", count)
	services.PublishFeedConnections(count)
}

// readPump drains inbound frames. The feed is one-way; reads exist only to
// process control frames and detect the peer going away.
func (h *Hub) readPump(c *Connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logger.Debug.Printf("[readPump] feed read error from %v: %v", c.conn.RemoteAddr(), err)
			return
		}
	}
}

// writePump forwards queued events to the client and keeps the connection
// alive with periodic pings.
func (h *Hub) writePump(c *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn.Printf("[writePump] feed write error to %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
