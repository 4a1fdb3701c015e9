package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kataras/golog"

	"github.com/matsen/ppigraph/internal/notify"
	"github.com/matsen/ppigraph/internal/session"
)

// Message types pushed to websocket clients.
const (
	MessageSnapshot     = "snapshot"
	MessageNotification = "notification"
)

const (
	writeWait = 5 * time.Second

	// sendBuffer is how many messages may queue for one client before it
	// is dropped as too slow.
	sendBuffer = 32
)

// Message is a server push.
type Message struct {
	Type         string               `json:"type"`
	Snapshot     *session.Snapshot    `json:"snapshot,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// client queues outgoing messages for its writer goroutine. gorilla/websocket
// allows one concurrent writer, so only writePump touches the connection.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// stop closes the send queue. Callers hold Hub.mu.
func (c *client) stop() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub fans messages out to connected websocket clients. Broadcast never
// waits on a socket.
type Hub struct {
	upgrader websocket.Upgrader
	log      *golog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub with no clients.
func NewHub(log *golog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. A client whose queue is full is
// dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("encoding %s message: %v", msg.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warnf("ws client %s too slow, dropping", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.stop()
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	c.stop()
	h.mu.Unlock()
}

// writePump drains the send queue onto the connection and closes the
// connection when the queue is closed or a write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debugf("ws write failed, dropping client: %v", err)
			h.remove(c)
			return
		}
	}
}

// ServeWS upgrades the request, queues first, then holds the connection
// open until the client goes away. Client messages are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, first Message) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("ws upgrade err: %v", err)
		return
	}

	data, err := json.Marshal(first)
	if err != nil {
		h.log.Errorf("encoding %s message: %v", first.Type, err)
		conn.Close()
		return
	}

	c := newClient(conn)
	c.send <- data
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debugf("ws client connected from %s", r.RemoteAddr)

	go h.writePump(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.log.Debugf("ws client disconnected from %s", r.RemoteAddr)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.stop()
	}
	h.clients = make(map[*client]struct{})
}
