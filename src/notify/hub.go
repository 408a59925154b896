package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/model"
)

const (
	EventSignalClosed = "signal_closed"
	writeTimeout      = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is the envelope every subscriber receives.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

// Hub fans close events out to websocket subscribers. A subscriber whose
// write fails is dropped.
type Hub struct {
	clients map[*websocket.Conn]*client
	mu      sync.RWMutex
	log     *logger.Entry
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		log:     logger.WithField("component", "notify_hub"),
	}
}

// ServeHTTP upgrades the request and keeps the subscriber until it hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	h.mu.Unlock()
	h.log.WithField("remote", r.RemoteAddr).Debug("subscriber connected")

	// Subscribers never send anything; reading only detects the hang-up.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
	h.mu.Unlock()
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every subscriber.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.log.WithError(err).Debug("dropping subscriber")
			h.remove(c.conn)
		}
	}
}

// SignalClosed publishes a closed signal.
func (h *Hub) SignalClosed(s model.Signal) {
	h.Broadcast(Message{Type: EventSignalClosed, Payload: s})
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
