package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"launchboard/internal/slots"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventClient wraps a WebSocket connection with its send queue. A client
// that cannot keep up is dropped rather than blocking the hub.
type eventClient struct {
	conn *websocket.Conn
	send chan slots.Event
}

// Hub fans plugin lifecycle events out to WebSocket subscribers. It
// implements slots.EventSink; emitting never blocks the caller.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*eventClient]struct{}
	closed  bool
}

// NewHub creates an event hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger.Named("events"),
		clients: make(map[*eventClient]struct{}),
	}
}

// PluginEvent implements slots.EventSink.
func (h *Hub) PluginEvent(event slots.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			// Slow consumer: drop the connection, not the event stream.
			h.logger.Warn("Dropping slow event subscriber")
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all subscribers and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) add(client *eventClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	return true
}

func (h *Hub) remove(client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// handleEvents upgrades the request to a WebSocket and streams lifecycle
// events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &eventClient{
		conn: conn,
		send: make(chan slots.Event, 32),
	}
	if !s.hub.add(client) {
		conn.Close()
		return
	}

	s.logger.Debug("Event subscriber connected",
		zap.String("remote_addr", r.RemoteAddr))

	go s.writeEvents(client)
	s.readUntilClosed(client)
}

// writeEvents drains the client's send queue onto the connection.
func (s *Server) writeEvents(client *eventClient) {
	defer client.conn.Close()

	for event := range client.send {
		if err := client.conn.WriteJSON(event); err != nil {
			s.hub.remove(client)
			return
		}
	}
}

// readUntilClosed consumes (and discards) client frames so close and ping
// handling work; the feed is one-directional.
func (s *Server) readUntilClosed(client *eventClient) {
	defer s.hub.remove(client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
