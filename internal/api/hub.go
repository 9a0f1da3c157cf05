package api

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/UnknownOlympus/icarus/internal/mapview"
	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 8
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// Hub pushes every published view to the connected map clients over WebSocket.
// New clients receive the latest view right after connecting.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	last    *mapview.View
}

type wsClient struct {
	conn *websocket.Conn
	send chan mapview.View
}

// NewHub creates a Hub accepting connections from allowedOrigins ("*" or empty allows any).
func NewHub(log *slog.Logger, allowedOrigins []string) *Hub {
	hub := &Hub{
		log:     log,
		clients: make(map[*wsClient]struct{}),
	}
	hub.upgrader = websocket.Upgrader{
		EnableCompression: false,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}

	return hub
}

// Publish queues view for every client. A client that falls behind loses its oldest queued view.
func (h *Hub) Publish(view mapview.View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = &view
	for client := range h.clients {
		enqueue(client.send, view)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// ServeWS upgrades the request and streams views until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Unable to upgrade websocket", "error", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan mapview.View, clientBuffer)}
	h.register(client)
	h.log.DebugContext(r.Context(), "Map client connected", "remote_addr", r.RemoteAddr)

	go h.writePump(client)
	h.readPump(client)

	h.unregister(client)
	h.log.DebugContext(r.Context(), "Map client disconnected", "remote_addr", r.RemoteAddr)
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	if h.last != nil {
		enqueue(client.send, *h.last)
	}
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// readPump drains inbound frames so control messages are processed.
func (h *Hub) readPump(client *wsClient) {
	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case view, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(view); err != nil {
				h.log.Debug("Failed to write view to client", "error", err)
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue must be called with the hub lock held, which makes it the only sender on ch.
func enqueue(ch chan mapview.View, view mapview.View) {
	select {
	case ch <- view:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}
	ch <- view
}
