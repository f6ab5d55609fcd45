package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Command is a message an editor sends over the websocket.
type Command struct {
	Type   string  `json:"type"`              // "select" | "update"
	NodeID *string `json:"node_id,omitempty"` // nil clears the selection
}

// CommandFunc handles editor commands received by a Hub.
type CommandFunc func(ctx context.Context, cmd Command) error

// Hub pushes every snapshot to connected editors and relays their commands.
// A client that connects late first receives the latest snapshot.
type Hub struct {
	upgrader  websocket.Upgrader
	onCommand CommandFunc
	logger    *slog.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	last    []byte
	closed  bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets a custom logger.
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// NewHub creates a websocket Hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  slog.Default(),
		clients: make(map[*wsClient]struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// SetCommandHandler sets the handler for editor commands. The bridge is
// installed after the hub exists, so the handler is set late.
func (h *Hub) SetCommandHandler(fn CommandFunc) {
	h.mu.Lock()
	h.onCommand = fn
	h.mu.Unlock()
}

// Clients returns the number of connected editors.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Send(_ context.Context, snap viewstate.Snapshot) error {
	data, err := json.Marshal(envelope{Type: "snapshot", Data: snap})
	if err != nil {
		return fmt.Errorf("websocket: marshal: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow editor: it will catch up with a later snapshot.
			h.logger.Debug("websocket: dropped snapshot for slow client", "seq", snap.Seq)
		}
	}
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	return nil
}

// ServeHTTP upgrades the request and serves one editor until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &wsClient{conn: conn, send: make(chan []byte, 16)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	h.logger.Info("websocket: editor connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go h.writeLoop(c, done)

	h.readLoop(r.Context(), c)

	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	<-done

	h.logger.Info("websocket: editor disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) writeLoop(c *wsClient, done chan<- struct{}) {
	defer close(done)
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket: write failed", "error", err)
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (h *Hub) readLoop(ctx context.Context, c *wsClient) {
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket: read failed", "error", err)
			}
			return
		}

		h.mu.Lock()
		fn := h.onCommand
		h.mu.Unlock()
		if fn == nil {
			continue
		}
		if err := fn(ctx, cmd); err != nil {
			h.logger.Warn("websocket: command failed", "type", cmd.Type, "error", err)
		}
	}
}
