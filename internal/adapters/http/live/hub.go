// Package live pushes scoreboards to websocket subscribers, one room per
// regatta.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
	"github.com/okian/regatta/pkg/metrics"
)

const (
	defaultWriteWait = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 512
	sendBuffer       = 16
)

// MessageScoreboard is the type of every scoreboard message.
const MessageScoreboard = "scoreboard"

// Message is the envelope written to subscribers.
type Message struct {
	Type      string           `json:"type"`
	RegattaID string           `json:"regatta_id"`
	Payload   types.Scoreboard `json:"payload"`
}

// CurrentFunc computes the scoreboard a new subscriber starts from. It should
// return an error for unknown regattas so the upgrade can be refused.
type CurrentFunc func(ctx context.Context, regattaID string) (types.Scoreboard, error)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans scoreboards out to websocket clients grouped by regatta.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}

	upgrader  websocket.Upgrader
	writeWait time.Duration
	logger    logger.Logger
}

// NewHub creates a hub with configuration options.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:     make(map[string]map[*client]struct{}),
		writeWait: defaultWriteWait,
		logger:    logger.Get().Named("live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// Publish sends sb to every subscriber of its regatta. Subscribers whose
// buffer is full are disconnected.
func (h *Hub) Publish(ctx context.Context, sb types.Scoreboard) error {
	data, err := encode(sb)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[sb.RegattaID] {
		select {
		case c.send <- data:
		default:
			metrics.RecordLiveDrop()
			h.logger.Warn(ctx, "dropping slow subscriber", logger.String("regatta", sb.RegattaID))
			h.removeLocked(c)
		}
	}
	metrics.RecordLivePublish()
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			h.removeLocked(c)
		}
	}
}

func encode(sb types.Scoreboard) ([]byte, error) {
	data, err := json.Marshal(Message{Type: MessageScoreboard, RegattaID: sb.RegattaID, Payload: sb})
	if err != nil {
		return nil, fmt.Errorf("encode scoreboard: %w", err)
	}
	return data, nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.room]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.room] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
	metrics.UpdateLiveClients(h.Clients())
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(c *client) {
	room, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.room)
	}
	c.close()
	n := 0
	for _, r := range h.rooms {
		n += len(r)
	}
	metrics.UpdateLiveClients(n)
}

// Handler returns the GET /regattas/{id}/live handler. The subscriber first
// receives the current scoreboard, then every published update.
func (h *Hub) Handler(current CurrentFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sb, err := current(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		first, err := encode(sb)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			h.logger.Warn(r.Context(), "websocket upgrade failed", logger.String("regatta", id), logger.Error(err))
			return
		}

		c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), room: id}
		c.send <- first
		h.register(c)
		h.logger.Debug(r.Context(), "subscriber connected", logger.String("regatta", id))

		go c.writePump()
		go c.readPump()
	}
}

// readPump only services control frames; client messages are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug(context.Background(), "subscriber read failed", logger.String("regatta", c.room), logger.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
