package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"hotel/internal/domain"
	"hotel/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is enforced by the CORS layer and the bearer token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSEvent is a booking event pushed to staff dashboards.
type WSEvent struct {
	Type    domain.NotificationKind `json:"type"`
	Payload domain.BookingEvent     `json:"payload"`
}

type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps the open staff dashboard sockets. A user may hold several.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	log         *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
		log:         log,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// Connected returns the number of open sockets.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Broadcast queues event for every connection and returns how many accepted it.
func (h *Hub) Broadcast(event *WSEvent) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Error("ws event marshal failed")
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.connections {
		select {
		case c.send <- data:
			delivered++
		default:
			// slow client, drop
		}
	}
	return delivered
}

// ServeWS registers conn and blocks until the client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, userID int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
	}
	h.register(c)
	h.log.WithField("user_id", userID).Debug("dashboard socket connected")

	go h.writePump(c)
	h.readPump(c)
}

// HandleWS upgrades an authenticated staff request.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.ServeWS(conn, middleware.UserID(c))
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// dashboards only listen; anything they send is discarded
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HubChannel pushes booking events to connected staff.
type HubChannel struct {
	hub *Hub
}

func NewHubChannel(hub *Hub) *HubChannel {
	return &HubChannel{hub: hub}
}

func (h *HubChannel) Name() string { return "websocket" }

func (h *HubChannel) Send(_ context.Context, ev domain.BookingEvent) error {
	h.hub.Broadcast(&WSEvent{Type: ev.Kind, Payload: ev})
	return nil
}
