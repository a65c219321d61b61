package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
	"github.com/gorilla/websocket"
)

// RoomAll receives every media event. Other rooms are media ids.
const RoomAll = "all"

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans media events out to websocket subscribers. Each connection has a
// single writer goroutine; Publish never blocks and drops messages for
// clients whose buffer is full.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
	log   *logger.ZapLogger
}

var _ ports.MediaEventPublisher = (*Hub)(nil)

func NewHub(log *logger.ZapLogger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	size := len(h.rooms[roomID])
	h.mu.Unlock()

	go c.writeLoop()

	h.log.Log(logger.LogEntry{
		Level:   "debug",
		Message: "ws register",
		Fields:  map[string]any{"room": roomID, "conns": size},
	})
	return c
}

func (h *Hub) Unregister(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}

	if _, ok := conns[c]; ok {
		delete(conns, c)
		close(c.send)
	}

	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) SendToRoom(roomID string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		select {
		case c.send <- msg:
		default:
			h.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "ws send skipped: client buffer full",
				Fields:  map[string]any{"room": roomID},
			})
		}
	}
}

type eventMessage struct {
	Event   ports.MediaEventKind `json:"event"`
	MediaID string               `json:"mediaId"`
	Data    any                  `json:"data"`
}

// Publish sends ev to RoomAll and to the room of the affected media.
func (h *Hub) Publish(ev ports.MediaEvent) {
	var data any = models.EmptyData()
	if ev.Media != nil {
		data = ev.Media
	}

	payload, err := json.Marshal(eventMessage{
		Event:   ev.Kind,
		MediaID: ev.MediaID,
		Data:    data,
	})
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "ws marshal event failed",
			Error:   err,
		})
		return
	}

	h.SendToRoom(RoomAll, payload)
	if ev.MediaID != "" {
		h.SendToRoom(ev.MediaID, payload)
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, conns := range h.rooms {
		for c := range conns {
			close(c.send)
		}
		delete(h.rooms, roomID)
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
