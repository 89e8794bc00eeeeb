package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Event is the JSON envelope pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	TypeSale     = "sale"
	TypeStock    = "stock_update"
	TypeLowStock = "low_stock"
)

// Client is the part of a websocket connection the hub needs.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	broadcast  chan []byte
	quit       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		broadcast:  make(chan []byte, 256),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Publish queues an event without blocking. A full queue drops it.
func (h *Hub) Publish(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("ws: marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("ws: broadcast queue full, event dropped",
			zap.String("type", event.Type), zap.String("action", event.Action))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug("ws: client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.quit:
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}
