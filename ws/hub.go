package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/heiphin7/bloom-boutique-catalog/models"
)

// Hub tracks websocket clients per user and pushes order events to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> user id
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Add(conn *websocket.Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = userID
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

type orderEvent struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

// OrderPaid notifies the order owner's connections that payment went through.
func (h *Hub) OrderPaid(order *models.Order) {
	data, err := json.Marshal(orderEvent{Type: "order_paid", Order: order})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, userID := range h.clients {
		if userID != order.UserID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws write failed, dropping client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
