// Package feed pushes order and stock events to signed-in admin dashboards
// over websockets.
package feed

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

// Event types
const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
	EventStockUpdated = "stock_updated"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected admin socket, keyed to the admin's email.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, email string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = email
	utils.InfoLogger.Printf("feed client connected: %s (%d total)", email, len(h.clients))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastOrderCreated(order models.Order) {
	h.Broadcast(Message{Event: EventOrderCreated, Data: order})
}

func (h *Hub) BroadcastOrderUpdated(order models.Order) {
	h.Broadcast(Message{Event: EventOrderUpdated, Data: order})
}

func (h *Hub) BroadcastStockUpdated(stock models.BeanStock) {
	h.Broadcast(Message{Event: EventStockUpdated, Data: stock})
}

// Broadcast sends msg to every client. Clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling feed message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, email := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("dropping feed client %s: %v", email, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
