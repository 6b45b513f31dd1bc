package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	EventProductCreated     = "product_created"
	EventProductUpdated     = "product_updated"
	EventProductDeleted     = "product_deleted"
	EventSaleCreated        = "sale_created"
	EventSaleStatusUpdated  = "sale_status_updated"
	EventDailyClosing       = "daily_closing"
	EventClientCreated      = "client_created"
	EventClientUpdated      = "client_updated"
	EventClientDeleted      = "client_deleted"
	EventSupplierCreated    = "supplier_created"
	EventSupplierUpdated    = "supplier_updated"
	EventSupplierDeleted    = "supplier_deleted"
	EventCategoryCreated    = "category_created"
	EventCategoryUpdated    = "category_updated"
	EventCategoryDeleted    = "category_deleted"
	TypeStockUpdate         = "stock_update"
	TypeClientUpdate        = "client_update"
	TypeCatalogUpdate       = "catalog_update"
	TypeReport              = "report"
	defaultBroadcastBacklog = 64
)

// Event is the JSON frame pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	User    string      `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
	At      time.Time   `json:"at"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, defaultBroadcastBacklog),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Publish queues an event for broadcast. It never blocks: when the backlog is
// full the event is dropped and logged.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal ws event", zap.String("action", event.Action), zap.Error(err))
		return
	}

	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn("ws backlog full, dropping event", zap.String("action", event.Action))
	}
}

// ClientCount reports how many sockets are currently registered.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run owns the client set until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			total := len(h.Clients)
			h.mutex.Unlock()
			h.log.Info("ws client connected", zap.Int("clients", total))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug("ws write failed, dropping client", zap.Error(err))
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Serve registers conn and blocks reading until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn) {
	if !h.join(conn) {
		conn.Close()
		return
	}
	defer h.leave(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// join hands conn to Run. It reports false once the hub has stopped.
func (h *Hub) join(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// leave never blocks after the hub has stopped; Run already closed every
// registered connection on its way out.
func (h *Hub) leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}
