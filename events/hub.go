package events

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types
const (
	EventBookingCreated    = "booking_created"
	EventBookingUnassigned = "booking_unassigned"
	EventBookingUpdated    = "booking_updated"
	EventBookingCancelled  = "booking_cancelled"
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventTableDelete       = "table_delete"
	EventOrderUpdate       = "order_update"
)

// AudienceAll fans an event out to every connected client regardless of role.
const AudienceAll = "all"

// UserAudience builds an audience tag targeting one connected user.
func UserAudience(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Notifier is the engine-facing fan-out contract. Audience is a role tag
// ("manager", "waiter", ...), "all", or "user:<id>". Delivery is
// best-effort; implementations must never return delivery failures to the
// caller.
type Notifier interface {
	Notify(audience string, event string, payload interface{})
}

type client struct {
	role   string
	userID uint
}

// Hub holds the connected staff sessions (waiter, manager, cleaner, ...)
// and pushes them event messages over websockets.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]client),
	}
}

// Register adds a connection tagged with its role and user id.
func (h *Hub) Register(conn *websocket.Conn, role string, userID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{role: role, userID: userID}
}

// Unregister drops and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Notify sends the event to every connection matching the audience.
// Write errors are logged and the connection skipped; the caller never
// sees them.
func (h *Hub) Notify(audience string, event string, payload interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		log.Printf("events: marshal %s: %v", event, err)
		return
	}

	var targetUser uint
	if rest, ok := strings.CutPrefix(audience, "user:"); ok {
		if id, err := strconv.ParseUint(rest, 10, 64); err == nil {
			targetUser = uint(id)
		}
	}

	for conn, cl := range h.clients {
		switch {
		case audience == AudienceAll:
		case targetUser != 0:
			if cl.userID != targetUser {
				continue
			}
		default:
			if cl.role != audience {
				continue
			}
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("events: send %s to %s: %v", event, cl.role, err)
			continue
		}
	}
}
