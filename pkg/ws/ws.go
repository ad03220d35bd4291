// Package ws pushes store-change notifications to connected clients over
// WebSocket using gorilla/websocket.
//
// The mobile app opens one socket per session; whenever a store mutation
// lands (order recorded, wishlist changed, address saved) the hub sends a
// JSON event to the owner's sockets so other devices can refresh.
//
//	// In the route file:
//	router.Handle("/ws", wsController.Upgrade())
//
//	// Notify from a store listener:
//	hub.NotifyOwner("a@x.com", event.Change{Collection: "orders", ...})
package ws

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Aleksandergreg/storefront/pkg/event"
	"github.com/Aleksandergreg/storefront/pkg/logger"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client represents a single connected WebSocket client, bound to the owner
// whose store changes it receives.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	owner string
	send  chan []byte
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			break
		}
		// Clients only listen; inbound frames are ignored beyond keepalive.
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
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

// ─── Hub ──────────────────────────────────────────────────────────────────────

type notice struct {
	owner string // empty = all clients
	data  []byte
}

// Hub maintains all active WebSocket connections and routes store-change
// notifications to the right owner's sockets.
type Hub struct {
	clients    map[*Client]bool
	count      atomic.Int64 // mirrors len(clients) for readers outside Run
	notices    chan notice
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new Hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		notices:    make(chan notice, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub event loop. Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			metrics.WSClients.Inc()
			logger.Info("ws: client connected", "owner", client.owner, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.count.Store(int64(len(h.clients)))
				close(client.send)
				metrics.WSClients.Dec()
				logger.Info("ws: client disconnected", "total", len(h.clients))
			}

		case n := <-h.notices:
			for client := range h.clients {
				if n.owner != "" && client.owner != n.owner {
					continue
				}
				select {
				case client.send <- n.data:
				default:
					close(client.send)
					delete(h.clients, client)
					h.count.Store(int64(len(h.clients)))
					metrics.WSClients.Dec()
				}
			}
		}
	}
}

// NotifyOwner sends the JSON-encoded payload to every socket held by owner.
func (h *Hub) NotifyOwner(owner string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("ws: marshal notice", "error", err)
		return
	}
	select {
	case h.notices <- notice{owner: owner, data: data}:
	default:
		// Hub backlog full — drop the notice rather than block a store write.
	}
}

// Broadcast sends the JSON-encoded payload to every connected client.
func (h *Hub) Broadcast(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("ws: marshal broadcast", "error", err)
		return
	}
	select {
	case h.notices <- notice{data: data}:
	default:
	}
}

// ClientCount returns the number of currently connected clients. Safe to
// call from any goroutine.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// ForwardChanges subscribes the hub to every store-change event, so each
// mutation reaches the owner's sockets as {event, collection, version}.
func ForwardChanges(hub *Hub) {
	forward := func(name string) event.Handler {
		return func(payload interface{}) {
			change, ok := payload.(event.Change)
			if !ok {
				return
			}
			hub.NotifyOwner(change.Owner, map[string]interface{}{
				"event":      name,
				"collection": change.Collection,
				"version":    change.Version,
			})
		}
	}

	event.Listen(event.OrderCompleted, forward(event.OrderCompleted))
	event.Listen(event.WishlistUpdated, forward(event.WishlistUpdated))
	event.Listen(event.AddressUpdated, forward(event.AddressUpdated))
	event.Listen(event.CartUpdated, forward(event.CartUpdated))
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades an HTTP connection to a WebSocket and registers the
// resulting client under the given owner.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, owner string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	client := &Client{hub: hub, conn: conn, owner: owner, send: make(chan []byte, 256)}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}
