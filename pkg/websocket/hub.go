package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/duel"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Message is the standard frame sent to duel spectators.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans duel state changes out to every connected client of that duel.
// The first client of a duel starts a watch; the last one leaving stops it.
type Hub struct {
	watcher *duel.Watcher

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	clients map[*Client]bool
	cancel  context.CancelFunc
}

func NewHub(watcher *duel.Watcher) *Hub {
	return &Hub{
		watcher: watcher,
		rooms:   make(map[string]*room),
	}
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	duelID string
	done   chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, duelID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		duelID: duelID,
		done:   make(chan struct{}),
	}
}

// HandleWebSocket upgrades the connection and subscribes it to the duel's
// updates. Unknown duel ids are rejected before the upgrade.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	duelID := mux.Vars(r)["duelID"]
	if duelID == "" {
		http.Error(w, "Missing duel id", http.StatusBadRequest)
		return
	}

	if err := h.ensureRoom(duelID); err != nil {
		http.Error(w, "Duel not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "duel", duelID, "err", err)
		return
	}

	client := newClient(h, conn, duelID)
	h.addClient(client)

	go client.writePump()
	go client.readPump()
}

// ensureRoom starts the duel watch on first use.
func (h *Hub) ensureRoom(duelID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[duelID]; ok {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := h.watcher.Watch(ctx, duelID, duel.Completed)
	if err != nil {
		cancel()
		return err
	}

	h.rooms[duelID] = &room{
		clients: make(map[*Client]bool),
		cancel:  cancel,
	}
	go h.relay(duelID, updates)
	return nil
}

// relay forwards watch updates to the room until the duel completes or the
// watch is canceled.
func (h *Hub) relay(duelID string, updates <-chan *models.Duel) {
	for d := range updates {
		msgType := "duel_update"
		if d.Status == models.DuelCompleted {
			msgType = "duel_completed"
		}
		h.broadcast(duelID, msgType, map[string]interface{}{
			"duel":   d,
			"winner": duel.Winner(d),
		})
	}
}

func (h *Hub) broadcast(duelID, messageType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		slog.Error("marshaling duel update failed", "duel", duelID, "err", err)
		return
	}

	h.mu.Lock()
	rm, ok := h.rooms[duelID]
	if !ok {
		h.mu.Unlock()
		return
	}
	var slow []*Client
	for c := range rm.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	// slow consumers are dropped rather than blocking the room
	for _, c := range slow {
		h.removeClient(c)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rm, ok := h.rooms[client.duelID]; ok {
		rm.clients[client] = true
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	rm, ok := h.rooms[client.duelID]
	if !ok || !rm.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(rm.clients, client)
	close(client.send)
	close(client.done)

	if len(rm.clients) == 0 {
		rm.cancel()
		delete(h.rooms, client.duelID)
	}
	h.mu.Unlock()
}

// readPump discards inbound frames; the socket is broadcast-only. Reading is
// still required to process pongs and detect the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket closed unexpectedly", "duel", c.duelID, "err", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
