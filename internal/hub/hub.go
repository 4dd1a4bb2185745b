// Package hub fans seat updates out to every connected seat map over
// websockets. Each connection receives initial_data first and then every
// seat_update broadcast after it, in order.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// WriteWait bounds every write to a client.
const WriteWait = 10 * time.Second

// Snapshot returns the booked seats to send as initial_data.
type Snapshot func(ctx context.Context) (wire.BookedSet, error)

type client struct {
	id string
	ws *websocket.Conn
	mu sync.Mutex // serializes writes
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(data)
}

func (c *client) writeLocked(data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(WriteWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks the connected clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

// New returns an empty hub. Any origin may connect.
func New(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request, sends initial_data built from snap and then
// reads until the client goes away. Clients never send anything useful;
// the read loop only detects disconnects. Serve blocks for the life of
// the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snap Snapshot) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{id: uuid.NewString(), ws: ws}

	// Register before reading the snapshot so no broadcast in between is
	// lost, and hold the write lock so initial_data is the first message.
	c.mu.Lock()
	h.add(c)
	defer h.remove(c)
	booked, err := snap(r.Context())
	if err != nil {
		c.mu.Unlock()
		h.logger.Printf("hub: client %s: snapshot: %v", c.id, err)
		return err
	}
	data, err := json.Marshal(wire.NewInitialData(booked))
	if err == nil {
		err = c.writeLocked(data)
	}
	c.mu.Unlock()
	if err != nil {
		h.logger.Printf("hub: client %s: initial_data: %v", c.id, err)
		return err
	}

	ws.SetReadLimit(512)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("hub: client %s: read: %v", c.id, err)
			}
			return nil
		}
	}
}

// BroadcastSeats sends a seat_update for ids to every client.
func (h *Hub) BroadcastSeats(ids []catalog.SeatID) int {
	if len(ids) == 0 {
		return 0
	}
	return h.Broadcast(wire.NewSeatUpdate(ids))
}

// Broadcast writes msg to every client and drops the ones that fail. It
// returns the number of clients that received it.
func (h *Hub) Broadcast(msg wire.PushMessage) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("hub: marshal %s: %v", msg.Type, err)
		return 0
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				h.logger.Printf("hub: client %s: write: %v; dropping", c.id, err)
			}
			h.remove(c)
			continue
		}
		sent++
	}
	return sent
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()
	for _, c := range clients {
		_ = c.ws.Close()
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	_ = c.ws.Close()
}
