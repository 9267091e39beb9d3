// Package liveexport implements the optional --live findings feed: a
// WebSocket endpoint the orchestrator publishes each scan --watch
// re-scan's findings onto. It is the Exporter's live-streaming sibling
// to its static FACTS export; nothing in this package touches a
// network socket unless the engine is started with --live.
//
// The hub owns the feed's ordering guarantees: sequence numbers are
// assigned when a Delta is published, so clients can detect a missed
// re-scan, and the latest marshaled delta is replayed to every client
// that connects between re-scans, so a dashboard never starts blank.
package liveexport

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Hub fans published Deltas out to every connected WebSocket client.
// A single hub goroutine owns registration, sequence assignment, and
// broadcasting, so clients and publishers never need a lock.
type Hub struct {
	clients map[*client]bool

	publishCh    chan Delta
	registerCh   chan *client
	unregisterCh chan *client

	sequence int    // last assigned Delta.SequenceNumber
	last     []byte // latest marshaled delta, replayed to new clients
}

// client is one WebSocket subscriber with a bounded send queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHub creates an empty Hub. Run must be started in its own
// goroutine before any client can register.
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[*client]bool),
		publishCh:    make(chan Delta, 16),
		registerCh:   make(chan *client),
		unregisterCh: make(chan *client),
	}
}

// Publish hands a re-scan's findings to the hub. The delta's
// SequenceNumber is assigned by the hub goroutine, not the caller, so
// numbering stays contiguous regardless of publisher interleaving.
// Non-blocking: if the queue is full the delta is dropped, since the
// feed is best-effort and a later re-scan resends the full picture.
func (h *Hub) Publish(d Delta) {
	select {
	case h.publishCh <- d:
	default:
		slog.Warn("liveexport publish queue full, dropping delta")
	}
}

// Run is the hub's event loop. Runs until done is closed.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case c := <-h.registerCh:
			h.clients[c] = true
			// Catch-up: a client connecting between re-scans starts
			// from the latest findings instead of an empty feed.
			if h.last != nil {
				select {
				case c.send <- h.last:
				default:
				}
			}
			slog.Debug("liveexport client connected", "total", len(h.clients))

		case c := <-h.unregisterCh:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				slog.Debug("liveexport client disconnected", "total", len(h.clients))
			}

		case d := <-h.publishCh:
			payload, ok := h.stampAndStore(d)
			if !ok {
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// slow client: drop rather than block the feed.
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-done:
			return
		}
	}
}

// stampAndStore assigns the next sequence number, marshals the delta,
// and records it as the catch-up snapshot for future clients. Called
// only from the hub goroutine.
func (h *Hub) stampAndStore(d Delta) ([]byte, bool) {
	h.sequence++
	d.SequenceNumber = h.sequence
	payload, err := Marshal(d)
	if err != nil {
		slog.Error("liveexport delta marshal failed", "sequence", h.sequence, "error", err)
		return nil, false
	}
	h.last = payload
	return payload, true
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// client with the hub for receiving published deltas.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("liveexport websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.registerCh <- c

	go c.writeLoop()
	go c.readLoop(h)
}

// writeLoop is the client's single writer goroutine; it drains the
// send queue until the hub closes it.
func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readLoop discards inbound frames (the feed is one-way) and
// unregisters the client when the connection drops.
func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregisterCh <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
