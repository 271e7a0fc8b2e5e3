package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// topicMessage is one push-channel frame (spec.md §4.4 "Broadcast": data /
// move-log / image topics on one logical connection).
type topicMessage struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Hub fans a message out to every connected observer concurrently and
// drops subscribers whose write fails (spec.md §7 "Observer write
// failure/disconnect. The subscriber is dropped silently").
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes concurrent writes to one connection
}

// NewHub creates an empty Hub. Origin checking is left permissive (the
// vision pipeline and observer UIs are same-origin in deployment; this
// spec's Non-goals exclude the browser front-ends themselves).
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// ServeWS upgrades r to a websocket connection and registers it as an
// observer at /receive-data (spec.md §4.4 "Push channel").
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		conn.Close()
	}()

	// The connection is push-only from the server's side; drain and
	// discard anything the client sends so pings/pongs still flow and
	// the read loop notices a close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast publishes data on topic to every connected observer
// concurrently (golang.org/x/sync/errgroup fanout) and returns how many
// subscribers the write was attempted against (spec.md §4.4 "each response
// carries the broadcast fan-out count").
func (h *Hub) Broadcast(topic string, data any) int {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return 0
	}

	msg := topicMessage{Topic: topic, Data: data}
	// Pre-encode once; every subscriber writes the same bytes.
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0
	}

	var g errgroup.Group
	for _, sub := range targets {
		sub := sub
		g.Go(func() error {
			if err := sub.writeRaw(payload); err != nil {
				h.drop(sub)
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(targets)
}

func (s *subscriber) writeRaw(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.conn.Close()
}

// Count returns the number of currently connected observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// shutdown closes every connection, used on process shutdown.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		sub.conn.Close()
	}
	h.subs = make(map[*subscriber]struct{})
}
