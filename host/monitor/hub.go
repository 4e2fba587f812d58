package monitor

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	clientQueue = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hello is the first frame sent to a websocket client
type Hello struct {
	Axes []AxisState `json:"axes"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub relays telemetry messages to websocket clients. A client that falls
// more than clientQueue messages behind is disconnected.
type Hub struct {
	tracker *Tracker

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(tracker *Tracker) *Hub {
	return &Hub{tracker: tracker, clients: make(map[*client]struct{})}
}

// Publish queues msg for every connected client
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams messages until the client
// goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan Message, clientQueue)}

	// Incoming frames are ignored; a read error means the peer is gone
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello := Hello{Axes: []AxisState{}}
	if h.tracker != nil {
		hello.Axes = h.tracker.Axes()
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		log.Print(err)
		return
	}

	h.add(c)
	defer h.remove(c)

	for {
		select {
		case <-done:
			return
		case msg, ok := <-c.send:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Print(err)
				return
			}
		}
	}
}
