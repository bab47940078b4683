package gwapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/liftmesh/liftmesh/internal/elevator"
)

// Keepalive constants, matching the teacher's ws/hub.go.
const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	sendBufSize  = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one connected websocket dashboard viewer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts periodic GroupView snapshots to every connected client.
type Hub struct {
	Group    *elevator.Group
	Interval time.Duration

	clients   map[*client]struct{}
	register  chan *client
	unregister chan *client
}

// NewHub builds a Hub broadcasting g's state every interval.
func NewHub(g *elevator.Group, interval time.Duration) *Hub {
	return &Hub{
		Group:      g,
		Interval:   interval,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// ServeWS upgrades r to a websocket and streams group snapshots to it.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("gwapi: websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBufSize)}
	h.register <- c
	go h.writePump(c)
	go h.readPump(c)
}

// Run drives the broadcast loop until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case <-ticker.C:
			payload, err := json.Marshal(GroupView{Building: h.Group.Building, Cars: h.Group.Observations()})
			if err != nil {
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-stop:
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
