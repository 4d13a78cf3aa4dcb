package collab

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second

	// pingPeriod is the keep-alive interval; a connection silent for
	// pongWait (three missed pongs) is treated as gone.
	pingPeriod = 20 * time.Second
	pongWait   = 3 * pingPeriod

	// maxMessageSize bounds inbound frames; document edits carry the
	// full chapter snapshot.
	maxMessageSize = 1 << 20

	// sendBuffer is the per-connection outbound queue.
	sendBuffer = 64
)

// frame is one queued outbound payload. Coalescible frames (cursor
// updates) may be superseded by a newer one when a queue is full;
// content frames are never discarded while the client stays connected.
type frame struct {
	data        []byte
	coalescible bool
}

// Client is one websocket connection in one room. The hub goroutine
// owns room membership; the two pumps own the connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	send  chan frame
	room  string
	user  string
	color string
}

// NewClient wires a connection into the hub. The caller starts the
// pumps via Start.
func NewClient(hub *Hub, conn *websocket.Conn, roomID, user string, logger *slog.Logger) *Client {
	if user == "" {
		user = "Anonymous"
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		logger: logger,
		send:   make(chan frame, sendBuffer),
		room:   roomID,
		user:   user,
	}
}

// Start registers the client and runs both pumps.
func (c *Client) Start() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

// enqueue attempts a non-blocking delivery into the client's queue.
func (c *Client) enqueue(f frame) bool {
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

// readPump relays inbound frames to the hub until the connection
// errors, closes, or misses its keep-alives.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "room", c.room, "user", c.user, "error", err)
			}
			return
		}
		c.hub.inbound <- inbound{client: c, data: data}
	}
}

// writePump drains the send queue and pings on a timer. Exits when the
// hub closes the queue or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
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
