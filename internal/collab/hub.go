package collab

import (
	"encoding/json"
	"log/slog"
)

// inbound is one message read off a connection, routed to the hub.
type inbound struct {
	client *Client
	data   []byte
}

// room is the membership set for one room id. The hub goroutine owns
// it exclusively.
type room struct {
	clients map[*Client]bool
	board   *Board // idea-board rooms only
}

// Hub routes every register, unregister and message through a single
// goroutine, so room state needs no locking and delivery within a room
// is FIFO.
type Hub struct {
	logger *slog.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	shutdown   chan struct{}
	stopped    chan struct{}

	rooms   map[string]*room
	joinSeq int
}

// NewHub creates a new hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 64),
		shutdown:   make(chan struct{}),
		stopped:    make(chan struct{}),
		rooms:      make(map[string]*room),
	}
}

// Run is the hub's event loop. Call it once, in its own goroutine.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			h.onRegister(c)
		case c := <-h.unregister:
			h.onUnregister(c)
		case msg := <-h.inbound:
			h.onMessage(msg.client, msg.data)
		case <-h.shutdown:
			h.drain()
			return
		}
	}
}

// Shutdown stops the hub after broadcasting a departure for every
// remaining connection. Blocks until the loop has exited.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.stopped
}

// Register hands a new connection to the hub goroutine.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a connection; safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *Hub) onRegister(c *Client) {
	r, ok := h.rooms[c.room]
	if !ok {
		r = &room{clients: make(map[*Client]bool)}
		if roomKind(c.room) == KindIdeaBoard {
			r.board = NewBoard()
		}
		h.rooms[c.room] = r
	}
	c.color = palette[h.joinSeq%len(palette)]
	h.joinSeq++
	r.clients[c] = true

	// The snapshot goes to the newcomer before any broadcast can be
	// queued behind it.
	if r.board != nil {
		participants := make([]string, 0, len(r.clients))
		for member := range r.clients {
			participants = append(participants, member.user)
		}
		c.enqueue(frame{data: mustMarshal(initFrame{
			Event:        "init",
			Nodes:        r.board.Nodes(),
			Connections:  r.board.Connections(),
			Participants: participants,
		})})
	}

	h.broadcast(r, mustMarshal(presenceFrame{
		Event:  "presence",
		User:   c.user,
		Action: "joined",
		Color:  c.color,
	}), false)
	h.logger.Debug("client joined", "room", c.room, "user", c.user)
}

func (h *Hub) onUnregister(c *Client) {
	r, ok := h.rooms[c.room]
	if !ok || !r.clients[c] {
		return
	}
	h.drop(r, c)
	h.broadcast(r, mustMarshal(presenceFrame{
		Event:  "presence",
		User:   c.user,
		Action: "left",
	}), false)
	if len(r.clients) == 0 {
		delete(h.rooms, c.room)
	}
	h.logger.Debug("client left", "room", c.room, "user", c.user)
}

// drop removes a client from its room and closes its send channel.
func (h *Hub) drop(r *room, c *Client) {
	delete(r.clients, c)
	close(c.send)
}

func (h *Hub) onMessage(c *Client, data []byte) {
	r, ok := h.rooms[c.room]
	if !ok || !r.clients[c] {
		return
	}
	switch roomKind(c.room) {
	case KindDocument:
		h.handleDocument(r, c, data)
	case KindIdeaBoard:
		h.handleBoard(r, c, data)
	case KindChat:
		var in chatInbound
		if json.Unmarshal(data, &in) != nil {
			return
		}
		h.broadcast(r, mustMarshal(chatFrame{Message: in.Message, Username: c.user}), false)
	case KindTyping:
		var in typingInbound
		if json.Unmarshal(data, &in) != nil {
			return
		}
		h.broadcast(r, mustMarshal(typingFrame{User: c.user, Typing: in.Typing}), false)
	case KindPresence:
		// presence is join/leave only; inbound frames are ignored
	default:
		// relay rooms forward the payload untouched
		if json.Valid(data) {
			h.broadcast(r, data, false)
		}
	}
}

func (h *Hub) handleDocument(r *room, c *Client, data []byte) {
	var in documentInbound
	if json.Unmarshal(data, &in) != nil {
		return
	}
	if in.Event == "" {
		in.Event = "edit"
	}
	switch in.Event {
	case "edit":
		h.broadcast(r, mustMarshal(documentFrame{Event: "edit", Content: in.Content, User: c.user}), false)
	case "save", "share":
		h.broadcast(r, mustMarshal(documentFrame{Event: in.Event, User: c.user}), false)
	case "cursor":
		h.broadcast(r, mustMarshal(documentFrame{Event: "cursor", Position: in.Position, User: c.user}), true)
	}
}

func (h *Hub) handleBoard(r *room, c *Client, data []byte) {
	var in boardInbound
	if json.Unmarshal(data, &in) != nil {
		return
	}
	out := boardFrame{Event: in.Action, User: c.user}
	switch in.Action {
	case "add_node":
		if in.Node == nil {
			return
		}
		r.board.AddNode(*in.Node)
		out.Node = in.Node
	case "update_node":
		if in.Node == nil || !r.board.UpdateNode(*in.Node) {
			return
		}
		out.Node = in.Node
	case "delete_node":
		if !r.board.DeleteNode(in.NodeID) {
			return
		}
		out.NodeID = in.NodeID
	case "add_connection":
		if in.Connection == nil {
			return
		}
		r.board.AddConnection(*in.Connection)
		out.Connection = in.Connection
	case "clear_board":
		r.board.Clear()
	default:
		return
	}
	h.broadcast(r, mustMarshal(out), false)
}

// broadcast queues a frame for every member of the room. When a
// member's queue is full, a coalescible message may displace an older
// coalescible frame so the latest still lands; if the queue holds only
// content frames the stale cursor is dropped instead. A full queue on
// a content frame drops the client as a slow consumer.
func (h *Hub) broadcast(r *room, data []byte, coalescible bool) {
	f := frame{data: data, coalescible: coalescible}
	var dropped []*Client
	for c := range r.clients {
		if c.enqueue(f) {
			continue
		}
		if coalescible {
			if evictCursor(c) {
				c.enqueue(f)
			}
			continue
		}
		dropped = append(dropped, c)
	}
	for _, c := range dropped {
		h.logger.Warn("dropping slow client", "room", c.room, "user", c.user)
		h.drop(r, c)
	}
	for _, c := range dropped {
		h.broadcast(r, mustMarshal(presenceFrame{Event: "presence", User: c.user, Action: "left"}), false)
	}
}

// evictCursor removes the oldest queued cursor frame and reports
// whether one was found. Content frames are put back in order; the hub
// goroutine is the only producer on a send queue, so the write pump
// consuming concurrently can only free capacity, never reorder.
func evictCursor(c *Client) bool {
	n := len(c.send)
	kept := make([]frame, 0, n)
	evicted := false
drain:
	for i := 0; i < n; i++ {
		select {
		case f := <-c.send:
			if !evicted && f.coalescible {
				evicted = true
				continue
			}
			kept = append(kept, f)
		default:
			break drain
		}
	}
	for _, f := range kept {
		c.send <- f
	}
	return evicted
}

// drain broadcasts a departure for every connection, then closes them
// all. Runs during shutdown only.
func (h *Hub) drain() {
	for id, r := range h.rooms {
		for c := range r.clients {
			left := frame{data: mustMarshal(presenceFrame{Event: "presence", User: c.user, Action: "left"})}
			for member := range r.clients {
				member.enqueue(left)
			}
		}
		for c := range r.clients {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}
