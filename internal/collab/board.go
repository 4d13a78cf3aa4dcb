package collab

import (
	"encoding/json"
)

// Node is one idea-board node. Ids are client-supplied; the payload
// beyond the id is opaque to the server.
type Node struct {
	ID    string          `json:"id"`
	Label string          `json:"label,omitempty"`
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
	Color string          `json:"color,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Connection is an edge between two nodes.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Board is the authoritative idea-board state. It is owned by the hub
// goroutine; nothing else touches it.
type Board struct {
	nodes       map[string]Node
	order       []string // node ids in insertion order
	connections []Connection
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{nodes: make(map[string]Node)}
}

// AddNode inserts a node. A duplicate id replaces the existing node in
// place, keeping its position in the listing.
func (b *Board) AddNode(n Node) {
	if _, exists := b.nodes[n.ID]; !exists {
		b.order = append(b.order, n.ID)
	}
	b.nodes[n.ID] = n
}

// UpdateNode replaces a node's payload. Unknown ids are ignored.
func (b *Board) UpdateNode(n Node) bool {
	if _, exists := b.nodes[n.ID]; !exists {
		return false
	}
	b.nodes[n.ID] = n
	return true
}

// DeleteNode removes a node and every connection touching it.
func (b *Board) DeleteNode(id string) bool {
	if _, exists := b.nodes[id]; !exists {
		return false
	}
	delete(b.nodes, id)
	for i, nid := range b.order {
		if nid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	kept := b.connections[:0]
	for _, c := range b.connections {
		if c.From != id && c.To != id {
			kept = append(kept, c)
		}
	}
	b.connections = kept
	return true
}

// AddConnection records an edge.
func (b *Board) AddConnection(c Connection) {
	b.connections = append(b.connections, c)
}

// Clear wipes the board.
func (b *Board) Clear() {
	b.nodes = make(map[string]Node)
	b.order = nil
	b.connections = nil
}

// Nodes returns the nodes in insertion order.
func (b *Board) Nodes() []Node {
	out := make([]Node, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.nodes[id])
	}
	return out
}

// Connections returns the current edges.
func (b *Board) Connections() []Connection {
	out := make([]Connection, len(b.connections))
	copy(out, b.connections)
	return out
}
