package collab

import "encoding/json"

// Wire frames. Inbound messages are decoded with the same envelope
// their room documents; outbound frames always carry the event name.

// presenceFrame announces a join or departure.
type presenceFrame struct {
	Event  string `json:"event"`
	User   string `json:"user"`
	Action string `json:"action"`
	Color  string `json:"color,omitempty"`
}

// initFrame is the idea-board snapshot a new subscriber receives
// before any incremental event.
type initFrame struct {
	Event        string       `json:"event"`
	Nodes        []Node       `json:"nodes"`
	Connections  []Connection `json:"connections"`
	Participants []string     `json:"participants"`
}

// documentInbound is the client envelope in document rooms.
type documentInbound struct {
	Event    string          `json:"event"`
	Content  string          `json:"content"`
	Position json.RawMessage `json:"position"`
}

// documentFrame is the rebroadcast form of a document-room event.
type documentFrame struct {
	Event    string          `json:"event"`
	Content  string          `json:"content,omitempty"`
	Position json.RawMessage `json:"position,omitempty"`
	User     string          `json:"user"`
}

// boardInbound is the client envelope in the idea-board room.
type boardInbound struct {
	Action     string      `json:"action"`
	Node       *Node       `json:"node,omitempty"`
	NodeID     string      `json:"node_id,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
}

// boardFrame is the rebroadcast form of an idea-board mutation.
type boardFrame struct {
	Event      string      `json:"event"`
	Node       *Node       `json:"node,omitempty"`
	NodeID     string      `json:"node_id,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
	User       string      `json:"user"`
}

// chatInbound and chatFrame carry the chat room vocabulary.
type chatInbound struct {
	Message string `json:"message"`
}

type chatFrame struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// typingInbound and typingFrame carry the typing indicator.
type typingInbound struct {
	Typing bool `json:"typing"`
}

type typingFrame struct {
	User   string `json:"user"`
	Typing bool   `json:"typing"`
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// all frame types marshal cleanly
		return []byte("{}")
	}
	return data
}
