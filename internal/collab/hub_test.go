package collab

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go h.Run()
	t.Cleanup(func() {
		select {
		case <-h.stopped:
		default:
			h.Shutdown()
		}
	})
	return h
}

// join registers a hub-only client; no websocket behind it.
func join(h *Hub, roomID, user string, buffer int) *Client {
	c := &Client{
		hub:  h,
		send: make(chan frame, buffer),
		room: roomID,
		user: user,
	}
	h.Register(c)
	return c
}

func recv(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case f, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var decoded map[string]any
		if err := json.Unmarshal(f.data, &decoded); err != nil {
			t.Fatalf("bad frame %q: %v", f.data, err)
		}
		return decoded
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func recvEvent(t *testing.T, c *Client, event string) map[string]any {
	t.Helper()
	frame := recv(t, c)
	if frame["event"] != event {
		t.Fatalf("event = %v, want %q (frame %v)", frame["event"], event, frame)
	}
	return frame
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case f := <-c.send:
		t.Fatalf("unexpected frame %s", f.data)
	case <-time.After(50 * time.Millisecond):
	}
}

func send(h *Hub, c *Client, v any) {
	data, _ := json.Marshal(v)
	h.inbound <- inbound{client: c, data: data}
}

func TestHub_JoinBroadcastsPresenceWithColor(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("42")

	alice := join(h, room, "alice", 8)
	frame := recvEvent(t, alice, "presence")
	if frame["user"] != "alice" || frame["action"] != "joined" {
		t.Errorf("frame = %v", frame)
	}
	if frame["color"] == "" || frame["color"] == nil {
		t.Error("no color assigned")
	}

	bob := join(h, room, "bob", 8)
	bobJoin := recvEvent(t, alice, "presence")
	if bobJoin["user"] != "bob" || bobJoin["action"] != "joined" {
		t.Errorf("frame = %v", bobJoin)
	}
	if bobJoin["color"] == frame["color"] {
		t.Error("consecutive joins got the same color")
	}
	recvEvent(t, bob, "presence")
}

func TestHub_UnregisterBroadcastsLeft(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("42")

	alice := join(h, room, "alice", 8)
	bob := join(h, room, "bob", 8)
	recvEvent(t, alice, "presence") // own join
	recvEvent(t, alice, "presence") // bob's join
	recvEvent(t, bob, "presence")

	h.Unregister(bob)
	left := recvEvent(t, alice, "presence")
	if left["user"] != "bob" || left["action"] != "left" {
		t.Errorf("frame = %v", left)
	}
}

func TestHub_DocumentRoomEvents(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("7")

	alice := join(h, room, "alice", 8)
	bob := join(h, room, "bob", 8)
	recvEvent(t, alice, "presence")
	recvEvent(t, alice, "presence")
	recvEvent(t, bob, "presence")

	send(h, alice, map[string]any{"event": "edit", "content": "<p>draft</p>"})
	edit := recvEvent(t, bob, "edit")
	if edit["content"] != "<p>draft</p>" || edit["user"] != "alice" {
		t.Errorf("frame = %v", edit)
	}
	recvEvent(t, alice, "edit") // sender receives the rebroadcast too

	send(h, bob, map[string]any{"event": "save"})
	save := recvEvent(t, alice, "save")
	if save["user"] != "bob" {
		t.Errorf("frame = %v", save)
	}
	recvEvent(t, bob, "save")

	// Bare frames default to edit, matching the legacy clients.
	send(h, alice, map[string]any{"content": "x"})
	recvEvent(t, bob, "edit")
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	h := newTestHub(t)

	alice := join(h, DocumentRoom("1"), "alice", 8)
	bob := join(h, DocumentRoom("2"), "bob", 8)
	recvEvent(t, alice, "presence")
	recvEvent(t, bob, "presence")

	send(h, alice, map[string]any{"event": "edit", "content": "secret"})
	recvEvent(t, alice, "edit")
	assertNoFrame(t, bob)
}

func TestHub_ChatAttachesUsername(t *testing.T) {
	h := newTestHub(t)
	roomID, err := GlobalRoom(KindChat)
	if err != nil {
		t.Fatal(err)
	}

	alice := join(h, roomID, "alice", 8)
	bob := join(h, roomID, "bob", 8)
	recv(t, alice)
	recv(t, alice)
	recv(t, bob)

	send(h, alice, map[string]any{"message": "hello"})
	frame := recv(t, bob)
	if frame["message"] != "hello" || frame["username"] != "alice" {
		t.Errorf("frame = %v", frame)
	}
}

func TestHub_IdeaBoardInitBeforeIncremental(t *testing.T) {
	h := newTestHub(t)
	roomID, _ := GlobalRoom(KindIdeaBoard)

	alice := join(h, roomID, "alice", 8)
	recvEvent(t, alice, "init")
	recvEvent(t, alice, "presence")

	send(h, alice, map[string]any{
		"action": "add_node",
		"node":   map[string]any{"id": "n1", "label": "Theme", "x": 10.0, "y": 20.0},
	})
	recvEvent(t, alice, "add_node")

	bob := join(h, roomID, "bob", 8)
	first := recvEvent(t, bob, "init")
	nodes, ok := first["nodes"].([]any)
	if !ok || len(nodes) != 1 {
		t.Fatalf("init nodes = %v", first["nodes"])
	}
	participants, ok := first["participants"].([]any)
	if !ok || len(participants) != 2 {
		t.Errorf("participants = %v", first["participants"])
	}
	recvEvent(t, bob, "presence")
}

func TestHub_IdeaBoardMutationsReachSubscribers(t *testing.T) {
	h := newTestHub(t)
	roomID, _ := GlobalRoom(KindIdeaBoard)

	alice := join(h, roomID, "alice", 16)
	bob := join(h, roomID, "bob", 16)
	recvEvent(t, alice, "init")
	recvEvent(t, alice, "presence")
	recvEvent(t, alice, "presence")
	recvEvent(t, bob, "init")
	recvEvent(t, bob, "presence")

	send(h, alice, map[string]any{
		"action": "add_node",
		"node":   map[string]any{"id": "n1", "label": "Plot"},
	})
	added := recvEvent(t, bob, "add_node")
	if added["user"] != "alice" {
		t.Errorf("frame = %v", added)
	}
	recvEvent(t, alice, "add_node")

	send(h, bob, map[string]any{"action": "delete_node", "node_id": "n1"})
	deleted := recvEvent(t, alice, "delete_node")
	if deleted["node_id"] != "n1" {
		t.Errorf("frame = %v", deleted)
	}
	recvEvent(t, bob, "delete_node")

	// Deleting an unknown node produces no broadcast.
	send(h, bob, map[string]any{"action": "delete_node", "node_id": "ghost"})
	assertNoFrame(t, alice)
}

func TestHub_RelayRoomForwardsPayload(t *testing.T) {
	h := newTestHub(t)
	roomID, _ := GlobalRoom(KindPoll)

	alice := join(h, roomID, "alice", 8)
	bob := join(h, roomID, "bob", 8)
	recv(t, alice)
	recv(t, alice)
	recv(t, bob)

	send(h, alice, map[string]any{"vote": "optionA"})
	frame := recv(t, bob)
	if frame["vote"] != "optionA" {
		t.Errorf("frame = %v", frame)
	}
}

func TestHub_CursorCoalescing(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("9")

	alice := join(h, room, "alice", 8)
	recvEvent(t, alice, "presence")
	slow := join(h, room, "slow", 1)
	recvEvent(t, alice, "presence")
	recvEvent(t, slow, "presence") // its own join

	// slow's buffer of one fills with the first cursor; the second
	// must displace it rather than disconnect the client.
	send(h, alice, map[string]any{"event": "cursor", "position": map[string]any{"line": 1.0}})
	recvEvent(t, alice, "cursor")

	send(h, alice, map[string]any{"event": "cursor", "position": map[string]any{"line": 2.0}})
	recvEvent(t, alice, "cursor")

	cursor := recvEvent(t, slow, "cursor")
	var pos map[string]any
	data, _ := json.Marshal(cursor["position"])
	json.Unmarshal(data, &pos)
	if pos["line"] != 2.0 {
		t.Errorf("position = %v, want latest cursor", pos)
	}

	if _, stillThere := h.rooms[room].clients[slow]; !stillThere {
		t.Error("slow client was dropped for a coalescible frame")
	}
}

func TestHub_CursorNeverEvictsContent(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("10")

	alice := join(h, room, "alice", 16)
	recvEvent(t, alice, "presence")
	slow := join(h, room, "slow", 4)
	recvEvent(t, alice, "presence")
	recvEvent(t, slow, "presence") // its own join

	// Fill slow's queue with content frames only.
	send(h, alice, map[string]any{"event": "edit", "content": "<p>snapshot</p>"})
	recvEvent(t, alice, "edit")
	for i := 0; i < 3; i++ {
		send(h, alice, map[string]any{"event": "save"})
		recvEvent(t, alice, "save")
	}

	// The queue is full of content; a cursor burst must be dropped,
	// not displace anything and not disconnect the client.
	send(h, alice, map[string]any{"event": "cursor", "position": map[string]any{"line": 5.0}})
	recvEvent(t, alice, "cursor")

	if _, stillThere := h.rooms[room].clients[slow]; !stillThere {
		t.Fatal("slow client was dropped for a coalescible frame")
	}
	recvEvent(t, slow, "edit")
	for i := 0; i < 3; i++ {
		recvEvent(t, slow, "save")
	}
	assertNoFrame(t, slow)
}

func TestHub_SlowClientDroppedWithLeftBroadcast(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("9")

	alice := join(h, room, "alice", 16)
	recvEvent(t, alice, "presence")
	slow := join(h, room, "slow", 1)
	recvEvent(t, alice, "presence")

	// Fill slow's queue (it holds its own join frame), then force a
	// non-coalescible broadcast.
	send(h, alice, map[string]any{"event": "save"})
	recvEvent(t, alice, "save")

	left := recvEvent(t, alice, "presence")
	if left["user"] != "slow" || left["action"] != "left" {
		t.Errorf("frame = %v", left)
	}

	if _, stillThere := h.rooms[room].clients[slow]; stillThere {
		t.Error("slow client still in the room after the drop")
	}
	recvEvent(t, slow, "presence") // the join frame it never consumed
	if _, ok := <-slow.send; ok {
		t.Error("slow client's queue should be closed after the drop")
	}
}

func TestHub_ShutdownDrainsLeftEvents(t *testing.T) {
	h := newTestHub(t)
	room := DocumentRoom("11")

	alice := join(h, room, "alice", 16)
	bob := join(h, room, "bob", 16)
	recvEvent(t, alice, "presence")
	recvEvent(t, alice, "presence")
	recvEvent(t, bob, "presence")

	h.Shutdown()

	users := map[string]bool{}
	for i := 0; i < 2; i++ {
		frame := recvEvent(t, alice, "presence")
		if frame["action"] != "left" {
			t.Errorf("frame = %v", frame)
		}
		users[frame["user"].(string)] = true
	}
	if !users["alice"] || !users["bob"] {
		t.Errorf("left users = %v", users)
	}
	// The queue closes after the drain.
	for {
		if _, ok := <-alice.send; !ok {
			break
		}
	}
}

func TestGlobalRoom_RejectsUnknownKind(t *testing.T) {
	if _, err := GlobalRoom("document"); err == nil {
		t.Error("document accepted as a global room")
	}
	if _, err := GlobalRoom("lobby"); err == nil {
		t.Error("unknown kind accepted")
	}
}
