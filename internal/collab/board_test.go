package collab

import "testing"

func TestBoard_AddNodeDuplicateReplaces(t *testing.T) {
	b := NewBoard()
	b.AddNode(Node{ID: "n1", Label: "first"})
	b.AddNode(Node{ID: "n2", Label: "second"})
	b.AddNode(Node{ID: "n1", Label: "replaced", X: 5})

	nodes := b.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("node count = %d, want 2", len(nodes))
	}
	if nodes[0].ID != "n1" || nodes[0].Label != "replaced" || nodes[0].X != 5 {
		t.Errorf("nodes[0] = %+v", nodes[0])
	}
	if nodes[1].ID != "n2" {
		t.Errorf("nodes[1] = %+v", nodes[1])
	}
}

func TestBoard_UpdateNode(t *testing.T) {
	b := NewBoard()
	b.AddNode(Node{ID: "n1", Label: "old"})

	if !b.UpdateNode(Node{ID: "n1", Label: "new"}) {
		t.Fatal("update of existing node failed")
	}
	if b.Nodes()[0].Label != "new" {
		t.Errorf("label = %q", b.Nodes()[0].Label)
	}
	if b.UpdateNode(Node{ID: "ghost"}) {
		t.Error("update of unknown node succeeded")
	}
}

func TestBoard_DeleteNodeRemovesConnections(t *testing.T) {
	b := NewBoard()
	b.AddNode(Node{ID: "n1"})
	b.AddNode(Node{ID: "n2"})
	b.AddNode(Node{ID: "n3"})
	b.AddConnection(Connection{From: "n1", To: "n2"})
	b.AddConnection(Connection{From: "n2", To: "n3"})
	b.AddConnection(Connection{From: "n1", To: "n3"})

	if !b.DeleteNode("n2") {
		t.Fatal("delete failed")
	}
	if len(b.Nodes()) != 2 {
		t.Errorf("node count = %d, want 2", len(b.Nodes()))
	}
	conns := b.Connections()
	if len(conns) != 1 || conns[0].From != "n1" || conns[0].To != "n3" {
		t.Errorf("connections = %+v", conns)
	}
	if b.DeleteNode("n2") {
		t.Error("second delete succeeded")
	}
}

func TestBoard_Clear(t *testing.T) {
	b := NewBoard()
	b.AddNode(Node{ID: "n1"})
	b.AddConnection(Connection{From: "n1", To: "n1"})

	b.Clear()
	if len(b.Nodes()) != 0 || len(b.Connections()) != 0 {
		t.Error("board not empty after clear")
	}

	b.AddNode(Node{ID: "n2"})
	if len(b.Nodes()) != 1 {
		t.Error("board unusable after clear")
	}
}
