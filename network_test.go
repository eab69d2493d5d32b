package epicore

import "testing"

func TestNetwork_AddBiConnection(t *testing.T) {
	n := NewNetwork()
	if err := n.AddBiConnection(0, 1); err != nil {
		t.Fatal(err)
	}
	if !n.ConnectionExists(0, 1) || !n.ConnectionExists(1, 0) {
		t.Error("AddBiConnection must create edges in both directions")
	}
	if err := n.AddBiConnection(0, 1); err == nil {
		t.Error("expected an error re-adding an existing connection")
	}
	if err := n.AddBiConnection(2, 2); err == nil {
		t.Error("expected an error for a self-loop")
	}
}

func TestNetwork_Neighbors(t *testing.T) {
	n := NewNetwork()
	n.AddBiConnection(0, 1)
	n.AddBiConnection(0, 2)
	nbrs := n.Neighbors(0)
	if len(nbrs) != 2 {
		t.Fatalf("len(Neighbors(0)) = %d, want 2", len(nbrs))
	}
}

func TestNetwork_DeleteConnection(t *testing.T) {
	n := NewNetwork()
	n.AddConnection(0, 1)
	n.DeleteConnection(0, 1)
	if n.ConnectionExists(0, 1) {
		t.Error("DeleteConnection should remove the edge")
	}
}

func TestNetwork_CopyIsIndependent(t *testing.T) {
	n := NewNetwork()
	n.AddBiConnection(0, 1)
	c := n.Copy()
	c.AddConnection(0, 2)
	if n.ConnectionExists(0, 2) {
		t.Error("Copy must be an independent deep copy, not a shared map")
	}
}

func TestNetwork_Size(t *testing.T) {
	n := NewNetwork()
	n.AddBiConnection(0, 1)
	n.AddBiConnection(1, 2)
	if got := n.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}
