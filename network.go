package epicore

import (
	"bytes"
	"fmt"
)

// Network is a weighted adjacency list keyed by AgentID, adapted from
// the teacher's map[int]map[int]float64 adjacencyMatrix. Weight is
// carried for parity with the original's weighted-edge support (see
// SPEC_FULL.md §9); the core transmission-queue mask and default
// neighbor iteration ignore it, but a custom state update function may
// read Weight to scale a per-contact probability.
type Network struct {
	edges map[AgentID]map[AgentID]float64
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{edges: make(map[AgentID]map[AgentID]float64)}
}

// Size returns the number of distinct agent ids that appear in the
// network, either as a source or a target.
func (n *Network) Size() int {
	seen := make(map[AgentID]bool)
	for a, nbrs := range n.edges {
		seen[a] = true
		for b := range nbrs {
			seen[b] = true
		}
	}
	return len(seen)
}

// ConnectionExists reports whether a one-way edge a->b exists.
func (n *Network) ConnectionExists(a, b AgentID) bool {
	if _, ok := n.edges[a]; !ok {
		return false
	}
	_, ok := n.edges[a][b]
	return ok
}

// AddConnection adds a one-way unweighted (weight 1) edge a->b. Returns
// an error if the edge already exists.
func (n *Network) AddConnection(a, b AgentID) error {
	return n.AddWeightedConnection(a, b, 1)
}

// AddWeightedConnection adds a one-way edge a->b with weight w.
func (n *Network) AddWeightedConnection(a, b AgentID, w float64) error {
	if n.ConnectionExists(a, b) {
		return fmt.Errorf("connection (%d,%d) already exists", a, b)
	}
	if n.edges[a] == nil {
		n.edges[a] = make(map[AgentID]float64)
	}
	n.edges[a][b] = w
	return nil
}

// UpsertConnectionWeight sets the weight of edge a->b, creating it if
// absent.
func (n *Network) UpsertConnectionWeight(a, b AgentID, w float64) {
	if n.edges[a] == nil {
		n.edges[a] = make(map[AgentID]float64)
	}
	n.edges[a][b] = w
}

// AddBiConnection adds reciprocal unweighted edges a->b and b->a.
func (n *Network) AddBiConnection(a, b AgentID) error {
	return n.AddWeightedBiConnection(a, b, 1)
}

// AddWeightedBiConnection adds reciprocal edges a->b and b->a with the
// same weight.
func (n *Network) AddWeightedBiConnection(a, b AgentID, w float64) error {
	if a == b {
		return fmt.Errorf("start and end nodes are the same")
	}
	if n.ConnectionExists(a, b) || n.ConnectionExists(b, a) {
		return fmt.Errorf("connection (%d,%d) already exists", a, b)
	}
	n.UpsertConnectionWeight(a, b, w)
	n.UpsertConnectionWeight(b, a, w)
	return nil
}

// DeleteConnection removes the one-way edge a->b, if present.
func (n *Network) DeleteConnection(a, b AgentID) {
	delete(n.edges[a], b)
}

// Neighbors returns the unordered list of ids a connects to.
func (n *Network) Neighbors(a AgentID) []AgentID {
	var out []AgentID
	for b := range n.edges[a] {
		out = append(out, b)
	}
	return out
}

// Weight returns the weight of edge a->b, or 0 if absent.
func (n *Network) Weight(a, b AgentID) float64 {
	return n.edges[a][b]
}

// Copy returns a deep copy of the network.
func (n *Network) Copy() *Network {
	c := NewNetwork()
	for a, nbrs := range n.edges {
		c.edges[a] = make(map[AgentID]float64, len(nbrs))
		for b, w := range nbrs {
			c.edges[a][b] = w
		}
	}
	return c
}

// Dump serializes the adjacency list as "a,b: weight" lines, mirroring
// the teacher's Dump.
func (n *Network) Dump() []byte {
	var b bytes.Buffer
	for a, nbrs := range n.edges {
		for to, w := range nbrs {
			fmt.Fprintf(&b, "%d,%d: %f\n", a, to, w)
		}
	}
	return b.Bytes()
}
