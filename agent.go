package epicore

// AgentID identifies an agent; it is always equal to the agent's index
// in Model.agents.
type AgentID int

// Agent is one modeled individual. Per spec.md §9's arena+indices
// resolution of the source's pointer cycles, an Agent never holds a
// pointer back to its Model, its viruses, or its tools — only integer
// ids and arena indices that the owning Model resolves.
type Agent struct {
	id AgentID

	state     int
	prevState int
	stateDay  int // day of last state change; -1 before any change

	// virusInst/toolInst are indices into Model.virusInstances /
	// Model.toolInstances for the instances currently hosted. Both are
	// typically 0-2 elements.
	virusInst []int
	toolInst  []int

	neighbors []AgentID
	entities  []EntityID
}

// newAgent creates an agent with no viruses, no tools, and no
// neighbors, in state 0 (the caller is expected to set the initial
// state once states are registered).
func newAgent(id AgentID) Agent {
	return Agent{id: id, state: 0, prevState: 0, stateDay: -1}
}

// ID returns the agent's identity.
func (a *Agent) ID() AgentID { return a.id }

// State returns the agent's current state id.
func (a *Agent) State() int { return a.state }

// PrevState returns the state the agent held before its most recent
// change.
func (a *Agent) PrevState() int { return a.prevState }

// StateDay returns the day of the agent's most recent state change, or
// -1 if it has never changed.
func (a *Agent) StateDay() int { return a.stateDay }

// Neighbors returns the agent's neighbor ids, unordered.
func (a *Agent) Neighbors() []AgentID {
	return a.neighbors
}

// NumViruses returns how many virus instances the agent currently
// hosts.
func (a *Agent) NumViruses() int { return len(a.virusInst) }

// NumTools returns how many tool instances the agent currently holds.
func (a *Agent) NumTools() int { return len(a.toolInst) }

// Entities returns the entity ids held in the agent's own list.
// Entity.AddMember records membership on the Entity only and does not
// add to this list.
func (a *Agent) Entities() []EntityID {
	return a.entities
}

// clone returns a deep copy of the agent (slices copied, not shared),
// used by the multi-replicate driver when cloning a Model for a
// worker.
func (a *Agent) clone() Agent {
	c := *a
	c.virusInst = append([]int(nil), a.virusInst...)
	c.toolInst = append([]int(nil), a.toolInst...)
	c.neighbors = append([]AgentID(nil), a.neighbors...)
	c.entities = append([]EntityID(nil), a.entities...)
	return c
}
