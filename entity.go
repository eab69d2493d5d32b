package epicore

// EntityID identifies a registered Entity (e.g. a workplace or school).
type EntityID int

// Entity is an optional grouping of agents. Per spec.md §9's open
// question, membership is agent-side subscription only — there is no
// prevalence-driven auto-assignment at reset time.
type Entity struct {
	id      EntityID
	name    string
	members map[AgentID]bool
}

// NewEntity creates an empty entity with the given display name.
func NewEntity(name string) *Entity {
	return &Entity{name: name, members: make(map[AgentID]bool)}
}

// ID returns the entity's registered identity once added to a Model.
func (e *Entity) ID() EntityID { return e.id }

// Name returns the entity's display name.
func (e *Entity) Name() string { return e.name }

// AddMember subscribes an agent to this entity.
func (e *Entity) AddMember(a AgentID) {
	e.members[a] = true
}

// RemoveMember unsubscribes an agent from this entity.
func (e *Entity) RemoveMember(a AgentID) {
	delete(e.members, a)
}

// HasMember reports whether the agent belongs to this entity.
func (e *Entity) HasMember(a AgentID) bool {
	return e.members[a]
}

// Members returns the current membership as a slice, unordered.
func (e *Entity) Members() []AgentID {
	out := make([]AgentID, 0, len(e.members))
	for a := range e.members {
		out = append(out, a)
	}
	return out
}

// clone returns a deep copy of the entity, used by the multi-replicate
// driver when cloning a Model for a worker.
func (e *Entity) clone() *Entity {
	c := &Entity{id: e.id, name: e.name, members: make(map[AgentID]bool, len(e.members))}
	for a := range e.members {
		c.members[a] = true
	}
	return c
}
