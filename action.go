package epicore

// NoStateChange is the Action.NewState sentinel meaning "this action
// does not request a state transition" — only its finalizer and/or
// queue delta apply.
const NoStateChange = -1

// finalizerKind tags the single legal mutation an Action's finalizer
// may perform, per spec.md §9: finalizers are encoded as a small
// tagged enum rather than as closures that would capture the Model by
// reference.
type finalizerKind uint8

const (
	finalizerNone finalizerKind = iota
	finalizerAddVirus
	finalizerRemoveVirus
	finalizerAddTool
	finalizerRemoveTool
)

// Action is a deferred mutation record. Actions accumulate in a
// Model's actionBuffer during update_state/run_global_actions/rewire
// and are only visible to accounting once flushed.
type Action struct {
	Agent AgentID

	finalizer finalizerKind
	virus     VirusID // for finalizerAddVirus
	toolID    ToolID  // for finalizerAddTool
	scratch0  int     // for finalizerRemoveVirus/RemoveTool: agent-slice index to drop

	// source/hasSource attribute a virus acquisition to a transmission
	// event, for DataBase.recordTransmission.
	source    AgentID
	hasSource bool

	Entity    EntityID
	HasEntity bool

	NewState int // NoStateChange, or the state to transition to
	Q        int8 // queue delta: one of {-2,-1,0,1,2}

	// HookID optionally indexes into Model.actionHooks for a
	// user-supplied side effect run after the tagged finalizer (or
	// instead of one, if finalizer is finalizerNone).
	HookID    int
	HasHook   bool
}

// AddVirusAction builds an action that, on flush, attaches an instance
// of v to the target agent and transitions the agent to newState with
// queue delta q. The action itself attaches unconditionally; the
// double-infection guard (spec.md §4.2) is applied at enqueue time by
// Model.EnqueueAddVirus.
func AddVirusAction(agent AgentID, v VirusID, newState int, q int8) Action {
	return Action{Agent: agent, finalizer: finalizerAddVirus, virus: v, NewState: newState, Q: q}
}

// RemoveVirusAction builds an action that, on flush, detaches the
// virus instance at position instIdx of the target agent's hosted-virus
// list and transitions it to newState with queue delta q.
func RemoveVirusAction(agent AgentID, instIdx, newState int, q int8) Action {
	return Action{Agent: agent, finalizer: finalizerRemoveVirus, scratch0: instIdx, NewState: newState, Q: q}
}

// AddToolAction builds an action that attaches an instance of t to the
// target agent and transitions it to newState.
func AddToolAction(agent AgentID, t ToolID, newState int) Action {
	return Action{Agent: agent, finalizer: finalizerAddTool, toolID: t, NewState: newState}
}

// RemoveToolAction builds an action that detaches the tool instance at
// position instIdx of the target agent's held-tool list and transitions
// it to newState.
func RemoveToolAction(agent AgentID, instIdx, newState int) Action {
	return Action{Agent: agent, finalizer: finalizerRemoveTool, scratch0: instIdx, NewState: newState}
}

// StateChangeAction builds a bare state transition with no virus/tool
// side effect — used for the "post" (natural progression) transitions
// and for custom global actions that only move an agent between
// states.
func StateChangeAction(agent AgentID, newState int, q int8) Action {
	return Action{Agent: agent, NewState: newState, Q: q}
}

// actionBuffer is the arena described by spec.md §4.2: capacity grows
// monotonically and is reused across phases by moving a watermark back
// to 0 after each flush, avoiding per-action allocation on the hot
// path.
type actionBuffer struct {
	items []Action
	n     int
}

// enqueue appends a to the buffer, growing backing storage only when
// the watermark reaches current capacity.
func (b *actionBuffer) enqueue(a Action) {
	if b.n < len(b.items) {
		b.items[b.n] = a
	} else {
		b.items = append(b.items, a)
	}
	b.n++
}

// reset drops the watermark to 0 without shrinking backing storage.
func (b *actionBuffer) reset() {
	b.n = 0
}

// empty reports whether there is nothing buffered.
func (b *actionBuffer) empty() bool {
	return b.n == 0
}
