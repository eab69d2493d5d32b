package epicore

import (
	"sort"
)

// StateFunc is the only legal site for state transitions: it inspects
// the agent, computes outcomes, and enqueues actions via
// Model.Enqueue* — it must never mutate agent state directly.
type StateFunc func(m *Model, agent AgentID)

// State is a registered label plus its (optional) update function.
type State struct {
	Label  string
	Update StateFunc
}

// GlobalAction is a model-wide scheduled action. Day == -1 means "run
// every day"; any other value means "run only on that day".
type GlobalAction struct {
	Name string
	Day  int
	Run  func(m *Model)
}

// RewireFunc rewires the network topology in place, given the
// configured rewire proportion.
type RewireFunc func(m *Model, prop float64)

// virusSeed/toolSeed describe how a registered virus/tool is
// distributed across the population at reset.
type virusSeed struct {
	vid        VirusID
	mode       seedMode
	prevalence float64
	count      int
	fn         func(m *Model) []AgentID
}

type toolSeed struct {
	tid        ToolID
	mode       seedMode
	prevalence float64
	count      int
	fn         func(m *Model) []AgentID
}

type seedMode int

const (
	seedPrevalence seedMode = iota
	seedCount
	seedFunc
)

// Model owns the population, the network, every registered state,
// virus, tool, and global action, the accounting DataBase, and the
// deferred action buffer. It is the sole object passed to every
// pluggable callback — agents, viruses, and tools hold only integer
// ids/arena indices, never a pointer back to the Model, per spec.md §9.
type Model struct {
	rng *RNGStream

	states []State

	agents  []Agent
	network *Network

	virusDefs      []*VirusDef
	virusInstances []virusInstance
	virusSeeds     []virusSeed

	toolDefs      []*ToolDef
	toolInstances []toolInstance
	toolSeeds     []toolSeed

	entities []*Entity

	globals []*GlobalAction

	queue        TransmissionQueue
	queueEnabled bool

	db *DataBase

	actions actionBuffer

	mixer Mixer

	rewireFn   RewireFunc
	rewireProp float64

	stopCondition func(m *Model) bool

	currentDay int
	built      bool

	// backups snapshotted at the end of the add_* configuration phase,
	// restored by Reset.
	backupAgents   []Agent
	backupEntities []*Entity

	actionHooks []ActionHook
}

// ActionHook is a user-supplied finalizer extension, indexed by
// Action.HookID, run after the tagged finalizer during flush.
type ActionHook func(m *Model, a *Action)

// NewModel creates an empty Model over the given network. The network
// ownership transfers to the Model.
func NewModel(network *Network) *Model {
	return &Model{
		network: network,
		mixer:   DefaultMixer{},
		rng:     NewRNGStream(-1),
	}
}

// SetMixer overrides the default tool-effect mixer.
func (m *Model) SetMixer(mx Mixer) { m.mixer = mx }

// SetRewireFunc installs a rewire hook invoked once per day with the
// configured proportion.
func (m *Model) SetRewireFunc(fn RewireFunc, prop float64) {
	m.rewireFn = fn
	m.rewireProp = prop
}

// SetStopCondition installs a predicate checked at the end of each
// day; when it returns true, Run stops before advancing further.
func (m *Model) SetStopCondition(fn func(m *Model) bool) {
	m.stopCondition = fn
}

// EnableQueue turns on the transmission-queue activity mask.
func (m *Model) EnableQueue() {
	m.queueEnabled = true
	m.queue.Enable()
}

// RNG returns the Model's shared random stream.
func (m *Model) RNG() *RNGStream { return m.rng }

// CurrentDay returns the day currently being processed.
func (m *Model) CurrentDay() int { return m.currentDay }

// NumAgents returns the population size.
func (m *Model) NumAgents() int { return len(m.agents) }

// Agent returns a pointer to the agent's live record. Callers outside
// this package must not retain this pointer across a flush.
func (m *Model) Agent(id AgentID) *Agent { return &m.agents[id] }

// Network returns the Model's adjacency list.
func (m *Model) Network() *Network { return m.network }

// DB returns the Model's accounting database.
func (m *Model) DB() *DataBase { return m.db }

// VirusDef returns the registered virus definition for vid.
func (m *Model) VirusDef(vid VirusID) *VirusDef { return m.virusDefs[vid] }

// ToolDef returns the registered tool definition for tid.
func (m *Model) ToolDef(tid ToolID) *ToolDef { return m.toolDefs[tid] }

// AllVirusDefs returns every registered virus definition, in
// registration order.
func (m *Model) AllVirusDefs() []*VirusDef { return m.virusDefs }

// AllToolDefs returns every registered tool definition, in
// registration order.
func (m *Model) AllToolDefs() []*ToolDef { return m.toolDefs }

// Mixer returns the Model's configured tool-effect mixer.
func (m *Model) Mixer() Mixer { return m.mixer }

// ActiveNeighbors returns agent's neighbors, filtered by the
// transmission queue when it is enabled (spec.md §4.4).
func (m *Model) ActiveNeighbors(agent AgentID) []AgentID {
	nbrs := m.agents[agent].neighbors
	if !m.queue.Enabled() {
		return nbrs
	}
	out := make([]AgentID, 0, len(nbrs))
	for _, n := range nbrs {
		if m.queue.Active(n) {
			out = append(out, n)
		}
	}
	return out
}

// AgentViruses returns the VirusIDs currently hosted by agent.
func (m *Model) AgentViruses(agent AgentID) []VirusID {
	a := &m.agents[agent]
	out := make([]VirusID, 0, len(a.virusInst))
	for _, idx := range a.virusInst {
		out = append(out, m.virusInstances[idx].vid)
	}
	return out
}

// AgentTools returns the ToolIDs currently held by agent.
func (m *Model) AgentTools(agent AgentID) []ToolID {
	a := &m.agents[agent]
	out := make([]ToolID, 0, len(a.toolInst))
	for _, idx := range a.toolInst {
		out = append(out, m.toolInstances[idx].tid)
	}
	return out
}

// HasVirus reports whether agent currently hosts vid.
func (m *Model) HasVirus(agent AgentID, vid VirusID) bool {
	for _, idx := range m.agents[agent].virusInst {
		if m.virusInstances[idx].vid == vid {
			return true
		}
	}
	return false
}

// --- Configuration phase -----------------------------------------

// AddState registers a new state under label, returning its id. Fails
// with a ConfigError if the label is already registered.
func (m *Model) AddState(label string, update StateFunc) (int, error) {
	for _, s := range m.states {
		if s.Label == label {
			return 0, ConfigError("state label %q is already registered", label)
		}
	}
	m.states = append(m.states, State{Label: label, Update: update})
	return len(m.states) - 1, nil
}

// NumStates returns how many states are registered.
func (m *Model) NumStates() int { return len(m.states) }

// AddVirus registers v and schedules it to be distributed to a
// Bernoulli(prevalence) sample of agents at reset. Fails if prevalence
// is out of [0,1] or v is missing init/post.
func (m *Model) AddVirus(v *VirusDef, prevalence float64) (VirusID, error) {
	vid, err := m.registerVirus(v)
	if err != nil {
		return 0, err
	}
	if prevalence < 0 || prevalence > 1 {
		return 0, ConfigError("prevalence %f for virus %q is out of range [0,1]", prevalence, v.Name())
	}
	m.virusSeeds = append(m.virusSeeds, virusSeed{vid: vid, mode: seedPrevalence, prevalence: prevalence})
	return vid, nil
}

// AddVirusN registers v and schedules it to be distributed to exactly
// count agents, sampled without replacement, at reset.
func (m *Model) AddVirusN(v *VirusDef, count int) (VirusID, error) {
	vid, err := m.registerVirus(v)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, ConfigError("virus %q count %d must be >= 0", v.Name(), count)
	}
	m.virusSeeds = append(m.virusSeeds, virusSeed{vid: vid, mode: seedCount, count: count})
	return vid, nil
}

// AddVirusFunc registers v and schedules it to be distributed to
// whatever agent set dist returns at reset.
func (m *Model) AddVirusFunc(v *VirusDef, dist func(m *Model) []AgentID) (VirusID, error) {
	vid, err := m.registerVirus(v)
	if err != nil {
		return 0, err
	}
	m.virusSeeds = append(m.virusSeeds, virusSeed{vid: vid, mode: seedFunc, fn: dist})
	return vid, nil
}

func (m *Model) registerVirus(v *VirusDef) (VirusID, error) {
	if v.Init == noTransition || v.Post == noTransition {
		return 0, ConfigError("virus %q is missing an init/post state transition", v.Name())
	}
	vid := VirusID(len(m.virusDefs))
	v.id = vid
	m.virusDefs = append(m.virusDefs, v)
	return vid, nil
}

// AddTool registers t and schedules it to be distributed to a
// Bernoulli(prevalence) sample of agents at reset.
func (m *Model) AddTool(t *ToolDef, prevalence float64) (ToolID, error) {
	if prevalence < 0 || prevalence > 1 {
		return 0, ConfigError("prevalence %f for tool %q is out of range [0,1]", prevalence, t.Name())
	}
	tid := ToolID(len(m.toolDefs))
	t.id = tid
	m.toolDefs = append(m.toolDefs, t)
	m.toolSeeds = append(m.toolSeeds, toolSeed{tid: tid, mode: seedPrevalence, prevalence: prevalence})
	return tid, nil
}

// AddToolN registers t and schedules it to exactly count agents.
func (m *Model) AddToolN(t *ToolDef, count int) (ToolID, error) {
	tid := ToolID(len(m.toolDefs))
	t.id = tid
	m.toolDefs = append(m.toolDefs, t)
	m.toolSeeds = append(m.toolSeeds, toolSeed{tid: tid, mode: seedCount, count: count})
	return tid, nil
}

// AddGlobalAction registers a global action scheduled for `day` (-1
// for every day).
func (m *Model) AddGlobalAction(name string, day int, fn func(m *Model)) {
	m.globals = append(m.globals, &GlobalAction{Name: name, Day: day, Run: fn})
}

// AddEntity registers a new entity grouping and returns its id.
func (m *Model) AddEntity(name string) EntityID {
	eid := EntityID(len(m.entities))
	e := NewEntity(name)
	e.id = eid
	m.entities = append(m.entities, e)
	return eid
}

// Entity returns the entity registered under eid.
func (m *Model) Entity(eid EntityID) *Entity { return m.entities[eid] }

// RegisterActionHook installs a user-extension finalizer hook and
// returns its id for use as Action.HookID.
func (m *Model) RegisterActionHook(fn ActionHook) int {
	m.actionHooks = append(m.actionHooks, fn)
	return len(m.actionHooks) - 1
}

// AddAgents grows the population to n agents wired to m.network's
// adjacency (agent i's neighbors are network.Neighbors(i)). Must be
// called during the configuration phase, before the first Run/Reset.
func (m *Model) AddAgents(n int) {
	m.agents = make([]Agent, n)
	for i := 0; i < n; i++ {
		a := newAgent(AgentID(i))
		a.neighbors = m.network.Neighbors(AgentID(i))
		sort.Slice(a.neighbors, func(x, y int) bool { return a.neighbors[x] < a.neighbors[y] })
		m.agents[i] = a
	}
	m.queue = newTransmissionQueue(n)
	if m.queueEnabled {
		m.queue.Enable()
	}
}

// --- Enqueue helpers for StateFuncs --------------------------------

// Enqueue buffers a raw action for the next flush.
func (m *Model) Enqueue(a Action) {
	m.actions.enqueue(a)
}

// EnqueueAddVirus buffers a virus-acquisition action, applying the
// double-infection guard from spec.md §4.2: if agent already hosts
// vid, the action is dropped rather than buffered. When hasSrc is
// true, src attributes the acquisition to a transmission event from
// src for DataBase.recordTransmission; otherwise src is ignored.
func (m *Model) EnqueueAddVirus(agent AgentID, vid VirusID, src AgentID, hasSrc bool) {
	if m.HasVirus(agent, vid) {
		return
	}
	v := m.virusDefs[vid]
	a := AddVirusAction(agent, vid, v.Init, int8(v.QInit))
	if hasSrc {
		a.hasSource = true
		a.source = src
	}
	m.actions.enqueue(a)
}

// EnqueueRemoveVirus buffers a virus-removal action (recovery) for the
// virus instance vid currently hosted by agent, transitioning to
// v.Rm with queue delta v.QRm. No-op if agent does not host vid.
func (m *Model) EnqueueRemoveVirus(agent AgentID, vid VirusID) {
	idx, ok := m.findVirusInst(agent, vid)
	if !ok {
		return
	}
	v := m.virusDefs[vid]
	m.actions.enqueue(RemoveVirusAction(agent, idx, v.Rm, int8(v.QRm)))
}

// EnqueueProgress buffers a state-only transition to v.Post with queue
// delta v.QPost, for virus natural-progression transitions that do not
// add or remove a virus instance.
func (m *Model) EnqueueProgress(agent AgentID, v *VirusDef) {
	m.actions.enqueue(StateChangeAction(agent, v.Post, int8(v.QPost)))
}

func (m *Model) findVirusInst(agent AgentID, vid VirusID) (int, bool) {
	for i, idx := range m.agents[agent].virusInst {
		if m.virusInstances[idx].vid == vid {
			return i, true
		}
	}
	return 0, false
}

func (m *Model) findToolInst(agent AgentID, tid ToolID) (int, bool) {
	for i, idx := range m.agents[agent].toolInst {
		if m.toolInstances[idx].tid == tid {
			return i, true
		}
	}
	return 0, false
}

// EnqueueAddTool buffers a tool-acquisition action; a no-op if agent
// already holds tid.
func (m *Model) EnqueueAddTool(agent AgentID, tid ToolID) {
	if _, ok := m.findToolInst(agent, tid); ok {
		return
	}
	t := m.toolDefs[tid]
	m.actions.enqueue(AddToolAction(agent, tid, toolState(t.Init)))
}

// EnqueueRemoveTool buffers a tool-removal action for tid currently
// held by agent. No-op if agent does not hold tid.
func (m *Model) EnqueueRemoveTool(agent AgentID, tid ToolID) {
	idx, ok := m.findToolInst(agent, tid)
	if !ok {
		return
	}
	t := m.toolDefs[tid]
	m.actions.enqueue(RemoveToolAction(agent, idx, toolState(t.Post)))
}

// toolState maps a ToolDef's unset (noTransition) Init/Post to
// NoStateChange, since most tools (e.g. pure transmission-blockers)
// never move their host between states.
func toolState(s int) int {
	if s == noTransition {
		return NoStateChange
	}
	return s
}
