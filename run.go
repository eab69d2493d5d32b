package epicore

import "sort"

// Run executes one replicate over ndays, reproducibly seeded when
// seed >= 0. Fails if the population is empty or no states are
// registered.
func (m *Model) Run(ndays int, seed int64) error {
	if len(m.agents) == 0 && len(m.backupAgents) == 0 {
		return ConfigError("population is empty")
	}
	if len(m.states) == 0 {
		return ConfigError("no states registered")
	}
	if seed >= 0 {
		m.rng.Seed(seed)
	}
	if err := m.Reset(); err != nil {
		return err
	}
	for step := 0; step < ndays; step++ {
		if err := m.runDay(); err != nil {
			return err
		}
		if m.stopCondition != nil && m.stopCondition(m) {
			break
		}
	}
	return nil
}

// Reset restores the population/entity backups taken at the end of
// the configuration phase (on first call), clears the DataBase and
// action buffer, re-distributes every registered virus/tool, and
// advances to day 0. Each call re-derives the population, DataBase and
// queue from the backups rather than from accumulated state. Reset does
// not reseed the RNG stream: prevalence- and count-based seeding draws
// continue the stream, so two Resets in a row can seed different
// agents unless the stream is reseeded in between (as Run does).
func (m *Model) Reset() error {
	if len(m.agents) == 0 && len(m.backupAgents) == 0 {
		return ConfigError("population is empty")
	}
	if !m.built {
		m.snapshotBackups()
		m.built = true
	}
	m.restoreBackups()

	m.virusInstances = nil
	m.toolInstances = nil

	m.queue = newTransmissionQueue(len(m.agents))
	if m.queueEnabled {
		m.queue.Enable()
	}

	m.db = newDataBase(len(m.states))
	initial := make([]int64, len(m.states))
	initial[0] = int64(len(m.agents))
	m.db.seedCounts(initial)

	m.actions.reset()
	m.currentDay = 0

	if err := m.distribute(); err != nil {
		return err
	}
	m.db.record()
	m.currentDay = m.db.today
	return nil
}

func (m *Model) snapshotBackups() {
	m.backupAgents = make([]Agent, len(m.agents))
	for i := range m.agents {
		m.backupAgents[i] = m.agents[i].clone()
	}
	m.backupEntities = make([]*Entity, len(m.entities))
	for i, e := range m.entities {
		m.backupEntities[i] = e.clone()
	}
}

func (m *Model) restoreBackups() {
	m.agents = make([]Agent, len(m.backupAgents))
	for i := range m.backupAgents {
		m.agents[i] = m.backupAgents[i].clone()
	}
	m.entities = make([]*Entity, len(m.backupEntities))
	for i, e := range m.backupEntities {
		m.entities[i] = e.clone()
	}
}

// distribute seeds every registered virus/tool onto the population per
// its configured seeding mode, then flushes the resulting actions so
// they are visible before day 0's snapshot.
func (m *Model) distribute() error {
	for _, s := range m.virusSeeds {
		agents, err := m.selectVirusSeed(s)
		if err != nil {
			return err
		}
		for _, a := range agents {
			m.EnqueueAddVirus(a, s.vid, 0, false)
		}
	}
	for _, s := range m.toolSeeds {
		agents, err := m.selectToolSeed(s)
		if err != nil {
			return err
		}
		for _, a := range agents {
			m.EnqueueAddTool(a, s.tid)
		}
	}
	return m.flush()
}

func (m *Model) selectVirusSeed(s virusSeed) ([]AgentID, error) {
	n := len(m.agents)
	switch s.mode {
	case seedPrevalence:
		var out []AgentID
		for i := 0; i < n; i++ {
			if m.rng.Bernoulli(s.prevalence) {
				out = append(out, AgentID(i))
			}
		}
		return out, nil
	case seedCount:
		return m.sampleWithoutReplacement(s.count)
	case seedFunc:
		return s.fn(m), nil
	}
	return nil, LogicError("unrecognized virus seed mode %d", s.mode)
}

func (m *Model) selectToolSeed(s toolSeed) ([]AgentID, error) {
	n := len(m.agents)
	switch s.mode {
	case seedPrevalence:
		var out []AgentID
		for i := 0; i < n; i++ {
			if m.rng.Bernoulli(s.prevalence) {
				out = append(out, AgentID(i))
			}
		}
		return out, nil
	case seedCount:
		return m.sampleWithoutReplacement(s.count)
	case seedFunc:
		return s.fn(m), nil
	}
	return nil, LogicError("unrecognized tool seed mode %d", s.mode)
}

func (m *Model) sampleWithoutReplacement(count int) ([]AgentID, error) {
	n := len(m.agents)
	if count > n {
		return nil, ConfigError("cannot seed %d agents in a population of %d", count, n)
	}
	perm := m.rng.Perm(n)
	ids := make([]AgentID, count)
	for i := 0; i < count; i++ {
		ids[i] = AgentID(perm[i])
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// runDay executes one iteration of the fixed-order day-step protocol
// from spec.md §4.1.
func (m *Model) runDay() error {
	m.updateStatePhase()
	if err := m.runGlobalActionsPhase(); err != nil {
		return err
	}
	m.rewirePhase()
	if err := m.flush(); err != nil {
		return err
	}
	if aid, bad := m.queue.checkInvariant(); bad {
		return LogicError("transmission queue invariant violated at agent %d", aid)
	}
	m.db.record()
	m.currentDay = m.db.today
	return m.mutateVirusesPhase()
}

// updateStatePhase invokes each in-scope agent's registered state
// update function, in ascending id order.
func (m *Model) updateStatePhase() {
	for i := range m.agents {
		id := AgentID(i)
		if !m.queue.Active(id) {
			continue
		}
		s := m.states[m.agents[i].state]
		if s.Update != nil {
			s.Update(m, id)
		}
	}
}

// runGlobalActionsPhase invokes every global scheduled for today or
// every day, flushing immediately after each one.
func (m *Model) runGlobalActionsPhase() error {
	for _, g := range m.globals {
		if g.Day != -1 && g.Day != m.currentDay {
			continue
		}
		g.Run(m)
		if err := m.flush(); err != nil {
			return err
		}
	}
	return nil
}

// rewirePhase calls the installed rewire hook, if any.
func (m *Model) rewirePhase() {
	if m.rewireFn != nil {
		m.rewireFn(m, m.rewireProp)
	}
}

// mutateVirusesPhase calls each in-scope, virus-hosting agent's
// virus mutator, flushing any resulting actions immediately.
func (m *Model) mutateVirusesPhase() error {
	for i := range m.agents {
		id := AgentID(i)
		if !m.queue.Active(id) {
			continue
		}
		a := &m.agents[i]
		if len(a.virusInst) == 0 {
			continue
		}
		for _, instIdx := range append([]int(nil), a.virusInst...) {
			inst := m.virusInstances[instIdx]
			if !inst.alive {
				continue
			}
			def := m.virusDefs[inst.vid]
			if def.Mutate == nil {
				continue
			}
			newVid := def.Mutate(m, id, inst.vid)
			if newVid != inst.vid {
				m.virusInstances[instIdx].vid = newVid
			}
		}
	}
	return m.flush()
}

// flush applies every buffered action, newest first (LIFO over the
// watermark), per spec.md §4.2. Actions enqueued by a finalizer during
// this call are appended to the same buffer and are processed before
// flush returns. Returns the first RangeError encountered, aborting
// the rest of the flush — per spec.md §7, an out-of-range finalizer
// index, state, or queue delta is a model-author error, not something
// to silently drop.
func (m *Model) flush() error {
	for m.actions.n > 0 {
		m.actions.n--
		a := m.actions.items[m.actions.n]
		if err := m.applyAction(&a); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) applyAction(a *Action) error {
	if err := m.runFinalizer(a); err != nil {
		return err
	}

	if a.NewState != NoStateChange {
		if err := m.applyStateChange(a); err != nil {
			return err
		}
	}

	if a.Q != 0 {
		if err := m.applyQueueDelta(a); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) runFinalizer(a *Action) error {
	agent := &m.agents[a.Agent]
	switch a.finalizer {
	case finalizerAddVirus:
		idx := len(m.virusInstances)
		inst := newVirusInstance(a.virus, a.Agent)
		m.virusInstances = append(m.virusInstances, inst)
		agent.virusInst = append(agent.virusInst, idx)
		m.db.onVirusAcquired(a.virus, a.Agent, m.currentDay)
		if a.hasSource {
			m.db.recordTransmission(m.currentDay, a.source, a.Agent, a.virus, inst.uid)
		}
	case finalizerRemoveVirus:
		if a.scratch0 < 0 || a.scratch0 >= len(agent.virusInst) {
			return RangeError("remove virus: instance index %d out of range for agent %d (%d hosted)",
				a.scratch0, a.Agent, len(agent.virusInst))
		}
		instIdx := agent.virusInst[a.scratch0]
		m.virusInstances[instIdx].alive = false
		agent.virusInst = append(agent.virusInst[:a.scratch0], agent.virusInst[a.scratch0+1:]...)
	case finalizerAddTool:
		idx := len(m.toolInstances)
		m.toolInstances = append(m.toolInstances, newToolInstance(a.toolID, a.Agent))
		agent.toolInst = append(agent.toolInst, idx)
	case finalizerRemoveTool:
		if a.scratch0 < 0 || a.scratch0 >= len(agent.toolInst) {
			return RangeError("remove tool: instance index %d out of range for agent %d (%d held)",
				a.scratch0, a.Agent, len(agent.toolInst))
		}
		instIdx := agent.toolInst[a.scratch0]
		m.toolInstances[instIdx].alive = false
		agent.toolInst = append(agent.toolInst[:a.scratch0], agent.toolInst[a.scratch0+1:]...)
	}
	if a.HasHook && a.HookID >= 0 && a.HookID < len(m.actionHooks) {
		m.actionHooks[a.HookID](m, a)
	}
	return nil
}

// applyStateChange implements spec.md §4.2 steps 2-5: the undo-redo
// accounting invariant for multiple state changes within one day.
func (m *Model) applyStateChange(a *Action) error {
	if a.NewState < 0 || a.NewState >= len(m.states) {
		return RangeError("state change targets state %d, but only %d states are registered",
			a.NewState, len(m.states))
	}

	agent := &m.agents[a.Agent]
	if a.NewState == agent.state {
		// Still record the s_day touch even when Δ==0, so a same-day
		// re-affirmation of the current state counts as "already
		// changed today" for subsequent actions, but skip accounting.
		agent.stateDay = m.currentDay
		return nil
	}

	vids, tids := m.hostedPathogens(agent)

	if agent.stateDay == m.currentDay {
		// Already changed state today: undo the previously recorded
		// net transition, then apply the new net transition from the
		// original prevState.
		m.db.undoState(agent.prevState, agent.state)
		m.db.undoVirusesAndTools(vids, tids, agent.prevState, agent.state)
		m.db.updateState(agent.prevState, a.NewState)
		m.db.updateVirusesAndTools(vids, tids, agent.prevState, a.NewState)
	} else {
		m.db.updateState(agent.state, a.NewState)
		m.db.updateVirusesAndTools(vids, tids, agent.state, a.NewState)
		agent.prevState = agent.state
	}
	agent.state = a.NewState
	agent.stateDay = m.currentDay
	return nil
}

// hostedPathogens resolves agent's current virus/tool arena indices to
// the VirusID/ToolID values the DataBase keys its per-pathogen census
// on, skipping instances a finalizer has already marked dead this
// flush.
func (m *Model) hostedPathogens(agent *Agent) ([]VirusID, []ToolID) {
	var vids []VirusID
	for _, idx := range agent.virusInst {
		inst := m.virusInstances[idx]
		if inst.alive {
			vids = append(vids, inst.vid)
		}
	}
	var tids []ToolID
	for _, idx := range agent.toolInst {
		inst := m.toolInstances[idx]
		if inst.alive {
			tids = append(tids, inst.tid)
		}
	}
	return vids, tids
}

// applyQueueDelta interprets a.Q per spec.md §4.2 step 6. Called only
// when a.Q != 0, so case 0 never reaches here; anything outside
// {-2,-1,1,2} is a model-author error per spec.md §7.
func (m *Model) applyQueueDelta(a *Action) error {
	agent := &m.agents[a.Agent]
	switch a.Q {
	case 2:
		m.queue.bump(a.Agent, 1)
		for _, n := range agent.neighbors {
			m.queue.bump(n, 1)
		}
	case -2:
		m.queue.bump(a.Agent, -1)
		for _, n := range agent.neighbors {
			m.queue.bump(n, -1)
		}
	case 1:
		m.queue.bump(a.Agent, 1)
	case -1:
		m.queue.bump(a.Agent, -1)
	default:
		return RangeError("queue delta %d outside {-2,-1,0,1,2} for agent %d", a.Q, a.Agent)
	}
	return nil
}
