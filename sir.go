package epicore

// Canonical SIR state ids, used by BuildModel and by any caller that
// wants the standard three-compartment layout without hand-writing
// state update functions.
const (
	Susceptible = 0
	Infected    = 1
	Recovered   = 2
)

// AddSIRStates registers the three update functions described by
// spec.md §4.5's "Typical transitions for an SIR virus": Susceptible
// hosts sample transmission from their active neighborhood for every
// registered virus; Infected hosts draw recovery and death; Recovered
// is a no-op. AddSIRStates is the config-free entry point — callers
// building a custom (non-SIR) state machine should call m.AddState
// directly instead.
func AddSIRStates(m *Model) error {
	if _, err := m.AddState("Susceptible", susceptibleUpdate); err != nil {
		return err
	}
	if _, err := m.AddState("Infected", infectedUpdate); err != nil {
		return err
	}
	if _, err := m.AddState("Recovered", nil); err != nil {
		return err
	}
	return nil
}

func susceptibleUpdate(m *Model, agent AgentID) {
	for _, v := range m.AllVirusDefs() {
		vid := v.ID()
		if m.HasVirus(agent, vid) {
			continue
		}
		for _, nbr := range m.ActiveNeighbors(agent) {
			if !m.HasVirus(nbr, vid) {
				continue
			}
			beta := v.Transmission(m, nbr, agent)
			beta *= 1 - m.Mixer().Transmission(m, nbr, vid)
			beta *= 1 - m.Mixer().Susceptibility(m, agent, vid)
			if m.RNG().Bernoulli(beta) {
				m.EnqueueAddVirus(agent, vid, nbr, true)
				break
			}
		}
	}
}

// infectedUpdate has no separate Dead compartment in the canonical
// three-state layout AddSIRStates registers: both recovery and a fatal
// outcome remove the virus instance and move the host to virus.rm.
// Callers that need a distinct Dead state register their own states
// and update functions instead of calling AddSIRStates.
func infectedUpdate(m *Model, agent AgentID) {
	for _, vid := range m.AgentViruses(agent) {
		v := m.VirusDef(vid)
		rho := v.Recovery(m, agent) * (1 - m.Mixer().RecoveryEnhancer(m, agent, vid))
		if m.RNG().Bernoulli(rho) {
			m.EnqueueRemoveVirus(agent, vid)
			continue
		}
		mu := v.Death(m, agent) * (1 - m.Mixer().DeathReduction(m, agent, vid))
		if m.RNG().Bernoulli(mu) {
			m.EnqueueRemoveVirus(agent, vid)
		}
	}
}

// ConstTransmission/ConstRecovery/ConstDeath build constant-probability
// hooks for VirusDef, the common case where beta/rho/mu do not depend
// on the specific src/dst pair or day.
func ConstTransmission(beta float64) func(m *Model, src, dst AgentID) float64 {
	return func(*Model, AgentID, AgentID) float64 { return beta }
}

func ConstRecovery(rho float64) func(m *Model, agent AgentID) float64 {
	return func(*Model, AgentID) float64 { return rho }
}

func ConstDeath(mu float64) func(m *Model, agent AgentID) float64 {
	return func(*Model, AgentID) float64 { return mu }
}
