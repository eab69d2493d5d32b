package epicore

// Mixer combines the effects of every tool an agent holds into one
// effective probability per spec.md §4.3. Implementations must
// preserve the identity "zero tools ⇒ reduction 0"; DefaultMixer does
// so by construction since an empty product of complements is 1.
type Mixer interface {
	Susceptibility(m *Model, agent AgentID, v VirusID) float64
	Transmission(m *Model, agent AgentID, v VirusID) float64
	RecoveryEnhancer(m *Model, agent AgentID, v VirusID) float64
	DeathReduction(m *Model, agent AgentID, v VirusID) float64
}

// DefaultMixer implements the spec's "independent protection" formula:
// effective = 1 - product(1 - effect_k) over every tool the agent
// holds, clamped to [0,1].
type DefaultMixer struct{}

func (DefaultMixer) Susceptibility(m *Model, agent AgentID, v VirusID) float64 {
	return mix(m, agent, v, func(t *ToolDef, m *Model, a AgentID, v VirusID) float64 {
		return t.SusceptibilityReduction(m, a, v)
	})
}

func (DefaultMixer) Transmission(m *Model, agent AgentID, v VirusID) float64 {
	return mix(m, agent, v, func(t *ToolDef, m *Model, a AgentID, v VirusID) float64 {
		return t.TransmissionReduction(m, a, v)
	})
}

func (DefaultMixer) RecoveryEnhancer(m *Model, agent AgentID, v VirusID) float64 {
	return mix(m, agent, v, func(t *ToolDef, m *Model, a AgentID, v VirusID) float64 {
		return t.RecoveryEnhancer(m, a, v)
	})
}

func (DefaultMixer) DeathReduction(m *Model, agent AgentID, v VirusID) float64 {
	return mix(m, agent, v, func(t *ToolDef, m *Model, a AgentID, v VirusID) float64 {
		return t.DeathReduction(m, a, v)
	})
}

func mix(m *Model, agent AgentID, v VirusID, effect func(*ToolDef, *Model, AgentID, VirusID) float64) float64 {
	complement := 1.0
	for _, idx := range m.agents[agent].toolInst {
		inst := m.toolInstances[idx]
		if !inst.alive {
			continue
		}
		def := m.toolDefs[inst.tid]
		e := effect(def, m, agent, v)
		if e < 0 {
			e = 0
		} else if e > 1 {
			e = 1
		}
		complement *= 1 - e
	}
	result := 1 - complement
	if result < 0 {
		result = 0
	} else if result > 1 {
		result = 1
	}
	return result
}
