package epicore

import (
	"math"
	"testing"
)

func newTestModelForMixer(t *testing.T, nagents int) *Model {
	t.Helper()
	m := NewModel(NewNetwork())
	m.AddAgents(nagents)
	return m
}

func TestDefaultMixer_NoToolsIsIdentity(t *testing.T) {
	m := newTestModelForMixer(t, 1)
	mixer := DefaultMixer{}
	if got := mixer.Susceptibility(m, 0, 0); got != 0 {
		t.Errorf("Susceptibility with zero tools = %f, want 0", got)
	}
}

func TestDefaultMixer_IndependentProtection(t *testing.T) {
	m := newTestModelForMixer(t, 1)

	half := func(*Model, AgentID, VirusID) float64 { return 0.5 }
	zero := func(*Model, AgentID, VirusID) float64 { return 0 }

	t1 := NewToolDef("mask")
	t1.SusceptibilityReduction = half
	t1.TransmissionReduction = zero
	t1.RecoveryEnhancer = zero
	t1.DeathReduction = zero
	if _, err := m.AddTool(t1, 1); err != nil {
		t.Fatal(err)
	}

	t2 := NewToolDef("vaccine")
	t2.SusceptibilityReduction = half
	t2.TransmissionReduction = zero
	t2.RecoveryEnhancer = zero
	t2.DeathReduction = zero
	if _, err := m.AddTool(t2, 1); err != nil {
		t.Fatal(err)
	}

	// Attach both tool instances to agent 0 directly, bypassing
	// enqueue/flush since this test only exercises the mixer formula.
	idx1 := len(m.toolInstances)
	m.toolInstances = append(m.toolInstances, newToolInstance(t1.ID(), 0))
	m.agents[0].toolInst = append(m.agents[0].toolInst, idx1)

	idx2 := len(m.toolInstances)
	m.toolInstances = append(m.toolInstances, newToolInstance(t2.ID(), 0))
	m.agents[0].toolInst = append(m.agents[0].toolInst, idx2)

	got := m.mixer.Susceptibility(m, 0, 0)
	want := 0.75 // 1 - (1-0.5)*(1-0.5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("combined susceptibility reduction = %f, want %f", got, want)
	}
}

func TestDefaultMixer_DeadInstanceIgnored(t *testing.T) {
	m := newTestModelForMixer(t, 1)
	half := func(*Model, AgentID, VirusID) float64 { return 0.5 }
	tool := NewToolDef("mask")
	tool.SusceptibilityReduction = half
	if _, err := m.AddTool(tool, 1); err != nil {
		t.Fatal(err)
	}
	idx := len(m.toolInstances)
	inst := newToolInstance(tool.ID(), 0)
	inst.alive = false
	m.toolInstances = append(m.toolInstances, inst)
	m.agents[0].toolInst = append(m.agents[0].toolInst, idx)

	if got := m.mixer.Susceptibility(m, 0, 0); got != 0 {
		t.Errorf("a dead tool instance must not contribute to the mix, got %f", got)
	}
}
