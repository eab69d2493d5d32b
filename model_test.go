package epicore

import "testing"

// lineNetwork builds the n-node path graph 0-1-...-(n-1).
func lineNetwork(n int) *Network {
	net := NewNetwork()
	for i := 0; i < n-1; i++ {
		net.AddBiConnection(AgentID(i), AgentID(i+1))
	}
	return net
}

func newSIRModel(t *testing.T, net *Network) *Model {
	t.Helper()
	m := NewModel(net)
	m.AddAgents(net.Size())
	if err := AddSIRStates(m); err != nil {
		t.Fatal(err)
	}
	return m
}

// TestModel_SIRLine reproduces a fully deterministic chain infection: a
// 5-agent line graph seeded at the middle agent with beta=1, rho=0, so
// every susceptible neighbor of an infected agent is infected the next
// day with certainty and nobody ever recovers.
func TestModel_SIRLine(t *testing.T) {
	m := newSIRModel(t, lineNetwork(5))

	v, err := NewVirusDef("flu", Infected, Infected, Recovered)
	if err != nil {
		t.Fatal(err)
	}
	v.Transmission = ConstTransmission(1)
	v.Recovery = ConstRecovery(0)
	v.Death = ConstDeath(0)
	if _, err := m.AddVirusFunc(v, func(*Model) []AgentID { return []AgentID{2} }); err != nil {
		t.Fatal(err)
	}

	if err := m.Run(4, -1); err != nil {
		t.Fatal(err)
	}

	want := []int64{1, 3, 5, 5, 5}
	counts := m.DB().Counts()
	if len(counts) != 5 {
		t.Fatalf("len(Counts()) = %d, want 5 (day 0..4)", len(counts))
	}
	for day, w := range want {
		got := counts[day][Infected]
		if got != w {
			t.Errorf("day %d: Infected = %d, want %d", day, got, w)
		}
	}

	for _, tr := range m.DB().Transmissions() {
		if tr.UID.IsNil() {
			t.Errorf("transmission %+v carries a nil instance uid", tr)
		}
	}
}

// TestModel_SIRFullyConnectedRecovers exercises a fully-connected
// population with both transmission and recovery enabled; asserts the
// epidemic eventually burns out (Infected returns to 0) and that the
// transmission log never exceeds one event per possible ordered pair.
func TestModel_SIRFullyConnectedRecovers(t *testing.T) {
	const n = 10
	net := NewNetwork()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			net.AddBiConnection(AgentID(i), AgentID(j))
		}
	}
	m := newSIRModel(t, net)

	v, err := NewVirusDef("flu", Infected, Infected, Recovered)
	if err != nil {
		t.Fatal(err)
	}
	v.Transmission = ConstTransmission(0.5)
	v.Recovery = ConstRecovery(0.5)
	v.Death = ConstDeath(0)
	if _, err := m.AddVirus(v, 0.1); err != nil {
		t.Fatal(err)
	}

	if err := m.Run(20, 1); err != nil {
		t.Fatal(err)
	}

	last := m.DB().Counts()
	finalInfected := last[len(last)-1][Infected]
	if finalInfected != 0 {
		t.Errorf("final Infected count = %d, want 0 after 20 days with recovery enabled", finalInfected)
	}
	if got := len(m.DB().Transmissions()); got > n*(n-1) {
		t.Errorf("transmission log has %d entries, more than the %d ordered-pair ceiling", got, n*(n-1))
	}
}

// TestModel_ReplicateDeterminism checks that RunMultiple's per-replicate
// seeds (and hence outputs) do not depend on how many worker goroutines
// process them.
func TestModel_ReplicateDeterminism(t *testing.T) {
	build := func() *Model {
		m := newSIRModel(t, lineNetwork(6))
		v, err := NewVirusDef("flu", Infected, Infected, Recovered)
		if err != nil {
			t.Fatal(err)
		}
		v.Transmission = ConstTransmission(0.4)
		v.Recovery = ConstRecovery(0.2)
		v.Death = ConstDeath(0)
		if _, err := m.AddVirus(v, 0.2); err != nil {
			t.Fatal(err)
		}
		return m
	}

	serial := build()
	serialDBs, err := serial.RunMultiple(10, 8, 7, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	parallel := build()
	parallelDBs, err := parallel.RunMultiple(10, 8, 7, 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range serialDBs {
		sc := serialDBs[i].Counts()
		pc := parallelDBs[i].Counts()
		if len(sc) != len(pc) {
			t.Fatalf("replicate %d: series length differs (%d vs %d)", i, len(sc), len(pc))
		}
		for day := range sc {
			for state := range sc[day] {
				if sc[day][state] != pc[day][state] {
					t.Errorf("replicate %d day %d state %d: serial=%d parallel=%d",
						i, day, state, sc[day][state], pc[day][state])
				}
			}
		}
	}
}

// TestModel_DoubleInfectionGuard checks that EnqueueAddVirus is a no-op
// once an agent already hosts the virus (spec.md's double-infection
// guard), instead of layering a second instance.
func TestModel_DoubleInfectionGuard(t *testing.T) {
	m := newSIRModel(t, lineNetwork(2))
	v, err := NewVirusDef("flu", Infected, Infected, Recovered)
	if err != nil {
		t.Fatal(err)
	}
	v.Transmission = ConstTransmission(1)
	v.Recovery = ConstRecovery(0)
	v.Death = ConstDeath(0)
	vid, err := m.AddVirusFunc(v, func(*Model) []AgentID { return []AgentID{0} })
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Reset(); err != nil {
		t.Fatal(err)
	}
	m.EnqueueAddVirus(0, vid, 1, true)
	if err := m.flush(); err != nil {
		t.Fatal(err)
	}
	if n := m.Agent(0).NumViruses(); n != 1 {
		t.Errorf("NumViruses() = %d, want 1 after a redundant EnqueueAddVirus", n)
	}
}

// TestModel_EmptyPopulationFails checks the configuration guard on Run.
func TestModel_EmptyPopulationFails(t *testing.T) {
	m := NewModel(NewNetwork())
	if err := m.Run(1, -1); err == nil {
		t.Error("expected a ConfigError for an empty population")
	}
}

// TestModel_NoStatesFails checks the configuration guard on Run.
func TestModel_NoStatesFails(t *testing.T) {
	m := NewModel(NewNetwork())
	m.AddAgents(3)
	if err := m.Run(1, -1); err == nil {
		t.Error("expected a ConfigError when no states are registered")
	}
}
