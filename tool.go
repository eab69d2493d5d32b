package epicore

// ToolID identifies a registered tool definition.
type ToolID int

// ToolDef is a registered intervention: its name, its four effect
// hooks (each expected to return a value in [0,1]), and its state
// trio. Multiple tools held by one agent combine via the Model's
// Mixer (see mixer.go).
type ToolDef struct {
	id   ToolID
	name string

	// SusceptibilityReduction returns the fraction by which this tool
	// reduces the host's chance of acquiring virus v.
	SusceptibilityReduction func(m *Model, agent AgentID, v VirusID) float64
	// TransmissionReduction returns the fraction by which this tool
	// reduces the host's chance of transmitting virus v.
	TransmissionReduction func(m *Model, agent AgentID, v VirusID) float64
	// RecoveryEnhancer returns the fraction by which this tool
	// increases the host's chance of recovering from virus v.
	RecoveryEnhancer func(m *Model, agent AgentID, v VirusID) float64
	// DeathReduction returns the fraction by which this tool reduces
	// the host's chance of dying from virus v.
	DeathReduction func(m *Model, agent AgentID, v VirusID) float64

	// Init is the state assigned to a host on tool acquisition
	// (Model.EnqueueAddTool), Post the state assigned when the tool is
	// removed (Model.EnqueueRemoveTool). Either left at noTransition
	// means the host's state does not change.
	Init, Post int
}

// NewToolDef creates a tool with the given name and zero-effect hooks;
// callers set whichever effect(s) the tool provides.
func NewToolDef(name string) *ToolDef {
	zero := func(*Model, AgentID, VirusID) float64 { return 0 }
	return &ToolDef{
		name:                    name,
		SusceptibilityReduction: zero,
		TransmissionReduction:   zero,
		RecoveryEnhancer:        zero,
		DeathReduction:          zero,
		Init:                    noTransition,
		Post:                    noTransition,
	}
}

// ID returns the tool's registered identity once added to a Model.
func (t *ToolDef) ID() ToolID { return t.id }

// Name returns the tool's display name.
func (t *ToolDef) Name() string { return t.name }

// toolInstance is one hosted occurrence of a ToolDef, arena-indexed
// from Model.toolInstances. Unlike virusInstance, tools have no
// transmission-style acquisition log for an external identity to
// surface through, so instances are distinguished structurally by
// (tid,host) rather than carrying an instance uid.
type toolInstance struct {
	tid   ToolID
	host  AgentID
	alive bool
}

func newToolInstance(tid ToolID, host AgentID) toolInstance {
	return toolInstance{tid: tid, host: host, alive: true}
}
