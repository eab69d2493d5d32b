package epicore

import "github.com/segmentio/ksuid"

// VirusID identifies a registered virus definition.
type VirusID int

// noTransition marks an undefined state transition on a VirusDef,
// mirroring the sentinel "-99" the spec calls out for init/post.
const noTransition = -99

// VirusDef is a registered virus "kind": its name, its probability
// hooks, its configured state transitions, and its transmission-queue
// deltas. Agents host zero or more *instances* of a VirusDef — see
// virusInstance below.
type VirusDef struct {
	id   VirusID
	name string

	// Transmission returns beta for a src/dst pair hosting this virus.
	Transmission func(m *Model, src, dst AgentID) float64
	// Recovery returns rho, the per-day recovery probability.
	Recovery func(m *Model, agent AgentID) float64
	// Death returns mu, the per-day death probability.
	Death func(m *Model, agent AgentID) float64
	// Incubation returns the probability an exposed host becomes
	// infective on a given day; nil means immediate (SIR-style).
	Incubation func(m *Model, agent AgentID) float64

	// Init is the state assigned to a host on acquisition.
	Init int
	// Post is the state assigned on natural progression (no virus
	// add/remove involved). Equal to Init for simple SIR-style models.
	Post int
	// Rm is the state assigned on removal/recovery.
	Rm int

	// QInit/QPost/QRm are the transmission-queue deltas applied on
	// the respective transition, one of {-2,-1,0,1,2}.
	QInit, QPost, QRm int

	// Mutate optionally produces a mutated VirusID to replace this
	// instance's identity during the mutate_viruses phase. Returning
	// the same id (or nil) means no mutation occurred.
	Mutate func(m *Model, agent AgentID, current VirusID) VirusID
}

// NewVirusDef creates a virus with the given name and required
// (init,post,rm) state trio. Returns a ConfigError if init or post is
// left at the sentinel (undefined).
func NewVirusDef(name string, init, post, rm int) (*VirusDef, error) {
	if init == noTransition || post == noTransition {
		return nil, ConfigError("virus %q is missing an init/post state transition", name)
	}
	return &VirusDef{
		name: name,
		Init: init, Post: post, Rm: rm,
		QInit: 2, QPost: 0, QRm: -2,
	}, nil
}

// ID returns the virus's registered identity once added to a Model.
func (v *VirusDef) ID() VirusID { return v.id }

// Name returns the virus's display name.
func (v *VirusDef) Name() string { return v.name }

// virusInstance is one hosted occurrence of a VirusDef, arena-indexed
// from Model.virusInstances. host is a back-reference, not an owning
// pointer, per spec.md §9's arena+indices resolution of the source's
// pointer cycles. uid distinguishes co-infections of differently
// instantiated viruses sharing one VirusID (e.g. after a mutation
// event) in the transmission log.
type virusInstance struct {
	vid   VirusID
	host  AgentID
	alive bool
	uid   ksuid.KSUID
}

func newVirusInstance(vid VirusID, host AgentID) virusInstance {
	return virusInstance{vid: vid, host: host, alive: true, uid: ksuid.New()}
}
