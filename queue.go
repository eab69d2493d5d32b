package epicore

// TransmissionQueue is the per-agent activity mask described by
// spec.md §4.4: q[i] > 0 means agent i must be processed this step,
// zero means it may be skipped. It is mutated exclusively through
// action-queue deltas applied during flush (see Model.applyQueueDelta).
type TransmissionQueue struct {
	enabled bool
	q       []int32
}

// newTransmissionQueue creates a queue of size n, disabled by default
// (every agent processed every day, equivalent to queuing being off).
func newTransmissionQueue(n int) TransmissionQueue {
	return TransmissionQueue{q: make([]int32, n)}
}

// Enable turns on queue-based skipping.
func (t *TransmissionQueue) Enable() { t.enabled = true }

// Disable turns off queue-based skipping; Active then always reports
// true.
func (t *TransmissionQueue) Disable() { t.enabled = false }

// Enabled reports whether queue-based skipping is active.
func (t *TransmissionQueue) Enabled() bool { return t.enabled }

// Active reports whether agent i should be processed this step. When
// queuing is disabled, every agent is always active.
func (t *TransmissionQueue) Active(i AgentID) bool {
	if !t.enabled {
		return true
	}
	return t.q[i] > 0
}

// Value returns the raw counter for agent i.
func (t *TransmissionQueue) Value(i AgentID) int32 {
	return t.q[i]
}

// bump applies delta to agent i's counter. Transient negative values
// are allowed mid-flush (spec.md §9's open question); only the
// post-flush value is checked, by checkInvariant.
func (t *TransmissionQueue) bump(i AgentID, delta int32) {
	t.q[i] += delta
}

// checkInvariant reports the first agent id found with q[i] < 0 after
// a flush, per spec.md §4.4: "violation indicates an asymmetric
// q_init/q_rm pair, which is a model-author error."
func (t *TransmissionQueue) checkInvariant() (AgentID, bool) {
	if !t.enabled {
		return 0, false
	}
	for i, v := range t.q {
		if v < 0 {
			return AgentID(i), true
		}
	}
	return 0, false
}

// resize sets the backing vector to n agents, keeping existing
// counters and zeroing new slots; a smaller n truncates.
func (t *TransmissionQueue) resize(n int) {
	if n <= len(t.q) {
		t.q = t.q[:n]
		return
	}
	grown := make([]int32, n)
	copy(grown, t.q)
	t.q = grown
}

// clone returns an independent copy of the queue.
func (t *TransmissionQueue) clone() TransmissionQueue {
	c := TransmissionQueue{enabled: t.enabled, q: make([]int32, len(t.q))}
	copy(c.q, t.q)
	return c
}
