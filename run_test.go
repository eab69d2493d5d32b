package epicore

import (
	"strings"
	"testing"
)

func newRunTestModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel(NewNetwork())
	m.AddAgents(1)
	if _, err := m.AddState("Susceptible", nil); err != nil {
		t.Fatal(err)
	}
	if err := m.Reset(); err != nil {
		t.Fatal(err)
	}
	return m
}

func wantRangeError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a RangeError, got nil")
	}
	if !strings.Contains(err.Error(), "range error") {
		t.Errorf("expected a range error, got: %v", err)
	}
}

// TestFlush_InvalidQueueDelta covers spec.md §7's queue-delta trigger:
// a delta outside {-2,-1,0,1,2} must raise a RangeError, not silently
// no-op.
func TestFlush_InvalidQueueDelta(t *testing.T) {
	m := newRunTestModel(t)
	m.Enqueue(Action{Agent: 0, NewState: NoStateChange, Q: 5})
	wantRangeError(t, m.flush())
}

// TestFlush_InvalidRemoveVirusIndex covers spec.md §7's finalizer
// trigger: removing a virus instance at an out-of-range index into the
// agent's hosted list must raise a RangeError instead of being silently
// skipped.
func TestFlush_InvalidRemoveVirusIndex(t *testing.T) {
	m := newRunTestModel(t)
	m.Enqueue(Action{Agent: 0, finalizer: finalizerRemoveVirus, scratch0: 0, NewState: NoStateChange})
	wantRangeError(t, m.flush())
}

// TestFlush_InvalidRemoveToolIndex is the tool-removal counterpart of
// TestFlush_InvalidRemoveVirusIndex.
func TestFlush_InvalidRemoveToolIndex(t *testing.T) {
	m := newRunTestModel(t)
	m.Enqueue(Action{Agent: 0, finalizer: finalizerRemoveTool, scratch0: 0, NewState: NoStateChange})
	wantRangeError(t, m.flush())
}

// TestFlush_InvalidNewState covers spec.md §7's state-bound trigger: a
// state change must not silently assign agent.state past the number
// of registered states.
func TestFlush_InvalidNewState(t *testing.T) {
	m := newRunTestModel(t)
	m.Enqueue(Action{Agent: 0, NewState: 99})
	wantRangeError(t, m.flush())

	if got := m.Agent(0).State(); got != 0 {
		t.Errorf("agent state = %d, want unchanged at 0 after a rejected out-of-range transition", got)
	}
}
