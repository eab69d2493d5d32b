package epicore

import "testing"

func TestTransmissionQueue_DisabledAlwaysActive(t *testing.T) {
	q := newTransmissionQueue(3)
	if !q.Active(0) || !q.Active(1) || !q.Active(2) {
		t.Error("a disabled queue must treat every agent as active")
	}
}

func TestTransmissionQueue_BumpAndInvariant(t *testing.T) {
	q := newTransmissionQueue(3)
	q.Enable()

	q.bump(0, 2)
	q.bump(1, -1)
	if q.Active(0) != true {
		t.Error("agent 0 with q=2 should be active")
	}
	if q.Active(1) != false {
		t.Error("agent 1 with q=-1 should not be active")
	}
	if _, bad := q.checkInvariant(); !bad {
		t.Error("expected checkInvariant to flag the negative counter")
	}

	q.bump(1, 1)
	if _, bad := q.checkInvariant(); bad {
		t.Error("checkInvariant should pass once every counter is >= 0")
	}
}

func TestTransmissionQueue_Resize(t *testing.T) {
	q := newTransmissionQueue(2)
	q.bump(1, 5)
	q.resize(4)
	if len(q.q) != 4 {
		t.Fatalf("len(q.q) = %d, want 4", len(q.q))
	}
	if q.Value(1) != 5 {
		t.Errorf("resize must preserve existing counters, got %d", q.Value(1))
	}
	if q.Value(3) != 0 {
		t.Errorf("newly grown slots must start at 0, got %d", q.Value(3))
	}
}

func TestTransmissionQueue_Clone(t *testing.T) {
	q := newTransmissionQueue(2)
	q.Enable()
	q.bump(0, 3)

	c := q.clone()
	c.bump(0, 1)
	if q.Value(0) == c.Value(0) {
		t.Error("clone must not share backing storage with the original")
	}
}
