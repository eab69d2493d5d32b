package epicore

import (
	"testing"

	"github.com/segmentio/ksuid"
)

func TestDataBase_UpdateAndUndoState(t *testing.T) {
	db := newDataBase(3)
	db.seedCounts([]int64{5, 0, 0})

	db.updateState(0, 1) // S -> I
	if db.current[0] != 4 || db.current[1] != 1 {
		t.Fatalf("after S->I: current = %v", db.current)
	}

	// Same-day correction: agent moves I -> R, but the undo-redo
	// contract is to undo the S->I transition before applying S->R
	// directly, netting to exactly one population-wide transition.
	db.undoState(0, 1)
	db.updateState(0, 2) // S -> R
	if db.current[0] != 4 || db.current[1] != 0 || db.current[2] != 1 {
		t.Fatalf("after undo-redo to S->R: current = %v", db.current)
	}
	if db.todayTransitions[transitionKey{0, 1}] != 0 {
		t.Errorf("S->I transition count should net to 0, got %d", db.todayTransitions[transitionKey{0, 1}])
	}
	if db.todayTransitions[transitionKey{0, 2}] != 1 {
		t.Errorf("S->R transition count should be 1, got %d", db.todayTransitions[transitionKey{0, 2}])
	}
}

func TestDataBase_RecordSnapshotsSeries(t *testing.T) {
	db := newDataBase(2)
	db.seedCounts([]int64{2, 0})
	db.record()
	db.updateState(0, 1)
	db.record()

	if len(db.series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(db.series))
	}
	if db.series[0][0] != 2 || db.series[1][0] != 1 {
		t.Errorf("series = %v", db.series)
	}
	// Mutating the live census after record() must not retroactively
	// change the already-taken snapshot.
	db.current[0] = 99
	if db.series[1][0] == 99 {
		t.Error("record() must copy the census, not alias it")
	}
}

func TestDataBase_ReproductiveNumberOK(t *testing.T) {
	db := newDataBase(2)
	db.seedCounts([]int64{3, 0})

	// Agent 0 infected on day 0 infects agents 1 and 2 on day 1.
	db.onVirusAcquired(0, 0, 0)
	db.onVirusAcquired(0, 1, 1)
	db.onVirusAcquired(0, 2, 1)
	db.recordTransmission(1, 0, 1, 0, ksuid.Nil)
	db.recordTransmission(1, 0, 2, 0, ksuid.Nil)
	db.computeDerived()

	rt, ok := db.ReproductiveNumberOK(0, 0)
	if !ok {
		t.Fatal("expected a cached Rt for the day-0 cohort")
	}
	if rt != 2 {
		t.Errorf("Rt(day 0) = %f, want 2 (agent 0 infected 2 others)", rt)
	}

	if _, ok := db.ReproductiveNumberOK(0, 5); ok {
		t.Error("expected no cached Rt for a day with no first infections")
	}
	if _, ok := db.ReproductiveNumberOK(VirusID(9), 0); ok {
		t.Error("expected no cached Rt for an unregistered virus")
	}
}

func TestDataBase_GenerationTime(t *testing.T) {
	db := newDataBase(2)
	db.seedCounts([]int64{4, 0})

	// A linear transmission chain 0 -> 1 -> 2 -> 3, one day apart each
	// hop: generation time should be exactly 1.0.
	db.onVirusAcquired(0, 0, 0)
	db.onVirusAcquired(0, 1, 1)
	db.onVirusAcquired(0, 2, 2)
	db.onVirusAcquired(0, 3, 3)
	db.recordTransmission(1, 0, 1, 0, ksuid.Nil)
	db.recordTransmission(2, 1, 2, 0, ksuid.Nil)
	db.recordTransmission(3, 2, 3, 0, ksuid.Nil)
	db.computeDerived()

	if got := db.GenerationTime(0); got != 1.0 {
		t.Errorf("GenerationTime = %f, want 1.0", got)
	}
}

func TestDataBase_UpdateVirusesAndTools(t *testing.T) {
	db := newDataBase(2)
	db.updateVirusesAndTools([]VirusID{0, 1}, []ToolID{0}, 0, 1)
	if db.vcurrent[0][1] != 1 || db.vcurrent[1][1] != 1 || db.tcurrent[0][1] != 1 {
		t.Errorf("expected both viruses and the tool to advance: v0=%v v1=%v t0=%v",
			db.vcurrent[0], db.vcurrent[1], db.tcurrent[0])
	}
	db.undoVirusesAndTools([]VirusID{0, 1}, []ToolID{0}, 0, 1)
	if db.vcurrent[0][1] != 0 || db.vcurrent[1][1] != 0 || db.tcurrent[0][1] != 0 {
		t.Error("undo should net every touched census back to zero")
	}
}
