package epicore

import "github.com/segmentio/ksuid"

// transitionKey identifies a (from,to) state pair for the per-day
// transition-count table spec.md §6 serializes as `_transition.csv`.
type transitionKey struct{ from, to int }

// TransmissionRecord is one row of the append-only transmission log:
// (day, src, dst, vid). UID is the acquired virusInstance's arena
// identity, carried through so co-infections of the same VirusID (e.g.
// after a mutation event) remain distinguishable downstream.
type TransmissionRecord struct {
	Day         int
	Src, Dst    AgentID
	Virus       VirusID
	UID         ksuid.KSUID
}

// DataBase accumulates the accounting spec.md §4.6 requires: per-day
// state counts, per-virus/tool state counts, a transmission log, and
// the derived reproductive-number / generation-time outputs.
type DataBase struct {
	nstates int
	today   int

	// current holds the live per-state census, mutated in place by
	// updateState/undoState; series[d] is a snapshot taken by record().
	current []int64
	series  [][]int64

	vcurrent map[VirusID][]int64
	vseries  map[VirusID][][]int64

	tcurrent map[ToolID][]int64
	tseries  map[ToolID][][]int64

	entityCurrent map[EntityID][]int64
	entitySeries  map[EntityID][][]int64

	todayTransitions map[transitionKey]int64
	transitionLog    []map[transitionKey]int64 // transitionLog[d]

	transmissions []TransmissionRecord

	// firstSeen[vid] is the first day vid appeared anywhere.
	firstSeen map[VirusID]int
	// infectedDay[vid][agent] is the day agent first hosted vid.
	infectedDay map[VirusID]map[AgentID]int

	rtCache  map[VirusID]map[int]float64 // Rt[vid][day-first-infected]
	genCache map[VirusID]float64
}

// newDataBase creates an empty DataBase sized for nstates states.
func newDataBase(nstates int) *DataBase {
	return &DataBase{
		nstates:          nstates,
		current:          make([]int64, nstates),
		vcurrent:         make(map[VirusID][]int64),
		vseries:          make(map[VirusID][][]int64),
		tcurrent:         make(map[ToolID][]int64),
		tseries:          make(map[ToolID][][]int64),
		entityCurrent:    make(map[EntityID][]int64),
		entitySeries:     make(map[EntityID][][]int64),
		todayTransitions: make(map[transitionKey]int64),
		firstSeen:        make(map[VirusID]int),
		infectedDay:      make(map[VirusID]map[AgentID]int),
		rtCache:          make(map[VirusID]map[int]float64),
		genCache:         make(map[VirusID]float64),
	}
}

// reset clears all accumulated data, used by Model.Reset.
func (db *DataBase) reset() {
	*db = *newDataBase(db.nstates)
}

// seedCounts initializes the live census from the starting population
// — called once, before day 0's first record().
func (db *DataBase) seedCounts(counts []int64) {
	copy(db.current, counts)
}

// registerVirus/registerTool ensure per-virus/tool series exist.
func (db *DataBase) registerVirus(vid VirusID) {
	if _, ok := db.vcurrent[vid]; !ok {
		db.vcurrent[vid] = make([]int64, db.nstates)
	}
}

func (db *DataBase) registerTool(tid ToolID) {
	if _, ok := db.tcurrent[tid]; !ok {
		db.tcurrent[tid] = make([]int64, db.nstates)
	}
}

func (db *DataBase) registerEntity(eid EntityID) {
	if _, ok := db.entityCurrent[eid]; !ok {
		db.entityCurrent[eid] = make([]int64, db.nstates)
	}
}

// updateState applies a forward state transition to the live census
// and bumps the per-day transition count.
func (db *DataBase) updateState(old, new int) {
	db.current[old]--
	db.current[new]++
	db.todayTransitions[transitionKey{old, new}]++
}

// undoState reverses a previously-applied forward transition, used by
// Model.flush's undo-redo accounting when an agent changes state twice
// in the same day (spec.md §4.2 step 3).
func (db *DataBase) undoState(old, new int) {
	db.current[old]++
	db.current[new]--
	db.todayTransitions[transitionKey{old, new}]--
}

// updateVirus/updateTool mirror updateState for per-virus/tool census,
// with no transition-count bookkeeping (the spec only requires that
// for the population-wide table).
func (db *DataBase) updateVirus(vid VirusID, old, new int) {
	db.registerVirus(vid)
	db.vcurrent[vid][old]--
	db.vcurrent[vid][new]++
}

func (db *DataBase) undoVirus(vid VirusID, old, new int) {
	db.registerVirus(vid)
	db.vcurrent[vid][old]++
	db.vcurrent[vid][new]--
}

func (db *DataBase) updateTool(tid ToolID, old, new int) {
	db.registerTool(tid)
	db.tcurrent[tid][old]--
	db.tcurrent[tid][new]++
}

func (db *DataBase) undoTool(tid ToolID, old, new int) {
	db.registerTool(tid)
	db.tcurrent[tid][old]++
	db.tcurrent[tid][new]--
}

func (db *DataBase) updateEntity(eid EntityID, old, new int) {
	db.registerEntity(eid)
	db.entityCurrent[eid][old]--
	db.entityCurrent[eid][new]++
}

func (db *DataBase) undoEntity(eid EntityID, old, new int) {
	db.registerEntity(eid)
	db.entityCurrent[eid][old]++
	db.entityCurrent[eid][new]--
}

// onVirusAcquired records that agent first hosts vid (idempotent per
// agent/vid pair) — the bookkeeping record_transmission needs to later
// compute generation time and Rt.
func (db *DataBase) onVirusAcquired(vid VirusID, agent AgentID, day int) {
	if _, ok := db.firstSeen[vid]; !ok {
		db.firstSeen[vid] = day
	}
	if db.infectedDay[vid] == nil {
		db.infectedDay[vid] = make(map[AgentID]int)
	}
	if _, ok := db.infectedDay[vid][agent]; !ok {
		db.infectedDay[vid][agent] = day
	}
}

// recordTransmission appends (day,src,dst,vid,uid) to the transmission
// log. Per spec.md §4.6, src/dst infection-state membership is the
// caller's responsibility (the state machine only enqueues a
// transmission-backed AddVirusAction when src is in an infecting
// state).
func (db *DataBase) recordTransmission(day int, src, dst AgentID, vid VirusID, uid ksuid.KSUID) {
	db.transmissions = append(db.transmissions, TransmissionRecord{Day: day, Src: src, Dst: dst, Virus: vid, UID: uid})
}

// record snapshots the live census into the permanent time series,
// snapshots today's transition counts, and advances derived Rt/gen
// time outputs. Called once per day, after all of that day's flushes.
func (db *DataBase) record() {
	snapshot := make([]int64, db.nstates)
	copy(snapshot, db.current)
	db.series = append(db.series, snapshot)

	for vid, cur := range db.vcurrent {
		s := make([]int64, db.nstates)
		copy(s, cur)
		db.vseries[vid] = append(db.vseries[vid], s)
	}
	for tid, cur := range db.tcurrent {
		s := make([]int64, db.nstates)
		copy(s, cur)
		db.tseries[tid] = append(db.tseries[tid], s)
	}
	for eid, cur := range db.entityCurrent {
		s := make([]int64, db.nstates)
		copy(s, cur)
		db.entitySeries[eid] = append(db.entitySeries[eid], s)
	}

	snapTrans := make(map[transitionKey]int64, len(db.todayTransitions))
	for k, v := range db.todayTransitions {
		snapTrans[k] = v
	}
	db.transitionLog = append(db.transitionLog, snapTrans)
	db.todayTransitions = make(map[transitionKey]int64)

	db.computeDerived()
	db.today++
}

// computeDerived recomputes Rt (per virus, per cohort-first-infected
// day) and mean generation time from the transmission log. Recomputed
// "on write" (spec.md §4.6) rather than lazily on read, so a
// mid-run callback observes up-to-date values.
func (db *DataBase) computeDerived() {
	outDegree := make(map[VirusID]map[AgentID]int64)
	for _, t := range db.transmissions {
		if outDegree[t.Virus] == nil {
			outDegree[t.Virus] = make(map[AgentID]int64)
		}
		outDegree[t.Virus][t.Src]++
	}

	for vid, byAgent := range db.infectedDay {
		cohorts := make(map[int][]AgentID)
		for agent, day := range byAgent {
			cohorts[day] = append(cohorts[day], agent)
		}
		rt := make(map[int]float64, len(cohorts))
		for day, agents := range cohorts {
			var total int64
			for _, a := range agents {
				total += outDegree[vid][a]
			}
			rt[day] = float64(total) / float64(len(agents))
		}
		db.rtCache[vid] = rt
	}

	for vid := range db.infectedDay {
		var sum float64
		var n int
		for _, t := range db.transmissions {
			if t.Virus != vid {
				continue
			}
			srcDay, ok := db.infectedDay[vid][t.Src]
			if !ok {
				continue
			}
			sum += float64(t.Day - srcDay)
			n++
		}
		if n > 0 {
			db.genCache[vid] = sum / float64(n)
		}
	}
}

// updateVirusesAndTools applies updateVirus/updateTool for every virus
// and tool id in vids/tids, using the same (old,new) state pair —
// Model.flush's way of keeping per-pathogen census in sync with the
// population-wide one without a separate finalizer per instance.
func (db *DataBase) updateVirusesAndTools(vids []VirusID, tids []ToolID, old, new int) {
	for _, vid := range vids {
		db.updateVirus(vid, old, new)
	}
	for _, tid := range tids {
		db.updateTool(tid, old, new)
	}
}

// undoVirusesAndTools is the undoState counterpart of
// updateVirusesAndTools, used by the undo-redo branch of flush.
func (db *DataBase) undoVirusesAndTools(vids []VirusID, tids []ToolID, old, new int) {
	for _, vid := range vids {
		db.undoVirus(vid, old, new)
	}
	for _, tid := range tids {
		db.undoTool(tid, old, new)
	}
}

// Counts returns the per-day, per-state time series recorded so far.
func (db *DataBase) Counts() [][]int64 {
	return db.series
}

// VirusCounts returns the per-day, per-state time series for vid.
func (db *DataBase) VirusCounts(vid VirusID) [][]int64 {
	return db.vseries[vid]
}

// ToolCounts returns the per-day, per-state time series for tid.
func (db *DataBase) ToolCounts(tid ToolID) [][]int64 {
	return db.tseries[tid]
}

// Transmissions returns the full append-only transmission log.
func (db *DataBase) Transmissions() []TransmissionRecord {
	return db.transmissions
}

// Transitions returns the (from,to)->count table for day d.
func (db *DataBase) Transitions(day int) map[transitionKey]int64 {
	if day < 0 || day >= len(db.transitionLog) {
		return nil
	}
	return db.transitionLog[day]
}

// ReproductiveNumber returns the mean out-degree of agents first
// infected by vid on day d.
func (db *DataBase) ReproductiveNumber(vid VirusID, day int) float64 {
	return db.rtCache[vid][day]
}

// ReproductiveNumberOK is ReproductiveNumber plus a presence flag,
// distinguishing "no agent was first infected by vid on day d" from a
// genuine Rt of 0 (a cohort that infected no one onward).
func (db *DataBase) ReproductiveNumberOK(vid VirusID, day int) (float64, bool) {
	byDay, ok := db.rtCache[vid]
	if !ok {
		return 0, false
	}
	v, ok := byDay[day]
	return v, ok
}

// GenerationTime returns the mean generation time for vid across the
// whole run.
func (db *DataBase) GenerationTime(vid VirusID) float64 {
	return db.genCache[vid]
}
