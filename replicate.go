package epicore

import "sync"

// ReplicateResult carries one completed replicate's outputs back to
// the caller of RunMultiple.
type ReplicateResult struct {
	Index int
	Seed  int64
	DB    *DataBase
	Err   error
}

// RunMultiple runs nexperiments independent replicates of ndays each,
// fanning work out across nthreads goroutines (grounded on the
// teacher's per-host sync.WaitGroup fan-out in epidemic.go, here
// applied per-replicate instead of per-host). Per-replicate seeds are
// pre-generated from masterSeed in a single pass before any worker
// starts, so the same masterSeed always produces the same per-replicate
// seeds regardless of nthreads. callback, if non-nil, is invoked once
// per completed replicate from the calling goroutine, not from a
// worker — it is always called sequentially in index order.
func (m *Model) RunMultiple(ndays, nexperiments int, masterSeed int64, nthreads int, callback func(ReplicateResult)) ([]*DataBase, error) {
	if nexperiments <= 0 {
		return nil, ConfigError("num_replicates must be >= 1")
	}
	if nthreads <= 0 {
		nthreads = 1
	}

	seeder := NewRNGStream(masterSeed)
	seeds := make([]int64, nexperiments)
	for i := range seeds {
		seeds[i] = seeder.Int63()
	}

	m.snapshotBackups()
	m.built = true

	results := make([]ReplicateResult, nexperiments)

	nw := nthreads
	if nw > nexperiments {
		nw = nexperiments
	}
	// Clone every extra worker's Model before any worker starts, so no
	// clone draws from m's RNG stream while worker 0 is running on m.
	models := make([]*Model, nw)
	models[0] = m
	for w := 1; w < nw; w++ {
		models[w] = m.clone()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func(mm *Model) {
		defer wg.Done()
		for idx := range jobs {
			err := mm.Run(ndays, seeds[idx])
			res := ReplicateResult{Index: idx, Seed: seeds[idx]}
			if err != nil {
				res.Err = err
			} else {
				res.DB = mm.db
			}
			results[idx] = res
		}
	}

	wg.Add(nw)
	for w := 0; w < nw; w++ {
		go worker(models[w])
	}
	for i := 0; i < nexperiments; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	dbs := make([]*DataBase, nexperiments)
	var firstErr error
	for i, res := range results {
		dbs[i] = res.DB
		if res.Err != nil && firstErr == nil {
			firstErr = res.Err
		}
		if callback != nil {
			callback(res)
		}
	}
	return dbs, firstErr
}

// clone returns an independent deep copy of the Model suitable for a
// concurrent RunMultiple worker. States, virus/tool definitions and
// their seeding rules, globals, hooks and the mixer are shared
// read-only (never mutated after configuration). The population/entity
// backups and the network are deep copied (a rewire hook mutates the
// network in place), and the clone gets its own RNG stream seeded from
// one draw of m's; all other per-run state is rebuilt by Reset.
func (m *Model) clone() *Model {
	c := &Model{
		states:         m.states,
		network:        m.network.Copy(),
		virusDefs:      m.virusDefs,
		virusSeeds:     m.virusSeeds,
		toolDefs:       m.toolDefs,
		toolSeeds:      m.toolSeeds,
		globals:        m.globals,
		mixer:          m.mixer,
		rewireFn:       m.rewireFn,
		rewireProp:     m.rewireProp,
		stopCondition:  m.stopCondition,
		queueEnabled:   m.queueEnabled,
		actionHooks:    m.actionHooks,
		rng:            m.rng.Clone(),
		built:          true,
	}
	c.backupAgents = make([]Agent, len(m.backupAgents))
	for i := range m.backupAgents {
		c.backupAgents[i] = m.backupAgents[i].clone()
	}
	c.backupEntities = make([]*Entity, len(m.backupEntities))
	for i, e := range m.backupEntities {
		c.backupEntities[i] = e.clone()
	}
	return c
}
