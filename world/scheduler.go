package world

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// Phase is one of the four fixed update stages a tick runs through, in
// this fixed order: PreAsync completes before any Async begins, all
// Async complete before any PostAsync begins, PostTransform runs last.
type Phase uint8

const (
	PreAsync Phase = iota
	Async
	PostAsync
	PostTransform
	phaseCount
)

// UpdateFunc is one registered per-component-type update entry point.
// batchIndex/batchCount identify which disjoint slice of the function's
// own component set this invocation owns: an Async registration with
// Granularity N is invoked N times concurrently, once per batchIndex in
// [0,N), and must restrict itself to the subset ComponentManager.Batch
// returns for that (batchIndex, batchCount) pair. Sequential phases
// always call with (0, 1), i.e. the whole set.
type UpdateFunc func(w *World, batchIndex, batchCount int)

// UpdateRegistration describes one update function's scheduling
// metadata, mirroring the manager-registration fields the source
// declares: phase, priority, granularity (Async batch size), whether it
// only runs during simulation, and its dependency names.
type UpdateRegistration struct {
	Name               string
	Phase              Phase
	Priority           int
	Granularity        int
	OnlyWhenSimulating bool
	DependsOn          []string
	Fn                 UpdateFunc
}

// Scheduler partitions registered update functions into phases, sorts
// each phase by priority (ties by registration order) and dependency,
// and runs them every tick; Async functions run concurrently in
// batches of their declared granularity via an errgroup, the same
// bounded-fan-out shape the resource worker pool uses for loads.
type Scheduler struct {
	phases [phaseCount][]*UpdateRegistration
	byName map[string]*UpdateRegistration
}

func NewScheduler() *Scheduler {
	return &Scheduler{byName: make(map[string]*UpdateRegistration)}
}

// Register adds reg to its declared phase. Call Finalize after every
// Register and before the first RunTick to resolve dependency order.
func (s *Scheduler) Register(reg *UpdateRegistration) {
	s.phases[reg.Phase] = append(s.phases[reg.Phase], reg)
	s.byName[reg.Name] = reg
}

// Finalize sorts every phase by priority (registration order breaking
// ties) and then stable-topo-sorts within that order so a function
// never runs before something it depends on.
func (s *Scheduler) Finalize() error {
	for p := range s.phases {
		regs := s.phases[p]
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].Priority < regs[j].Priority })
		ordered, err := topoSort(regs)
		if err != nil {
			return err
		}
		s.phases[p] = ordered
	}
	return nil
}

func topoSort(regs []*UpdateRegistration) ([]*UpdateRegistration, error) {
	byName := make(map[string]*UpdateRegistration, len(regs))
	for _, r := range regs {
		byName[r.Name] = r
	}

	visited := make(map[string]int) // 0 unvisited, 1 in progress, 2 done
	var order []*UpdateRegistration
	var visit func(r *UpdateRegistration) error
	visit = func(r *UpdateRegistration) error {
		switch visited[r.Name] {
		case 2:
			return nil
		case 1:
			return errCyclicDependency(r.Name)
		}
		visited[r.Name] = 1
		for _, dep := range r.DependsOn {
			if d, ok := byName[dep]; ok {
				if err := visit(d); err != nil {
					return err
				}
			}
		}
		visited[r.Name] = 2
		order = append(order, r)
		return nil
	}

	for _, r := range regs {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return order, nil
}

type errCyclicDependency string

func (e errCyclicDependency) Error() string { return "world: cyclic update dependency at " + string(e) }

// RunTick executes all four phases in order against w. simulating gates
// OnlyWhenSimulating functions. Between phases it flushes deferred
// object/component deletions and delivers due messages, matching the
// fixed inter-phase contract.
func (s *Scheduler) RunTick(w *World, simulating bool) error {
	s.runSequential(w, s.phases[PreAsync], simulating)
	w.flushBetweenPhases()

	if err := s.runAsync(w, s.phases[Async], simulating); err != nil {
		return err
	}
	w.flushBetweenPhases()

	s.runSequential(w, s.phases[PostAsync], simulating)
	w.flushBetweenPhases()

	s.runSequential(w, s.phases[PostTransform], simulating)
	w.flushBetweenPhases()
	return nil
}

func (s *Scheduler) runSequential(w *World, regs []*UpdateRegistration, simulating bool) {
	for _, r := range regs {
		if r.OnlyWhenSimulating && !simulating {
			continue
		}
		r.Fn(w, 0, 1)
	}
}

// runAsync dispatches each Async update function's declared batch
// count concurrently, each goroutine invoked with a distinct
// (batchIndex, batchCount) pair so it can restrict itself to a disjoint
// partition of its own component set via ComponentManager.Batch.
// Functions within one granularity batch share a read marker and must
// not mutate world structure, only the component state belonging to
// their own partition — the invariant each Async function is
// responsible for upholding.
func (s *Scheduler) runAsync(w *World, regs []*UpdateRegistration, simulating bool) error {
	grp := new(errgroup.Group)
	for _, r := range regs {
		if r.OnlyWhenSimulating && !simulating {
			continue
		}
		reg := r
		batches := reg.Granularity
		if batches < 1 {
			batches = 1
		}
		for b := 0; b < batches; b++ {
			batchIndex := b
			grp.Go(func() error {
				rm := w.Markers.AcquireRead()
				defer rm.Release()
				reg.Fn(w, batchIndex, batches)
				return nil
			})
		}
	}
	return grp.Wait()
}
