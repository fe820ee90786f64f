package world

import (
	"sync"

	"github.com/lixenwraith/enginecore/resource"
)

// ComponentMode selects whether a component participates in the static
// or dynamic hierarchy's update pass; fixed per component instance.
type ComponentMode uint8

const (
	ComponentStatic ComponentMode = iota
	ComponentDynamic
)

// UserFlags carries the eight caller-defined bits every component
// instance reserves, mirroring the object-level user flag range.
type UserFlags uint8

// Component is the behavior every component type implements. Update is
// not part of the interface: update functions are registered with the
// Scheduler per component-type, not per-instance, since the scheduler
// dispatches by phase across every live instance of a type at once.
type Component interface {
	Initialize(obj *GameObject)
	OnActivated(obj *GameObject)
	OnSimulationStarted(obj *GameObject)
	OnDeactivated(obj *GameObject)
	Deinitialize(obj *GameObject)
}

// componentState tracks the bookkeeping the manager needs per instance
// beyond whatever fields the concrete Component struct declares.
type componentState struct {
	owner            ObjectID
	active           bool
	initialized      bool
	mode             ComponentMode
	flags            UserFlags
	pendingDeinit    bool
}

// ComponentManager owns every live instance of one component type, in
// a dense slice keyed by owner object id: a sparse-set layout so
// iteration stays cache-friendly regardless of how object ids scatter.
type ComponentManager struct {
	mu         sync.RWMutex
	typeName   string
	id         uint16
	components map[ObjectID]Component
	state      map[ObjectID]*componentState
	dense      []ObjectID

	pendingInit []ObjectID
	codec       ComponentCodec
}

func NewComponentManager(typeName string, id uint16) *ComponentManager {
	return &ComponentManager{
		typeName:   typeName,
		id:         id,
		components: make(map[ObjectID]Component),
		state:      make(map[ObjectID]*componentState),
	}
}

func (m *ComponentManager) TypeName() string { return m.typeName }
func (m *ComponentManager) ID() uint16        { return m.id }

// Add attaches inst to owner under the given mode, queuing it for
// batched Initialize/OnSimulationStarted rather than calling them
// inline — the World's initialization batcher drains pendingInit.
func (m *ComponentManager) Add(owner ObjectID, inst Component, mode ComponentMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.components[owner]; exists {
		return
	}
	m.components[owner] = inst
	m.state[owner] = &componentState{owner: owner, mode: mode}
	m.dense = append(m.dense, owner)
	m.pendingInit = append(m.pendingInit, owner)
}

// Get returns the component instance attached to owner, if any.
func (m *ComponentManager) Get(owner ObjectID) (Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[owner]
	return c, ok
}

// Remove marks owner's instance for deferred removal; Flush performs
// the actual Deinitialize/delete pass.
func (m *ComponentManager) Remove(owner ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.state[owner]; ok {
		st.pendingDeinit = true
	}
}

// Flush calls Deinitialize on every instance pending removal and drops
// it from the manager, returning how many were removed.
func (m *ComponentManager) Flush(lookup func(ObjectID) (*GameObject, bool)) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	kept := m.dense[:0]
	for _, owner := range m.dense {
		st := m.state[owner]
		if st != nil && st.pendingDeinit {
			if obj, ok := lookup(owner); ok {
				if inst, ok := m.components[owner]; ok {
					if st.active {
						inst.OnDeactivated(obj)
					}
					inst.Deinitialize(obj)
				}
			}
			delete(m.components, owner)
			delete(m.state, owner)
			removed++
			continue
		}
		kept = append(kept, owner)
	}
	m.dense = kept
	return removed
}

// DrainPendingInit runs Initialize and OnActivated for every component
// queued since the last drain, subject to the time budget enforced by
// the caller (the World's batch tracker); it returns how many were
// processed this call.
func (m *ComponentManager) DrainPendingInit(max int, lookup func(ObjectID) (*GameObject, bool)) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.pendingInit)
	if max > 0 && n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		owner := m.pendingInit[i]
		obj, ok := lookup(owner)
		if !ok {
			continue
		}
		inst := m.components[owner]
		st := m.state[owner]
		if inst == nil || st == nil {
			continue
		}
		inst.Initialize(obj)
		inst.OnActivated(obj)
		st.active = true
		st.initialized = true
	}
	m.pendingInit = m.pendingInit[n:]
	return n
}

// PendingInitCount reports how many instances still await their first
// Initialize/OnActivated pass.
func (m *ComponentManager) PendingInitCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pendingInit)
}

// All returns every live owner id for this component type.
func (m *ComponentManager) All() []ObjectID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ObjectID, len(m.dense))
	copy(out, m.dense)
	return out
}

// Batch returns the disjoint slice of owners assigned to batchIndex out
// of batchCount, splitting the dense set into batchCount contiguous,
// near-equal partitions that together cover every owner exactly once.
// An Async UpdateFunc calls this with the (batchIndex, batchCount) it
// was invoked with so concurrent batches never touch the same owner.
func (m *ComponentManager) Batch(batchIndex, batchCount int) []ObjectID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if batchCount < 1 {
		batchCount = 1
	}
	n := len(m.dense)
	start := n * batchIndex / batchCount
	end := n * (batchIndex + 1) / batchCount
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	out := make([]ObjectID, end-start)
	copy(out, m.dense[start:end])
	return out
}

func (m *ComponentManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dense)
}

// ReloadHook pairs a resource handle with the callback the World fires
// when the Manager reports a content update for it.
type ReloadHook struct {
	HandleID string
	Owner    ObjectID
	Callback func(ReloadContext)
}

// ReloadContext is handed to a component's reload callback so it can
// re-read the updated resource without re-deriving its own identity.
type ReloadContext struct {
	World     *World
	Owner     *GameObject
	UserData  any
	NewState  resource.LoadingState
}
