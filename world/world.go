package world

import (
	"sync"
	"time"

	"github.com/lixenwraith/enginecore/blackboard"
	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/internal/corelog"
	"github.com/lixenwraith/enginecore/internal/status"
	"github.com/lixenwraith/enginecore/resource"
	"github.com/pkg/errors"
)

var log = corelog.New("WORLD")

var errStaleObjectID = errors.New("world: stale object id")

type errUnknownComponentManager string

func (e errUnknownComponentManager) Error() string {
	return "world: no component manager registered for " + string(e)
}

// World is the process-scoped scene graph owner: the object table,
// every registered component manager, the scheduler, the message bus,
// and the read/write marker pair that serializes structural changes.
type World struct {
	Objects    *ObjectTable
	Scheduler  *Scheduler
	Bus        *MessageBus
	Markers    *markers
	Resources  *resource.Manager
	Status     *status.Registry

	mu         sync.RWMutex
	managers   []*ComponentManager
	managersByName map[string]*ComponentManager

	batches    map[string]*InitBatch

	reloadHooks []ReloadHook

	clock func() corevalue.Time
}

// NewWorld creates an empty World. clock supplies "now" for timed
// message promotion and resource recency scoring.
func NewWorld(resources *resource.Manager, clock func() corevalue.Time) *World {
	w := &World{
		Objects:        NewObjectTable(),
		Scheduler:      NewScheduler(),
		Bus:            NewMessageBus(),
		Markers:        newMarkers(),
		Resources:      resources,
		Status:         status.NewRegistry(),
		managersByName: make(map[string]*ComponentManager),
		batches:        make(map[string]*InitBatch),
		clock:          clock,
	}
	if resources != nil {
		resources.SetMissingReporter(missingReporterFunc(func(uniqueID string) {
			log.Warnf("resource %s reported missing", uniqueID)
		}))
	}
	return w
}

type missingReporterFunc func(uniqueID string)

func (f missingReporterFunc) ReportResourceIsMissing(uniqueID string) { f(uniqueID) }

// RegisterComponentManager adds a new manager for a component type.
func (w *World) RegisterComponentManager(typeName string) *ComponentManager {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := uint16(len(w.managers))
	m := NewComponentManager(typeName, id)
	w.managers = append(w.managers, m)
	w.managersByName[typeName] = m
	return m
}

func (w *World) ComponentManager(typeName string) (*ComponentManager, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.managersByName[typeName]
	return m, ok
}

// CreateObject allocates a new object through the write marker.
func (w *World) CreateObject(name string, hierarchy HierarchyKind, parent ObjectID) (*GameObject, error) {
	wm, err := w.Markers.AcquireWrite(0)
	if err != nil {
		return nil, err
	}
	defer wm.Release()
	return w.Objects.Create(name, hierarchy, parent), nil
}

// DestroyObject defers id for removal at the next flush; deletion
// during an in-flight update survives to the next sync point rather
// than racing the current pass.
func (w *World) DestroyObject(id ObjectID) {
	w.Objects.MarkForDeletion(id)
	if obj, ok := w.Objects.Lookup(id); ok {
		for _, c := range obj.components {
			w.managerByID(c.managerID).Remove(id)
		}
	}
}

// AddComponent attaches inst to owner under manager typeName. The
// component is queued for batched Initialize/OnActivated rather than
// run inline.
func (w *World) AddComponent(owner ObjectID, typeName string, inst Component, mode ComponentMode) error {
	m, ok := w.ComponentManager(typeName)
	if !ok {
		return errUnknownComponentManager(typeName)
	}
	wm, err := w.Markers.AcquireWrite(0)
	if err != nil {
		return err
	}
	defer wm.Release()

	obj, ok := w.Objects.Lookup(owner)
	if !ok {
		return errStaleObjectID
	}
	m.Add(owner, inst, mode)
	obj.components = append(obj.components, componentRef{managerID: m.ID()})
	return nil
}

func (w *World) managerByID(id uint16) *ComponentManager {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if int(id) < len(w.managers) {
		return w.managers[id]
	}
	return nil
}

// flushBetweenPhases runs the deletion flush and due-message delivery
// the scheduler's fixed phase boundary requires.
func (w *World) flushBetweenPhases() {
	wm, err := w.Markers.AcquireWrite(0)
	if err != nil {
		log.Warnf("deferred flush skipped: %v", err)
		return
	}
	defer wm.Release()

	for _, m := range w.managers {
		m.Flush(w.Objects.Lookup)
	}
	w.Objects.Flush(func(obj *GameObject) {
		for _, c := range obj.components {
			if m := w.managerByID(c.managerID); m != nil {
				m.Flush(w.Objects.Lookup)
			}
		}
	})
	w.Objects.RecomputeTransforms()

	now := corevalue.Time(0)
	if w.clock != nil {
		now = w.clock()
	}
	w.Bus.PromoteDue(Deferred, now)
	w.Bus.PromoteDue(Urgent, now)
	w.Bus.DispatchAll(Deferred)
	w.Bus.DispatchAll(Urgent)

	w.drainInitBatches()
}

// RegisterReloadHook wires (handleID, callback) so the World invokes
// callback with a ReloadContext whenever the Manager reports a content
// update for handleID, delivered between update phases.
func (w *World) RegisterReloadHook(handleID string, owner ObjectID, cb func(ReloadContext)) {
	w.mu.Lock()
	w.reloadHooks = append(w.reloadHooks, ReloadHook{HandleID: handleID, Owner: owner, Callback: cb})
	w.mu.Unlock()

	if w.Resources == nil {
		return
	}
	w.Resources.Subscribe(handleID, func(uniqueID string, state resource.LoadingState) {
		w.mu.RLock()
		var matched []ReloadHook
		for _, h := range w.reloadHooks {
			if h.HandleID == uniqueID {
				matched = append(matched, h)
			}
		}
		w.mu.RUnlock()

		for _, h := range matched {
			obj, _ := w.Objects.Lookup(h.Owner)
			h.Callback(ReloadContext{World: w, Owner: obj, NewState: state})
		}
	})
}

// Count returns the number of live objects.
func (w *World) Count() int { return w.Objects.Count() }

// Tick runs one full scheduler pass and records frame timing and per-type
// component counts into Status, the lock-free metrics facade a profiler
// overlay would read from without contending with the simulation itself.
func (w *World) Tick(simulating bool) error {
	start := time.Now()
	err := w.Scheduler.RunTick(w, simulating)
	w.Status.Floats.Get("tick_ms").Set(float64(time.Since(start)) / float64(time.Millisecond))
	w.Status.Ints.Get("object_count").Store(int64(w.Objects.Count()))

	w.mu.RLock()
	managers := append([]*ComponentManager(nil), w.managers...)
	w.mu.RUnlock()
	for _, m := range managers {
		w.Status.Ints.Get("component_count."+m.TypeName()).Store(int64(m.Count()))
	}
	return err
}

// globalBoardName is the board every World shares for process-wide state
// that outlives any single object, e.g. game-mode flags or session totals.
const globalBoardName = "world.global"

// GlobalBlackboard returns the board every World instance shares for
// state with no single natural owner.
func (w *World) GlobalBlackboard() *blackboard.Board {
	return blackboard.GetOrCreateGlobal(globalBoardName)
}
