package resource

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/pkg/errors"
)

// AcquireMode selects how acquire behaves when the resource is not yet
// at a usable quality level.
type AcquireMode uint8

const (
	BlockTillLoaded AcquireMode = iota
	AllowLoadingFallback
	PointerOnly
	BlockTillLoadedNeverFail
)

// ReloadCallback is invoked once per subscriber when reload(handle, ...)
// completes, carrying the handle and the resource's updated state.
type ReloadCallback func(uniqueID string, state LoadingState)

// Manager is the process-wide resource singleton: one instance per
// process, handed to subsystems at init the way the rest of the core
// hands out its process-scoped contexts.
type Manager struct {
	mu        sync.Mutex
	resources map[string]*Resource
	loaders   map[string]Loader
	fallbacks map[string]string // type name -> fallback unique id

	recency *lru.Cache[string, struct{}]

	subscribers     map[string][]ReloadCallback
	missingReporter MissingReporter

	pool *workerPool

	clock func() corevalue.Time
}

// NewManager builds a Manager with a worker pool of the given size.
// clock supplies "now" for priority recency scoring and last-acquire
// bookkeeping; tests can substitute a deterministic source.
func NewManager(workers int, clock func() corevalue.Time) *Manager {
	recency, _ := lru.New[string, struct{}](4096)
	m := &Manager{
		resources:   make(map[string]*Resource),
		loaders:     make(map[string]Loader),
		fallbacks:   make(map[string]string),
		recency:     recency,
		subscribers: make(map[string][]ReloadCallback),
		clock:       clock,
	}
	m.pool = newWorkerPool(workers, m)
	return m
}

// RegisterLoader binds typeName to the loader invoked when a resource
// whose description names that type needs loading.
func (m *Manager) RegisterLoader(typeName string, loader Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[typeName] = loader
}

// RegisterFallback designates fallbackUniqueID as the per-type stand-in
// surfaced by AllowLoadingFallback until a real load completes.
func (m *Manager) RegisterFallback(typeName, fallbackUniqueID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks[typeName] = fallbackUniqueID
}

// Load returns a handle for uniqueID, creating a fresh Unloaded record on
// first reference; it never blocks.
func Load[T any](m *Manager, uniqueID string) Handle[T] {
	r := m.getOrCreate(uniqueID)
	return Handle[T]{hash: r.UniqueIDHash, id: r.UniqueID}
}

func (m *Manager) getOrCreate(uniqueID string) *Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.resources[uniqueID]; ok {
		return r
	}
	r := newResource(uniqueID)
	m.resources[uniqueID] = r
	return r
}

func (m *Manager) lookup(uniqueID string) (*Resource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[uniqueID]
	return r, ok
}

// Acquire resolves a handle to its payload under the given mode.
func Acquire[T any](ctx context.Context, m *Manager, h Handle[T], mode AcquireMode, typeName string) (*T, error) {
	r, ok := m.lookup(h.id)
	if !ok {
		return nil, errors.Wrapf(ErrAssetNotFound, "%s", h.id)
	}

	m.recency.Add(h.id, struct{}{})
	r.Retain()
	r.mu.Lock()
	r.lastAcquireTime = m.clock()
	r.mu.Unlock()

	switch mode {
	case BlockTillLoaded, BlockTillLoadedNeverFail:
		r.mu.Lock()
		r.priority = PriorityCritical
		r.mu.Unlock()
		m.pool.enqueue(r, typeName)
		r.waitUntilTerminal()

		if r.State() == Loaded {
			return payloadAs[T](r)
		}
		if mode == BlockTillLoadedNeverFail {
			if fb, ok := m.fallbackPayload(typeName); ok {
				return payloadAs[T](fb)
			}
		}
		return nil, errors.Wrapf(ErrAssetNotFound, "%s", h.id)

	case AllowLoadingFallback:
		r.mu.Lock()
		if r.priority > PriorityNormal {
			r.priority = PriorityNormal
		}
		r.mu.Unlock()
		m.pool.enqueue(r, typeName)
		if r.State() == Loaded || r.State() == LoadedFallback {
			return payloadAs[T](r)
		}
		if fb, ok := m.fallbackPayload(typeName); ok {
			return payloadAs[T](fb)
		}
		return nil, errors.Wrapf(ErrAssetNotFound, "%s not yet loaded and no fallback registered", h.id)

	case PointerOnly:
		if r.State() == Loaded {
			return payloadAs[T](r)
		}
		return nil, errors.Wrapf(ErrAssetNotFound, "%s not yet loaded", h.id)
	}
	return nil, errors.New("resource: unknown acquire mode")
}

// Release gives back one reference acquired through Acquire[T]. It is the
// caller's responsibility to call it exactly once per successful Acquire
// call; an unmatched Release drives the count negative, the same way an
// unmatched release would in the reference engine.
func Release[T any](m *Manager, h Handle[T]) {
	if r, ok := m.lookup(h.id); ok {
		r.Release()
	}
}

func (m *Manager) fallbackPayload(typeName string) (*Resource, bool) {
	m.mu.Lock()
	id, ok := m.fallbacks[typeName]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	r, ok := m.lookup(id)
	if !ok || r.State() != Loaded {
		return nil, false
	}
	return r, true
}

func payloadAs[T any](r *Resource) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.payload.(*T)
	if !ok {
		return nil, errors.Wrapf(ErrWrongType, "resource %s", r.UniqueID)
	}
	return v, nil
}

// SetPriority adjusts a resource's scheduling priority without enqueueing
// a load.
func (m *Manager) SetPriority(uniqueID string, p Priority) {
	if r, ok := m.lookup(uniqueID); ok {
		r.mu.Lock()
		r.priority = p
		r.mu.Unlock()
	}
}
