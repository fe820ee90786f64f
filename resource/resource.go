// Package resource implements the process-wide resource manager: typed
// handles, reference-counted resource records with a quality-level
// refinement ladder, a priority-ordered worker pool, and loader
// registration modeled on the engine's dependency-ordered service hub.
package resource

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/pkg/errors"
)

var (
	ErrAssetNotFound  = errors.New("resource: asset not found")
	ErrLoaderFailed   = errors.New("resource: loader failed")
	ErrWrongType      = errors.New("resource: wrong resource type")
	ErrOutOfBudget    = errors.New("resource: out of budget")
	ErrAlreadyQueued  = errors.New("resource: already queued")
	ErrBadQualityMove = errors.New("resource: quality-level update violates refinement invariant")
)

// LoadingState mirrors the resource's lifecycle, created on first handle
// acquisition and driven forward by loader completions.
type LoadingState uint8

const (
	Unloaded LoadingState = iota
	UnloadedMetaInfoAvailable
	LoadedResourceMissing
	LoadedFallback
	Loaded
)

// Priority steps the float-priority scheduler starts from; Critical=0 and
// each subsequent step adds 10, matching the enum-step-times-ten rule.
type Priority uint8

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityLowest
)

func (p Priority) baseScore() float64 { return float64(p) * 10 }

// MemoryUsage splits a resource's footprint across CPU and GPU budgets,
// the two pools free_unused can be asked to respect independently.
type MemoryUsage struct {
	CPU uint64
	GPU uint64
}

// LoadDesc is what a loader's update_content call returns: the terminal
// or intermediate state to merge into the resource record.
type LoadDesc struct {
	State             LoadingState
	QualityLoadable   uint8
	QualityDiscardable uint8
}

// Resource is the process-wide record for one loaded asset. The payload
// itself is type-erased (any) since the manager is generic over many
// asset kinds at once; typed access goes through Handle[T].
type Resource struct {
	UniqueID     string
	UniqueIDHash uint64
	Description  string

	refCount atomic.Int32

	mu                 sync.Mutex
	state              LoadingState
	qualityLoadable    uint8
	qualityDiscardable uint8
	priority           Priority
	lastAcquireTime    corevalue.Time
	memoryUsage        MemoryUsage
	payload            any
	queuedForLoad      bool

	cond *sync.Cond

	lastError error
	reportedMissing bool
}

func newResource(uniqueID string) *Resource {
	r := &Resource{
		UniqueID:     uniqueID,
		UniqueIDHash: xxhash.Sum64String(uniqueID),
		state:        Unloaded,
		priority:     PriorityNormal,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *Resource) State() LoadingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resource) RefCount() int32 { return r.refCount.Load() }

// Retain increments the resource's reference count. Every successful or
// attempted acquire retains; callers release exactly once per acquire,
// whether or not the acquire returned a usable payload.
func (r *Resource) Retain() { r.refCount.Add(1) }

// Release decrements the resource's reference count. A count at or below
// zero after release makes the resource eligible for FreeUnused.
func (r *Resource) Release() { r.refCount.Add(-1) }

// ApplyLoadDesc merges a loader's result, enforcing the refinement
// invariant: a successful update must strictly increase discardable
// levels and decrease loadable ones, or the reverse (eviction); it never
// moves both in the same direction, and never drives either to 0xFF.
func (r *Resource) ApplyLoadDesc(d LoadDesc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.QualityLoadable == 0xFF || d.QualityDiscardable == 0xFF {
		return errors.Wrap(ErrBadQualityMove, "quality counters saturated")
	}
	if r.state == Loaded || r.state == LoadedFallback {
		refining := d.QualityDiscardable > r.qualityDiscardable && d.QualityLoadable < r.qualityLoadable
		evicting := d.QualityDiscardable < r.qualityDiscardable && d.QualityLoadable > r.qualityLoadable
		noop := d.QualityDiscardable == r.qualityDiscardable && d.QualityLoadable == r.qualityLoadable
		if !refining && !evicting && !noop {
			return ErrBadQualityMove
		}
	}

	r.state = d.State
	r.qualityLoadable = d.QualityLoadable
	r.qualityDiscardable = d.QualityDiscardable
	r.queuedForLoad = false
	r.cond.Broadcast()
	return nil
}

// MarkMissing transitions the resource to LoadedResourceMissing and
// records the loader's failure; ReportResourceIsMissing fires exactly
// once per resource via the reportedMissing latch.
func (r *Resource) MarkMissing(err error) (shouldReport bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = LoadedResourceMissing
	r.lastError = err
	r.queuedForLoad = false
	shouldReport = !r.reportedMissing
	r.reportedMissing = true
	r.cond.Broadcast()
	return shouldReport
}

func (r *Resource) setPayload(p any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = p
}

func (r *Resource) waitUntilTerminal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.state != Loaded && r.state != LoadedResourceMissing {
		r.cond.Wait()
	}
}

// priorityScore computes the float priority the worker pool's queue
// orders by: lower wins. Critical always scores 0; other priorities step
// by 10; a resource that already reached a usable quality level is
// penalized (deprioritized further below fresh work); a recent-acquire
// bonus (capped at 10s) pulls recently-touched resources forward.
func (r *Resource) priorityScore(now corevalue.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.priority == PriorityCritical {
		return 0
	}
	score := r.priority.baseScore()
	if r.state == Loaded || r.state == LoadedFallback {
		score += 5 // already-usable resources yield to still-unloaded ones
	}
	recency := float64(now) - float64(r.lastAcquireTime)
	if recency < 0 {
		recency = 0
	}
	if recency > 10 {
		recency = 10
	}
	score -= 10 - recency
	return score
}
