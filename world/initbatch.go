package world

import (
	"sync"
	"time"
)

// InitBatch tracks one named group of components queued for
// Initialize/OnSimulationStarted together, e.g. everything spawned by
// one world-stream load. It becomes ready once every manager it spans
// has drained its queued instances.
type InitBatch struct {
	mu       sync.Mutex
	name     string
	managers []*ComponentManager
	started  []ObjectID
	ready    bool
}

// NewInitBatch registers a batch spanning the given managers; the
// World's per-tick drain consumes it until every manager's
// PendingInitCount reaches zero.
func (w *World) NewInitBatch(name string, managers ...*ComponentManager) *InitBatch {
	b := &InitBatch{name: name, managers: managers}
	w.mu.Lock()
	w.batches[name] = b
	w.mu.Unlock()
	return b
}

// Batch returns the named batch, if still tracked.
func (w *World) Batch(name string) (*InitBatch, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.batches[name]
	return b, ok
}

// IsReady reports whether every manager spanned by the batch has
// drained its pending-initialize queue.
func (b *InitBatch) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// Remaining returns the pending-initialize count summed across every
// manager the batch spans, for partial-progress queries.
func (b *InitBatch) Remaining() int {
	var remaining int
	for _, m := range b.managers {
		remaining += m.PendingInitCount()
	}
	return remaining
}

// MaxInitializationTimePerFrame bounds how long drainInitBatches may
// spend running Initialize/OnActivated calls in a single tick.
var MaxInitializationTimePerFrame = 2 * time.Millisecond

// drainInitBatches spends up to MaxInitializationTimePerFrame running
// queued Initialize/OnActivated calls across every tracked batch, then
// marks any batch whose managers are all empty as ready.
func (w *World) drainInitBatches() {
	w.mu.RLock()
	batches := make([]*InitBatch, 0, len(w.batches))
	for _, b := range w.batches {
		batches = append(batches, b)
	}
	w.mu.RUnlock()

	deadline := time.Now().Add(MaxInitializationTimePerFrame)
	for _, b := range batches {
		if b.IsReady() {
			continue
		}
		for _, m := range b.managers {
			if time.Now().After(deadline) {
				return
			}
			const perManagerBudget = 64
			m.DrainPendingInit(perManagerBudget, w.Objects.Lookup)
		}
		b.mu.Lock()
		allDrained := true
		for _, m := range b.managers {
			if m.PendingInitCount() > 0 {
				allDrained = false
				break
			}
		}
		b.ready = allDrained
		b.mu.Unlock()
	}
}
