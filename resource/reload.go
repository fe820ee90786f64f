package resource

import (
	"context"

	"github.com/pkg/errors"
)

// Subscribe registers cb to run whenever uniqueID's resource broadcasts a
// content update. The World uses this to route ResourceContentUpdated
// into per-component reload hooks.
func (m *Manager) Subscribe(uniqueID string, cb ReloadCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[uniqueID] = append(m.subscribers[uniqueID], cb)
}

func (m *Manager) notifyReload(uniqueID string, state LoadingState) {
	m.mu.Lock()
	cbs := append([]ReloadCallback(nil), m.subscribers[uniqueID]...)
	m.mu.Unlock()
	for _, cb := range cbs {
		cb(uniqueID, state)
	}
}

// MissingReporter receives a ReportResourceIsMissing notification; the
// World wires a logging implementation in so a missing asset surfaces
// once per resource instead of being silently dropped.
type MissingReporter interface {
	ReportResourceIsMissing(uniqueID string)
}

func (m *Manager) SetMissingReporter(r MissingReporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missingReporter = r
}

func (m *Manager) reportMissing(uniqueID string) {
	m.mu.Lock()
	r := m.missingReporter
	m.mu.Unlock()
	if r != nil {
		r.ReportResourceIsMissing(uniqueID)
	}
}

// Reload re-runs the loader for uniqueID. If force is false and the
// resource is already Loaded at its highest-known quality, Reload is a
// no-op; force always re-enqueues.
func (m *Manager) Reload(ctx context.Context, uniqueID, typeName string, force bool) error {
	r, ok := m.lookup(uniqueID)
	if !ok {
		return errors.Wrapf(ErrAssetNotFound, "%s", uniqueID)
	}
	if !force && r.State() == Loaded {
		return nil
	}
	m.pool.enqueue(r, typeName)
	return nil
}

// FreeUnused discards content from resources with a zero refcount,
// spending at most timeBudget and reclaiming at most maxBytes, one
// quality level at a time (the inverse of refinement). It returns the
// number of resources touched.
func (m *Manager) FreeUnused(maxBytes uint64) int {
	m.mu.Lock()
	candidates := make([]*Resource, 0, len(m.resources))
	for _, r := range m.resources {
		if r.RefCount() == 0 {
			candidates = append(candidates, r)
		}
	}
	m.mu.Unlock()

	var reclaimed uint64
	touched := 0
	for _, r := range candidates {
		if reclaimed >= maxBytes {
			break
		}
		r.mu.Lock()
		if r.qualityDiscardable > 0 {
			r.qualityDiscardable--
			r.qualityLoadable++
			reclaimed += r.memoryUsage.CPU + r.memoryUsage.GPU
			touched++
		}
		r.mu.Unlock()
	}
	return touched
}

// Shutdown cancels outstanding loads, waits for in-flight ones to finish,
// and reports every resource whose refcount is still nonzero as a leak.
func (m *Manager) Shutdown() (leaked []string) {
	m.pool.shutdown()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.resources {
		if r.RefCount() > 0 {
			leaked = append(leaked, id)
		}
	}
	return leaked
}
