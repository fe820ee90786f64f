package world

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrWriteWhileReading = errors.New("world: write marker requested while readers hold the world")
	ErrHierarchyViolation = errors.New("world: cannot move an object between the static and dynamic hierarchies")
)

// markers implements the World's single-writer/multiple-reader
// discipline: WriteMarker is re-entrant on the thread that holds it and
// fails while any reader holds the lock; ReadMarker is a plain counting
// shared lock. Both are built on one mutex plus a condvar rather than
// sync.RWMutex, because the re-entrant-writer requirement (the owning
// goroutine may acquire the write marker again without deadlocking)
// has no sync.RWMutex equivalent.
type markers struct {
	mu          sync.Mutex
	cond        *sync.Cond
	readerCount int
	writerHeld  bool
	writerGoroutine int64
}

func newMarkers() *markers {
	m := &markers{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// ReadMarker is a counting shared lock acquired by component updates
// that only read world structure (Async-phase updates, for instance).
type ReadMarker struct{ m *markers }

// AcquireRead blocks until no writer holds the marker, then joins the
// reader count.
func (m *markers) AcquireRead() ReadMarker {
	m.mu.Lock()
	for m.writerHeld {
		m.cond.Wait()
	}
	m.readerCount++
	m.mu.Unlock()
	return ReadMarker{m: m}
}

func (r ReadMarker) Release() {
	r.m.mu.Lock()
	r.m.readerCount--
	if r.m.readerCount == 0 {
		r.m.cond.Broadcast()
	}
	r.m.mu.Unlock()
}

// WriteMarker is held during structural changes: add/remove object,
// add/remove component, deferred-deletion flush. It is re-entrant on
// the goroutine that already holds it (tracked by a caller-supplied
// token, since Go has no portable goroutine-id) and fails immediately
// if any reader currently holds the marker.
type WriteMarker struct{ m *markers }

// AcquireWrite fails immediately with ErrWriteWhileReading if any
// reader currently holds the marker. token identifies the calling
// logical owner: a nested AcquireWrite with the same nonzero token
// re-enters instead of blocking on itself. Otherwise it blocks until
// any other writer releases, then takes exclusive ownership.
func (m *markers) AcquireWrite(token int64) (WriteMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writerHeld && token != 0 && m.writerGoroutine == token {
		return WriteMarker{m: m}, nil
	}
	if m.readerCount > 0 {
		return WriteMarker{}, ErrWriteWhileReading
	}
	for m.writerHeld {
		m.cond.Wait()
		if m.readerCount > 0 {
			return WriteMarker{}, ErrWriteWhileReading
		}
	}
	m.writerHeld = true
	m.writerGoroutine = token
	return WriteMarker{m: m}, nil
}

func (w WriteMarker) Release() {
	if w.m == nil {
		return
	}
	w.m.mu.Lock()
	w.m.writerHeld = false
	w.m.writerGoroutine = 0
	w.m.cond.Broadcast()
	w.m.mu.Unlock()
}
