// Package hashedstring provides a process-wide interned string type.
//
// A HashedString stores only a pointer into a central table, so copying and
// equality checks are cheap regardless of the underlying string's length.
// The table itself never relocates an entry once created: only the pointer's
// refcount changes, so holding a *entry across a table resize is always
// safe. This mirrors the double-checked-locking pattern the status package
// uses for its metric maps, just keyed by hash instead of by name.
package hashedstring

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

type entry struct {
	str      string
	refCount atomic.Int64
}

var table = struct {
	mu    sync.RWMutex
	items map[uint64]*entry
}{items: make(map[uint64]*entry)}

// HashedString is a reference-counted, interned string. The zero value
// represents the empty string and requires no cleanup.
type HashedString struct {
	hash uint64
	e    *entry
}

// TempHashedString carries only a hash, computed without touching the
// intern table. Use it to compare against stored HashedStrings when the
// candidate string is not going to be retained.
type TempHashedString struct {
	hash uint64
}

// Hash64 computes the 64-bit hash a HashedString or TempHashedString would
// use for the given string.
func Hash64(s string) uint64 { return xxhash.Sum64String(s) }

// Make interns s, incrementing its refcount, and returns the owning handle.
func Make(s string) HashedString {
	h := Hash64(s)
	if s == "" {
		return HashedString{hash: h}
	}

	table.mu.RLock()
	if e, ok := table.items[h]; ok {
		e.refCount.Add(1)
		table.mu.RUnlock()
		return HashedString{hash: h, e: e}
	}
	table.mu.RUnlock()

	table.mu.Lock()
	defer table.mu.Unlock()
	if e, ok := table.items[h]; ok {
		e.refCount.Add(1)
		return HashedString{hash: h, e: e}
	}
	e := &entry{str: s}
	e.refCount.Store(1)
	table.items[h] = e
	return HashedString{hash: h, e: e}
}

// Release decrements the refcount. The entry is not evicted here: it stays
// in the table until ClearUnused runs, since the string may be re-interned
// shortly after.
func (hs HashedString) Release() {
	if hs.e == nil {
		return
	}
	hs.e.refCount.Add(-1)
}

// String returns the underlying string.
func (hs HashedString) String() string {
	if hs.e == nil {
		return ""
	}
	return hs.e.str
}

func (hs HashedString) Hash() uint64 { return hs.hash }
func (hs HashedString) IsEmpty() bool { return hs.hash == Hash64("") }

// Equal compares two HashedStrings by pointer identity when both are
// interned, falling back to hash comparison when either is the empty
// sentinel (no entry pointer).
func (hs HashedString) Equal(other HashedString) bool {
	if hs.e != nil && other.e != nil {
		return hs.e == other.e
	}
	return hs.hash == other.hash
}

// EqualTemp compares against a TempHashedString by hash only: two
// different strings that collide will incorrectly compare equal, which is
// the tradeoff TempHashedString is documented to make in exchange for
// avoiding table synchronization.
func (hs HashedString) EqualTemp(other TempHashedString) bool { return hs.hash == other.hash }

// Less orders by hash value, not lexicographically.
func (hs HashedString) Less(other HashedString) bool { return hs.hash < other.hash }

// MakeTemp computes a TempHashedString's hash without touching the table.
func MakeTemp(s string) TempHashedString { return TempHashedString{hash: Hash64(s)} }

// TempFromHash builds a TempHashedString directly from a precomputed hash.
func TempFromHash(h uint64) TempHashedString { return TempHashedString{hash: h} }

func (t TempHashedString) Hash() uint64  { return t.hash }
func (t TempHashedString) IsEmpty() bool { return t.hash == Hash64("") }
func (t TempHashedString) Equal(other TempHashedString) bool { return t.hash == other.hash }
func (t TempHashedString) Less(other TempHashedString) bool  { return t.hash < other.hash }

// ClearUnused removes every table entry whose refcount has dropped to zero
// or below, returning the number removed. Entries are never evicted
// automatically: callers decide when it's worth paying the sweep cost.
func ClearUnused() int {
	table.mu.Lock()
	defer table.mu.Unlock()

	removed := 0
	for h, e := range table.items {
		if e.refCount.Load() <= 0 {
			delete(table.items, h)
			removed++
		}
	}
	return removed
}

// Count returns the number of distinct strings currently interned.
func Count() int {
	table.mu.RLock()
	defer table.mu.RUnlock()
	return len(table.items)
}

// Strings returns every interned string, sorted, for diagnostics.
func Strings() []string {
	table.mu.RLock()
	defer table.mu.RUnlock()

	out := make([]string, 0, len(table.items))
	for _, e := range table.items {
		out = append(out, e.str)
	}
	sort.Strings(out)
	return out
}
