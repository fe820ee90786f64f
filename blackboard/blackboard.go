// Package blackboard implements named, refcounted key/value stores that
// let unrelated systems exchange small pieces of state without a direct
// dependency on one another: one side writes, another reads, and a
// change event lets interested parties react instead of poll.
package blackboard

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/enginecore/hashedstring"
	"github.com/lixenwraith/enginecore/variant"
)

// EntryFlags mirrors the bitflag set an entry carries alongside its
// value: Save controls serialization membership, OnChangeEvent gates
// whether a write broadcasts to listeners, and the UserFlag range is
// left for callers to repurpose per board.
type EntryFlags uint16

const (
	FlagNone          EntryFlags = 0
	FlagSave          EntryFlags = 1 << 0
	FlagOnChangeEvent EntryFlags = 1 << 1

	FlagUserFlag0 EntryFlags = 1 << 7
	FlagUserFlag1 EntryFlags = 1 << 8
	FlagUserFlag2 EntryFlags = 1 << 9
	FlagUserFlag3 EntryFlags = 1 << 10
	FlagUserFlag4 EntryFlags = 1 << 11
	FlagUserFlag5 EntryFlags = 1 << 12
	FlagUserFlag6 EntryFlags = 1 << 13
	FlagUserFlag7 EntryFlags = 1 << 14

	FlagInvalid EntryFlags = 1 << 15
)

// Entry is one named slot on a Board.
type Entry struct {
	Value         variant.Variant
	Flags         EntryFlags
	ChangeCounter uint32
}

// EntryEvent describes a single value change, delivered to every
// listener subscribed through OnEntryEvent.
type EntryEvent struct {
	Name     hashedstring.HashedString
	OldValue variant.Variant
	Entry    Entry
}

// EntryListener receives entry-change notifications synchronously, on
// the goroutine that called SetEntryValue.
type EntryListener func(EntryEvent)

// Board is a key/value store keyed by interned name. Writers and
// readers on different goroutines serialize through mu; the two change
// counters (board-level and entry-level) are plain uint32 protected by
// the same lock rather than separate atomics, since every mutating
// call already holds it.
type Board struct {
	mu   sync.RWMutex
	name hashedstring.HashedString

	entries map[uint64]*entryRecord

	listeners   []EntryListener
	listenersMu sync.Mutex

	boardChangeCounter uint32
	entryChangeCounter uint32

	isGlobal bool
}

type entryRecord struct {
	name hashedstring.HashedString
	Entry
}

// New creates a standalone, non-global board.
func New(name string) *Board {
	return &Board{
		name:    hashedstring.Make(name),
		entries: make(map[uint64]*entryRecord),
	}
}

func (b *Board) IsGlobalBoard() bool { return b.isGlobal }

func (b *Board) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = hashedstring.Make(name)
}

func (b *Board) Name() string { return b.name.String() }

func (b *Board) NameHashed() hashedstring.HashedString { return b.name }

// OnEntryEvent registers a listener invoked whenever an OnChangeEvent
// entry's value actually changes. Listeners are called in registration
// order, synchronously, the same way the engine's event router walks
// its handler slice.
func (b *Board) OnEntryEvent(l EntryListener) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Board) fireEntryEvent(ev EntryEvent) {
	b.listenersMu.Lock()
	listeners := append([]EntryListener(nil), b.listeners...)
	b.listenersMu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}

// HasEntry reports whether name has ever been written to this board.
func (b *Board) HasEntry(name string) bool {
	h := hashedstring.MakeTemp(name)
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[h.Hash()]
	return ok
}

// GetEntry returns a copy of the named entry and true, or the zero
// Entry and false if no such entry exists.
func (b *Board) GetEntry(name string) (Entry, bool) {
	h := hashedstring.MakeTemp(name)
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.entries[h.Hash()]
	if !ok {
		return Entry{}, false
	}
	return rec.Entry, true
}

// GetEntryFlags returns the named entry's flags, or FlagInvalid if no
// such entry exists.
func (b *Board) GetEntryFlags(name string) EntryFlags {
	e, ok := b.GetEntry(name)
	if !ok {
		return FlagInvalid
	}
	return e.Flags
}

// SetEntryFlags updates an existing entry's flags. It returns false
// without effect if the entry was never created via SetEntryValue.
func (b *Board) SetEntryFlags(name string, flags EntryFlags) bool {
	h := hashedstring.MakeTemp(name)
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.entries[h.Hash()]
	if !ok {
		return false
	}
	rec.Flags = flags
	return true
}

// GetEntryValue returns the named entry's value, or fallback if no
// such entry was registered.
func (b *Board) GetEntryValue(name string, fallback variant.Variant) variant.Variant {
	e, ok := b.GetEntry(name)
	if !ok {
		return fallback
	}
	return e.Value
}

// SetEntryValue sets the named entry's value, creating it with
// FlagNone if it does not exist yet. A newly created entry never
// fires OnEntryEvent, even if the caller later sets FlagOnChangeEvent;
// only a change to an already-existing value does, and only when the
// new value actually differs from the old one.
func (b *Board) SetEntryValue(name string, value variant.Variant) {
	hs := hashedstring.Make(name)
	b.mu.Lock()
	rec, existed := b.entries[hs.Hash()]
	if !existed {
		rec = &entryRecord{name: hs, Entry: Entry{Value: value, Flags: FlagNone}}
		b.entries[hs.Hash()] = rec
		b.boardChangeCounter++
		b.mu.Unlock()
		return
	}

	old := rec.Value
	changed := !old.Equal(value)
	if changed {
		rec.Value = value
		rec.ChangeCounter++
		b.entryChangeCounter++
	}
	fireEvent := changed && rec.Flags&FlagOnChangeEvent != 0
	entryCopy := rec.Entry
	b.mu.Unlock()

	if fireEvent {
		b.fireEntryEvent(EntryEvent{Name: hs, OldValue: old, Entry: entryCopy})
	}
}

// RemoveEntry deletes the named entry. A missing name is a no-op.
func (b *Board) RemoveEntry(name string) {
	h := hashedstring.MakeTemp(name)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[h.Hash()]; ok {
		delete(b.entries, h.Hash())
		b.boardChangeCounter++
	}
}

// RemoveAllEntries clears the board.
func (b *Board) RemoveAllEntries() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) > 0 {
		b.entries = make(map[uint64]*entryRecord)
		b.boardChangeCounter++
	}
}

// AllEntries returns a snapshot of every entry, keyed by name.
func (b *Board) AllEntries() map[string]Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Entry, len(b.entries))
	for _, rec := range b.entries {
		out[rec.name.String()] = rec.Entry
	}
	return out
}

func (b *Board) BoardChangeCounter() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.boardChangeCounter
}

func (b *Board) EntryChangeCounter() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.entryChangeCounter
}

// IncrementEntryValue adds one to the named entry's numeric value and
// returns the result. It returns variant.Nil without effect if the
// entry does not exist or does not hold a numeric type.
func (b *Board) IncrementEntryValue(name string) variant.Variant {
	return b.stepEntryValue(name, 1)
}

// DecrementEntryValue subtracts one from the named entry's numeric
// value and returns the result, with the same failure semantics as
// IncrementEntryValue.
func (b *Board) DecrementEntryValue(name string) variant.Variant {
	return b.stepEntryValue(name, -1)
}

func (b *Board) stepEntryValue(name string, delta float64) variant.Variant {
	h := hashedstring.MakeTemp(name)
	b.mu.Lock()
	rec, ok := b.entries[h.Hash()]
	if !ok {
		b.mu.Unlock()
		return variant.Nil
	}
	f, ok := asNumeric(rec.Value)
	if !ok {
		b.mu.Unlock()
		return variant.Nil
	}
	old := rec.Value
	next := reconstructNumeric(rec.Value, f+delta)
	rec.Value = next
	rec.ChangeCounter++
	b.entryChangeCounter++
	fireEvent := rec.Flags&FlagOnChangeEvent != 0
	entryCopy := rec.Entry
	hs := rec.name
	b.mu.Unlock()

	if fireEvent {
		b.fireEntryEvent(EntryEvent{Name: hs, OldValue: old, Entry: entryCopy})
	}
	return next
}

func asNumeric(v variant.Variant) (float64, bool) {
	switch v.Type() {
	case variant.TypeInt8, variant.TypeInt16, variant.TypeInt32, variant.TypeInt64,
		variant.TypeUInt8, variant.TypeUInt16, variant.TypeUInt32, variant.TypeUInt64,
		variant.TypeFloat, variant.TypeDouble:
		return variantAsFloat64(v), true
	default:
		return 0, false
	}
}

func reconstructNumeric(original variant.Variant, f float64) variant.Variant {
	switch original.Type() {
	case variant.TypeInt8:
		return variant.FromInt8(int8(f))
	case variant.TypeInt16:
		return variant.FromInt16(int16(f))
	case variant.TypeInt32:
		return variant.FromInt32(int32(f))
	case variant.TypeInt64:
		return variant.FromInt64(int64(f))
	case variant.TypeUInt8:
		return variant.FromUInt8(uint8(f))
	case variant.TypeUInt16:
		return variant.FromUInt16(uint16(f))
	case variant.TypeUInt32:
		return variant.FromUInt32(uint32(f))
	case variant.TypeUInt64:
		return variant.FromUInt64(uint64(f))
	case variant.TypeFloat:
		return variant.FromFloat(float32(f))
	default:
		return variant.FromDouble(f)
	}
}

func variantAsFloat64(v variant.Variant) float64 {
	switch v.Type() {
	case variant.TypeInt8:
		return float64(variant.MustGet[int8](v))
	case variant.TypeInt16:
		return float64(variant.MustGet[int16](v))
	case variant.TypeInt32:
		return float64(variant.MustGet[int32](v))
	case variant.TypeInt64:
		return float64(variant.MustGet[int64](v))
	case variant.TypeUInt8:
		return float64(variant.MustGet[uint8](v))
	case variant.TypeUInt16:
		return float64(variant.MustGet[uint16](v))
	case variant.TypeUInt32:
		return float64(variant.MustGet[uint32](v))
	case variant.TypeUInt64:
		return float64(variant.MustGet[uint64](v))
	case variant.TypeFloat:
		return float64(variant.MustGet[float32](v))
	case variant.TypeDouble:
		return variant.MustGet[float64](v)
	}
	return 0
}

var (
	globalMu      sync.Mutex
	globalBoards  = make(map[uint64]*Board)
	registryCount atomic.Int64
)

// GetOrCreateGlobal returns the process-wide board registered under
// name, creating and registering it on first reference. Global boards
// are never removed; to reset one, call RemoveAllEntries on it.
func GetOrCreateGlobal(name string) *Board {
	hs := hashedstring.Make(name)
	globalMu.Lock()
	defer globalMu.Unlock()
	if b, ok := globalBoards[hs.Hash()]; ok {
		return b
	}
	b := &Board{
		name:     hs,
		entries:  make(map[uint64]*entryRecord),
		isGlobal: true,
	}
	globalBoards[hs.Hash()] = b
	registryCount.Add(1)
	return b
}

// FindGlobal looks up an already-registered global board without
// creating one.
func FindGlobal(name string) (*Board, bool) {
	h := hashedstring.MakeTemp(name)
	globalMu.Lock()
	defer globalMu.Unlock()
	b, ok := globalBoards[h.Hash()]
	return b, ok
}

// GlobalCount reports how many global boards have been registered.
func GlobalCount() int64 { return registryCount.Load() }
