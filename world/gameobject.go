// Package world implements the scene graph: generational game object
// ids, component managers, a phase scheduler, a message bus, and the
// read/write marker discipline that serializes structural changes
// against concurrent component updates.
package world

import (
	"sync"

	"github.com/lixenwraith/enginecore/blackboard"
	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/hashedstring"
)

// ObjectID is a stable, process-wide identifier: an index into the
// object table plus the generation it was allocated under. A stale id
// whose generation no longer matches the live slot is UseAfterFree.
type ObjectID struct {
	index      uint32
	generation uint32
}

func (id ObjectID) IsValid() bool { return id.generation != 0 }

// HierarchyKind selects which of the two parallel trees an object
// belongs to; fixed for the object's lifetime at creation.
type HierarchyKind uint8

const (
	HierarchyStatic HierarchyKind = iota
	HierarchyDynamic
)

// GameObject is one node of the scene graph: identity, hierarchy
// links, and the flat transform data the hierarchy walk recomputes
// every tick.
type GameObject struct {
	id        ObjectID
	Name      hashedstring.HashedString
	GlobalKey string
	Tags      *TagSet
	TeamID    uint16
	Seed      uint32

	Active  bool
	Dynamic bool

	// localBoard is the per-holder blackboard owners reach for without a
	// global lookup; created lazily since most objects never use one.
	localBoard *blackboard.Board

	hierarchy HierarchyKind
	parent    ObjectID
	firstChild ObjectID
	nextSibling ObjectID

	local        corevalue.Transform
	global       corevalue.Transform
	updateCounter uint64

	components []componentRef

	markedForDeletion bool
}

type componentRef struct {
	managerID uint16
}

func (o *GameObject) ID() ObjectID               { return o.id }
func (o *GameObject) Parent() ObjectID            { return o.parent }
func (o *GameObject) Local() corevalue.Transform  { return o.local }
func (o *GameObject) Global() corevalue.Transform { return o.global }
func (o *GameObject) UpdateCounter() uint64       { return o.updateCounter }

// SetLocal updates the object's local transform and bumps its update
// counter so the next hierarchy walk recomputes descendants.
func (o *GameObject) SetLocal(t corevalue.Transform) {
	o.local = t
	o.updateCounter++
}

// Blackboard returns the object's own local board, creating it on first
// use. Callers must hold a write marker, the same discipline SetLocal
// relies on rather than a per-object lock.
func (o *GameObject) Blackboard() *blackboard.Board {
	if o.localBoard == nil {
		o.localBoard = blackboard.New(o.Name.String())
	}
	return o.localBoard
}

// objectSlot is one entry of the generational table; a freed slot is
// recycled with its generation incremented, so any ObjectID captured
// before the free compares unequal to whatever occupies the slot next.
type objectSlot struct {
	obj        *GameObject
	generation uint32
	free       bool
}

// ObjectTable is the block-storage allocator backing every live
// GameObject: a dense slice of slots plus a free list of recycled
// indices, each slot keyed by a generation so a stale id can never
// resolve to a slot's new occupant.
type ObjectTable struct {
	mu       sync.RWMutex
	slots    []objectSlot
	freeList []uint32
	roots    []ObjectID
}

func NewObjectTable() *ObjectTable {
	return &ObjectTable{}
}

// Create allocates a new object and returns its id. parent may be the
// zero ObjectID for a root object.
func (t *ObjectTable) Create(name string, hierarchy HierarchyKind, parent ObjectID) *GameObject {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, objectSlot{generation: 1})
	}

	gen := t.slots[idx].generation
	id := ObjectID{index: idx, generation: gen}
	obj := &GameObject{
		id:        id,
		Name:      hashedstring.Make(name),
		Tags:      NewTagSet(),
		Active:    true,
		Dynamic:   hierarchy == HierarchyDynamic,
		hierarchy: hierarchy,
		parent:    parent,
	}
	t.slots[idx] = objectSlot{obj: obj, generation: gen}

	if parent.IsValid() {
		if p, ok := t.lookupLocked(parent); ok {
			obj.nextSibling = p.firstChild
			p.firstChild = id
		}
	} else {
		t.roots = append(t.roots, id)
	}
	return obj
}

func (t *ObjectTable) lookupLocked(id ObjectID) (*GameObject, bool) {
	if int(id.index) >= len(t.slots) {
		return nil, false
	}
	slot := t.slots[id.index]
	if slot.free || slot.obj == nil || slot.generation != id.generation {
		return nil, false
	}
	return slot.obj, true
}

// Lookup resolves id to its GameObject, failing with UseAfterFree
// semantics (ok=false) if the slot has been recycled under a new
// generation since id was captured.
func (t *ObjectTable) Lookup(id ObjectID) (*GameObject, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookupLocked(id)
}

// MarkForDeletion flags id for destruction at the next sync point;
// the object remains resolvable until Flush actually removes it.
func (t *ObjectTable) MarkForDeletion(id ObjectID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if obj, ok := t.lookupLocked(id); ok {
		obj.markedForDeletion = true
	}
}

// Flush removes every object marked for deletion, recycling its slot
// with an incremented generation, and invokes onDeinitialize for each
// one before the slot is freed. It returns the ids actually removed.
func (t *ObjectTable) Flush(onDeinitialize func(*GameObject)) []ObjectID {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []ObjectID
	for i := range t.slots {
		slot := &t.slots[i]
		if slot.free || slot.obj == nil || !slot.obj.markedForDeletion {
			continue
		}
		obj := slot.obj
		if onDeinitialize != nil {
			onDeinitialize(obj)
		}
		removed = append(removed, obj.id)
		t.detachLocked(obj)
		slot.obj = nil
		slot.free = true
		slot.generation++
		t.freeList = append(t.freeList, uint32(i))
	}
	return removed
}

func (t *ObjectTable) detachLocked(obj *GameObject) {
	if !obj.parent.IsValid() {
		for i, r := range t.roots {
			if r == obj.id {
				t.roots = append(t.roots[:i], t.roots[i+1:]...)
				break
			}
		}
		return
	}
	parent, ok := t.lookupLocked(obj.parent)
	if !ok {
		return
	}
	if parent.firstChild == obj.id {
		parent.firstChild = obj.nextSibling
		return
	}
	cur, _ := t.lookupLocked(parent.firstChild)
	for cur != nil {
		if cur.nextSibling == obj.id {
			cur.nextSibling = obj.nextSibling
			return
		}
		cur, _ = t.lookupLocked(cur.nextSibling)
	}
}

// Roots returns the ids of every object with no parent.
func (t *ObjectTable) Roots() []ObjectID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ObjectID, len(t.roots))
	copy(out, t.roots)
	return out
}

// Children returns the ids of id's direct children.
func (t *ObjectTable) Children(id ObjectID) []ObjectID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	obj, ok := t.lookupLocked(id)
	if !ok {
		return nil
	}
	var out []ObjectID
	cur, ok := t.lookupLocked(obj.firstChild)
	for ok {
		out = append(out, cur.id)
		cur, ok = t.lookupLocked(cur.nextSibling)
	}
	return out
}

// RecomputeTransforms walks the hierarchy breadth-first, level by
// level, setting global = parent.global * local for every object
// (global = local for roots). Each level only reads already-finalized
// parent globals from the previous level, so levels are safe to
// dispatch as independent batches.
func (t *ObjectTable) RecomputeTransforms() {
	t.mu.Lock()
	defer t.mu.Unlock()

	level := append([]ObjectID(nil), t.roots...)
	for len(level) > 0 {
		var next []ObjectID
		for _, id := range level {
			obj, ok := t.lookupLocked(id)
			if !ok {
				continue
			}
			if obj.parent.IsValid() {
				if parent, ok := t.lookupLocked(obj.parent); ok {
					obj.global = corevalue.Compose(parent.global, obj.local)
				}
			} else {
				obj.global = obj.local
			}
			cur, ok := t.lookupLocked(obj.firstChild)
			for ok {
				next = append(next, cur.id)
				cur, ok = t.lookupLocked(cur.nextSibling)
			}
		}
		level = next
	}
}

// Count returns the number of live (non-free) objects.
func (t *ObjectTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, s := range t.slots {
		if !s.free && s.obj != nil {
			n++
		}
	}
	return n
}
