package world

import (
	"github.com/lixenwraith/enginecore/graph"
	"github.com/pkg/errors"
)

// ComponentCodec encodes and decodes one component type's instances for
// the world-stream wire format, the same Load-style adapter shape the
// resource package's Loader uses for asset bytes.
type ComponentCodec interface {
	TypeVersion() uint32
	New() Component
	Encode(inst Component) ([]byte, error)
	Decode(inst Component, version uint32, data []byte) error
}

// ComponentCodecFuncs adapts three plain functions to ComponentCodec.
type ComponentCodecFuncs struct {
	Version uint32
	NewFn   func() Component
	EncodeFn func(Component) ([]byte, error)
	DecodeFn func(Component, uint32, []byte) error
}

func (c ComponentCodecFuncs) TypeVersion() uint32 { return c.Version }
func (c ComponentCodecFuncs) New() Component      { return c.NewFn() }
func (c ComponentCodecFuncs) Encode(inst Component) ([]byte, error) {
	return c.EncodeFn(inst)
}
func (c ComponentCodecFuncs) Decode(inst Component, version uint32, data []byte) error {
	return c.DecodeFn(inst, version, data)
}

// RegisterCodec attaches codec to m, enabling its component type to
// round-trip through SnapshotStream/LoadStream.
func (m *ComponentManager) RegisterCodec(codec ComponentCodec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codec = codec
}

// SnapshotStream flattens every live object and component in hierarchy
// into a wire-ready WorldStream: roots first, then children in the same
// breadth-first order RecomputeTransforms walks, so ParentIndex always
// refers to an already-emitted object.
func (w *World) SnapshotStream(hierarchy HierarchyKind) (*graph.WorldStream, error) {
	w.Objects.mu.RLock()
	var roots []ObjectID
	for _, id := range w.Objects.roots {
		if obj, ok := w.Objects.lookupLocked(id); ok && obj.hierarchy == hierarchy {
			roots = append(roots, id)
		}
	}
	w.Objects.mu.RUnlock()

	denseIndex := make(map[ObjectID]uint32)
	var rootObjs, childObjs []graph.WorldObject

	level := roots
	for len(level) > 0 {
		var next []ObjectID
		for _, id := range level {
			obj, ok := w.Objects.Lookup(id)
			if !ok {
				continue
			}
			idx := uint32(len(denseIndex) + 1)
			denseIndex[id] = idx

			wobj := graph.WorldObject{
				Name:        obj.Name.String(),
				GlobalKey:   obj.GlobalKey,
				Local:       obj.local,
				ActiveFlag:  obj.Active,
				DynamicFlag: obj.Dynamic,
				Tags:        obj.Tags.ToSlice(),
				TeamID:      obj.TeamID,
				StableSeed:  obj.Seed,
			}
			if obj.parent.IsValid() {
				wobj.ParentIndex = denseIndex[obj.parent]
				childObjs = append(childObjs, wobj)
			} else {
				rootObjs = append(rootObjs, wobj)
			}

			for _, cid := range w.Objects.Children(id) {
				if child, ok := w.Objects.Lookup(cid); ok && child.hierarchy == hierarchy {
					next = append(next, cid)
				}
			}
		}
		level = next
	}

	w.mu.RLock()
	managers := append([]*ComponentManager(nil), w.managers...)
	w.mu.RUnlock()

	var types []graph.ComponentTypeBlock
	for _, m := range managers {
		block, err := m.snapshotBlock(denseIndex)
		if err != nil {
			return nil, err
		}
		if block != nil {
			types = append(types, *block)
		}
	}

	return &graph.WorldStream{RootObjects: rootObjs, ChildObjects: childObjs, Types: types}, nil
}

func (m *ComponentManager) snapshotBlock(denseIndex map[ObjectID]uint32) (*graph.ComponentTypeBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.codec == nil || len(m.dense) == 0 {
		return nil, nil
	}

	block := &graph.ComponentTypeBlock{TypeName: m.typeName, TypeVersion: m.codec.TypeVersion()}
	for i, owner := range m.dense {
		parentIdx, ok := denseIndex[owner]
		if !ok {
			continue
		}
		st := m.state[owner]
		inst := m.components[owner]
		payload, err := m.codec.Encode(inst)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s on object %d", m.typeName, owner.index)
		}
		block.Creations = append(block.Creations, graph.ComponentCreation{
			ParentObjectIndex: parentIdx,
			DenseIndex:        uint32(i),
			ActiveFlag:        st.active,
			UserFlags:         uint8(st.flags),
		})
		block.Serialized = append(block.Serialized, payload)
	}
	return block, nil
}

// LoadStream reconstructs objects and components from ws into hierarchy,
// queuing every component for the normal batched Initialize/OnActivated
// pass rather than running it inline. It returns an InitBatch tracking
// that queue so callers can poll completion the same way a streamed
// resource load is polled.
func (w *World) LoadStream(ws *graph.WorldStream, hierarchy HierarchyKind, name string) (*InitBatch, error) {
	byIndex := make(map[uint32]ObjectID, len(ws.RootObjects)+len(ws.ChildObjects))

	materialize := func(idx uint32, wobj graph.WorldObject, parent ObjectID) error {
		obj, err := w.CreateObject(wobj.Name, hierarchy, parent)
		if err != nil {
			return err
		}
		obj.GlobalKey = wobj.GlobalKey
		obj.local = wobj.Local
		obj.Active = wobj.ActiveFlag
		obj.Dynamic = wobj.DynamicFlag
		obj.TeamID = wobj.TeamID
		obj.Seed = wobj.StableSeed
		for _, tag := range wobj.Tags {
			obj.Tags.Set(tag)
		}
		byIndex[idx] = obj.ID()
		return nil
	}

	for i, wobj := range ws.RootObjects {
		if err := materialize(uint32(i+1), wobj, ObjectID{}); err != nil {
			return nil, err
		}
	}
	for i, wobj := range ws.ChildObjects {
		idx := uint32(len(ws.RootObjects) + i + 1)
		parent, ok := byIndex[wobj.ParentIndex]
		if !ok {
			return nil, errors.Errorf("world: child object references unknown parent index %d", wobj.ParentIndex)
		}
		if err := materialize(idx, wobj, parent); err != nil {
			return nil, err
		}
	}

	w.Objects.RecomputeTransforms()

	var spanned []*ComponentManager
	for _, block := range ws.Types {
		m, ok := w.ComponentManager(block.TypeName)
		if !ok || m.codec == nil {
			continue
		}
		if err := m.loadBlock(block, byIndex); err != nil {
			return nil, err
		}
		spanned = append(spanned, m)
	}

	return w.NewInitBatch(name, spanned...), nil
}

func (m *ComponentManager) loadBlock(block graph.ComponentTypeBlock, byIndex map[uint32]ObjectID) error {
	for i, creation := range block.Creations {
		owner, ok := byIndex[creation.ParentObjectIndex]
		if !ok {
			return errors.Errorf("world: component creation references unknown object index %d", creation.ParentObjectIndex)
		}
		if i >= len(block.Serialized) {
			return errors.Errorf("world: component %s creation %d missing serialized payload", block.TypeName, i)
		}
		inst := m.codec.New()
		if err := m.codec.Decode(inst, block.TypeVersion, block.Serialized[i]); err != nil {
			return errors.Wrapf(err, "decode %s on object %d", block.TypeName, owner.index)
		}
		m.Add(owner, inst, ComponentDynamic)
		m.mu.Lock()
		if st, ok := m.state[owner]; ok {
			st.flags = UserFlags(creation.UserFlags)
		}
		m.mu.Unlock()
	}
	return nil
}
