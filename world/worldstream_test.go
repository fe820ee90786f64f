package world

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/graph"
	"github.com/lixenwraith/enginecore/stream"
)

type healthComponent struct {
	hp int32
}

func (c *healthComponent) Initialize(obj *GameObject)          {}
func (c *healthComponent) OnActivated(obj *GameObject)         {}
func (c *healthComponent) OnSimulationStarted(obj *GameObject) {}
func (c *healthComponent) OnDeactivated(obj *GameObject)       {}
func (c *healthComponent) Deinitialize(obj *GameObject)        {}

type healthCodec struct{}

func (healthCodec) TypeVersion() uint32 { return 1 }
func (healthCodec) New() Component      { return &healthComponent{} }
func (healthCodec) Encode(inst Component) ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(inst.(*healthComponent).hp))
	return buf, nil
}
func (healthCodec) Decode(inst Component, version uint32, data []byte) error {
	inst.(*healthComponent).hp = int32(binary.LittleEndian.Uint32(data))
	return nil
}

func TestSnapshotAndLoadStreamRoundTrip(t *testing.T) {
	src := testWorld()
	mgr := src.RegisterComponentManager("health")
	mgr.RegisterCodec(healthCodec{})

	a, _ := src.CreateObject("A", HierarchyDynamic, ObjectID{})
	a.SetLocal(corevalue.Transform{Position: corevalue.Vec3{X: 1}, Rotation: corevalue.IdentityQuat(), Scale: corevalue.Vec3{X: 1, Y: 1, Z: 1}, UniformScale: 1})
	tag := RegisterTag("worldstream_test.tagged")
	a.Tags.Set(tag)

	b, _ := src.CreateObject("B", HierarchyDynamic, a.ID())
	b.SetLocal(corevalue.Transform{Position: corevalue.Vec3{Y: 1}, Rotation: corevalue.IdentityQuat(), Scale: corevalue.Vec3{X: 1, Y: 1, Z: 1}, UniformScale: 1})

	if err := src.AddComponent(b.ID(), "health", &healthComponent{hp: 42}, ComponentDynamic); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}

	ws, err := src.SnapshotStream(HierarchyDynamic)
	if err != nil {
		t.Fatalf("SnapshotStream: %v", err)
	}
	if len(ws.RootObjects) != 1 || len(ws.ChildObjects) != 1 {
		t.Fatalf("expected one root and one child, got %+v", ws)
	}
	if len(ws.Types) != 1 || ws.Types[0].TypeName != "health" {
		t.Fatalf("expected one health type block, got %+v", ws.Types)
	}

	var buf bytes.Buffer
	if err := graph.WriteWorldStream(stream.NewWriter(&buf), ws); err != nil {
		t.Fatalf("WriteWorldStream: %v", err)
	}

	decoded, skipped, err := graph.ReadWorldStream(stream.NewReader(&buf), map[string]bool{"health": true}, graph.WorldVersion)
	if err != nil {
		t.Fatalf("ReadWorldStream: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped types, got %v", skipped)
	}

	dst := testWorld()
	dstMgr := dst.RegisterComponentManager("health")
	dstMgr.RegisterCodec(healthCodec{})

	batch, err := dst.LoadStream(decoded, HierarchyDynamic, "load-test")
	if err != nil {
		t.Fatalf("LoadStream: %v", err)
	}
	if dst.Objects.Count() != 2 {
		t.Fatalf("expected 2 objects after load, got %d", dst.Objects.Count())
	}

	dstMgr.DrainPendingInit(10, dst.Objects.Lookup)
	dst.drainInitBatches()
	if !batch.IsReady() {
		t.Fatal("expected the load batch to be ready once its manager drains")
	}

	owners := dstMgr.All()
	if len(owners) != 1 {
		t.Fatalf("expected exactly one health component, got %d", len(owners))
	}
	inst, _ := dstMgr.Get(owners[0])
	if inst.(*healthComponent).hp != 42 {
		t.Fatalf("hp = %d, want 42", inst.(*healthComponent).hp)
	}

	roots := dst.Objects.Roots()
	if len(roots) != 1 {
		t.Fatalf("expected one root object after load, got %d", len(roots))
	}
	root, _ := dst.Objects.Lookup(roots[0])
	if !root.Tags.Contains(tag) {
		t.Fatal("expected the root's tag to survive the round trip")
	}
}
