package graph

import (
	"bytes"
	"testing"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/stream"
)

func TestEmptyWorldRoundTrip(t *testing.T) {
	ws := &WorldStream{}
	var buf bytes.Buffer
	if err := WriteWorldStream(stream.NewWriter(&buf), ws); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, skipped, err := ReadWorldStream(stream.NewReader(&buf), map[string]bool{}, WorldVersion)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.RootObjects) != 0 || len(got.ChildObjects) != 0 || len(got.Types) != 0 {
		t.Fatalf("expected an entirely empty world, got %+v", got)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped types, got %v", skipped)
	}
}

func TestParentChildTransformRoundTrip(t *testing.T) {
	root := WorldObject{
		ParentIndex: 0,
		Name:        "A",
		Local:       corevalue.Transform{Position: corevalue.Vec3{X: 1}, Rotation: corevalue.IdentityQuat(), Scale: corevalue.Vec3{X: 1, Y: 1, Z: 1}, UniformScale: 1},
		ActiveFlag:  true,
	}
	child := WorldObject{
		ParentIndex: 1,
		Name:        "B",
		Local:       corevalue.Transform{Position: corevalue.Vec3{Y: 1}, Rotation: corevalue.IdentityQuat(), Scale: corevalue.Vec3{X: 1, Y: 1, Z: 1}, UniformScale: 1},
		ActiveFlag:  true,
	}
	ws := &WorldStream{RootObjects: []WorldObject{root}, ChildObjects: []WorldObject{child}}

	var buf bytes.Buffer
	if err := WriteWorldStream(stream.NewWriter(&buf), ws); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _, err := ReadWorldStream(stream.NewReader(&buf), map[string]bool{}, WorldVersion)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.RootObjects) != 1 || len(got.ChildObjects) != 1 {
		t.Fatalf("object count mismatch: %+v", got)
	}
	if got.ChildObjects[0].ParentIndex != 1 {
		t.Fatalf("expected child to reference parent index 1, got %d", got.ChildObjects[0].ParentIndex)
	}

	globalB := corevalue.Compose(corevalue.IdentityTransform(), root.Local)
	globalB = corevalue.Compose(globalB, child.Local)
	if globalB.Position != (corevalue.Vec3{X: 1, Y: 1, Z: 0}) {
		t.Fatalf("expected composed global (1,1,0), got %+v", globalB.Position)
	}
}

func TestUnknownComponentTypeSkippedByLength(t *testing.T) {
	ws := &WorldStream{
		RootObjects: []WorldObject{{Name: "A", Local: corevalue.IdentityTransform()}},
		Types: []ComponentTypeBlock{
			{
				TypeName:    "MysteryComponent",
				TypeVersion: 1,
				Creations:   []ComponentCreation{{ParentObjectIndex: 1, DenseIndex: 0, ActiveFlag: true}},
				Serialized:  [][]byte{{0xAA, 0xBB, 0xCC}},
			},
		},
	}
	var buf bytes.Buffer
	if err := WriteWorldStream(stream.NewWriter(&buf), ws); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, skipped, err := ReadWorldStream(stream.NewReader(&buf), map[string]bool{}, WorldVersion)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != "MysteryComponent" {
		t.Fatalf("expected MysteryComponent to be reported skipped, got %v", skipped)
	}
	if len(got.RootObjects) != 1 {
		t.Fatalf("expected the object itself to still load")
	}
}

func TestUnsupportedVersionRejected(t *testing.T) {
	var buf bytes.Buffer
	_ = stream.WriteU8(stream.NewWriter(&buf), 99)
	_, _, err := ReadWorldStream(stream.NewReader(&buf), map[string]bool{}, WorldVersion)
	if err != ErrUnsupportedVersion {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestTagSetBlockRoundTrip(t *testing.T) {
	tags := []uint32{3, 200}
	blocks := tagsToBlocks(tags)
	var words []uint64
	for _, b := range blocks {
		words = append(words, b.word)
	}
	got := blocksToTags(blocks[0].index, words)
	if len(got) != 2 || got[0] != 3 || got[1] != 200 {
		t.Fatalf("got %v", got)
	}
}
