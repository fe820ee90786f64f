package graph

import (
	"testing"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/variant"
)

func TestPatchRenamesProperty(t *testing.T) {
	reg := NewPatchRegistry()
	reg.RegisterNodePatch("SurfaceResourceDescriptor", 2, func(ctx *PatchContext, node *AbstractObjectNode) {
		if v, ok := node.Property("Base Surface"); ok {
			node.RemoveProperty("Base Surface")
			node.SetProperty("BaseSurface", v)
		}
	})

	g := NewAbstractObjectGraph()
	node := &AbstractObjectNode{
		Guid:        corevalue.NewUuid(),
		TypeName:    "SurfaceResourceDescriptor",
		TypeVersion: 1,
	}
	node.SetProperty("Base Surface", variant.FromString("Rock"))
	g.AddNode(node)

	reg.PatchGraph(g)

	if _, ok := node.Property("Base Surface"); ok {
		t.Fatalf("expected old property name to be gone")
	}
	v, ok := node.Property("BaseSurface")
	if !ok {
		t.Fatalf("expected new property name to be present")
	}
	if variant.MustGet[string](v) != "Rock" {
		t.Fatalf("got %v", v)
	}
	if node.TypeVersion != 2 {
		t.Fatalf("expected node version bumped to 2, got %d", node.TypeVersion)
	}
}

func TestPatchIdempotentAtLatestVersion(t *testing.T) {
	reg := NewPatchRegistry()
	applyCount := 0
	reg.RegisterNodePatch("Widget", 2, func(ctx *PatchContext, node *AbstractObjectNode) {
		applyCount++
	})

	g := NewAbstractObjectGraph()
	node := &AbstractObjectNode{Guid: corevalue.NewUuid(), TypeName: "Widget", TypeVersion: 2}
	g.AddNode(node)

	reg.PatchGraph(g)

	if applyCount != 0 {
		t.Fatalf("expected no patch to run against an already-current node, ran %d times", applyCount)
	}
}

func TestValidateReferencesRejectsDangling(t *testing.T) {
	g := NewAbstractObjectGraph()
	n := &AbstractObjectNode{Guid: corevalue.NewUuid(), TypeName: "Thing"}
	n.SetProperty("target", variant.FromUuid(corevalue.NewUuid()))
	g.AddNode(n)

	if err := g.ValidateReferences(); err == nil {
		t.Fatalf("expected unresolved reference error")
	}
}

func TestValidateReferencesAllowsMarkedExternal(t *testing.T) {
	g := NewAbstractObjectGraph()
	external := corevalue.NewUuid()
	n := &AbstractObjectNode{Guid: corevalue.NewUuid(), TypeName: "Thing"}
	n.SetProperty("target", variant.FromUuid(external))
	g.AddNode(n)
	g.MarkExternal(external)

	if err := g.ValidateReferences(); err != nil {
		t.Fatalf("expected external reference to pass validation: %v", err)
	}
}
