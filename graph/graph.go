// Package graph implements the intermediate representation the
// serializer reads and writes: AbstractObjectGraph, the per-type patch
// registry that brings old persisted nodes forward to the current type
// version, and the world wire codec built on top of both.
package graph

import (
	"sort"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/variant"
	"github.com/pkg/errors"
)

// ErrUnresolvedReference is returned when a node's property references a
// Uuid with no corresponding node in the same graph, and the reference is
// not explicitly marked external.
var ErrUnresolvedReference = errors.New("graph: unresolved reference")

// AbstractObjectNode is one node in the intermediate representation: a
// named, versioned bag of properties, any of which may itself hold a Uuid
// pointing at another node in the same graph.
type AbstractObjectNode struct {
	Guid        corevalue.Uuid
	TypeName    string
	TypeVersion uint32
	NodeName    string
	Properties  []NodeProperty
}

// NodeProperty is a single (name, value) pair on a node.
type NodeProperty struct {
	Name  string
	Value variant.Variant
}

func (n *AbstractObjectNode) Property(name string) (variant.Variant, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return variant.Nil, false
}

func (n *AbstractObjectNode) SetProperty(name string, v variant.Variant) {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			n.Properties[i].Value = v
			return
		}
	}
	n.Properties = append(n.Properties, NodeProperty{Name: name, Value: v})
}

func (n *AbstractObjectNode) RemoveProperty(name string) bool {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			n.Properties = append(n.Properties[:i], n.Properties[i+1:]...)
			return true
		}
	}
	return false
}

// externalRef records a node whose parent is known to live outside this
// graph, exempting it from unresolved-reference validation.
type externalRef struct{}

// AbstractObjectGraph is a mapping from Uuid to AbstractObjectNode, used
// only as the Serializer's intermediate form between the typed world and
// the wire format.
type AbstractObjectGraph struct {
	nodes    map[corevalue.Uuid]*AbstractObjectNode
	external map[corevalue.Uuid]externalRef
}

func NewAbstractObjectGraph() *AbstractObjectGraph {
	return &AbstractObjectGraph{
		nodes:    make(map[corevalue.Uuid]*AbstractObjectNode),
		external: make(map[corevalue.Uuid]externalRef),
	}
}

// AddNode inserts or overwrites a node by its Guid.
func (g *AbstractObjectGraph) AddNode(n *AbstractObjectNode) { g.nodes[n.Guid] = n }

func (g *AbstractObjectGraph) Node(id corevalue.Uuid) (*AbstractObjectNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *AbstractObjectGraph) RemoveNode(id corevalue.Uuid) { delete(g.nodes, id) }

// MarkExternal records that id is intentionally outside this graph: a
// property referencing it is not an unresolved reference.
func (g *AbstractObjectGraph) MarkExternal(id corevalue.Uuid) { g.external[id] = externalRef{} }

func (g *AbstractObjectGraph) Count() int { return len(g.nodes) }

// Nodes returns every node, sorted by Uuid string form for determinism.
func (g *AbstractObjectGraph) Nodes() []*AbstractObjectNode {
	out := make([]*AbstractObjectNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Guid.String() < out[j].Guid.String() })
	return out
}

// ValidateReferences walks every Uuid-valued property and confirms it
// resolves to a node in this graph or an explicitly marked external id.
func (g *AbstractObjectGraph) ValidateReferences() error {
	for _, n := range g.Nodes() {
		for _, p := range n.Properties {
			if p.Value.Type() != variant.TypeUuid {
				continue
			}
			ref := variant.MustGet[corevalue.Uuid](p.Value)
			if ref.IsNil() {
				continue
			}
			if _, ok := g.nodes[ref]; ok {
				continue
			}
			if _, ok := g.external[ref]; ok {
				continue
			}
			return errors.Wrapf(ErrUnresolvedReference, "node %s property %s -> %s", n.Guid, p.Name, ref)
		}
	}
	return nil
}
