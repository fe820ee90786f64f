package graph

// NodePatchFunc rewrites a single node in place when its base class's
// stored version is behind the registered target version. It may rename
// the node's type, rename/rewrite properties, or rebase the parent via
// the PatchContext it is handed.
type NodePatchFunc func(ctx *PatchContext, node *AbstractObjectNode)

// GraphPatchFunc runs once per graph load, before any per-node patch,
// and may restructure the graph as a whole (split/merge nodes).
type GraphPatchFunc func(g *AbstractObjectGraph)

type nodePatchKey struct {
	typeName     string
	targetVersion uint32
}

// PatchRegistry holds every registered patch, keyed so PatchGraph can look
// up "the patch that brings type T from version v to v+1" in sequence.
type PatchRegistry struct {
	nodePatches   map[nodePatchKey]NodePatchFunc
	maxVersion    map[string]uint32
	graphPatches  []GraphPatchFunc
	typeParent    map[string]string
}

func NewPatchRegistry() *PatchRegistry {
	return &PatchRegistry{
		nodePatches: make(map[nodePatchKey]NodePatchFunc),
		maxVersion:  make(map[string]uint32),
		typeParent:  make(map[string]string),
	}
}

// RegisterNodePatch adds a patch that runs when a node of typeName is
// found at version targetVersion-1, bringing it to targetVersion.
func (r *PatchRegistry) RegisterNodePatch(typeName string, targetVersion uint32, fn NodePatchFunc) {
	r.nodePatches[nodePatchKey{typeName, targetVersion}] = fn
	if cur, ok := r.maxVersion[typeName]; !ok || targetVersion > cur {
		r.maxVersion[typeName] = targetVersion
	}
}

// RegisterGraphPatch adds a whole-graph patch, run before any node patch.
func (r *PatchRegistry) RegisterGraphPatch(fn GraphPatchFunc) {
	r.graphPatches = append(r.graphPatches, fn)
}

// DeclareParent records that typeName's immediate base class is
// parentName, the edge PatchContext.PatchBaseClass walks when a patch
// wants to defer to a base class's own patch chain.
func (r *PatchRegistry) DeclareParent(typeName, parentName string) {
	r.typeParent[typeName] = parentName
}

func (r *PatchRegistry) maxPatchVersion(typeName string) uint32 { return r.maxVersion[typeName] }

// PatchContext is handed to each NodePatchFunc invocation; it tracks the
// node's inheritance chain being walked and lets a patch jump to a
// specific base class or rename the node's type.
type PatchContext struct {
	registry      *PatchRegistry
	graph         *AbstractObjectGraph
	node          *AbstractObjectNode
	baseClasses   []versionKey
	baseClassIdx  int
}

type versionKey struct {
	typeName string
	version  uint32
}

// RenameClass changes the node's type name, keeping its current version
// so later patches targeting the new name continue from where this one
// left off.
func (ctx *PatchContext) RenameClass(newTypeName string) {
	ctx.node.TypeName = newTypeName
	ctx.baseClasses[ctx.baseClassIdx].typeName = newTypeName
}

// RenameClassWithVersion renames the type and resets its version target,
// for patches that also want to skip or repeat a version step.
func (ctx *PatchContext) RenameClassWithVersion(newTypeName string, version uint32) {
	ctx.node.TypeName = newTypeName
	ctx.baseClasses[ctx.baseClassIdx].typeName = newTypeName
	if version > 0 {
		ctx.baseClasses[ctx.baseClassIdx].version = version - 1
	}
}

// Node returns the node currently being patched.
func (ctx *PatchContext) Node() *AbstractObjectNode { return ctx.node }

func (ctx *PatchContext) buildBaseClasses() {
	ctx.baseClasses = ctx.baseClasses[:0]
	cur := versionKey{typeName: ctx.node.TypeName, version: ctx.node.TypeVersion}
	ctx.baseClasses = append(ctx.baseClasses, cur)
	for {
		parent, ok := ctx.registry.typeParent[ctx.baseClasses[len(ctx.baseClasses)-1].typeName]
		if !ok || parent == "" {
			break
		}
		ctx.baseClasses = append(ctx.baseClasses, versionKey{typeName: parent, version: 0})
	}
}

func (ctx *PatchContext) patchNode(node *AbstractObjectNode) {
	ctx.node = node
	ctx.buildBaseClasses()

	for ctx.baseClassIdx = 0; ctx.baseClassIdx < len(ctx.baseClasses); ctx.baseClassIdx++ {
		target := ctx.registry.maxPatchVersion(ctx.baseClasses[ctx.baseClassIdx].typeName)
		ctx.applyUpTo(ctx.baseClassIdx, target)
	}
	node.TypeVersion = ctx.baseClasses[0].version
}

func (ctx *PatchContext) applyUpTo(idx int, targetVersion uint32) {
	for ctx.baseClasses[idx].version < targetVersion {
		next := ctx.baseClasses[idx].version + 1
		key := nodePatchKey{typeName: ctx.baseClasses[idx].typeName, targetVersion: next}
		if fn, ok := ctx.registry.nodePatches[key]; ok {
			fn(ctx, ctx.node)
			targetVersion = ctx.registry.maxPatchVersion(ctx.baseClasses[idx].typeName)
		}
		ctx.baseClasses[idx].version++
	}
}

// PatchGraph runs every registered whole-graph patch first, then patches
// every node in the graph to its current registered version.
func (r *PatchRegistry) PatchGraph(g *AbstractObjectGraph) {
	for _, fn := range r.graphPatches {
		fn(g)
	}

	ctx := &PatchContext{registry: r, graph: g}
	for _, n := range g.Nodes() {
		ctx.patchNode(n)
	}
}
