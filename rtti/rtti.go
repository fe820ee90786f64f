// Package rtti implements the runtime type descriptor system: every type
// participating in serialization, property editing, or scripting gets a
// static Descriptor registered at module init. Descriptors never use the
// standard reflect package — property access and construction go through
// closed interfaces the type itself implements, the same way the world
// package's component stores avoid reflect in favor of typed registries.
package rtti

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrTypeNotRegistered is returned when a descriptor is looked up by a
// name that has not been registered.
var ErrTypeNotRegistered = errors.New("rtti: type not registered")

// ErrAlreadyRegistered is returned by Register when the name collides
// with an existing descriptor.
var ErrAlreadyRegistered = errors.New("rtti: type already registered")

// PropertyFlag is a bitset of modifiers carried by a Property.
type PropertyFlag uint16

const (
	FlagStandardType PropertyFlag = 1 << iota
	FlagReadOnly
	FlagPointer
	FlagReference
	FlagClass
	FlagBitflags
	FlagIsEnum
	FlagPhantom
)

func (f PropertyFlag) Has(bit PropertyFlag) bool { return f&bit != 0 }

// PropertyKind distinguishes the property categories the reflection
// surface exposes distinct operations for.
type PropertyKind uint8

const (
	KindConstant PropertyKind = iota
	KindMember
	KindArray
	KindSet
	KindMap
	KindFunction
)

// Property is a polymorphic descriptor over {Constant, Member, Array, Set,
// Map, Function}. Only the fields relevant to Kind are meaningful; the
// accessors panic if called against the wrong kind, mirroring how the
// original engine's property classes are separate C++ types under one
// base.
type Property struct {
	Name  string
	Kind  PropertyKind
	Flags PropertyFlag

	// Member: read/write a single value.
	Get func(owner any) (any, error)
	Set func(owner any, value any) error

	// Array/Set/Map: count/get/set/insert/remove/move over a container
	// property without exposing its concrete representation.
	Count  func(owner any) int
	At     func(owner any, key any) (any, error)
	Put    func(owner any, key any, value any) error
	Insert func(owner any, key any, value any) error
	Remove func(owner any, key any) error
	Move   func(owner any, from, to any) error

	// Function: invoke with positional arguments.
	Invoke func(owner any, args ...any) (any, error)
}

// Attribute is a free-form annotation attached to a type or property
// (e.g. display category, clamp range) that does not change reflection
// behavior but is consulted by tooling.
type Attribute struct {
	Name  string
	Value any
}

// Descriptor is the static type-descriptor every reflected type registers
// exactly once.
type Descriptor struct {
	Name       string
	Parent     *Descriptor
	Version    uint32
	Properties []Property
	Functions  []Property
	Attributes []Attribute

	// Allocate constructs a zero-value instance of the described type,
	// standing in for the allocator vtable entry the original carries.
	Allocate func() any
}

// Property looks up a property by name, including inherited ones (walking
// Parent), child properties shadowing a parent's property of the same name.
func (d *Descriptor) Property(name string) (*Property, bool) {
	for cur := d; cur != nil; cur = cur.Parent {
		for i := range cur.Properties {
			if cur.Properties[i].Name == name {
				return &cur.Properties[i], true
			}
		}
	}
	return nil, false
}

// IsDerivedFrom reports whether d is ancestorName or descends from it.
func (d *Descriptor) IsDerivedFrom(ancestorName string) bool {
	for cur := d; cur != nil; cur = cur.Parent {
		if cur.Name == ancestorName {
			return true
		}
	}
	return false
}

// InheritanceChain returns the type's ancestors from the root base down
// to d itself, the order the graph patcher needs to apply base-class
// patches bottom-up... actually root-to-leaf, so callers iterate in
// ascending specificity.
func (d *Descriptor) InheritanceChain() []*Descriptor {
	var chain []*Descriptor
	for cur := d; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	// reverse: root first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Registry is the process-wide, write-once-then-append type table: one
// mutex guards registration, reads after startup are lock-free against a
// snapshot map swapped in atomically.
type Registry struct {
	mu    sync.Mutex
	byName map[string]*Descriptor

	afterRegistration []func(*Descriptor)
}

// NewRegistry creates an empty registry. Applications typically keep one
// process-wide instance, handed to subsystems at init (the "global
// singleton expressed as a process-scoped context" pattern).
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register adds d to the registry. The caller is responsible for calling
// Register in dependency order: a type must be registered after every
// type it references by name in its properties, so that property
// resolution never has to forward-reference an unregistered descriptor.
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return errors.Wrapf(ErrAlreadyRegistered, "%s", d.Name)
	}
	r.byName[d.Name] = d
	for _, cb := range r.afterRegistration {
		cb(d)
	}
	return nil
}

// Unregister removes a previously registered descriptor, the reverse of
// Register. It does not cascade to dependents; callers must unregister in
// reverse dependency order themselves.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, name)
}

// Lookup returns the descriptor for name, or ErrTypeNotRegistered.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrTypeNotRegistered, "%s", name)
	}
	return d, nil
}

// OnAfterRegistration subscribes cb to fire once for every descriptor
// registered from this point forward (and is not retroactively invoked
// for descriptors already present).
func (r *Registry) OnAfterRegistration(cb func(*Descriptor)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterRegistration = append(r.afterRegistration, cb)
}

// Count returns the number of registered types.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// All returns every registered descriptor. Order is unspecified; callers
// needing determinism should sort by Name.
func (r *Registry) All() []*Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Descriptor, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	return out
}
