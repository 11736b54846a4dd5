package core

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-drift/shadow/pkg/errors"
)

// ComponentDescriptor creates the first revision of an element, together with
// its family, for one component name.
type ComponentDescriptor interface {
	ComponentName() string

	// CreateNode creates a family for identity and its first node. A non-nil
	// initialState overrides the descriptor's default initial state data.
	CreateNode(identity FamilyIdentity, fragment Fragment, initialState any) ShadowNode
}

// ConcreteDescriptor is the ComponentDescriptor for components whose state
// data has type T.
type ConcreteDescriptor[T any] struct {
	// Name is the component name.
	Name string
	// InitialState derives the initial state data from props. When nil the
	// zero value of T is used.
	InitialState func(props Props) T
}

// ComponentName returns the descriptor's component name.
func (d ConcreteDescriptor[T]) ComponentName() string {
	return d.Name
}

// CreateNode creates a Family[T] and its first Node[T]. The first node always
// carries the family's initial state.
func (d ConcreteDescriptor[T]) CreateNode(identity FamilyIdentity, fragment Fragment, initialState any) ShadowNode {
	return d.Create(identity, fragment, initialState)
}

// Create is CreateNode returning the concrete node type.
func (d ConcreteDescriptor[T]) Create(identity FamilyIdentity, fragment Fragment, initialState any) *Node[T] {
	if identity.ComponentName == "" {
		identity.ComponentName = d.Name
	}

	var data T
	switch {
	case initialState != nil:
		typed, ok := initialState.(T)
		if !ok {
			errors.Violation(&errors.ProtocolError{
				Op:        "ConcreteDescriptor.CreateNode",
				Tag:       int32(identity.Tag),
				Component: identity.ComponentName,
				Reason:    fmt.Sprintf("initial state %T is not %T", initialState, data),
			})
		}
		data = typed
	case d.InitialState != nil:
		data = d.InitialState(fragment.Props)
	}

	family := NewFamily(identity, data)
	fragment.State = nil
	return NewNode(family, fragment)
}

// FallbackFactory returns a descriptor for a component name that has no
// registered descriptor.
type FallbackFactory func(name string) ComponentDescriptor

// ComponentRegistry maps component names to descriptors.
type ComponentRegistry struct {
	mu          sync.RWMutex
	descriptors map[string]ComponentDescriptor
	fallback    FallbackFactory
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		descriptors: make(map[string]ComponentDescriptor),
	}
}

// Register adds or replaces the descriptor for its component name.
func (r *ComponentRegistry) Register(descriptor ComponentDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[descriptor.ComponentName()] = descriptor
}

// SetFallback configures the factory used for unregistered names.
func (r *ComponentRegistry) SetFallback(factory FallbackFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = factory
}

// Lookup returns the descriptor for name, falling back to the fallback
// factory when one is configured.
func (r *ComponentRegistry) Lookup(name string) (ComponentDescriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.descriptors[name]
	fallback := r.fallback
	r.mu.RUnlock()

	if ok {
		return descriptor, true
	}
	if fallback != nil {
		if descriptor := fallback(name); descriptor != nil {
			return descriptor, true
		}
	}
	return nil, false
}

// Names returns the registered component names in sorted order.
func (r *ComponentRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
