// Package element builds shadow trees from declarative descriptions.
//
//	root := builder.Build(element.Element{
//	    Component: "RootView",
//	    Children: []element.Element{
//	        {Component: "ScrollView", Tag: 10, Reference: &scroll},
//	    },
//	})
package element

import (
	"fmt"
	"sync"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
)

// Element describes one node of a tree to build.
type Element struct {
	// Component is the registered component name.
	Component string
	// Tag is the element tag. Zero allocates one.
	Tag core.Tag
	// Props are handed to the node unchanged.
	Props core.Props
	// State overrides the component's initial state data when non-nil.
	State any
	// Children are built before their parent, in order.
	Children []Element
	// Reference, when set, receives the built node.
	Reference *core.ShadowNode
}

// Builder turns Elements into shadow nodes. A Builder is safe for
// concurrent use; allocated tags never repeat a tag it has already issued.
type Builder struct {
	registry  *core.ComponentRegistry
	surfaceID core.SurfaceID

	mu      sync.Mutex
	lastTag core.Tag
	issued  map[core.Tag]bool
}

// NewBuilder creates a builder resolving components through registry.
func NewBuilder(registry *core.ComponentRegistry, surfaceID core.SurfaceID) *Builder {
	return &Builder{registry: registry, surfaceID: surfaceID, issued: make(map[core.Tag]bool)}
}

// SurfaceID returns the surface the builder creates nodes for.
func (b *Builder) SurfaceID() core.SurfaceID {
	return b.surfaceID
}

// Registry returns the builder's component registry.
func (b *Builder) Registry() *core.ComponentRegistry {
	return b.registry
}

// Build creates the first revision of the tree described by el, with a new
// family for every element. Unknown components and duplicate tags panic.
func (b *Builder) Build(el Element) core.ShadowNode {
	b.mu.Lock()
	defer b.mu.Unlock()

	reserved := make(map[core.Tag]bool)
	collectTags(el, reserved)
	return b.build(el, reserved, make(map[core.Tag]bool))
}

func collectTags(el Element, tags map[core.Tag]bool) {
	if el.Tag != 0 {
		tags[el.Tag] = true
	}
	for _, child := range el.Children {
		collectTags(child, tags)
	}
}

func (b *Builder) build(el Element, reserved, seen map[core.Tag]bool) core.ShadowNode {
	descriptor, ok := b.registry.Lookup(el.Component)
	if !ok {
		errors.Violation(&errors.ProtocolError{
			Op:        "Builder.Build",
			Tag:       int32(el.Tag),
			Component: el.Component,
			Reason:    "no descriptor registered for component",
		})
	}

	tag := el.Tag
	if tag == 0 {
		tag = b.allocateTag(reserved)
	}
	if seen[tag] {
		errors.Violation(&errors.ProtocolError{
			Op:        "Builder.Build",
			Tag:       int32(tag),
			Component: el.Component,
			Reason:    fmt.Sprintf("tag %d is used twice", tag),
		})
	}
	seen[tag] = true
	b.issued[tag] = true

	var children []core.ShadowNode
	if len(el.Children) > 0 {
		children = make([]core.ShadowNode, 0, len(el.Children))
		for _, child := range el.Children {
			children = append(children, b.build(child, reserved, seen))
		}
	}

	identity := core.FamilyIdentity{
		Tag:           tag,
		SurfaceID:     b.surfaceID,
		ComponentName: el.Component,
	}
	node := descriptor.CreateNode(identity, core.Fragment{Props: el.Props, Children: children}, el.State)
	if el.Reference != nil {
		*el.Reference = node
	}
	return node
}

// allocateTag returns the next tag that is neither claimed explicitly by
// the tree nor issued by an earlier build. b.mu must be held.
func (b *Builder) allocateTag(reserved map[core.Tag]bool) core.Tag {
	for {
		b.lastTag++
		if !reserved[b.lastTag] && !b.issued[b.lastTag] {
			return b.lastTag
		}
	}
}
