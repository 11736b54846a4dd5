// Package components provides the built-in component descriptors: the root
// of every surface, plain views, scroll views and the placeholder used for
// components nobody registered.
package components

import (
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/element"
)

// Component names.
const (
	RootViewName          = "RootView"
	ViewName              = "View"
	ScrollViewName        = "ScrollView"
	UnimplementedViewName = "UnimplementedView"
)

// ViewProps configures a View or RootView.
type ViewProps struct {
	TestID string `json:"testID,omitempty" yaml:"testID,omitempty"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// RootView is the descriptor of a surface's root node.
var RootView = core.ConcreteDescriptor[core.NoState]{Name: RootViewName}

// View is the descriptor of a plain container.
var View = core.ConcreteDescriptor[core.NoState]{Name: ViewName}

// Registry returns a registry holding every built-in component, with
// UnimplementedView as the fallback for unknown names.
func Registry() *core.ComponentRegistry {
	r := core.NewComponentRegistry()
	r.Register(RootView)
	r.Register(View)
	r.Register(ScrollView)
	r.Register(UnimplementedView{})
	r.SetFallback(func(name string) core.ComponentDescriptor {
		return UnimplementedView{Requested: name}
	})
	return r
}

// NewBuilder returns a builder over the built-in components.
func NewBuilder(surfaceID core.SurfaceID) *element.Builder {
	return element.NewBuilder(Registry(), surfaceID)
}
