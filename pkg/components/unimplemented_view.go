package components

import "github.com/go-drift/shadow/pkg/core"

// UnimplementedViewProps wraps the props of a component that has no
// descriptor, keeping the name it was requested under.
type UnimplementedViewProps struct {
	ComponentName string
	Props         core.Props
}

// UnimplementedView stands in for components that are not registered, so a
// tree referencing them can still be built and committed.
type UnimplementedView struct {
	// Requested is the unregistered component name this descriptor serves.
	Requested string
}

// ComponentName returns UnimplementedView.
func (UnimplementedView) ComponentName() string {
	return UnimplementedViewName
}

// CreateNode creates a stateless node whose props record the requested name.
func (d UnimplementedView) CreateNode(identity core.FamilyIdentity, fragment core.Fragment, initialState any) core.ShadowNode {
	identity.ComponentName = UnimplementedViewName
	fragment.Props = UnimplementedViewProps{
		ComponentName: d.Requested,
		Props:         fragment.Props,
	}
	descriptor := core.ConcreteDescriptor[core.NoState]{Name: UnimplementedViewName}
	return descriptor.Create(identity, fragment, nil)
}
