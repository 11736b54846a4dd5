package core

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/shadow/pkg/errors"
)

// Props is the opaque, immutable configuration of a node.
type Props any

// NodePhase is the lifecycle phase of a single node revision.
type NodePhase int

const (
	// PhaseUnmounted is a node carrying the state it inherited from its family.
	PhaseUnmounted NodePhase = iota
	// PhaseProposed is an unmounted node carrying a locally proposed state.
	PhaseProposed
	// PhaseMounted is a node that is part of the tree on screen.
	PhaseMounted
)

func (p NodePhase) String() string {
	switch p {
	case PhaseProposed:
		return "proposed"
	case PhaseMounted:
		return "mounted"
	default:
		return "unmounted"
	}
}

// Fragment carries the parts of a node that a clone replaces.
// Zero fields are inherited from the source node. A non-nil empty Children
// slice clears the children.
type Fragment struct {
	Props    Props
	Children []ShadowNode
	State    StateHandle
}

// ShadowNode is one immutable revision of a position in the shadow tree.
type ShadowNode interface {
	Tag() Tag
	SurfaceID() SurfaceID
	ComponentName() string
	Props() Props

	// Children returns the ordered children. The slice must not be modified.
	Children() []ShadowNode

	FamilyHandle() FamilyHandle
	StateHandle() StateHandle

	Phase() NodePhase
	Mounted() bool
	HasBeenMounted() bool

	// SetMounted(true) marks the node as live and commits its proposed state
	// into its family. SetMounted(false) is always allowed.
	SetMounted(mounted bool)

	// Clone returns a new revision sharing this node's family.
	Clone(fragment Fragment) ShadowNode

	// IsStateObsolete reports whether the family holds a newer state than
	// this node.
	IsStateObsolete() bool

	// WithMostRecentState returns a clone carrying the family's committed
	// state, or the node itself when its state is current.
	WithMostRecentState() ShadowNode
}

// Node is the concrete shadow node for components with state data T.
type Node[T any] struct {
	family   *Family[T]
	props    Props
	children []ShadowNode

	state          atomic.Pointer[State[T]]
	proposed       atomic.Bool
	mounted        atomic.Bool
	hasBeenMounted atomic.Bool

	// mu serializes the propose and mount transitions of this node.
	mu sync.Mutex
}

// NewNode creates a node for family. When fragment.State is nil the node
// starts with the family's most recent state; otherwise it must be a *State[T]
// and counts as a proposal.
func NewNode[T any](family *Family[T], fragment Fragment) *Node[T] {
	n := &Node[T]{
		family:   family,
		props:    fragment.Props,
		children: slices.Clone(fragment.Children),
	}
	if fragment.State != nil {
		s := n.typedState("NewNode", fragment.State)
		n.state.Store(s)
		n.proposed.Store(s != family.MostRecentState())
	} else {
		n.state.Store(family.MostRecentState())
	}
	return n
}

func (n *Node[T]) String() string {
	return n.family.identity.String()
}

// Family returns the node's family.
func (n *Node[T]) Family() *Family[T] { return n.family }

// FamilyHandle returns the node's family behind the FamilyHandle interface.
func (n *Node[T]) FamilyHandle() FamilyHandle { return n.family }

// Tag returns the element tag.
func (n *Node[T]) Tag() Tag { return n.family.identity.Tag }

// SurfaceID returns the surface the node belongs to.
func (n *Node[T]) SurfaceID() SurfaceID { return n.family.identity.SurfaceID }

// ComponentName returns the component name.
func (n *Node[T]) ComponentName() string { return n.family.identity.ComponentName }

// Props returns the node's props.
func (n *Node[T]) Props() Props { return n.props }

// Children returns the node's children. The slice must not be modified.
func (n *Node[T]) Children() []ShadowNode { return n.children }

// State returns the node's local state, which may not be committed yet.
func (n *Node[T]) State() *State[T] {
	return n.state.Load()
}

// StateHandle returns the local state behind the StateHandle interface.
func (n *Node[T]) StateHandle() StateHandle {
	return n.state.Load()
}

// StateData returns the data of the node's local state.
func (n *Node[T]) StateData() T {
	return n.state.Load().Data()
}

// SetStateData proposes data as the node's new local state. The family is
// not touched until the node is mounted. Proposing on a node that has been
// mounted panics.
func (n *Node[T]) SetStateData(data T) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hasBeenMounted.Load() {
		n.violation("Node.SetStateData", "state proposed on a mounted node; clone a new revision instead")
	}
	n.state.Store(n.nextState(data))
	n.proposed.Store(true)
	stateProposals.Inc()
}

// nextState derives a container from whichever of the local and committed
// states is newer.
func (n *Node[T]) nextState(data T) *State[T] {
	base := n.state.Load()
	if committed := n.family.MostRecentState(); committed.revision > base.revision {
		base = committed
	}
	return base.Next(data)
}

// Phase reports the node's lifecycle phase.
func (n *Node[T]) Phase() NodePhase {
	switch {
	case n.mounted.Load():
		return PhaseMounted
	case n.proposed.Load():
		return PhaseProposed
	default:
		return PhaseUnmounted
	}
}

// Mounted reports whether the node is currently mounted.
func (n *Node[T]) Mounted() bool {
	return n.mounted.Load()
}

// HasBeenMounted reports whether the node was ever mounted.
func (n *Node[T]) HasBeenMounted() bool {
	return n.hasBeenMounted.Load()
}

// SetMounted records whether the node is on screen. Mounting commits the
// node's proposed state into its family when the family does not already
// hold it. A node that never proposed state commits nothing, so mounting it
// cannot roll the family back to the state it inherited.
//
// Mounting a node that is already mounted panics.
func (n *Node[T]) SetMounted(mounted bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !mounted {
		n.mounted.Store(false)
		return
	}
	if n.mounted.Load() {
		n.violation("Node.SetMounted", "node is already mounted")
	}

	if n.proposed.Load() {
		local := n.state.Load()
		if local != n.family.MostRecentState() {
			n.family.Commit(local)
		}
	}
	n.mounted.Store(true)
	n.hasBeenMounted.Store(true)
	nodeMounts.Inc()
}

// Clone returns a new revision sharing this node's family.
func (n *Node[T]) Clone(fragment Fragment) ShadowNode {
	return n.CloneNode(fragment)
}

// CloneNode is Clone returning the concrete type.
//
// Without fragment.State the clone keeps a pending proposal of the source
// node and otherwise picks up the family's committed state. A fragment.State
// other than the committed state is a proposal.
func (n *Node[T]) CloneNode(fragment Fragment) *Node[T] {
	clone := &Node[T]{
		family:   n.family,
		props:    n.props,
		children: n.children,
	}
	if fragment.Props != nil {
		clone.props = fragment.Props
	}
	if fragment.Children != nil {
		clone.children = slices.Clone(fragment.Children)
	}

	switch {
	case fragment.State != nil:
		s := n.typedState("Node.Clone", fragment.State)
		clone.state.Store(s)
		// Adopting the committed state proposes nothing, so mounting the
		// clone later cannot overwrite a newer commit with it.
		clone.proposed.Store(s != n.family.MostRecentState())
	case n.proposed.Load() && !n.hasBeenMounted.Load():
		clone.state.Store(n.state.Load())
		clone.proposed.Store(true)
	default:
		clone.state.Store(n.family.MostRecentState())
	}
	return clone
}

// CloneWithState returns a new revision carrying s as its proposed state.
func (n *Node[T]) CloneWithState(s *State[T]) *Node[T] {
	return n.CloneNode(Fragment{State: s})
}

// WithStateData returns a new revision proposing data. Unlike SetStateData
// it is valid on mounted nodes.
func (n *Node[T]) WithStateData(data T) *Node[T] {
	clone := n.CloneWithState(n.nextState(data))
	stateProposals.Inc()
	return clone
}

// IsStateObsolete reports whether the family holds a newer state than the
// node's local state.
func (n *Node[T]) IsStateObsolete() bool {
	return n.family.MostRecentStateIfObsolete(n.state.Load()) != nil
}

// WithMostRecentState returns a clone carrying the family's committed state,
// or n itself when its state is current.
func (n *Node[T]) WithMostRecentState() ShadowNode {
	newer := n.family.MostRecentStateIfObsolete(n.state.Load())
	if newer == nil {
		return n
	}
	return n.CloneWithState(newer)
}

func (n *Node[T]) typedState(op string, handle StateHandle) *State[T] {
	s, ok := handle.(*State[T])
	if !ok || s == nil {
		n.violation(op, fmt.Sprintf("state %T does not belong to this component", handle))
	}
	return s
}

func (n *Node[T]) violation(op, reason string) {
	errors.Violation(&errors.ProtocolError{
		Op:        op,
		Tag:       int32(n.family.identity.Tag),
		Component: n.family.identity.ComponentName,
		Reason:    reason,
	})
}
